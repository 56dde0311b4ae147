package repository

import (
	"context"
	"sort"
	"sync"

	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
)

type ownerHash struct {
	owner domain.Owner
	hash  codec.Fingerprint
}

// Memory is an in-process Repository. It enforces the same owner and
// uniqueness constraints as the database schema.
type Memory struct {
	mu        sync.RWMutex
	owners    map[domain.Owner]struct{}
	images    map[int64]domain.Image
	hashes    map[ownerHash]int64
	nextID    int64
	commitErr error
}

// NewMemory creates an empty store with the given owners registered.
func NewMemory(owners ...domain.Owner) *Memory {
	m := &Memory{
		owners: make(map[domain.Owner]struct{}),
		images: make(map[int64]domain.Image),
		hashes: make(map[ownerHash]int64),
	}
	for _, o := range owners {
		m.owners[o] = struct{}{}
	}
	return m
}

var _ Repository = (*Memory)(nil)

// AddOwner registers a profile.
func (m *Memory) AddOwner(owner domain.Owner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner] = struct{}{}
}

// RemoveOwner drops a profile and cascades to its images.
func (m *Memory) RemoveOwner(owner domain.Owner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.owners, owner)
	for id, img := range m.images {
		if img.Owner == owner {
			delete(m.images, id)
			delete(m.hashes, ownerHash{owner: owner, hash: img.Fingerprint})
		}
	}
}

// FailCommits makes every following Commit return err. Pass nil to reset.
func (m *Memory) FailCommits(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitErr = err
}

// Len returns the number of stored images across all owners.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

func (m *Memory) OwnerExists(ctx context.Context, owner domain.Owner) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.owners[owner]
	return ok, nil
}

func (m *Memory) CountImages(ctx context.Context, owner domain.Owner) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, img := range m.images {
		if img.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListImages(ctx context.Context, owner domain.Owner) ([]domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]domain.Image, 0)
	for _, img := range m.images {
		if img.Owner == owner {
			out = append(out, img)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) ListFingerprints(ctx context.Context, owner domain.Owner) (map[codec.Fingerprint]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := make(map[codec.Fingerprint]struct{})
	for key := range m.hashes {
		if key.owner == owner {
			set[key.hash] = struct{}{}
		}
	}
	return set, nil
}

func (m *Memory) FindImage(ctx context.Context, id int64, owner domain.Owner) (domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[id]
	if !ok || img.Owner != owner {
		return domain.Image{}, ErrImageNotFound
	}
	return img, nil
}

func (m *Memory) Begin() UnitOfWork {
	return &memoryUnitOfWork{store: m}
}

type memoryUnitOfWork struct {
	store   *Memory
	inserts []domain.Image
	removes []domain.Image
}

func (u *memoryUnitOfWork) InsertImages(images ...domain.Image) {
	u.inserts = append(u.inserts, images...)
}

func (u *memoryUnitOfWork) RemoveImage(image domain.Image) {
	u.removes = append(u.removes, image)
}

func (u *memoryUnitOfWork) Commit(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := u.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.commitErr != nil {
		return nil, m.commitErr
	}

	removed := make(map[int64]struct{}, len(u.removes))
	freed := make(map[ownerHash]struct{}, len(u.removes))
	for _, img := range u.removes {
		if stored, ok := m.images[img.ID]; ok && stored.Owner == img.Owner {
			removed[img.ID] = struct{}{}
			freed[ownerHash{owner: stored.Owner, hash: stored.Fingerprint}] = struct{}{}
		}
	}

	staged := make(map[ownerHash]struct{}, len(u.inserts))
	for _, img := range u.inserts {
		if _, ok := m.owners[img.Owner]; !ok {
			return nil, ErrOwnerNotFound
		}
		key := ownerHash{owner: img.Owner, hash: img.Fingerprint}
		if _, dup := staged[key]; dup {
			return nil, ErrDuplicateContent
		}
		if _, exists := m.hashes[key]; exists {
			if _, gone := freed[key]; !gone {
				return nil, ErrDuplicateContent
			}
		}
		staged[key] = struct{}{}
	}

	for id := range removed {
		img := m.images[id]
		delete(m.images, id)
		delete(m.hashes, ownerHash{owner: img.Owner, hash: img.Fingerprint})
	}

	ids := make([]int64, 0, len(u.inserts))
	for _, img := range u.inserts {
		m.nextID++
		img.ID = m.nextID
		m.images[img.ID] = img
		m.hashes[ownerHash{owner: img.Owner, hash: img.Fingerprint}] = img.ID
		ids = append(ids, img.ID)
	}

	u.inserts, u.removes = nil, nil
	return ids, nil
}
