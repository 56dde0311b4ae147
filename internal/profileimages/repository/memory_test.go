package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
)

var (
	alice = domain.Owner{Type: domain.OwnerCustomer, ID: 1}
	bob   = domain.Owner{Type: domain.OwnerLead, ID: 1}
)

func image(owner domain.Owner, content string, at time.Time) domain.Image {
	raw := []byte(content)
	return domain.Image{
		Owner:       owner,
		Payload:     codec.Encode(raw),
		ContentType: "image/png",
		SizeBytes:   len(raw),
		Fingerprint: codec.Compute(raw),
		CreatedAt:   at,
	}
}

func TestMemoryCommitAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(alice)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", now), image(alice, "b", now))
	ids, err := uow.Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] >= ids[1] {
		t.Fatalf("expected increasing ids, got %v", ids)
	}

	uow = repo.Begin()
	uow.InsertImages(image(alice, "c", now))
	more, err := uow.Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if more[0] <= ids[1] {
		t.Fatalf("expected id after %d, got %d", ids[1], more[0])
	}
}

func TestMemoryNothingVisibleBeforeCommit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(alice)

	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", time.Now()))

	if n, _ := repo.CountImages(ctx, alice); n != 0 {
		t.Fatalf("expected staged insert to be invisible, got %d", n)
	}
}

func TestMemoryCommitRejectsDuplicatesAtomically(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(alice, bob)
	now := time.Now()

	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", now))
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uow = repo.Begin()
	uow.InsertImages(image(alice, "fresh", now), image(alice, "a", now))
	if _, err := uow.Commit(ctx); !errors.Is(err, ErrDuplicateContent) {
		t.Fatalf("expected ErrDuplicateContent, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected failed commit to leave 1 image, got %d", repo.Len())
	}

	uow = repo.Begin()
	uow.InsertImages(image(bob, "a", now))
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("expected same content under another owner to be accepted, got %v", err)
	}
}

func TestMemoryCommitRejectsUnknownOwner(t *testing.T) {
	repo := NewMemory()
	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", time.Now()))
	if _, err := uow.Commit(context.Background()); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestMemoryCommitHonoursCancellation(t *testing.T) {
	repo := NewMemory(alice)
	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := uow.Commit(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if repo.Len() != 0 {
		t.Fatalf("expected nothing stored, got %d", repo.Len())
	}
}

func TestMemoryListOrdersByCreationThenID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(alice)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	uow := repo.Begin()
	uow.InsertImages(image(alice, "late", t0.Add(time.Minute)), image(alice, "early", t0), image(alice, "tie", t0))
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := repo.ListImages(ctx, alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 images, got %d", len(list))
	}
	if list[0].SizeBytes != len("early") || list[1].SizeBytes != len("tie") || list[2].SizeBytes != len("late") {
		t.Fatalf("unexpected order: %d %d %d", list[0].SizeBytes, list[1].SizeBytes, list[2].SizeBytes)
	}
}

func TestMemoryFindAndRemoveAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(alice, bob)

	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", time.Now()))
	ids, _ := uow.Commit(ctx)

	if _, err := repo.FindImage(ctx, ids[0], bob); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected cross-owner lookup to miss, got %v", err)
	}

	img, err := repo.FindImage(ctx, ids[0], alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uow = repo.Begin()
	uow.RemoveImage(img)
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fps, _ := repo.ListFingerprints(ctx, alice)
	if len(fps) != 0 {
		t.Fatalf("expected fingerprint to be released, got %d", len(fps))
	}
}

func TestMemoryRemoveOwnerCascades(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(alice)

	uow := repo.Begin()
	uow.InsertImages(image(alice, "a", time.Now()))
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.RemoveOwner(alice)
	if repo.Len() != 0 {
		t.Fatalf("expected cascade delete, got %d images", repo.Len())
	}
	if ok, _ := repo.OwnerExists(ctx, alice); ok {
		t.Fatal("expected owner to be gone")
	}
}
