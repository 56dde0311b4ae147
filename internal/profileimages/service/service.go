// Package service implements the profile-image use cases: upload, list and delete.
package service

import (
	"context"
	"errors"
	"time"

	"mediavault_backend/internal/events"
	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
	"mediavault_backend/internal/profileimages/repository"
	"mediavault_backend/internal/profileimages/validation"
	"mediavault_backend/platform/apperr"
	"mediavault_backend/platform/logger"
	"mediavault_backend/platform/metrics"
)

const (
	opUpload = "profileimages.Upload"
	opList   = "profileimages.List"
	opDelete = "profileimages.Delete"

	metricUploaded = "profile_images_uploaded_total"
	metricRejected = "profile_images_rejected_total"
	metricDeleted  = "profile_images_deleted_total"
)

// Service orchestrates profile-image uploads, listing and removal.
type Service struct {
	owners       repository.OwnerReader
	uploadOwners repository.OwnerReader
	images  repository.ImageStore
	rules   *validation.Rules
	log     *logger.Logger
	bus     events.Bus
	metrics *metrics.Registry
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithUploadOwnerCheck replaces the owner lookup used by Upload only.
// A stale positive answer is safe there because the owner foreign key is
// checked again at commit. List and Delete always use the authoritative reader.
func WithUploadOwnerCheck(owners repository.OwnerReader) Option {
	return func(s *Service) { s.uploadOwners = owners }
}

// WithEventBus publishes domain events after successful commits.
func WithEventBus(bus events.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithMetrics counts uploads, rejections and deletions.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// New creates a profile-image service.
func New(owners repository.OwnerReader, images repository.ImageStore, rules *validation.Rules, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		owners: owners,
		images: images,
		rules:  rules,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.uploadOwners == nil {
		s.uploadOwners = owners
	}
	return s
}

// Upload stores every item of the batch or none of them and returns the
// owner's full image list afterwards.
func (s *Service) Upload(ctx context.Context, owner domain.Owner, items []domain.UploadItem) ([]domain.Image, error) {
	if len(items) == 0 {
		return nil, s.reject(ctx, owner, len(items), domain.NoImagesProvided())
	}

	if err := s.ensureOwner(ctx, s.uploadOwners, opUpload, owner); err != nil {
		return nil, s.reject(ctx, owner, len(items), err)
	}

	if verr := s.rules.ValidateBatch(items); verr != nil {
		return nil, s.reject(ctx, owner, len(items), verr)
	}

	limit := s.rules.MaxPerProfile()
	if limit <= 0 {
		return nil, s.reject(ctx, owner, len(items), domain.CapacityExceeded(0))
	}

	existing, err := s.images.CountImages(ctx, owner)
	if err != nil {
		return nil, storageError(opUpload, err)
	}
	if existing >= limit || existing+len(items) > limit {
		return nil, s.reject(ctx, owner, len(items), domain.CapacityExceeded(limit))
	}

	stored, err := s.images.ListFingerprints(ctx, owner)
	if err != nil {
		return nil, storageError(opUpload, err)
	}

	createdAt := s.now().UTC()
	records := make([]domain.Image, 0, len(items))
	seen := make(map[codec.Fingerprint]struct{}, len(items))
	for _, item := range items {
		raw, err := codec.Decode(item.Payload)
		if err != nil {
			return nil, s.reject(ctx, owner, len(items), domain.InvalidEncoding())
		}
		fp := codec.Compute(raw)

		_, inStore := stored[fp]
		_, inBatch := seen[fp]
		if inStore || inBatch {
			return nil, s.reject(ctx, owner, len(items), domain.DuplicateImage(item.Name()))
		}
		seen[fp] = struct{}{}

		records = append(records, domain.Image{
			Owner:       owner,
			Payload:     item.Payload,
			ContentType: item.ContentType,
			FileName:    item.FileName,
			SizeBytes:   len(raw),
			Fingerprint: fp,
			CreatedAt:   createdAt,
		})
	}

	uow := s.images.Begin()
	uow.InsertImages(records...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := uow.Commit(ctx)
	if err != nil {
		return nil, s.commitError(ctx, opUpload, owner, len(items), err)
	}

	s.metrics.Inc(ctx, metricUploaded, ownerLabels(owner), int64(len(ids)))
	s.publish(ctx, events.ProfileImagesUploaded{
		BaseEvent: events.NewBaseEvent(),
		OwnerType: owner.Type.String(),
		OwnerID:   owner.ID,
		ImageIDs:  ids,
	})

	list, err := s.images.ListImages(ctx, owner)
	if err != nil {
		return nil, storageError(opUpload, err)
	}
	return list, nil
}

// List returns the owner's images, oldest first.
func (s *Service) List(ctx context.Context, owner domain.Owner) ([]domain.Image, error) {
	if err := s.ensureOwner(ctx, s.owners, opList, owner); err != nil {
		return nil, err
	}

	list, err := s.images.ListImages(ctx, owner)
	if err != nil {
		return nil, storageError(opList, err)
	}
	return list, nil
}

// Delete removes one image. The image must belong to owner.
func (s *Service) Delete(ctx context.Context, owner domain.Owner, imageID int64) error {
	if err := s.ensureOwner(ctx, s.owners, opDelete, owner); err != nil {
		return err
	}

	img, err := s.images.FindImage(ctx, imageID, owner)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return domain.ImageNotFound(imageID)
		}
		return storageError(opDelete, err)
	}

	uow := s.images.Begin()
	uow.RemoveImage(img)

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := uow.Commit(ctx); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return domain.ProfileNotFound()
		}
		return storageError(opDelete, err)
	}

	s.metrics.Inc(ctx, metricDeleted, ownerLabels(owner), 1)
	s.publish(ctx, events.ProfileImageDeleted{
		BaseEvent:   events.NewBaseEvent(),
		OwnerType:   owner.Type.String(),
		OwnerID:     owner.ID,
		ImageID:     img.ID,
		Fingerprint: img.Fingerprint.String(),
	})
	return nil
}

func (s *Service) ensureOwner(ctx context.Context, owners repository.OwnerReader, op string, owner domain.Owner) error {
	exists, err := owners.OwnerExists(ctx, owner)
	if err != nil {
		return storageError(op, err)
	}
	if !exists {
		return domain.ProfileNotFound()
	}
	return nil
}

// commitError maps gateway sentinels raised at commit time. Duplicates
// found by the unique index carry no file name.
func (s *Service) commitError(ctx context.Context, op string, owner domain.Owner, batch int, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateContent):
		return s.reject(ctx, owner, batch, domain.DuplicateImage(""))
	case errors.Is(err, repository.ErrOwnerNotFound):
		return s.reject(ctx, owner, batch, domain.ProfileNotFound())
	default:
		return storageError(op, err)
	}
}

// reject records a refused upload and passes err through. Storage faults
// are not rejections and are returned untouched.
func (s *Service) reject(ctx context.Context, owner domain.Owner, batch int, err error) error {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindInternal {
		return err
	}

	labels := ownerLabels(owner)
	labels["code"] = appErr.Code
	s.metrics.Inc(ctx, metricRejected, labels, 1)
	if s.log != nil {
		s.log.WithContext(ctx).ImageUploadRejected(owner.Type.String(), owner.ID, batch, appErr.Code)
	}
	return err
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

// storageError wraps unexpected gateway failures. Cancellation is passed
// through so callers can tell it apart from a broken store.
func storageError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.PersistenceFailure(op, err)
}

func ownerLabels(owner domain.Owner) map[string]string {
	return map[string]string{"owner_type": owner.Type.String()}
}
