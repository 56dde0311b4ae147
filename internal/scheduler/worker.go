package scheduler

import (
	"context"
	"errors"
	"fmt"

	"mediavault_backend/internal/adapters/storage"
	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
	"mediavault_backend/internal/profileimages/repository"
	"mediavault_backend/platform/config"
	"mediavault_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	handlers *ArchiveHandlers
	log      *logger.Logger
}

// ArchiveHandlers process archive tasks independently of the asynq server.
type ArchiveHandlers struct {
	images  repository.ImageReader
	archive storage.ImageArchive
	log     *logger.Logger
}

func NewArchiveHandlers(images repository.ImageReader, archive storage.ImageArchive, log *logger.Logger) *ArchiveHandlers {
	return &ArchiveHandlers{images: images, archive: archive, log: log}
}

func NewWorker(cfg config.SchedulerConfig, handlers *ArchiveHandlers, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskArchiveProfileImage, handlers.HandleArchive)
	mux.HandleFunc(TaskPurgeProfileImage, handlers.HandlePurge)

	return &Worker{
		server:   server,
		mux:      mux,
		handlers: handlers,
		log:      log,
	}, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// HandleArchive copies a stored image into the archive. Images deleted
// before the task runs are skipped.
func (h *ArchiveHandlers) HandleArchive(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseArchiveProfileImagePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	owner, err := ownerFromPayload(payload.OwnerType, payload.OwnerID)
	if err != nil {
		return err
	}

	img, err := h.images.FindImage(ctx, payload.ImageID, owner)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			h.log.Info("profile image gone before archiving", "imageId", payload.ImageID)
			return nil
		}
		return err
	}

	raw, err := codec.Decode(img.Payload)
	if err != nil {
		return fmt.Errorf("%w: image %d: %v", asynq.SkipRetry, img.ID, err)
	}

	key := storage.ObjectKey(owner.Type.String(), owner.ID, img.Fingerprint.String())
	if err := h.archive.PutImage(ctx, key, img.ContentType, raw); err != nil {
		return err
	}
	h.log.Info("profile image archived", "imageId", img.ID, "key", key)
	return nil
}

// HandlePurge removes an archived image after its row was deleted, unless
// the owner still stores the same content.
func (h *ArchiveHandlers) HandlePurge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePurgeProfileImagePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	owner, err := ownerFromPayload(payload.OwnerType, payload.OwnerID)
	if err != nil {
		return err
	}
	fp, err := codec.FingerprintFromHex(payload.Fingerprint)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	// The same bytes may have been uploaded again after the delete; the
	// object then belongs to the live image.
	stored, err := h.images.ListFingerprints(ctx, owner)
	if err != nil {
		return err
	}
	if _, ok := stored[fp]; ok {
		h.log.Info("archived profile image still in use; purge skipped", "fingerprint", payload.Fingerprint)
		return nil
	}

	key := storage.ObjectKey(owner.Type.String(), owner.ID, payload.Fingerprint)
	if err := h.archive.RemoveImage(ctx, key); err != nil {
		return err
	}
	h.log.Info("archived profile image purged", "key", key)
	return nil
}

func ownerFromPayload(ownerType string, ownerID int64) (domain.Owner, error) {
	t, ok := domain.ParseOwnerType(ownerType)
	if !ok {
		return domain.Owner{}, fmt.Errorf("%w: unknown owner type %q", asynq.SkipRetry, ownerType)
	}
	return domain.Owner{Type: t, ID: ownerID}, nil
}
