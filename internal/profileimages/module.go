// Package profileimages provides the profile-image bounded context module.
package profileimages

import (
	"context"
	"time"

	"mediavault_backend/internal/events"
	apphttp "mediavault_backend/internal/http"
	"mediavault_backend/internal/profileimages/handler"
	"mediavault_backend/internal/profileimages/repository"
	"mediavault_backend/internal/profileimages/service"
	"mediavault_backend/internal/profileimages/transport"
	"mediavault_backend/internal/profileimages/validation"
	"mediavault_backend/internal/scheduler"
	"mediavault_backend/platform/config"
	"mediavault_backend/platform/logger"
	"mediavault_backend/platform/metrics"
	"mediavault_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the profile-image bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	scheduler scheduler.ArchiveScheduler
	log       *logger.Logger
}

// ModuleOption customises NewModule.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	rdb      redis.UniversalClient
	cacheTTL time.Duration
}

// WithOwnerCache memoizes owner lookups for uploads in Redis. A non-positive
// ttl disables the cache.
func WithOwnerCache(rdb redis.UniversalClient, ttl time.Duration) ModuleOption {
	return func(o *moduleOptions) {
		o.rdb = rdb
		o.cacheTTL = ttl
	}
}

// NewModule creates the module on top of the Postgres repository.
func NewModule(pool *pgxpool.Pool, cfg config.ProfileImageConfig, val *validator.Validator, bus events.Bus, reg *metrics.Registry, log *logger.Logger, opts ...ModuleOption) (*Module, error) {
	return newModule(repository.NewPostgres(pool), cfg, val, bus, reg, log, opts...)
}

func newModule(repo repository.Repository, cfg config.ProfileImageConfig, val *validator.Validator, bus events.Bus, reg *metrics.Registry, log *logger.Logger, opts ...ModuleOption) (*Module, error) {
	var o moduleOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}


	rules := validation.New(validation.Options{
		MaxPerProfile:    cfg.GetProfileImageMaxPerProfile(),
		MaxImageBytes:    cfg.GetProfileImageMaxBytes(),
		AllowedMimeTypes: cfg.GetProfileImageAllowedMimeTypes(),
	})

	svcOpts := []service.Option{service.WithMetrics(reg)}
	if o.rdb != nil && o.cacheTTL > 0 {
		svcOpts = append(svcOpts, service.WithUploadOwnerCheck(repository.NewCachedOwners(repo, o.rdb, o.cacheTTL, log)))
	}
	if bus != nil {
		svcOpts = append(svcOpts, service.WithEventBus(bus))
	}
	svc := service.New(repo, repo, rules, log, svcOpts...)

	return &Module{
		handler: handler.New(svc, val),
		log:     log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "profileimages"
}

// RegisterRoutes mounts profile-image routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	images := ctx.Protected.Group("/profiles/:profileType/:profileId/images")
	images.POST("", m.handler.Upload)
	images.GET("", m.handler.List)
	images.DELETE("/:imageId", m.handler.Delete)
}

// RegisterHandlers subscribes the archive scheduler to image events.
// A nil scheduler leaves the bus untouched.
func (m *Module) RegisterHandlers(bus events.Bus, sched scheduler.ArchiveScheduler) {
	if bus == nil || sched == nil {
		return
	}
	m.scheduler = sched
	bus.Subscribe(events.ProfileImagesUploaded{}.EventName(), m)
	bus.Subscribe(events.ProfileImageDeleted{}.EventName(), m)
}

// Handle turns committed image events into archive tasks.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProfileImagesUploaded:
		for _, id := range e.ImageIDs {
			if err := m.scheduler.EnqueueArchive(ctx, scheduler.ArchiveProfileImagePayload{
				OwnerType: e.OwnerType,
				OwnerID:   e.OwnerID,
				ImageID:   id,
			}); err != nil {
				return err
			}
		}
		m.log.Info("profile image archive tasks enqueued", "ownerType", e.OwnerType, "ownerId", e.OwnerID, "count", len(e.ImageIDs))
		return nil
	case events.ProfileImageDeleted:
		return m.scheduler.EnqueuePurge(ctx, scheduler.PurgeProfileImagePayload{
			OwnerType:   e.OwnerType,
			OwnerID:     e.OwnerID,
			Fingerprint: e.Fingerprint,
		})
	default:
		return nil
	}
}

var _ apphttp.Module = (*Module)(nil)
var _ events.Handler = (*Module)(nil)
