package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"mediavault_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const archiveMaxRetry = 5

type Client struct {
	client *asynq.Client
	queue  string
}

// ArchiveScheduler enqueues archive maintenance for profile images.
type ArchiveScheduler interface {
	EnqueueArchive(ctx context.Context, payload ArchiveProfileImagePayload) error
	EnqueuePurge(ctx context.Context, payload PurgeProfileImagePayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueArchive(ctx context.Context, payload ArchiveProfileImagePayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewArchiveProfileImageTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(archiveMaxRetry))
	return err
}

func (c *Client) EnqueuePurge(ctx context.Context, payload PurgeProfileImagePayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewPurgeProfileImageTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(archiveMaxRetry))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ ArchiveScheduler = (*Client)(nil)
