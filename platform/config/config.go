// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
	IsAuthEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerMinute() int
	GetRateLimitBurst() int
}

// ProfileImageConfig provides the upload limits for profile images.
type ProfileImageConfig interface {
	GetProfileImageMaxPerProfile() int
	GetProfileImageMaxBytes() int
	GetProfileImageAllowedMimeTypes() []string
}

// RedisConfig provides settings for the Redis connection.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetOwnerCacheTTL() time.Duration
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq worker and client.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketProfileImages() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// ProfileImageOptions holds the profile image limits.
type ProfileImageOptions struct {
	MaxPerProfile    int      `yaml:"maxPerProfile"`
	MaxImageBytes    int      `yaml:"maxImageBytes"`
	AllowedMimeTypes []string `yaml:"allowedMimeTypes"`
}

// DefaultProfileImageOptions returns the built-in limits.
func DefaultProfileImageOptions() ProfileImageOptions {
	return ProfileImageOptions{
		MaxPerProfile:    10,
		MaxImageBytes:    3 * 1024 * 1024,
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	MigrationsEnabled        bool
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	RateLimitPerMinute       int
	RateLimitBurst           int
	RedisURL                 string
	RedisTLSInsecure         bool
	OwnerCacheTTL            time.Duration
	AsynqQueueName           string
	AsynqConcurrency         int
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinioBucketProfileImages string
	ProfileImage             ProfileImageOptions
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) IsAuthEnabled() bool        { return c.JWTAccessSecret != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool    { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }
func (c *Config) GetRateLimitBurst() int     { return c.RateLimitBurst }

// ProfileImageConfig implementation
func (c *Config) GetProfileImageMaxPerProfile() int { return c.ProfileImage.MaxPerProfile }
func (c *Config) GetProfileImageMaxBytes() int      { return c.ProfileImage.MaxImageBytes }
func (c *Config) GetProfileImageAllowedMimeTypes() []string {
	return append([]string(nil), c.ProfileImage.AllowedMimeTypes...)
}

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetOwnerCacheTTL() time.Duration  { return c.OwnerCacheTTL }
func (c *Config) GetAsynqQueueName() string        { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int         { return c.AsynqConcurrency }
func (c *Config) IsRedisEnabled() bool             { return c.RedisURL != "" }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketProfileImages() string {
	return c.MinioBucketProfileImages
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	profileImage, err := loadProfileImageOptions()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		MigrationsEnabled:        strings.EqualFold(getEnv("DB_MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitPerMinute:       mustInt(getEnv("RATE_LIMIT_PER_MINUTE", "120")),
		RateLimitBurst:           mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		OwnerCacheTTL:            mustDuration(getEnv("OWNER_CACHE_TTL", "30s")),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketProfileImages: getEnv("MINIO_BUCKET_PROFILE_IMAGES", "profile-images"),
		ProfileImage:             profileImage,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.ProfileImage.MaxImageBytes <= 0 {
		return nil, fmt.Errorf("PROFILE_IMAGE_MAX_BYTES must be greater than 0")
	}
	if len(cfg.ProfileImage.AllowedMimeTypes) == 0 {
		return nil, fmt.Errorf("PROFILE_IMAGE_ALLOWED_TYPES must list at least one content type")
	}

	return cfg, nil
}

// profileImageFile is the shape of PROFILE_IMAGE_CONFIG_FILE.
type profileImageFile struct {
	ProfileImage *ProfileImageOptions `yaml:"profileImage"`
}

// loadProfileImageOptions layers defaults, the optional YAML file and env overrides.
func loadProfileImageOptions() (ProfileImageOptions, error) {
	opts := DefaultProfileImageOptions()

	if path := strings.TrimSpace(getEnv("PROFILE_IMAGE_CONFIG_FILE", "")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return ProfileImageOptions{}, fmt.Errorf("read profile image config: %w", err)
		}
		var file profileImageFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return ProfileImageOptions{}, fmt.Errorf("parse profile image config: %w", err)
		}
		if file.ProfileImage != nil {
			if file.ProfileImage.MaxPerProfile != 0 {
				opts.MaxPerProfile = file.ProfileImage.MaxPerProfile
			}
			if file.ProfileImage.MaxImageBytes != 0 {
				opts.MaxImageBytes = file.ProfileImage.MaxImageBytes
			}
			if len(file.ProfileImage.AllowedMimeTypes) > 0 {
				opts.AllowedMimeTypes = file.ProfileImage.AllowedMimeTypes
			}
		}
	}

	if raw, ok := os.LookupEnv("PROFILE_IMAGE_MAX_PER_PROFILE"); ok {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ProfileImageOptions{}, fmt.Errorf("PROFILE_IMAGE_MAX_PER_PROFILE: %w", err)
		}
		opts.MaxPerProfile = value
	}
	if raw, ok := os.LookupEnv("PROFILE_IMAGE_MAX_BYTES"); ok {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ProfileImageOptions{}, fmt.Errorf("PROFILE_IMAGE_MAX_BYTES: %w", err)
		}
		opts.MaxImageBytes = value
	}
	if raw, ok := os.LookupEnv("PROFILE_IMAGE_ALLOWED_TYPES"); ok {
		opts.AllowedMimeTypes = splitCSV(raw)
	}

	return opts, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
