package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mediavault")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadProfileImageDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.GetProfileImageMaxPerProfile() != 10 {
		t.Fatalf("expected default max per profile 10, got %d", cfg.GetProfileImageMaxPerProfile())
	}
	if cfg.GetProfileImageMaxBytes() != 3145728 {
		t.Fatalf("expected default max bytes 3145728, got %d", cfg.GetProfileImageMaxBytes())
	}
	types := cfg.GetProfileImageAllowedMimeTypes()
	if len(types) != 3 || types[0] != "image/jpeg" || types[1] != "image/png" || types[2] != "image/webp" {
		t.Fatalf("unexpected default allowed types %v", types)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadProfileImageFileThenEnvOverride(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "profile-image.yaml")
	content := "profileImage:\n  maxPerProfile: 4\n  maxImageBytes: 1024\n  allowedMimeTypes:\n    - image/gif\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PROFILE_IMAGE_CONFIG_FILE", path)
	t.Setenv("PROFILE_IMAGE_MAX_BYTES", "2048")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ProfileImage.MaxPerProfile != 4 {
		t.Fatalf("expected max per profile from file (4), got %d", cfg.ProfileImage.MaxPerProfile)
	}
	if cfg.ProfileImage.MaxImageBytes != 2048 {
		t.Fatalf("expected env override for max bytes (2048), got %d", cfg.ProfileImage.MaxImageBytes)
	}
	if len(cfg.ProfileImage.AllowedMimeTypes) != 1 || cfg.ProfileImage.AllowedMimeTypes[0] != "image/gif" {
		t.Fatalf("expected allowed types from file, got %v", cfg.ProfileImage.AllowedMimeTypes)
	}
}

func TestLoadAllowsZeroMaxPerProfile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROFILE_IMAGE_MAX_PER_PROFILE", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetProfileImageMaxPerProfile() != 0 {
		t.Fatalf("expected max per profile 0, got %d", cfg.GetProfileImageMaxPerProfile())
	}
}

func TestLoadRejectsMalformedLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROFILE_IMAGE_MAX_PER_PROFILE", "ten")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric PROFILE_IMAGE_MAX_PER_PROFILE")
	}
}

func TestAllowedTypesAreCopied(t *testing.T) {
	cfg := &Config{ProfileImage: DefaultProfileImageOptions()}
	types := cfg.GetProfileImageAllowedMimeTypes()
	types[0] = "mutated"

	if cfg.ProfileImage.AllowedMimeTypes[0] != "image/jpeg" {
		t.Fatal("expected config allowed types to be immutable through the getter")
	}
}

func TestRedisEnabledFollowsURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.IsRedisEnabled() {
		t.Fatal("expected redis to be disabled without REDIS_URL")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.IsRedisEnabled() {
		t.Fatal("expected redis to be enabled")
	}
}
