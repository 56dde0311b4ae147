// Package repository is the persistence gateway for profile images.
package repository

import (
	"context"
	"errors"

	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
)

var (
	// ErrImageNotFound means no image with that id belongs to the owner.
	ErrImageNotFound = errors.New("profile image not found")
	// ErrDuplicateContent means a commit hit the (owner, fingerprint) unique index.
	ErrDuplicateContent = errors.New("duplicate profile image content")
	// ErrOwnerNotFound means a commit referenced an owner that no longer exists.
	ErrOwnerNotFound = errors.New("profile owner not found")
)

// OwnerReader answers whether a customer or lead profile exists.
type OwnerReader interface {
	OwnerExists(ctx context.Context, owner domain.Owner) (bool, error)
}

// ImageReader reads committed images.
type ImageReader interface {
	CountImages(ctx context.Context, owner domain.Owner) (int, error)
	// ListImages returns images oldest first, ties broken by id.
	ListImages(ctx context.Context, owner domain.Owner) ([]domain.Image, error)
	ListFingerprints(ctx context.Context, owner domain.Owner) (map[codec.Fingerprint]struct{}, error)
	FindImage(ctx context.Context, id int64, owner domain.Owner) (domain.Image, error)
}

// UnitOfWork stages writes and applies them atomically on Commit.
// A unit of work is single-use and not safe for concurrent use.
type UnitOfWork interface {
	InsertImages(images ...domain.Image)
	RemoveImage(image domain.Image)
	// Commit applies every staged change or none. It returns the ids
	// assigned to inserted images in staging order.
	Commit(ctx context.Context) ([]int64, error)
}

// ImageStore is the image side of the gateway.
type ImageStore interface {
	ImageReader
	Begin() UnitOfWork
}

// Repository combines everything the profile-image service consumes.
type Repository interface {
	OwnerReader
	ImageStore
}
