package domain

import (
	"time"

	"mediavault_backend/internal/profileimages/codec"
)

// MaxFileNameLength is the longest original file name accepted, in UTF-16 code units.
const MaxFileNameLength = 255

// Image is a stored profile image.
type Image struct {
	ID          int64
	Owner       Owner
	Payload     string
	ContentType string
	FileName    *string
	SizeBytes   int
	Fingerprint codec.Fingerprint
	CreatedAt   time.Time
}

// UploadItem is a single image submitted for upload.
type UploadItem struct {
	Payload     string
	ContentType string
	FileName    *string
}

// Name returns the file name or "" when none was supplied.
func (u UploadItem) Name() string {
	if u.FileName == nil {
		return ""
	}
	return *u.FileName
}
