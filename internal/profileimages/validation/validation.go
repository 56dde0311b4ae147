// Package validation holds the pure upload rules for profile images.
// Rules never touch storage; the first failing rule decides the outcome.
package validation

import (
	"strings"
	"unicode/utf16"

	"mediavault_backend/internal/profileimages/codec"
	"mediavault_backend/internal/profileimages/domain"
	"mediavault_backend/platform/apperr"
)

// Options are the process-wide upload limits.
type Options struct {
	MaxPerProfile    int
	MaxImageBytes    int
	AllowedMimeTypes []string
}

// Rules evaluates upload batches against a fixed set of Options.
type Rules struct {
	maxPerProfile int
	maxImageBytes int
	allowed       []string
}

// New copies opts so later changes by the caller have no effect.
func New(opts Options) *Rules {
	return &Rules{
		maxPerProfile: opts.MaxPerProfile,
		maxImageBytes: opts.MaxImageBytes,
		allowed:       append([]string(nil), opts.AllowedMimeTypes...),
	}
}

// MaxPerProfile returns the configured per-owner image limit.
func (r *Rules) MaxPerProfile() int {
	return r.maxPerProfile
}

// ValidateBatch runs the batch rules, then every item rule in input order.
// It returns the first failure only.
func (r *Rules) ValidateBatch(items []domain.UploadItem) *apperr.Error {
	if len(items) == 0 {
		return domain.NoImagesProvided()
	}
	if r.maxPerProfile > 0 && len(items) > r.maxPerProfile {
		return domain.CapacityExceeded(r.maxPerProfile)
	}
	for _, item := range items {
		if err := r.ValidateItem(item); err != nil {
			return err
		}
	}
	return nil
}

// ValidateItem checks payload, size, content type and file name, in that order.
func (r *Rules) ValidateItem(item domain.UploadItem) *apperr.Error {
	if strings.TrimSpace(item.Payload) == "" {
		return domain.PayloadRequired()
	}

	raw, err := codec.Decode(item.Payload)
	if err != nil {
		return domain.InvalidEncoding()
	}
	if len(raw) > r.maxImageBytes {
		return domain.ImageTooLarge(item.Name(), r.maxImageBytes)
	}

	if strings.TrimSpace(item.ContentType) == "" {
		return domain.ContentTypeRequired()
	}
	if !r.allowedType(item.ContentType) {
		return domain.UnsupportedContentType(item.ContentType, r.allowed)
	}

	if item.FileName != nil && fileNameLength(*item.FileName) > domain.MaxFileNameLength {
		return domain.FileNameTooLong(domain.MaxFileNameLength)
	}
	return nil
}

func (r *Rules) allowedType(contentType string) bool {
	for _, allowed := range r.allowed {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

// fileNameLength counts UTF-16 code units so limits agree with clients
// that measure strings that way.
func fileNameLength(name string) int {
	n := 0
	for _, r := range name {
		n += utf16.RuneLen(r)
	}
	return n
}
