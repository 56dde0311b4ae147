package domain

import (
	"fmt"
	"strings"

	"mediavault_backend/platform/apperr"
)

// Stable error codes returned to API clients.
const (
	CodeProfileNotFound        = "profile.not_found"
	CodeNoImagesProvided       = "profile_images.none_provided"
	CodeCapacityExceeded       = "profile_images.limit_exceeded"
	CodeDuplicateImage         = "profile_images.duplicate"
	CodeImageTooLarge          = "profile_images.too_large"
	CodeImageNotFound          = "profile_images.not_found"
	CodePayloadRequired        = "profile_images.base64_required"
	CodeInvalidEncoding        = "profile_images.invalid_base64"
	CodeContentTypeRequired    = "profile_images.mimetype_required"
	CodeUnsupportedContentType = "profile_images.invalid_mime_type"
	CodeFileNameTooLong        = "profile_images.filename_too_long"
	CodePersistenceFailure     = "profile_images.persistence_failure"
)

func ProfileNotFound() *apperr.Error {
	return apperr.NotFound("The requested customer or lead does not exist.").
		WithCode(CodeProfileNotFound)
}

func NoImagesProvided() *apperr.Error {
	return apperr.Validation("At least one image must be supplied.").
		WithCode(CodeNoImagesProvided)
}

// CapacityExceeded reports that the owner would hold more than limit images.
func CapacityExceeded(limit int) *apperr.Error {
	msg := fmt.Sprintf("A profile can store at most %d images. Remove an image before uploading more.", limit)
	return apperr.Conflict(msg).
		WithCode(CodeCapacityExceeded).
		WithDetails(map[string]any{"limit": limit})
}

// DuplicateImage reports content that is already stored or repeated in the batch.
// fileName may be empty when the offending item is unknown.
func DuplicateImage(fileName string) *apperr.Error {
	if fileName == "" {
		return apperr.Conflict("An identical image already exists for this profile.").
			WithCode(CodeDuplicateImage)
	}
	msg := fmt.Sprintf("An identical image for '%s' already exists for this profile.", fileName)
	return apperr.Conflict(msg).
		WithCode(CodeDuplicateImage).
		WithDetails(map[string]any{"fileName": fileName})
}

func ImageTooLarge(fileName string, limit int) *apperr.Error {
	details := map[string]any{"limit": limit}
	msg := fmt.Sprintf("An image exceeds the maximum allowed size of %d bytes.", limit)
	if fileName != "" {
		msg = fmt.Sprintf("Image '%s' exceeds the maximum allowed size of %d bytes.", fileName, limit)
		details["fileName"] = fileName
	}
	return apperr.Validation(msg).
		WithCode(CodeImageTooLarge).
		WithDetails(details)
}

func ImageNotFound(id int64) *apperr.Error {
	return apperr.NotFound(fmt.Sprintf("Image with id %d was not found for the specified profile.", id)).
		WithCode(CodeImageNotFound).
		WithDetails(map[string]any{"imageId": id})
}

func PayloadRequired() *apperr.Error {
	return apperr.Validation("Base64Data is required.").WithCode(CodePayloadRequired)
}

func InvalidEncoding() *apperr.Error {
	return apperr.Validation("Base64Data must be a valid Base64 string.").WithCode(CodeInvalidEncoding)
}

func ContentTypeRequired() *apperr.Error {
	return apperr.Validation("MimeType is required.").WithCode(CodeContentTypeRequired)
}

// UnsupportedContentType lists the allowed types in the message and details.
func UnsupportedContentType(value string, allowed []string) *apperr.Error {
	list := strings.Join(allowed, ", ")
	msg := fmt.Sprintf("MimeType is not supported. Allowed types: %s.", list)
	if strings.TrimSpace(value) != "" {
		msg = fmt.Sprintf("MimeType '%s' is not supported. Allowed types: %s.", value, list)
	}
	return apperr.Validation(msg).
		WithCode(CodeUnsupportedContentType).
		WithDetails(map[string]any{"mimeType": value, "allowed": append([]string(nil), allowed...)})
}

func FileNameTooLong(limit int) *apperr.Error {
	return apperr.Validation(fmt.Sprintf("OriginalFileName must be %d characters or fewer.", limit)).
		WithCode(CodeFileNameTooLong).
		WithDetails(map[string]any{"limit": limit})
}

// PersistenceFailure wraps an unexpected storage error.
func PersistenceFailure(op string, err error) *apperr.Error {
	return apperr.Wrap(apperr.KindInternal, "Saving profile images failed.", err).
		WithOp(op).
		WithCode(CodePersistenceFailure)
}
