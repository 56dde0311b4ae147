// Package transport defines the JSON contract of the profile-image API.
package transport

import (
	"time"

	"mediavault_backend/internal/profileimages/domain"
	"mediavault_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// ProfileTypeTag validates the owner path segment.
const ProfileTypeTag = "profiletype"

// ProfilePath is the owner part of every profile-image route.
type ProfilePath struct {
	ProfileType string `validate:"required,profiletype"`
}

type UploadImagesRequest struct {
	Images []UploadImageItem `json:"images"`
}

type UploadImageItem struct {
	Base64Data       string  `json:"base64Data"`
	MimeType         string  `json:"mimeType"`
	OriginalFileName *string `json:"originalFileName"`
}

type ProfileImageResponse struct {
	ID               int64     `json:"id"`
	MimeType         string    `json:"mimeType"`
	Base64Data       string    `json:"base64Data"`
	OriginalFileName *string   `json:"originalFileName"`
	CreatedUtc       time.Time `json:"createdUtc"`
	SizeBytes        int       `json:"sizeBytes"`
}

// RegisterValidations adds the profile-image tags to val.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation(ProfileTypeTag, func(fl playground.FieldLevel) bool {
		_, ok := domain.ParseOwnerType(fl.Field().String())
		return ok
	})
}

// ToUploadItems converts the request body into domain upload items.
func (r UploadImagesRequest) ToUploadItems() []domain.UploadItem {
	items := make([]domain.UploadItem, 0, len(r.Images))
	for _, img := range r.Images {
		items = append(items, domain.UploadItem{
			Payload:     img.Base64Data,
			ContentType: img.MimeType,
			FileName:    img.OriginalFileName,
		})
	}
	return items
}

// FromImages maps stored images to the response shape.
func FromImages(images []domain.Image) []ProfileImageResponse {
	out := make([]ProfileImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, ProfileImageResponse{
			ID:               img.ID,
			MimeType:         img.ContentType,
			Base64Data:       img.Payload,
			OriginalFileName: img.FileName,
			CreatedUtc:       img.CreatedAt.UTC(),
			SizeBytes:        img.SizeBytes,
		})
	}
	return out
}
