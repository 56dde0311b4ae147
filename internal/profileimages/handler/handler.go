package handler

import (
	"net/http"
	"strconv"

	"mediavault_backend/internal/profileimages/domain"
	"mediavault_backend/internal/profileimages/service"
	"mediavault_backend/internal/profileimages/transport"
	"mediavault_backend/platform/httpkit"
	"mediavault_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest     = "invalid request"
	msgInvalidProfileType = "profileType must be either 'customer' or 'lead'."
	msgInvalidProfileID   = "profileId must be a whole number."
	msgInvalidImageID     = "imageId must be a whole number."
)

// Handler handles HTTP requests for profile images.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new profile-image handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Upload stores a batch of images.
// POST /api/v1/profiles/:profileType/:profileId/images
func (h *Handler) Upload(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req transport.UploadImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	images, err := h.svc.Upload(c.Request.Context(), owner, req.ToUploadItems())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromImages(images))
}

// List returns all images of a profile.
// GET /api/v1/profiles/:profileType/:profileId/images
func (h *Handler) List(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	images, err := h.svc.List(c.Request.Context(), owner)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromImages(images))
}

// Delete removes one image.
// DELETE /api/v1/profiles/:profileType/:profileId/images/:imageId
func (h *Handler) Delete(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	imageID, err := strconv.ParseInt(c.Param("imageId"), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidImageID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), owner, imageID)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) owner(c *gin.Context) (domain.Owner, bool) {
	path := transport.ProfilePath{ProfileType: c.Param("profileType")}
	if err := h.val.Struct(path); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProfileType, gin.H{"profileType": []string{msgInvalidProfileType}})
		return domain.Owner{}, false
	}
	ownerType, _ := domain.ParseOwnerType(path.ProfileType)

	ownerID, err := strconv.ParseInt(c.Param("profileId"), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProfileID, nil)
		return domain.Owner{}, false
	}
	return domain.Owner{Type: ownerType, ID: ownerID}, true
}
