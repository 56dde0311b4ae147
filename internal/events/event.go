// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"mediavault_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Profile Image Domain Events
// =============================================================================

// ProfileImagesUploaded is published after an upload batch has been committed.
type ProfileImagesUploaded struct {
	BaseEvent
	OwnerType string  `json:"ownerType"`
	OwnerID   int64   `json:"ownerId"`
	ImageIDs  []int64 `json:"imageIds"`
}

func (e ProfileImagesUploaded) EventName() string { return "profile_images.uploaded" }

// ProfileImageDeleted is published after an image removal has been committed.
type ProfileImageDeleted struct {
	BaseEvent
	OwnerType   string `json:"ownerType"`
	OwnerID     int64  `json:"ownerId"`
	ImageID     int64  `json:"imageId"`
	Fingerprint string `json:"fingerprint"`
}

func (e ProfileImageDeleted) EventName() string { return "profile_images.deleted" }
