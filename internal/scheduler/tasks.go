package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskArchiveProfileImage = "profile_images.archive"

const TaskPurgeProfileImage = "profile_images.purge"

type ArchiveProfileImagePayload struct {
	OwnerType string `json:"ownerType"`
	OwnerID   int64  `json:"ownerId"`
	ImageID   int64  `json:"imageId"`
}

type PurgeProfileImagePayload struct {
	OwnerType   string `json:"ownerType"`
	OwnerID     int64  `json:"ownerId"`
	Fingerprint string `json:"fingerprint"`
}

func NewArchiveProfileImageTask(payload ArchiveProfileImagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskArchiveProfileImage, data), nil
}

func ParseArchiveProfileImagePayload(task *asynq.Task) (ArchiveProfileImagePayload, error) {
	var payload ArchiveProfileImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ArchiveProfileImagePayload{}, err
	}
	return payload, nil
}

func NewPurgeProfileImageTask(payload PurgeProfileImagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeProfileImage, data), nil
}

func ParsePurgeProfileImagePayload(task *asynq.Task) (PurgeProfileImagePayload, error) {
	var payload PurgeProfileImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PurgeProfileImagePayload{}, err
	}
	return payload, nil
}
