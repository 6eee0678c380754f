package models

import (
	"fmt"
	"time"

	"github.com/calegria/shotwork/internal/shared"
)

// Status represents a task's position in the approval workflow.
type Status string

const (
	StatusNew       Status = "new"
	StatusReceived  Status = "received"
	StatusSubmitted Status = "submitted"
	StatusRedo      Status = "redo"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Statuses lists all workflow statuses in lifecycle order.
var Statuses = []Status{
	StatusNew, StatusReceived, StatusSubmitted, StatusRedo, StatusCompleted, StatusArchived,
}

// Valid reports whether s is a known workflow status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReceived, StatusSubmitted, StatusRedo, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Role represents an actor's privilege level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLead   Role = "lead"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Roles lists all roles from most to least privileged.
var Roles = []Role{RoleAdmin, RoleLead, RoleMember, RoleViewer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLead, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Actor identifies a user and their resolved role making a request.
//
// Authentication and role resolution happen upstream; the engine trusts
// the actor it is handed.
type Actor struct {
	ActorID string `json:"id"`
	Role    Role   `json:"role"`
}

// MediaKind tags a media item as a photo or video.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// MediaItem references a stored photo or video by its external file ID.
// The service never handles media bytes, only identifiers.
type MediaItem struct {
	FileID     string    `json:"file_id"`
	Kind       MediaKind `json:"kind"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// MediaSet is a bundle of photos plus an optional video within a task.
// Sets are identified by their index in Task.Sets; photo order is upload order.
type MediaSet struct {
	Photos []MediaItem `json:"photos"`
	Video  *MediaItem  `json:"video,omitempty"`
}

// Task is the aggregate root tracked through the approval workflow.
//
// Version backs optimistic concurrency: it is loaded with the aggregate
// and checked on every persisted update.
type Task struct {
	TaskID           string     `json:"id"`
	Sequence         int        `json:"sequence"`
	Title            string     `json:"title"`
	Status           Status     `json:"status"`
	RequireSets      int        `json:"require_sets"`
	RequirePhotos    int        `json:"require_photos"`
	VideoRequired    bool       `json:"video_required"`
	Sets             []MediaSet `json:"sets"`
	CreatedPhoto     MediaItem  `json:"created_photo"`
	CreatedBy        string     `json:"created_by"`
	DoneBy           string     `json:"done_by,omitempty"`
	CompletedSets    int        `json:"completed_sets"`
	Archived         bool       `json:"archived"`
	PreArchiveStatus Status     `json:"pre_archive_status,omitempty"`
	LockedTo         string     `json:"locked_to,omitempty"`
	Version          int        `json:"version"`
	Created          time.Time  `json:"created_at"`
	Updated          time.Time  `json:"updated_at"`
}

var _ Model = (*Task)(nil)

// NewTask creates a task in the initial workflow state from its originating photo.
func NewTask(title string, requireSets, requirePhotos int, videoRequired bool, createdPhoto MediaItem, createdBy string) *Task {
	now := time.Now().UTC()
	return &Task{
		TaskID:        shared.GenerateID(),
		Title:         title,
		Status:        StatusNew,
		RequireSets:   requireSets,
		RequirePhotos: requirePhotos,
		VideoRequired: videoRequired,
		Sets:          []MediaSet{},
		CreatedPhoto:  createdPhoto,
		CreatedBy:     createdBy,
		Version:       1,
		Created:       now,
		Updated:       now,
	}
}

// ID implements [Model].
func (t *Task) ID() string { return t.TaskID }

// CreatedAt implements [Model].
func (t *Task) CreatedAt() time.Time { return t.Created }

// UpdatedAt implements [Model].
func (t *Task) UpdatedAt() time.Time { return t.Updated }

// Validate checks structural invariants of the aggregate.
func (t *Task) Validate() error {
	if t.TaskID == "" {
		return fmt.Errorf("%w: task id is required", shared.ErrInvalidInput)
	}
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, t.Status)
	}
	if t.RequireSets <= 0 {
		return fmt.Errorf("%w: require_sets must be positive", shared.ErrInvalidInput)
	}
	if t.RequirePhotos <= 0 {
		return fmt.Errorf("%w: require_photos must be positive", shared.ErrInvalidInput)
	}
	if len(t.Sets) > t.RequireSets {
		return fmt.Errorf("%w: %d sets exceed required %d", shared.ErrInvalidInput, len(t.Sets), t.RequireSets)
	}
	if t.CreatedPhoto.FileID == "" {
		return fmt.Errorf("%w: created photo file id is required", shared.ErrInvalidInput)
	}
	if t.CompletedSets < 0 || t.CompletedSets > t.RequireSets {
		return fmt.Errorf("%w: completed_sets %d out of range", shared.ErrInvalidInput, t.CompletedSets)
	}
	if (t.Status == StatusArchived) != t.Archived {
		return fmt.Errorf("%w: archived flag out of sync with status", shared.ErrInvalidInput)
	}
	return nil
}

// HasFileID reports whether fileID exists anywhere in the task's media,
// including the originating photo.
func (t *Task) HasFileID(fileID string) bool {
	if t.CreatedPhoto.FileID == fileID {
		return true
	}
	for _, set := range t.Sets {
		for _, photo := range set.Photos {
			if photo.FileID == fileID {
				return true
			}
		}
		if set.Video != nil && set.Video.FileID == fileID {
			return true
		}
	}
	return false
}

// MediaCount returns the number of media items across all sets,
// excluding the originating photo.
func (t *Task) MediaCount() int {
	n := 0
	for _, set := range t.Sets {
		n += len(set.Photos)
		if set.Video != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the aggregate.
//
// Mutations operate on a clone so a failed persist never leaves a
// half-modified aggregate visible to the caller.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Sets = make([]MediaSet, len(t.Sets))
	for i, set := range t.Sets {
		photos := make([]MediaItem, len(set.Photos))
		copy(photos, set.Photos)
		clone.Sets[i] = MediaSet{Photos: photos}
		if set.Video != nil {
			video := *set.Video
			clone.Sets[i].Video = &video
		}
	}
	return &clone
}

// Touch updates the modification timestamp.
func (t *Task) Touch() {
	t.Updated = time.Now().UTC()
}
