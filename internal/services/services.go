// package services defines interfaces for external collaborators
//
// Notification dispatch (Redis), media proxy (HTTP)
package services

import (
	"context"
	"time"
)

// EventType enumerates the task events published to the notifier.
type EventType string

const (
	EventTaskCreated      EventType = "task.created"
	EventTaskTransitioned EventType = "task.transitioned"
	EventTaskArchived     EventType = "task.archived"
	EventTaskRestored     EventType = "task.restored"
	EventTaskDeleted      EventType = "task.deleted"
	EventMediaAdded       EventType = "media.added"
	EventMediaRemoved     EventType = "media.removed"
)

// TaskEvent describes a committed change to a task aggregate.
//
// Events are published after persistence succeeds; consumers (the chat bot)
// render them into group messages.
type TaskEvent struct {
	Type          EventType `json:"type"`
	TaskID        string    `json:"task_id"`
	Title         string    `json:"title,omitempty"`
	Status        string    `json:"status,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	FileID        string    `json:"file_id,omitempty"`
	CompletedSets int       `json:"completed_sets"`
	RequireSets   int       `json:"require_sets"`
	Message       string    `json:"message,omitempty"`
	At            time.Time `json:"at"`
}

// Notifier dispatches task events to downstream consumers.
//
// Publish is best effort: failures are logged by callers, never propagated
// into the mutation path.
type Notifier interface {
	// Publish delivers a single event.
	Publish(ctx context.Context, event TaskEvent) error

	// Name identifies the notifier implementation for logging.
	Name() string
}

// MediaResolver resolves opaque file IDs against the external media proxy.
type MediaResolver interface {
	// Resolve returns a fetchable URL for the given file ID.
	Resolve(ctx context.Context, fileID string) (string, error)

	// Purge asks the proxy to delete the binary data behind the given file
	// IDs. Called after a task is permanently deleted.
	Purge(ctx context.Context, fileIDs []string) error
}
