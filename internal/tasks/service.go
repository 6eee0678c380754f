package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/services"
	"github.com/calegria/shotwork/internal/shared"
	"github.com/charmbracelet/log"
)

// Store defines the persistence operations the façade needs.
//
// Update is version-checked: implementations compare the aggregate's loaded
// version against the stored row and return [shared.ErrConflict] on a
// mismatch. repositories.TaskRepository implements this interface.
type Store interface {
	Create(task *models.Task) error
	Get(id string) (*models.Task, error)
	Update(task *models.Task) error
	Delete(id string) error
	List(criteria map[string]any) ([]*models.Task, error)
}

// TaskService is the externally callable façade over the engine.
//
// Every mutation follows the same shape: load the aggregate, apply the pure
// component to a clone, persist the clone as one versioned write, publish an
// event. Version conflicts are retried a bounded number of times with
// backoff; all other failures surface immediately.
type TaskService struct {
	store         Store
	notifier      services.Notifier
	resolver      services.MediaResolver
	logger        *log.Logger
	requirePhotos int
	maxRetries    int
}

// TaskServiceOpts contains configuration options for creating a TaskService.
type TaskServiceOpts struct {
	Store         Store
	Notifier      services.Notifier
	Resolver      services.MediaResolver
	Logger        *log.Logger
	RequirePhotos int // minimum photos per complete set (default 3)
	MaxRetries    int // persistence retries on version conflict (default 3)
}

// NewTaskService creates a TaskService with the provided dependencies.
func NewTaskService(opts TaskServiceOpts) *TaskService {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = services.NewLogNotifier(opts.Logger)
	}
	if opts.RequirePhotos <= 0 {
		opts.RequirePhotos = 3
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	return &TaskService{
		store:         opts.Store,
		notifier:      opts.Notifier,
		resolver:      opts.Resolver,
		logger:        opts.Logger,
		requirePhotos: opts.RequirePhotos,
		maxRetries:    opts.MaxRetries,
	}
}

// CreateTask creates a task in the New status from its originating photo.
func (s *TaskService) CreateTask(ctx context.Context, title string, requireSets int, videoRequired bool, createdPhotoFileID string, actor models.Actor) (*models.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if requireSets <= 0 {
		return nil, fmt.Errorf("%w: require_sets must be positive", shared.ErrInvalidInput)
	}
	if createdPhotoFileID == "" {
		return nil, fmt.Errorf("%w: created photo file id is required", shared.ErrInvalidInput)
	}
	if !actor.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidInput, actor.Role)
	}

	createdPhoto := models.MediaItem{
		FileID:     createdPhotoFileID,
		Kind:       models.MediaPhoto,
		UploadedBy: actor.ActorID,
		UploadedAt: time.Now().UTC(),
	}

	task := models.NewTask(title, requireSets, s.requirePhotos, videoRequired, createdPhoto, actor.ActorID)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publish(ctx, createdEvent(task, actor))
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	return s.store.Get(taskID)
}

// ListTasks retrieves tasks filtered by status and/or archived flag.
// Nil filters match everything.
func (s *TaskService) ListTasks(ctx context.Context, statusFilter *models.Status, archivedFilter *bool) ([]*models.Task, error) {
	criteria := map[string]any{}
	if statusFilter != nil {
		if !statusFilter.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, *statusFilter)
		}
		criteria["status"] = string(*statusFilter)
	}
	if archivedFilter != nil {
		criteria["archived"] = *archivedFilter
	}
	return s.store.List(criteria)
}

// AllowedActions returns the statuses the actor may move the task to from
// its current status. For archived tasks this is the restore target when
// the actor may restore, so clients never hold their own copy of the rules.
func (s *TaskService) AllowedActions(ctx context.Context, taskID string, actor models.Actor) ([]models.Status, error) {
	task, err := s.store.Get(taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == models.StatusArchived {
		if CanRestore(actor.Role) {
			return []models.Status{task.PreArchiveStatus}, nil
		}
		return []models.Status{}, nil
	}

	return AllowedTransitions(actor.Role, task.Status), nil
}

// TransitionTask moves a task along a workflow edge.
func (s *TaskService) TransitionTask(ctx context.Context, taskID string, to models.Status, actor models.Actor) (*models.Task, error) {
	var from models.Status
	task, err := s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		from = task.Status
		return Transition(task, to, actor)
	})
	if err != nil {
		return nil, err
	}

	if to == models.StatusArchived {
		s.publish(ctx, archivedEvent(task, actor))
	} else {
		s.publish(ctx, transitionedEvent(task, from, actor))
	}
	return task, nil
}

// ArchiveTask archives a submitted or completed task.
func (s *TaskService) ArchiveTask(ctx context.Context, taskID string, actor models.Actor) (*models.Task, error) {
	return s.TransitionTask(ctx, taskID, models.StatusArchived, actor)
}

// RestoreTask returns an archived task to its pre-archive status.
func (s *TaskService) RestoreTask(ctx context.Context, taskID string, actor models.Actor) (*models.Task, error) {
	task, err := s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		return Restore(task, actor)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, restoredEvent(task, actor))
	return task, nil
}

// AddPhoto appends a photo to the given set.
func (s *TaskService) AddPhoto(ctx context.Context, taskID string, setIndex int, fileID string, actor models.Actor) (*models.Task, error) {
	task, err := s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		return AddPhoto(task, setIndex, fileID, actor)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, mediaAddedEvent(task, fileID, actor))
	return task, nil
}

// AddVideo attaches a video to the given set.
func (s *TaskService) AddVideo(ctx context.Context, taskID string, setIndex int, fileID string, actor models.Actor) (*models.Task, error) {
	task, err := s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		return AddVideo(task, setIndex, fileID, actor)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, mediaAddedEvent(task, fileID, actor))
	return task, nil
}

// DeleteMedia removes a single media item from the task.
func (s *TaskService) DeleteMedia(ctx context.Context, taskID string, fileID string, actor models.Actor) (*models.Task, error) {
	return s.DeleteMediaBatch(ctx, taskID, []string{fileID}, actor)
}

// DeleteMediaBatch removes several media items as one atomic unit.
//
// All deletions are applied to a single clone and persisted in one write:
// if any item is protected, missing, or unauthorized, nothing is removed.
func (s *TaskService) DeleteMediaBatch(ctx context.Context, taskID string, fileIDs []string, actor models.Actor) (*models.Task, error) {
	if len(fileIDs) == 0 {
		return nil, fmt.Errorf("%w: no file ids given", shared.ErrInvalidInput)
	}

	task, err := s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		for _, fileID := range fileIDs {
			if err := DeleteMedia(task, fileID, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, fileID := range fileIDs {
		s.publish(ctx, mediaRemovedEvent(task, fileID, actor))
	}
	return task, nil
}

// LockTask reserves exclusive edit rights on a task for the actor.
// The lock is advisory: admins bypass it, everyone else is refused mutation.
func (s *TaskService) LockTask(ctx context.Context, taskID string, actor models.Actor) (*models.Task, error) {
	if actor.Role == models.RoleViewer {
		return nil, fmt.Errorf("%w: lock task", shared.ErrForbidden)
	}
	return s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		task.LockedTo = actor.ActorID
		task.Touch()
		return nil
	})
}

// UnlockTask releases a task lock. Only the lock holder or an admin may unlock.
func (s *TaskService) UnlockTask(ctx context.Context, taskID string, actor models.Actor) (*models.Task, error) {
	return s.mutate(ctx, taskID, actor, func(task *models.Task) error {
		if task.LockedTo == "" {
			return nil
		}
		if task.LockedTo != actor.ActorID && actor.Role != models.RoleAdmin {
			return fmt.Errorf("%w: unlock task", shared.ErrForbidden)
		}
		task.LockedTo = ""
		task.Touch()
		return nil
	})
}

// DeleteTask permanently deletes a task and requests a purge of its media.
// Irreversible and admin only; archiving is the recoverable alternative.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string, actor models.Actor) error {
	if err := AuthorizeDelete(actor); err != nil {
		return err
	}

	task, err := s.store.Get(taskID)
	if err != nil {
		return err
	}

	fileIDs := []string{task.CreatedPhoto.FileID}
	for _, set := range task.Sets {
		for _, photo := range set.Photos {
			fileIDs = append(fileIDs, photo.FileID)
		}
		if set.Video != nil {
			fileIDs = append(fileIDs, set.Video.FileID)
		}
	}

	if err := s.store.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if s.resolver != nil {
		if err := s.resolver.Purge(ctx, fileIDs); err != nil {
			s.logger.Warn("media purge failed", "task_id", taskID, "error", err)
		}
	}

	s.publish(ctx, deletedEvent(task, actor))
	return nil
}

// mutate runs fn against a clone of the stored aggregate and persists the
// result, retrying on version conflict.
//
// Cancellation is honored only before the persist step; once the write is
// issued the operation runs to completion.
func (s *TaskService) mutate(ctx context.Context, taskID string, actor models.Actor, fn func(*models.Task) error) (*models.Task, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.store.Get(taskID)
		if err != nil {
			return nil, err
		}

		task := current.Clone()

		if task.LockedTo != "" && task.LockedTo != actor.ActorID && actor.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: locked to %s", shared.ErrTaskLocked, task.LockedTo)
		}

		if err := fn(task); err != nil {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err = s.store.Update(task)
		if err == nil {
			return task, nil
		}
		if !errors.Is(err, shared.ErrConflict) || attempt >= s.maxRetries {
			return nil, err
		}

		s.logger.Debug("version conflict, retrying", "task_id", taskID, "attempt", attempt+1)
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}
}

// publish sends an event to the notifier, logging failures instead of
// propagating them into the mutation path.
func (s *TaskService) publish(ctx context.Context, event services.TaskEvent) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "notifier", s.notifier.Name(), "type", event.Type, "task_id", event.TaskID, "error", err)
	}
}
