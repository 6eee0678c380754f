package tasks

import (
	"fmt"
	"time"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/services"
)

func newEvent(kind services.EventType, task *models.Task, actor models.Actor) services.TaskEvent {
	return services.TaskEvent{
		Type:          kind,
		TaskID:        task.TaskID,
		Title:         task.Title,
		Status:        string(task.Status),
		ActorID:       actor.ActorID,
		CompletedSets: task.CompletedSets,
		RequireSets:   task.RequireSets,
		At:            time.Now().UTC(),
	}
}

func createdEvent(task *models.Task, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventTaskCreated, task, actor)
	event.Message = fmt.Sprintf("Task %q created, %d sets required", task.Title, task.RequireSets)
	return event
}

func transitionedEvent(task *models.Task, from models.Status, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventTaskTransitioned, task, actor)
	event.Message = fmt.Sprintf("Task %q moved %s -> %s", task.Title, from, task.Status)
	return event
}

func archivedEvent(task *models.Task, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventTaskArchived, task, actor)
	event.Message = fmt.Sprintf("Task %q archived", task.Title)
	return event
}

func restoredEvent(task *models.Task, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventTaskRestored, task, actor)
	event.Message = fmt.Sprintf("Task %q restored to %s", task.Title, task.Status)
	return event
}

func deletedEvent(task *models.Task, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventTaskDeleted, task, actor)
	event.Message = fmt.Sprintf("Task %q permanently deleted", task.Title)
	return event
}

func mediaAddedEvent(task *models.Task, fileID string, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventMediaAdded, task, actor)
	event.FileID = fileID
	event.Message = fmt.Sprintf("Media added to %q (%d/%d sets complete)", task.Title, task.CompletedSets, task.RequireSets)
	return event
}

func mediaRemovedEvent(task *models.Task, fileID string, actor models.Actor) services.TaskEvent {
	event := newEvent(services.EventMediaRemoved, task, actor)
	event.FileID = fileID
	event.Message = fmt.Sprintf("Media removed from %q (%d/%d sets complete)", task.Title, task.CompletedSets, task.RequireSets)
	return event
}
