package tasks

import (
	"fmt"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/shared"
)

// Transition moves a task along a workflow edge on behalf of an actor.
//
// The edge must exist in the transition table and the actor's role must be
// permitted on it. Entering Submitted records the actor in DoneBy; moving
// back to New or Received clears it. Transitions into Archived record the
// pre-archive status so Restore can return to it exactly.
//
// Submitting does not require all sets to be complete; completion is
// informational, not a gate.
func Transition(task *models.Task, to models.Status, actor models.Actor) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidTransition, to)
	}
	if !HasEdge(task.Status, to) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, task.Status, to)
	}
	if !CanTransition(actor.Role, task.Status, to) {
		return fmt.Errorf("%w: transition %s -> %s", shared.ErrForbidden, task.Status, to)
	}

	from := task.Status

	switch to {
	case models.StatusArchived:
		task.PreArchiveStatus = from
		task.Archived = true
	case models.StatusSubmitted:
		task.DoneBy = actor.ActorID
	case models.StatusNew, models.StatusReceived:
		task.DoneBy = ""
	}

	task.Status = to
	task.Touch()
	return nil
}

// Archive moves a task into the archived state.
//
// Only submitted or completed tasks may be archived; the check is on the
// edge itself, so the failure is the same regardless of role.
func Archive(task *models.Task, actor models.Actor) error {
	return Transition(task, models.StatusArchived, actor)
}

// Restore returns an archived task to its pre-archive status.
// Admin only; fails on any non-archived task.
func Restore(task *models.Task, actor models.Actor) error {
	if task.Status != models.StatusArchived {
		return fmt.Errorf("%w: restore requires archived status, task is %s", shared.ErrInvalidTransition, task.Status)
	}
	if !CanRestore(actor.Role) {
		return fmt.Errorf("%w: restore", shared.ErrForbidden)
	}

	task.Status = task.PreArchiveStatus
	task.PreArchiveStatus = ""
	task.Archived = false
	task.Touch()
	return nil
}

// AuthorizeDelete checks whether an actor may permanently delete a task.
// Deletion is irreversible and distinct from archiving.
func AuthorizeDelete(actor models.Actor) error {
	if !CanDelete(actor.Role) {
		return fmt.Errorf("%w: delete task", shared.ErrForbidden)
	}
	return nil
}
