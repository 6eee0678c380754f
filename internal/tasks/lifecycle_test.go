package tasks

import (
	"errors"
	"testing"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/shared"
)

func taskAt(status models.Status) *models.Task {
	task := newTestTask(1, false)
	task.Status = status
	if status == models.StatusArchived {
		task.Archived = true
		task.PreArchiveStatus = models.StatusSubmitted
	}
	return task
}

func TestTransition(t *testing.T) {
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}
	lead := models.Actor{ActorID: "lead-1", Role: models.RoleLead}

	t.Run("member receives a new task", func(t *testing.T) {
		task := taskAt(models.StatusNew)
		if err := Transition(task, models.StatusReceived, member); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if task.Status != models.StatusReceived {
			t.Errorf("Expected received, got %s", task.Status)
		}
	})

	t.Run("undefined edge is invalid", func(t *testing.T) {
		task := taskAt(models.StatusNew)
		err := Transition(task, models.StatusCompleted, lead)
		if !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("unknown status is invalid", func(t *testing.T) {
		task := taskAt(models.StatusNew)
		err := Transition(task, models.Status("bogus"), lead)
		if !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("insufficient role is forbidden", func(t *testing.T) {
		task := taskAt(models.StatusReceived)
		err := Transition(task, models.StatusNew, member)
		if !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
		if task.Status != models.StatusReceived {
			t.Errorf("Expected status unchanged on refusal, got %s", task.Status)
		}
	})
}

func TestDoneByBookkeeping(t *testing.T) {
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}
	lead := models.Actor{ActorID: "lead-1", Role: models.RoleLead}

	t.Run("set on entering submitted", func(t *testing.T) {
		task := taskAt(models.StatusReceived)
		if err := Transition(task, models.StatusSubmitted, member); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if task.DoneBy != "member-1" {
			t.Errorf("Expected doneBy member-1, got %q", task.DoneBy)
		}
	})

	t.Run("unchanged on submitted to completed", func(t *testing.T) {
		task := taskAt(models.StatusReceived)
		if err := Transition(task, models.StatusSubmitted, member); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}

		// a member may not complete
		if err := Transition(task, models.StatusCompleted, member); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("Expected ErrForbidden for member completing, got %v", err)
		}

		if err := Transition(task, models.StatusCompleted, lead); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if task.DoneBy != "member-1" {
			t.Errorf("Expected doneBy to survive completion, got %q", task.DoneBy)
		}
	})

	t.Run("cleared on return to received", func(t *testing.T) {
		task := taskAt(models.StatusReceived)
		if err := Transition(task, models.StatusSubmitted, member); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if err := Transition(task, models.StatusRedo, lead); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if task.DoneBy != "member-1" {
			t.Errorf("Expected doneBy kept on redo, got %q", task.DoneBy)
		}

		// redo resubmission records the new submitter
		resubmitter := models.Actor{ActorID: "member-2", Role: models.RoleMember}
		if err := Transition(task, models.StatusSubmitted, resubmitter); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if task.DoneBy != "member-2" {
			t.Errorf("Expected doneBy member-2 after resubmission, got %q", task.DoneBy)
		}
	})

	t.Run("cleared on return to new", func(t *testing.T) {
		task := taskAt(models.StatusReceived)
		task.DoneBy = "member-1"
		if err := Transition(task, models.StatusNew, lead); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}
		if task.DoneBy != "" {
			t.Errorf("Expected doneBy cleared, got %q", task.DoneBy)
		}
	})
}

func TestArchiveRestore(t *testing.T) {
	lead := models.Actor{ActorID: "lead-1", Role: models.RoleLead}
	admin := models.Actor{ActorID: "admin-1", Role: models.RoleAdmin}
	viewer := models.Actor{ActorID: "viewer-1", Role: models.RoleViewer}

	t.Run("archive records pre-archive status", func(t *testing.T) {
		task := taskAt(models.StatusCompleted)
		if err := Archive(task, viewer); err != nil {
			t.Fatalf("Archive failed: %v", err)
		}
		if !task.Archived || task.Status != models.StatusArchived {
			t.Errorf("Expected archived task, got status %s archived=%v", task.Status, task.Archived)
		}
		if task.PreArchiveStatus != models.StatusCompleted {
			t.Errorf("Expected pre-archive completed, got %s", task.PreArchiveStatus)
		}
	})

	t.Run("only submitted or completed may be archived", func(t *testing.T) {
		for _, status := range []models.Status{models.StatusNew, models.StatusReceived, models.StatusRedo} {
			task := taskAt(status)
			if err := Archive(task, admin); !errors.Is(err, shared.ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition archiving from %s, got %v", status, err)
			}
		}
	})

	t.Run("restore round-trips to the exact prior status", func(t *testing.T) {
		for _, status := range []models.Status{models.StatusSubmitted, models.StatusCompleted} {
			task := taskAt(status)
			task.DoneBy = "member-1"

			if err := Archive(task, lead); err != nil {
				t.Fatalf("Archive failed: %v", err)
			}
			if err := Restore(task, admin); err != nil {
				t.Fatalf("Restore failed: %v", err)
			}

			if task.Status != status || task.Archived {
				t.Errorf("Expected restored %s, got %s archived=%v", status, task.Status, task.Archived)
			}
			if task.DoneBy != "member-1" {
				t.Errorf("Expected doneBy preserved across archive cycle, got %q", task.DoneBy)
			}
			if task.PreArchiveStatus != "" {
				t.Errorf("Expected pre-archive status cleared, got %s", task.PreArchiveStatus)
			}
		}
	})

	t.Run("restore is admin only", func(t *testing.T) {
		task := taskAt(models.StatusArchived)
		if err := Restore(task, lead); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("restore requires archived status", func(t *testing.T) {
		task := taskAt(models.StatusSubmitted)
		if err := Restore(task, admin); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestSubmitWithoutCompleteness(t *testing.T) {
	// submission is not gated on completedSets
	member := models.Actor{ActorID: "member-1", Role: models.RoleMember}
	task := taskAt(models.StatusReceived)
	task.CompletedSets = 0

	if err := Transition(task, models.StatusSubmitted, member); err != nil {
		t.Errorf("Expected submit to succeed with incomplete sets, got %v", err)
	}
}

func TestAuthorizeDelete(t *testing.T) {
	if err := AuthorizeDelete(models.Actor{ActorID: "a", Role: models.RoleAdmin}); err != nil {
		t.Errorf("Expected admin delete to pass, got %v", err)
	}
	for _, role := range []models.Role{models.RoleLead, models.RoleMember, models.RoleViewer} {
		err := AuthorizeDelete(models.Actor{ActorID: "x", Role: role})
		if !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("Expected ErrForbidden for %s, got %v", role, err)
		}
	}
}
