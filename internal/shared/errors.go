package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Lifecycle errors
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	ErrForbidden         = fmt.Errorf("forbidden")
	ErrTaskLocked        = fmt.Errorf("task locked by another actor")

	// Media validation errors
	ErrProtectedMedia      = fmt.Errorf("protected media cannot be deleted")
	ErrSetIndexOutOfRange  = fmt.Errorf("set index out of range")
	ErrDuplicateMedia      = fmt.Errorf("media already exists in task")
	ErrVideoAlreadyPresent = fmt.Errorf("set already has a video")
	ErrMediaNotFound       = fmt.Errorf("media not found")

	// Persistence errors
	ErrTaskNotFound = fmt.Errorf("task not found")
	ErrConflict     = fmt.Errorf("version conflict")
	ErrTaskDeleted  = fmt.Errorf("task permanently deleted")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// External collaborator errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
)
