package tasks

import (
	"github.com/calegria/shotwork/internal/models"
)

// edge is a permitted (from, to) status pair in the lifecycle table.
type edge struct {
	from models.Status
	to   models.Status
}

// transitionTable is the single authoritative copy of the workflow rules.
// Presentation layers must ask the server for allowed actions rather than
// carry their own copy of this table.
var transitionTable = map[edge][]models.Role{
	{models.StatusNew, models.StatusReceived}:        {models.RoleMember, models.RoleLead, models.RoleAdmin},
	{models.StatusReceived, models.StatusNew}:        {models.RoleLead, models.RoleAdmin},
	{models.StatusReceived, models.StatusSubmitted}:  {models.RoleMember, models.RoleLead, models.RoleAdmin},
	{models.StatusRedo, models.StatusSubmitted}:      {models.RoleMember, models.RoleLead, models.RoleAdmin},
	{models.StatusSubmitted, models.StatusRedo}:      {models.RoleLead, models.RoleAdmin},
	{models.StatusSubmitted, models.StatusCompleted}: {models.RoleLead, models.RoleAdmin},
	{models.StatusSubmitted, models.StatusArchived}:  {models.RoleLead, models.RoleAdmin, models.RoleViewer},
	{models.StatusCompleted, models.StatusArchived}:  {models.RoleLead, models.RoleAdmin, models.RoleViewer},
}

// HasEdge reports whether (from, to) is a defined workflow transition.
func HasEdge(from, to models.Status) bool {
	_, ok := transitionTable[edge{from, to}]
	return ok
}

// CanTransition reports whether role may move a task along the (from, to) edge.
// Admins may perform any defined transition.
func CanTransition(role models.Role, from, to models.Status) bool {
	roles, ok := transitionTable[edge{from, to}]
	if !ok {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanRestore reports whether role may restore an archived task.
func CanRestore(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanDelete reports whether role may permanently delete a task.
func CanDelete(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanDeleteMedia reports whether role may delete media items from a task.
// Viewers may never delete media.
func CanDeleteMedia(role models.Role) bool {
	switch role {
	case models.RoleAdmin, models.RoleLead, models.RoleMember:
		return true
	}
	return false
}

// AllowedTransitions returns the statuses an actor with the given role may
// move a task to from its current status, in lifecycle order.
func AllowedTransitions(role models.Role, from models.Status) []models.Status {
	allowed := []models.Status{}
	for _, to := range models.Statuses {
		if CanTransition(role, from, to) {
			allowed = append(allowed, to)
		}
	}
	return allowed
}
