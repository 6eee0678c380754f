package ui

import (
	"fmt"

	"github.com/calegria/shotwork/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = taskItem{}
)

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task *models.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string {
	desc := fmt.Sprintf("%s • %d/%d sets", i.task.Status, i.task.CompletedSets, i.task.RequireSets)
	if i.task.Archived {
		desc = fmt.Sprintf("%s • archived", desc)
	}
	if i.task.LockedTo != "" {
		desc = fmt.Sprintf("%s • locked to %s", desc, i.task.LockedTo)
	}
	return desc
}
