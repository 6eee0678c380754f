package ui

import (
	"github.com/calegria/shotwork/internal/models"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTasksFetched MsgKind = iota
	MsgTaskLoaded
	MsgActionApplied
)

// tasksFetchedMsg is the constructor for [MsgTasksFetched]
func tasksFetchedMsg(tasks []*models.Task, err error) Msg {
	return Msg{
		kind: MsgTasksFetched,
		data: struct {
			tasks []*models.Task
			err   error
		}{tasks, err},
	}
}

// taskLoadedMsg is the constructor for [MsgTaskLoaded]
func taskLoadedMsg(task *models.Task, allowed []models.Status, err error) Msg {
	return Msg{
		kind: MsgTaskLoaded,
		data: struct {
			task    *models.Task
			allowed []models.Status
			err     error
		}{task, allowed, err},
	}
}

// actionAppliedMsg is the constructor for [MsgActionApplied]
func actionAppliedMsg(task *models.Task, err error) Msg {
	return Msg{
		kind: MsgActionApplied,
		data: struct {
			task *models.Task
			err  error
		}{task, err},
	}
}
