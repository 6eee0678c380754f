// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for task tracking:
//  1. [TaskListView] : Browse tasks with status and completion progress
//  2. [TaskDetailView] : Inspect a task's media sets and apply transitions
//  3. [ConfirmArchiveView] : Confirm archiving a task
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Allowed transitions come from the server per task and actor; the TUI only
// displays affordances, it never carries its own copy of the workflow rules.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
