package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TaskListView ViewState = iota
	TaskDetailView
	ConfirmArchiveView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	service  *tasks.TaskService
	actor    models.Actor
	width    int
	height   int
	taskList list.Model
	tasks    []*models.Task
	selected *models.Task
	allowed  []models.Status
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, service *tasks.TaskService, actor models.Actor) *Model {
	return &Model{
		ctx:     ctx,
		view:    TaskListView,
		service: service,
		actor:   actor,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching the task list.
func (m *Model) Init() tea.Cmd {
	return m.fetchTasks()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.taskList.Width() == 0 {
			m.taskList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TaskListView:
			return m.handleTaskListKeys(msg)
		case TaskDetailView:
			return m.handleDetailKeys(msg)
		case ConfirmArchiveView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleAppMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleAppMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTasksFetched:
		data := msg.data.(struct {
			tasks []*models.Task
			err   error
		})
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		m.tasks = data.tasks
		items := make([]list.Item, len(data.tasks))
		for i, task := range data.tasks {
			items[i] = taskItem{task: task}
		}
		m.taskList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.taskList.Title = "Tasks"
		m.taskList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgTaskLoaded:
		data := msg.data.(struct {
			task    *models.Task
			allowed []models.Status
			err     error
		})
		if data.err != nil {
			m.err = data.err
			m.view = TaskListView
			return m, nil
		}
		m.selected = data.task
		m.allowed = data.allowed
		m.status = ""
		m.view = TaskDetailView
		return m, nil

	case MsgActionApplied:
		data := msg.data.(struct {
			task *models.Task
			err  error
		})
		if data.err != nil {
			m.status = fmt.Sprintf("refused: %v", data.err)
			return m, nil
		}
		m.status = fmt.Sprintf("task is now %s", data.task.Status)
		return m, m.loadTask(data.task.TaskID)
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case TaskListView:
		return m.renderTaskList()
	case TaskDetailView:
		return m.renderDetail()
	case ConfirmArchiveView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleTaskListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchTasks()
	case "enter":
		selected := m.taskList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(taskItem); ok {
				return m, m.loadTask(item.task.TaskID)
			}
		}
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pressed := msg.String()
	switch pressed {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TaskListView
		m.selected = nil
		return m, m.fetchTasks()
	case "a":
		if m.selected != nil && !m.selected.Archived {
			m.view = ConfirmArchiveView
		}
		return m, nil
	}

	// digits apply the nth allowed transition
	if n, err := strconv.Atoi(pressed); err == nil && n >= 1 && n <= len(m.allowed) {
		return m, m.applyTransition(m.selected.TaskID, m.allowed[n-1])
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = TaskDetailView
		return m, nil
	case "y":
		m.view = TaskDetailView
		return m, m.archiveTask(m.selected.TaskID)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == TaskListView {
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchTasks() tea.Cmd {
	return func() tea.Msg {
		list, err := m.service.ListTasks(m.ctx, nil, nil)
		return tasksFetchedMsg(list, err)
	}
}

func (m *Model) loadTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.service.GetTask(m.ctx, taskID)
		if err != nil {
			return taskLoadedMsg(nil, nil, err)
		}
		allowed, err := m.service.AllowedActions(m.ctx, taskID, m.actor)
		return taskLoadedMsg(task, allowed, err)
	}
}

func (m *Model) applyTransition(taskID string, to models.Status) tea.Cmd {
	return func() tea.Msg {
		var task *models.Task
		var err error
		if m.selected != nil && m.selected.Archived {
			task, err = m.service.RestoreTask(m.ctx, taskID, m.actor)
		} else {
			task, err = m.service.TransitionTask(m.ctx, taskID, to, m.actor)
		}
		return actionAppliedMsg(task, err)
	}
}

func (m *Model) archiveTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.service.ArchiveTask(m.ctx, taskID, m.actor)
		return actionAppliedMsg(task, err)
	}
}

func (m *Model) renderTaskList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.taskList.View(), helpView)
}

func (m *Model) renderDetail() string {
	task := m.selected
	if task == nil {
		return ""
	}

	title := styles.title.Render(task.Title)
	info := fmt.Sprintf("Status: %s\nProgress: %d/%d sets complete\nMedia: %d items",
		task.Status, task.CompletedSets, task.RequireSets, task.MediaCount())
	if task.DoneBy != "" {
		info += fmt.Sprintf("\nDone by: %s", task.DoneBy)
	}
	if task.LockedTo != "" {
		info += fmt.Sprintf("\n%s", styles.warn.Render(fmt.Sprintf("Locked to %s", task.LockedTo)))
	}

	sets := ""
	for i, set := range task.Sets {
		marker := " "
		if tasks.IsSetComplete(set, task.RequirePhotos, task.VideoRequired) {
			marker = styles.ok.Render("✓")
		}
		video := "no video"
		if set.Video != nil {
			video = "video"
		}
		sets += fmt.Sprintf("\n%s set %d: %d photos, %s", marker, i+1, len(set.Photos), video)
	}

	actions := ""
	for i, status := range m.allowed {
		actions += fmt.Sprintf("\n  %d. %s", i+1, status)
	}
	if actions == "" {
		actions = "\n  none"
	}

	statusLine := ""
	if m.status != "" {
		statusLine = "\n\n" + styles.warn.Render(m.status)
	}

	helpView := styles.help.Render("1-9 transition • a archive • esc back • q quit")
	return fmt.Sprintf("%s\n\n%s\n%s\n\nAvailable actions:%s%s\n\n%s",
		title, info, sets, actions, statusLine, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Archive '%s'?", m.selected.Title))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
