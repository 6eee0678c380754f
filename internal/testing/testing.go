// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/services"
	"github.com/calegria/shotwork/internal/shared"
)

// MockStore is an in-memory test double for tasks.Store with version
// checking and optional conflict injection.
type MockStore struct {
	mu    sync.Mutex
	docs  map[string]*models.Task
	seq   int
	Fail  error // when set, every call returns this error
	Races int   // number of Update calls to fail with a conflict before succeeding
}

func NewMockStore() *MockStore {
	return &MockStore{docs: map[string]*models.Task{}}
}

func (m *MockStore) Create(task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.seq++
	task.Sequence = m.seq
	task.Version = 1
	m.docs[task.TaskID] = task.Clone()
	return nil
}

func (m *MockStore) Get(id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	task, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	return task.Clone(), nil
}

func (m *MockStore) Update(task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if m.Races > 0 {
		m.Races--
		return fmt.Errorf("%w: injected", shared.ErrConflict)
	}
	current, ok := m.docs[task.TaskID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, task.TaskID)
	}
	if current.Version != task.Version {
		return fmt.Errorf("%w: task %s version %d", shared.ErrConflict, task.TaskID, task.Version)
	}
	next := task.Clone()
	next.Version = task.Version + 1
	m.docs[task.TaskID] = next
	task.Version = next.Version
	return nil
}

func (m *MockStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	delete(m.docs, id)
	return nil
}

func (m *MockStore) List(criteria map[string]any) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var result []*models.Task
	for _, task := range m.docs {
		if status, ok := criteria["status"].(string); ok && string(task.Status) != status {
			continue
		}
		if archived, ok := criteria["archived"].(bool); ok && task.Archived != archived {
			continue
		}
		result = append(result, task.Clone())
	}
	return result, nil
}

// MockNotifier records every published event.
type MockNotifier struct {
	mu     sync.Mutex
	Events []services.TaskEvent
	Fail   error
}

func (m *MockNotifier) Publish(ctx context.Context, event services.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockNotifier) Name() string { return "mock" }

// Published returns a copy of the recorded events.
func (m *MockNotifier) Published() []services.TaskEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.TaskEvent{}, m.Events...)
}

// MockResolver is a test double for services.MediaResolver that records
// purge requests.
type MockResolver struct {
	mu     sync.Mutex
	Purged [][]string
	URL    string
	Fail   error
}

func (m *MockResolver) Resolve(ctx context.Context, fileID string) (string, error) {
	if m.Fail != nil {
		return "", m.Fail
	}
	if m.URL != "" {
		return m.URL, nil
	}
	return "https://media.test/" + fileID, nil
}

func (m *MockResolver) Purge(ctx context.Context, fileIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Purged = append(m.Purged, fileIDs)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
