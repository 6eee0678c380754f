package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/shared"
)

// TaskRepository persists task aggregates as versioned JSON documents.
//
// Implements the tasks.Store interface. Update is conditional on the
// aggregate's loaded version; a lost race surfaces as [shared.ErrConflict]
// so the façade can reload and retry.
type TaskRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Task] = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository with the given database connection
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task with generated sequence at version 1.
func (r *TaskRepository) Create(task *models.Task) error {
	sequence, err := NextSequence(r.db, "tasks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	task.Sequence = sequence
	task.Version = 1

	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	document, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	query := `
		INSERT INTO tasks (id, sequence, status, archived, version, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		task.TaskID,
		task.Sequence,
		string(task.Status),
		task.Archived,
		task.Version,
		string(document),
		task.Created,
		task.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Get retrieves a task by ID.
func (r *TaskRepository) Get(id string) (*models.Task, error) {
	query := `SELECT document, version FROM tasks WHERE id = ?`

	var document string
	var version int

	err := r.db.QueryRow(query, id).Scan(&document, &version)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	return decodeTask(document, version)
}

// Update persists a mutated aggregate, guarded by its loaded version.
//
// The row write bumps the stored version; the in-memory aggregate is bumped
// to match on success. A version mismatch returns [shared.ErrConflict].
func (r *TaskRepository) Update(task *models.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	next := task.Clone()
	next.Version = task.Version + 1

	document, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	query := `
		UPDATE tasks
		SET status = ?, archived = ?, version = ?, document = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.Exec(query,
		string(next.Status),
		next.Archived,
		next.Version,
		string(document),
		next.Updated,
		next.TaskID,
		task.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", task.TaskID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check task existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, task.TaskID)
		}
		return fmt.Errorf("%w: task %s version %d", shared.ErrConflict, task.TaskID, task.Version)
	}

	task.Version = next.Version
	return nil
}

// Delete permanently removes a task row. Irreversible; archiving is the
// recoverable alternative handled in the aggregate itself.
func (r *TaskRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}

	return nil
}

// List retrieves tasks matching the given criteria, ordered by sequence.
//
// Supported criteria: "status" (string), "archived" (bool).
func (r *TaskRepository) List(criteria map[string]any) ([]*models.Task, error) {
	query := `SELECT document, version FROM tasks WHERE 1 = 1`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if archived, ok := criteria["archived"].(bool); ok {
		query += " AND archived = ?"
		args = append(args, archived)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var document string
		var version int
		if err := rows.Scan(&document, &version); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task, err := decodeTask(document, version)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// decodeTask unmarshals a stored document, trusting the row's version column
// over whatever the document carried when it was written.
func decodeTask(document string, version int) (*models.Task, error) {
	var task models.Task
	if err := json.Unmarshal([]byte(document), &task); err != nil {
		return nil, fmt.Errorf("failed to decode task document: %w", err)
	}

	task.Version = version
	if task.Sets == nil {
		task.Sets = []models.MediaSet{}
	}

	return &task, nil
}
