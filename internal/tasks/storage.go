package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saaga0h/daybreak/pkg/postgres"
)

// Storage provides persistent storage for tasks using PostgreSQL
type Storage struct {
	db     postgres.Client
	logger *slog.Logger
}

// NewStorage creates a new task storage instance
func NewStorage(db postgres.Client, logger *slog.Logger) *Storage {
	return &Storage{db: db, logger: logger}
}

// EnsureSchema creates the tasks table if it does not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			done BOOLEAN NOT NULL DEFAULT FALSE,
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}

	return nil
}

// Create inserts a new task at the end of the list
func (s *Storage) Create(ctx context.Context, title, notes string) (*Task, error) {
	task := &Task{
		ID:        uuid.New(),
		Title:     title,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	task.UpdatedAt = task.CreatedAt

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks`,
		).Scan(&task.Position); err != nil {
			return fmt.Errorf("failed to determine next position: %w", err)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, title, notes, done, position, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			task.ID, task.Title, task.Notes, task.Done, task.Position, task.CreatedAt, task.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Get fetches a single task by ID
func (s *Storage) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	err := s.db.QueryRow(ctx,
		`SELECT id, title, notes, done, position, created_at, updated_at
		 FROM tasks WHERE id = $1`, id,
	).Scan(&task.ID, &task.Title, &task.Notes, &task.Done, &task.Position, &task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}

	return &task, nil
}

// List returns tasks matching the filter, ordered by position
func (s *Storage) List(ctx context.Context, filter Filter) ([]Task, error) {
	query := `SELECT id, title, notes, done, position, created_at, updated_at
	          FROM tasks`
	switch filter {
	case FilterOpen:
		query += ` WHERE done = FALSE`
	case FilterDone:
		query += ` WHERE done = TRUE`
	}
	query += ` ORDER BY position`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Notes, &task.Done,
			&task.Position, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return result, nil
}

// Update applies the non-nil fields of params to a task
func (s *Storage) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Task, error) {
	var task Task
	err := s.db.QueryRow(ctx,
		`UPDATE tasks SET
			title = COALESCE($2, title),
			notes = COALESCE($3, notes),
			done = COALESCE($4, done),
			updated_at = $5
		 WHERE id = $1
		 RETURNING id, title, notes, done, position, created_at, updated_at`,
		id, params.Title, params.Notes, params.Done, time.Now(),
	).Scan(&task.ID, &task.Title, &task.Notes, &task.Done, &task.Position, &task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", id, err)
	}

	return &task, nil
}

// Move changes a task's position, shifting the tasks between the old and
// new slot by one to keep positions dense.
func (s *Storage) Move(ctx context.Context, id uuid.UUID, position int) error {
	if position < 0 {
		position = 0
	}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var current int
		if err := tx.QueryRowContext(ctx,
			`SELECT position FROM tasks WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("task %s not found", id)
			}
			return fmt.Errorf("failed to read task position: %w", err)
		}

		// A target past the end of the list degenerates to "move last";
		// writing the raw value would leave a gap in the positions.
		var maxPos int
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(position) FROM tasks`,
		).Scan(&maxPos); err != nil {
			return fmt.Errorf("failed to read max position: %w", err)
		}
		if position > maxPos {
			position = maxPos
		}

		if position == current {
			return nil
		}

		if position < current {
			// Moving up: shift [position, current) down by one
			if _, err := tx.ExecContext(ctx,
				`UPDATE tasks SET position = position + 1
				 WHERE position >= $1 AND position < $2`, position, current,
			); err != nil {
				return fmt.Errorf("failed to shift tasks: %w", err)
			}
		} else {
			// Moving down: shift (current, position] up by one
			if _, err := tx.ExecContext(ctx,
				`UPDATE tasks SET position = position - 1
				 WHERE position > $1 AND position <= $2`, current, position,
			); err != nil {
				return fmt.Errorf("failed to shift tasks: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET position = $2, updated_at = $3 WHERE id = $1`,
			id, position, time.Now(),
		); err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

// Delete removes a task and closes the position gap it leaves
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var position int
		if err := tx.QueryRowContext(ctx,
			`DELETE FROM tasks WHERE id = $1 RETURNING position`, id,
		).Scan(&position); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("task %s not found", id)
			}
			return fmt.Errorf("failed to delete task %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET position = position - 1 WHERE position > $1`, position,
		); err != nil {
			return fmt.Errorf("failed to close position gap: %w", err)
		}

		return nil
	})
}
