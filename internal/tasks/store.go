package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts t for userID. Inserting an id that already exists is a
// no-op and reports inserted=false.
func (s *Store) Append(ctx context.Context, userID int, t Task) (bool, error) {
	if t.Link == "" {
		t.Link = DefaultLink
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, link, user_added, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, t.ID, userID, t.Title, t.Description, t.Link, t.UserAdded, t.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert task: %w", err)
	}
	return n > 0, nil
}

// List returns the user's open tasks, newest first.
func (s *Store) List(ctx context.Context, userID int) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(description,''), COALESCE(link,'#'), user_added, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	result := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Link, &t.UserAdded, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return result, nil
}

// Complete removes a finished task from the list.
func (s *Store) Complete(ctx context.Context, userID int, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
