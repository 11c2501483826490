package tasks

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultLink = "#"

var (
	ErrNotFound   = errors.New("task not found")
	ErrEmptyTitle = errors.New("task title required")
)

// Task is one to-do item. Link is serialized as "href" to match the dashboard widget.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"href"`
	UserAdded   bool      `json:"userAdded"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUserTask builds a task the user typed in directly.
func NewUserTask(title, description string) (Task, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return Task{}, ErrEmptyTitle
	}
	return Task{
		ID:          "user-task-" + uuid.NewString(),
		Title:       t,
		Description: strings.TrimSpace(description),
		Link:        DefaultLink,
		UserAdded:   true,
	}, nil
}
