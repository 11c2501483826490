package session

import (
	"errors"
	"time"

	"school-assistant-backend/internal/tasks"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message kinds. Assistant messages carry the rendered kind; "error" is the
// notice left behind by a failed invocation.
const (
	KindText           = "text"
	KindTodoList       = "todo-list"
	KindEmptyState     = "empty-state"
	KindConfirmAddTask = "confirm-add-task"
	KindError          = "error"
)

type Message struct {
	ID         string       `json:"id"`
	Role       string       `json:"role"`
	Kind       string       `json:"kind"`
	Text       string       `json:"text,omitempty"`
	Tasks      []tasks.Task `json:"tasks,omitempty"`
	Task       *tasks.Task  `json:"task,omitempty"`
	ProposalID string       `json:"proposalId,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// PendingConfirmation is a proposed task waiting for the user to confirm it.
type PendingConfirmation struct {
	ProposalID string     `json:"proposalId"`
	Task       tasks.Task `json:"task"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Session is one chat conversation. At most one proposal is pending at a time.
type Session struct {
	ID        string               `json:"id"`
	UserID    int                  `json:"userId"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	ExpiresAt time.Time            `json:"expiresAt"`
	History   []Message            `json:"history"`
	Pending   *PendingConfirmation `json:"pending,omitempty"`
}

func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

func (s *Session) Append(m Message) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.History = append(s.History, m)
}
