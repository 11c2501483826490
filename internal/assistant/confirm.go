package assistant

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"school-assistant-backend/internal/session"
	"school-assistant-backend/internal/tasks"
)

// TaskAppender is the task collection a confirmed proposal is written to.
type TaskAppender interface {
	Append(ctx context.Context, userID int, t tasks.Task) (bool, error)
}

type ConfirmResult struct {
	Confirmed bool        `json:"confirmed"`
	Task      *tasks.Task `json:"task,omitempty"`
	// Inserted is false when the task was already in the store.
	Inserted bool `json:"inserted"`
}

// Confirmer runs the propose/confirm flow. Proposing never touches the task
// store; confirming writes the proposed task at most once.
type Confirmer struct {
	store TaskAppender
	group singleflight.Group
}

func NewConfirmer(store TaskAppender) *Confirmer {
	return &Confirmer{store: store}
}

// Propose makes p the session's pending proposal, replacing any earlier one.
func (c *Confirmer) Propose(sess *session.Session, p ConfirmAddTask) {
	sess.Pending = &session.PendingConfirmation{
		ProposalID: p.ProposalID,
		Task:       p.Proposed,
		CreatedAt:  time.Now().UTC(),
	}
}

// Confirm commits the pending proposal. With nothing pending, or when
// proposalID names a different proposal, it does nothing and reports
// Confirmed=false without error. An empty proposalID confirms whatever is pending.
func (c *Confirmer) Confirm(ctx context.Context, sess *session.Session, proposalID string) (ConfirmResult, error) {
	pending := sess.Pending
	if pending == nil || (proposalID != "" && proposalID != pending.ProposalID) {
		return ConfirmResult{}, nil
	}

	key := sess.ID + "/" + pending.ProposalID
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.store.Append(ctx, sess.UserID, pending.Task)
	})
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("confirm proposal %s: %w", pending.ProposalID, err)
	}
	inserted := v.(bool)

	task := pending.Task
	sess.Pending = nil

	// one message per proposal, even when a racing confirm already inserted the row
	msgID := "confirm-" + pending.ProposalID
	if !hasMessage(sess, msgID) {
		sess.Append(session.Message{
			ID:         msgID,
			Role:       session.RoleAssistant,
			Kind:       session.KindText,
			Text:       `Added "` + task.Title + `" to your to-do list.`,
			ProposalID: pending.ProposalID,
		})
	}

	return ConfirmResult{Confirmed: true, Task: &task, Inserted: inserted}, nil
}

func hasMessage(sess *session.Session, id string) bool {
	for _, m := range sess.History {
		if m.ID == id {
			return true
		}
	}
	return false
}
