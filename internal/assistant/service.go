package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-assistant-backend/internal/apierr"
	"school-assistant-backend/internal/dashboard"
	"school-assistant-backend/internal/schema"
	"school-assistant-backend/internal/session"
	"school-assistant-backend/internal/tasks"
)

// ErrorNotice is left in the history when the assistant could not answer.
const ErrorNotice = apierr.RetryNotice

type ChatInvoker interface {
	Chat(ctx context.Context, in schema.ChatInput) (*schema.ChatOutput, error)
}

type TaskStore interface {
	TaskAppender
	List(ctx context.Context, userID int) ([]tasks.Task, error)
}

type SnapshotSource interface {
	Get(ctx context.Context, userID int) (*dashboard.Snapshot, error)
}

// Context is the optional dashboard data a client sends with a query.
// Omitted pieces are filled from the stored snapshot and task list.
type Context struct {
	GrowthData          []schema.GrowthMetric           `json:"growthData,omitempty"`
	AdmissionFunnelData *schema.FunnelInput             `json:"admissionFunnelData,omitempty"`
	ExamHeatmapData     []schema.ExamClass              `json:"examHeatmapData,omitempty"`
	TeacherData         []schema.Teacher                `json:"teacherData,omitempty"`
	GeotagData          map[string][]schema.GeotagPoint `json:"geotagData,omitempty"`
	TodoTasks           []schema.ChatTask               `json:"todoTasks,omitempty"`
}

// Reply is the outcome of one successful query.
type Reply struct {
	Variant  Variant   `json:"-"`
	Rendered *Rendered `json:"rendered"`
}

type Service struct {
	invoker   ChatInvoker
	tasks     TaskStore
	snapshots SnapshotSource
	router    *Router
	confirmer *Confirmer
	logger    *zap.Logger
}

func NewService(invoker ChatInvoker, taskStore TaskStore, snapshots SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoker:   invoker,
		tasks:     taskStore,
		snapshots: snapshots,
		router:    NewRouter(logger),
		confirmer: NewConfirmer(taskStore),
		logger:    logger,
	}
}

// Ask sends query to the model and applies the reply to sess. The caller
// persists sess afterwards.
//
// Input that fails validation leaves sess untouched. A failed invocation adds
// only an error notice; history and any pending proposal are otherwise kept.
// On success the pending proposal is superseded and the exchange is appended.
func (s *Service) Ask(ctx context.Context, sess *session.Session, query string, c *Context) (*Reply, error) {
	in := newInput(query, c)
	if err := schema.Validate(&in); err != nil {
		return nil, err
	}
	s.fillContext(ctx, sess.UserID, &in)

	out, err := s.invoker.Chat(ctx, in)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		s.notice(sess)
		return nil, err
	}

	v, err := DecodeVariant(out)
	if err != nil {
		s.logger.Warn("chat reply rejected", zap.String("session_id", sess.ID), zap.Error(err))
		s.notice(sess)
		return nil, err
	}

	sess.Pending = nil
	sess.Append(session.Message{
		ID:   uuid.NewString(),
		Role: session.RoleUser,
		Kind: session.KindText,
		Text: in.Query,
	})

	rendered := s.router.Route(v)
	if p, ok := v.(ConfirmAddTask); ok {
		s.confirmer.Propose(sess, p)
	}
	if rendered != nil {
		sess.Append(messageFor(rendered))
	}

	return &Reply{Variant: v, Rendered: rendered}, nil
}

// Confirm applies the session's pending proposal. See Confirmer.Confirm.
func (s *Service) Confirm(ctx context.Context, sess *session.Session, proposalID string) (ConfirmResult, error) {
	return s.confirmer.Confirm(ctx, sess, proposalID)
}

func (s *Service) notice(sess *session.Session) {
	sess.Append(session.Message{
		ID:   uuid.NewString(),
		Role: session.RoleAssistant,
		Kind: session.KindError,
		Text: ErrorNotice,
	})
}

func messageFor(r *Rendered) session.Message {
	m := session.Message{
		ID:        uuid.NewString(),
		Role:      session.RoleAssistant,
		Kind:      r.Kind,
		Text:      r.Text,
		Tasks:     r.Tasks,
		CreatedAt: time.Now().UTC(),
	}
	if r.Proposal != nil {
		task := r.Proposal.Task
		m.Task = &task
		m.ProposalID = r.Proposal.ID
	}
	return m
}

func newInput(query string, c *Context) schema.ChatInput {
	in := schema.ChatInput{Query: query}
	if c != nil {
		in.GrowthData = c.GrowthData
		in.AdmissionFunnelData = c.AdmissionFunnelData
		in.ExamHeatmapData = c.ExamHeatmapData
		in.TeacherData = c.TeacherData
		in.GeotagData = c.GeotagData
		in.TodoTasks = c.TodoTasks
	}
	return in
}

// fillContext loads whatever the caller left out. Lookup failures only cost
// the model some context.
func (s *Service) fillContext(ctx context.Context, userID int, in *schema.ChatInput) {
	if s.snapshots != nil && (in.GrowthData == nil || in.AdmissionFunnelData == nil ||
		in.ExamHeatmapData == nil || in.TeacherData == nil || in.GeotagData == nil) {
		snap, err := s.snapshots.Get(ctx, userID)
		switch {
		case err == nil:
			if in.GrowthData == nil {
				in.GrowthData = snap.GrowthData
			}
			if in.AdmissionFunnelData == nil {
				in.AdmissionFunnelData = snap.AdmissionFunnelData
			}
			if in.ExamHeatmapData == nil {
				in.ExamHeatmapData = snap.ExamHeatmapData
			}
			if in.TeacherData == nil {
				in.TeacherData = snap.TeacherData
			}
			if in.GeotagData == nil {
				in.GeotagData = snap.GeotagData
			}
		case errors.Is(err, dashboard.ErrNotFound):
		default:
			s.logger.Warn("snapshot unavailable for chat", zap.Int("user_id", userID), zap.Error(err))
		}
	}

	if in.TodoTasks == nil && s.tasks != nil {
		list, err := s.tasks.List(ctx, userID)
		if err != nil {
			s.logger.Warn("task list unavailable for chat", zap.Int("user_id", userID), zap.Error(err))
		} else {
			in.TodoTasks = make([]schema.ChatTask, 0, len(list))
			for _, t := range list {
				in.TodoTasks = append(in.TodoTasks, schema.ChatTask{
					ID:          t.ID,
					Title:       t.Title,
					Description: t.Description,
					Href:        t.Link,
				})
			}
		}
	}
}
