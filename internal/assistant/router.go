package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"school-assistant-backend/internal/session"
	"school-assistant-backend/internal/tasks"
)

const emptyTaskListText = "You're all caught up. There are no tasks on your to-do list."

var variantsRouted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "school_assistant_variants_routed_total",
		Help: "Assistant replies routed by variant",
	},
	[]string{"variant"},
)

// Proposal is a task waiting for the user to confirm it.
type Proposal struct {
	ID   string     `json:"id"`
	Task tasks.Task `json:"task"`
}

// Rendered is what the client draws for one reply.
type Rendered struct {
	Kind     string       `json:"kind"`
	Text     string       `json:"text,omitempty"`
	Tasks    []tasks.Task `json:"tasks,omitempty"`
	Proposal *Proposal    `json:"proposal,omitempty"`
}

// Router maps a variant to its rendering. It holds no per-session state.
type Router struct {
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{logger: logger}
}

// Route returns nil for variants that render nothing.
func (rt *Router) Route(v Variant) *Rendered {
	switch v := v.(type) {
	case Text:
		variantsRouted.WithLabelValues(session.KindText).Inc()
		return &Rendered{Kind: session.KindText, Text: v.Body}

	case TaskList:
		if len(v.Tasks) == 0 {
			variantsRouted.WithLabelValues(session.KindEmptyState).Inc()
			return &Rendered{Kind: session.KindEmptyState, Text: emptyTaskListText}
		}
		variantsRouted.WithLabelValues(session.KindTodoList).Inc()
		return &Rendered{Kind: session.KindTodoList, Tasks: v.Tasks}

	case ConfirmAddTask:
		variantsRouted.WithLabelValues(session.KindConfirmAddTask).Inc()
		return &Rendered{
			Kind:     session.KindConfirmAddTask,
			Proposal: &Proposal{ID: v.ProposalID, Task: v.Proposed},
		}

	case Unknown:
		variantsRouted.WithLabelValues("unknown").Inc()
		rt.logger.Warn("unrecognized assistant component", zap.String("tag", v.Tag))
		return nil

	default:
		variantsRouted.WithLabelValues("unknown").Inc()
		rt.logger.Warn("unhandled assistant variant", zap.Any("variant", v))
		return nil
	}
}
