package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"school-assistant-backend/internal/ai"
	"school-assistant-backend/internal/schema"
	"school-assistant-backend/internal/tasks"
)

const proposedDescription = "Newly added by Guru AI."

// Variant is one renderable assistant reply. The set is closed: Text,
// TaskList, ConfirmAddTask, and Unknown for tags this server does not handle.
type Variant interface {
	variant()
}

type Text struct {
	Body string
}

type TaskList struct {
	Tasks []tasks.Task
}

// ConfirmAddTask proposes a task. The task has its final id already, so a
// confirmed proposal always inserts under the same key.
type ConfirmAddTask struct {
	ProposalID string
	Proposed   tasks.Task
}

type Unknown struct {
	Tag string
}

func (Text) variant()           {}
func (TaskList) variant()       {}
func (ConfirmAddTask) variant() {}
func (Unknown) variant()        {}

// DecodeVariant turns the model's envelope into a Variant. A known tag whose
// props do not validate is an *ai.InvocationError; an unrecognized tag is
// Unknown, never an error.
func DecodeVariant(out *schema.ChatOutput) (Variant, error) {
	if out == nil {
		return nil, invalid(errors.New("empty chat output"))
	}

	tag := strings.TrimSpace(out.Component)
	switch tag {
	case schema.ComponentText, schema.ComponentTodoList, schema.ComponentConfirmAddTask:
	default:
		return Unknown{Tag: tag}, nil
	}

	var p schema.ChatProps
	if err := decodeProps(out.Props, &p); err != nil {
		return nil, &ai.InvocationError{Capability: schema.CapChat, Stage: ai.StageDecode, Err: err}
	}

	switch tag {
	case schema.ComponentText:
		props := schema.TextProps{Text: p.Text}
		if err := schema.Validate(&props); err != nil {
			return nil, invalid(err)
		}
		return Text{Body: props.Text}, nil

	case schema.ComponentTodoList:
		props := schema.TodoListProps{Tasks: p.Tasks}
		if err := schema.Validate(&props); err != nil {
			return nil, invalid(err)
		}
		list := make([]tasks.Task, 0, len(props.Tasks))
		for _, t := range props.Tasks {
			list = append(list, tasks.Task{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Link:        orDefault(t.Href, tasks.DefaultLink),
			})
		}
		return TaskList{Tasks: list}, nil

	default:
		props := schema.ConfirmAddTaskProps{Task: p.Task}
		if err := schema.Validate(&props); err != nil {
			return nil, invalid(err)
		}
		return ConfirmAddTask{
			ProposalID: uuid.NewString(),
			Proposed: tasks.Task{
				ID:          "task-" + uuid.NewString(),
				Title:       strings.TrimSpace(props.Task.Title),
				Description: orDefault(strings.TrimSpace(props.Task.Description), proposedDescription),
				Link:        orDefault(props.Task.Href, tasks.DefaultLink),
			},
		}, nil
	}
}

func decodeProps(raw json.RawMessage, p *schema.ChatProps) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(p)
}

func invalid(err error) error {
	return &ai.InvocationError{Capability: schema.CapChat, Stage: ai.StageValidate, Err: err}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
