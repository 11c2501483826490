package schema

import (
	"encoding/json"

	"google.golang.org/genai"
)

// Variant tags the model may put in ChatOutput.Component.
const (
	ComponentText           = "text"
	ComponentTodoList       = "todo-list"
	ComponentConfirmAddTask = "confirm-add-task"
)

// ChatTask is a to-do item as the model sees it.
type ChatTask struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required,nonblank"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

// TaskProposal is the task the model wants to add. Any id it supplies is
// ignored; the server assigns one.
type TaskProposal struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required,nonblank"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

// ChatInput is a user query plus optional dashboard context.
type ChatInput struct {
	Query               string                   `json:"query" validate:"required,nonblank"`
	GrowthData          []GrowthMetric           `json:"growthData,omitempty" validate:"omitempty,dive"`
	AdmissionFunnelData *FunnelInput             `json:"admissionFunnelData,omitempty"`
	ExamHeatmapData     []ExamClass              `json:"examHeatmapData,omitempty" validate:"omitempty,dive"`
	TeacherData         []Teacher                `json:"teacherData,omitempty" validate:"omitempty,dive"`
	GeotagData          map[string][]GeotagPoint `json:"geotagData,omitempty" validate:"omitempty,dive,dive"`
	TodoTasks           []ChatTask               `json:"todoTasks,omitempty" validate:"omitempty,dive"`
}

// ChatOutput is the envelope the model replies with. Props stay raw until the
// component tag is known, so an unrecognized tag never fails decoding.
type ChatOutput struct {
	Component string          `json:"component" validate:"required,nonblank"`
	Props     json.RawMessage `json:"props"`
}

// ChatProps is the union of every known component's props.
type ChatProps struct {
	Text  string        `json:"text,omitempty"`
	Tasks []ChatTask    `json:"tasks,omitempty"`
	Task  *TaskProposal `json:"task,omitempty"`
}

type TextProps struct {
	Text string `json:"text" validate:"required,nonblank"`
}

type TodoListProps struct {
	Tasks []ChatTask `json:"tasks" validate:"required,dive"`
}

type ConfirmAddTaskProps struct {
	Task *TaskProposal `json:"task" validate:"required"`
}

func chatOutputSchema() *genai.Schema {
	task := object(map[string]*genai.Schema{
		"id":          str("Task id."),
		"title":       str("Task title."),
		"description": str("Task description."),
		"href":        str("Link for the task."),
	}, "title")

	component := str("Which component renders the reply.")
	component.Enum = []string{ComponentText, ComponentTodoList, ComponentConfirmAddTask}

	return object(map[string]*genai.Schema{
		"component": component,
		"props": object(map[string]*genai.Schema{
			"text":  str("Reply text, for the text component."),
			"tasks": list(task, "The to-do list, for the todo-list component."),
			"task":  task,
		}),
	}, "component", "props")
}
