package schema

import "google.golang.org/genai"

type Grade struct {
	Subject string  `json:"subject" validate:"required,nonblank"`
	Score   float64 `json:"score" validate:"gte=0"`
}

type StudentPlanInput struct {
	StudentName  string  `json:"studentName" validate:"required,nonblank"`
	StudentClass string  `json:"studentClass" validate:"required,nonblank"`
	Attendance   float64 `json:"attendance" validate:"gte=0,lte=100"`
	// PerformanceChange is the quarter-over-quarter change in percent and may be negative.
	PerformanceChange float64 `json:"performanceChange"`
	Grades            []Grade `json:"grades" validate:"required,min=1,dive"`
}

type StudentPlan struct {
	KeyFocusArea    string   `json:"keyFocusArea" validate:"required,nonblank"`
	ActionableSteps []string `json:"actionableSteps" validate:"required,min=1,dive,nonblank"`
}

func studentPlanSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"keyFocusArea":    str("One sentence naming the most important area to improve."),
		"actionableSteps": strList("Two or three concrete steps for teachers or the principal."),
	}, "keyFocusArea", "actionableSteps")
}
