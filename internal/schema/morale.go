package schema

import "google.golang.org/genai"

type MoraleLevel string

const (
	MoraleHigh   MoraleLevel = "High"
	MoraleMedium MoraleLevel = "Medium"
	MoraleLow    MoraleLevel = "Low"
)

// MoraleInput carries a teacher's metrics. Rates are fractions in [0,1].
type MoraleInput struct {
	TeacherName        string  `json:"teacherName"`
	AttendanceRate     float64 `json:"attendanceRate" validate:"gte=0,lte=1"`
	OnTimeClassesRate  float64 `json:"onTimeClassesRate" validate:"gte=0,lte=1"`
	ExamPerformance    float64 `json:"examPerformance" validate:"gte=0,lte=1"`
	ComplaintsReceived float64 `json:"complaintsReceived" validate:"gte=0"`
}

type MoraleAssessment struct {
	MoraleLevel      MoraleLevel `json:"moraleLevel" validate:"required,oneof=High Medium Low"`
	DetailedAnalysis string      `json:"detailedAnalysis" validate:"required,nonblank"`
	SuggestedAction  string      `json:"suggestedAction" validate:"required,nonblank"`
}

func moraleAssessmentSchema() *genai.Schema {
	level := str("Overall morale level.")
	level.Enum = []string{string(MoraleHigh), string(MoraleMedium), string(MoraleLow)}

	return object(map[string]*genai.Schema{
		"moraleLevel":      level,
		"detailedAnalysis": str("Which metrics drove the assessment and how."),
		"suggestedAction":  str("One concrete next step for the school administration."),
	}, "moraleLevel", "detailedAnalysis", "suggestedAction")
}
