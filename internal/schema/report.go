package schema

import "google.golang.org/genai"

type ExamSubject struct {
	Name         string  `json:"name" validate:"required,nonblank"`
	PassRate     float64 `json:"passRate" validate:"gte=0,lte=100"`
	TopScorer    string  `json:"topScorer"`
	WeakStudents float64 `json:"weakStudents" validate:"gte=0"`
}

// ExamClass is one row of the exam heatmap.
type ExamClass struct {
	Class             string        `json:"class" validate:"required,nonblank"`
	Passed            float64       `json:"passed" validate:"gte=0"`
	Failed            float64       `json:"failed" validate:"gte=0"`
	Change            float64       `json:"change"`
	Subjects          []ExamSubject `json:"subjects" validate:"omitempty,dive"`
	Toppers           []string      `json:"toppers"`
	Weakest           []string      `json:"weakest"`
	MostFailedSubject string        `json:"mostFailedSubject"`
}

type TeacherMetrics struct {
	AttendanceRate     float64 `json:"attendanceRate" validate:"gte=0,lte=1"`
	OnTimeClassesRate  float64 `json:"onTimeClassesRate" validate:"gte=0,lte=1"`
	ExamPerformance    float64 `json:"examPerformance" validate:"gte=0,lte=1"`
	ComplaintsReceived float64 `json:"complaintsReceived" validate:"gte=0"`
}

type Teacher struct {
	ID      string         `json:"id" validate:"required"`
	Name    string         `json:"name" validate:"required,nonblank"`
	Metrics TeacherMetrics `json:"metrics"`
}

type ReportInput struct {
	Scope               string         `json:"scope" validate:"required,nonblank"`
	GrowthData          []GrowthMetric `json:"growthData" validate:"required,dive"`
	AdmissionFunnelData FunnelInput    `json:"admissionFunnelData"`
	ExamHeatmapData     []ExamClass    `json:"examHeatmapData" validate:"required,dive"`
	TeacherData         []Teacher      `json:"teacherData" validate:"required,dive"`
	GeotagData          []GeotagPoint  `json:"geotagData" validate:"required,dive"`
}

type Solution struct {
	Title       string `json:"title" validate:"required,nonblank"`
	Description string `json:"description" validate:"required,nonblank"`
}

type SchoolReport struct {
	Summary   string     `json:"summary" validate:"required,nonblank"`
	Strengths []string   `json:"strengths" validate:"required,dive,nonblank"`
	Problems  []string   `json:"problems" validate:"required,dive,nonblank"`
	Solutions []Solution `json:"solutions" validate:"required,dive"`
}

func schoolReportSchema() *genai.Schema {
	solution := object(map[string]*genai.Schema{
		"title":       str("Short title for the solution."),
		"description": str("What to do and why."),
	}, "title", "description")

	return object(map[string]*genai.Schema{
		"summary":   str("Executive summary of the school or class in scope."),
		"strengths": strList("Key strengths visible in the data."),
		"problems":  strList("The most critical problems visible in the data."),
		"solutions": list(solution, "Concrete solutions for the problems listed."),
	}, "summary", "strengths", "problems", "solutions")
}
