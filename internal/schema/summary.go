package schema

import "google.golang.org/genai"

// DailySummaryInput is today's snapshot. AttendanceRate is a percentage.
type DailySummaryInput struct {
	AttendanceRate       float64           `json:"attendanceRate" validate:"gte=0,lte=100"`
	FeesCollected        float64           `json:"feesCollected" validate:"gte=0"`
	AdmissionEnquiries   float64           `json:"admissionEnquiries" validate:"gte=0"`
	ClassPerformance     map[string]string `json:"classPerformance" validate:"required"`
	LowAttendanceClasses []string          `json:"lowAttendanceClasses" validate:"required"`
}

type DailySummary struct {
	Summary string `json:"summary" validate:"required,nonblank"`
}

func dailySummarySchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"summary": str("A short natural-language summary of the day."),
	}, "summary")
}
