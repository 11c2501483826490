package schema

import "google.golang.org/genai"

// GrowthMetric is one month of school growth figures.
type GrowthMetric struct {
	Month      string  `json:"month" validate:"required,nonblank"`
	Admissions float64 `json:"admissions" validate:"gte=0"`
	Fees       float64 `json:"fees" validate:"gte=0"`
	Strength   float64 `json:"strength" validate:"gte=0"`
	Enquiries  float64 `json:"enquiries" validate:"gte=0"`
}

type GrowthInput struct {
	GrowthData   []GrowthMetric `json:"growthData" validate:"required,min=1,dive"`
	ActiveMetric string         `json:"activeMetric" validate:"required,oneof=strength fees enquiries admissions"`
}

type GrowthStrategies struct {
	Analysis    string   `json:"analysis" validate:"required,nonblank"`
	Suggestions []string `json:"suggestions" validate:"required,dive,nonblank"`
}

func growthStrategiesSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"analysis":    str("Trend analysis of the growth data focused on the active metric."),
		"suggestions": strList("Actionable strategies to improve the active metric."),
	}, "analysis", "suggestions")
}
