package schema

import "google.golang.org/genai"

// FunnelStage is one step of the admission funnel ("Enquiries", "Forms Filled", "Joined").
type FunnelStage struct {
	Stage string  `json:"stage" validate:"required,nonblank"`
	Value float64 `json:"value" validate:"gte=0"`
}

type FunnelInput struct {
	ThisMonth []FunnelStage `json:"thisMonth" validate:"required,min=1,dive"`
	LastMonth []FunnelStage `json:"lastMonth" validate:"required,min=1,dive"`
}

type FunnelAnalysis struct {
	Analysis    string   `json:"analysis" validate:"required,nonblank"`
	Suggestions []string `json:"suggestions" validate:"required,dive,nonblank"`
}

func funnelAnalysisSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"analysis":    str("Comparison of this month against last month, naming the bottlenecks and what improved."),
		"suggestions": strList("Actionable marketing steps to improve conversion between stages."),
	}, "analysis", "suggestions")
}
