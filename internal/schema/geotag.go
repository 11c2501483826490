package schema

import "google.golang.org/genai"

// GeotagPoint counts students living in one locality.
type GeotagPoint struct {
	Location string  `json:"location" validate:"required,nonblank"`
	Students float64 `json:"students" validate:"gte=0"`
}

type GeotagInput struct {
	LocationName string `json:"locationName" validate:"required,nonblank"`
}

type GeotagMarketing struct {
	Analysis                 string   `json:"analysis" validate:"required,nonblank"`
	PartnershipOpportunities []string `json:"partnershipOpportunities" validate:"required,dive,nonblank"`
	MarketingSuggestions     []string `json:"marketingSuggestions" validate:"required,dive,nonblank"`
}

func geotagMarketingSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"analysis":                 str("Demographic profile of the locality as it bears on admissions."),
		"partnershipOpportunities": strList("Local businesses or communities worth partnering with."),
		"marketingSuggestions":     strList("Campaign ideas tailored to the locality."),
	}, "analysis", "partnershipOpportunities", "marketingSuggestions")
}
