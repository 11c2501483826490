package dashboard

import (
	"errors"
	"time"

	"school-assistant-backend/internal/schema"
)

var ErrNotFound = errors.New("no dashboard snapshot")

// Snapshot is the school data the dashboard shows and the assistant reasons over.
type Snapshot struct {
	GrowthData          []schema.GrowthMetric           `json:"growthData,omitempty" validate:"omitempty,dive"`
	AdmissionFunnelData *schema.FunnelInput             `json:"admissionFunnelData,omitempty"`
	ExamHeatmapData     []schema.ExamClass              `json:"examHeatmapData,omitempty" validate:"omitempty,dive"`
	TeacherData         []schema.Teacher                `json:"teacherData,omitempty" validate:"omitempty,dive"`
	GeotagData          map[string][]schema.GeotagPoint `json:"geotagData,omitempty" validate:"omitempty,dive,dive"`
	UpdatedAt           time.Time                       `json:"updatedAt"`
}
