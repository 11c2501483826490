// Package schema defines the request/response contracts exchanged with the
// generative model, one input/output pair per capability, and validates values
// crossing that boundary.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"
)

// Capability names one request/response contract.
type Capability string

const (
	CapAdmissionFunnel  Capability = "admission-funnel"
	CapTeacherMorale    Capability = "teacher-morale"
	CapGrowthStrategies Capability = "growth-strategies"
	CapDailySummary     Capability = "daily-summary"
	CapSchoolReport     Capability = "school-report"
	CapStudentPlan      Capability = "student-plan"
	CapGeotagMarketing  Capability = "geotag-marketing"
	CapChat             Capability = "chat"
)

type contract struct {
	newInput  func() any
	newOutput func() any
	response  func() *genai.Schema
}

var order = []Capability{
	CapAdmissionFunnel,
	CapTeacherMorale,
	CapGrowthStrategies,
	CapDailySummary,
	CapSchoolReport,
	CapStudentPlan,
	CapGeotagMarketing,
	CapChat,
}

var contracts = map[Capability]contract{
	CapAdmissionFunnel: {
		newInput:  func() any { return &FunnelInput{} },
		newOutput: func() any { return &FunnelAnalysis{} },
		response:  funnelAnalysisSchema,
	},
	CapTeacherMorale: {
		newInput:  func() any { return &MoraleInput{} },
		newOutput: func() any { return &MoraleAssessment{} },
		response:  moraleAssessmentSchema,
	},
	CapGrowthStrategies: {
		newInput:  func() any { return &GrowthInput{} },
		newOutput: func() any { return &GrowthStrategies{} },
		response:  growthStrategiesSchema,
	},
	CapDailySummary: {
		newInput:  func() any { return &DailySummaryInput{} },
		newOutput: func() any { return &DailySummary{} },
		response:  dailySummarySchema,
	},
	CapSchoolReport: {
		newInput:  func() any { return &ReportInput{} },
		newOutput: func() any { return &SchoolReport{} },
		response:  schoolReportSchema,
	},
	CapStudentPlan: {
		newInput:  func() any { return &StudentPlanInput{} },
		newOutput: func() any { return &StudentPlan{} },
		response:  studentPlanSchema,
	},
	CapGeotagMarketing: {
		newInput:  func() any { return &GeotagInput{} },
		newOutput: func() any { return &GeotagMarketing{} },
		response:  geotagMarketingSchema,
	},
	CapChat: {
		newInput:  func() any { return &ChatInput{} },
		newOutput: func() any { return &ChatOutput{} },
		response:  chatOutputSchema,
	},
}

// Lookup resolves a capability by name.
func Lookup(name string) (Capability, bool) {
	c := Capability(strings.TrimSpace(name))
	_, ok := contracts[c]
	return c, ok
}

// Capabilities lists every capability in a stable order.
func Capabilities() []Capability {
	out := make([]Capability, len(order))
	copy(out, order)
	return out
}

// NewInput returns a pointer to a zero input value for c, or nil if c is unknown.
func NewInput(c Capability) any {
	if ct, ok := contracts[c]; ok {
		return ct.newInput()
	}
	return nil
}

// NewOutput returns a pointer to a zero output value for c, or nil if c is unknown.
func NewOutput(c Capability) any {
	if ct, ok := contracts[c]; ok {
		return ct.newOutput()
	}
	return nil
}

// ResponseSchema is the structured-output schema handed to the model for c.
func ResponseSchema(c Capability) *genai.Schema {
	if ct, ok := contracts[c]; ok {
		return ct.response()
	}
	return nil
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Rule)
}

// ValidationError is returned when a value fails its schema.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report JSON names, not Go names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Validate checks v (a struct or pointer to struct) against its tags.
func Validate(v any) error {
	if v == nil {
		return &ValidationError{Fields: []FieldError{{Field: "", Rule: "required"}}}
	}

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: not a struct
		return &ValidationError{Fields: []FieldError{{Field: "", Rule: "struct"}}}
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: trimNamespace(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// trimNamespace drops the root type name: "MoraleInput.attendanceRate" -> "attendanceRate".
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
