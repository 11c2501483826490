package ai

import (
	"context"

	"school-assistant-backend/internal/schema"
)

func invokeAs[Out any](ctx context.Context, iv *Invoker, c schema.Capability, in any) (*Out, error) {
	out := new(Out)
	if err := iv.Invoke(ctx, c, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (iv *Invoker) AnalyzeAdmissionFunnel(ctx context.Context, in schema.FunnelInput) (*schema.FunnelAnalysis, error) {
	return invokeAs[schema.FunnelAnalysis](ctx, iv, schema.CapAdmissionFunnel, &in)
}

func (iv *Invoker) AssessTeacherMorale(ctx context.Context, in schema.MoraleInput) (*schema.MoraleAssessment, error) {
	return invokeAs[schema.MoraleAssessment](ctx, iv, schema.CapTeacherMorale, &in)
}

func (iv *Invoker) GenerateGrowthStrategies(ctx context.Context, in schema.GrowthInput) (*schema.GrowthStrategies, error) {
	return invokeAs[schema.GrowthStrategies](ctx, iv, schema.CapGrowthStrategies, &in)
}

func (iv *Invoker) GenerateDailySummary(ctx context.Context, in schema.DailySummaryInput) (*schema.DailySummary, error) {
	return invokeAs[schema.DailySummary](ctx, iv, schema.CapDailySummary, &in)
}

func (iv *Invoker) GenerateSchoolReport(ctx context.Context, in schema.ReportInput) (*schema.SchoolReport, error) {
	return invokeAs[schema.SchoolReport](ctx, iv, schema.CapSchoolReport, &in)
}

func (iv *Invoker) GenerateStudentPlan(ctx context.Context, in schema.StudentPlanInput) (*schema.StudentPlan, error) {
	return invokeAs[schema.StudentPlan](ctx, iv, schema.CapStudentPlan, &in)
}

func (iv *Invoker) AnalyzeGeotag(ctx context.Context, in schema.GeotagInput) (*schema.GeotagMarketing, error) {
	return invokeAs[schema.GeotagMarketing](ctx, iv, schema.CapGeotagMarketing, &in)
}

// Chat returns the model's raw variant envelope; routing happens in the assistant.
func (iv *Invoker) Chat(ctx context.Context, in schema.ChatInput) (*schema.ChatOutput, error) {
	return invokeAs[schema.ChatOutput](ctx, iv, schema.CapChat, &in)
}
