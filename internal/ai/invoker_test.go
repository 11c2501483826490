package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"school-assistant-backend/internal/schema"
)

type fakeGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	block    bool
	requests []Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestInvoker(t *testing.T, gen Generator) *Invoker {
	t.Helper()
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	return NewInvoker(gen, prompts, "test-model", time.Second, zaptest.NewLogger(t))
}

var morale = schema.MoraleInput{
	AttendanceRate:     0.97,
	OnTimeClassesRate:  0.96,
	ExamPerformance:    0.88,
	ComplaintsReceived: 0,
}

func TestInvokeSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: `{"moraleLevel":"High","detailedAnalysis":"Strong on every metric.","suggestedAction":"Recognize the teacher at assembly."}`}
	iv := newTestInvoker(t, gen)

	out, err := iv.AssessTeacherMorale(context.Background(), morale)
	require.NoError(t, err)
	assert.Equal(t, schema.MoraleHigh, out.MoraleLevel)

	require.Equal(t, 1, gen.calls())
	req := gen.requests[0]
	assert.Equal(t, "test-model", req.Model)
	assert.Contains(t, req.Prompt, "0.97")
	assert.NotEmpty(t, req.SystemInstruction)
	require.NotNil(t, req.Schema)
	assert.Contains(t, req.Schema.Required, "moraleLevel")
}

func TestInvokeInvalidInputNeverCallsModel(t *testing.T) {
	gen := &fakeGenerator{reply: `{}`}
	iv := newTestInvoker(t, gen)

	bad := morale
	bad.AttendanceRate = 1.5

	_, err := iv.AssessTeacherMorale(context.Background(), bad)
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "attendanceRate", verr.Fields[0].Field)
	assert.Zero(t, gen.calls())
}

func TestInvokeFailuresAreInvocationErrors(t *testing.T) {
	cases := []struct {
		name  string
		gen   *fakeGenerator
		stage Stage
	}{
		{"transport", &fakeGenerator{err: errors.New("connection reset")}, StageTransport},
		{"not json", &fakeGenerator{reply: "High morale!"}, StageDecode},
		{"unknown field", &fakeGenerator{reply: `{"moraleLevel":"High","detailedAnalysis":"a","suggestedAction":"b","mood":"great"}`}, StageDecode},
		{"trailing data", &fakeGenerator{reply: `{"moraleLevel":"High","detailedAnalysis":"a","suggestedAction":"b"} {}`}, StageDecode},
		{"missing field", &fakeGenerator{reply: `{"moraleLevel":"High","detailedAnalysis":"a"}`}, StageValidate},
		{"bad enum", &fakeGenerator{reply: `{"moraleLevel":"Great","detailedAnalysis":"a","suggestedAction":"b"}`}, StageValidate},
		{"null", &fakeGenerator{reply: `null`}, StageValidate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iv := newTestInvoker(t, tc.gen)

			out, err := iv.AssessTeacherMorale(context.Background(), morale)
			assert.Nil(t, out)

			var ie *InvocationError
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, tc.stage, ie.Stage)
			assert.Equal(t, schema.CapTeacherMorale, ie.Capability)
			assert.Equal(t, 1, tc.gen.calls())
		})
	}
}

func TestInvokeTimeout(t *testing.T) {
	gen := &fakeGenerator{block: true}
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	iv := NewInvoker(gen, prompts, "m", 20*time.Millisecond, nil)

	_, err = iv.AnalyzeGeotag(context.Background(), schema.GeotagInput{LocationName: "Kanpur"})

	var ie *InvocationError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, StageTransport, ie.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvokeUnknownCapability(t *testing.T) {
	iv := newTestInvoker(t, &fakeGenerator{})
	err := iv.Invoke(context.Background(), "horoscope", &schema.GeotagInput{LocationName: "x"}, &schema.GeotagMarketing{})
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestInvokeStripsCodeFences(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"summary\":\"A calm day 🌤️\"}\n```"}
	iv := newTestInvoker(t, gen)

	out, err := iv.GenerateDailySummary(context.Background(), schema.DailySummaryInput{
		AttendanceRate:       94.5,
		FeesCollected:        125000,
		AdmissionEnquiries:   12,
		ClassPerformance:     map[string]string{"Class 9": "improved"},
		LowAttendanceClasses: []string{"Class 7B", "Class 5A"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A calm day 🌤️", out.Summary)
	assert.Contains(t, gen.requests[0].Prompt, "Class 7B, Class 5A")
}

func TestChatKeepsUnknownComponent(t *testing.T) {
	gen := &fakeGenerator{reply: `{"component":"unknown-widget","props":{"chart":[1,2,3]}}`}
	iv := newTestInvoker(t, gen)

	out, err := iv.Chat(context.Background(), schema.ChatInput{Query: "show me a chart"})
	require.NoError(t, err)
	assert.Equal(t, "unknown-widget", out.Component)
	assert.Contains(t, gen.requests[0].Prompt, `"show me a chart"`)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}\n"))
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
}
