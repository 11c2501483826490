package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"school-assistant-backend/internal/schema"
)

var ErrUnknownCapability = errors.New("unknown capability")

// Stage says where an invocation failed.
type Stage string

const (
	StagePrompt    Stage = "prompt"
	StageTransport Stage = "transport"
	StageDecode    Stage = "decode"
	StageValidate  Stage = "validate"
)

// InvocationError is the single failure kind for a call that passed input
// validation: transport errors, timeouts and malformed or invalid output all
// surface as this.
type InvocationError struct {
	Capability schema.Capability
	Stage      Stage
	Err        error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s: %s: %v", e.Capability, e.Stage, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

type Invoker struct {
	gen     Generator
	prompts *Prompts
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewInvoker(gen Generator, prompts *Prompts, model string, timeout time.Duration, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		gen:     gen,
		prompts: prompts,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Invoke validates input, makes one model call for capability c and decodes
// the validated result into out. Input that fails validation is returned as
// *schema.ValidationError and never reaches the model.
func (iv *Invoker) Invoke(ctx context.Context, c schema.Capability, input, out any) error {
	if _, ok := schema.Lookup(string(c)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, c)
	}

	if err := schema.Validate(input); err != nil {
		invocationsTotal.WithLabelValues(string(c), "invalid_input").Inc()
		return err
	}

	start := time.Now()
	err := iv.call(ctx, c, input, out)
	elapsed := time.Since(start)
	invocationDuration.WithLabelValues(string(c)).Observe(elapsed.Seconds())

	if err != nil {
		var ie *InvocationError
		stage := ""
		if errors.As(err, &ie) {
			stage = string(ie.Stage)
		}
		invocationsTotal.WithLabelValues(string(c), "error").Inc()
		iv.logger.Warn("invocation failed",
			zap.String("capability", string(c)),
			zap.String("stage", stage),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return err
	}

	invocationsTotal.WithLabelValues(string(c), "ok").Inc()
	iv.logger.Debug("invocation ok",
		zap.String("capability", string(c)),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (iv *Invoker) call(ctx context.Context, c schema.Capability, input, out any) error {
	fail := func(stage Stage, err error) error {
		return &InvocationError{Capability: c, Stage: stage, Err: err}
	}

	system, prompt, err := iv.prompts.Render(c, input)
	if err != nil {
		return fail(StagePrompt, err)
	}

	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	text, err := iv.gen.Generate(ctx, Request{
		Model:             iv.model,
		SystemInstruction: system,
		Prompt:            prompt,
		Schema:            schema.ResponseSchema(c),
	})
	if err != nil {
		return fail(StageTransport, err)
	}

	if err := decodeStrict(text, out); err != nil {
		return fail(StageDecode, err)
	}

	if err := schema.Validate(out); err != nil {
		return fail(StageValidate, err)
	}
	return nil
}

// decodeStrict decodes exactly one JSON value with no unknown fields.
func decodeStrict(text string, out any) error {
	dec := json.NewDecoder(strings.NewReader(stripFences(text)))
	dec.DisallowUnknownFields()

	if err := dec.Decode(out); err != nil {
		return err
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
