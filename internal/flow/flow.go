// Package flow defines the input/output contracts of the generative study
// features and runs them against a Generator.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultTimeout = 60 * time.Second

// Request is one generation call.
type Request struct {
	// Flow is the name of the flow issuing the request.
	Flow string

	Prompt PromptRef

	// Text is the rendered prompt.
	Text string

	// Media holds inline attachments, e.g. the image for OCR.
	Media []Media

	// Schema describes the JSON the generator must return.
	Schema *genai.Schema
}

// Generator produces raw JSON output for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Flow is the contract of one generative feature: an input schema carried
// by In's struct tags, a prompt template and an output decoder.
type Flow[In, Out any] struct {
	Name   string
	Prompt PromptRef

	// Vars returns the template variables for in. Every variable the
	// template references must be present.
	Vars func(in In) map[string]any

	// Media optionally returns attachments for in. A failure here is an
	// input error.
	Media func(in In) ([]Media, error)

	// Schema returns the output schema sent to the generator.
	Schema func(in In) *genai.Schema

	// Decode validates raw generator output.
	Decode func(in In, raw []byte) (Out, []FieldError)
}

// Observer is notified of every state a run enters.
type Observer func(flow string, s State)

// Runner executes flows against a Generator.
type Runner struct {
	gen       Generator
	readiness Readiness
	prompts   *PromptSet
	timeout   time.Duration
	logger    *zap.Logger
	observe   Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds each run. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers a state observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observe = o }
}

// NewRunner creates a Runner. When readiness is not Ready every run fails
// with an ExecutionError wrapping ErrNotReady; gen may then be nil.
func NewRunner(gen Generator, readiness Readiness, prompts *PromptSet, opts ...Option) *Runner {
	r := &Runner{
		gen:       gen,
		readiness: readiness,
		prompts:   prompts,
		timeout:   defaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.prompts == nil {
		ps, err := LoadPrompts("")
		if err != nil {
			// The embedded templates are parsed by the package tests.
			panic(err)
		}
		r.prompts = ps
	}
	if gen == nil && readiness.Ready() {
		r.readiness = Readiness{Status: MisconfiguredMissingCredential, Detail: "no generator"}
	}
	return r
}

// Readiness returns the readiness the runner was built with.
func (r *Runner) Readiness() Readiness {
	return r.readiness
}

func (r *Runner) enter(name string, s State) {
	r.logger.Debug("flow state", zap.String("flow", name), zap.Stringer("state", s))
	if r.observe != nil {
		r.observe(name, s)
	}
}

// Run validates in, issues exactly one generation request and validates
// the result. It returns a *ValidationError when in is invalid, before any
// request is made, and an *ExecutionError when the request fails or its
// output breaks the output schema.
func Run[In, Out any](ctx context.Context, r *Runner, f Flow[In, Out], in In) (Out, error) {
	var zero Out
	r.enter(f.Name, Pending)

	r.enter(f.Name, Validating)
	fields := checkStruct(in, "")
	var media []Media
	if len(fields) == 0 && f.Media != nil {
		m, err := f.Media(in)
		if err != nil {
			fields = append(fields, FieldError{Field: "$", Rule: "media", Param: err.Error()})
		}
		media = m
	}
	if len(fields) > 0 {
		r.enter(f.Name, ValidationFailed)
		return zero, &ValidationError{Flow: f.Name, Fields: fields}
	}

	r.enter(f.Name, Executing)
	out, err := execute(ctx, r, f, in, media)
	if err != nil {
		r.enter(f.Name, ExecutionFailed)
		r.logger.Warn("flow failed", zap.String("flow", f.Name), zap.Error(err))
		return zero, err
	}

	r.enter(f.Name, Validated)
	return out, nil
}

func (r *Runner) execFail(name string, err error) error {
	return &ExecutionError{Flow: name, Err: err}
}

func execute[In, Out any](ctx context.Context, r *Runner, f Flow[In, Out], in In, media []Media) (Out, error) {
	var zero Out

	if !r.readiness.Ready() {
		return zero, r.execFail(f.Name, fmt.Errorf("%w: %s", ErrNotReady, r.readiness.Detail))
	}

	text, err := r.prompts.Render(f.Prompt, f.varsFor(in))
	if err != nil {
		return zero, r.execFail(f.Name, err)
	}

	req := Request{Flow: f.Name, Prompt: f.Prompt, Text: text, Media: media}
	if f.Schema != nil {
		req.Schema = f.Schema(in)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	raw, err := r.gen.Generate(ctx, req)
	r.logger.Debug("generation finished",
		zap.String("flow", f.Name),
		zap.Stringer("prompt", f.Prompt),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("generation timed out after %s: %w", r.timeout, err)
		}
		return zero, r.execFail(f.Name, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return zero, r.execFail(f.Name, ErrEmptyOutput)
	}

	out, fields := f.Decode(in, []byte(raw))
	if len(fields) > 0 {
		return zero, &ExecutionError{Flow: f.Name, Fields: fields, Err: ErrInvalidOutput}
	}
	return out, nil
}

func (f Flow[In, Out]) varsFor(in In) map[string]any {
	if f.Vars == nil {
		return nil
	}
	return f.Vars(in)
}
