// Package service is the query layer shared by the HTTP, MCP and CLI
// transports. It loads executions from the store and hands them to the
// replay engine and the divergence comparator.
package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/divergence"
	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/noise"
	"github.com/roach88/qtrace/internal/recorder"
	"github.com/roach88/qtrace/internal/replay"
)

const tracerName = "github.com/roach88/qtrace/internal/service"

// Paging defaults for List.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Store is the read side of the execution store.
type Store interface {
	FetchExecution(ctx context.Context, executionID string) (*ir.Execution, error)
	ListExecutions(ctx context.Context, page, limit int) (ir.ExecutionPage, error)
}

// Recorder records new executions.
type Recorder interface {
	Record(ctx context.Context, req recorder.Request) (*ir.Execution, error)
}

// Service answers queries about recorded executions.
type Service struct {
	store    Store
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder enables Record. Without it Record fails.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// New creates a service reading from store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview is an execution's metadata with a graph summary.
type Overview struct {
	ir.ExecutionMeta
	Graph graph.Stats `json:"graph_stats"`
}

// ClampPage normalizes client paging: page below 1 becomes 1, a
// non-positive limit becomes DefaultPageSize, and limits above
// MaxPageSize are capped.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// List returns one page of executions, newest first.
func (s *Service) List(ctx context.Context, page, limit int) (ir.ExecutionPage, error) {
	ctx, span := s.tracer.Start(ctx, "service.List")
	defer span.End()

	page, limit = ClampPage(page, limit)
	span.SetAttributes(attribute.Int("page", page), attribute.Int("limit", limit))

	out, err := s.store.ListExecutions(ctx, page, limit)
	return out, traced(span, err)
}

// Execution loads one execution.
func (s *Service) Execution(ctx context.Context, id string) (*ir.Execution, error) {
	ctx, span := s.start(ctx, "service.Execution", id)
	defer span.End()

	exec, err := s.store.FetchExecution(ctx, id)
	return exec, traced(span, err)
}

// Overview returns metadata and graph statistics for one execution.
func (s *Service) Overview(ctx context.Context, id string) (Overview, error) {
	ctx, span := s.start(ctx, "service.Overview", id)
	defer span.End()

	exec, err := s.store.FetchExecution(ctx, id)
	if err != nil {
		return Overview{}, traced(span, err)
	}
	return Overview{ExecutionMeta: exec.ExecutionMeta, Graph: graph.Summarize(exec.Graph)}, nil
}

// Graph returns the stored graph of one execution.
func (s *Service) Graph(ctx context.Context, id string) (ir.Graph, error) {
	ctx, span := s.start(ctx, "service.Graph", id)
	defer span.End()

	exec, err := s.store.FetchExecution(ctx, id)
	if err != nil {
		return ir.Graph{}, traced(span, err)
	}
	return exec.Graph, nil
}

// Replay returns the full ordered replay of one execution.
func (s *Service) Replay(ctx context.Context, id string) (replay.Replay, error) {
	ctx, span := s.start(ctx, "service.Replay", id)
	defer span.End()

	exec, err := s.store.FetchExecution(ctx, id)
	if err != nil {
		return replay.Replay{}, traced(span, err)
	}
	out := replay.New(exec).Full()
	span.SetAttributes(attribute.Int("replay.total_steps", out.TotalSteps))
	return out, nil
}

// Step returns a single replay step.
func (s *Service) Step(ctx context.Context, id string, index int) (replay.Step, error) {
	ctx, span := s.start(ctx, "service.Step", id)
	defer span.End()
	span.SetAttributes(attribute.Int("replay.step", index))

	exec, err := s.store.FetchExecution(ctx, id)
	if err != nil {
		return replay.Step{}, traced(span, err)
	}
	step, err := replay.New(exec).Step(index)
	return step, traced(span, err)
}

// Compare reports the structural divergence of execution a against b.
func (s *Service) Compare(ctx context.Context, a, b string) (divergence.Report, error) {
	ctx, span := s.tracer.Start(ctx, "service.Compare", trace.WithAttributes(
		attribute.String("execution.a", a),
		attribute.String("execution.b", b),
	))
	defer span.End()

	execA, err := s.store.FetchExecution(ctx, a)
	if err != nil {
		return divergence.Report{}, traced(span, err)
	}
	execB, err := s.store.FetchExecution(ctx, b)
	if err != nil {
		return divergence.Report{}, traced(span, err)
	}
	report := divergence.Compare(execA, execB)
	span.SetAttributes(attribute.Int("divergence.count", report.DivergenceCount))
	return report, nil
}

// RecordRequest names a built-in circuit to run and record.
type RecordRequest struct {
	Circuit    string `json:"circuit"`
	NoiseType  string `json:"noise_type,omitempty"`
	NoiseLevel string `json:"noise_level,omitempty"`
	Gates      int    `json:"gates,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
}

// Record builds and persists an execution of a built-in circuit.
// Bad circuit or noise names are reported as recorder.ErrInvalidRequest.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*ir.Execution, error) {
	ctx, span := s.tracer.Start(ctx, "service.Record", trace.WithAttributes(
		attribute.String("execution.circuit", req.Circuit),
	))
	defer span.End()

	if s.recorder == nil {
		return nil, traced(span, fmt.Errorf("recording is not enabled"))
	}
	c, err := circuit.Lookup(req.Circuit, circuit.Options{Gates: req.Gates, Seed: req.Seed})
	if err != nil {
		return nil, traced(span, fmt.Errorf("%w: %v", recorder.ErrInvalidRequest, err))
	}
	cfg, err := noise.ResolveNames(req.NoiseType, req.NoiseLevel)
	if err != nil {
		return nil, traced(span, fmt.Errorf("%w: %v", recorder.ErrInvalidRequest, err))
	}

	exec, err := s.recorder.Record(ctx, recorder.Request{Circuit: c, Noise: cfg})
	if err != nil {
		return nil, traced(span, err)
	}
	span.SetAttributes(attribute.String("execution.id", exec.ID))
	return exec, nil
}

func (s *Service) start(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("execution.id", id)))
}

// traced records err on span and returns it unchanged.
func traced(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := ir.CodeOf(err); code != "" {
			span.SetAttributes(attribute.String("error.code", string(code)))
		}
	}
	return err
}
