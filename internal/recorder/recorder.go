package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/noise"
)

const tracerName = "github.com/roach88/qtrace/internal/recorder"

// ErrInvalidRequest marks a request the recorder cannot build from, such
// as an invalid circuit or noise descriptor.
var ErrInvalidRequest = errors.New("invalid record request")

// ErrClosed is returned by tasks submitted after Close.
var ErrClosed = errors.New("recorder is closed")

// Store is the persistence the recorder writes to.
type Store interface {
	Save(ctx context.Context, exec *ir.Execution) error
	UpdatePerformance(ctx context.Context, executionID string, stats ir.PerformanceStats) error
}

// Request describes one execution to record. Exactly one of Circuit and
// Events must be set.
type Request struct {
	// Name overrides the circuit name. Required when Events is used.
	Name    string
	Circuit *circuit.Circuit
	Events  ir.EventLog
	Noise   *ir.NoiseConfig
}

// Recorder builds executions and persists them through a single writer.
type Recorder struct {
	store          Store
	queue          *taskQueue
	ids            IDGenerator
	now            func() time.Time
	logger         *slog.Logger
	tracer         trace.Tracer
	persistTimeout time.Duration
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithIDGenerator sets the execution id source. Defaults to UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Recorder) { r.ids = g }
}

// WithClock sets the time source for CreatedAt and phase timings.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithPersistTimeout bounds each write. Zero means no bound beyond the
// task's own context.
func WithPersistTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.persistTimeout = d }
}

// New creates a recorder writing to store. Call Run to start persisting.
func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		queue:  newTaskQueue(),
		ids:    UUIDv7Generator{},
		now:    time.Now,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build extracts events, constructs the graph and computes digests. It
// does not touch the store and is safe to call concurrently.
func (r *Recorder) Build(ctx context.Context, req Request) (*ir.Execution, error) {
	_, span := r.tracer.Start(ctx, "recorder.Build")
	defer span.End()

	exec, err := r.build(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("execution.id", exec.ID),
		attribute.String("execution.circuit", exec.CircuitName),
		attribute.Int("execution.events", exec.NumEvents),
	)
	return exec, nil
}

func (r *Recorder) build(req Request) (*ir.Execution, error) {
	if (req.Circuit == nil) == (req.Events == nil) {
		return nil, fmt.Errorf("%w: exactly one of circuit and events is required", ErrInvalidRequest)
	}
	if err := noise.Validate(req.Noise); err != nil {
		return nil, fmt.Errorf("%w: noise: %v", ErrInvalidRequest, err)
	}

	name := req.Name
	events := req.Events
	start := r.now()
	if req.Circuit != nil {
		if name == "" {
			name = req.Circuit.Name
		}
		var err error
		if events, err = circuit.Extract(req.Circuit); err != nil {
			return nil, fmt.Errorf("%w: circuit %q: %v", ErrInvalidRequest, req.Circuit.Name, err)
		}
	} else {
		events = events.Clone()
	}
	if name == "" {
		return nil, fmt.Errorf("%w: circuit name is required", ErrInvalidRequest)
	}
	extracted := r.now()

	g, err := graph.Build(events)
	if err != nil {
		return nil, err
	}
	built := r.now()

	logDigest, err := ir.EventLogDigest(events)
	if err != nil {
		return nil, err
	}
	graphDigest, err := ir.GraphDigest(g)
	if err != nil {
		return nil, err
	}

	var cfg *ir.NoiseConfig
	if req.Noise != nil {
		c := *req.Noise
		cfg = &c
	}
	stats := &ir.PerformanceStats{
		EventExtractionMs: millis(extracted.Sub(start)),
		GraphBuildMs:      millis(built.Sub(extracted)),
	}
	stats.TotalMs = stats.EventExtractionMs + stats.GraphBuildMs

	return &ir.Execution{
		ExecutionMeta: ir.ExecutionMeta{
			ID:          r.ids.Generate(),
			CircuitName: name,
			Noise:       cfg,
			NumEvents:   len(events),
			NumGates:    events.CountGates(),
			LogDigest:   logDigest,
			GraphDigest: graphDigest,
			CreatedAt:   start.UTC(),
			Stats:       stats,
		},
		Events: events,
		Graph:  g,
	}, nil
}

// Submit queues exec for persistence and returns immediately. ctx governs
// this write only: if it is cancelled before the writer reaches the task,
// nothing is written and the task fails with ctx.Err().
func (r *Recorder) Submit(ctx context.Context, exec *ir.Execution) *Task {
	t := newTask(ctx, exec)
	if !r.queue.Enqueue(t) {
		t.fail(ErrClosed)
	}
	return t
}

// Record builds an execution, persists it and waits for the write.
// Run must be running.
func (r *Recorder) Record(ctx context.Context, req Request) (*ir.Execution, error) {
	exec, err := r.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	t := r.Submit(ctx, exec)
	if err := t.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Execution(), nil
}

// Pending returns the number of queued writes.
func (r *Recorder) Pending() int {
	return r.queue.Len()
}

// Close stops accepting tasks. Run finishes the queued writes and then
// returns nil.
func (r *Recorder) Close() {
	r.queue.Close()
}

// Run is the single writer loop. It returns ctx.Err() when ctx is
// cancelled, failing every queued task, or nil once Close was called and
// the queue is drained.
func (r *Recorder) Run(ctx context.Context) error {
	r.logger.Info("recorder starting")

	for {
		if t, ok := r.queue.TryDequeue(); ok {
			r.persist(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			r.logger.Info("recorder stopping: context cancelled")
			r.queue.Close()
			for _, t := range r.queue.takeAll() {
				t.fail(ctx.Err())
			}
			return ctx.Err()
		case <-r.queue.Wait():
			if r.queue.Drained() {
				r.logger.Info("recorder stopping: queue closed")
				return nil
			}
		}
	}
}

func (r *Recorder) persist(runCtx context.Context, t *Task) {
	log := r.logger.With("execution_id", t.ExecutionID())

	if err := t.ctx.Err(); err != nil {
		log.Info("persistence abandoned", "error", err)
		t.fail(err)
		return
	}
	if err := runCtx.Err(); err != nil {
		t.fail(err)
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(runCtx, cancel)
	defer stop()
	if r.persistTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, r.persistTimeout)
		defer cancelTimeout()
	}

	ctx, span := r.tracer.Start(ctx, "recorder.persist",
		trace.WithAttributes(attribute.String("execution.id", t.ExecutionID())))
	defer span.End()

	start := r.now()
	err := r.store.Save(ctx, t.exec)
	elapsed := r.now().Sub(start)
	if err != nil {
		err = persistError(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("persistence failed", "error", err)
		t.fail(err)
		return
	}

	stats := t.stats
	stats.PersistenceMs = millis(elapsed)
	stats.TotalMs = stats.EventExtractionMs + stats.GraphBuildMs + stats.PersistenceMs
	if err := r.store.UpdatePerformance(ctx, t.ExecutionID(), stats); err != nil {
		// The execution is durable; only the timing row is stale.
		log.Warn("failed to update performance stats", "error", err)
	}

	log.Debug("execution persisted", "persistence_ms", stats.PersistenceMs)
	t.finish(stats, nil)
}

// persistError keeps cancellation distinct from availability failures and
// reports any other unclassified write failure as STORE_UNAVAILABLE.
func persistError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	if ir.CodeOf(err) != "" {
		return err
	}
	return ir.NewStoreUnavailableError("persist execution", err)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
