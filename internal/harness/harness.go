package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/compiler"
	"github.com/roach88/qtrace/internal/noise"
	"github.com/roach88/qtrace/internal/recorder"
	"github.com/roach88/qtrace/internal/store"
	"github.com/roach88/qtrace/internal/testutil"
)

// Epoch is the first instant of the deterministic scenario clock.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness records scenario executions with a deterministic clock and
// sequential execution ids.
type Harness struct {
	store    *store.Store
	recorder *recorder.Recorder
	clock    *testutil.StepClock
	ids      *testutil.SequentialIDs
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database and start the recorder
//  2. Record every execution and read it back from the store
//  3. Evaluate assertions against the stored executions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewStepClock(Epoch, time.Millisecond),
		ids:    testutil.NewSequentialIDs("exec"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	h.recorder = recorder.New(st,
		recorder.WithIDGenerator(h.ids),
		recorder.WithClock(h.clock.Now),
		recorder.WithLogger(h.logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.recorder.Run(ctx) }()

	result := NewResult()
	recordErr := h.recordAll(ctx, scenario.Executions, result)

	h.recorder.Close()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	if recordErr != nil {
		return nil, recordErr
	}

	for i, a := range scenario.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func (h *Harness) recordAll(ctx context.Context, specs []ExecutionSpec, result *Result) error {
	for _, spec := range specs {
		c, err := resolveCircuit(spec)
		if err != nil {
			return fmt.Errorf("execution %q: %w", spec.Label, err)
		}
		cfg, err := noise.ResolveNames(spec.NoiseType, spec.NoiseLevel)
		if err != nil {
			return fmt.Errorf("execution %q: %w", spec.Label, err)
		}

		exec, err := h.recorder.Record(ctx, recorder.Request{Circuit: c, Noise: cfg})
		if err != nil {
			return fmt.Errorf("execution %q: record: %w", spec.Label, err)
		}

		// Assertions run against what the store returns, not the
		// in-memory build.
		stored, err := h.store.FetchExecution(ctx, exec.ID)
		if err != nil {
			return fmt.Errorf("execution %q: read back: %w", spec.Label, err)
		}
		h.logger.Debug("recorded execution", "label", spec.Label, "execution_id", stored.ID)
		result.Executions = append(result.Executions, Recorded{Label: spec.Label, Execution: stored})
	}
	return nil
}

// resolveCircuit returns a built-in circuit, or one declared in a CUE file.
func resolveCircuit(spec ExecutionSpec) (*circuit.Circuit, error) {
	if spec.File == "" {
		return circuit.Lookup(spec.Circuit, circuit.Options{Gates: spec.Gates, Seed: spec.Seed})
	}

	circuits, err := compiler.LoadFile(spec.File)
	if err != nil {
		return nil, err
	}
	if spec.Circuit == "" {
		if len(circuits) != 1 {
			return nil, fmt.Errorf("%s declares %d circuits; name one", spec.File, len(circuits))
		}
		return circuits[0], nil
	}
	c, ok := compiler.Find(circuits, spec.Circuit)
	if !ok {
		return nil, fmt.Errorf("circuit %q not declared in %s", spec.Circuit, spec.File)
	}
	return c, nil
}
