package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qtrace/internal/ir"
)

func TestSaveAndFetch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		created := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
		exec := createTestExecution("exec-1", created)
		exec.Noise = &ir.NoiseConfig{Type: "thermal", Level: "low", SingleGateError: 0.001, TwoGateError: 0.002, MeasurementError: 0.001, T1: 50, T2: 70, GateTime: 0.1}
		exec.Stats = &ir.PerformanceStats{EventExtractionMs: 0.5, GraphBuildMs: 0.25, PersistenceMs: 1, TotalMs: 1.75}

		require.NoError(t, s.Save(ctx, exec))

		got, err := s.FetchExecution(ctx, "exec-1")
		require.NoError(t, err)

		assert.Equal(t, exec.ExecutionMeta, got.ExecutionMeta)
		assert.Equal(t, exec.Events, got.Events)
		assert.Equal(t, exec.Graph, got.Graph)
	})
}

func TestSaveIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		exec := createTestExecution("exec-dup", time.Unix(100, 0))

		require.NoError(t, s.Save(ctx, exec))
		require.NoError(t, s.Save(ctx, exec))

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := s.FetchExecution(ctx, "exec-dup")
		require.NoError(t, err)
		assert.Len(t, got.Events, 6)
		assert.Len(t, got.Graph.Edges, 8)
	})
}

func TestStoreExecutionThenGraph(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		exec := createTestExecution("exec-2", time.Unix(200, 0))

		require.NoError(t, s.StoreExecution(ctx, exec.ExecutionMeta))

		_, err := s.FetchExecution(ctx, "exec-2")
		assert.True(t, ir.IsNotFound(err), "metadata without graph is not a complete execution")

		require.NoError(t, s.StoreGraph(ctx, "exec-2", exec.Graph.Nodes, exec.Graph.Edges))

		got, err := s.FetchExecution(ctx, "exec-2")
		require.NoError(t, err)
		assert.Equal(t, exec.Events, got.Events)
	})
}

func TestStoreGraphUnknownExecution(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		exec := createTestExecution("ghost", time.Unix(0, 0))
		err := s.StoreGraph(context.Background(), "ghost", exec.Graph.Nodes, exec.Graph.Edges)
		assert.True(t, ir.IsNotFound(err), "got %v", err)
	})
}

func TestFetchUnknownExecution(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		_, err := s.FetchExecution(context.Background(), "nope")
		require.Error(t, err)
		assert.True(t, ir.IsNotFound(err))

		_, err = s.FetchMeta(context.Background(), "nope")
		assert.True(t, ir.IsNotFound(err))
	})
}

func TestListExecutionsPagination(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 7; i++ {
			exec := createTestExecution(fmt.Sprintf("exec-%d", i), base.Add(time.Duration(i)*time.Minute))
			if i%2 == 1 {
				exec.Noise = &ir.NoiseConfig{Type: "depolarizing", Level: "high"}
			}
			require.NoError(t, s.Save(ctx, exec))
		}

		page1, err := s.ListExecutions(ctx, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, page1.Total)
		require.Len(t, page1.Executions, 3)
		assert.Equal(t, "exec-6", page1.Executions[0].ID, "newest first")
		assert.Equal(t, "exec-4", page1.Executions[2].ID)
		assert.False(t, page1.Executions[0].IsNoisy)
		assert.True(t, page1.Executions[1].IsNoisy)
		assert.Equal(t, "high", page1.Executions[1].NoiseLevel)

		page3, err := s.ListExecutions(ctx, 3, 3)
		require.NoError(t, err)
		require.Len(t, page3.Executions, 1)
		assert.Equal(t, "exec-0", page3.Executions[0].ID)

		page9, err := s.ListExecutions(ctx, 9, 3)
		require.NoError(t, err)
		assert.NotNil(t, page9.Executions)
		assert.Empty(t, page9.Executions)
	})
}

func TestListExecutionsRejectsBadPaging(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, tc := range []struct{ page, limit int }{{0, 10}, {1, 0}, {1, 51}, {-1, 5}} {
		_, err := s.ListExecutions(ctx, tc.page, tc.limit)
		assert.ErrorIs(t, err, ErrInvalidPage, "page=%d limit=%d", tc.page, tc.limit)
	}

	_, err := s.ListExecutions(ctx, 1, MaxListLimit)
	assert.NoError(t, err)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Close())

	ctx := context.Background()
	err := s.Save(ctx, createTestExecution("late", time.Unix(0, 0)))
	assert.True(t, ir.IsStoreUnavailable(err), "got %v", err)

	_, err = s.FetchExecution(ctx, "late")
	assert.True(t, ir.IsStoreUnavailable(err), "got %v", err)

	_, err = s.ListExecutions(ctx, 1, 10)
	assert.True(t, ir.IsStoreUnavailable(err), "got %v", err)

	assert.True(t, ir.IsStoreUnavailable(s.Ping(ctx)))
}

func TestSaveHonorsCancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx, createTestExecution("cancelled", time.Unix(0, 0)))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ir.IsStoreUnavailable(err))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdatePerformance(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, createTestExecution("perf", time.Unix(300, 0))))

		stats := ir.PerformanceStats{EventExtractionMs: 1, GraphBuildMs: 2, PersistenceMs: 3, TotalMs: 6}
		require.NoError(t, s.UpdatePerformance(ctx, "perf", stats))

		meta, err := s.FetchMeta(ctx, "perf")
		require.NoError(t, err)
		require.NotNil(t, meta.Stats)
		assert.Equal(t, stats, *meta.Stats)

		err = s.UpdatePerformance(ctx, "missing", stats)
		assert.True(t, ir.IsNotFound(err), "got %v", err)
	})
}
