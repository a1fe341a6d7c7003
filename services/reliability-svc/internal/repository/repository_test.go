package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryRepo() *MemoryRunRepository {
	repo := NewMemoryRunRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return repo
}

// ============================================================
// MODEL
// ============================================================

func TestRunKind_Valid(t *testing.T) {
	assert.True(t, RunKindEstimate.Valid())
	assert.True(t, RunKindSweep.Valid())
	assert.True(t, RunKindGrow.Valid())
	assert.False(t, RunKind("").Valid())
	assert.False(t, RunKind("report").Valid())
}

func TestNormalizeListOptions(t *testing.T) {
	tests := []struct {
		name       string
		opts       *ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"nil", nil, 20, 0},
		{"valid", &ListOptions{Limit: 10, Offset: 30}, 10, 30},
		{"zero limit", &ListOptions{}, 20, 0},
		{"negative", &ListOptions{Limit: -5, Offset: -1}, 20, 0},
		{"exceeds max", &ListOptions{Limit: 1000}, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeListOptions(tt.opts)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

// ============================================================
// MEMORY REPOSITORY
// ============================================================

func TestMemoryRunRepository_CreateAndGet(t *testing.T) {
	repo := newTestMemoryRepo()
	ctx := context.Background()

	p := 0.9
	run := &Run{Kind: RunKindEstimate, Name: "ring", Probability: &p, Tags: []string{"a"}}
	require.NoError(t, repo.Create(ctx, run))
	require.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "ring", got.Name)
	assert.Equal(t, 0.9, *got.Probability)

	// возвращается копия
	got.Tags[0] = "changed"
	*got.Probability = 0
	again, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Tags)
	assert.Equal(t, 0.9, *again.Probability)
}

func TestMemoryRunRepository_CreateErrors(t *testing.T) {
	repo := newTestMemoryRepo()
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, &Run{Kind: "other"}), ErrInvalidRun)

	require.NoError(t, repo.Create(ctx, &Run{ID: "fixed", Kind: RunKindGrow}))
	assert.ErrorIs(t, repo.Create(ctx, &Run{ID: "fixed", Kind: RunKindGrow}), ErrInvalidRun)
}

func TestMemoryRunRepository_Delete(t *testing.T) {
	repo := newTestMemoryRepo()
	ctx := context.Background()

	run := &Run{Kind: RunKindSweep, Points: []SweepPoint{{Position: 0}}}
	require.NoError(t, repo.Create(ctx, run))

	require.NoError(t, repo.Delete(ctx, run.ID))
	assert.ErrorIs(t, repo.Delete(ctx, run.ID), ErrRunNotFound)

	_, err := repo.GetByID(ctx, run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryRunRepository_List(t *testing.T) {
	repo := newTestMemoryRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		kind := RunKindEstimate
		if i%2 == 1 {
			kind = RunKindSweep
		}
		tags := []string{"all"}
		if i < 2 {
			tags = append(tags, "early")
		}
		require.NoError(t, repo.Create(ctx, &Run{
			ID:   fmt.Sprintf("run-%d", i),
			Kind: kind,
			Tags: tags,
		}))
	}

	runs, total, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, runs, 5)
	assert.Equal(t, "run-4", runs[0].ID, "newest first")
	assert.Equal(t, "run-0", runs[4].ID)

	runs, total, err = repo.List(ctx, &ListOptions{Kind: RunKindSweep})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "run-3", runs[0].ID)

	runs, total, err = repo.List(ctx, &ListOptions{Tags: []string{"all", "early"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "run-1", runs[0].ID)

	runs, total, err = repo.List(ctx, &ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)

	runs, total, err = repo.List(ctx, &ListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, runs)
}

func TestRunRepository_Implementations(t *testing.T) {
	var _ RunRepository = (*PostgresRunRepository)(nil)
	var _ RunRepository = (*MemoryRunRepository)(nil)
}
