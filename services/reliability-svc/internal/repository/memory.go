// services/reliability-svc/internal/repository/memory.go
package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRunRepository хранит прогоны в памяти процесса. Используется, когда
// база данных не настроена, и в тестах сервиса.
type MemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*memoryEntry
	seq  int64
	now  func() time.Time
}

type memoryEntry struct {
	run *Run
	seq int64
}

// NewMemoryRunRepository создаёт пустое хранилище
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		runs: make(map[string]*memoryEntry),
		now:  time.Now,
	}
}

func (r *MemoryRunRepository) Create(ctx context.Context, run *Run) error {
	if !run.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRun, run.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidRun, run.ID)
	}
	run.CreatedAt = r.now()

	r.seq++
	r.runs[run.ID] = &memoryEntry{run: cloneRun(run), seq: r.seq}
	return nil
}

func (r *MemoryRunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return cloneRun(e.run), nil
}

func (r *MemoryRunRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(r.runs, id)
	return nil
}

func (r *MemoryRunRepository) List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error) {
	o := normalizeListOptions(opts)

	r.mu.RLock()
	matched := make([]*memoryEntry, 0, len(r.runs))
	for _, e := range r.runs {
		if o.Kind != "" && e.run.Kind != o.Kind {
			continue
		}
		if !containsAll(e.run.Tags, o.Tags) {
			continue
		}
		matched = append(matched, e)
	}
	r.mu.RUnlock()

	// новые первыми
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.run.CreatedAt.Equal(b.run.CreatedAt) {
			return a.run.CreatedAt.After(b.run.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := int64(len(matched))
	if o.Offset >= len(matched) {
		return nil, total, nil
	}
	end := min(o.Offset+o.Limit, len(matched))

	results := make([]*RunSummary, 0, end-o.Offset)
	for _, e := range matched[o.Offset:end] {
		results = append(results, &RunSummary{
			ID:          e.run.ID,
			Kind:        e.run.Kind,
			Name:        e.run.Name,
			Probability: clonePtr(e.run.Probability),
			Tags:        slices.Clone(e.run.Tags),
			CreatedAt:   e.run.CreatedAt,
		})
	}
	return results, total, nil
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func cloneRun(run *Run) *Run {
	c := *run
	c.Result = slices.Clone(run.Result)
	c.Tags = slices.Clone(run.Tags)
	c.Points = slices.Clone(run.Points)
	c.Probability = clonePtr(run.Probability)
	c.ConfidenceLow = clonePtr(run.ConfidenceLow)
	c.ConfidenceHigh = clonePtr(run.ConfidenceHigh)
	return &c
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
