// services/reliability-svc/internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"
)

// Стандартные ошибки
var (
	ErrRunNotFound = errors.New("run not found")
	ErrInvalidRun  = errors.New("invalid run")
)

// RunKind вид прогона
type RunKind string

const (
	RunKindEstimate RunKind = "estimate"
	RunKindSweep    RunKind = "sweep"
	RunKindGrow     RunKind = "grow"
)

// Valid проверяет, что вид известен
func (k RunKind) Valid() bool {
	switch k {
	case RunKindEstimate, RunKindSweep, RunKindGrow:
		return true
	}
	return false
}

// Run сохранённый прогон
type Run struct {
	ID               string       `json:"id"`
	Kind             RunKind      `json:"kind"`
	Name             string       `json:"name"`
	NodeCount        int          `json:"node_count"`
	EdgeCount        int          `json:"edge_count"`
	Trials           int64        `json:"trials"`
	FaultProbability float64      `json:"fault_probability"`
	MaxDelay         float64      `json:"max_delay"`
	Seed             int64        `json:"seed"`
	Probability      *float64     `json:"probability,omitempty"` // nil для серий
	ConfidenceLow    *float64     `json:"confidence_low,omitempty"`
	ConfidenceHigh   *float64     `json:"confidence_high,omitempty"`
	DurationMs       float64      `json:"duration_ms"`
	Result           []byte       `json:"-"` // JSON результата движка
	Tags             []string     `json:"tags,omitempty"`
	Points           []SweepPoint `json:"points,omitempty"` // только для RunKindSweep
	CreatedAt        time.Time    `json:"created_at"`
}

// SweepPoint точка серии
type SweepPoint struct {
	Position       int     `json:"position"`
	Value          float64 `json:"value"`
	Probability    float64 `json:"probability"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

// RunSummary краткая информация для списка
type RunSummary struct {
	ID          string    `json:"id"`
	Kind        RunKind   `json:"kind"`
	Name        string    `json:"name"`
	Probability *float64  `json:"probability,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListOptions фильтр и страница списка
type ListOptions struct {
	Kind   RunKind  // пусто = все виды
	Tags   []string // прогон должен содержать все теги
	Limit  int
	Offset int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// normalizeListOptions подставляет умолчания и ограничивает размер страницы
func normalizeListOptions(opts *ListOptions) ListOptions {
	if opts == nil {
		return ListOptions{Limit: defaultListLimit}
	}
	out := *opts
	if out.Limit <= 0 {
		out.Limit = defaultListLimit
	}
	if out.Limit > maxListLimit {
		out.Limit = maxListLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// RunRepository хранилище истории прогонов
type RunRepository interface {
	// Create сохраняет прогон вместе с точками серии. Пустой ID
	// заменяется новым UUID, CreatedAt заполняется хранилищем.
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	// List возвращает страницу прогонов, новые первыми, и общее число
	// подходящих под фильтр.
	List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error)
	Delete(ctx context.Context, id string) error
}
