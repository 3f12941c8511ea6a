package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/config"
	"github.com/jonathan/job-similarity/internal/logging"
	"github.com/jonathan/job-similarity/internal/metrics"
	"github.com/jonathan/job-similarity/internal/types"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker rejects calls.
var ErrUnavailable = errors.New("job store unavailable")

// JobSource is anything that can load a reference and list its candidates.
type JobSource interface {
	LoadReference(ctx context.Context, id uuid.UUID) (*types.JobRecord, error)
	ListCandidates(ctx context.Context, ref *types.JobRecord, limit int) ([]types.JobRecord, error)
}

// Guarded wraps a JobSource with a circuit breaker. While the breaker is open, calls fail
// fast with ErrUnavailable instead of reaching the store.
type Guarded struct {
	src    JobSource
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger *zap.Logger
}

// NewGuarded builds the breaker from cfg. Canceled calls do not count as failures.
func NewGuarded(name string, src JobSource, cfg config.BreakerConfig, logger *zap.Logger) *Guarded {
	logger = logging.OrNop(logger)
	g := &Guarded{src: src, name: name, logger: logger}

	metrics.SetBreakerState(name, int(gobreaker.StateClosed))

	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.SetBreakerState(name, int(to))
		},
	})
	return g
}

// State reports the breaker state.
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

// LoadReference calls the wrapped source through the breaker.
func (g *Guarded) LoadReference(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	return execute(g, func() (*types.JobRecord, error) {
		return g.src.LoadReference(ctx, id)
	})
}

// ListCandidates calls the wrapped source through the breaker.
func (g *Guarded) ListCandidates(ctx context.Context, ref *types.JobRecord, limit int) ([]types.JobRecord, error) {
	return execute(g, func() ([]types.JobRecord, error) {
		return g.src.ListCandidates(ctx, ref, limit)
	})
}

func execute[T any](g *Guarded, fn func() (T, error)) (T, error) {
	var zero T
	res, err := g.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s: %w", ErrUnavailable, g.name, err)
		}
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker %s: unexpected result type %T", g.name, res)
	}
	return typed, nil
}
