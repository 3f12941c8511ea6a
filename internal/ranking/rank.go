package ranking

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/similarity"
	"github.com/jonathan/job-similarity/internal/types"
	"golang.org/x/sync/errgroup"
)

// SameCompanyBoost multiplies the summed score when the candidate shares the reference's company.
const SameCompanyBoost = 1.25

// ScoredCandidate is a candidate with its aggregate score and the factors that produced it.
type ScoredCandidate struct {
	Job types.JobRecord
	// Score is the final score in [0,1].
	Score float64
	// BaseScore is the weighted sum before the same-company boost.
	BaseScore float64
	// Factors holds only the factors that applied to this pair.
	Factors map[Factor]float64
	// Faults counts values coerced because they were non-finite or out of range.
	Faults int
}

// Scorer computes aggregate scores. It holds no per-request state.
type Scorer struct {
	weights    WeightTable
	estimators map[Factor]FactorFunc
	workers    int
	now        func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers scores candidates on up to n goroutines. n <= 1 scores sequentially.
func WithWorkers(n int) Option {
	return func(s *Scorer) { s.workers = n }
}

// WithClock overrides the time source used by the recency factor.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithSkillWeights weights skill matches by importance.
func WithSkillWeights(weights map[string]float64) Option {
	return func(s *Scorer) {
		s.estimators[FactorSkills] = defaultEstimators(weights)[FactorSkills]
	}
}

// WithEstimator replaces the estimator for one factor.
func WithEstimator(f Factor, fn FactorFunc) Option {
	return func(s *Scorer) { s.estimators[f] = fn }
}

// NewScorer creates a Scorer over the given weight table.
func NewScorer(weights WeightTable, opts ...Option) *Scorer {
	s := &Scorer{
		weights:    weights,
		estimators: defaultEstimators(nil),
		workers:    1,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score scores a single candidate against the reference.
func (s *Scorer) Score(ref, cand *types.JobRecord) ScoredCandidate {
	return s.score(ref, cand, s.now())
}

func (s *Scorer) score(ref, cand *types.JobRecord, now time.Time) ScoredCandidate {
	sc := ScoredCandidate{
		Job:     *cand,
		Factors: make(map[Factor]float64, len(Factors)),
	}

	// Absent factors are skipped without renormalizing the remaining weights.
	sum := 0.0
	for _, f := range Factors {
		fn := s.estimators[f]
		if fn == nil {
			continue
		}
		raw, ok := fn(ref, cand, now)
		if !ok {
			continue
		}
		v, faulted := similarity.Guard(raw)
		if faulted {
			sc.Faults++
		}
		sc.Factors[f] = v
		sum += s.weights.Weight(f) * v
	}

	// Rounding can leave a full-marks sum a hair above 1; only non-finite sums are faults.
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		sc.Faults++
	}
	base := similarity.Clamp01(sum)
	sc.BaseScore = base

	final := base
	if sameCompany(ref, cand) {
		final = base * SameCompanyBoost
	}
	if math.IsNaN(final) || math.IsInf(final, 0) {
		sc.Faults++
	}
	sc.Score = similarity.Clamp01(final)
	return sc
}

// ScoreAll scores every candidate, preserving input order in the result.
// It returns ctx's error, and no results, if ctx is done before scoring finishes.
func (s *Scorer) ScoreAll(ctx context.Context, ref *types.JobRecord, cands []types.JobRecord) ([]ScoredCandidate, error) {
	results := make([]ScoredCandidate, len(cands))
	now := s.now()

	if s.workers <= 1 {
		for i := range cands {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = s.score(ref, &cands[i], now)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range cands {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.score(ref, &cands[i], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func sameCompany(ref, cand *types.JobRecord) bool {
	return ref.CompanyID != uuid.Nil && ref.CompanyID == cand.CompanyID
}
