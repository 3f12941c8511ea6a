package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/logging"
	"github.com/jonathan/job-similarity/internal/metrics"
	"github.com/jonathan/job-similarity/internal/ranking"
	"github.com/jonathan/job-similarity/internal/selection"
	"github.com/jonathan/job-similarity/internal/types"
	"go.uber.org/zap"
)

// DefaultCandidatePool bounds how many candidates are requested from the supplier.
const DefaultCandidatePool = 200

// NoCandidatesMessage is set on successful responses that found nothing to compare.
const NoCandidatesMessage = "no candidate jobs available for comparison"

// maxLoggedID bounds client-supplied ids in log fields.
const maxLoggedID = 64

// ReferenceLoader fetches the job that recommendations are computed for.
// It returns (nil, nil) when no job has the given id.
type ReferenceLoader interface {
	LoadReference(ctx context.Context, id uuid.UUID) (*types.JobRecord, error)
}

// CandidateSupplier lists active postings in the reference's region, excluding the reference,
// newest first and at most limit of them.
type CandidateSupplier interface {
	ListCandidates(ctx context.Context, ref *types.JobRecord, limit int) ([]types.JobRecord, error)
}

// Store is a job source that can serve both roles.
type Store interface {
	ReferenceLoader
	CandidateSupplier
}

// Engine answers similar-jobs requests. It is safe for concurrent use.
type Engine struct {
	loader   ReferenceLoader
	supplier CandidateSupplier
	scorer   *ranking.Scorer
	pool     int
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCandidatePool sets the maximum number of candidates fetched per request.
func WithCandidatePool(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pool = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l) }
}

// NewEngine wires an engine from its collaborators.
func NewEngine(loader ReferenceLoader, supplier CandidateSupplier, scorer *ranking.Scorer, opts ...Option) *Engine {
	e := &Engine{
		loader:   loader,
		supplier: supplier,
		scorer:   scorer,
		pool:     DefaultCandidatePool,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns up to req.Limit postings most similar to the reference job.
// Failures are always *Error values.
func (e *Engine) Recommend(ctx context.Context, req types.SimilarJobsRequest) (*types.SimilarJobsResponse, error) {
	start := time.Now()
	tr := newTracer(start, req.Debug)

	resp, considered, err := e.recommend(ctx, req, tr)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = outcomeOf(KindOf(err))
		e.logger.Warn("similar jobs request failed",
			zap.String("reference_job_id", logging.Truncate(req.ReferenceJobID, maxLoggedID)),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	case len(resp.Jobs) == 0:
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordRequest(outcome, elapsed, considered)
	if err != nil {
		return nil, err
	}

	resp.Metadata.ProcessingTimeMS = millis(elapsed)
	resp.Metadata.Trace = tr.steps
	e.logger.Debug("similar jobs request complete",
		zap.String("reference_job_id", req.ReferenceJobID),
		zap.Int("considered", considered),
		zap.Int("returned", resp.Metadata.Returned),
		zap.Int("factor_faults", resp.Metadata.FactorFaults),
		zap.Duration("elapsed", elapsed))
	return resp, nil
}

// outcomeOf maps an error kind to its metrics outcome label.
func outcomeOf(kind ErrorKind) string {
	switch kind {
	case KindInvalidInput:
		return metrics.OutcomeInvalidInput
	case KindNotFound:
		return metrics.OutcomeNotFound
	case KindUpstream:
		return metrics.OutcomeUpstream
	case KindCanceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}

func (e *Engine) recommend(ctx context.Context, req types.SimilarJobsRequest, tr *tracer) (*types.SimilarJobsResponse, int, error) {
	if err := req.Validate(); err != nil {
		return nil, -1, tr.fail(invalidInput(err))
	}
	id, err := req.ReferenceUUID()
	if err != nil {
		return nil, -1, tr.fail(invalidInput(err))
	}
	tr.step("validate", fmt.Sprintf("limit=%d", req.Limit))

	if err := ctx.Err(); err != nil {
		return nil, -1, tr.fail(canceled(err))
	}

	ref, err := e.loader.LoadReference(ctx, id)
	if err != nil {
		return nil, -1, tr.fail(upstream("failed to load reference job", err))
	}
	if ref == nil {
		return nil, -1, tr.fail(&Error{Kind: KindNotFound, Message: fmt.Sprintf("job %s not found", id)})
	}
	tr.step("load_reference", ref.Title)

	cands, err := e.supplier.ListCandidates(ctx, ref, e.pool)
	if err != nil {
		return nil, -1, tr.fail(upstream("failed to list candidate jobs", err))
	}
	cands = excludeReference(cands, ref.ID, e.pool)
	tr.step("fetch_candidates", fmt.Sprintf("%d candidates", len(cands)))

	resp := &types.SimilarJobsResponse{
		Jobs: []types.SimilarJob{},
		Metadata: types.SimilarJobsMetadata{
			ReferenceJobID:  id,
			TotalConsidered: len(cands),
			CompanyCap:      selection.CompanyCap(req.Limit),
		},
	}
	if len(cands) == 0 {
		resp.Metadata.Message = NoCandidatesMessage
		return resp, 0, nil
	}

	scored, err := e.scorer.ScoreAll(ctx, ref, cands)
	if err != nil {
		return nil, len(cands), tr.fail(canceled(err))
	}
	faults := 0
	for i := range scored {
		faults += scored[i].Faults
	}
	metrics.RecordFactorFaults(faults)
	if faults > 0 {
		e.logger.Warn("factor values coerced during scoring",
			zap.String("reference_job_id", req.ReferenceJobID),
			zap.Int("faults", faults))
	}
	tr.step("score", fmt.Sprintf("%d scored, %d faults", len(scored), faults))

	res, err := selection.Diversify(scored, req.Limit)
	if err != nil {
		return nil, len(cands), tr.fail(&Error{Kind: KindInvalidInput, Message: "invalid request", Cause: err})
	}
	tr.step("diversify", fmt.Sprintf("cap %d, backfilled %d", res.CompanyCap, res.Backfilled))

	// Nothing is returned for a request canceled mid-pipeline.
	if err := ctx.Err(); err != nil {
		return nil, len(cands), tr.fail(canceled(err))
	}

	resp.Jobs = Format(res.Selected, req.Debug)
	resp.Metadata.Returned = len(resp.Jobs)
	resp.Metadata.CompanyCap = res.CompanyCap
	resp.Metadata.FactorFaults = faults
	tr.step("format", fmt.Sprintf("%d jobs", len(resp.Jobs)))
	return resp, len(cands), nil
}

// excludeReference drops the reference posting and anything past the pool bound.
func excludeReference(cands []types.JobRecord, refID uuid.UUID, limit int) []types.JobRecord {
	out := make([]types.JobRecord, 0, min(len(cands), limit))
	for i := range cands {
		if cands[i].ID == refID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, cands[i])
	}
	return out
}
