package recommend

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/metrics"
	"github.com/jonathan/job-similarity/internal/ranking"
	"github.com/jonathan/job-similarity/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

type fakeStore struct {
	jobs     map[uuid.UUID]*types.JobRecord
	cands    []types.JobRecord
	loadErr  error
	listErr  error
	gotLimit int
	onList   func()
}

func (f *fakeStore) LoadReference(_ context.Context, id uuid.UUID) (*types.JobRecord, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.jobs[id], nil
}

func (f *fakeStore) ListCandidates(_ context.Context, _ *types.JobRecord, limit int) ([]types.JobRecord, error) {
	f.gotLimit = limit
	if f.onList != nil {
		f.onList()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.cands, nil
}

func referenceJob() types.JobRecord {
	return types.JobRecord{
		ID:              uuid.New(),
		Title:           "Senior Backend Engineer",
		Description:     "Build and operate Go services.",
		Location:        "Austin, TX, USA",
		Region:          "us",
		Skills:          []string{"Go", "PostgreSQL", "Kubernetes"},
		JobType:         types.JobTypeFullTime,
		ExperienceLevel: types.ExperienceSenior,
		SalaryMin:       ptr(140000),
		SalaryMax:       ptr(180000),
		CompanyID:       uuid.New(),
		CompanyName:     "Acme",
		CreatedAt:       testNow.Add(-24 * time.Hour),
	}
}

func candidateAt(ref types.JobRecord, company uuid.UUID, title string) types.JobRecord {
	c := ref
	c.ID = uuid.New()
	c.CompanyID = company
	c.Title = title
	return c
}

func newTestEngine(t *testing.T, store *fakeStore, opts ...Option) *Engine {
	t.Helper()
	scorer := ranking.NewScorer(ranking.DefaultWeights(),
		ranking.WithClock(func() time.Time { return testNow }))
	return NewEngine(store, store, scorer, opts...)
}

func storeWith(ref types.JobRecord, cands ...types.JobRecord) *fakeStore {
	return &fakeStore{
		jobs:  map[uuid.UUID]*types.JobRecord{ref.ID: &ref},
		cands: cands,
	}
}

func TestRecommend_RanksAndFormats(t *testing.T) {
	ref := referenceJob()
	twin := candidateAt(ref, uuid.New(), ref.Title)
	other := candidateAt(ref, uuid.New(), "Registered Nurse")
	other.Skills = []string{"Triage"}
	other.Location = "Paris, France"

	store := storeWith(ref, other, twin)
	e := newTestEngine(t, store, WithCandidatePool(50))

	resp, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          5,
	})
	require.NoError(t, err)

	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, twin.ID, resp.Jobs[0].ID)
	assert.Equal(t, other.ID, resp.Jobs[1].ID)
	assert.Equal(t, "$140,000 - $180,000", resp.Jobs[0].Salary)
	assert.Nil(t, resp.Jobs[0].Factors)
	assert.Empty(t, resp.Metadata.Trace)

	assert.Equal(t, 50, store.gotLimit)
	assert.Equal(t, ref.ID, resp.Metadata.ReferenceJobID)
	assert.Equal(t, 2, resp.Metadata.TotalConsidered)
	assert.Equal(t, 2, resp.Metadata.Returned)
	assert.Equal(t, 3, resp.Metadata.CompanyCap)
	assert.GreaterOrEqual(t, resp.Metadata.ProcessingTimeMS, 0.0)
}

func TestRecommend_Debug(t *testing.T) {
	ref := referenceJob()
	store := storeWith(ref, candidateAt(ref, uuid.New(), ref.Title))
	e := newTestEngine(t, store)

	resp, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          3,
		Debug:          true,
	})
	require.NoError(t, err)

	require.Len(t, resp.Jobs, 1)
	assert.Contains(t, resp.Jobs[0].Factors, string(ranking.FactorTitle))
	assert.InDelta(t, 1.0, resp.Jobs[0].Factors[string(ranking.FactorTitle)], 1e-9)

	steps := make([]string, 0, len(resp.Metadata.Trace))
	for _, s := range resp.Metadata.Trace {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []string{"validate", "load_reference", "fetch_candidates", "score", "diversify", "format"}, steps)
}

func TestRecommend_DiversityCap(t *testing.T) {
	ref := referenceJob()
	x, y := uuid.New(), uuid.New()

	var cands []types.JobRecord
	for range 10 {
		cands = append(cands, candidateAt(ref, x, ref.Title))
	}
	for range 2 {
		cands = append(cands, candidateAt(ref, y, "Backend Engineer"))
	}

	e := newTestEngine(t, storeWith(ref, cands...))
	resp, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          4,
	})
	require.NoError(t, err)

	perCompany := map[uuid.UUID]int{}
	for _, j := range resp.Jobs {
		perCompany[j.CompanyID]++
	}
	assert.Equal(t, map[uuid.UUID]int{x: 2, y: 2}, perCompany)
	assert.Equal(t, 2, resp.Metadata.CompanyCap)
}

func TestRecommend_ExcludesReferenceAndBoundsPool(t *testing.T) {
	ref := referenceJob()
	cands := []types.JobRecord{ref}
	for range 5 {
		cands = append(cands, candidateAt(ref, uuid.New(), ref.Title))
	}

	e := newTestEngine(t, storeWith(ref, cands...), WithCandidatePool(3))
	resp, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          10,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Metadata.TotalConsidered)
	for _, j := range resp.Jobs {
		assert.NotEqual(t, ref.ID, j.ID)
	}
}

func TestRecommend_NoCandidates(t *testing.T) {
	ref := referenceJob()
	e := newTestEngine(t, storeWith(ref))

	resp, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          5,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Jobs)
	assert.Empty(t, resp.Jobs)
	assert.Equal(t, 0, resp.Metadata.TotalConsidered)
	assert.Equal(t, NoCandidatesMessage, resp.Metadata.Message)
}

func TestRecommend_Errors(t *testing.T) {
	ref := referenceJob()
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		store *fakeStore
		req   types.SimilarJobsRequest
		kind  ErrorKind
	}{
		{
			name:  "malformed id",
			store: storeWith(ref),
			req:   types.SimilarJobsRequest{ReferenceJobID: "not-a-uuid", Limit: 5},
			kind:  KindInvalidInput,
		},
		{
			name:  "missing id",
			store: storeWith(ref),
			req:   types.SimilarJobsRequest{Limit: 5},
			kind:  KindInvalidInput,
		},
		{
			name:  "limit out of range",
			store: storeWith(ref),
			req:   types.SimilarJobsRequest{ReferenceJobID: ref.ID.String(), Limit: 11},
			kind:  KindInvalidInput,
		},
		{
			name:  "unknown reference",
			store: storeWith(ref),
			req:   types.SimilarJobsRequest{ReferenceJobID: uuid.NewString(), Limit: 5},
			kind:  KindNotFound,
		},
		{
			name:  "loader failure",
			store: &fakeStore{loadErr: boom},
			req:   types.SimilarJobsRequest{ReferenceJobID: ref.ID.String(), Limit: 5},
			kind:  KindUpstream,
		},
		{
			name:  "supplier failure",
			store: &fakeStore{jobs: map[uuid.UUID]*types.JobRecord{ref.ID: &ref}, listErr: boom},
			req:   types.SimilarJobsRequest{ReferenceJobID: ref.ID.String(), Limit: 5},
			kind:  KindUpstream,
		},
		{
			name:  "supplier deadline",
			store: &fakeStore{jobs: map[uuid.UUID]*types.JobRecord{ref.ID: &ref}, listErr: context.DeadlineExceeded},
			req:   types.SimilarJobsRequest{ReferenceJobID: ref.ID.String(), Limit: 5},
			kind:  KindCanceled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.store)
			resp, err := e.Recommend(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestRecommend_UpstreamErrorWrapsCause(t *testing.T) {
	ref := referenceJob()
	boom := errors.New("connection refused")
	e := newTestEngine(t, &fakeStore{loadErr: boom})

	_, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          5,
		Debug:          true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.Trace, 1)
	assert.Equal(t, "validate", rerr.Trace[0].Step)
}

func TestRecommend_CanceledMidPipeline(t *testing.T) {
	ref := referenceJob()
	ctx, cancel := context.WithCancel(context.Background())
	store := storeWith(ref, candidateAt(ref, uuid.New(), ref.Title))
	store.onList = cancel

	e := newTestEngine(t, store)
	resp, err := e.Recommend(ctx, types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          5,
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommend_FactorFaultsRecovered(t *testing.T) {
	ref := referenceJob()
	store := storeWith(ref, candidateAt(ref, uuid.New(), ref.Title))

	core, logs := observer.New(zap.WarnLevel)
	scorer := ranking.NewScorer(ranking.DefaultWeights(),
		ranking.WithClock(func() time.Time { return testNow }),
		ranking.WithEstimator(ranking.FactorSalary, func(_, _ *types.JobRecord, _ time.Time) (float64, bool) {
			return math.NaN(), true
		}))
	e := NewEngine(store, store, scorer, WithLogger(zap.New(core)))

	resp, err := e.Recommend(context.Background(), types.SimilarJobsRequest{
		ReferenceJobID: ref.ID.String(),
		Limit:          5,
		Debug:          true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, 1, resp.Metadata.FactorFaults)
	assert.Equal(t, 0.0, resp.Jobs[0].Factors[string(ranking.FactorSalary)])
	assert.Equal(t, 1, logs.FilterMessage("factor values coerced during scoring").Len())
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindInvalidInput, metrics.OutcomeInvalidInput},
		{KindNotFound, metrics.OutcomeNotFound},
		{KindUpstream, metrics.OutcomeUpstream},
		{KindCanceled, metrics.OutcomeCanceled},
		{"", metrics.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeOf(tt.kind))
		})
	}
}

func TestRecommend_RecordsOutcome(t *testing.T) {
	engine := newTestEngine(t, storeWith(referenceJob()))
	counter := metrics.RequestsTotal.WithLabelValues(metrics.OutcomeNotFound)
	before := testutil.ToFloat64(counter)

	_, err := engine.Recommend(context.Background(), types.SimilarJobsRequest{ReferenceJobID: uuid.NewString(), Limit: 5})

	require.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecommend_TruncatesLoggedID(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	engine := newTestEngine(t, storeWith(referenceJob()), WithLogger(zap.New(core)))
	longID := strings.Repeat("x", 500)

	_, err := engine.Recommend(context.Background(), types.SimilarJobsRequest{ReferenceJobID: longID, Limit: 5})

	require.Error(t, err)
	entries := logs.FilterMessage("similar jobs request failed").All()
	require.Len(t, entries, 1)
	logged, _ := entries[0].ContextMap()["reference_job_id"].(string)
	assert.Equal(t, strings.Repeat("x", maxLoggedID)+"...", logged)
}

func TestWithLogger_NilKeepsNop(t *testing.T) {
	engine := newTestEngine(t, storeWith(referenceJob()), WithLogger(nil))
	require.NotNil(t, engine.logger)
}
