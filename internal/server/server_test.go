package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/recommend"
	"github.com/jonathan/job-similarity/internal/server/ratelimit"
	"github.com/jonathan/job-similarity/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRecommender struct {
	got  types.SimilarJobsRequest
	resp *types.SimilarJobsResponse
	err  error
	// deadline reports whether the context passed to Recommend had one.
	deadline bool
}

func (f *fakeRecommender) Recommend(ctx context.Context, req types.SimilarJobsRequest) (*types.SimilarJobsResponse, error) {
	f.got = req
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &types.SimilarJobsResponse{Jobs: []types.SimilarJob{}}, nil
}

type fakeLoader struct {
	jobs map[uuid.UUID]*types.JobRecord
	err  error
}

func (f *fakeLoader) LoadReference(_ context.Context, id uuid.UUID) (*types.JobRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs[id], nil
}

func newTestServer(rec Recommender, loader recommend.ReferenceLoader, opts ...Option) *Server {
	cfg := Config{
		DefaultLimit:   5,
		MaxLimit:       10,
		RequestTimeout: time.Second,
		RateLimit:      &ratelimit.Config{Enabled: false},
	}
	if loader == nil {
		loader = &fakeLoader{}
	}
	return New(cfg, rec, loader, opts...)
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, nil)

	w := do(t, s.Handler(), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthEndpoint_Unavailable(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, nil, WithHealthCheck(func(context.Context) error {
		return errors.New("connection refused")
	}))

	w := do(t, s.Handler(), "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, nil)

	w := do(t, s.Handler(), "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSimilarJobs_Success(t *testing.T) {
	id := uuid.New()
	rec := &fakeRecommender{resp: &types.SimilarJobsResponse{
		Jobs: []types.SimilarJob{{ID: uuid.New(), Title: "Backend Engineer", SimilarityScore: "87%", Salary: "Not specified"}},
		Metadata: types.SimilarJobsMetadata{
			ReferenceJobID: id,
			Returned:       1,
		},
	}}
	s := newTestServer(rec, nil)

	w := do(t, s.Handler(), "/jobs/"+id.String()+"/similar?limit=3&debug=true")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, id.String(), rec.got.ReferenceJobID)
	assert.Equal(t, 3, rec.got.Limit)
	assert.True(t, rec.got.Debug)
	assert.True(t, rec.deadline)

	var resp types.SimilarJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "87%", resp.Jobs[0].SimilarityScore)
}

func TestSimilarJobs_EmptyListIsJSONArray(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, nil)

	w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"jobs":[]`)
}

func TestSimilarJobs_LimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"absent uses default", "", 5},
		{"in range", "?limit=7", 7},
		{"above max", "?limit=50", 10},
		{"zero uses default", "?limit=0", 5},
		{"negative uses default", "?limit=-4", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecommender{}
			s := newTestServer(rec, nil)

			w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar"+tt.query)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, rec.got.Limit)
		})
	}
}

func TestSimilarJobs_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non-numeric limit", "?limit=ten", "limit"},
		{"invalid debug", "?debug=maybe", "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecommender{}
			s := newTestServer(rec, nil)

			w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar"+tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, "invalid_input", body.Kind)
			assert.Contains(t, body.Error, tt.field)
			assert.Empty(t, rec.got.ReferenceJobID, "engine must not be called")
		})
	}
}

func TestSimilarJobs_EngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantCause  string
	}{
		{"invalid input", &recommend.Error{Kind: recommend.KindInvalidInput, Message: "invalid request: ReferenceJobID: uuid", Cause: errors.New("validator detail")}, http.StatusBadRequest, "invalid_input", ""},
		{"not found", &recommend.Error{Kind: recommend.KindNotFound, Message: "job not found"}, http.StatusNotFound, "not_found", ""},
		{"upstream", &recommend.Error{Kind: recommend.KindUpstream, Message: "failed to load reference job", Cause: errors.New("connection refused")}, http.StatusBadGateway, "upstream_failure", "connection refused"},
		{"canceled", &recommend.Error{Kind: recommend.KindCanceled, Message: "request canceled", Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout, "canceled", "context deadline exceeded"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeRecommender{err: tt.err}, nil)

			w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar")

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantCause, body.Cause)
			assert.NotContains(t, body.Error, "boom")
		})
	}
}

func TestSimilarJobs_ErrorTrace(t *testing.T) {
	trace := []types.TraceStep{{Step: "validate"}, {Step: "load_reference", Detail: "not found"}}
	s := newTestServer(&fakeRecommender{err: &recommend.Error{
		Kind:    recommend.KindNotFound,
		Message: "job not found",
		Trace:   trace,
	}}, nil)

	w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar?debug=1")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, trace, decodeError(t, w).Trace)
}

func TestGetJob(t *testing.T) {
	id := uuid.New()
	loader := &fakeLoader{jobs: map[uuid.UUID]*types.JobRecord{
		id: {ID: id, Title: "Data Engineer"},
	}}
	s := newTestServer(&fakeRecommender{}, loader)

	t.Run("found", func(t *testing.T) {
		w := do(t, s.Handler(), "/jobs/"+id.String())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Data Engineer")
	})

	t.Run("missing", func(t *testing.T) {
		w := do(t, s.Handler(), "/jobs/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(t, s.Handler(), "/jobs/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetJob_StoreFailure(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, &fakeLoader{err: errors.New("pool closed")})

	w := do(t, s.Handler(), "/jobs/"+uuid.NewString())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "upstream_failure", body.Kind)
	assert.Equal(t, "pool closed", body.Cause)
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/jobs/x/similar", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogging_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newTestServer(&fakeRecommender{}, nil, WithLogger(zap.New(core)))

	t.Run("generated", func(t *testing.T) {
		w := do(t, s.Handler(), "/health")
		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestLogging_RequestIDTruncated(t *testing.T) {
	s := newTestServer(&fakeRecommender{}, nil, WithLogger(nil))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 1000))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, strings.Repeat("a", maxRequestIDLength)+"...", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	cfg := Config{
		RateLimit: &ratelimit.Config{Enabled: true, RequestsPerSecond: 0.001, Burst: 2},
	}
	s := New(cfg, &fakeRecommender{}, &fakeLoader{})

	for range 2 {
		w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(t, s.Handler(), "/jobs/"+uuid.NewString()+"/similar")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(w.Body.String(), "rate_limit_exceeded"))

	w = do(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, w.Code, "health is never limited")
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	hookCalled := make(chan struct{})
	cfg := Config{Port: 0, RateLimit: &ratelimit.Config{Enabled: false}}
	s := New(cfg, &fakeRecommender{}, &fakeLoader{}, WithShutdownHook(func() { close(hookCalled) }))
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	select {
	case <-hookCalled:
	default:
		t.Fatal("shutdown hook not run")
	}
}
