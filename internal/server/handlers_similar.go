package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jonathan/job-similarity/internal/types"
	"go.uber.org/zap"
)

// parseQueryInt parses an integer query parameter. An absent parameter yields defaultValue.
func parseQueryInt(r *http.Request, key string, defaultValue int) (int, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, &ErrValidation{Field: key, Message: "must be an integer"}
	}
	return val, nil
}

// parseQueryBool parses a boolean query parameter. An absent parameter is false.
func parseQueryBool(r *http.Request, key string) (bool, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return false, nil
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, &ErrValidation{Field: key, Message: "must be a boolean"}
	}
	return val, nil
}

// handleSimilarJobs returns the postings most similar to the job in the path.
func (s *Server) handleSimilarJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseQueryInt(r, "limit", s.defaultLimit)
	if err != nil {
		s.engineErrorResponse(w, err)
		return
	}
	debug, err := parseQueryBool(r, "debug")
	if err != nil {
		s.engineErrorResponse(w, err)
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	resp, err := s.engine.Recommend(ctx, types.SimilarJobsRequest{
		ReferenceJobID: r.PathValue("id"),
		Limit:          types.ClampLimit(limit, s.defaultLimit, s.maxLimit),
		Debug:          debug,
	})
	if err != nil {
		s.engineErrorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// engineErrorResponse writes err with its mapped status.
func (s *Server) engineErrorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("similar jobs request failed", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, errorBody(err))
}
