package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/recommend"
	"go.uber.org/zap"
)

// handleGetJob retrieves a job posting by ID
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.loader.LoadReference(r.Context(), jobID)
	if err != nil {
		s.logger.Error("failed to load job", zap.Stringer("job_id", jobID), zap.Error(err))
		s.jsonResponse(w, http.StatusBadGateway, ErrorBody{
			Error: "job store unavailable",
			Kind:  string(recommend.KindUpstream),
			Cause: err.Error(),
		})
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}
