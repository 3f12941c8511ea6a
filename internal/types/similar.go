package types

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Result limits for a similar-jobs request
const (
	MinSimilarLimit     = 1
	MaxSimilarLimit     = 10
	DefaultSimilarLimit = 5
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// SimilarJobsRequest asks for the postings most similar to a reference job.
type SimilarJobsRequest struct {
	ReferenceJobID string `json:"reference_job_id" validate:"required,uuid"`
	Limit          int    `json:"limit" validate:"min=1,max=10"`
	Debug          bool   `json:"debug,omitempty"`
}

// Validate validates the SimilarJobsRequest using the validator.
func (r *SimilarJobsRequest) Validate() error {
	return requestValidator().Struct(r)
}

// ReferenceUUID parses the reference id. Call Validate first.
func (r *SimilarJobsRequest) ReferenceUUID() (uuid.UUID, error) {
	return uuid.Parse(r.ReferenceJobID)
}

// ClampLimit forces a user-supplied limit into the accepted range.
// Values below the minimum fall back to def.
func ClampLimit(limit, def, maxLimit int) int {
	if maxLimit <= 0 || maxLimit > MaxSimilarLimit {
		maxLimit = MaxSimilarLimit
	}
	if def < MinSimilarLimit || def > maxLimit {
		def = min(DefaultSimilarLimit, maxLimit)
	}
	if limit < MinSimilarLimit {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// SimilarJob is one formatted recommendation.
type SimilarJob struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	CompanyID       uuid.UUID          `json:"company_id"`
	CompanyName     string             `json:"company_name,omitempty"`
	Location        string             `json:"location,omitempty"`
	Salary          string             `json:"salary"`
	JobType         string             `json:"job_type,omitempty"`
	ExperienceLevel string             `json:"experience_level,omitempty"`
	Skills          []string           `json:"skills,omitempty"`
	Description     string             `json:"description,omitempty"`
	SimilarityScore string             `json:"similarity_score"`
	Factors         map[string]float64 `json:"factors,omitempty"`
}

// TraceStep records one stage of a request for debug output.
type TraceStep struct {
	Step      string  `json:"step"`
	Detail    string  `json:"detail,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// SimilarJobsMetadata describes how a response was produced.
type SimilarJobsMetadata struct {
	ReferenceJobID   uuid.UUID   `json:"reference_job_id"`
	TotalConsidered  int         `json:"total_considered"`
	Returned         int         `json:"returned"`
	CompanyCap       int         `json:"company_cap"`
	ProcessingTimeMS float64     `json:"processing_time_ms"`
	FactorFaults     int         `json:"factor_faults,omitempty"`
	Message          string      `json:"message,omitempty"`
	Trace            []TraceStep `json:"trace,omitempty"`
}

// SimilarJobsResponse is the engine output.
type SimilarJobsResponse struct {
	Jobs     []SimilarJob        `json:"jobs"`
	Metadata SimilarJobsMetadata `json:"metadata"`
}
