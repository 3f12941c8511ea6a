package ranking

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/types"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func fixedClock() time.Time { return testNow }

// backendJob returns a fully populated reference posting.
func backendJob() types.JobRecord {
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
		RemoteWork:      types.WorkModeHybrid,
		Department:      "Platform Engineering",
		CompanyID:       uuid.New(),
		CompanyName:     "Acme",
		Company: &types.CompanyInfo{
			Industries:  []string{"Software"},
			CompanySize: "201-500",
		},
		Status:    types.JobStatusActive,
		CreatedAt: testNow.Add(-24 * time.Hour),
	}
}

// twinOf copies job under a new id and company.
func twinOf(job types.JobRecord) types.JobRecord {
	twin := job
	twin.ID = uuid.New()
	twin.CompanyID = uuid.New()
	twin.CompanyName = "Globex"
	return twin
}

// unrelatedJob shares nothing with backendJob.
func unrelatedJob() types.JobRecord {
	return types.JobRecord{
		ID:              uuid.New(),
		Title:           "Registered Nurse",
		Location:        "Paris, France",
		Skills:          []string{"Patient Care", "Triage"},
		JobType:         types.JobTypeInternship,
		ExperienceLevel: types.ExperienceEntry,
		CompanyID:       uuid.New(),
		CreatedAt:       testNow,
	}
}
