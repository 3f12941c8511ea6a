package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/types"
)

// jobColumns selects a posting joined with its company, in jobRow.dest order.
const jobColumns = `j.id, j.company_id, j.title, j.description, j.location, j.region, j.skills,
	j.job_type, j.experience_level, j.salary_min, j.salary_max, j.salary_text, j.remote_work,
	j.department, j.is_featured, j.is_premium, j.status, j.expires_at, j.created_at,
	j.views, j.applications,
	c.name, c.industries, c.company_size, c.is_featured, c.rating`

// jobRow holds one scanned row. Nullable columns scan into pointers.
type jobRow struct {
	ID              uuid.UUID
	CompanyID       *uuid.UUID
	Title           string
	Description     *string
	Location        *string
	Region          *string
	Skills          []string
	JobType         *string
	ExperienceLevel *string
	SalaryMin       *float64
	SalaryMax       *float64
	SalaryText      *string
	RemoteWork      *string
	Department      *string
	IsFeatured      bool
	IsPremium       bool
	Status          string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
	Views           int
	Applications    int

	// Company columns are NULL when the posting has no company row.
	CompanyName       *string
	CompanyIndustries []string
	CompanySize       *string
	CompanyFeatured   *bool
	CompanyRating     *float64
}

func (r *jobRow) dest() []any {
	return []any{
		&r.ID, &r.CompanyID, &r.Title, &r.Description, &r.Location, &r.Region, &r.Skills,
		&r.JobType, &r.ExperienceLevel, &r.SalaryMin, &r.SalaryMax, &r.SalaryText, &r.RemoteWork,
		&r.Department, &r.IsFeatured, &r.IsPremium, &r.Status, &r.ExpiresAt, &r.CreatedAt,
		&r.Views, &r.Applications,
		&r.CompanyName, &r.CompanyIndustries, &r.CompanySize, &r.CompanyFeatured, &r.CompanyRating,
	}
}

// toRecord converts the row into the engine's record type.
func (r *jobRow) toRecord() types.JobRecord {
	rec := types.JobRecord{
		ID:              r.ID,
		Title:           r.Title,
		Description:     deref(r.Description),
		Location:        deref(r.Location),
		Region:          deref(r.Region),
		Skills:          r.Skills,
		JobType:         types.ParseJobType(deref(r.JobType)),
		ExperienceLevel: types.ParseExperienceLevel(deref(r.ExperienceLevel)),
		SalaryMin:       r.SalaryMin,
		SalaryMax:       r.SalaryMax,
		SalaryText:      deref(r.SalaryText),
		RemoteWork:      types.ParseWorkMode(deref(r.RemoteWork)),
		Department:      deref(r.Department),
		IsFeatured:      r.IsFeatured,
		IsPremium:       r.IsPremium,
		Status:          r.Status,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
		Views:           r.Views,
		Applications:    r.Applications,
	}
	if r.CompanyID != nil {
		rec.CompanyID = *r.CompanyID
	}
	if r.CompanyName != nil {
		rec.CompanyName = *r.CompanyName
		rec.Company = &types.CompanyInfo{
			Industries:  r.CompanyIndustries,
			CompanySize: deref(r.CompanySize),
		}
		if r.CompanyFeatured != nil {
			rec.Company.IsFeatured = *r.CompanyFeatured
		}
		if r.CompanyRating != nil {
			rec.Company.Rating = *r.CompanyRating
		}
	}
	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
