package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-similarity/internal/types"
)

// DefaultCandidateLimit bounds ListCandidates when the caller passes no limit.
const DefaultCandidateLimit = 200

const getJobSQL = `SELECT ` + jobColumns + `
	FROM jobs j
	LEFT JOIN companies c ON c.id = j.company_id
	WHERE j.id = $1`

// Same partition as the reference, active, unexpired, newest first.
const listCandidatesSQL = `SELECT ` + jobColumns + `
	FROM jobs j
	LEFT JOIN companies c ON c.id = j.company_id
	WHERE j.status = 'active'
	  AND (j.expires_at IS NULL OR j.expires_at > NOW())
	  AND LOWER(COALESCE(j.region, '')) = LOWER($1)
	  AND j.id <> $2
	ORDER BY j.created_at DESC, j.id
	LIMIT $3`

// LoadReference retrieves a posting with its company by ID.
// Returns (nil, nil) when the posting does not exist.
func (db *DB) LoadReference(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	var row jobRow
	err := db.pool.QueryRow(ctx, getJobSQL, id).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	rec := row.toRecord()
	return &rec, nil
}

// ListCandidates retrieves active postings in the reference's region, excluding the reference,
// newest first and at most limit of them.
func (db *DB) ListCandidates(ctx context.Context, ref *types.JobRecord, limit int) ([]types.JobRecord, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	rows, err := db.pool.Query(ctx, listCandidatesSQL, ref.Region, ref.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]types.JobRecord, 0, limit)
	for rows.Next() {
		var row jobRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan candidate job: %w", err)
		}
		jobs = append(jobs, row.toRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidate jobs: %w", err)
	}
	return jobs, nil
}

// UpsertCompany inserts or replaces a company row.
func (db *DB) UpsertCompany(ctx context.Context, id uuid.UUID, name string, info *types.CompanyInfo) error {
	if info == nil {
		info = &types.CompanyInfo{}
	}
	industries := info.Industries
	if industries == nil {
		industries = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO companies (id, name, industries, company_size, is_featured, rating)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		 ON CONFLICT (id) DO UPDATE SET name = $2, industries = $3, company_size = NULLIF($4, ''),
		     is_featured = $5, rating = $6`,
		id, name, industries, info.CompanySize, info.IsFeatured, info.Rating,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company: %w", err)
	}
	return nil
}

// UpsertJob inserts or replaces a posting. The company row must already exist.
func (db *DB) UpsertJob(ctx context.Context, job *types.JobRecord) error {
	var companyID *uuid.UUID
	if job.CompanyID != uuid.Nil {
		companyID = &job.CompanyID
	}
	status := job.Status
	if status == "" {
		status = types.JobStatusActive
	}
	skills := job.Skills
	if skills == nil {
		skills = []string{}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (id, company_id, title, description, location, region, skills, job_type,
		     experience_level, salary_min, salary_max, salary_text, remote_work, department,
		     is_featured, is_premium, status, expires_at, created_at, views, applications)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''),
		     NULLIF($9, ''), $10, $11, NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''),
		     $15, $16, $17, $18, $19, $20, $21)
		 ON CONFLICT (id) DO UPDATE SET company_id = $2, title = $3, description = NULLIF($4, ''),
		     location = NULLIF($5, ''), region = NULLIF($6, ''), skills = $7, job_type = NULLIF($8, ''),
		     experience_level = NULLIF($9, ''), salary_min = $10, salary_max = $11,
		     salary_text = NULLIF($12, ''), remote_work = NULLIF($13, ''), department = NULLIF($14, ''),
		     is_featured = $15, is_premium = $16, status = $17, expires_at = $18, created_at = $19,
		     views = $20, applications = $21`,
		job.ID, companyID, job.Title, job.Description, job.Location, job.Region, skills,
		job.JobType.String(), job.ExperienceLevel.String(), job.SalaryMin, job.SalaryMax,
		job.SalaryText, job.RemoteWork.String(), job.Department, job.IsFeatured, job.IsPremium,
		status, job.ExpiresAt, job.CreatedAt, job.Views, job.Applications,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}
	return nil
}
