// Package types provides type definitions for the job records and request/response
// contracts shared by the similarity engine, its stores and its transports.
package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus values
const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// JobRecord is a single posting as supplied by a reference loader or candidate supplier.
// Optional fields may be absent; estimators treat absence as missing data, never as an error.
type JobRecord struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Location        string          `json:"location,omitempty"`
	Region          string          `json:"region,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	JobType         JobType         `json:"job_type,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	SalaryText      string          `json:"salary,omitempty"`
	RemoteWork      WorkMode        `json:"remote_work,omitempty"`
	Department      string          `json:"department,omitempty"`
	CompanyID       uuid.UUID       `json:"company_id"`
	CompanyName     string          `json:"company_name,omitempty"`
	Company         *CompanyInfo    `json:"company,omitempty"`
	IsFeatured      bool            `json:"is_featured,omitempty"`
	IsPremium       bool            `json:"is_premium,omitempty"`
	Status          string          `json:"status,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Views           int             `json:"views,omitempty"`
	Applications    int             `json:"applications,omitempty"`
}

// CompanyInfo is the company data nested in a JobRecord.
type CompanyInfo struct {
	Industries  []string `json:"industries,omitempty"`
	CompanySize string   `json:"company_size,omitempty"`
	IsFeatured  bool     `json:"is_featured,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
}

// IsActive reports whether the posting is open at the given instant.
// An empty status counts as active.
func (j *JobRecord) IsActive(now time.Time) bool {
	if j.Status != "" && j.Status != JobStatusActive {
		return false
	}
	if j.ExpiresAt != nil && !j.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Industries returns the company industries, or nil when no company info is attached.
func (j *JobRecord) Industries() []string {
	if j.Company == nil {
		return nil
	}
	return j.Company.Industries
}

// CompanySize returns the company size band, or "" when unknown.
func (j *JobRecord) CompanySize() string {
	if j.Company == nil {
		return ""
	}
	return j.Company.CompanySize
}

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// JobType is the employment arrangement of a posting. The zero value is unknown.
type JobType int

// JobType values, in matrix order
const (
	JobTypeUnknown JobType = iota
	JobTypeFullTime
	JobTypePartTime
	JobTypeContract
	JobTypeInternship
	JobTypeFreelance
)

var jobTypeNames = []string{"", "full-time", "part-time", "contract", "internship", "freelance"}

// ParseJobType maps loose spellings ("Full Time", "full_time") to a JobType.
func ParseJobType(s string) JobType {
	key := enumKey(s)
	for i := 1; i < len(jobTypeNames); i++ {
		if enumKey(jobTypeNames[i]) == key {
			return JobType(i)
		}
	}
	return JobTypeUnknown
}

// Index returns the zero-based matrix index, or false when unknown.
func (t JobType) Index() (int, bool) {
	if t <= JobTypeUnknown || int(t) >= len(jobTypeNames) {
		return 0, false
	}
	return int(t) - 1, true
}

func (t JobType) String() string {
	if t < 0 || int(t) >= len(jobTypeNames) {
		return ""
	}
	return jobTypeNames[t]
}

// MarshalJSON encodes the job type as its canonical name.
func (t JobType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// UnmarshalJSON accepts any spelling ParseJobType understands; unrecognized values decode as unknown.
func (t *JobType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseJobType(s)
	return nil
}

// ExperienceLevel is the seniority of a posting, ordered from entry to executive.
type ExperienceLevel int

// ExperienceLevel values, in ordinal order
const (
	ExperienceUnknown ExperienceLevel = iota
	ExperienceEntry
	ExperienceJunior
	ExperienceMid
	ExperienceSenior
	ExperienceLead
	ExperienceExecutive
)

var experienceNames = []string{"", "entry", "junior", "mid", "senior", "lead", "executive"}

// ParseExperienceLevel maps a level name to an ExperienceLevel.
func ParseExperienceLevel(s string) ExperienceLevel {
	key := enumKey(s)
	switch key {
	case "midlevel", "intermediate":
		return ExperienceMid
	case "entrylevel":
		return ExperienceEntry
	}
	for i := 1; i < len(experienceNames); i++ {
		if experienceNames[i] == key {
			return ExperienceLevel(i)
		}
	}
	return ExperienceUnknown
}

// Index returns the zero-based matrix index, or false when unknown.
func (l ExperienceLevel) Index() (int, bool) {
	if l <= ExperienceUnknown || int(l) >= len(experienceNames) {
		return 0, false
	}
	return int(l) - 1, true
}

func (l ExperienceLevel) String() string {
	if l < 0 || int(l) >= len(experienceNames) {
		return ""
	}
	return experienceNames[l]
}

// MarshalJSON encodes the level as its canonical name.
func (l ExperienceLevel) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

// UnmarshalJSON decodes a level name; unrecognized values decode as unknown.
func (l *ExperienceLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseExperienceLevel(s)
	return nil
}

// WorkMode is where the work happens.
type WorkMode int

// WorkMode values, in matrix order
const (
	WorkModeUnknown WorkMode = iota
	WorkModeOnSite
	WorkModeRemote
	WorkModeHybrid
)

var workModeNames = []string{"", "on-site", "remote", "hybrid"}

// ParseWorkMode maps a work mode name to a WorkMode.
func ParseWorkMode(s string) WorkMode {
	key := enumKey(s)
	if key == "office" || key == "inoffice" {
		return WorkModeOnSite
	}
	for i := 1; i < len(workModeNames); i++ {
		if enumKey(workModeNames[i]) == key {
			return WorkMode(i)
		}
	}
	return WorkModeUnknown
}

// Index returns the zero-based matrix index, or false when unknown.
func (m WorkMode) Index() (int, bool) {
	if m <= WorkModeUnknown || int(m) >= len(workModeNames) {
		return 0, false
	}
	return int(m) - 1, true
}

func (m WorkMode) String() string {
	if m < 0 || int(m) >= len(workModeNames) {
		return ""
	}
	return workModeNames[m]
}

// MarshalJSON encodes the work mode as its canonical name.
func (m WorkMode) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// UnmarshalJSON decodes a work mode name; unrecognized values decode as unknown.
func (m *WorkMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = ParseWorkMode(s)
	return nil
}

// enumKey lowercases and drops separators so "Full Time", "full_time" and "full-time" compare equal.
func enumKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
