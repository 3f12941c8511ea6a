package ranking

import (
	"strings"
	"time"

	"github.com/jonathan/job-similarity/internal/similarity"
	"github.com/jonathan/job-similarity/internal/types"
)

// Contributions to the featuredBoost factor, capped at 1.0 in total
const (
	featuredContribution        = 0.5
	premiumContribution         = 0.3
	companyFeaturedContribution = 0.2
	highRatingContribution      = 0.2
	popularityContribution      = 0.2

	// HighRatingThreshold is the company rating at which the rating contribution applies.
	HighRatingThreshold = 4.0
)

// FactorFunc computes one factor for a candidate against the reference.
// ok is false when the inputs are absent on both sides and the factor should be left out.
type FactorFunc func(ref, cand *types.JobRecord, now time.Time) (value float64, ok bool)

// defaultEstimators binds each factor to its similarity estimator.
func defaultEstimators(skillWeights map[string]float64) map[Factor]FactorFunc {
	return map[Factor]FactorFunc{
		FactorTitle: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if blank(ref.Title) && blank(cand.Title) {
				return 0, false
			}
			return similarity.Text(ref.Title, cand.Title), true
		},
		FactorSkills: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if len(ref.Skills) == 0 && len(cand.Skills) == 0 {
				return 0, false
			}
			return similarity.WeightedArray(ref.Skills, cand.Skills, skillWeights), true
		},
		FactorLocation: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if blank(ref.Location) && blank(cand.Location) {
				return 0, false
			}
			return similarity.Location(ref.Location, cand.Location), true
		},
		FactorSalary: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			r, c := salaryRange(ref), salaryRange(cand)
			if !r.Known() && !c.Known() {
				return 0, false
			}
			return similarity.Salary(r, c), true
		},
		FactorExperience: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if ref.ExperienceLevel == types.ExperienceUnknown && cand.ExperienceLevel == types.ExperienceUnknown {
				return 0, false
			}
			return similarity.Experience(ref.ExperienceLevel, cand.ExperienceLevel), true
		},
		FactorIndustry: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			ri, ci := ref.Industries(), cand.Industries()
			if len(ri) == 0 && len(ci) == 0 {
				return 0, false
			}
			return similarity.BestText(ri, ci), true
		},
		FactorJobType: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if ref.JobType == types.JobTypeUnknown && cand.JobType == types.JobTypeUnknown {
				return 0, false
			}
			return similarity.JobType(ref.JobType, cand.JobType), true
		},
		FactorDepartment: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if blank(ref.Department) && blank(cand.Department) {
				return 0, false
			}
			return similarity.Text(ref.Department, cand.Department), true
		},
		FactorWorkMode: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if ref.RemoteWork == types.WorkModeUnknown && cand.RemoteWork == types.WorkModeUnknown {
				return 0, false
			}
			return similarity.WorkMode(ref.RemoteWork, cand.RemoteWork), true
		},
		FactorCompanySize: func(ref, cand *types.JobRecord, _ time.Time) (float64, bool) {
			if blank(ref.CompanySize()) && blank(cand.CompanySize()) {
				return 0, false
			}
			return similarity.CompanySize(ref.CompanySize(), cand.CompanySize()), true
		},
		FactorFeaturedBoost: func(_, cand *types.JobRecord, _ time.Time) (float64, bool) {
			return FeaturedBoost(cand), true
		},
		FactorRecency: func(_, cand *types.JobRecord, now time.Time) (float64, bool) {
			if cand.CreatedAt.IsZero() {
				return 0, false
			}
			return similarity.Recency(cand.CreatedAt, now), true
		},
	}
}

// FeaturedBoost sums the candidate's promotion signals into one capped term.
func FeaturedBoost(cand *types.JobRecord) float64 {
	boost := 0.0
	if cand.IsFeatured {
		boost += featuredContribution
	}
	if cand.IsPremium {
		boost += premiumContribution
	}
	if cand.Company != nil {
		if cand.Company.IsFeatured {
			boost += companyFeaturedContribution
		}
		if cand.Company.Rating >= HighRatingThreshold {
			boost += highRatingContribution
		}
	}
	boost += popularityContribution * similarity.Popularity(cand.Views, cand.Applications)
	return similarity.Clamp01(boost)
}

func salaryRange(j *types.JobRecord) similarity.SalaryRange {
	return similarity.SalaryRange{Min: j.SalaryMin, Max: j.SalaryMax}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
