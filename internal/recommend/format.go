package recommend

import (
	"math"
	"strings"

	"github.com/jonathan/job-similarity/internal/ranking"
	"github.com/jonathan/job-similarity/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DescriptionPreviewLength is the number of runes kept from a description.
const DescriptionPreviewLength = 150

// SalaryNotSpecified is shown when a posting has no salary information.
const SalaryNotSpecified = "Not specified"

// Format shapes selected candidates into the response contract.
// Per-factor scores are included only when debug is set.
func Format(selected []ranking.ScoredCandidate, debug bool) []types.SimilarJob {
	jobs := make([]types.SimilarJob, 0, len(selected))
	for i := range selected {
		c := &selected[i]
		job := types.SimilarJob{
			ID:              c.Job.ID,
			Title:           c.Job.Title,
			CompanyID:       c.Job.CompanyID,
			CompanyName:     c.Job.CompanyName,
			Location:        c.Job.Location,
			Salary:          FormatSalary(&c.Job),
			JobType:         c.Job.JobType.String(),
			ExperienceLevel: c.Job.ExperienceLevel.String(),
			Skills:          c.Job.Skills,
			Description:     TruncateDescription(c.Job.Description, DescriptionPreviewLength),
			SimilarityScore: FormatScore(c.Score),
		}
		if debug {
			job.Factors = make(map[string]float64, len(c.Factors))
			for f, v := range c.Factors {
				job.Factors[string(f)] = v
			}
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// FormatScore renders a [0,1] score as a whole percentage, e.g. "87%".
func FormatScore(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = 0
	}
	pct := int(math.Round(math.Max(0, math.Min(1, score)) * 100))
	return message.NewPrinter(language.English).Sprintf("%d%%", pct)
}

// FormatSalary prefers the posting's own salary text and otherwise derives one from the range.
func FormatSalary(job *types.JobRecord) string {
	if text := strings.TrimSpace(job.SalaryText); text != "" {
		return text
	}

	lo, hasLo := salaryBound(job.SalaryMin)
	hi, hasHi := salaryBound(job.SalaryMax)
	if hasLo && hasHi && hi < lo {
		lo, hi = hi, lo
	}

	p := message.NewPrinter(language.English)
	switch {
	case hasLo && hasHi && lo == hi:
		return p.Sprintf("$%d", lo)
	case hasLo && hasHi:
		return p.Sprintf("$%d - $%d", lo, hi)
	case hasLo:
		return p.Sprintf("From $%d", lo)
	case hasHi:
		return p.Sprintf("Up to $%d", hi)
	}
	return SalaryNotSpecified
}

// salaryBound treats bounds that are negative, non-finite or too large for int64 as absent.
func salaryBound(v *float64) (int64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 || *v >= math.MaxInt64 {
		return 0, false
	}
	return int64(math.Round(*v)), true
}

// TruncateDescription collapses whitespace and cuts s to limit runes, appending "..." when cut.
func TruncateDescription(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}
