package similarity

import (
	"strings"

	"github.com/jonathan/job-similarity/internal/types"
)

// Defaults for missing categorical values
const (
	ExperienceOneUnknown  = 0.3
	ExperienceBothUnknown = 0.5
	JobTypeMissing        = 0.2
	WorkModeMissing       = 0.3
	CompanySizeMissing    = 0.3
)

// ExperienceMatrix is indexed [reference][candidate] over entry, junior, mid, senior, lead, executive.
var ExperienceMatrix = [6][6]float64{
	{1.00, 0.70, 0.40, 0.10, 0.05, 0.02},
	{0.70, 1.00, 0.70, 0.40, 0.10, 0.05},
	{0.40, 0.70, 1.00, 0.70, 0.40, 0.10},
	{0.10, 0.40, 0.70, 1.00, 0.70, 0.40},
	{0.05, 0.10, 0.40, 0.70, 1.00, 0.70},
	{0.02, 0.05, 0.10, 0.40, 0.70, 1.00},
}

// JobTypeMatrix is indexed [reference][candidate] over full-time, part-time, contract,
// internship, freelance. It is not symmetric: an internship reference tolerates part-time
// candidates better than a full-time reference tolerates internships.
var JobTypeMatrix = [5][5]float64{
	{1.0, 0.3, 0.5, 0.1, 0.3},
	{0.3, 1.0, 0.4, 0.3, 0.6},
	{0.5, 0.4, 1.0, 0.2, 0.8},
	{0.2, 0.4, 0.2, 1.0, 0.1},
	{0.3, 0.6, 0.8, 0.1, 1.0},
}

// WorkModeMatrix is indexed [reference][candidate] over on-site, remote, hybrid.
var WorkModeMatrix = [3][3]float64{
	{1.0, 0.2, 0.6},
	{0.2, 1.0, 0.8},
	{0.6, 0.8, 1.0},
}

// CompanySizeBands lists the recognised size bands, smallest first.
var CompanySizeBands = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

// Experience looks up ExperienceMatrix.
func Experience(ref, cand types.ExperienceLevel) float64 {
	ri, rok := ref.Index()
	ci, cok := cand.Index()
	switch {
	case !rok && !cok:
		return ExperienceBothUnknown
	case !rok || !cok:
		return ExperienceOneUnknown
	}
	return ExperienceMatrix[ri][ci]
}

// JobType looks up JobTypeMatrix. A missing value on either side scores JobTypeMissing.
func JobType(ref, cand types.JobType) float64 {
	ri, rok := ref.Index()
	ci, cok := cand.Index()
	if !rok || !cok {
		return JobTypeMissing
	}
	return JobTypeMatrix[ri][ci]
}

// WorkMode looks up WorkModeMatrix. A missing value on either side scores WorkModeMissing.
func WorkMode(ref, cand types.WorkMode) float64 {
	ri, rok := ref.Index()
	ci, cok := cand.Index()
	if !rok || !cok {
		return WorkModeMissing
	}
	return WorkModeMatrix[ri][ci]
}

// CompanySize decays linearly with the distance between size bands.
func CompanySize(ref, cand string) float64 {
	ri, rok := CompanySizeIndex(ref)
	ci, cok := CompanySizeIndex(cand)
	if !rok || !cok {
		return CompanySizeMissing
	}
	dist := ri - ci
	if dist < 0 {
		dist = -dist
	}
	return Clamp01(1 - float64(dist)/float64(len(CompanySizeBands)-1))
}

// CompanySizeIndex resolves a size band such as "51-200" or "5000+".
func CompanySizeIndex(size string) (int, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(size), " ", "")
	if s == "" {
		return 0, false
	}
	for i, band := range CompanySizeBands {
		if s == band {
			return i, true
		}
	}
	// Anything open-ended ("1001+", "5000+", "10000+") is the largest band.
	if strings.HasSuffix(s, "+") {
		return len(CompanySizeBands) - 1, true
	}
	return 0, false
}
