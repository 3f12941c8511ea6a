// Package ranking combines feature estimator outputs into one aggregate similarity score per candidate.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Factor names one estimator input to the weighted sum.
type Factor string

// Scored factors
const (
	FactorTitle         Factor = "title"
	FactorSkills        Factor = "skills"
	FactorLocation      Factor = "location"
	FactorSalary        Factor = "salary"
	FactorExperience    Factor = "experience"
	FactorIndustry      Factor = "industry"
	FactorJobType       Factor = "jobType"
	FactorDepartment    Factor = "department"
	FactorWorkMode      Factor = "workMode"
	FactorCompanySize   Factor = "companySize"
	FactorFeaturedBoost Factor = "featuredBoost"
	FactorRecency       Factor = "recency"
)

// Factors lists every factor in evaluation order.
var Factors = []Factor{
	FactorTitle,
	FactorSkills,
	FactorLocation,
	FactorSalary,
	FactorExperience,
	FactorIndustry,
	FactorJobType,
	FactorDepartment,
	FactorWorkMode,
	FactorCompanySize,
	FactorFeaturedBoost,
	FactorRecency,
}

// weightSumTolerance absorbs rounding in hand-written config files.
const weightSumTolerance = 1e-6

var defaultWeights = map[Factor]float64{
	FactorTitle:         0.18,
	FactorSkills:        0.16,
	FactorLocation:      0.14,
	FactorSalary:        0.12,
	FactorExperience:    0.12,
	FactorIndustry:      0.08,
	FactorJobType:       0.06,
	FactorDepartment:    0.05,
	FactorWorkMode:      0.04,
	FactorCompanySize:   0.02,
	FactorFeaturedBoost: 0.02,
	FactorRecency:       0.01,
}

// WeightTable maps each factor to its weight. It is immutable once built and safe for
// concurrent reads. Weights sum to 1.0.
type WeightTable struct {
	weights map[Factor]float64
}

// DefaultWeights returns the built-in weight table.
func DefaultWeights() WeightTable {
	w := make(map[Factor]float64, len(defaultWeights))
	for f, v := range defaultWeights {
		w[f] = v
	}
	return WeightTable{weights: w}
}

// ParseFactor resolves a factor name case-insensitively, since config loaders lowercase map keys.
func ParseFactor(name string) (Factor, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Factors {
		if strings.EqualFold(string(f), name) {
			return f, true
		}
	}
	return "", false
}

// NewWeightTable builds a table from a name → weight map. Factors left out weigh 0.
// Unknown names, negative or non-finite weights and totals other than 1.0 are rejected.
func NewWeightTable(raw map[string]float64) (WeightTable, error) {
	if len(raw) == 0 {
		return WeightTable{}, fmt.Errorf("weight table is empty")
	}

	w := make(map[Factor]float64, len(Factors))
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	sum := 0.0
	for _, name := range names {
		v := raw[name]
		f, ok := ParseFactor(name)
		if !ok {
			return WeightTable{}, fmt.Errorf("unknown factor %q", name)
		}
		if _, dup := w[f]; dup {
			return WeightTable{}, fmt.Errorf("factor %q given more than once", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return WeightTable{}, fmt.Errorf("factor %q has invalid weight %v", f, v)
		}
		w[f] = v
		sum += v
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return WeightTable{}, fmt.Errorf("weights sum to %.6f, want 1.0", sum)
	}
	return WeightTable{weights: w}, nil
}

// Weight returns the weight of f, or 0 when f is not in the table.
func (t WeightTable) Weight(f Factor) float64 {
	return t.weights[f]
}

// Map returns a copy of the table keyed by factor name.
func (t WeightTable) Map() map[string]float64 {
	out := make(map[string]float64, len(t.weights))
	for f, v := range t.weights {
		out[string(f)] = v
	}
	return out
}

// Sum returns the total weight.
func (t WeightTable) Sum() float64 {
	sum := 0.0
	for _, f := range Factors {
		sum += t.weights[f]
	}
	return sum
}
