package similarity

import (
	"maps"
	"slices"
)

// Array returns the Jaccard similarity of two string sets after normalization.
// Two empty sets score 1.0; exactly one empty set scores 0.0.
func Array(a, b []string) float64 {
	return WeightedArray(a, b, nil)
}

// WeightedArray is Array where each item contributes its importance weight instead of 1.
// The score is Σweight(intersection) / Σweight(union). Items missing from weights count as 1;
// negative or non-finite weights count as 0. A nil map gives plain Jaccard.
func WeightedArray(a, b []string, weights map[string]float64) float64 {
	sa, sb := itemSet(a), itemSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	var normWeights map[string]float64
	if len(weights) > 0 {
		normWeights = make(map[string]float64, len(weights))
		for k, w := range weights {
			normWeights[NormalizeItem(k)] = w
		}
	}
	weightOf := func(item string) float64 {
		if normWeights == nil {
			return 1
		}
		w, ok := normWeights[item]
		if !ok {
			return 1
		}
		if w < 0 {
			return 0
		}
		return Finite(w)
	}

	// Sorted iteration keeps floating-point sums identical across runs.
	var inter, union float64
	for _, item := range slices.Sorted(maps.Keys(sa)) {
		w := weightOf(item)
		union += w
		if _, ok := sb[item]; ok {
			inter += w
		}
	}
	for _, item := range slices.Sorted(maps.Keys(sb)) {
		if _, ok := sa[item]; !ok {
			union += weightOf(item)
		}
	}
	return Clamp01(ratio(inter, union))
}

func itemSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if n := NormalizeItem(item); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
