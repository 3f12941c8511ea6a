package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Blend of the two text signals
const (
	textJaccardWeight     = 0.7
	textLevenshteinWeight = 0.3
)

// Text compares two free-text fields such as titles or departments.
// Identical normalized text scores 1.0 and an empty side scores 0.0. Otherwise the
// result is 0.7 × word-set Jaccard (words of 3+ runes) plus 0.3 × edit-distance similarity.
func Text(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	j := jaccard(words(na), words(nb))
	l := LevenshteinSimilarity(na, nb)
	return Clamp01(textJaccardWeight*j + textLevenshteinWeight*l)
}

// LevenshteinSimilarity returns 1 − distance/maxLength over runes.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return Clamp01(1 - float64(dist)/float64(maxLen))
}

// BestText returns the highest Text score over all pairs drawn from a and b.
// Used for industry lists, where any shared industry counts.
func BestText(a, b []string) float64 {
	best := 0.0
	for _, x := range a {
		for _, y := range b {
			if s := Text(x, y); s > best {
				best = s
			}
		}
	}
	return best
}
