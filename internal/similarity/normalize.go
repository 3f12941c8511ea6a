// Package similarity provides the feature estimators used to compare two job postings.
// Every estimator is a pure function returning a value in [0,1] and degrades to a
// neutral or zero score on missing data instead of failing.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// minWordLen is the shortest word counted by the Jaccard part of Text.
const minWordLen = 3

// skillAliases maps punctuation-stripped skill variants to a canonical token.
var skillAliases = map[string]string{
	"golang":     "go",
	"go lang":    "go",
	"js":         "javascript",
	"ts":         "typescript",
	"k8s":        "kubernetes",
	"reactjs":    "react",
	"vuejs":      "vue",
	"nodejs":     "node",
	"postgres":   "postgresql",
	"psql":       "postgresql",
	"amazon aws": "aws",
}

// NormalizeText case-folds s, removes everything that is not a letter, digit or
// whitespace, and collapses runs of whitespace to a single space.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so one per call.
	folded := cases.Fold().String(s)
	stripped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, folded)
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeItem normalizes a single set member such as a skill name.
func NormalizeItem(s string) string {
	n := NormalizeText(s)
	if canonical, ok := skillAliases[n]; ok {
		return canonical
	}
	return n
}

// words returns the set of words in normalized text longer than minWordLen-1 runes.
func words(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) >= minWordLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// tokens returns every whitespace-separated token of normalized text.
func tokens(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return ratio(float64(inter), float64(union))
}
