package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Senior Backend Engineer", "senior backend engineer"},
		{"  Senior   Backend\tEngineer!! ", "senior backend engineer"},
		{"C++ / Go (Golang)", "c go golang"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeItem_Aliases(t *testing.T) {
	assert.Equal(t, "go", NormalizeItem("Golang"))
	assert.Equal(t, "node", NormalizeItem("Node.js"))
	assert.Equal(t, "kubernetes", NormalizeItem("K8s"))
	assert.Equal(t, "python", NormalizeItem(" Python "))
}

func TestText(t *testing.T) {
	t.Run("identical text scores one", func(t *testing.T) {
		assert.Equal(t, 1.0, Text("Senior Backend Engineer", "senior backend engineer!"))
	})

	t.Run("empty side scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Text("Senior Backend Engineer", ""))
		assert.Equal(t, 0.0, Text("", "Senior Backend Engineer"))
		assert.Equal(t, 0.0, Text("", ""))
		assert.Equal(t, 0.0, Text("...", "!!!"))
	})

	t.Run("partial overlap blends jaccard and edit distance", func(t *testing.T) {
		// jaccard 2/3, edit distance 7 over 23 runes
		want := 0.7*(2.0/3.0) + 0.3*(1-7.0/23.0)
		assert.InDelta(t, want, Text("Senior Backend Engineer", "Backend Engineer"), 1e-9)
	})

	t.Run("short words ignored by jaccard", func(t *testing.T) {
		s := Text("QA Lead", "QA Dev")
		assert.Greater(t, s, 0.0)
		assert.Less(t, s, 0.3)
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "Frontend Developer", "Senior Front-end Engineer"
		assert.InDelta(t, Text(a, b), Text(b, a), 1e-12)
	})
}

func TestLevenshteinSimilarity(t *testing.T) {
	assert.InDelta(t, 1-3.0/7.0, LevenshteinSimilarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, 1.0, LevenshteinSimilarity("same", "same"))
	assert.Equal(t, 0.0, LevenshteinSimilarity("", ""))
	assert.Equal(t, 0.0, LevenshteinSimilarity("abc", "xyz"))
}

func TestBestText(t *testing.T) {
	assert.Equal(t, 1.0, BestText([]string{"Finance", "Software"}, []string{"software"}))
	assert.Equal(t, 0.0, BestText(nil, []string{"software"}))
	// No shared words; only the edit-distance term contributes: 0.3 * (1 - 9/10).
	assert.InDelta(t, 0.03, BestText([]string{"Healthcare"}, []string{"Zoology"}), 1e-9)
}

func TestEstimators_StayInUnitRange(t *testing.T) {
	inputs := []string{
		"", " ", "a", "Senior Backend Engineer", "###", "北京, 中国",
		"x, y, z, w", "Remote", "a b c d e f g h", "\u0000​",
	}
	for _, a := range inputs {
		for _, b := range inputs {
			for name, v := range map[string]float64{
				"text":     Text(a, b),
				"location": Location(a, b),
				"array":    Array([]string{a}, []string{b}),
				"size":     CompanySize(a, b),
			} {
				assert.False(t, math.IsNaN(v), "%s(%q,%q) is NaN", name, a, b)
				assert.GreaterOrEqual(t, v, 0.0, "%s(%q,%q)", name, a, b)
				assert.LessOrEqual(t, v, 1.0, "%s(%q,%q)", name, a, b)
			}
		}
	}
}
