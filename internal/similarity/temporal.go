package similarity

import (
	"math"
	"time"
)

const (
	recencyTimeConstant = 30 * 24 * time.Hour

	// applicationWeight makes an application count as much as this many views.
	applicationWeight = 3
	// popularitySaturation is the engagement level that scores 1.0.
	popularitySaturation = 1000
)

// Recency decays exponentially with the posting's age. Postings created after now
// score 1.0 and a zero timestamp scores 0.
func Recency(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	age := now.Sub(createdAt)
	if age <= 0 {
		return 1
	}
	return Clamp01(math.Exp(-float64(age) / float64(recencyTimeConstant)))
}

// Popularity maps view and application counts onto [0,1] on a log scale.
func Popularity(views, applications int) float64 {
	engagement := float64(max(views, 0)) + applicationWeight*float64(max(applications, 0))
	return Clamp01(math.Log1p(engagement) / math.Log1p(popularitySaturation))
}
