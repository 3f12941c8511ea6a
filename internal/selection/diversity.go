package selection

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/ranking"
)

// Result is the outcome of a diversity-constrained selection.
type Result struct {
	Selected []ranking.ScoredCandidate
	// CompanyCap is the per-company limit applied in the first pass.
	CompanyCap int
	// Backfilled counts candidates admitted over the cap to reach K.
	Backfilled int
}

// CompanyCap returns ceil(k/2).
func CompanyCap(k int) int {
	return (k + 1) / 2
}

// Diversify sorts candidates by score, highest first, and selects up to k of them with at
// most CompanyCap(k) per company. Ties keep input order. If the cap leaves slots empty,
// skipped candidates fill them in score order, so the result holds min(k, len(scored))
// entries. The input slice is not modified.
//
// Candidates without a company id each count as their own company.
func Diversify(scored []ranking.ScoredCandidate, k int) (*Result, error) {
	if k < 1 {
		return nil, &Error{Message: fmt.Sprintf("result count must be at least 1, got %d", k)}
	}

	sorted := make([]ranking.ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	limit := CompanyCap(k)
	admitted := make([]bool, len(sorted))
	perCompany := make(map[uuid.UUID]int)
	count := 0

	for i := range sorted {
		if count == k {
			break
		}
		key := companyKey(&sorted[i])
		if perCompany[key] < limit {
			perCompany[key]++
			admitted[i] = true
			count++
		}
	}

	backfilled := 0
	for i := range sorted {
		if count == k {
			break
		}
		if !admitted[i] {
			admitted[i] = true
			count++
			backfilled++
		}
	}

	selected := make([]ranking.ScoredCandidate, 0, count)
	for i := range sorted {
		if admitted[i] {
			selected = append(selected, sorted[i])
		}
	}

	return &Result{
		Selected:   selected,
		CompanyCap: limit,
		Backfilled: backfilled,
	}, nil
}

func companyKey(c *ranking.ScoredCandidate) uuid.UUID {
	if c.Job.CompanyID == uuid.Nil {
		return c.Job.ID
	}
	return c.Job.CompanyID
}
