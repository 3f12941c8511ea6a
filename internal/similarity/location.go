package similarity

import "strings"

// Location proximity scores
const (
	LocationExact       = 1.0
	LocationSameCity    = 0.95
	LocationSameState   = 0.75
	LocationSameCountry = 0.4
	locationTokenScore  = 0.1
	locationTokenCap    = 0.3
)

// Location scores geographic proximity of two "city, state, country" strings.
// Any depth is accepted. Matching is hierarchical: exact, then city, state and country,
// then 0.1 per shared token across all parts capped at 0.3.
func Location(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return LocationExact
	}

	pa, pb := locationParts(a), locationParts(b)
	if len(pa) > 0 && len(pb) > 0 && pa[0] != "" && pa[0] == pb[0] {
		return LocationSameCity
	}
	if len(pa) >= 2 && len(pb) >= 2 {
		if pa[1] != "" && pa[1] == pb[1] {
			return LocationSameState
		}
		if last := pa[len(pa)-1]; last != "" && last == pb[len(pb)-1] {
			return LocationSameCountry
		}
	}

	ta, tb := tokens(strings.Join(pa, " ")), tokens(strings.Join(pb, " "))
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return Clamp01(min(float64(shared)*locationTokenScore, locationTokenCap))
}

func locationParts(s string) []string {
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if n := NormalizeText(p); n != "" {
			parts = append(parts, n)
		}
	}
	return parts
}
