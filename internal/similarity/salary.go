package similarity

import "math"

// Salary scores for missing data
const (
	SalaryBothUnknown = 0.5
	SalaryOneUnknown  = 0.3
)

// Blend of the salary signals
const (
	salaryOverlapWeight  = 0.5
	salaryRangeWeight    = 0.3
	salaryMidpointWeight = 0.2
)

// SalaryRange is a (min, max) pair; either bound may be absent.
type SalaryRange struct {
	Min *float64
	Max *float64
}

// Known reports whether at least one bound is set.
func (r SalaryRange) Known() bool {
	return r.Min != nil || r.Max != nil
}

// Salary scores how compatible a candidate salary range is with the reference range.
//
// Both ranges unknown score 0.5 and exactly one unknown scores 0.3. Disjoint ranges
// score 0. Overlapping ranges blend the overlap fraction of the reference range (0.5),
// the ratio of the narrower to the wider range (0.3) and midpoint proximity (0.2).
//
// An absent minimum is 0. An absent maximum is closed at the other range's maximum when
// that is known, otherwise at the larger of the two minimums.
func Salary(ref, cand SalaryRange) float64 {
	refKnown, candKnown := ref.Known(), cand.Known()
	switch {
	case !refKnown && !candKnown:
		return SalaryBothUnknown
	case !refKnown || !candKnown:
		return SalaryOneUnknown
	}

	rMin, rMax := closeRange(ref, cand)
	cMin, cMax := closeRange(cand, ref)

	overlapMin := math.Max(rMin, cMin)
	overlapMax := math.Min(rMax, cMax)
	if overlapMax < overlapMin {
		return 0
	}

	rWidth, cWidth := rMax-rMin, cMax-cMin

	overlap := 1.0
	if rWidth > 0 {
		overlap = Clamp01((overlapMax - overlapMin) / rWidth)
	}

	rangeSim := 1.0
	if wider := math.Max(rWidth, cWidth); wider > 0 {
		rangeSim = Clamp01(math.Min(rWidth, cWidth) / wider)
	}

	rMid, cMid := (rMin+rMax)/2, (cMin+cMax)/2
	midpoint := 1.0
	if larger := math.Max(rMid, cMid); larger > 0 {
		midpoint = Clamp01(1 - math.Abs(rMid-cMid)/larger)
	}

	return Clamp01(salaryOverlapWeight*overlap + salaryRangeWeight*rangeSim + salaryMidpointWeight*midpoint)
}

// closeRange resolves r into finite bounds, using other to close an open maximum.
func closeRange(r, other SalaryRange) (lo, hi float64) {
	lo = bound(r.Min)
	switch {
	case r.Max != nil:
		hi = bound(r.Max)
	case other.Max != nil:
		hi = math.Max(bound(other.Max), lo)
	default:
		hi = math.Max(lo, bound(other.Min))
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

// bound returns a non-negative finite value for an optional salary bound.
func bound(v *float64) float64 {
	if v == nil {
		return 0
	}
	f := Finite(*v)
	if f < 0 {
		return 0
	}
	return f
}
