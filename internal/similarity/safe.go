package similarity

import "math"

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp01 coerces v into [0,1]. Non-finite values become 0.
func Clamp01(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Guard is Clamp01 that also reports whether v needed coercion.
func Guard(v float64) (float64, bool) {
	c := Clamp01(v)
	return c, c != v
}

// ratio divides num by den, returning 0 instead of a non-finite result.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Finite(num / den)
}
