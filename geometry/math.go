package geometry

// Abs returns the absolute value of a float.
func Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the minimum of two floats.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two floats.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Overlap1D returns the overlap of the intervals [aMin,aMax] and
// [bMin,bMax], or a non-positive value when they are disjoint.
func Overlap1D(aMin, aMax, bMin, bMax float64) float64 {
	return Min(aMax, bMax) - Max(aMin, bMin)
}
