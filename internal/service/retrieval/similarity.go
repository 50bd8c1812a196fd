package retrieval

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, clamped
// to [-1, 1]. Vectors of different length or zero magnitude score 0.
// A vector compared with itself scores exactly 1.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}

	denom := na
	if na != nb {
		denom = math.Sqrt(na) * math.Sqrt(nb)
	}

	return max(-1, min(1, dot/denom))
}

// Normalize scales v to unit length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	mag := math.Sqrt(sum)
	for i := range v {
		v[i] /= mag
	}
	return v
}
