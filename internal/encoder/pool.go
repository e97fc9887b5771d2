package encoder

import "math"

// meanPool averages per-token hidden states over the sequence dimension.
//
// hidden: flat [n * seqLen * dim] float32.
// Returns flat [n * dim] float32 (one pooled vector per sample).
func meanPool(hidden []float32, n, seqLen, dim int64) []float32 {
	out := make([]float32, n*dim)
	if seqLen == 0 {
		return out
	}
	inv := 1.0 / float32(seqLen)
	for b := int64(0); b < n; b++ {
		off := b * seqLen * dim
		outOff := b * dim
		for s := int64(0); s < seqLen; s++ {
			tokOff := off + s*dim
			for d := int64(0); d < dim; d++ {
				out[outOff+d] += hidden[tokOff+d]
			}
		}
		for d := int64(0); d < dim; d++ {
			out[outOff+d] *= inv
		}
	}
	return out
}

// l2Normalize scales vec to unit length in place. Zero vectors are left
// untouched.
func l2Normalize(vec []float64) {
	var s float64
	for _, v := range vec {
		s += v * v
	}
	if s == 0 {
		return
	}
	inv := 1 / math.Sqrt(s)
	for i := range vec {
		vec[i] *= inv
	}
}
