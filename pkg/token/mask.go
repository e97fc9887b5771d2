package token

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// classTokenSentinel sorts strictly below every uniform draw in [0,1), so a
// protected position 0 is always kept.
const classTokenSentinel = -1.0

// RandomTokenMask draws a random partition of the sequence positions of a
// (batch, seqLen) token grid into a keep set and a mask set.
//
// numKeep = floor(seqLen * (1 - maskRatio)) positions are kept per row. When
// maskClassToken is false, position 0 (the class token) is never masked:
// its draw is forced below the uniform range and numKeep is clamped to at
// least 1, for every maskRatio including 1.0. When maskClassToken is true
// no clamp applies, so maskRatio 1.0 yields an empty keep set.
//
// The returned index sets have shapes (batch, numKeep) and
// (batch, seqLen-numKeep); together they cover every position of each row
// exactly once. The random source is explicit so a fixed seed reproduces
// the partition.
func RandomTokenMask(rng *rand.Rand, batch, seqLen int, maskRatio float64, maskClassToken bool) (keep, mask *tensor.Ints, err error) {
	if rng == nil {
		return nil, nil, fmt.Errorf("token: nil random source: %w", tensor.ErrInvalidParameter)
	}
	if batch <= 0 || seqLen < 0 {
		return nil, nil, fmt.Errorf("token: mask size (%d,%d): %w", batch, seqLen, tensor.ErrInvalidParameter)
	}
	if maskRatio < 0 || maskRatio > 1 {
		return nil, nil, fmt.Errorf("token: mask ratio %v outside [0,1]: %w", maskRatio, tensor.ErrInvalidParameter)
	}

	numKeep := int(math.Floor(float64(seqLen) * (1 - maskRatio)))

	noise := make([]float64, batch*seqLen)
	for i := range noise {
		noise[i] = rng.Float64()
	}
	if !maskClassToken && seqLen > 0 {
		for b := 0; b < batch; b++ {
			noise[b*seqLen] = classTokenSentinel
		}
		if numKeep < 1 {
			numKeep = 1
		}
	}

	keep, err = tensor.NewInts(batch, numKeep)
	if err != nil {
		return nil, nil, err
	}
	mask, err = tensor.NewInts(batch, seqLen-numKeep)
	if err != nil {
		return nil, nil, err
	}

	perm := make([]int, seqLen)
	for b := 0; b < batch; b++ {
		row := noise[b*seqLen : (b+1)*seqLen]
		for i := range perm {
			perm[i] = i
		}
		// Stable sort keeps first-occurrence order on (probability zero)
		// ties, so the partition is deterministic for a given seed.
		sort.SliceStable(perm, func(i, j int) bool { return row[perm[i]] < row[perm[j]] })
		copy(keep.Row(b), perm[:numKeep])
		copy(mask.Row(b), perm[numKeep:])
	}
	return keep, mask, nil
}
