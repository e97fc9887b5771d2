package train

import (
	"fmt"
	"math/rand"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// BatchShuffle returns a copy of batch with its batch axis randomly
// permuted, together with the permutation that was applied:
// shuffled[i] == batch[perm[i]]. Momentum branches shuffle before the
// forward pass to break batch-norm statistics leakage; BatchUnshuffle
// restores the original order afterwards.
func BatchShuffle(rng *rand.Rand, batch *tensor.Dense) (*tensor.Dense, []int, error) {
	if rng == nil {
		return nil, nil, fmt.Errorf("train: nil random source: %w", tensor.ErrInvalidParameter)
	}
	b, l, d := batch.Dims()
	perm := rng.Perm(b)
	out, err := tensor.NewDense(b, l, d)
	if err != nil {
		return nil, nil, err
	}
	for i, src := range perm {
		for pos := 0; pos < l; pos++ {
			copy(out.Row(i, pos), batch.Row(src, pos))
		}
	}
	return out, perm, nil
}

// BatchUnshuffle inverts a BatchShuffle: given the shuffled batch and the
// permutation returned by BatchShuffle, it returns a copy in the original
// batch order.
func BatchUnshuffle(batch *tensor.Dense, perm []int) (*tensor.Dense, error) {
	b, l, d := batch.Dims()
	if len(perm) != b {
		return nil, fmt.Errorf("train: permutation length %d != batch %d: %w",
			len(perm), b, tensor.ErrShapeMismatch)
	}
	seen := make([]bool, b)
	for _, p := range perm {
		if p < 0 || p >= b || seen[p] {
			return nil, fmt.Errorf("train: invalid permutation %v: %w", perm, tensor.ErrInvalidParameter)
		}
		seen[p] = true
	}
	out, err := tensor.NewDense(b, l, d)
	if err != nil {
		return nil, err
	}
	for i, dst := range perm {
		for pos := 0; pos < l; pos++ {
			copy(out.Row(dst, pos), batch.Row(i, pos))
		}
	}
	return out, nil
}
