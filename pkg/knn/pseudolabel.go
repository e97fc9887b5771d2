package knn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// GenerationMask builds the pseudo-label assignment mask for top-k
// nearest-neighbor methods. The result has shape (batch, topk*batch) with
// row b carrying ones exactly in columns [b*topk, (b+1)*topk):
//
//	GenerationMask(2, 3) =
//	  1 1 0 0 0 0
//	  0 0 1 1 0 0
//	  0 0 0 0 1 1
//
// i.e. the topk retrieved neighbors of sample b all count as positives for
// sample b.
func GenerationMask(topk, batch int) (*mat.Dense, error) {
	if topk <= 0 || batch <= 0 {
		return nil, fmt.Errorf("knn: generation mask (topk=%d, batch=%d): %w",
			topk, batch, tensor.ErrInvalidParameter)
	}
	mask := mat.NewDense(batch, topk*batch, nil)
	for b := 0; b < batch; b++ {
		for t := 0; t < topk; t++ {
			mask.Set(b, b*topk+t, 1)
		}
	}
	return mask, nil
}
