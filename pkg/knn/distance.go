package knn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// L2Distances computes the pairwise Euclidean distance matrix between two
// batched feature maps. Inputs have shapes (B,I,D) and (B,C,D); the result
// has shape (B,I,C) with entry (b,i,j) = ||input[b,i] - candidate[b,j]||.
//
// Each batch element is computed as one Gram product
// ||x||² + ||y||² − 2·x·yᵀ so typical map sizes stay a handful of BLAS
// calls instead of per-element loops.
func L2Distances(inputMaps, candidateMaps *tensor.Dense) (*tensor.Dense, error) {
	ib, il, id := inputMaps.Dims()
	cb, cl, cd := candidateMaps.Dims()
	if cb != ib || cd != id {
		return nil, fmt.Errorf("knn: candidate maps (%d,%d,%d) incompatible with input maps (%d,%d,%d): %w",
			cb, cl, cd, ib, il, id, tensor.ErrShapeMismatch)
	}

	out, err := tensor.NewDense(ib, il, cl)
	if err != nil {
		return nil, err
	}
	// Either map may be empty; the distance matrix is then empty too, and
	// gonum views of zero-row matrices are unavailable.
	if il == 0 || cl == 0 {
		return out, nil
	}

	var gram mat.Dense
	for b := 0; b < ib; b++ {
		x := inputMaps.Matrix(b)
		y := candidateMaps.Matrix(b)
		gram.Mul(x, y.T())

		xs := rowSquaredNorms(x, il)
		ys := rowSquaredNorms(y, cl)
		for i := 0; i < il; i++ {
			row := out.Row(b, i)
			for j := 0; j < cl; j++ {
				// Clamp at zero: cancellation can leave tiny negatives.
				d := xs[i] + ys[j] - 2*gram.At(i, j)
				if d < 0 {
					d = 0
				}
				row[j] = math.Sqrt(d)
			}
		}
	}
	return out, nil
}

func rowSquaredNorms(m *mat.Dense, rows int) []float64 {
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.RawRowView(i)
		var s float64
		for _, x := range v {
			s += x * x
		}
		out[i] = s
	}
	return out
}
