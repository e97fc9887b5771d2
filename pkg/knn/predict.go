package knn

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// Predict ranks class labels for each query feature by the InstDisc-style
// weighted kNN vote, the standard monitor for self-supervised backbones.
//
// features is the (B,D) query matrix and bank the (N,D) matrix of training
// features, both expected L2-normalized so the matrix product is cosine
// similarity. bankLabels holds one label in [0,classes) per bank row. For
// each query the k most similar bank entries vote for their label with
// weight exp(similarity/temperature).
//
// The result has shape (B, classes): row b lists all class labels ordered
// by descending vote score, so column 0 is the top-1 prediction.
func Predict(features, bank *mat.Dense, bankLabels []int, classes, k int, temperature float64) (*tensor.Ints, error) {
	qr, qc := features.Dims()
	br, bc := bank.Dims()
	if qc != bc {
		return nil, fmt.Errorf("knn: query dim %d != bank dim %d: %w", qc, bc, tensor.ErrShapeMismatch)
	}
	if len(bankLabels) != br {
		return nil, fmt.Errorf("knn: %d bank labels for %d bank rows: %w",
			len(bankLabels), br, tensor.ErrShapeMismatch)
	}
	if classes <= 0 {
		return nil, fmt.Errorf("knn: classes %d: %w", classes, tensor.ErrInvalidParameter)
	}
	if k <= 0 || k > br {
		return nil, fmt.Errorf("knn: k %d outside [1,%d]: %w", k, br, tensor.ErrInvalidParameter)
	}
	if temperature <= 0 {
		return nil, fmt.Errorf("knn: temperature %v: %w", temperature, tensor.ErrInvalidParameter)
	}
	for i, lbl := range bankLabels {
		if lbl < 0 || lbl >= classes {
			return nil, fmt.Errorf("knn: bank label %d at %d outside [0,%d): %w",
				lbl, i, classes, tensor.ErrIndexOutOfRange)
		}
	}

	// Cosine similarity against the whole bank in one product: (B,N).
	var sim mat.Dense
	sim.Mul(features, bank.T())

	pred, err := tensor.NewInts(qr, classes)
	if err != nil {
		return nil, err
	}

	order := make([]int, br)
	scores := make([]float64, classes)
	rank := make([]int, classes)
	for q := 0; q < qr; q++ {
		row := sim.RawRowView(q)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool { return row[order[x]] > row[order[y]] })

		for c := range scores {
			scores[c] = 0
		}
		for _, idx := range order[:k] {
			scores[bankLabels[idx]] += math.Exp(row[idx] / temperature)
		}

		for c := range rank {
			rank[c] = c
		}
		sort.SliceStable(rank, func(x, y int) bool { return scores[rank[x]] > scores[rank[y]] })
		copy(pred.Row(q), rank)
	}
	return pred, nil
}
