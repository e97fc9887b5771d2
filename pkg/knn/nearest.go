// Package knn implements nearest-neighbor selection helpers for
// self-supervised training and evaluation: matching feature maps against a
// candidate set under a precomputed distance matrix, pairwise distance
// computation, the weighted kNN classification monitor, and the top-k
// pseudo-label assignment mask.
package knn

import (
	"fmt"
	"sort"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// MatchAll selects every input vector; it is the sentinel accepted by
// NearestNeighbors for numMatches.
const MatchAll = -1

// NearestNeighbors matches each of the inputMaps vectors to its nearest
// candidate under the precomputed distances, then keeps the numMatches
// pairs with the smallest nearest-neighbor distance.
//
// Shapes: inputMaps (B,I,D), candidateMaps (B,C,D), distances (B,I,C) with
// distances[b,i,j] the distance between input i and candidate j. numMatches
// of MatchAll, or any value exceeding I, selects all I inputs; zero and
// values below MatchAll are invalid.
//
// Both returned arrays have shape (B, numMatches, D): the selected input
// vectors in ascending order of nearest-neighbor distance, and their
// matched candidate vectors in the same relative order. Every returned pair
// is an (input, nearest-candidate) pair copied from the original data. Ties,
// both among candidates and among inputs, resolve to the first occurrence.
func NearestNeighbors(inputMaps, candidateMaps, distances *tensor.Dense, numMatches int) (*tensor.Dense, *tensor.Dense, error) {
	ib, il, id := inputMaps.Dims()
	cb, cl, cd := candidateMaps.Dims()
	db, dl, dc := distances.Dims()
	if cb != ib || cd != id {
		return nil, nil, fmt.Errorf("knn: candidate maps (%d,%d,%d) incompatible with input maps (%d,%d,%d): %w",
			cb, cl, cd, ib, il, id, tensor.ErrShapeMismatch)
	}
	if db != ib || dl != il || dc != cl {
		return nil, nil, fmt.Errorf("knn: distances (%d,%d,%d) incompatible with maps (%d,%d)x(%d,%d): %w",
			db, dl, dc, ib, il, cb, cl, tensor.ErrShapeMismatch)
	}
	if cl == 0 {
		return nil, nil, fmt.Errorf("knn: empty candidate map: %w", tensor.ErrInvalidParameter)
	}
	if numMatches == 0 || numMatches < MatchAll {
		return nil, nil, fmt.Errorf("knn: num matches %d: %w", numMatches, tensor.ErrInvalidParameter)
	}
	if numMatches == MatchAll || numMatches > il {
		numMatches = il
	}

	selInput, err := tensor.NewDense(ib, numMatches, id)
	if err != nil {
		return nil, nil, err
	}
	selCandidate, err := tensor.NewDense(ib, numMatches, id)
	if err != nil {
		return nil, nil, err
	}

	nearest := make([]int, il)
	minDist := make([]float64, il)
	order := make([]int, il)
	for b := 0; b < ib; b++ {
		// Nearest candidate per input, first occurrence on ties.
		for i := 0; i < il; i++ {
			best, bestDist := 0, distances.At(b, i, 0)
			for j := 1; j < cl; j++ {
				if d := distances.At(b, i, j); d < bestDist {
					best, bestDist = j, d
				}
			}
			nearest[i] = best
			minDist[i] = bestDist
		}

		// Rank inputs by nearest-neighbor distance, first occurrence on
		// ties, and keep the numMatches best pairs.
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool { return minDist[order[x]] < minDist[order[y]] })
		for m := 0; m < numMatches; m++ {
			i := order[m]
			copy(selInput.Row(b, m), inputMaps.Row(b, i))
			copy(selCandidate.Row(b, m), candidateMaps.Row(b, nearest[i]))
		}
	}
	return selInput, selCandidate, nil
}
