// Package train groups the training-side SSL helpers: momentum-encoder EMA
// updates, cosine learning-rate schedules, truncated-normal initialization,
// weight-decay parameter partitioning, and batch shuffling for momentum
// branches.
package train

import (
	"fmt"
	"math"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// Param is one named model parameter: a flat value buffer plus its logical
// shape. The shape drives weight-decay classification and row
// normalization; the EMA update only needs matching lengths.
type Param struct {
	Name  string
	Shape []int
	Data  []float64
}

// Len returns the number of elements implied by the shape.
func (p *Param) Len() int {
	n := 1
	for _, s := range p.Shape {
		n *= s
	}
	return n
}

// UpdateMomentum updates the EMA replica of a model in place:
//
//	ema = m*ema + (1-m)*model
//
// for every parameter pair, the momentum-encoder update used by MoCo and
// BYOL. The two slices must pair up by position with identical shapes; m
// must be in [0,1]. Only the ema parameters are written.
func UpdateMomentum(model, ema []*Param, m float64) error {
	if m < 0 || m > 1 {
		return fmt.Errorf("train: momentum %v outside [0,1]: %w", m, tensor.ErrInvalidParameter)
	}
	if len(model) != len(ema) {
		return fmt.Errorf("train: %d model params vs %d ema params: %w",
			len(model), len(ema), tensor.ErrShapeMismatch)
	}
	for i := range model {
		src, dst := model[i], ema[i]
		if len(src.Data) != len(dst.Data) {
			return fmt.Errorf("train: param %q size %d vs %d: %w",
				src.Name, len(src.Data), len(dst.Data), tensor.ErrShapeMismatch)
		}
		for j := range dst.Data {
			dst.Data[j] = dst.Data[j]*m + src.Data[j]*(1-m)
		}
	}
	return nil
}

// NormalizeWeight scales each row of a 2-D weight parameter to unit L2 norm
// in place. Zero rows are left untouched.
func NormalizeWeight(p *Param) error {
	if len(p.Shape) != 2 {
		return fmt.Errorf("train: normalize weight %q with rank %d, want 2: %w",
			p.Name, len(p.Shape), tensor.ErrShapeMismatch)
	}
	rows, cols := p.Shape[0], p.Shape[1]
	if rows*cols != len(p.Data) {
		return fmt.Errorf("train: weight %q shape %v does not match %d values: %w",
			p.Name, p.Shape, len(p.Data), tensor.ErrShapeMismatch)
	}
	for r := 0; r < rows; r++ {
		row := p.Data[r*cols : (r+1)*cols]
		var s float64
		for _, v := range row {
			s += v * v
		}
		if s == 0 {
			continue
		}
		inv := 1 / math.Sqrt(s)
		for j := range row {
			row[j] *= inv
		}
	}
	return nil
}
