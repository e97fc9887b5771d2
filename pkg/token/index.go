// Package token implements the masked-token indexing helpers used by
// masked-image-modeling architectures: gathering and scattering feature
// vectors at per-sequence positions, replacing selected positions with a
// learned mask token, and generating the random keep/mask index partition.
//
// All operations treat their inputs as immutable: results are freshly
// allocated and never alias caller-owned arrays.
package token

import (
	"fmt"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// ExpandIndexLike expands a (batch, length) index set along the feature
// dimension of tokens, producing a (batch, length, dim) array where each of
// the dim slots holds a copy of the original index value. This is the
// addressing form consumed by gather/scatter.
func ExpandIndexLike(index *tensor.Ints, tokens *tensor.Dense) (*tensor.Int3, error) {
	ib, il := index.Dims()
	tb, _, td := tokens.Dims()
	if ib != tb {
		return nil, fmt.Errorf("token: index batch %d != tokens batch %d: %w",
			ib, tb, tensor.ErrShapeMismatch)
	}
	out, err := tensor.NewInt3(ib, il, td)
	if err != nil {
		return nil, err
	}
	for b := 0; b < ib; b++ {
		for k := 0; k < il; k++ {
			v := index.At(b, k)
			for j := 0; j < td; j++ {
				out.Set(b, k, j, v)
			}
		}
	}
	return out, nil
}

// GetAtIndex selects, for each batch element and each entry of index, the
// feature vector at that sequence position. The result has shape
// (batch, indexLength, dim).
func GetAtIndex(tokens *tensor.Dense, index *tensor.Ints) (*tensor.Dense, error) {
	tb, tl, td := tokens.Dims()
	ib, il := index.Dims()
	if ib != tb {
		return nil, fmt.Errorf("token: index batch %d != tokens batch %d: %w",
			ib, tb, tensor.ErrShapeMismatch)
	}
	out, err := tensor.NewDense(tb, il, td)
	if err != nil {
		return nil, err
	}
	for b := 0; b < tb; b++ {
		for k := 0; k < il; k++ {
			pos := index.At(b, k)
			if pos < 0 || pos >= tl {
				return nil, fmt.Errorf("token: index %d at (%d,%d) outside [0,%d): %w",
					pos, b, k, tl, tensor.ErrIndexOutOfRange)
			}
			copy(out.Row(b, k), tokens.Row(b, pos))
		}
	}
	return out, nil
}

// SetAtIndex returns a copy of tokens where position index[b,k] of batch
// element b is overwritten with value[b,k,:]. The value array must have
// shape (batch, indexLength, dim) matching index and tokens. The input
// tokens are left untouched.
func SetAtIndex(tokens *tensor.Dense, index *tensor.Ints, value *tensor.Dense) (*tensor.Dense, error) {
	tb, tl, td := tokens.Dims()
	ib, il := index.Dims()
	vb, vl, vd := value.Dims()
	if ib != tb {
		return nil, fmt.Errorf("token: index batch %d != tokens batch %d: %w",
			ib, tb, tensor.ErrShapeMismatch)
	}
	if vb != tb || vl != il || vd != td {
		return nil, fmt.Errorf("token: value shape (%d,%d,%d) != (%d,%d,%d): %w",
			vb, vl, vd, tb, il, td, tensor.ErrShapeMismatch)
	}
	out := tokens.Clone()
	for b := 0; b < tb; b++ {
		for k := 0; k < il; k++ {
			pos := index.At(b, k)
			if pos < 0 || pos >= tl {
				return nil, fmt.Errorf("token: index %d at (%d,%d) outside [0,%d): %w",
					pos, b, k, tl, tensor.ErrIndexOutOfRange)
			}
			copy(out.Row(b, pos), value.Row(b, k))
		}
	}
	return out, nil
}

// MaskAtIndex returns a copy of tokens where the positions named by index
// are replaced with maskToken (one feature vector, broadcast across batch
// and positions). The replacement is the multiplicative blend
//
//	(1-mask)*tokens + mask*maskToken
//
// with a binary 0/1 mask scattered at the given indices, so the operation
// stays differentiable when used inside a training step.
func MaskAtIndex(tokens *tensor.Dense, index *tensor.Ints, maskToken []float64) (*tensor.Dense, error) {
	tb, tl, td := tokens.Dims()
	if len(maskToken) != td {
		return nil, fmt.Errorf("token: mask token dim %d != feature dim %d: %w",
			len(maskToken), td, tensor.ErrShapeMismatch)
	}
	ib, il := index.Dims()
	if ib != tb {
		return nil, fmt.Errorf("token: index batch %d != tokens batch %d: %w",
			ib, tb, tensor.ErrShapeMismatch)
	}

	zeros, err := tensor.NewDense(tb, tl, td)
	if err != nil {
		return nil, err
	}
	ones, err := tensor.NewDense(tb, il, td)
	if err != nil {
		return nil, err
	}
	raw := ones.RawData()
	for i := range raw {
		raw[i] = 1
	}
	mask, err := SetAtIndex(zeros, index, ones)
	if err != nil {
		return nil, err
	}

	out := tokens.Clone()
	outRaw := out.RawData()
	maskRaw := mask.RawData()
	for i := range outRaw {
		m := maskRaw[i]
		outRaw[i] = (1-m)*outRaw[i] + m*maskToken[i%td]
	}
	return out, nil
}
