package token

import (
	"fmt"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// RepeatToken tiles a single token vector into a (batch, seqLen, dim) batch,
// one copy per batch element and sequence position.
func RepeatToken(tok []float64, batch, seqLen int) (*tensor.Dense, error) {
	if len(tok) == 0 {
		return nil, fmt.Errorf("token: empty token vector: %w", tensor.ErrInvalidParameter)
	}
	out, err := tensor.NewDense(batch, seqLen, len(tok))
	if err != nil {
		return nil, err
	}
	for b := 0; b < batch; b++ {
		for i := 0; i < seqLen; i++ {
			copy(out.Row(b, i), tok)
		}
	}
	return out, nil
}

// PrependClassToken returns a new (batch, seqLen+1, dim) batch with
// classToken inserted at position 0 of every sequence.
func PrependClassToken(tokens *tensor.Dense, classToken []float64) (*tensor.Dense, error) {
	b, l, d := tokens.Dims()
	if len(classToken) != d {
		return nil, fmt.Errorf("token: class token dim %d != feature dim %d: %w",
			len(classToken), d, tensor.ErrShapeMismatch)
	}
	out, err := tensor.NewDense(b, l+1, d)
	if err != nil {
		return nil, err
	}
	for bi := 0; bi < b; bi++ {
		copy(out.Row(bi, 0), classToken)
		for i := 0; i < l; i++ {
			copy(out.Row(bi, i+1), tokens.Row(bi, i))
		}
	}
	return out, nil
}
