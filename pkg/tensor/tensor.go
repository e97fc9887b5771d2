// Package tensor provides the small batched-array containers shared by the
// SSL helper packages: a batch of token matrices, integer index sets, and
// image batches. Containers are plain row-major slices with shape-checked
// constructors; per-batch slices are exposed as gonum matrices so callers
// can reuse gonum's linear algebra directly.
package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dense is a batch of token matrices with shape (batch, seqLen, dim), laid
// out row-major over (batch, position, feature). The zero value is not
// usable; construct with NewDense or NewDenseFrom.
type Dense struct {
	data []float64
	b    int
	l    int
	d    int
}

// NewDense returns a zero-filled Dense with the given shape. The sequence
// length may be zero (an empty token batch); batch and feature dimensions
// must be positive.
func NewDense(b, l, d int) (*Dense, error) {
	if b <= 0 || l < 0 || d <= 0 {
		return nil, fmt.Errorf("tensor: dense shape (%d,%d,%d): %w", b, l, d, ErrInvalidParameter)
	}
	return &Dense{data: make([]float64, b*l*d), b: b, l: l, d: d}, nil
}

// NewDenseFrom returns a Dense with the given shape holding a copy of data.
// The input slice is copied, never aliased.
func NewDenseFrom(b, l, d int, data []float64) (*Dense, error) {
	t, err := NewDense(b, l, d)
	if err != nil {
		return nil, err
	}
	if len(data) != b*l*d {
		return nil, fmt.Errorf("tensor: dense (%d,%d,%d) needs %d values, got %d: %w",
			b, l, d, b*l*d, len(data), ErrShapeMismatch)
	}
	copy(t.data, data)
	return t, nil
}

// Dims returns the (batch, seqLen, dim) shape.
func (t *Dense) Dims() (b, l, d int) { return t.b, t.l, t.d }

// At returns the value at (batch b, position i, feature j). Panics when the
// coordinates are out of range; accessor misuse is a programmer error, like
// gonum's mat.Dense.
func (t *Dense) At(b, i, j int) float64 {
	t.check(b, i, j)
	return t.data[(b*t.l+i)*t.d+j]
}

// Set writes v at (batch b, position i, feature j). Panics on out-of-range
// coordinates.
func (t *Dense) Set(b, i, j int, v float64) {
	t.check(b, i, j)
	t.data[(b*t.l+i)*t.d+j] = v
}

func (t *Dense) check(b, i, j int) {
	if b < 0 || b >= t.b || i < 0 || i >= t.l || j < 0 || j >= t.d {
		panic(fmt.Sprintf("tensor: access (%d,%d,%d) outside (%d,%d,%d)", b, i, j, t.b, t.l, t.d))
	}
}

// Row returns the feature vector at (batch b, position i) as a slice view
// into the backing array. Mutations through the view are visible in t.
func (t *Dense) Row(b, i int) []float64 {
	t.check(b, i, 0)
	off := (b*t.l + i) * t.d
	return t.data[off : off+t.d]
}

// Matrix returns the (seqLen, dim) matrix of batch element b as a gonum
// Dense sharing t's backing array. The view is read-write. The sequence
// length must be nonzero: gonum rejects zero-row matrices.
func (t *Dense) Matrix(b int) *mat.Dense {
	if b < 0 || b >= t.b {
		panic(fmt.Sprintf("tensor: batch %d outside %d", b, t.b))
	}
	off := b * t.l * t.d
	return mat.NewDense(t.l, t.d, t.data[off:off+t.l*t.d])
}

// Clone returns a deep copy of t.
func (t *Dense) Clone() *Dense {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Dense{data: data, b: t.b, l: t.l, d: t.d}
}

// EqualApprox reports whether t and o have the same shape and all values
// within tol of each other.
func (t *Dense) EqualApprox(o *Dense, tol float64) bool {
	if t.b != o.b || t.l != o.l || t.d != o.d {
		return false
	}
	for i := range t.data {
		if math.Abs(t.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// RawData returns the backing slice. Shared with t; callers that need an
// independent copy should Clone first.
func (t *Dense) RawData() []float64 { return t.data }

// Ints is a batch of integer index rows with shape (batch, length), used
// for per-batch-element position selections.
type Ints struct {
	data []int
	r    int
	c    int
}

// NewInts returns a zero-filled Ints with the given shape. The row length
// may be zero (an empty index set).
func NewInts(r, c int) (*Ints, error) {
	if r <= 0 || c < 0 {
		return nil, fmt.Errorf("tensor: index shape (%d,%d): %w", r, c, ErrInvalidParameter)
	}
	return &Ints{data: make([]int, r*c), r: r, c: c}, nil
}

// NewIntsFrom returns an Ints with the given shape holding a copy of data.
func NewIntsFrom(r, c int, data []int) (*Ints, error) {
	m, err := NewInts(r, c)
	if err != nil {
		return nil, err
	}
	if len(data) != r*c {
		return nil, fmt.Errorf("tensor: index (%d,%d) needs %d values, got %d: %w",
			r, c, r*c, len(data), ErrShapeMismatch)
	}
	copy(m.data, data)
	return m, nil
}

// Dims returns the (rows, length) shape.
func (m *Ints) Dims() (r, c int) { return m.r, m.c }

// At returns the index value at (row r, slot k). Panics on out-of-range
// coordinates.
func (m *Ints) At(r, k int) int {
	if r < 0 || r >= m.r || k < 0 || k >= m.c {
		panic(fmt.Sprintf("tensor: access (%d,%d) outside (%d,%d)", r, k, m.r, m.c))
	}
	return m.data[r*m.c+k]
}

// Set writes v at (row r, slot k). Panics on out-of-range coordinates.
func (m *Ints) Set(r, k, v int) {
	if r < 0 || r >= m.r || k < 0 || k >= m.c {
		panic(fmt.Sprintf("tensor: access (%d,%d) outside (%d,%d)", r, k, m.r, m.c))
	}
	m.data[r*m.c+k] = v
}

// Row returns row r as a slice view into the backing array.
func (m *Ints) Row(r int) []int {
	if r < 0 || r >= m.r {
		panic(fmt.Sprintf("tensor: row %d outside %d", r, m.r))
	}
	return m.data[r*m.c : (r+1)*m.c]
}

// Int3 is an integer array with shape (batch, length, dim), produced by
// expanding a 2-D index set along a feature dimension.
type Int3 struct {
	data []int
	b    int
	l    int
	d    int
}

// NewInt3 returns a zero-filled Int3 with the given shape.
func NewInt3(b, l, d int) (*Int3, error) {
	if b <= 0 || l < 0 || d <= 0 {
		return nil, fmt.Errorf("tensor: int3 shape (%d,%d,%d): %w", b, l, d, ErrInvalidParameter)
	}
	return &Int3{data: make([]int, b*l*d), b: b, l: l, d: d}, nil
}

// Dims returns the (batch, length, dim) shape.
func (m *Int3) Dims() (b, l, d int) { return m.b, m.l, m.d }

// At returns the value at (batch b, slot i, feature j). Panics on
// out-of-range coordinates.
func (m *Int3) At(b, i, j int) int {
	if b < 0 || b >= m.b || i < 0 || i >= m.l || j < 0 || j >= m.d {
		panic(fmt.Sprintf("tensor: access (%d,%d,%d) outside (%d,%d,%d)", b, i, j, m.b, m.l, m.d))
	}
	return m.data[(b*m.l+i)*m.d+j]
}

// Set writes v at (batch b, slot i, feature j). Panics on out-of-range
// coordinates.
func (m *Int3) Set(b, i, j, v int) {
	if b < 0 || b >= m.b || i < 0 || i >= m.l || j < 0 || j >= m.d {
		panic(fmt.Sprintf("tensor: access (%d,%d,%d) outside (%d,%d,%d)", b, i, j, m.b, m.l, m.d))
	}
	m.data[(b*m.l+i)*m.d+j] = v
}
