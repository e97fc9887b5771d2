package token

import (
	"errors"
	"math/rand"
	"testing"

	"pgregory.net/rapid"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// tokens builds a (b,l,d) batch with distinct values per slot.
func tokens(t *testing.T, b, l, d int) *tensor.Dense {
	t.Helper()
	data := make([]float64, b*l*d)
	for i := range data {
		data[i] = float64(i)
	}
	tk, err := tensor.NewDenseFrom(b, l, d, data)
	if err != nil {
		t.Fatalf("NewDenseFrom: %v", err)
	}
	return tk
}

func index(t *testing.T, r, c int, vals ...int) *tensor.Ints {
	t.Helper()
	idx, err := tensor.NewIntsFrom(r, c, vals)
	if err != nil {
		t.Fatalf("NewIntsFrom: %v", err)
	}
	return idx
}

func TestExpandIndexLike(t *testing.T) {
	tk := tokens(t, 2, 4, 3)
	idx := index(t, 2, 2, 1, 3, 0, 2)

	out, err := ExpandIndexLike(idx, tk)
	if err != nil {
		t.Fatalf("ExpandIndexLike: %v", err)
	}
	b, l, d := out.Dims()
	if b != 2 || l != 2 || d != 3 {
		t.Fatalf("dims = (%d,%d,%d), want (2,2,3)", b, l, d)
	}
	for j := 0; j < 3; j++ {
		if out.At(0, 1, j) != 3 {
			t.Fatalf("expanded slot (0,1,%d) = %d, want 3", j, out.At(0, 1, j))
		}
		if out.At(1, 0, j) != 0 {
			t.Fatalf("expanded slot (1,0,%d) = %d, want 0", j, out.At(1, 0, j))
		}
	}
}

func TestExpandIndexLikeBatchMismatch(t *testing.T) {
	tk := tokens(t, 2, 4, 3)
	idx := index(t, 1, 2, 0, 1)
	if _, err := ExpandIndexLike(idx, tk); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestGetAtIndex(t *testing.T) {
	tk := tokens(t, 2, 3, 2)
	idx := index(t, 2, 2, 2, 0, 1, 1)

	got, err := GetAtIndex(tk, idx)
	if err != nil {
		t.Fatalf("GetAtIndex: %v", err)
	}
	b, l, d := got.Dims()
	if b != 2 || l != 2 || d != 2 {
		t.Fatalf("dims = (%d,%d,%d), want (2,2,2)", b, l, d)
	}
	// Batch 0, entry 0 selects position 2: values 4,5.
	if got.At(0, 0, 0) != 4 || got.At(0, 0, 1) != 5 {
		t.Fatalf("gathered row = (%v,%v), want (4,5)", got.At(0, 0, 0), got.At(0, 0, 1))
	}
	// Batch 1, entry 1 selects position 1: values 8,9.
	if got.At(1, 1, 0) != 8 || got.At(1, 1, 1) != 9 {
		t.Fatalf("gathered row = (%v,%v), want (8,9)", got.At(1, 1, 0), got.At(1, 1, 1))
	}
}

func TestGetAtIndexOutOfRange(t *testing.T) {
	tk := tokens(t, 1, 3, 2)
	for _, bad := range []int{-1, 3, 7} {
		idx := index(t, 1, 1, bad)
		if _, err := GetAtIndex(tk, idx); !errors.Is(err, tensor.ErrIndexOutOfRange) {
			t.Fatalf("index %d: expected ErrIndexOutOfRange, got %v", bad, err)
		}
	}
}

func TestSetAtIndexDoesNotMutateInput(t *testing.T) {
	tk := tokens(t, 1, 3, 2)
	idx := index(t, 1, 1, 1)
	val, _ := tensor.NewDenseFrom(1, 1, 2, []float64{-1, -2})

	out, err := SetAtIndex(tk, idx, val)
	if err != nil {
		t.Fatalf("SetAtIndex: %v", err)
	}
	if out.At(0, 1, 0) != -1 || out.At(0, 1, 1) != -2 {
		t.Fatal("value not written at index")
	}
	if tk.At(0, 1, 0) != 2 {
		t.Fatal("SetAtIndex mutated its input")
	}
	// Untouched positions preserved.
	if out.At(0, 0, 0) != 0 || out.At(0, 2, 1) != 5 {
		t.Fatal("positions outside the index changed")
	}
}

func TestSetAtIndexShapeCheck(t *testing.T) {
	tk := tokens(t, 1, 3, 2)
	idx := index(t, 1, 2, 0, 1)
	val, _ := tensor.NewDense(1, 1, 2) // wrong index length
	if _, err := SetAtIndex(tk, idx, val); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := rapid.IntRange(1, 4).Draw(rt, "b")
		l := rapid.IntRange(1, 8).Draw(rt, "l")
		d := rapid.IntRange(1, 5).Draw(rt, "d")
		k := rapid.IntRange(1, l).Draw(rt, "k")

		data := make([]float64, b*l*d)
		for i := range data {
			data[i] = rapid.Float64Range(-10, 10).Draw(rt, "v")
		}
		tk, err := tensor.NewDenseFrom(b, l, d, data)
		if err != nil {
			rt.Fatalf("NewDenseFrom: %v", err)
		}

		idx, _ := tensor.NewInts(b, k)
		for bi := 0; bi < b; bi++ {
			for ki := 0; ki < k; ki++ {
				idx.Set(bi, ki, rapid.IntRange(0, l-1).Draw(rt, "pos"))
			}
		}

		got, err := GetAtIndex(tk, idx)
		if err != nil {
			rt.Fatalf("GetAtIndex: %v", err)
		}
		back, err := SetAtIndex(tk, idx, got)
		if err != nil {
			rt.Fatalf("SetAtIndex: %v", err)
		}
		if !back.EqualApprox(tk, 0) {
			rt.Fatal("set(get) round trip changed the batch")
		}
	})
}

func TestMaskAtIndex(t *testing.T) {
	tk := tokens(t, 2, 4, 2)
	idx := index(t, 2, 2, 0, 2, 1, 3)
	maskToken := []float64{100, 200}

	out, err := MaskAtIndex(tk, idx, maskToken)
	if err != nil {
		t.Fatalf("MaskAtIndex: %v", err)
	}
	masked := map[[2]int]bool{{0, 0}: true, {0, 2}: true, {1, 1}: true, {1, 3}: true}
	for b := 0; b < 2; b++ {
		for i := 0; i < 4; i++ {
			for j := 0; j < 2; j++ {
				got := out.At(b, i, j)
				if masked[[2]int{b, i}] {
					if got != maskToken[j] {
						t.Fatalf("masked position (%d,%d,%d) = %v, want %v", b, i, j, got, maskToken[j])
					}
				} else if got != tk.At(b, i, j) {
					t.Fatalf("unmasked position (%d,%d,%d) changed: %v", b, i, j, got)
				}
			}
		}
	}
	if tk.At(0, 0, 0) != 0 {
		t.Fatal("MaskAtIndex mutated its input")
	}
}

func TestMaskAtIndexDimCheck(t *testing.T) {
	tk := tokens(t, 1, 2, 3)
	idx := index(t, 1, 1, 0)
	if _, err := MaskAtIndex(tk, idx, []float64{1, 2}); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestMaskAtIndexWithRandomMask(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	tk := tokens(t, 3, 6, 4)
	_, maskIdx, err := RandomTokenMask(rng, 3, 6, 0.5, false)
	if err != nil {
		t.Fatalf("RandomTokenMask: %v", err)
	}
	maskToken := []float64{-1, -1, -1, -1}
	out, err := MaskAtIndex(tk, maskIdx, maskToken)
	if err != nil {
		t.Fatalf("MaskAtIndex: %v", err)
	}
	for b := 0; b < 3; b++ {
		for _, pos := range maskIdx.Row(b) {
			for j := 0; j < 4; j++ {
				if out.At(b, pos, j) != -1 {
					t.Fatalf("masked position (%d,%d) not replaced", b, pos)
				}
			}
		}
	}
}
