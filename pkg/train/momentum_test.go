package train

import (
	"errors"
	"math"
	"testing"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

func TestUpdateMomentum(t *testing.T) {
	model := []*Param{
		{Name: "w", Shape: []int{2}, Data: []float64{1, 2}},
		{Name: "b", Shape: []int{1}, Data: []float64{10}},
	}
	ema := []*Param{
		{Name: "w", Shape: []int{2}, Data: []float64{3, 4}},
		{Name: "b", Shape: []int{1}, Data: []float64{20}},
	}
	if err := UpdateMomentum(model, ema, 0.9); err != nil {
		t.Fatalf("UpdateMomentum: %v", err)
	}
	// ema = 0.9*ema + 0.1*model
	want := []float64{0.9*3 + 0.1*1, 0.9*4 + 0.1*2}
	for i, w := range want {
		if math.Abs(ema[0].Data[i]-w) > 1e-12 {
			t.Fatalf("ema w[%d] = %v, want %v", i, ema[0].Data[i], w)
		}
	}
	if math.Abs(ema[1].Data[0]-(0.9*20+0.1*10)) > 1e-12 {
		t.Fatalf("ema b = %v", ema[1].Data[0])
	}
	// Model parameters untouched.
	if model[0].Data[0] != 1 || model[1].Data[0] != 10 {
		t.Fatal("UpdateMomentum mutated source model")
	}
}

func TestUpdateMomentumExtremes(t *testing.T) {
	model := []*Param{{Name: "w", Shape: []int{1}, Data: []float64{5}}}
	ema := []*Param{{Name: "w", Shape: []int{1}, Data: []float64{1}}}

	if err := UpdateMomentum(model, ema, 1); err != nil {
		t.Fatalf("m=1: %v", err)
	}
	if ema[0].Data[0] != 1 {
		t.Fatalf("m=1 must freeze the replica, got %v", ema[0].Data[0])
	}
	if err := UpdateMomentum(model, ema, 0); err != nil {
		t.Fatalf("m=0: %v", err)
	}
	if ema[0].Data[0] != 5 {
		t.Fatalf("m=0 must copy the model, got %v", ema[0].Data[0])
	}
}

func TestUpdateMomentumErrors(t *testing.T) {
	model := []*Param{{Name: "w", Shape: []int{1}, Data: []float64{1}}}
	ema := []*Param{{Name: "w", Shape: []int{2}, Data: []float64{1, 2}}}
	if err := UpdateMomentum(model, ema, 0.9); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("size mismatch: expected ErrShapeMismatch, got %v", err)
	}
	if err := UpdateMomentum(model, model, 1.5); !errors.Is(err, tensor.ErrInvalidParameter) {
		t.Fatalf("m=1.5: expected ErrInvalidParameter, got %v", err)
	}
	if err := UpdateMomentum(model, nil, 0.9); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("length mismatch: expected ErrShapeMismatch, got %v", err)
	}
}

func TestNormalizeWeight(t *testing.T) {
	p := &Param{Name: "fc.weight", Shape: []int{2, 2}, Data: []float64{3, 4, 0, 0}}
	if err := NormalizeWeight(p); err != nil {
		t.Fatalf("NormalizeWeight: %v", err)
	}
	if math.Abs(p.Data[0]-0.6) > 1e-12 || math.Abs(p.Data[1]-0.8) > 1e-12 {
		t.Fatalf("row 0 = %v, want (0.6,0.8)", p.Data[:2])
	}
	// Zero row untouched.
	if p.Data[2] != 0 || p.Data[3] != 0 {
		t.Fatal("zero row must stay zero")
	}
}

func TestNormalizeWeightRankCheck(t *testing.T) {
	p := &Param{Name: "bn.weight", Shape: []int{4}, Data: make([]float64, 4)}
	if err := NormalizeWeight(p); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}
