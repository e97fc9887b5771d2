package eval

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pc-cp/minissl-go/internal/dataset"
	"github.com/pc-cp/minissl-go/internal/report"
)

// captureWriter collects records in memory.
type captureWriter struct {
	preds     []report.Prediction
	summaries []report.Summary
}

func (w *captureWriter) WritePrediction(p report.Prediction) error {
	w.preds = append(w.preds, p)
	return nil
}

func (w *captureWriter) WriteSummary(s report.Summary) error {
	w.summaries = append(w.summaries, s)
	return nil
}

func (w *captureWriter) Close() error { return nil }

// fakeEncoder maps each raw sample (x, y) to the normalized feature (x, y)
// without touching ONNX.
type fakeEncoder struct{}

func (fakeEncoder) Features(batch []float32, shape []int64) (*mat.Dense, error) {
	n, d := int(shape[0]), int(shape[1])
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, float64(batch[i*d+j]))
		}
	}
	return out, nil
}

func testBank() *dataset.Set {
	return &dataset.Set{
		Features: mat.NewDense(4, 2, []float64{
			1, 0,
			1, 0,
			0, 1,
			0, 1,
		}),
		Labels: []int{0, 0, 1, 1},
	}
}

func TestRunPrecomputedFeatures(t *testing.T) {
	queries := &dataset.Set{
		Features: mat.NewDense(3, 2, []float64{
			0.9, 0.1,
			0.1, 0.9,
			0.8, 0.2,
		}),
		Labels: []int{0, 1, 1}, // last label is wrong on purpose
	}

	eng, err := New(testBank(), nil, Config{K: 2, Temperature: 0.1, TopK: 1, BatchSize: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := &captureWriter{}
	sum, err := eng.Run(queries, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(out.preds) != 3 {
		t.Fatalf("got %d predictions, want 3", len(out.preds))
	}
	if out.preds[0].Predicted != 0 || !out.preds[0].Correct {
		t.Fatalf("query 0: %+v", out.preds[0])
	}
	if out.preds[1].Predicted != 1 || !out.preds[1].Correct {
		t.Fatalf("query 1: %+v", out.preds[1])
	}
	if out.preds[2].Predicted != 0 || out.preds[2].Correct {
		t.Fatalf("query 2 should be a miss: %+v", out.preds[2])
	}

	if sum.Total != 3 || sum.Correct != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Accuracy < 0.66 || sum.Accuracy > 0.67 {
		t.Fatalf("accuracy = %v, want 2/3", sum.Accuracy)
	}
	if sum.Classes != 2 {
		t.Fatalf("inferred classes = %d, want 2", sum.Classes)
	}
	if len(out.summaries) != 1 {
		t.Fatalf("summary written %d times", len(out.summaries))
	}
}

func TestRunEncodesRawInputs(t *testing.T) {
	queries := &dataset.Set{
		Inputs:   []float32{0.9, 0.1, 0.1, 0.9},
		InputDim: []int64{2, 2},
		Labels:   []int{0, 1},
	}

	eng, err := New(testBank(), fakeEncoder{}, Config{K: 1, Temperature: 0.1, BatchSize: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := &captureWriter{}
	sum, err := eng.Run(queries, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Correct != 2 {
		t.Fatalf("summary = %+v, want both correct", sum)
	}
}

func TestRunRawInputsWithoutEncoder(t *testing.T) {
	queries := &dataset.Set{
		Inputs:   []float32{1, 0},
		InputDim: []int64{1, 2},
		Labels:   []int{0},
	}
	eng, err := New(testBank(), nil, Config{K: 1, Temperature: 0.1, BatchSize: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := eng.Run(queries, &captureWriter{}); err == nil {
		t.Fatal("expected error when raw inputs arrive without an encoder")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(&dataset.Set{Labels: []int{0}}, nil, Config{BatchSize: 1}); err == nil {
		t.Fatal("expected error for bank without features")
	}
	if _, err := New(testBank(), nil, Config{BatchSize: 0}); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}
