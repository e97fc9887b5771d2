// Package eval orchestrates a kNN evaluation run: queries are encoded (when
// they arrive as raw inputs), classified against the feature bank in
// batches, and streamed to a report writer.
package eval

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/pc-cp/minissl-go/internal/dataset"
	"github.com/pc-cp/minissl-go/internal/report"
	"github.com/pc-cp/minissl-go/pkg/knn"
)

// Encoder turns a flat batch of raw F32 inputs into an (N, D) matrix of
// L2-normalized features.
type Encoder interface {
	Features(batch []float32, shape []int64) (*mat.Dense, error)
}

// Config holds the evaluation settings.
type Config struct {
	K           int
	Temperature float64
	Classes     int // 0 = infer from labels
	TopK        int // ranked labels per prediction record
	BatchSize   int
}

// Engine evaluates query sets against a fixed feature bank.
type Engine struct {
	bank *dataset.Set
	enc  Encoder // nil when all query sets carry precomputed features
	cfg  Config
}

// New creates an evaluation engine. The bank must carry precomputed
// features; enc may be nil if every query set does too.
func New(bank *dataset.Set, enc Encoder, cfg Config) (*Engine, error) {
	if bank.Features == nil {
		return nil, fmt.Errorf("eval: feature bank has no features")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("eval: batch size %d", cfg.BatchSize)
	}
	return &Engine{bank: bank, enc: enc, cfg: cfg}, nil
}

// Run classifies every query and writes one prediction record per sample
// plus the final summary. The summary is also returned.
func (e *Engine) Run(queries *dataset.Set, out report.Writer) (report.Summary, error) {
	classes := e.cfg.Classes
	if classes == 0 {
		classes = e.bank.NumClasses()
		if qc := queries.NumClasses(); qc > classes {
			classes = qc
		}
	}
	topK := e.cfg.TopK
	if topK <= 0 || topK > classes {
		topK = classes
	}

	if queries.Features == nil && e.enc == nil {
		return report.Summary{}, fmt.Errorf("eval: query set has raw inputs but no encoder is configured")
	}

	total := queries.Len()
	correct := 0
	for start := 0; start < total; start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > total {
			end = total
		}

		features, err := e.batchFeatures(queries, start, end)
		if err != nil {
			return report.Summary{}, err
		}

		pred, err := knn.Predict(features, e.bank.Features, e.bank.Labels,
			classes, e.cfg.K, e.cfg.Temperature)
		if err != nil {
			return report.Summary{}, fmt.Errorf("eval: %w", err)
		}

		for i := start; i < end; i++ {
			ranked := pred.Row(i - start)
			p := report.Prediction{
				Index:     i,
				Label:     queries.Labels[i],
				Predicted: ranked[0],
				TopK:      append([]int(nil), ranked[:topK]...),
				Correct:   ranked[0] == queries.Labels[i],
			}
			if p.Correct {
				correct++
			}
			if err := out.WritePrediction(p); err != nil {
				return report.Summary{}, err
			}
		}
		slog.Debug("evaluated batch", "from", start, "to", end)
	}

	summary := report.Summary{
		Total:       total,
		Correct:     correct,
		K:           e.cfg.K,
		Temperature: e.cfg.Temperature,
		Classes:     classes,
	}
	if total > 0 {
		summary.Accuracy = float64(correct) / float64(total)
	}
	if err := out.WriteSummary(summary); err != nil {
		return report.Summary{}, err
	}
	return summary, nil
}

// batchFeatures returns the (end-start, D) feature matrix for one query
// batch, slicing precomputed features or encoding raw inputs.
func (e *Engine) batchFeatures(queries *dataset.Set, start, end int) (*mat.Dense, error) {
	if queries.Features != nil {
		_, cols := queries.Features.Dims()
		return queries.Features.Slice(start, end, 0, cols).(*mat.Dense), nil
	}

	sampleSize := 1
	for _, s := range queries.InputDim[1:] {
		sampleSize *= int(s)
	}
	shape := make([]int64, len(queries.InputDim))
	copy(shape, queries.InputDim)
	shape[0] = int64(end - start)

	features, err := e.enc.Features(queries.Inputs[start*sampleSize:end*sampleSize], shape)
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return features, nil
}
