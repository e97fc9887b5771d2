// Package encoder runs a frozen SSL backbone exported to ONNX and turns raw
// inputs into L2-normalized feature vectors for the kNN monitor.
package encoder

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gonum.org/v1/gonum/mat"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// Encoder wraps an inference session over a single-input backbone. The
// model must take one F32 tensor with a dynamic leading batch dimension and
// produce either (N, D) pooled features or (N, S, D) per-token features,
// which are mean-pooled over S.
type Encoder struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	outDims    []int64 // model-declared output shape, leading dim dynamic
}

// New loads the ONNX model and creates an inference session. The ONNX
// Runtime shared library is expected next to the model file.
func New(modelPath string) (*Encoder, error) {
	libPath := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("encoder: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("encoder: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("encoder: expected a single-input backbone, got %d inputs", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("encoder: model has no outputs")
	}
	outDims := outputs[0].Dimensions
	if len(outDims) != 2 && len(outDims) != 3 {
		return nil, fmt.Errorf("encoder: expected 2D or 3D output tensor, got %v", outDims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("encoder: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("encoder: failed to create session: %w", err)
	}

	return &Encoder{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		outDims:    outDims,
	}, nil
}

// Features encodes a batch of raw inputs. batch is a flat F32 slice with
// the given shape (leading dimension is the batch size). The result is the
// (N, D) matrix of L2-normalized feature vectors as float64.
func (e *Encoder) Features(batch []float32, shape []int64) (*mat.Dense, error) {
	if len(shape) < 2 {
		return nil, fmt.Errorf("encoder: input shape %v must include a batch dimension", shape)
	}
	n := shape[0]

	tIn, err := ort.NewTensor(ort.NewShape(shape...), batch)
	if err != nil {
		return nil, fmt.Errorf("encoder: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	outShape := make([]int64, len(e.outDims))
	copy(outShape, e.outDims)
	outShape[0] = n
	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(outShape...))
	if err != nil {
		return nil, fmt.Errorf("encoder: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := e.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("encoder: inference failed: %w", err)
	}

	raw := tOut.GetData()
	var pooled []float32
	var dim int64
	if len(outShape) == 3 {
		pooled = meanPool(raw, n, outShape[1], outShape[2])
		dim = outShape[2]
	} else {
		pooled = make([]float32, len(raw))
		copy(pooled, raw)
		dim = outShape[1]
	}

	features := mat.NewDense(int(n), int(dim), nil)
	for i := int64(0); i < n; i++ {
		row := features.RawRowView(int(i))
		for d := int64(0); d < dim; d++ {
			row[d] = float64(pooled[i*dim+d])
		}
		l2Normalize(row)
	}
	return features, nil
}

// Close releases ONNX Runtime resources.
func (e *Encoder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}
