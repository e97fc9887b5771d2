// Package dataset loads feature banks and query sets from safetensors
// files. A set carries either precomputed backbone features or raw model
// inputs for on-the-fly encoding, plus the ground-truth labels.
package dataset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Expected tensor names.
const (
	tensorFeatures = "features" // F32, (N, D)
	tensorInputs   = "inputs"   // F32, (N, ...), raw encoder inputs
	tensorLabels   = "labels"   // I64, (N)
)

// Set is one loaded dataset: N samples with labels, represented either as
// ready features or as raw inputs to run through an encoder.
type Set struct {
	Features *mat.Dense // (N, D) float64, nil when only raw inputs are present
	Inputs   []float32  // flat raw inputs, nil when features are present
	InputDim []int64    // shape of Inputs including the leading N
	Labels   []int
}

// Len returns the number of samples.
func (s *Set) Len() int { return len(s.Labels) }

// NumClasses returns max(label)+1, the inferred class count.
func (s *Set) NumClasses() int {
	classes := 0
	for _, l := range s.Labels {
		if l+1 > classes {
			classes = l + 1
		}
	}
	return classes
}

type tensorMeta struct {
	Dtype       string  `json:"dtype"`
	Shape       []int64 `json:"shape"`
	DataOffsets [2]int  `json:"data_offsets"`
}

// Load reads a safetensors file holding a "labels" I64 tensor and either a
// "features" F32 matrix or an "inputs" F32 tensor (or both; features win).
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("dataset: %s: file too small: %d bytes", path, len(data))
	}

	// safetensors layout: 8-byte LE uint64 header length, JSON header,
	// then the concatenated tensor payloads.
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if uint64(len(data)) < 8+headerLen {
		return nil, fmt.Errorf("dataset: %s: header length %d exceeds file size", path, headerLen)
	}
	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("dataset: %s: failed to parse header: %w", path, err)
	}
	delete(header, "__metadata__")
	payload := data[8+headerLen:]

	set := &Set{}

	labelsMeta, err := tensorInfo(header, tensorLabels, "I64")
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	if len(labelsMeta.Shape) != 1 {
		return nil, fmt.Errorf("dataset: %s: labels must be 1D, got shape %v", path, labelsMeta.Shape)
	}
	raw, err := slicePayload(payload, labelsMeta, 8)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: labels: %w", path, err)
	}
	n := int(labelsMeta.Shape[0])
	set.Labels = make([]int, n)
	for i := range set.Labels {
		set.Labels[i] = int(int64(binary.LittleEndian.Uint64(raw[i*8 : i*8+8])))
	}

	if _, ok := header[tensorFeatures]; ok {
		meta, err := tensorInfo(header, tensorFeatures, "F32")
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: %w", path, err)
		}
		if len(meta.Shape) != 2 {
			return nil, fmt.Errorf("dataset: %s: features must be 2D, got shape %v", path, meta.Shape)
		}
		if int(meta.Shape[0]) != n {
			return nil, fmt.Errorf("dataset: %s: %d feature rows for %d labels", path, meta.Shape[0], n)
		}
		raw, err := slicePayload(payload, meta, 4)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: features: %w", path, err)
		}
		rows, cols := int(meta.Shape[0]), int(meta.Shape[1])
		vals := make([]float64, rows*cols)
		for i := range vals {
			bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
			vals[i] = float64(math.Float32frombits(bits))
		}
		set.Features = mat.NewDense(rows, cols, vals)
		return set, nil
	}

	if _, ok := header[tensorInputs]; ok {
		meta, err := tensorInfo(header, tensorInputs, "F32")
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: %w", path, err)
		}
		if len(meta.Shape) < 2 || int(meta.Shape[0]) != n {
			return nil, fmt.Errorf("dataset: %s: inputs shape %v incompatible with %d labels",
				path, meta.Shape, n)
		}
		raw, err := slicePayload(payload, meta, 4)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: inputs: %w", path, err)
		}
		set.Inputs = make([]float32, len(raw)/4)
		for i := range set.Inputs {
			bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
			set.Inputs[i] = math.Float32frombits(bits)
		}
		set.InputDim = meta.Shape
		return set, nil
	}

	return nil, fmt.Errorf("dataset: %s: neither %q nor %q tensor present",
		path, tensorFeatures, tensorInputs)
}

// tensorInfo extracts and validates the metadata for one named tensor.
func tensorInfo(header map[string]json.RawMessage, name, dtype string) (*tensorMeta, error) {
	raw, ok := header[name]
	if !ok {
		return nil, fmt.Errorf("tensor %q not found in header", name)
	}
	var meta tensorMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("tensor %q: failed to parse metadata: %w", name, err)
	}
	if meta.Dtype != dtype {
		return nil, fmt.Errorf("tensor %q: expected dtype %s, got %s", name, dtype, meta.Dtype)
	}
	return &meta, nil
}

// slicePayload returns the byte range of one tensor, checking that the
// range agrees with the declared shape and element size. Shapes come from
// an untrusted header, so the element count is bounded by the payload size
// before any multiplication can overflow.
func slicePayload(payload []byte, meta *tensorMeta, elemSize int) ([]byte, error) {
	count := int64(1)
	for _, s := range meta.Shape {
		if s < 0 {
			return nil, fmt.Errorf("negative dimension in shape %v", meta.Shape)
		}
		if s > 0 && count > int64(len(payload))/s {
			return nil, fmt.Errorf("shape %v exceeds payload size %d", meta.Shape, len(payload))
		}
		count *= s
	}
	start, end := meta.DataOffsets[0], meta.DataOffsets[1]
	if int64(end)-int64(start) != count*int64(elemSize) {
		return nil, fmt.Errorf("data size %d does not match shape %v", end-start, meta.Shape)
	}
	if start < 0 || end > len(payload) {
		return nil, fmt.Errorf("data range [%d:%d] exceeds payload size %d", start, end, len(payload))
	}
	return payload[start:end], nil
}
