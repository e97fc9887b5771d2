package token

import (
	"fmt"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// Patchify converts a batch of square images into a token batch of
// non-overlapping patches. The result has shape
// (batch, (h/patchSize)*(w/patchSize), patchSize*patchSize*channels);
// within a patch the features are ordered (pixel row, pixel col, channel).
// Patches are emitted in row-major grid order.
func Patchify(images *tensor.NCHW, patchSize int) (*tensor.Dense, error) {
	n, c, h, w := images.Dims()
	if patchSize <= 0 {
		return nil, fmt.Errorf("token: patch size %d: %w", patchSize, tensor.ErrInvalidParameter)
	}
	if h != w {
		return nil, fmt.Errorf("token: patchify requires square images, got %dx%d: %w",
			h, w, tensor.ErrShapeMismatch)
	}
	if h%patchSize != 0 {
		return nil, fmt.Errorf("token: image size %d not divisible by patch size %d: %w",
			h, patchSize, tensor.ErrShapeMismatch)
	}

	grid := h / patchSize
	numPatches := grid * grid
	dim := patchSize * patchSize * c
	out, err := tensor.NewDense(n, numPatches, dim)
	if err != nil {
		return nil, err
	}

	for ni := 0; ni < n; ni++ {
		for gy := 0; gy < grid; gy++ {
			for gx := 0; gx < grid; gx++ {
				row := out.Row(ni, gy*grid+gx)
				for py := 0; py < patchSize; py++ {
					for px := 0; px < patchSize; px++ {
						for ci := 0; ci < c; ci++ {
							row[(py*patchSize+px)*c+ci] = images.At(ni, ci, gy*patchSize+py, gx*patchSize+px)
						}
					}
				}
			}
		}
	}
	return out, nil
}
