package tensor

import "fmt"

// NCHW is a batch of images with shape (batch, channels, height, width),
// row-major in that axis order. Used as the input to patchification.
type NCHW struct {
	data []float64
	n    int
	c    int
	h    int
	w    int
}

// NewNCHW returns a zero-filled image batch with the given shape.
func NewNCHW(n, c, h, w int) (*NCHW, error) {
	if n <= 0 || c <= 0 || h <= 0 || w <= 0 {
		return nil, fmt.Errorf("tensor: image shape (%d,%d,%d,%d): %w", n, c, h, w, ErrInvalidParameter)
	}
	return &NCHW{data: make([]float64, n*c*h*w), n: n, c: c, h: h, w: w}, nil
}

// NewNCHWFrom returns an image batch with the given shape holding a copy of
// data.
func NewNCHWFrom(n, c, h, w int, data []float64) (*NCHW, error) {
	img, err := NewNCHW(n, c, h, w)
	if err != nil {
		return nil, err
	}
	if len(data) != n*c*h*w {
		return nil, fmt.Errorf("tensor: image (%d,%d,%d,%d) needs %d values, got %d: %w",
			n, c, h, w, n*c*h*w, len(data), ErrShapeMismatch)
	}
	copy(img.data, data)
	return img, nil
}

// Dims returns the (batch, channels, height, width) shape.
func (img *NCHW) Dims() (n, c, h, w int) { return img.n, img.c, img.h, img.w }

// At returns the pixel value at (batch n, channel c, row y, col x). Panics
// on out-of-range coordinates.
func (img *NCHW) At(n, c, y, x int) float64 {
	if n < 0 || n >= img.n || c < 0 || c >= img.c || y < 0 || y >= img.h || x < 0 || x >= img.w {
		panic(fmt.Sprintf("tensor: access (%d,%d,%d,%d) outside (%d,%d,%d,%d)",
			n, c, y, x, img.n, img.c, img.h, img.w))
	}
	return img.data[((n*img.c+c)*img.h+y)*img.w+x]
}

// Set writes v at (batch n, channel c, row y, col x). Panics on
// out-of-range coordinates.
func (img *NCHW) Set(n, c, y, x int, v float64) {
	if n < 0 || n >= img.n || c < 0 || c >= img.c || y < 0 || y >= img.h || x < 0 || x >= img.w {
		panic(fmt.Sprintf("tensor: access (%d,%d,%d,%d) outside (%d,%d,%d,%d)",
			n, c, y, x, img.n, img.c, img.h, img.w))
	}
	img.data[((n*img.c+c)*img.h+y)*img.w+x] = v
}
