package train

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// TruncNormal fills data in place with draws from a normal distribution of
// the given mean and standard deviation, truncated to [a, b]. Values are
// generated by sampling the uniform range of the target CDF and applying
// the inverse normal CDF, so the tails are cut rather than re-drawn.
func TruncNormal(rng *rand.Rand, data []float64, mean, std, a, b float64) error {
	if rng == nil {
		return fmt.Errorf("train: nil random source: %w", tensor.ErrInvalidParameter)
	}
	if std <= 0 {
		return fmt.Errorf("train: std %v: %w", std, tensor.ErrInvalidParameter)
	}
	if a >= b {
		return fmt.Errorf("train: truncation range [%v,%v]: %w", a, b, tensor.ErrInvalidParameter)
	}

	normCDF := func(x float64) float64 {
		return (1 + math.Erf(x/math.Sqrt2)) / 2
	}
	lo := normCDF((a - mean) / std)
	hi := normCDF((b - mean) / std)

	for i := range data {
		// Uniform in [2lo-1, 2hi-1], then inverse erf back to a truncated
		// standard normal.
		u := 2*lo - 1 + rng.Float64()*2*(hi-lo)
		v := math.Erfinv(u)*std*math.Sqrt2 + mean
		data[i] = math.Min(math.Max(v, a), b)
	}
	return nil
}
