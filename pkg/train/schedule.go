package train

import (
	"fmt"
	"math"

	"github.com/pc-cp/minissl-go/pkg/tensor"
)

// CosineSchedule returns a per-step value schedule of length
// epochs*stepsPerEpoch: an optional linear warmup from startWarmup to base
// over warmupEpochs, then half-cosine decay from base to final over the
// remaining steps. With base == final the post-warmup segment is constant.
func CosineSchedule(base, final float64, epochs, stepsPerEpoch, warmupEpochs int, startWarmup float64) ([]float64, error) {
	if epochs <= 0 || stepsPerEpoch <= 0 {
		return nil, fmt.Errorf("train: schedule over %d epochs x %d steps: %w",
			epochs, stepsPerEpoch, tensor.ErrInvalidParameter)
	}
	if warmupEpochs < 0 || warmupEpochs > epochs {
		return nil, fmt.Errorf("train: warmup %d epochs outside [0,%d]: %w",
			warmupEpochs, epochs, tensor.ErrInvalidParameter)
	}

	total := epochs * stepsPerEpoch
	warmupSteps := warmupEpochs * stepsPerEpoch
	schedule := make([]float64, total)

	// Linear warmup, endpoints inclusive: the last warmup step reaches base.
	for i := 0; i < warmupSteps; i++ {
		if warmupSteps == 1 {
			schedule[i] = startWarmup
			continue
		}
		schedule[i] = startWarmup + (base-startWarmup)*float64(i)/float64(warmupSteps-1)
	}

	decaySteps := total - warmupSteps
	for i := 0; i < decaySteps; i++ {
		schedule[warmupSteps+i] = final + 0.5*(base-final)*(1+math.Cos(math.Pi*float64(i)/float64(decaySteps)))
	}
	return schedule, nil
}
