package train

import "strings"

// WeightDecayParams partitions parameters into a weight-decayed group and
// an exempt group. Following the DINO recipe, bias parameters (name ending
// in ".bias") and rank-1 parameters (norm-layer scales and shifts) are
// exempt; decayBias and decayNorm opt the respective class back into decay.
// Input order is preserved within each group.
func WeightDecayParams(params []*Param, decayNorm, decayBias bool) (decay, noDecay []*Param) {
	for _, p := range params {
		switch {
		case strings.HasSuffix(p.Name, ".bias"):
			if decayBias {
				decay = append(decay, p)
			} else {
				noDecay = append(noDecay, p)
			}
		case len(p.Shape) == 1:
			if decayNorm {
				decay = append(decay, p)
			} else {
				noDecay = append(noDecay, p)
			}
		default:
			decay = append(decay, p)
		}
	}
	return decay, noDecay
}
