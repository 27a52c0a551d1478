package awaken

import (
	"errors"
	"math"
)

var ErrInvalidProb = errors.New("invalid probability; must be finite and >= 0")

// Draw consumes exactly one value r from rng and reports r <= threshold.
// Thresholds above 1 come from pity overflow and always hit, but still
// consume a draw so seeded runs stay aligned.
func Draw(threshold float64, rng RandomSource) (bool, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return false, ErrInvalidProb
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() <= threshold, nil
}
