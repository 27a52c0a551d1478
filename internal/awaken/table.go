package awaken

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrGapOutOfRange = errors.New("star gap has no entry in probability table")
	ErrInvalidTable  = errors.New("invalid probability table")
)

// Odds is the base success chance for one gap and the pity added after a failure.
type Odds struct {
	Chance    float64
	FailBonus float64
}

// Table maps star gap (index) to odds.
type Table []Odds

// DefaultTable returns a fresh copy of the stock awakening table.
func DefaultTable() Table {
	return Table{
		{Chance: 1.0, FailBonus: 0},
		{Chance: 0.5, FailBonus: 0.16},
		{Chance: 0.25, FailBonus: 0.08},
		{Chance: 0.1, FailBonus: 0.03},
		{Chance: 0.01, FailBonus: 0},
	}
}

// Gap is max(target-fodder, 0).
func Gap(target, fodder int) int {
	if g := target - fodder; g > 0 {
		return g
	}
	return 0
}

// MaxGap is the largest gap with an entry, or -1 for an empty table.
func (t Table) MaxGap() int { return len(t) - 1 }

// Lookup returns the odds for gap.
func (t Table) Lookup(gap int) (Odds, error) {
	if gap < 0 || gap >= len(t) {
		return Odds{}, fmt.Errorf("%w: gap %d (max %d)", ErrGapOutOfRange, gap, t.MaxGap())
	}
	return t[gap], nil
}

// Validate rejects tables that would corrupt the model or never let an
// attempt succeed.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTable)
	}
	for gap, o := range t {
		if !unitInterval(o.Chance) || !unitInterval(o.FailBonus) {
			return fmt.Errorf("%w: gap %d odds (%v, %v) outside [0,1]", ErrInvalidTable, gap, o.Chance, o.FailBonus)
		}
		if o.Chance == 0 && o.FailBonus == 0 {
			return fmt.Errorf("%w: gap %d can never succeed", ErrInvalidTable, gap)
		}
	}
	return nil
}

func unitInterval(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
