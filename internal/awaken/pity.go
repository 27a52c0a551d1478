package awaken

// PityMeter tracks the bonus accumulated by failed attempts since the last
// success. The bonus is added to the base chance of the next attempt.
type PityMeter struct {
	Bonus float64
}

// Roll performs one attempt with odds o.
// - On hit, Bonus resets to 0; otherwise Bonus grows by o.FailBonus.
func (pm *PityMeter) Roll(o Odds, rng RandomSource) (bool, error) {
	hit, err := Draw(o.Chance+pm.Bonus, rng)
	if err != nil {
		return false, err
	}
	if hit {
		pm.Bonus = 0
	} else {
		pm.Bonus += o.FailBonus
	}
	return hit, nil
}
