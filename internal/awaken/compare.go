package awaken

import (
	"fmt"
	"io"
)

// Contender is a policy together with the random source its trials draw from.
type Contender struct {
	Policy *Policy
	RNG    RandomSource
}

// Comparison tallies two cost samples position by position.
// Wins counts trials where A was cheaper.
type Comparison struct {
	Wins   int
	Losses int
	Draws  int
	CostsA []int
	CostsB []int
	StatsA Stats
	StatsB Stats
}

// Compare runs trials for a, then for b, from the simulator's source.
func (s *Simulator) Compare(a, b *Policy, goal, trials int) (Comparison, error) {
	return CompareContenders(s.Table, Contender{Policy: a, RNG: s.RNG}, Contender{Policy: b, RNG: s.RNG}, goal, trials)
}

// CompareContenders simulates both contenders independently and counts
// wins, losses and draws pairwise by trial index.
func CompareContenders(table Table, a, b Contender, goal, trials int) (Comparison, error) {
	costsA, err := NewSimulator(table, a.RNG).SimulateMany(a.Policy, goal, trials)
	if err != nil {
		return Comparison{}, fmt.Errorf("policy a: %w", err)
	}
	costsB, err := NewSimulator(table, b.RNG).SimulateMany(b.Policy, goal, trials)
	if err != nil {
		return Comparison{}, fmt.Errorf("policy b: %w", err)
	}

	c := Comparison{
		CostsA: costsA,
		CostsB: costsB,
		StatsA: summarizeCosts(costsA),
		StatsB: summarizeCosts(costsB),
	}
	for i := range costsA {
		switch {
		case costsA[i] < costsB[i]:
			c.Wins++
		case costsA[i] > costsB[i]:
			c.Losses++
		default:
			c.Draws++
		}
	}
	return c, nil
}

// WriteReport prints both policies and the tallies.
func (c Comparison) WriteReport(w io.Writer, a, b *Policy) error {
	_, err := fmt.Fprintf(w,
		"Strategy: %s\nCompetitor Strategy: %s\nWins: %d\nLosses: %d\nDraws: %d\nMean cost: %.2f vs %.2f\n",
		a, b, c.Wins, c.Losses, c.Draws, c.StatsA.Mean, c.StatsB.Mean)
	return err
}
