package awaken

import (
	"math"
	"slices"
)

const (
	DefaultGoal   = 5
	DefaultTrials = 5000
)

// Simulator runs independent awakening trials against one table and random source.
type Simulator struct {
	Table Table
	RNG   RandomSource
}

// NewSimulator returns a Simulator. Nil arguments select DefaultTable and DefaultRNG.
func NewSimulator(table Table, rng RandomSource) *Simulator {
	if table == nil {
		table = DefaultTable()
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Simulator{Table: table, RNG: rng}
}

// Stats summarizes simulated costs.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	Min    int
	Max    int
	P50    float64
	P90    float64
	P99    float64
	// per-trial costs in trial order
	Samples []int `json:"-"`
}

// summarizeCosts reduces per-trial item counts to Stats. Every trial costs
// at least one item, so Min is never below 1 for real runs. Percentiles
// interpolate linearly between neighbouring ranked costs.
func summarizeCosts(costs []int) Stats {
	if len(costs) == 0 {
		return Stats{}
	}
	ranked := slices.Clone(costs)
	slices.Sort(ranked)

	total := 0
	for _, c := range ranked {
		total += c
	}
	trials := float64(len(ranked))
	mean := float64(total) / trials

	var spread float64
	for _, c := range ranked {
		spread += (float64(c) - mean) * (float64(c) - mean)
	}
	variance := spread / trials // population variance over trials

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		Min:     ranked[0],
		Max:     ranked[len(ranked)-1],
		P50:     rankedCost(ranked, 0.50),
		P90:     rankedCost(ranked, 0.90),
		P99:     rankedCost(ranked, 0.99),
		Samples: costs,
	}
}

// rankedCost returns the q-quantile of already sorted costs.
func rankedCost(ranked []int, q float64) float64 {
	last := len(ranked) - 1
	pos := q * float64(last)
	lo := int(pos)
	if lo >= last {
		return float64(ranked[last])
	}
	frac := pos - float64(lo)
	return float64(ranked[lo]) + frac*float64(ranked[lo+1]-ranked[lo])
}

// SimulateMany awakens trials fresh items to goal under policy and returns
// their costs in trial order. The policy is validated once up front.
func (s *Simulator) SimulateMany(policy *Policy, goal, trials int) ([]int, error) {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if err := s.Table.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Validate(goal, s.Table); err != nil {
		return nil, err
	}
	if trials <= 0 {
		return []int{}, nil
	}
	costs := make([]int, trials)
	for i := range costs {
		c, err := NewItem(policy, s.Table, s.RNG).Simulate(goal)
		if err != nil {
			return nil, err
		}
		costs[i] = c
	}
	return costs, nil
}

// Run repeats trials and returns summary stats.
func (s *Simulator) Run(policy *Policy, goal, trials int) (Stats, error) {
	costs, err := s.SimulateMany(policy, goal, trials)
	if err != nil {
		return Stats{}, err
	}
	return summarizeCosts(costs), nil
}
