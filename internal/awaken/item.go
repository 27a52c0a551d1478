package awaken

import "fmt"

// Item is one piece of equipment being awakened.
//
// Cost counts every item consumed so far, the item itself included, so a
// fresh Item costs 1. Fodder is produced on demand by awakening a fresh Item
// under the same policy and discarded once consumed.
type Item struct {
	PityMeter
	Star    int
	Cost    int
	History []int // fodder stars consumed, in order

	policy *Policy
	table  Table
	rng    RandomSource
}

// NewItem creates a star-0 item. Nil arguments select DefaultPolicy,
// DefaultTable and DefaultRNG.
func NewItem(policy *Policy, table Table, rng RandomSource) *Item {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if table == nil {
		table = DefaultTable()
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Item{Cost: 1, policy: policy, table: table, rng: rng}
}

// Awaken attempts one awakening using a fodder of fodderStar that the caller
// has already produced. It does not charge the fodder's cost.
func (it *Item) Awaken(fodderStar int) (bool, error) {
	o, err := it.table.Lookup(Gap(it.Star, fodderStar))
	if err != nil {
		return false, fmt.Errorf("star %d fodder %d: %w", it.Star, fodderStar, err)
	}
	it.History = append(it.History, fodderStar)
	hit, err := it.Roll(o, it.rng)
	if err != nil {
		return false, err
	}
	if hit {
		it.Star++
	}
	return hit, nil
}

// AdvanceOnce attempts awakenings until the star level rises by one.
// Fodder follows the policy's sequence for the current level, then zero-star.
func (it *Item) AdvanceOnce() error {
	plan := it.policy.Get(it.Star)
	for i := 0; ; i++ {
		f := 0
		if i < len(plan) {
			f = plan[i]
		}
		// the fodder is built before this attempt's roll
		fodderCost, err := it.produceFodder(f)
		if err != nil {
			return err
		}
		hit, err := it.Awaken(f)
		if err != nil {
			return err
		}
		it.Cost += fodderCost
		if hit {
			return nil
		}
	}
}

// Simulate awakens the item up to goal and returns its total cost.
func (it *Item) Simulate(goal int) (int, error) {
	if goal < 0 {
		return 0, fmt.Errorf("%w: goal %d", ErrNegativeStar, goal)
	}
	for it.Star < goal {
		if err := it.AdvanceOnce(); err != nil {
			return 0, err
		}
	}
	return it.Cost, nil
}

// produceFodder awakens a fresh item to star and returns what it cost.
func (it *Item) produceFodder(star int) (int, error) {
	fodder := NewItem(it.policy, it.table, it.rng)
	return fodder.Simulate(star)
}
