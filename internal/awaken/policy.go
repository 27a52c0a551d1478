package awaken

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNegativeStar = errors.New("star level must be >= 0")
	ErrFodderCycle  = errors.New("fodder star above the level it feeds")
)

// Policy maps an item's current star level to the fodder stars to sacrifice,
// in order, before spamming zero-star fodder. Levels without an entry spam
// zero-star fodder from the first attempt.
//
// A Policy is read-only while a simulation runs; fodder items share their
// parent's Policy.
type Policy struct {
	levels map[int][]int
}

// DefaultPolicy returns a new copy of the stock policy
// {0:[], 1:[], 2:[], 3:[1], 4:[2, 1, 1]}.
func DefaultPolicy() *Policy {
	return &Policy{levels: map[int][]int{
		0: {},
		1: {},
		2: {},
		3: {1},
		4: {2, 1, 1},
	}}
}

// NewPolicy copies levels into a new Policy.
func NewPolicy(levels map[int][]int) *Policy {
	p := &Policy{levels: make(map[int][]int, len(levels))}
	for star, seq := range levels {
		p.SetLevel(star, seq)
	}
	return p
}

// Get returns the fodder sequence for star, or nil if none is configured.
func (p *Policy) Get(star int) []int {
	if p == nil {
		return nil
	}
	return p.levels[star]
}

// SetLevel replaces the sequence for one star level.
func (p *Policy) SetLevel(star int, seq []int) {
	if p.levels == nil {
		p.levels = make(map[int][]int)
	}
	p.levels[star] = append([]int{}, seq...)
}

// Clone returns an independent copy.
func (p *Policy) Clone() *Policy {
	return NewPolicy(p.levels)
}

// Levels returns the configured star levels in ascending order.
func (p *Policy) Levels() []int {
	out := make([]int, 0, len(p.levels))
	for star := range p.levels {
		out = append(out, star)
	}
	sort.Ints(out)
	return out
}

// String renders the policy as {0:[], 3:[1], 4:[2, 1, 1]}.
func (p *Policy) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, star := range p.Levels() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(star))
		b.WriteString(":[")
		for j, f := range p.levels[star] {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(f))
		}
		b.WriteByte(']')
	}
	b.WriteByte('}')
	return b.String()
}

// Validate checks the policy against goal and table before any trial runs.
//
// Every fodder star must be <= the level it feeds: a higher fodder would have
// to pass through the same level again to be produced. With that rule in
// place, a run to goal only ever visits levels 0..goal-1, so those are the
// levels whose gaps are looked up. The zero-star fallback at a level is only
// checked when the configured sequence can run out without a guaranteed hit.
func (p *Policy) Validate(goal int, table Table) error {
	if goal < 0 {
		return fmt.Errorf("%w: goal %d", ErrNegativeStar, goal)
	}
	for _, star := range p.Levels() {
		if star < 0 {
			return fmt.Errorf("%w: level %d", ErrNegativeStar, star)
		}
		for _, f := range p.levels[star] {
			if f < 0 {
				return fmt.Errorf("%w: level %d fodder %d", ErrNegativeStar, star, f)
			}
			if f > star {
				return fmt.Errorf("%w: level %d fodder %d", ErrFodderCycle, star, f)
			}
		}
	}

	for star := 0; star < goal; star++ {
		bonus := 0.0
		guaranteed := false
		for _, f := range p.Get(star) {
			o, err := table.Lookup(Gap(star, f))
			if err != nil {
				return fmt.Errorf("level %d fodder %d: %w", star, f, err)
			}
			if o.Chance+bonus >= 1 {
				guaranteed = true
			}
			bonus += o.FailBonus
		}
		if guaranteed {
			continue
		}
		if _, err := table.Lookup(Gap(star, 0)); err != nil {
			return fmt.Errorf("level %d zero-star fallback: %w", star, err)
		}
	}
	return nil
}
