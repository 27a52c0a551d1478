package awaken_test

import (
	"errors"
	"testing"

	"github.com/xtding233/awaken-backend/internal/awaken"
)

func TestDefaultPolicyIsFresh(t *testing.T) {
	a := awaken.DefaultPolicy()
	a.SetLevel(4, []int{3})
	b := awaken.DefaultPolicy()
	if got := b.Get(4); len(got) != 3 || got[0] != 2 {
		t.Fatalf("default policy leaked mutation: %v", got)
	}
	if got := b.String(); got != "{0:[], 1:[], 2:[], 3:[1], 4:[2, 1, 1]}" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestPolicyGetMissing(t *testing.T) {
	p := awaken.NewPolicy(nil)
	if got := p.Get(3); len(got) != 0 {
		t.Fatalf("missing level should be empty, got %v", got)
	}
}

func TestPolicyCloneAndSetLevel(t *testing.T) {
	base := awaken.DefaultPolicy()
	clone := base.Clone()
	clone.SetLevel(3, []int{2, 2})

	if got := base.Get(3); len(got) != 1 || got[0] != 1 {
		t.Fatalf("clone mutated base: %v", got)
	}
	if got := clone.Get(3); len(got) != 2 {
		t.Fatalf("SetLevel not applied: %v", got)
	}
	if got := clone.Get(4); len(got) != 3 {
		t.Fatalf("SetLevel touched another level: %v", got)
	}

	seq := []int{1}
	clone.SetLevel(2, seq)
	seq[0] = 0
	if clone.Get(2)[0] != 1 {
		t.Fatal("SetLevel must copy the sequence")
	}
}

func TestPolicyValidate(t *testing.T) {
	table := awaken.DefaultTable()
	cases := []struct {
		name   string
		policy *awaken.Policy
		goal   int
		want   error
	}{
		{"default", awaken.DefaultPolicy(), 5, nil},
		{"negative goal", awaken.DefaultPolicy(), -1, awaken.ErrNegativeStar},
		{"negative level", awaken.NewPolicy(map[int][]int{-1: {}}), 1, awaken.ErrNegativeStar},
		{"negative fodder", awaken.NewPolicy(map[int][]int{1: {-2}}), 2, awaken.ErrNegativeStar},
		{"fodder above level", awaken.NewPolicy(map[int][]int{2: {3}}), 3, awaken.ErrFodderCycle},
		{"later fodder above level", awaken.NewPolicy(map[int][]int{1: {1, 2}}), 2, awaken.ErrFodderCycle},
		{"fodder above level after zero", awaken.NewPolicy(map[int][]int{1: {0, 2}}), 2, awaken.ErrFodderCycle},
		{"fallback gap too wide", awaken.DefaultPolicy(), 6, awaken.ErrGapOutOfRange},
		{"guaranteed before fallback", awaken.NewPolicy(map[int][]int{5: {5}}), 6, nil},
		{"level beyond goal ignored", awaken.NewPolicy(map[int][]int{7: {0}}), 5, nil},
	}
	for _, c := range cases {
		err := c.policy.Validate(c.goal, table)
		if c.want == nil {
			if err != nil {
				t.Errorf("%s: unexpected error %v", c.name, err)
			}
			continue
		}
		if !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
}

func TestPolicyValidateShortTable(t *testing.T) {
	table := awaken.Table{{Chance: 1}, {Chance: 0.5, FailBonus: 0.16}}
	// level 3 uses a 1-star fodder: gap 2
	err := awaken.DefaultPolicy().Validate(5, table)
	if !errors.Is(err, awaken.ErrGapOutOfRange) {
		t.Fatalf("expected ErrGapOutOfRange, got %v", err)
	}
}
