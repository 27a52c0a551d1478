// resolve.go
package config

import (
	"fmt"
	"sort"

	"github.com/xtding233/awaken-backend/internal/awaken"
)

// DefaultPolicyName is always resolvable; a config may redefine it.
const DefaultPolicyName = "default"

// Overrides carries per-request values (flags, query params) that win over files.
type Overrides struct {
	Goal   *int
	Trials *int
	Seed   *uint64
}

type Resolver interface {
	// Returns merged RawConfig and normalized EngineParams
	Resolve(profile string, o Overrides) (RawConfig, EngineParams, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default -> profile -> overrides into engine params.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, EngineParams, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, EngineParams{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return raw, EngineParams{}, err
	}
	params, err := Normalize(raw, o)
	return raw, params, err
}

// Normalize turns a validated RawConfig into EngineParams.
func Normalize(raw RawConfig, o Overrides) (EngineParams, error) {
	p := EngineParams{
		Goal:     awaken.DefaultGoal,
		Trials:   awaken.DefaultTrials,
		CompareA: DefaultPolicyName,
		CompareB: DefaultPolicyName,
		Version:  raw.Version,
	}
	if raw.Sim.Goal != nil {
		p.Goal = *raw.Sim.Goal
	}
	if raw.Sim.Trials != nil {
		p.Trials = *raw.Sim.Trials
	}
	if raw.Sim.Seed != nil {
		p.Seed = *raw.Sim.Seed
	}
	if o.Goal != nil {
		p.Goal = *o.Goal
	}
	if o.Trials != nil {
		p.Trials = *o.Trials
	}
	if o.Seed != nil {
		p.Seed = *o.Seed
	}
	if raw.Compare != nil {
		if raw.Compare.A != "" {
			p.CompareA = raw.Compare.A
		}
		if raw.Compare.B != "" {
			p.CompareB = raw.Compare.B
		}
	}

	p.Table = buildTable(raw.Table)
	if err := p.Table.Validate(); err != nil {
		return EngineParams{}, err
	}

	policies, err := buildPolicies(raw.Policies)
	if err != nil {
		return EngineParams{}, err
	}
	p.Policies = policies
	return p, nil
}

func buildTable(rows []OddsConfig) awaken.Table {
	if len(rows) == 0 {
		return awaken.DefaultTable()
	}
	sorted := append([]OddsConfig(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Gap < sorted[j].Gap })
	table := make(awaken.Table, len(sorted))
	for i, row := range sorted {
		table[i] = awaken.Odds{Chance: row.Chance, FailBonus: row.FailBonus}
	}
	return table
}

// buildPolicies resolves base chains. A base is built before anything
// that extends it; cycles are rejected.
func buildPolicies(cfgs map[string]PolicyConfig) (map[string]*awaken.Policy, error) {
	out := map[string]*awaken.Policy{}
	if _, ok := cfgs[DefaultPolicyName]; !ok {
		out[DefaultPolicyName] = awaken.DefaultPolicy()
	}

	visiting := map[string]bool{}
	var build func(name string) (*awaken.Policy, error)
	build = func(name string) (*awaken.Policy, error) {
		if p, ok := out[name]; ok {
			return p, nil
		}
		pc, ok := cfgs[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("%w: policy %q inherits from itself", ErrInvalidConfig, name)
		}
		visiting[name] = true

		var p *awaken.Policy
		if pc.Base != "" {
			base, err := build(pc.Base)
			if err != nil {
				return nil, err
			}
			p = base.Clone()
			for star, seq := range pc.Levels {
				p.SetLevel(star, seq)
			}
		} else {
			p = awaken.NewPolicy(pc.Levels)
		}
		out[name] = p
		return p, nil
	}

	for name := range cfgs {
		if _, err := build(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
