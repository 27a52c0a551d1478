package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidConfig = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// sim
	if cfg.Sim.Goal != nil && *cfg.Sim.Goal < 0 {
		errs = append(errs, "sim.goal must be >= 0")
	}
	if cfg.Sim.Trials != nil && *cfg.Sim.Trials < 0 {
		errs = append(errs, "sim.trials must be >= 0")
	}

	// table: gaps must be unique and cover 0..n-1
	if len(cfg.Table) > 0 {
		seen := make(map[int]bool, len(cfg.Table))
		for i, row := range cfg.Table {
			if row.Gap < 0 || row.Gap >= len(cfg.Table) {
				errs = append(errs, fmt.Sprintf("table[%d].gap must be in [0,%d)", i, len(cfg.Table)))
			} else if seen[row.Gap] {
				errs = append(errs, fmt.Sprintf("table[%d].gap %d is duplicated", i, row.Gap))
			}
			seen[row.Gap] = true
			if row.Chance < 0 || row.Chance > 1 {
				errs = append(errs, fmt.Sprintf("table[%d].chance must be in [0,1]", i))
			}
			if row.FailBonus < 0 || row.FailBonus > 1 {
				errs = append(errs, fmt.Sprintf("table[%d].fail_bonus must be in [0,1]", i))
			}
		}
	}

	// policies
	names := make([]string, 0, len(cfg.Policies))
	for name := range cfg.Policies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := cfg.Policies[name]
		if pc.Base != "" && pc.Base != DefaultPolicyName {
			if _, ok := cfg.Policies[pc.Base]; !ok {
				errs = append(errs, fmt.Sprintf("policies.%s.base references unknown policy %q", name, pc.Base))
			}
		}
		for star, seq := range pc.Levels {
			if star < 0 {
				errs = append(errs, fmt.Sprintf("policies.%s.levels has negative star %d", name, star))
			}
			for _, f := range seq {
				if f < 0 {
					errs = append(errs, fmt.Sprintf("policies.%s.levels.%d has negative fodder star %d", name, star, f))
				}
			}
		}
	}

	// compare
	if cfg.Compare != nil {
		for _, ref := range []string{cfg.Compare.A, cfg.Compare.B} {
			if ref == "" || ref == DefaultPolicyName {
				continue
			}
			if _, ok := cfg.Policies[ref]; !ok {
				errs = append(errs, fmt.Sprintf("compare references unknown policy %q", ref))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
