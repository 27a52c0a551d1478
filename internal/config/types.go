// types.go
package config

import "github.com/xtding233/awaken-backend/internal/awaken"

// Raw config loaded from YAML.
type RawConfig struct {
	Version  string                  `yaml:"version"`
	Sim      SimConfig               `yaml:"sim"`
	Table    []OddsConfig            `yaml:"table,omitempty"`
	Policies map[string]PolicyConfig `yaml:"policies,omitempty"`
	Compare  *CompareConfig          `yaml:"compare,omitempty"`
	Notes    string                  `yaml:"notes,omitempty"`
}

type SimConfig struct {
	Goal   *int    `yaml:"goal"`
	Trials *int    `yaml:"trials"`
	Seed   *uint64 `yaml:"seed"` // 0 or absent => crypto source
}

// OddsConfig is one probability table row.
type OddsConfig struct {
	Gap       int     `yaml:"gap"`
	Chance    float64 `yaml:"chance"`
	FailBonus float64 `yaml:"fail_bonus"`
}

// PolicyConfig lists fodder stars per level. With Base set, the named
// policy is cloned first and only the listed levels are replaced.
type PolicyConfig struct {
	Base   string        `yaml:"base,omitempty"`
	Levels map[int][]int `yaml:"levels"`
}

type CompareConfig struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Normalized engine params used by internal/awaken.
type EngineParams struct {
	Table    awaken.Table
	Policies map[string]*awaken.Policy
	Goal     int
	Trials   int
	Seed     uint64
	CompareA string
	CompareB string
	Version  string // effective config version for tracing
}
