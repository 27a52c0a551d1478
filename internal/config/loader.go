package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrBadProfile = errors.New("invalid profile name")

var profileName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., ./configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "awaken", "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "awaken", "profiles", profile+".yaml")
}

// Loader reads YAML configs and merges default -> profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads default.yaml and overlays the profile file (both optional).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	if profile != "" && !profileName.MatchString(profile) {
		return RawConfig{}, fmt.Errorf("%w: %q", ErrBadProfile, profile)
	}

	l.mu.RLock()
	cfg, ok := l.cache[profile]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears loader's cache. Call after the watcher detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a. Scalars in b win when set; a table in b replaces
// a's table wholesale; policies merge by name.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	if b.Sim.Goal != nil {
		out.Sim.Goal = b.Sim.Goal
	}
	if b.Sim.Trials != nil {
		out.Sim.Trials = b.Sim.Trials
	}
	if b.Sim.Seed != nil {
		out.Sim.Seed = b.Sim.Seed
	}

	if len(b.Table) > 0 {
		out.Table = append([]OddsConfig(nil), b.Table...)
	}

	if len(b.Policies) > 0 {
		policies := make(map[string]PolicyConfig, len(a.Policies)+len(b.Policies))
		for name, pc := range a.Policies {
			policies[name] = pc
		}
		for name, pc := range b.Policies {
			policies[name] = pc
		}
		out.Policies = policies
	}

	if b.Compare != nil {
		c := *b.Compare
		out.Compare = &c
	}
	return out
}

// WatchPaths lists default.yaml plus every profile file currently on disk.
func (l *Loader) WatchPaths() []string {
	paths := []string{l.paths.DefaultPath()}
	profiles, _ := filepath.Glob(filepath.Join(l.paths.BaseDir, "awaken", "profiles", "*.yaml"))
	return append(paths, profiles...)
}
