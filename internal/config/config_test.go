package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtding233/awaken-backend/internal/awaken"
)

const defaultYAML = `
version: "1"
sim:
  goal: 5
  trials: 2000
policies:
  greedy:
    base: default
    levels:
      4: [3]
  zeros:
    levels:
      0: []
compare:
  a: default
  b: greedy
`

const profileYAML = `
version: "1-fast"
sim:
  trials: 100
  seed: 42
policies:
  zeros:
    base: greedy
    levels:
      3: []
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newFixture(t *testing.T) *Loader {
	t.Helper()
	l := NewLoader(t.TempDir())
	writeFile(t, l.Paths().DefaultPath(), defaultYAML)
	writeFile(t, l.Paths().ProfilePath("fast"), profileYAML)
	return l
}

func TestResolveWithoutFiles(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, p, err := l.Resolve("", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Goal != awaken.DefaultGoal || p.Trials != awaken.DefaultTrials || p.Seed != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if got := p.Policies[DefaultPolicyName].String(); got != awaken.DefaultPolicy().String() {
		t.Fatalf("default policy missing, got %s", got)
	}
	if len(p.Table) != 5 {
		t.Fatalf("expected stock table, got %v", p.Table)
	}
}

func TestResolveDefaultFile(t *testing.T) {
	l := newFixture(t)
	_, p, err := l.Resolve("", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Trials != 2000 || p.Version != "1" {
		t.Fatalf("unexpected params %+v", p)
	}
	if got := p.Policies["greedy"].String(); got != "{0:[], 1:[], 2:[], 3:[1], 4:[3]}" {
		t.Fatalf("greedy = %s", got)
	}
	if got := p.Policies["zeros"].String(); got != "{0:[]}" {
		t.Fatalf("zeros = %s", got)
	}
	if p.CompareA != "default" || p.CompareB != "greedy" {
		t.Fatalf("compare = %s vs %s", p.CompareA, p.CompareB)
	}
}

func TestResolveProfileAndOverrides(t *testing.T) {
	l := newFixture(t)
	goal := 3
	_, p, err := l.Resolve("fast", Overrides{Goal: &goal})
	if err != nil {
		t.Fatal(err)
	}
	if p.Goal != 3 || p.Trials != 100 || p.Seed != 42 || p.Version != "1-fast" {
		t.Fatalf("unexpected params %+v", p)
	}
	if got := p.Policies["zeros"].String(); got != "{0:[], 1:[], 2:[], 3:[], 4:[3]}" {
		t.Fatalf("profile policy = %s", got)
	}
	// building zeros from greedy must not touch greedy
	if got := p.Policies["greedy"].Get(3); len(got) != 1 {
		t.Fatalf("base policy mutated: %v", got)
	}
}

func TestResolveCustomTable(t *testing.T) {
	l := NewLoader(t.TempDir())
	writeFile(t, l.Paths().DefaultPath(), `
table:
  - {gap: 1, chance: 0.6, fail_bonus: 0.2}
  - {gap: 0, chance: 1.0, fail_bonus: 0}
`)
	_, p, err := l.Resolve("", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Table) != 2 || p.Table[0].Chance != 1 || p.Table[1].Chance != 0.6 {
		t.Fatalf("table not sorted by gap: %v", p.Table)
	}
}

func TestValidateRaw(t *testing.T) {
	neg := -1
	cfg := RawConfig{
		Sim:   SimConfig{Goal: &neg},
		Table: []OddsConfig{{Gap: 0, Chance: 1}, {Gap: 0, Chance: 1.5}},
		Policies: map[string]PolicyConfig{
			"bad": {Base: "missing", Levels: map[int][]int{-2: {-1}}},
		},
		Compare: &CompareConfig{A: "nobody"},
	}
	err := ValidateRaw(cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{"sim.goal", "duplicated", "chance", "unknown policy \"missing\"", "negative star", "negative fodder", "\"nobody\""} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestResolveInheritanceCycle(t *testing.T) {
	l := NewLoader(t.TempDir())
	writeFile(t, l.Paths().DefaultPath(), `
policies:
  a: {base: b, levels: {}}
  b: {base: a, levels: {}}
`)
	if _, _, err := l.Resolve("", Overrides{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for cycle, got %v", err)
	}
}

func TestLoadMergedBadProfile(t *testing.T) {
	l := NewLoader(t.TempDir())
	if _, err := l.LoadMerged("../etc/passwd"); !errors.Is(err, ErrBadProfile) {
		t.Fatalf("expected ErrBadProfile, got %v", err)
	}
}

func TestLoaderCacheInvalidate(t *testing.T) {
	l := newFixture(t)
	if _, err := l.LoadMerged("fast"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, l.Paths().ProfilePath("fast"), "version: \"2\"\n")

	cfg, _ := l.LoadMerged("fast")
	if cfg.Version != "1-fast" {
		t.Fatalf("expected cached version, got %q", cfg.Version)
	}
	l.Invalidate()
	cfg, _ = l.LoadMerged("fast")
	if cfg.Version != "2" {
		t.Fatalf("expected reloaded version, got %q", cfg.Version)
	}
}

func TestWatchPaths(t *testing.T) {
	l := newFixture(t)
	paths := l.WatchPaths()
	if len(paths) != 2 || paths[0] != l.Paths().DefaultPath() || paths[1] != l.Paths().ProfilePath("fast") {
		t.Fatalf("unexpected watch paths %v", paths)
	}
}

func TestFileWatcherScan(t *testing.T) {
	l := newFixture(t)
	path := l.Paths().DefaultPath()
	var changed []string
	w := NewFileWatcher([]string{path}, time.Hour, func(p string) { changed = append(changed, p) })

	w.scan(true)
	w.scan(false)
	if len(changed) != 0 {
		t.Fatalf("unchanged file reported: %v", changed)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	w.scan(false)
	if len(changed) != 1 || changed[0] != path {
		t.Fatalf("expected one change for %s, got %v", path, changed)
	}
}

func TestFileWatcherDiscoversNewProfile(t *testing.T) {
	l := newFixture(t)
	var changed []string
	w := NewFileWatcher(l.WatchPaths(), time.Hour, func(p string) { changed = append(changed, p) })
	w.Discover = l.WatchPaths
	w.scan(true)

	path := l.Paths().ProfilePath("late")
	writeFile(t, path, "sim:\n  goal: 2\n")
	w.scan(false)
	if len(changed) != 1 || changed[0] != path {
		t.Fatalf("expected new profile %s to be reported, got %v", path, changed)
	}
	w.scan(false)
	if len(changed) != 1 {
		t.Fatalf("profile reported twice: %v", changed)
	}
}
