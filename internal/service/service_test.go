package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xtding233/awaken-backend/internal/awaken"
	"github.com/xtding233/awaken-backend/internal/config"
)

func newTestService(t *testing.T, defaultYAML string) *Service {
	t.Helper()
	l := config.NewLoader(t.TempDir())
	if defaultYAML != "" {
		path := l.Paths().DefaultPath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(defaultYAML), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return New(l)
}

func intp(v int) *int { return &v }

func seedp(v uint64) *uint64 { return &v }

func TestSimulateDefault(t *testing.T) {
	s := newTestService(t, "")
	res, err := s.Simulate(context.Background(), SimulateRequest{Goal: intp(1), Trials: intp(20), Seed: seedp(3)})
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" || res.Policy != "default" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Stats.Mean != 2 || len(res.Stats.Samples) != 20 {
		t.Fatalf("goal 1 always costs 2, got %+v", res.Stats)
	}
}

func TestSimulateSeedReproducible(t *testing.T) {
	s := newTestService(t, "")
	req := SimulateRequest{Trials: intp(200), Seed: seedp(77)}
	a, err := s.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if a.Stats.Mean != b.Stats.Mean || a.RunID == b.RunID {
		t.Fatalf("same seed should reproduce stats with distinct run ids: %v/%v %s/%s",
			a.Stats.Mean, b.Stats.Mean, a.RunID, b.RunID)
	}
}

func TestCompareUsesConfiguredPair(t *testing.T) {
	s := newTestService(t, `
policies:
  greedy:
    base: default
    levels:
      4: [3]
compare:
  b: greedy
`)
	res, err := s.Compare(context.Background(), CompareRequest{Trials: intp(150), Seed: seedp(5)})
	if err != nil {
		t.Fatal(err)
	}
	if res.A != "default" || res.B != "greedy" {
		t.Fatalf("unexpected pair %s vs %s", res.A, res.B)
	}
	c := res.Comparison
	if c.Wins+c.Losses+c.Draws != 150 {
		t.Fatalf("tallies do not add up: %+v", c)
	}
}

func TestConfigErrors(t *testing.T) {
	s := newTestService(t, `
policies:
  cyclic:
    levels:
      1: [2]
`)
	ctx := context.Background()
	_, err := s.Simulate(ctx, SimulateRequest{Policy: "nope"})
	if !errors.Is(err, ErrUnknownPolicy) || !IsConfigError(err) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
	_, err = s.Simulate(ctx, SimulateRequest{Policy: "cyclic", Trials: intp(1)})
	if !errors.Is(err, awaken.ErrFodderCycle) || !IsConfigError(err) {
		t.Fatalf("expected ErrFodderCycle, got %v", err)
	}
	_, err = s.Compare(ctx, CompareRequest{Goal: intp(-1)})
	if !IsConfigError(err) {
		t.Fatalf("negative goal should be a config error, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	s := newTestService(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Simulate(ctx, SimulateRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTrialLimit(t *testing.T) {
	s := newTestService(t, "sim:\n  trials: 500\n")
	s.MaxTrials = 100
	ctx := context.Background()

	_, err := s.Simulate(ctx, SimulateRequest{Trials: intp(1_000_000_000_000)})
	if !errors.Is(err, ErrTooManyTrials) || !IsConfigError(err) {
		t.Fatalf("expected ErrTooManyTrials, got %v", err)
	}
	// the limit also covers trials coming from the config file
	if _, err := s.Compare(ctx, CompareRequest{}); !errors.Is(err, ErrTooManyTrials) {
		t.Fatalf("expected ErrTooManyTrials for configured trials, got %v", err)
	}
	if _, err := s.Simulate(ctx, SimulateRequest{Goal: intp(1), Trials: intp(100), Seed: seedp(1)}); err != nil {
		t.Fatalf("trials at the limit should run: %v", err)
	}
}

func TestCompareReturnsResolvedPolicies(t *testing.T) {
	s := newTestService(t, "")
	res, err := s.Compare(context.Background(), CompareRequest{Goal: intp(1), Trials: intp(3), Seed: seedp(2)})
	if err != nil {
		t.Fatal(err)
	}
	if res.PolicyA == nil || res.PolicyA.String() != awaken.DefaultPolicy().String() {
		t.Fatalf("unexpected policy a %v", res.PolicyA)
	}
}
