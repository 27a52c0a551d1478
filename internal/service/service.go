package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xtding233/awaken-backend/internal/awaken"
	"github.com/xtding233/awaken-backend/internal/config"
	"github.com/xtding233/awaken-backend/internal/logger"
)

var (
	ErrUnknownPolicy = errors.New("unknown policy")
	ErrTooManyTrials = errors.New("trials above limit")
)

// DefaultMaxTrials bounds trials per request unless MaxTrials is changed.
const DefaultMaxTrials = 100000

// Service resolves profile configs and runs simulations for the HTTP and gRPC front ends.
type Service struct {
	Resolver  config.Resolver
	MaxTrials int // <= 0 means unbounded
}

func New(r config.Resolver) *Service {
	return &Service{Resolver: r, MaxTrials: DefaultMaxTrials}
}

// SimulateRequest selects a policy from a profile. Nil fields fall back to the config.
type SimulateRequest struct {
	Profile string
	Policy  string
	Goal    *int
	Trials  *int
	Seed    *uint64
}

type SimulateResult struct {
	RunID  string
	Policy string
	Goal   int
	Trials int
	Seed   uint64
	Stats  awaken.Stats
}

// CompareRequest names two policies; empty names use the profile's compare section.
type CompareRequest struct {
	Profile string
	A       string
	B       string
	Goal    *int
	Trials  *int
	Seed    *uint64
}

type CompareResult struct {
	RunID      string
	A, B       string
	PolicyA    *awaken.Policy
	PolicyB    *awaken.Policy
	Goal       int
	Trials     int
	Seed       uint64
	Comparison awaken.Comparison
}

// IsConfigError reports whether err stems from bad input rather than a server fault.
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrUnknownPolicy,
		ErrTooManyTrials,
		config.ErrInvalidConfig,
		config.ErrBadProfile,
		awaken.ErrGapOutOfRange,
		awaken.ErrNegativeStar,
		awaken.ErrFodderCycle,
		awaken.ErrInvalidTable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (SimulateResult, error) {
	params, err := s.resolve(req.Profile, req.Goal, req.Trials, req.Seed)
	if err != nil {
		return SimulateResult{}, err
	}
	name := req.Policy
	if name == "" {
		name = config.DefaultPolicyName
	}
	policy, err := lookup(params, name)
	if err != nil {
		return SimulateResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SimulateResult{}, err
	}

	runID := uuid.New().String()
	logger.Info("simulate", "run_id", runID, "profile", req.Profile, "policy", name,
		"goal", params.Goal, "trials", params.Trials, "seed", params.Seed)

	stats, err := awaken.NewSimulator(params.Table, rngFor(params.Seed)).Run(policy, params.Goal, params.Trials)
	if err != nil {
		logger.Warning("simulate failed", "run_id", runID, "err", err)
		return SimulateResult{}, err
	}
	logger.Debug("simulate done", "run_id", runID, "mean", stats.Mean, "p90", stats.P90)
	return SimulateResult{
		RunID:  runID,
		Policy: name,
		Goal:   params.Goal,
		Trials: params.Trials,
		Seed:   params.Seed,
		Stats:  stats,
	}, nil
}

func (s *Service) Compare(ctx context.Context, req CompareRequest) (CompareResult, error) {
	params, err := s.resolve(req.Profile, req.Goal, req.Trials, req.Seed)
	if err != nil {
		return CompareResult{}, err
	}
	nameA, nameB := params.CompareA, params.CompareB
	if req.A != "" {
		nameA = req.A
	}
	if req.B != "" {
		nameB = req.B
	}
	a, err := lookup(params, nameA)
	if err != nil {
		return CompareResult{}, err
	}
	b, err := lookup(params, nameB)
	if err != nil {
		return CompareResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return CompareResult{}, err
	}

	runID := uuid.New().String()
	logger.Info("compare", "run_id", runID, "profile", req.Profile, "a", nameA, "b", nameB,
		"goal", params.Goal, "trials", params.Trials, "seed", params.Seed)

	c, err := awaken.NewSimulator(params.Table, rngFor(params.Seed)).Compare(a, b, params.Goal, params.Trials)
	if err != nil {
		logger.Warning("compare failed", "run_id", runID, "err", err)
		return CompareResult{}, err
	}
	logger.Info("compare done", "run_id", runID, "wins", c.Wins, "losses", c.Losses, "draws", c.Draws)
	return CompareResult{
		RunID:      runID,
		A:          nameA,
		B:          nameB,
		PolicyA:    a,
		PolicyB:    b,
		Goal:       params.Goal,
		Trials:     params.Trials,
		Seed:       params.Seed,
		Comparison: c,
	}, nil
}

func (s *Service) resolve(profile string, goal, trials *int, seed *uint64) (config.EngineParams, error) {
	_, params, err := s.Resolver.Resolve(profile, config.Overrides{Goal: goal, Trials: trials, Seed: seed})
	if err != nil {
		return params, err
	}
	// checked after resolving so config files are bounded too
	if s.MaxTrials > 0 && params.Trials > s.MaxTrials {
		return params, fmt.Errorf("%w: %d > %d", ErrTooManyTrials, params.Trials, s.MaxTrials)
	}
	return params, nil
}

func lookup(params config.EngineParams, name string) (*awaken.Policy, error) {
	p, ok := params.Policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return p, nil
}

// rngFor returns a seeded source, or the crypto source when seed is 0.
func rngFor(seed uint64) awaken.RandomSource {
	if seed == 0 {
		return awaken.DefaultRNG()
	}
	return awaken.NewSeededRNG(seed)
}
