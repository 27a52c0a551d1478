package awaken

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies the attempt rolls. Each awakening attempt takes exactly
// one value r in [0, 1) and succeeds when r <= chance + pity bonus, so the
// order of Float64 calls is the order of attempts across an item and all the
// fodder produced for it.
type RandomSource interface {
	Float64() float64
}

// attemptRoller draws attempt rolls from the operating system. It is the
// source used when a run is not seeded.
type attemptRoller struct{}

func (attemptRoller) Float64() float64 {
	var b [8]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits give every representable step in [0, 1)
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}

// DefaultRNG is the source for unseeded simulations.
func DefaultRNG() RandomSource { return attemptRoller{} }

// trialReplay replays the same attempt rolls for the same seed, so a seeded
// batch of trials yields identical costs on every run.
type trialReplay struct{ pcg *rand.Rand }

// NewSeededRNG returns a reproducible source. Two sources built from one seed
// hand out identical roll sequences, which is what lets a policy compared
// against itself draw on every trial.
func NewSeededRNG(seed uint64) RandomSource {
	return &trialReplay{pcg: rand.New(rand.NewPCG(seed, 0))}
}

func (t *trialReplay) Float64() float64 { return t.pcg.Float64() }
