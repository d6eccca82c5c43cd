// Package martingale holds the pure game logic of the martingale demo: deriving
// session statistics from a configuration and resolving single bets.
package martingale

import (
	"fmt"
	"math"

	"martingale-demo/internal/models"
)

const (
	DefaultInitialBet = 10
	DefaultMaxBet     = 100
	DefaultTarget     = 100

	// maxRounds keeps NeededRounds exactly representable and inside int.
	maxRounds = 1 << 53
)

func ResetConfig() models.GameConfig {
	return models.GameConfig{
		InitialBet: DefaultInitialBet,
		MaxBet:     DefaultMaxBet,
		Target:     DefaultTarget,
	}
}

// Clamp raises MaxBet to InitialBet when it is lower. The second return value
// reports whether MaxBet was changed.
func Clamp(cfg models.GameConfig) (models.GameConfig, bool) {
	if cfg.MaxBet < cfg.InitialBet {
		cfg.MaxBet = cfg.InitialBet
		return cfg, true
	}
	return cfg, false
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Valid reports whether every field of cfg is a finite number above zero and
// the ratios the stats derive from them stay finite and in range.
func Valid(cfg models.GameConfig) bool {
	if !positive(cfg.InitialBet) || !positive(cfg.MaxBet) || !positive(cfg.Target) {
		return false
	}

	rounds := cfg.Target / cfg.InitialBet
	if !positive(rounds) || rounds > maxRounds {
		return false
	}
	return positive(cfg.MaxBet/cfg.InitialBet) && positive(ROI(cfg))
}

func ROI(cfg models.GameConfig) float64 {
	if cfg.MaxBet == 0 {
		return 0
	}
	return cfg.Target / cfg.MaxBet * 100
}

func NeededRounds(cfg models.GameConfig) int {
	return int(math.Ceil(cfg.Target / cfg.InitialBet))
}

// MaxTries is the number of consecutive bets, doubling from InitialBet, that
// fit under MaxBet.
func MaxTries(cfg models.GameConfig) int {
	return int(math.Floor(math.Log2(cfg.MaxBet/cfg.InitialBet) + 1))
}

// Probability returns (1 - 0.5^maxTries)^neededRounds.
//
// This is an approximation carried over from the demo: it treats the chance of
// surviving one round's worst case as the per-round win chance and does not
// model the session as a verified probability.
func Probability(maxTries, neededRounds int) float64 {
	return math.Pow(1-math.Pow(0.5, float64(maxTries)), float64(neededRounds))
}

// ComputeStats derives the session statistics for cfg. It never fails: an
// invalid configuration yields zeroed stats with a nil ProbabilityFormat.
func ComputeStats(cfg models.GameConfig) models.GameStats {
	if !Valid(cfg) {
		return models.GameStats{ROIFormat: "0%"}
	}

	roi := ROI(cfg)
	rounds := NeededRounds(cfg)
	tries := MaxTries(cfg)
	p := Probability(tries, rounds)
	pf := fmt.Sprintf("%.2f in 1", p)

	return models.GameStats{
		ROI:               roi,
		ROIFormat:         fmt.Sprintf("%.2f%%", roi),
		NeededRounds:      rounds,
		MaxTries:          tries,
		Probability:       p,
		ProbabilityFormat: &pf,
	}
}
