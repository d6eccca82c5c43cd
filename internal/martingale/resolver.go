package martingale

import "martingale-demo/internal/models"

// StartGame opens a session for cfg. Callers are expected to validate cfg
// first; an invalid cfg starts with zero tries.
func StartGame(cfg models.GameConfig) models.SessionState {
	cfg, _ = Clamp(cfg)
	tries := ComputeStats(cfg).MaxTries
	return models.SessionState{
		Config:       cfg,
		MaxTries:     tries,
		CurrentBet:   cfg.InitialBet,
		CurrentRound: 1,
		CurrentTries: tries,
		RoundHistory: []models.Color{},
	}
}

// PlayBet resolves one bet on chosen. Once the game is over it returns state
// unchanged and a nil outcome.
func PlayBet(state models.SessionState, chosen models.Color, src Source) (models.SessionState, *models.BetOutcome) {
	if state.GameOver {
		return state, nil
	}

	// copy so the caller's history is never aliased
	history := make([]models.Color, len(state.RoundHistory), len(state.RoundHistory)+1)
	copy(history, state.RoundHistory)
	state.RoundHistory = history

	color := drawColor(src)
	outcome := &models.BetOutcome{
		Color:     color,
		UserColor: chosen,
		BetWon:    color == chosen,
	}

	if outcome.BetWon {
		state.Earnings += state.Config.InitialBet
		outcome.GameWon = state.Earnings >= state.Config.Target
		state.TotalWonRounds++
		if outcome.GameWon {
			outcome.GameOver = true
		} else {
			state.CurrentRound++
			state.CurrentBet = state.Config.InitialBet
			state.CurrentTries = state.MaxTries
			state.RoundHistory = []models.Color{}
		}
	} else {
		state.CurrentTries--
		if state.CurrentTries > 0 {
			state.CurrentBet *= 2
			state.RoundHistory = append(state.RoundHistory, color)
			outcome.RoundContinue = true
		} else {
			outcome.GameOver = true
		}
	}

	state.GameOver = outcome.GameOver
	state.GameWon = outcome.GameWon
	return state, outcome
}
