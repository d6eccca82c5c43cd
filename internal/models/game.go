package models

import "time"

type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

func (c Color) Valid() bool {
	return c == ColorRed || c == ColorBlack
}

// GameConfig is the player-supplied setup of a martingale session.
type GameConfig struct {
	InitialBet float64 `json:"initial_bet" redis:"initial_bet"`
	MaxBet     float64 `json:"max_bet" redis:"max_bet"`
	Target     float64 `json:"target" redis:"target"`
}

type GameStats struct {
	ROI               float64 `json:"roi"`
	ROIFormat         string  `json:"roi_format"`
	NeededRounds      int     `json:"needed_rounds"`
	MaxTries          int     `json:"max_tries"`
	Probability       float64 `json:"probability"`
	ProbabilityFormat *string `json:"probability_format"`
}

// SessionState is the per-session game record. It is passed by value through
// every bet; nothing else holds it.
type SessionState struct {
	Config         GameConfig `json:"config"`
	MaxTries       int        `json:"max_tries"`
	CurrentBet     float64    `json:"current_bet"`
	CurrentRound   int        `json:"current_round"`
	CurrentTries   int        `json:"current_tries"`
	TotalWonRounds int        `json:"total_won_rounds"`
	Earnings       float64    `json:"earnings"`
	RoundHistory   []Color    `json:"round_history"`
	GameOver       bool       `json:"game_over"`
	GameWon        bool       `json:"game_won"`
}

type BetOutcome struct {
	Color         Color `json:"color"`
	UserColor     Color `json:"user_color"`
	BetWon        bool  `json:"bet_won"`
	GameWon       bool  `json:"game_won"`
	RoundContinue bool  `json:"round_continue"`
	GameOver      bool  `json:"game_over"`
}

// Session wraps a SessionState with the bookkeeping the store needs.
type Session struct {
	ID        string       `json:"id" redis:"id"`
	State     SessionState `json:"state"`
	Status    string       `json:"status" redis:"status"` // active, won, lost
	BetCount  int64        `json:"bet_count" redis:"bet_count"`
	CreatedAt time.Time    `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" redis:"updated_at"`
}

const (
	SessionStatusActive = "active"
	SessionStatusWon    = "won"
	SessionStatusLost   = "lost"
)

// BetRecord is one resolved bet as kept in the session's bet log.
type BetRecord struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Round     int        `json:"round"`
	Wager     float64    `json:"wager"`
	Outcome   BetOutcome `json:"outcome"`
	Earnings  float64    `json:"earnings"`
	CreatedAt time.Time  `json:"created_at"`
}
