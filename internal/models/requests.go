package models

type CreateSessionRequest struct {
	InitialBet float64 `json:"initial_bet" binding:"required"`
	MaxBet     float64 `json:"max_bet" binding:"required"`
	Target     float64 `json:"target" binding:"required"`
}

func (r *CreateSessionRequest) Config() GameConfig {
	return GameConfig{
		InitialBet: r.InitialBet,
		MaxBet:     r.MaxBet,
		Target:     r.Target,
	}
}

type PlaceBetRequest struct {
	Color Color `json:"color" binding:"required"`
}

type BetResponse struct {
	Outcome      BetOutcome   `json:"outcome"`
	State        SessionState `json:"state"`
	Banner       string       `json:"banner"`
	Message      string       `json:"message"`
	MessageClass string       `json:"message_class"`
}
