package services

import "martingale-demo/internal/models"

type Broadcaster interface {
	BroadcastBet(sessionID string, bet *models.BetRecord, state models.SessionState)
}
