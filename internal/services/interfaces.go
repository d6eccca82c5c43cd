package services

import (
	"context"
	"errors"
	"time"

	"martingale-demo/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidConfig   = errors.New("invalid game config")
	ErrInvalidColor    = errors.New("invalid color")
	ErrGameOver        = errors.New("game is over")
	ErrRateLimited     = errors.New("bet rate limit exceeded")
)

// SessionStore persists sessions and their bet logs.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	// GetSession returns ErrSessionNotFound for unknown or expired ids.
	GetSession(ctx context.Context, id string) (*models.Session, error)
	CompleteSession(ctx context.Context, id string) error
	AppendBet(ctx context.Context, bet *models.BetRecord, ttl time.Duration) error
	// GetBets returns the newest bets first.
	GetBets(ctx context.Context, sessionID string, limit int64) ([]*models.BetRecord, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
