package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"martingale-demo/internal/martingale"
	"martingale-demo/internal/models"
)

// GameEngine runs martingale sessions on top of a SessionStore. Bets on the
// same session are serialized; different sessions proceed independently.
type GameEngine struct {
	store        SessionStore
	source       martingale.Source
	broadcaster  Broadcaster
	ttl          time.Duration
	betRateLimit int

	locks sync.Map // session id -> *sync.Mutex
}

func NewGameEngine(store SessionStore, source martingale.Source, ttl time.Duration, betRateLimit int) *GameEngine {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return &GameEngine{
		store:        store,
		source:       source,
		ttl:          ttl,
		betRateLimit: betRateLimit,
	}
}

func (ge *GameEngine) SetBroadcaster(b Broadcaster) {
	ge.broadcaster = b
}

func (ge *GameEngine) Defaults() models.GameConfig {
	return martingale.ResetConfig()
}

// Stats clamps cfg and derives its statistics. clamped reports whether
// MaxBet had to be raised to InitialBet.
func (ge *GameEngine) Stats(cfg models.GameConfig) (models.GameConfig, models.GameStats, bool) {
	cfg, clamped := martingale.Clamp(cfg)
	return cfg, martingale.ComputeStats(cfg), clamped
}

func (ge *GameEngine) CreateSession(ctx context.Context, cfg models.GameConfig) (*models.Session, error) {
	cfg, _ = martingale.Clamp(cfg)
	if !martingale.Valid(cfg) {
		return nil, fmt.Errorf("%w: initial bet, max bet and target must be positive numbers", ErrInvalidConfig)
	}

	now := time.Now()
	session := &models.Session{
		ID:        models.GenerateSessionID(),
		State:     martingale.StartGame(cfg),
		Status:    models.SessionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ge.store.SaveSession(ctx, session, ge.ttl); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.WithFields(log.Fields{
		"session_id":  session.ID,
		"initial_bet": cfg.InitialBet,
		"max_bet":     cfg.MaxBet,
		"target":      cfg.Target,
		"max_tries":   session.State.MaxTries,
	}).Info("Session started")

	return session, nil
}

func (ge *GameEngine) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return ge.store.GetSession(ctx, id)
}

func (ge *GameEngine) lock(id string) func() {
	m, _ := ge.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// PlaceBet resolves one bet on color for the session id and records it.
func (ge *GameEngine) PlaceBet(ctx context.Context, id string, color models.Color) (*models.Session, *models.BetRecord, error) {
	if !color.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}

	unlock := ge.lock(id)
	defer unlock()

	session, err := ge.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			ge.locks.Delete(id)
		}
		return nil, nil, err
	}

	if session.State.GameOver {
		ge.locks.Delete(id)
		return session, nil, ErrGameOver
	}

	if ge.betRateLimit > 0 {
		allowed, err := ge.store.CheckRateLimit(ctx, "bet:"+id, ge.betRateLimit, time.Minute)
		if err != nil {
			return nil, nil, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return nil, nil, ErrRateLimited
		}
	}

	wager := session.State.CurrentBet
	round := session.State.CurrentRound

	state, outcome := martingale.PlayBet(session.State, color, ge.source)

	session.State = state
	session.BetCount++
	session.UpdatedAt = time.Now()
	if state.GameOver {
		session.Status = models.SessionStatusLost
		if state.GameWon {
			session.Status = models.SessionStatusWon
		}
	}

	if err := ge.store.SaveSession(ctx, session, ge.ttl); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	bet := &models.BetRecord{
		ID:        models.GenerateBetID(),
		SessionID: id,
		Round:     round,
		Wager:     wager,
		Outcome:   *outcome,
		Earnings:  state.Earnings,
		CreatedAt: session.UpdatedAt,
	}
	if err := ge.store.AppendBet(ctx, bet, ge.ttl); err != nil {
		log.WithError(err).WithField("session_id", id).Warn("Failed to record bet")
	}

	fields := log.Fields{
		"session_id": id,
		"round":      round,
		"wager":      models.FormatCurrency(wager),
		"color":      outcome.Color,
		"bet_won":    outcome.BetWon,
	}
	if state.GameOver {
		if err := ge.store.CompleteSession(ctx, id); err != nil {
			log.WithError(err).WithField("session_id", id).Warn("Failed to mark session complete")
		}
		ge.locks.Delete(id)
		fields["status"] = session.Status
		fields["earnings"] = models.FormatCurrency(state.Earnings)
		log.WithFields(fields).Info("Session finished")
	} else {
		log.WithFields(fields).Debug("Bet resolved")
	}

	if ge.broadcaster != nil {
		ge.broadcaster.BroadcastBet(id, bet, state)
	}

	return session, bet, nil
}

func (ge *GameEngine) History(ctx context.Context, id string, limit int64) ([]*models.BetRecord, error) {
	if _, err := ge.store.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return ge.store.GetBets(ctx, id, limit)
}
