package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"martingale-demo/internal/models"
)

type memoryEntry struct {
	session   models.Session
	bets      []*models.BetRecord // newest first
	expiresAt time.Time
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps sessions in process. It is the default store for local
// runs and is safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]*memoryEntry
	completed []string
	limits    map[string]*rateWindow
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		limits:   make(map[string]*rateWindow),
		now:      time.Now,
	}
}

func (s *MemoryStore) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[session.ID]
	if !ok {
		entry = &memoryEntry{}
		s.sessions[session.ID] = entry
	}
	entry.session = *session
	entry.session.State.RoundHistory = append([]models.Color(nil), session.State.RoundHistory...)
	entry.expiresAt = s.now().Add(ttl)

	return nil
}

func (s *MemoryStore) lookup(id string) (*memoryEntry, bool) {
	entry, ok := s.sessions[id]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry, true
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session := entry.session
	session.State.RoundHistory = append([]models.Color{}, entry.session.State.RoundHistory...)
	return &session, nil
}

func (s *MemoryStore) CompleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed = append(s.completed, id)
	if len(s.completed) > MaxCompletedLog {
		s.completed = s.completed[len(s.completed)-MaxCompletedLog:]
	}
	return nil
}

func (s *MemoryStore) AppendBet(ctx context.Context, bet *models.BetRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(bet.SessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, bet.SessionID)
	}

	b := *bet
	entry.bets = append([]*models.BetRecord{&b}, entry.bets...)
	if len(entry.bets) > MaxBetLog {
		entry.bets = entry.bets[:MaxBetLog]
	}
	return nil
}

func (s *MemoryStore) GetBets(ctx context.Context, sessionID string, limit int64) ([]*models.BetRecord, error) {
	if limit <= 0 || limit > MaxBetLog {
		limit = DefaultHistorySize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(sessionID)
	if !ok {
		return []*models.BetRecord{}, nil
	}

	n := min(int(limit), len(entry.bets))
	bets := make([]*models.BetRecord, 0, n)
	for _, b := range entry.bets[:n] {
		c := *b
		bets = append(bets, &c)
	}
	return bets, nil
}

func (s *MemoryStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.limits[key]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		s.limits[key] = w
	}
	w.count++

	return w.count <= limit, nil
}

// Completed returns the ids of finished sessions, oldest first.
func (s *MemoryStore) Completed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.completed...)
}

// Sweep drops expired sessions and rate windows and returns how many sessions
// were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	for key, w := range s.limits {
		if now.After(w.resetAt) {
			delete(s.limits, key)
		}
	}
	return removed
}
