package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"martingale-demo/internal/models"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) CompleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) AppendBet(ctx context.Context, bet *models.BetRecord, ttl time.Duration) error {
	args := m.Called(ctx, bet, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) GetBets(ctx context.Context, sessionID string, limit int64) ([]*models.BetRecord, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetRecord), args.Error(1)
}

func (m *MockSessionStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastBet(sessionID string, bet *models.BetRecord, state models.SessionState) {
	m.Called(sessionID, bet, state)
}
