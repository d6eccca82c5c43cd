package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"martingale-demo/internal/config"
	"martingale-demo/internal/models"
)

type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := fmt.Sprintf(KeySession, session.ID)
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (s *RedisService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	key := fmt.Sprintf(KeySession, id)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (s *RedisService) CompleteSession(ctx context.Context, id string) error {
	score := float64(time.Now().Unix())
	if err := s.client.ZAdd(ctx, KeyCompletedSessions, redis.Z{
		Score:  score,
		Member: id,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to completed sessions: %w", err)
	}

	s.client.ZRemRangeByRank(ctx, KeyCompletedSessions, 0, -MaxCompletedLog-1)

	return nil
}

func (s *RedisService) AppendBet(ctx context.Context, bet *models.BetRecord, ttl time.Duration) error {
	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %w", err)
	}

	key := fmt.Sprintf(KeySessionBets, bet.SessionID)

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, MaxBetLog-1)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append bet: %w", err)
	}

	return nil
}

func (s *RedisService) GetBets(ctx context.Context, sessionID string, limit int64) ([]*models.BetRecord, error) {
	if limit <= 0 || limit > MaxBetLog {
		limit = DefaultHistorySize
	}

	key := fmt.Sprintf(KeySessionBets, sessionID)

	items, err := s.client.LRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	bets := make([]*models.BetRecord, 0, len(items))
	for _, item := range items {
		var bet models.BetRecord
		if err := json.Unmarshal([]byte(item), &bet); err != nil {
			log.WithError(err).WithField("session_id", sessionID).Warn("Skipping malformed bet log entry")
			continue
		}
		bets = append(bets, &bet)
	}

	return bets, nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := fmt.Sprintf(KeyRateLimit, key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if count == 1 {
		s.client.Expire(ctx, k, window)
	}

	return count <= int64(limit), nil
}

// DeleteSession removes a session and its bet log.
func (s *RedisService) DeleteSession(ctx context.Context, id string) error {
	return s.client.Del(ctx,
		fmt.Sprintf(KeySession, id),
		fmt.Sprintf(KeySessionBets, id),
	).Err()
}

func (s *RedisService) ClearRateLimit(ctx context.Context, key string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyRateLimit, key)).Err()
}
