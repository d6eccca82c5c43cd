package services

import "time"

const (
	KeySession           = "martingale:session:%s"
	KeySessionBets       = "martingale:session:%s:bets"
	KeyCompletedSessions = "martingale:completed_sessions"
	KeyRateLimit         = "martingale:ratelimit:%s"

	TTLSession = 24 * time.Hour

	MaxBetLog          = 100
	MaxCompletedLog    = 1000
	DefaultHistorySize = 50
)
