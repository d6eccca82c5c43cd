package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"martingale-demo/internal/models"
	"martingale-demo/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
	jwtService *services.JWTService
}

func NewGameHandler(gameEngine *services.GameEngine, jwtService *services.JWTService) *GameHandler {
	return &GameHandler{
		gameEngine: gameEngine,
		jwtService: jwtService,
	}
}

// configView is a GameConfig safe for JSON: non-finite values become null.
type configView struct {
	InitialBet *float64 `json:"initial_bet"`
	MaxBet     *float64 `json:"max_bet"`
	Target     *float64 `json:"target"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func viewOf(cfg models.GameConfig) configView {
	return configView{
		InitialBet: finite(cfg.InitialBet),
		MaxBet:     finite(cfg.MaxBet),
		Target:     finite(cfg.Target),
	}
}

// parseAmount reads a numeric query value; anything unparsable is NaN so
// the stats degrade instead of failing the request.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (h *GameHandler) GetDefaults(c *gin.Context) {
	cfg, stats, _ := h.gameEngine.Stats(h.gameEngine.Defaults())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  viewOf(cfg),
		"stats":   stats,
	})
}

func (h *GameHandler) GetStats(c *gin.Context) {
	cfg := models.GameConfig{
		InitialBet: parseAmount(c.Query("initialBet")),
		MaxBet:     parseAmount(c.Query("maxBet")),
		Target:     parseAmount(c.Query("target")),
	}

	cfg, stats, clamped := h.gameEngine.Stats(cfg)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  viewOf(cfg),
		"stats":   stats,
		"clamped": clamped,
	})
}

func (h *GameHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	session, err := h.gameEngine.CreateSession(c.Request.Context(), req.Config())
	if err != nil {
		writeError(c, "Failed to start game", err)
		return
	}

	token, err := h.jwtService.GenerateToken(session.ID)
	if err != nil {
		writeError(c, "Failed to issue session token", err)
		return
	}

	_, stats, _ := h.gameEngine.Stats(session.State.Config)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"session": session,
		"stats":   stats,
	})
}

func (h *GameHandler) GetSession(c *gin.Context) {
	sessionID := c.GetString("session_id")

	session, err := h.gameEngine.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, "Failed to get session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}

func (h *GameHandler) PlaceBet(c *gin.Context) {
	sessionID := c.GetString("session_id")

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	color, err := models.ParseColor(string(req.Color))
	if err != nil {
		writeError(c, "Failed to place bet", errors.Join(services.ErrInvalidColor, err))
		return
	}

	session, bet, err := h.gameEngine.PlaceBet(c.Request.Context(), sessionID, color)
	if err != nil {
		writeError(c, "Failed to place bet", err)
		return
	}

	outcome := bet.Outcome
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": models.BetResponse{
			Outcome:      outcome,
			State:        session.State,
			Banner:       outcome.Banner(),
			Message:      outcome.Message(),
			MessageClass: outcome.MessageClass(),
		},
	})
}

func (h *GameHandler) GetHistory(c *gin.Context) {
	sessionID := c.GetString("session_id")

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > services.MaxBetLog {
		limit = services.DefaultHistorySize
	}

	bets, err := h.gameEngine.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		writeError(c, "Failed to get bet history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bets":    bets,
		"count":   len(bets),
	})
}

func writeError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidConfig), errors.Is(err, services.ErrInvalidColor):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrGameOver):
		status = http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		status = http.StatusTooManyRequests
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).Error(msg)
	}

	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}
