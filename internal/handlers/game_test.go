package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martingale-demo/internal/config"
	"martingale-demo/internal/handlers"
	"martingale-demo/internal/martingale"
	"martingale-demo/internal/middleware"
	"martingale-demo/internal/models"
	"martingale-demo/internal/services"
)

func setupRouter(t *testing.T, source martingale.Source) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryStore()
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "test", SessionTTL: time.Hour})
	engine := services.NewGameEngine(store, source, time.Hour, 0)
	gameHandler := handlers.NewGameHandler(engine, jwtService)
	wsHandler := handlers.NewWebSocketHandler(engine)

	router := gin.New()
	router.Use(middleware.CORSMiddleware())
	api := router.Group("/api")
	api.GET("/config/defaults", gameHandler.GetDefaults)
	api.GET("/stats", gameHandler.GetStats)
	api.POST("/sessions", middleware.RateLimitMiddleware(store, 3, time.Minute), gameHandler.CreateSession)

	session := api.Group("/session")
	session.Use(middleware.AuthMiddleware(jwtService))
	session.GET("", gameHandler.GetSession)
	session.POST("/bet", gameHandler.PlaceBet)
	session.GET("/history", gameHandler.GetHistory)
	session.GET("/ws", wsHandler.HandleWebSocket)

	return router
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	w, body := do(t, router, http.MethodPost, "/api/sessions", "", gin.H{
		"initial_bet": 10, "max_bet": 100, "target": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func TestGetDefaults(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))

	w, body := do(t, router, http.MethodGet, "/api/config/defaults", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cfg := body["config"].(map[string]any)
	assert.Equal(t, 10.0, cfg["initial_bet"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, 4.0, stats["max_tries"])
	assert.Equal(t, "0.52 in 1", stats["probability_format"])
}

func TestGetStats(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))

	t.Run("clamps max bet", func(t *testing.T) {
		w, body := do(t, router, http.MethodGet, "/api/stats?initialBet=50&maxBet=20&target=100", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["clamped"])
		assert.Equal(t, 50.0, body["config"].(map[string]any)["max_bet"])
	})

	t.Run("non-numeric input fails soft", func(t *testing.T) {
		w, body := do(t, router, http.MethodGet, "/api/stats?initialBet=ten&maxBet=100&target=100", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := body["stats"].(map[string]any)
		assert.Equal(t, 0.0, stats["needed_rounds"])
		assert.Equal(t, "0%", stats["roi_format"])
		assert.Nil(t, stats["probability_format"])
		assert.Nil(t, body["config"].(map[string]any)["initial_bet"])
	})
}

func TestGetStatsOverflowingValuesFailSoft(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))

	w, body := do(t, router, http.MethodGet, "/api/stats?initialBet=1e-10&maxBet=1e-10&target=1e308", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, body, "response body must be valid JSON")

	stats := body["stats"].(map[string]any)
	assert.Equal(t, 0.0, stats["roi"])
	assert.Equal(t, "0%", stats["roi_format"])
	assert.Equal(t, 0.0, stats["needed_rounds"])
	assert.Equal(t, 0.0, stats["max_tries"])
	assert.Nil(t, stats["probability_format"])

	w, _ = do(t, router, http.MethodPost, "/api/sessions", "", gin.H{
		"initial_bet": 1e-300, "max_bet": 1e300, "target": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))

	w, _ := do(t, router, http.MethodPost, "/api/sessions", "", gin.H{"initial_bet": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/sessions", "", gin.H{
		"initial_bet": -10, "max_bet": 100, "target": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionRateLimit(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))
	for i := 0; i < 3; i++ {
		createSession(t, router)
	}

	w, _ := do(t, router, http.MethodPost, "/api/sessions", "", gin.H{
		"initial_bet": 10, "max_bet": 100, "target": 100,
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSessionRequiresToken(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))

	w, _ := do(t, router, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/session", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlayUntilLoss(t *testing.T) {
	router := setupRouter(t, martingale.SourceFunc(func() bool { return false }))
	token := createSession(t, router)

	w, body := do(t, router, http.MethodPost, "/api/session/bet", token, gin.H{"color": "red"})
	require.Equal(t, http.StatusOK, w.Code)
	result := body["result"].(map[string]any)
	assert.Equal(t, "Black. No luck! You can still try", result["banner"])
	assert.Equal(t, "bad-message", result["message_class"])
	assert.Equal(t, 20.0, result["state"].(map[string]any)["current_bet"])

	for i := 0; i < 3; i++ {
		w, body = do(t, router, http.MethodPost, "/api/session/bet", token, gin.H{"color": "red"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	result = body["result"].(map[string]any)
	assert.Equal(t, "You ran out of money. You are now in debt and broke!", result["message"])
	assert.Equal(t, true, result["outcome"].(map[string]any)["game_over"])

	w, _ = do(t, router, http.MethodPost, "/api/session/bet", token, gin.H{"color": "red"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = do(t, router, http.MethodGet, "/api/session/history?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["count"])

	w, body = do(t, router, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SessionStatusLost, body["session"].(map[string]any)["status"])
}

func TestPlaceBetRejectsUnknownColor(t *testing.T) {
	router := setupRouter(t, martingale.NewSource(1))
	token := createSession(t, router)

	w, _ := do(t, router, http.MethodPost, "/api/session/bet", token, gin.H{"color": "green"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketReceivesBets(t *testing.T) {
	router := setupRouter(t, martingale.SourceFunc(func() bool { return true }))
	srv := httptest.NewServer(router)
	defer srv.Close()

	token := createSession(t, router)

	url := "ws" + srv.URL[len("http"):] + "/api/session/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg handlers.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "SESSION_STATE", msg.Type)

	require.NoError(t, conn.WriteJSON(handlers.Message{Type: "PING"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "PONG", msg.Type)

	// the PONG proves the client is registered with the hub
	w, _ := do(t, router, http.MethodPost, "/api/session/bet", token, gin.H{"color": "red"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "BET_PLACED", msg.Type)
	assert.NotEmpty(t, msg.SessionID)
}
