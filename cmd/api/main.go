package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"martingale-demo/internal/config"
	"martingale-demo/internal/handlers"
	"martingale-demo/internal/martingale"
	"martingale-demo/internal/middleware"
	"martingale-demo/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	setupLogging(cfg)

	var store services.SessionStore
	switch cfg.Store {
	case config.StoreRedis:
		redisService, err := services.NewRedisService(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisService.Close()
		store = redisService
	default:
		memoryStore := services.NewMemoryStore()
		store = memoryStore

		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()

			for range ticker.C {
				if n := memoryStore.Sweep(); n > 0 {
					log.WithField("removed", n).Debug("Swept expired sessions")
				}
			}
		}()
	}

	jwtService := services.NewJWTService(cfg)
	gameEngine := services.NewGameEngine(store, martingale.NewSource(cfg.RandomSeed), cfg.SessionTTL, cfg.BetRateLimit)

	router := newRouter(store, gameEngine, jwtService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "store": cfg.Store}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("Received shutdown signal, shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}
}

func newRouter(store services.SessionStore, gameEngine *services.GameEngine, jwtService *services.JWTService) *gin.Engine {
	gameHandler := handlers.NewGameHandler(gameEngine, jwtService)
	wsHandler := handlers.NewWebSocketHandler(gameEngine)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	api := router.Group("/api")
	{
		api.GET("/config/defaults", gameHandler.GetDefaults)
		api.GET("/stats", gameHandler.GetStats)
		api.POST("/sessions", middleware.RateLimitMiddleware(store, 30, time.Minute), gameHandler.CreateSession)

		session := api.Group("/session")
		session.Use(middleware.AuthMiddleware(jwtService))
		{
			session.GET("", gameHandler.GetSession)
			session.POST("/bet", gameHandler.PlaceBet)
			session.GET("/history", gameHandler.GetHistory)
			session.GET("/ws", wsHandler.HandleWebSocket)
		}
	}

	return router
}
