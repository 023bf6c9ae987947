package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prep_tracker/internal/api"
	"prep_tracker/internal/app/recommend"
	"prep_tracker/internal/app/scraper"
	"prep_tracker/internal/app/service"
	"prep_tracker/internal/common/security"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/config"
	"prep_tracker/internal/platform/database"
	"prep_tracker/internal/platform/kv"
	"prep_tracker/internal/platform/logger"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig

	// 2. Initialize Logger
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("configuration loaded", "storage", cfg.StorageDriver, "port", cfg.APIPort)

	// 3. Initialize JWT
	tokenAuth := security.NewTokenAuth(cfg.JWTKey)

	// 4. Initialize Storage
	store, db := openStorage(cfg, log)
	defer database.Close(db)

	// 5. Initialize Redis (optional; sync locks stay in-process without it)
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := kv.ConnectRedis(bootCtx, cfg)
	bootCancel()
	if err != nil {
		log.Fatal("redis connection failed", "error", err)
	}
	defer kv.CloseRedis(rdb)

	var locker kv.Locker = kv.NewLocalLocker()
	if rdb != nil {
		locker = kv.NewRedisLocker(rdb, log)
		log.Info("redis connected", "addr", cfg.RedisAddr)
	}

	// 6. Initialize Platform Clients
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	renderer := scraper.NewChromeRenderer(cfg.ChromePath, log)
	clients := []scraper.Client{
		scraper.NewLeetCodeClient(cfg.LeetCodeGraphQLURL, httpClient, log),
		scraper.NewGFGClient(renderer, cfg.GFGProfileURL, log),
		scraper.NewTUFClient(renderer, cfg.TUFProfileURL, log),
	}

	// 7. Initialize Recommendation Generator
	var generator recommend.Generator = recommend.NopGenerator{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := recommend.NewGeminiGenerator(log, recommend.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.HTTPClientTimeout,
		})
		if err != nil {
			log.Fatal("gemini generator init failed", "error", err)
		}
		generator = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, recommendations disabled")
	}

	// 8. Initialize Services
	problemService := service.NewProblemService(store, log)
	statsService := service.NewStatsService(store, log)
	syncService := service.NewSyncService(store, clients, locker, service.SyncOptions{
		LockTTL:     cfg.SyncLockTTL,
		Concurrency: cfg.SyncConcurrency,
	}, log)
	credentialService := service.NewCredentialService(store)
	recommendationService := service.NewRecommendationService(store, statsService, generator, log)

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(tokenAuth, problemService, statsService, syncService, credentialService, recommendationService)

	server := &http.Server{
		Addr:        ":" + cfg.APIPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Sync requests render pages in a headless browser.
		WriteTimeout: 200 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not listen", "port", cfg.APIPort, "error", err)
		}
	}()

	<-stop

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
		return
	}
	log.Info("server stopped gracefully")
}

func openStorage(cfg *config.Config, log *logger.Logger) (repository.Storage, *gorm.DB) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStorage(), nil
	case "sqlite":
		db, err = database.ConnectSQLite(cfg, log)
	default:
		db, err = database.Connect(cfg, log)
	}
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("schema migration failed", "error", err)
	}
	return repository.NewGormStorage(db, log), db
}
