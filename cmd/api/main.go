package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jwebster45206/campaign-engine/internal/config"
	"github.com/jwebster45206/campaign-engine/internal/handlers"
	"github.com/jwebster45206/campaign-engine/internal/logger"
	"github.com/jwebster45206/campaign-engine/internal/middleware"
	"github.com/jwebster45206/campaign-engine/internal/services/events"
	"github.com/jwebster45206/campaign-engine/internal/session"
	"github.com/jwebster45206/campaign-engine/internal/storage"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Campaign Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_driver", cfg.StorageDriver)

	chain := levels.DefaultChain()
	reg, err := loadRegistry(cfg.QuestDataDir)
	if err != nil {
		log.Error("Failed to load quest registry", "error", err)
		os.Exit(1)
	}
	log.Info("Quest registry loaded", "quests", reg.Len(), "levels", chain.Len())

	var store storage.Storage
	var broadcaster *events.Broadcaster
	switch cfg.StorageDriver {
	case "redis":
		redisStore := storage.NewRedisStore(cfg.RedisURL, log)
		store = redisStore
		broadcaster = events.NewBroadcaster(redisStore.Client(), log)
		log.Info("Using Redis storage", "addr", cfg.RedisURL)
	case "sqlite":
		sqliteStore, err := storage.NewSQLiteStore(cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		store = sqliteStore
		log.Info("Using SQLite storage", "path", cfg.SQLitePath)
	case "memory":
		store = storage.NewMemoryStore()
		log.Info("Using in-memory storage")
	default:
		log.Error("Invalid storage driver", "driver", cfg.StorageDriver, "supported", []string{"memory", "redis", "sqlite"})
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	sessions := session.NewManager(reg, chain, store, broadcaster, cfg.TickHz, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	campaignHandler := handlers.NewCampaignHandler(sessions, log)
	mux.Handle("/v1/campaign", campaignHandler)
	mux.Handle("/v1/campaign/", campaignHandler)

	levelsHandler := handlers.NewLevelsHandler(chain, log)
	mux.Handle("/v1/levels", levelsHandler)

	// SSE needs Redis Pub/Sub; the endpoint is only wired when available.
	if redisStore, ok := store.(*storage.RedisStore); ok {
		eventsHandler := handlers.NewEventsHandler(redisStore.Client(), log)
		mux.Handle("/v1/events/campaign/", eventsHandler)
	}

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so SSE streams are not cut off.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	sessions.Close()
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// loadRegistry builds the quest registry from the built-in campaign plus any
// JSON definition files in dataDir.
func loadRegistry(dataDir string) (*quest.Registry, error) {
	quests := quest.DefaultQuests()
	if dataDir != "" {
		paths, err := filepath.Glob(filepath.Join(dataDir, "*.json"))
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			loaded, err := quest.LoadFile(path)
			if err != nil {
				return nil, err
			}
			quests = append(quests, loaded...)
		}
	}
	return quest.NewRegistry(quests)
}
