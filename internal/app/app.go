package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jr0senblum/honbasho/external/sumodb"
	"github.com/jr0senblum/honbasho/internal/config"
	"github.com/jr0senblum/honbasho/internal/infrastructure/repository/postgres"
	"github.com/jr0senblum/honbasho/internal/interfaces/httpapi"
	"github.com/jr0senblum/honbasho/internal/platform/cache"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
	"github.com/jr0senblum/honbasho/internal/usecase"
	"github.com/jr0senblum/honbasho/internal/workers"
)

// App owns the wired service graph: database, sumodb client, usecases,
// HTTP server, and the background sweep scheduler.
type App struct {
	Server    *http.Server
	Scheduler *workers.Scheduler
	DB        *sqlx.DB
	Logger    *logging.Logger
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	db, err := sqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	logger.Info("database connected", "db", dbNameFromURL(cfg.DBURL))

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.BootstrapSeed(seedCtx, db); err != nil {
		return nil, fmt.Errorf("bootstrap seed: %w", err)
	}

	bashoRepo := postgres.NewBashoRepository(db)
	rikishiRepo := postgres.NewRikishiRepository(db)
	draftRepo := postgres.NewDraftRepository(db)

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	sumoClient := sumodb.NewClient(sumodb.ClientConfig{
		BaseURL:        cfg.SumoDBBaseURL,
		Timeout:        cfg.SumoDBTimeout,
		MaxRetries:     cfg.SumoDBMaxRetries,
		RequestsPerSec: cfg.SumoDBRequestsPerSec,
		Logger:         logger,
	})

	rosterSvc := usecase.NewRosterService(bashoRepo, rikishiRepo, sumoClient, store, logger)
	prizeSvc := usecase.NewPrizeService(draftRepo, rikishiRepo, sumoClient, logger)
	resultsSvc := usecase.NewResultsService(bashoRepo, draftRepo, rosterSvc, prizeSvc, sumoClient, store, logger)

	handler := httpapi.NewHandler(rosterSvc, resultsSvc, prizeSvc, slogLogger)
	router := httpapi.NewRouter(handler, slogLogger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var scheduler *workers.Scheduler
	if cfg.SweepEnabled {
		scheduler, err = workers.NewScheduler(bashoRepo, draftRepo, rosterSvc, resultsSvc, logger)
		if err != nil {
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		DB:        db,
		Logger:    logger,
	}, nil
}

// Close releases the app's long-lived resources in reverse wiring order.
func (a *App) Close() error {
	var firstErr error
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = a.Logger.Sync()
	return firstErr
}

func slogLevel(level logging.Level) slog.Level {
	switch level {
	case logging.LevelDebug:
		return slog.LevelDebug
	case logging.LevelWarn:
		return slog.LevelWarn
	case logging.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
