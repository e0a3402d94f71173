package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/cinema-ledger/internal/config"
	"github.com/iliyamo/cinema-ledger/internal/database"
	"github.com/iliyamo/cinema-ledger/internal/logger"
	"github.com/iliyamo/cinema-ledger/internal/metrics"
	"github.com/iliyamo/cinema-ledger/internal/queue"
	"github.com/iliyamo/cinema-ledger/internal/repository"
	"github.com/iliyamo/cinema-ledger/internal/router"
	"github.com/iliyamo/cinema-ledger/internal/service"
	"github.com/iliyamo/cinema-ledger/internal/utils"
)

func main() {
	cfg, err := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	log := logger.Get()

	gw, closeStore, err := openGateway(cfg, log)
	if err != nil {
		logger.Fatal("failed to open storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer closeStore()

	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()

	m := metrics.New()
	svc := service.NewBookingService(gw,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithPublisher(publisher),
		service.WithPasswordHasher(utils.NewPasswordHasher(cfg.BcryptCost)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = svc.Load(ctx)
	cancel()
	if err != nil {
		logger.Fatal("failed to load state", "error", err)
	}
	for _, d := range svc.CheckConsistency() {
		log.Warn("seat map and ledger disagree", "kind", d.Kind, "movie_id", d.MovieID, "date", d.Date, "seat", d.Seat, "booking_id", d.BookingID)
	}
	if _, err := svc.EnsureDefaultAdmin(context.Background(), cfg.DefaultAdminUser, cfg.DefaultAdminPass); err != nil {
		logger.Fatal("failed to create default admin", "error", err)
	}

	// redis only backs the response cache and the rate limiter
	rdb, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, caching and rate limiting disabled", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	e := router.New(router.Deps{Cfg: cfg, Svc: svc, Redis: rdb, Metrics: m})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.StorageDriver, "events", cfg.EventsDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := svc.Flush(shutdownCtx); err != nil {
		log.Error("final flush failed", "error", err)
	}
	if err := svc.Close(shutdownCtx); err != nil {
		log.Warn("pending booking events not delivered", "error", err)
	}
}

// openGateway selects the persistence backend named by STORAGE_DRIVER.
func openGateway(cfg config.Config, log *slog.Logger) (repository.Gateway, func(), error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case "file":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("create data dir: %w", err)
		}
		return repository.NewFileGateway(cfg.DataDir, log), noop, nil
	case "memory":
		log.Warn("memory storage selected, state is lost on exit")
		return repository.NewMemoryGateway(nil), noop, nil
	case "mysql", "postgres":
		db, err := database.Open(database.Params{
			Driver: cfg.StorageDriver,
			User:   cfg.DBUser,
			Pass:   cfg.DBPass,
			Host:   cfg.DBHost,
			Port:   cfg.DBPort,
			Name:   cfg.DBName,
		})
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() { closeQuietly(db) }
		dialect := repository.DialectMySQL
		if cfg.StorageDriver == "postgres" {
			dialect = repository.DialectPostgres
		}
		gw := repository.NewSQLGateway(db, dialect, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := gw.EnsureSchema(ctx); err != nil {
			closeDB()
			return nil, noop, err
		}
		return gw, closeDB, nil
	}
	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// newPublisher selects where booking events go. Events are best effort, so
// an unknown driver falls back to none.
func newPublisher(cfg config.Config, log *slog.Logger) (queue.Publisher, func()) {
	switch cfg.EventsDriver {
	case "amqp":
		return queue.NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitQueue), func() {}
	case "kafka":
		p := queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn("kafka writer close failed", "error", err)
			}
		}
	}
	return queue.NopPublisher{}, func() {}
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Get().Warn("database close failed", "error", err)
	}
}
