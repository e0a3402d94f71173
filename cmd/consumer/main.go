// Command consumer appends booking events from RabbitMQ or Kafka to the
// booking log, one line per event.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/cinema-ledger/internal/config"
	"github.com/iliyamo/cinema-ledger/internal/logger"
	"github.com/iliyamo/cinema-ledger/internal/queue"
)

func main() {
	cfg, err := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	log := logger.WithFields("component", "booking-consumer")

	sink := queue.NewBookingLog(cfg.BookingLogPath)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("consuming booking events", "driver", cfg.EventsDriver, "log", cfg.BookingLogPath)
	switch cfg.EventsDriver {
	case "kafka":
		err = queue.ConsumeKafka(ctx, cfg.KafkaBrokers, "booking-log", cfg.KafkaTopic, sink, log)
	case "amqp":
		err = queue.ConsumeAMQP(ctx, cfg.RabbitURL, cfg.RabbitQueue, sink, log)
	default:
		logger.Fatal("EVENTS_DRIVER must be amqp or kafka for the consumer", "driver", cfg.EventsDriver)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer stopped", "error", err)
	}
	log.Info("consumer stopped")
}
