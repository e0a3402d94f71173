package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
)

// BookingLog appends one line per booking event to a file.
type BookingLog struct {
	Path string
	mu   sync.Mutex
}

func NewBookingLog(path string) *BookingLog {
	return &BookingLog{Path: path}
}

// FormatLine renders an event as a single human-friendly line.
func FormatLine(ev BookingEvent) string {
	line := fmt.Sprintf("[%s] %s | event_id=%s | booking_id=%d | customer=%q | movie_id=%d | movie=%q | show=%s %s | seat=%s",
		ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.EventID, ev.BookingID, ev.Customer,
		ev.MovieID, ev.MovieTitle, ev.Date, ev.Time, ev.Seat)
	if ev.PreviousSeat != "" {
		line += " | previous_seat=" + ev.PreviousSeat
	}
	return line + fmt.Sprintf(" | price=%s | payment=%q\n", ev.Price, ev.PaymentMode)
}

// HandleMessage decodes a JSON event and appends it to the log.
func (l *BookingLog) HandleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event is missing type or booking id")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// ConsumeAMQP connects to RabbitMQ, declares the durable queue and feeds
// every delivery to sink. It reconnects with exponential backoff and
// returns only when ctx is cancelled. Messages that fail are rejected
// without requeue so a poison message cannot spin the loop.
func ConsumeAMQP(ctx context.Context, url, queueName string, sink *BookingLog, log *slog.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("booking-consumer: failed to dial broker", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queueName, sink, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("booking-consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName string, sink *BookingLog, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("booking-consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := sink.HandleMessage(d.Body); err != nil {
			log.Error("booking-consumer: handle message failed", "message_id", d.MessageId, "error", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// ConsumeKafka reads the topic as part of groupID and feeds each message to
// sink. Undecodable messages are logged and committed so the group moves on.
func ConsumeKafka(ctx context.Context, brokers []string, groupID, topic string, sink *BookingLog, log *slog.Logger) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}
		if err := sink.HandleMessage(msg.Value); err != nil {
			log.Error("booking-consumer: handle message failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
