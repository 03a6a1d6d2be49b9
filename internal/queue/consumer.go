package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/orgatagova/orgatagova/internal/config"
)

const eventLogFile = "carpool.log"

// Consumer drains the carpool events queue and appends one line per event
// to <LogDir>/carpool.log.
type Consumer struct {
	cfg config.EventsConfig
	log *slog.Logger
}

func NewConsumer(cfg config.EventsConfig, log *slog.Logger) *Consumer {
	return &Consumer{cfg: cfg, log: log}
}

// Run connects to RabbitMQ, declares the events queue (durable) and consumes
// messages until ctx is cancelled.  Broken connections are re-dialled with
// exponential backoff capped at 30s.  Messages that cannot be handled are
// rejected without requeue so a poison message cannot stall the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			c.log.Warn("event consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("event consumer: consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("event consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(c.cfg.LogDir, d.Body); err != nil {
				c.log.Error("event consumer: handle message failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one CarpoolEvent and appends it to dir/carpool.log.
func HandleMessage(dir string, body []byte) error {
	var ev CarpoolEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.CarpoolID == "" {
		return errors.New("event missing type or carpool_id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, eventLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders ev as a single human-friendly log line.
func FormatEvent(ev CarpoolEvent) string {
	line := fmt.Sprintf("[%s] %s | carpool_id=%s", ev.OccurredAt, ev.Type, ev.CarpoolID)
	if ev.Title != "" {
		line += fmt.Sprintf(" | title=%q", ev.Title)
	}
	if ev.UserID != "" {
		line += " | user_id=" + ev.UserID
	}
	if ev.ActorID != "" {
		line += " | actor_id=" + ev.ActorID
	}
	if ev.AvailableSeats != nil {
		line += fmt.Sprintf(" | available_seats=%d", *ev.AvailableSeats)
	}
	return line + "\n"
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
