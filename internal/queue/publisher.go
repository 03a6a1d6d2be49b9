package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/orgatagova/orgatagova/internal/config"
	"github.com/orgatagova/orgatagova/internal/slogx"
)

// Publisher publishes CarpoolEvents to a durable RabbitMQ queue.  Each
// Publish opens its own connection so a broker outage never leaves stale
// channels behind; errors are logged and returned so the caller can choose
// to ignore them.
type Publisher struct {
	url   string
	queue string
}

// NewPublisher returns a Publisher for cfg.URL and cfg.Queue.
func NewPublisher(cfg config.EventsConfig) *Publisher {
	return &Publisher{url: cfg.URL, queue: cfg.Queue}
}

// Publish sends ev as a persistent JSON message routed to the events queue.
func (p *Publisher) Publish(ctx context.Context, ev CarpoolEvent) error {
	log := slogx.FromContext(ctx).With("event", ev.Type, "carpool_id", ev.CarpoolID)

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warn("rabbitmq: dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq: queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Warn("rabbitmq: marshal event failed", "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.Warn("rabbitmq: publish failed", "err", err)
		return err
	}
	return nil
}
