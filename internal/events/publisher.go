// Package events publishes booking lifecycle messages to a durable
// RabbitMQ queue. Publishing is best-effort: callers log failures and
// never fail the originating request over them.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const bookingQueue = "booking.events"

// Kinds of booking events.
const (
	KindApproved  = "booking.approved"
	KindCancelled = "booking.cancelled"
)

// BookingEvent is the message body for booking lifecycle changes.
type BookingEvent struct {
	Kind      string    `json:"kind"`
	BookingID string    `json:"booking_id"`
	NIC       string    `json:"nic"`
	StationID string    `json:"station_id"`
	SlotID    string    `json:"slot_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	OccursAt  time.Time `json:"occurs_at"`
}

// Publisher sends booking events over AMQP. A fresh connection is
// dialed per publish so a broker restart never wedges the service.
type Publisher struct {
	url    string
	logger *zap.Logger
}

// NewPublisher returns a publisher for the given AMQP URL.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// Publish declares the durable queue and sends the event as a
// persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(bookingQueue, true, false, false, false, nil); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", bookingQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.Error(err))
	}
	return err
}
