// Package events publishes order events to Kafka through a transactional
// outbox: the event row is committed with the order, and this poller
// drains unpublished rows, so no order is ever created without its event.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/order"
	"github.com/segmentio/kafka-go"
)

// Writer is the slice of kafka.Writer the poller uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPoller struct {
	tick      time.Duration
	batchSize int
	repo      order.Repository
	writer    Writer
	log       *slog.Logger
}

func NewOutboxPoller(repo order.Repository, log *slog.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		tick:      time.Second,
		batchSize: 100,
		repo:      repo,
		writer:    w,
		log:       log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) publishPending(ctx context.Context) {
	evs, err := p.repo.GetUnpublishedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", "error", err)
		return
	}

	for _, ev := range evs {
		if err := p.publish(ctx, ev); err != nil {
			p.log.Error("failed to publish outbox event", "event_id", ev.ID, "error", err)
			continue
		}

		if err := p.repo.MarkEventPublished(ctx, ev.ID); err != nil {
			// The event will be republished next tick; consumers must
			// tolerate duplicates.
			p.log.Error("failed to mark outbox event published", "event_id", ev.ID, "error", err)
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, ev *order.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(ev.OrderID.String()), // order_id keeps per-order ordering
		Value: ev.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
