// Package events relays deal lifecycle events from the outbox table to Kafka.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	applog "farmdirect/internal/log"
	"farmdirect/internal/repos"
)

const (
	DealCreated       = "deal.created"
	DealNegotiated    = "deal.negotiated"
	DealOfferAccepted = "deal.offer_accepted"
	DealStatusChanged = "deal.status_changed"
)

// Writer is the subset of *kafka.Writer the relay needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter builds a writer that keys messages by deal id so one deal's
// events land on one partition in order.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
}

type Relay struct {
	Events    *repos.EventRepo
	Writer    Writer
	BatchSize int
	Interval  time.Duration
}

func NewRelay(ev *repos.EventRepo, w Writer, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{Events: ev, Writer: w, BatchSize: 100, Interval: interval}
}

// Flush publishes one batch of pending events and marks them published.
// Nothing is marked when the write fails, so the batch is retried next tick.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	rows, err := r.Events.Pending(ctx, r.BatchSize)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	msgs := make([]kafka.Message, 0, len(rows))
	seqs := make([]int64, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(row.DealID),
			Value: []byte(row.Payload),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(row.EventType)},
				{Key: "seq", Value: []byte(strconv.FormatInt(row.Seq, 10))},
			},
		})
		seqs = append(seqs, row.Seq)
	}
	if err := r.Writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, err
	}
	if err := r.Events.MarkPublished(ctx, seqs); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Run flushes on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := r.Flush(ctx)
			if err != nil {
				applog.Background("error", "outbox.flush.fail", err, nil)
				continue
			}
			if n > 0 {
				applog.Background("info", "outbox.flush", nil, map[string]any{"published": n})
			}
		}
	}
}
