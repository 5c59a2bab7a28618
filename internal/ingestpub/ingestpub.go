// Package ingestpub publishes contract re-ingestion events so downstream
// consumers (cache invalidation, analytics) learn when a contract's chunk
// generation has changed. Grounded on the teacher's Kafka writer usage in
// internal/orchestrator/kafka.go, generalized from command/response envelopes
// to a single fire-and-forget event type.
package ingestpub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Config selects and configures the Kafka publisher.
type Config struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// ReingestedEvent announces that a contract's chunks were regenerated.
// Consumers should treat OldGeneration chunks as stale once observed.
type ReingestedEvent struct {
	ContractID    string    `json:"contract_id"`
	OldGeneration int       `json:"old_generation"`
	NewGeneration int       `json:"new_generation"`
	ChunkCount    int       `json:"chunk_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher writes ReingestedEvent messages to Kafka. A nil Publisher (or one
// built from a disabled Config) is safe to call: Publish becomes a no-op, so
// callers never need a nil check of their own.
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

// New builds a Kafka-backed Publisher. Returns (nil, nil) when disabled.
func New(cfg Config) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: w, topic: cfg.Topic}, nil
}

// Publish emits a re-ingestion event, keyed by contract ID so all events for
// a contract land on the same partition and preserve ordering.
func (p *Publisher) Publish(ctx context.Context, ev ReingestedEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.ContractID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Str("contract_id", ev.ContractID).Msg("ingestpub_publish_failed")
		return err
	}
	return nil
}

// Close releases the underlying Kafka writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
