package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"civiclink/internal/platform/config"
)

// Producer publishes records synchronously to Kafka.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
}

// New creates a producer and makes sure the configured topics exist.
// Returns nil if no brokers are configured (Kafka disabled).
func New(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger, topics ...string) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	p := &Producer{client: client, logger: logger}
	if err := p.EnsureTopics(ctx, topics...); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

// EnsureTopics creates missing topics with one partition. Topics that already
// exist are left alone.
func (p *Producer) EnsureTopics(ctx context.Context, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopics(ctx, 1, -1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create kafka topics: %w", err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create kafka topic %s: %w", r.Topic, r.Err)
		}
		if r.Err == nil && p.logger != nil {
			p.logger.InfoContext(ctx, "kafka topic created", "topic", r.Topic)
		}
	}
	return nil
}

// Publish writes one record and waits for the broker acknowledgement, until
// ctx ends or the record delivery timeout passes.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Health checks broker connectivity.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil && p.logger != nil {
		p.logger.WarnContext(ctx, "kafka flush on close failed", "error", err)
	}
	p.client.Close()
}
