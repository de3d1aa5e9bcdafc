// Package kafka publishes approval verdicts onto the event bus.
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")
	ErrPublishFailed  = errors.New(errors.ErrCodeMessagingError, "publish failed")
)

// Message is a single outbound record.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ProducerMetrics tracks producer activity with atomic counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a kafka writer with validation and metrics.
type Producer struct {
	writer  WriterInterface
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

const maxMessageBytes = 1024 * 1024

// NewProducer builds a producer over a real kafka.Writer from config.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	var compression kafka.Compression
	switch cfg.CompressionCodec {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	maxAttempts := cfg.MaxRetries + 1
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 1 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  maxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: requiredAcks,
		Compression:  compression,
	}

	return NewProducerWithWriter(writer, log), nil
}

// NewProducerWithWriter wires an explicit writer, used by tests.
func NewProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{
		writer:  w,
		logger:  log,
		metrics: &ProducerMetrics{},
	}
}

// Publish writes a single message.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "value required")
	}
	if len(msg.Value) > maxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large")
	}

	kMsg := kafka.Message{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
	}
	for k, v := range msg.Headers {
		kMsg.Headers = append(kMsg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, kMsg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "publish failed")
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.metrics.LastSentAt.Store(time.Now())

	p.logger.Debug("Message published",
		logging.String("topic", msg.Topic),
		logging.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// Metrics exposes the producer counters.
func (p *Producer) Metrics() *ProducerMetrics {
	return p.metrics
}

// Close shuts down the writer.  Publishing after Close fails fast.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close kafka producer", logging.Err(err))
		return err
	}
	p.logger.Info("Closed kafka producer")
	return nil
}
