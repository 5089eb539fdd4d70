package publish

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"

	apperrors "energycli/internal/errors"
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes announcements to a Kafka topic, keyed by entity.
type KafkaPublisher struct {
	cfg    Config
	writer kafkaMessageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher with a hash-balanced writer that
// waits for all in-sync replicas.
func NewKafkaPublisher(cfg Config, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.Timeout,
		AllowAutoTopicCreation: false,
	}
	return newKafkaPublisherWithWriter(cfg, writer, logger)
}

func newKafkaPublisherWithWriter(cfg Config, writer kafkaMessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		cfg:    cfg,
		writer: writer,
		logger: logger.With(slog.String("transport", KindKafka)),
	}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, a Announcement) error {
	value, err := a.encode()
	if err != nil {
		return apperrors.NewParsingError("encode announcement", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	msg := kafka.Message{Key: []byte(a.Key()), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "announcement failed",
			slog.String("topic", p.cfg.Topic),
			slog.String("error", err.Error()))
		return apperrors.NewNetworkError("kafka publish", err).WithContext("topic", p.cfg.Topic)
	}

	p.logger.InfoContext(ctx, "announcement published",
		slog.String("topic", p.cfg.Topic),
		slog.String("key", a.Key()),
		slog.Int("entries", a.Entries))
	return nil
}

// Close implements Publisher.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
