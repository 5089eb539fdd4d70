package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "energycli/internal/errors"
	"energycli/internal/infrastructure"
)

// Kinds of publisher.
const (
	KindNone  = "none"
	KindKafka = "kafka"
	KindMQTT  = "mqtt"
)

// EventSummaryPersisted is the event type of every announcement.
const EventSummaryPersisted = "summary.persisted"

// Announcement tells consumers a new summary blob is available.
type Announcement struct {
	Type        string    `json:"type"`
	RunID       string    `json:"run_id"`
	Entity      string    `json:"entity"`
	Window      int       `json:"window"`
	ShareMode   string    `json:"share_mode,omitempty"`
	Location    string    `json:"location"`
	Entries     int       `json:"entries"`
	Years       []int     `json:"years"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Key partitions announcements per entity.
func (a Announcement) Key() string {
	return strings.ToUpper(a.Entity)
}

func (a Announcement) encode() ([]byte, error) {
	if a.Type == "" {
		a.Type = EventSummaryPersisted
	}
	if a.Years == nil {
		a.Years = []int{}
	}
	return json.Marshal(a)
}

// Publisher delivers announcements.
type Publisher interface {
	Publish(ctx context.Context, a Announcement) error
	Close() error
}

// Config selects and configures a Publisher.
type Config struct {
	Kind     string
	Brokers  []string
	Topic    string
	ClientID string
	QoS      byte
	Timeout  time.Duration
}

// New builds the publisher for cfg.Kind. An empty kind means none.
func New(cfg Config, logger *slog.Logger) (Publisher, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "publisher")

	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" || kind == KindNone {
		return NopPublisher{}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, apperrors.NewConfigError("publish topic must not be empty", nil)
	}
	if len(cfg.Brokers) == 0 {
		return nil, apperrors.NewConfigError("at least one broker is required", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	switch kind {
	case KindKafka:
		return NewKafkaPublisher(cfg, logger), nil
	case KindMQTT:
		return NewMQTTPublisher(cfg, logger)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unsupported publisher kind %q", cfg.Kind), nil)
	}
}

// NopPublisher drops every announcement.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Announcement) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
