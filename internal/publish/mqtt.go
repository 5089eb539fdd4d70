package publish

import (
	"context"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	apperrors "energycli/internal/errors"
)

// MQTTPublisher publishes retained announcements to an MQTT topic, so a
// subscriber that connects later still sees the latest one.
type MQTTPublisher struct {
	cfg    Config
	client mqtt.Client
	logger *slog.Logger
}

// NewMQTTPublisher connects to the first reachable broker.
func NewMQTTPublisher(cfg Config, logger *slog.Logger) (*MQTTPublisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "energy-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions().
		SetClientID(clientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(false)
	for _, broker := range cfg.Brokers {
		opts.AddBroker(broker)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, apperrors.NewNetworkError("mqtt connect", fmt.Errorf("timed out after %s", cfg.Timeout))
	}
	if err := token.Error(); err != nil {
		return nil, apperrors.NewNetworkError("mqtt connect", err)
	}
	return newMQTTPublisherWithClient(cfg, client, logger), nil
}

func newMQTTPublisherWithClient(cfg Config, client mqtt.Client, logger *slog.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("transport", KindMQTT)),
	}
}

// Topic is the per-entity topic, e.g. energy/summary/CHN.
func (p *MQTTPublisher) Topic(a Announcement) string {
	return p.cfg.Topic + "/" + a.Key()
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(ctx context.Context, a Announcement) error {
	payload, err := a.encode()
	if err != nil {
		return apperrors.NewParsingError("encode announcement", err)
	}

	topic := p.Topic(a)
	token := p.client.Publish(topic, p.cfg.QoS, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		p.logger.ErrorContext(ctx, "announcement failed",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		return apperrors.NewNetworkError("mqtt publish", err).WithContext("topic", topic)
	}

	p.logger.InfoContext(ctx, "announcement published",
		slog.String("topic", topic),
		slog.Int("entries", a.Entries))
	return nil
}

// Close implements Publisher.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
