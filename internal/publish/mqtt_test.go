package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "energycli/internal/errors"
	"energycli/internal/shared/testutil"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, complete bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type publishCall struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient implements the parts of mqtt.Client the publisher uses.
type fakeClient struct {
	mqtt.Client
	calls        []publishCall
	token        *fakeToken
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.calls = append(c.calls, publishCall{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func newTestMQTTPublisher(t *testing.T, client *fakeClient) *MQTTPublisher {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := Config{Kind: KindMQTT, Brokers: []string{"tcp://mqtt:1883"}, Topic: "energy/summary", QoS: 1, Timeout: time.Second}
	return newMQTTPublisherWithClient(cfg, client, logger)
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, true)}
	p := newTestMQTTPublisher(t, client)

	require.NoError(t, p.Publish(context.Background(), sampleAnnouncement()))

	require.Len(t, client.calls, 1)
	call := client.calls[0]
	assert.Equal(t, "energy/summary/CHN", call.topic)
	assert.Equal(t, byte(1), call.qos)
	assert.True(t, call.retained)
	assert.Contains(t, string(call.payload), `"type":"summary.persisted"`)

	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}

func TestMQTTPublisher_TokenError(t *testing.T) {
	client := &fakeClient{token: newFakeToken(errors.New("not connected"), true)}
	p := newTestMQTTPublisher(t, client)

	err := p.Publish(context.Background(), sampleAnnouncement())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
}

func TestMQTTPublisher_ContextCancelled(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, false)}
	p := newTestMQTTPublisher(t, client)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, sampleAnnouncement())

	assert.ErrorIs(t, err, context.Canceled)
}
