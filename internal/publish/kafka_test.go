package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "energycli/internal/errors"
	"energycli/internal/shared/testutil"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("write without deadline")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func newTestKafkaPublisher(t *testing.T, w *recordingWriter) *KafkaPublisher {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := Config{Kind: KindKafka, Brokers: []string{"kafka:9092"}, Topic: "energy.summary", Timeout: time.Second}
	return newKafkaPublisherWithWriter(cfg, w, logger)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := newTestKafkaPublisher(t, w)

	require.NoError(t, p.Publish(context.Background(), sampleAnnouncement()))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "CHN", string(w.messages[0].Key))

	var decoded Announcement
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, EventSummaryPersisted, decoded.Type)
	assert.Equal(t, "data/china-energy-summary.json", decoded.Location)
	assert.Equal(t, []int{2022, 2021}, decoded.Years)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := newTestKafkaPublisher(t, w)

	err := p.Publish(context.Background(), sampleAnnouncement())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
	assert.Contains(t, err.Error(), "broker unavailable")
}
