package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNilProducerIsNoop(t *testing.T) {
	p := NewProducer(nil, "alumni.activity", zerolog.Nop())
	require.Nil(t, p)

	assert.NoError(t, p.PublishJSON(context.Background(), "1", map[string]string{"a": "b"}))
	assert.NoError(t, p.Close())
}

func TestPublishJSON(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "alumni.activity", logger: zerolog.Nop()}

	require.NoError(t, p.PublishJSON(context.Background(), "42", map[string]string{"action": "job.create"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"action":"job.create"}`, string(w.msgs[0].Value))

	w.err = errors.New("broker down")
	assert.Error(t, p.PublishJSON(context.Background(), "42", "x"))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducerFlushesQuickly(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "alumni.activity", zerolog.Nop())
	require.NotNil(t, p)

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "alumni.activity", w.Topic)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
	require.NoError(t, p.Close())
}
