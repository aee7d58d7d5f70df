package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	reg := prometheus.NewRegistry()
	p := NewProducerWithWriter(w, "snappy", reg)

	require.NoError(t, p.Publish(context.Background(), "finlab.events", []byte("SPY"), map[string]int{"rows": 3}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "finlab.events", w.msgs[0].Topic)
	assert.Equal(t, "SPY", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"rows":3}`, string(w.msgs[0].Value))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("finlab.events", "snappy", "ok")))
}

func TestPublishBatchWrapsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, "none", nil)

	err := p.PublishBatch(context.Background(), "t", []Message{{Value: "a"}, {Value: []byte("b")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.NoError(t, p.PublishBatch(context.Background(), "t", nil))
}

func TestNewProducerNeedsBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, nil)
	assert.Error(t, err)
}

func TestProducerConfigWriterDefaults(t *testing.T) {
	w, err := ProducerConfig{Brokers: []string{"k1:9092"}, Compression: "zstd", HashByKey: true}.writer()
	require.NoError(t, err)
	assert.Equal(t, kafka.RequiredAcks(-1), w.RequiredAcks)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, w.BatchTimeout)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
