package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestPublishBatchEncodes(t *testing.T) {
	w := &memWriter{}
	reg := prometheus.NewRegistry()
	p, err := NewProducer(WithWriter(w), WithRegisterer(reg))
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	err = p.PublishBatch(context.Background(), "t", []Message{
		{Key: []byte("AAPL"), Value: map[string]int{"n": 1}},
		{Key: []byte("MSFT"), Value: "raw"},
	})
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("wrote %d messages", len(w.msgs))
	}
	if string(w.msgs[0].Value) != `{"n":1}` || w.msgs[0].Topic != "t" {
		t.Fatalf("first message = %+v", w.msgs[0])
	}
	if string(w.msgs[1].Value) != "raw" {
		t.Fatalf("second value = %q", w.msgs[1].Value)
	}
	if got := testutil.ToFloat64(p.metrics.msgs.WithLabelValues("t", "gzip", "ok")); got != 2 {
		t.Fatalf("messages metric = %v", got)
	}
}

func TestPublishBatchError(t *testing.T) {
	w := &memWriter{err: errors.New("leader not available")}
	p, _ := NewProducer(WithWriter(w), WithRegisterer(prometheus.NewRegistry()))

	if err := p.Publish(context.Background(), "t", nil, "x"); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(p.metrics.errs.WithLabelValues("t")); got != 1 {
		t.Fatalf("errors metric = %v", got)
	}
}

func TestNewProducerNeedsBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("expected error without brokers")
	}
}
