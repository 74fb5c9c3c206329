package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type writerStub struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *writerStub) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() model.OrderEvent {
	return model.OrderEvent{
		ID:          1,
		EventID:     "evt-1",
		OrderNumber: "SF202401010000001234",
		Type:        model.EventOrderPlaced,
		Payload:     []byte(`{"order_number":"SF202401010000001234"}`),
	}
}

func TestKafkaPublisherWritesKeyedMessage(t *testing.T) {
	writer := &writerStub{}
	publisher := NewKafkaPublisher(writer)

	if err := publisher.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(writer.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.msgs))
	}
	msg := writer.msgs[0]
	if string(msg.Key) != "SF202401010000001234" {
		t.Fatalf("unexpected key %q", msg.Key)
	}
	if !bytes.Equal(msg.Value, sampleEvent().Payload) {
		t.Fatalf("unexpected value %q", msg.Value)
	}
	carrier := headerCarrier(msg.Headers)
	if carrier.Get(headerEventType) != "order.placed" || carrier.Get(headerEventID) != "evt-1" {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	if err := publisher.Close(); err != nil || !writer.closed {
		t.Fatalf("expected writer to be closed, err=%v", err)
	}
}

func TestKafkaPublisherInjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	writer := &writerStub{}
	if err := NewKafkaPublisher(writer).Publish(ctx, sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	carrier := headerCarrier(writer.msgs[0].Headers)
	if !strings.Contains(carrier.Get("traceparent"), traceID.String()) {
		t.Fatalf("expected traceparent header, got %+v", carrier.Keys())
	}
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	err := NewKafkaPublisher(&writerStub{err: boom}).Publish(context.Background(), sampleEvent())
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "evt-1") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestHeaderCarrierSetOverwrites(t *testing.T) {
	var c headerCarrier
	c.Set("a", "1")
	c.Set("a", "2")
	if len(c) != 1 || c.Get("a") != "2" {
		t.Fatalf("unexpected headers %+v", c)
	}
	if c.Get("missing") != "" {
		t.Fatal("expected empty value for missing key")
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := publisher.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(buf.String(), "order.placed") || !strings.Contains(buf.String(), "evt-1") {
		t.Fatalf("unexpected log output %s", buf.String())
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewPublisherSelectsTransport(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, ok := newPublisher(&config.Config{}, logger).(*LogPublisher); !ok {
		t.Fatal("expected log publisher without brokers")
	}

	p := newPublisher(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "orders"}, logger)
	kp, ok := p.(*KafkaPublisher)
	if !ok {
		t.Fatalf("expected kafka publisher, got %T", p)
	}
	w, ok := kp.writer.(*kafka.Writer)
	if !ok || w.Topic != "orders" {
		t.Fatalf("unexpected writer %+v", kp.writer)
	}
	_ = kp.Close()
}
