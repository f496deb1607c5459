package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"|"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "auth.events", nil)

	err := p.Publish(context.Background(), Event{Type: TypeUserRegistered, UserID: "u1"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	if ch.keys[0] != "|auth.events" {
		t.Errorf("routing = %q, want default exchange + queue name", ch.keys[0])
	}
	msg := ch.published[0]
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" || msg.Type != TypeUserRegistered {
		t.Errorf("publishing = %+v", msg)
	}

	var got Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != TypeUserRegistered || got.UserID != "u1" || got.At.IsZero() {
		t.Errorf("body = %+v", got)
	}
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	core, logs := observer.New(zap.DebugLevel)
	p := newAMQPPublisher(&fakeChannel{err: boom}, "q", zap.New(core))
	err := p.Publish(context.Background(), Event{Type: TypeUserLoggedOut})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() error = %v, want wrapped channel error", err)
	}
	if !strings.Contains(err.Error(), TypeUserLoggedOut) {
		t.Errorf("error %q does not name the event type", err)
	}
	// the caller logs publish failures
	if n := logs.Len(); n != 0 {
		t.Errorf("publisher logged %d entries", n)
	}
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	if err := newAMQPPublisher(ch, "q", nil).Close(); err != nil {
		t.Fatal(err)
	}
	if !ch.closed {
		t.Error("channel not closed")
	}
}
