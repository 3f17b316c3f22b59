package notify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"

	"investimmo-bot/models"
)

type fakeChannel struct {
	declared   string
	durable    bool
	published  []amqp.Publishing
	keys       []string
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared, f.durable = name, durable
	return amqp.Queue{Name: name}, f.declareErr
}

func (f *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, DefaultQueue)
	if err != nil {
		t.Fatalf("newPublisher: %v", err)
	}
	if ch.declared != DefaultQueue || !ch.durable {
		t.Errorf("declared %q durable=%v; want %q durable", ch.declared, ch.durable, DefaultQueue)
	}

	listings := []*models.Listing{{ID: "a", Yield: 7.2}, {ID: "b", Yield: 9.1}}
	if err := p.Publish(listings); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(ch.published) != 2 {
		t.Fatalf("published: got %d, want 2", len(ch.published))
	}
	if ch.keys[0] != DefaultQueue {
		t.Errorf("routing key: got %q", ch.keys[0])
	}

	var got models.Listing
	if err := json.Unmarshal(ch.published[1].Body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got.ID != "b" || got.Yield != 9.1 {
		t.Errorf("body: got %+v", got)
	}
	if ch.published[0].DeliveryMode != amqp.Persistent {
		t.Error("message is not persistent")
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Errorf("Close: err=%v closed=%v", err, ch.closed)
	}
}

func TestPublishErrors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := newPublisher(&fakeChannel{declareErr: boom}, "q"); !errors.Is(err, boom) {
		t.Errorf("declare: got %v, want %v", err, boom)
	}

	p, _ := newPublisher(&fakeChannel{publishErr: boom}, "q")
	if err := p.Publish([]*models.Listing{{ID: "a"}}); !errors.Is(err, boom) {
		t.Errorf("publish: got %v, want %v", err, boom)
	}
}
