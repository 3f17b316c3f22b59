// Package notify publishes new investment opportunities to RabbitMQ.
package notify

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"investimmo-bot/models"
)

// DefaultQueue is the durable queue opportunities are published to.
const DefaultQueue = "investimmo.opportunities"

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends opportunities as JSON messages. It is safe for
// concurrent use.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    channel
	queue string
}

// NewPublisher dials url and declares queue.
func NewPublisher(url, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}

	p, err := newPublisher(ch, queue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("notify: declare queue %q: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

// Publish sends one message per listing.
func (p *Publisher) Publish(listings []*models.Listing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, l := range listings {
		body, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("notify: encode %s: %w", l.ID, err)
		}
		err = p.ch.Publish("", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    l.ID,
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("notify: publish %s: %w", l.ID, err)
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
