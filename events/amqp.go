/*
amqp.go - RabbitMQ publisher for reservation events

PURPOSE:
  Sends every committed lifecycle event to one durable queue as a
  persistent JSON message. The connection and channel are opened once and
  reused; a closed channel is redialled on the next publish.

FAILURES:
  Publish returns the error. ReservationService logs it and carries on, so
  a broker outage never fails a booking.

MESSAGE:
  ContentType  application/json
  DeliveryMode persistent
  MessageId    Envelope.ID (uuid)
  Type         event type, e.g. reservation.created
  Body         Envelope
*/
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/warp/reservation-engine/booking"
)

// DefaultQueue is used when no queue name is configured.
const DefaultQueue = "reservation.events"

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel with the queue declared.
type Dialer func() (Channel, error)

// AMQPPublisher is a booking.EventSink backed by RabbitMQ.
type AMQPPublisher struct {
	queue string
	dial  Dialer

	mu sync.Mutex
	ch Channel
}

// NewAMQPPublisher publishes on an already open channel. dial may be nil,
// in which case a closed channel is not reopened.
func NewAMQPPublisher(ch Channel, queue string, dial Dialer) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPPublisher{queue: queue, dial: dial, ch: ch}
}

// DialAMQP connects to the broker and declares the queue (durable).
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	dial := func() (Channel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open channel: %w", err)
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
		return &connChannel{Channel: ch, conn: conn}, nil
	}

	ch, err := dial()
	if err != nil {
		return nil, err
	}
	return NewAMQPPublisher(ch, queue, dial), nil
}

// Publish sends one event. It is safe for concurrent use.
func (p *AMQPPublisher) Publish(ctx context.Context, ev booking.Event) error {
	env := NewEnvelope(ev)
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Type,
		Timestamp:    env.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.redial(); err != nil {
			return err
		}
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) && p.dial != nil {
		if err := p.redial(); err != nil {
			return err
		}
		err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) redial() error {
	if p.dial == nil {
		return fmt.Errorf("publish: %w", amqp.ErrClosed)
	}
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	ch, err := p.dial()
	if err != nil {
		return err
	}
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

// connChannel closes the connection together with its channel.
type connChannel struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (c *connChannel) Close() error {
	_ = c.Channel.Close()
	return c.conn.Close()
}

var _ booking.EventSink = (*AMQPPublisher)(nil)
