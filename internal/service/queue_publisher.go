// Package service holds adapters from the game core to outside systems.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/queue"
)

const (
	defaultBuffer      = 256
	defaultDialTimeout = 5 * time.Second
	sendTimeout        = 2 * time.Second
)

// ErrBufferFull is returned when an event is dropped because the send
// loop has fallen behind.
var ErrBufferFull = errors.New("guess event buffer full")

// QueuePublisher publishes guess events to RabbitMQ.  PublishGuessRecorded
// only enqueues; Run drains the buffer on a single goroutine, so a slow or
// unreachable broker never holds up the caller.  The connection and
// channel are opened on first use and reopened after a failure.
type QueuePublisher struct {
	url         string
	log         logrus.FieldLogger
	dialTimeout time.Duration
	dial        func(url string) (*amqp.Connection, error)
	events      chan queue.GuessRecordedEvent

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// PublisherOption customises a QueuePublisher.
type PublisherOption func(*QueuePublisher)

// WithBuffer sets how many events may wait for the send loop.
func WithBuffer(n int) PublisherOption {
	return func(p *QueuePublisher) {
		if n > 0 {
			p.events = make(chan queue.GuessRecordedEvent, n)
		}
	}
}

// WithDialTimeout bounds the TCP connect and AMQP handshake.
func WithDialTimeout(d time.Duration) PublisherOption {
	return func(p *QueuePublisher) {
		if d > 0 {
			p.dialTimeout = d
		}
	}
}

func NewQueuePublisher(url string, log logrus.FieldLogger, opts ...PublisherOption) *QueuePublisher {
	p := &QueuePublisher{
		url:         url,
		log:         log,
		dialTimeout: defaultDialTimeout,
		events:      make(chan queue.GuessRecordedEvent, defaultBuffer),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.dial = p.dialBroker
	return p
}

// dialBroker is amqp.Dial with the handshake bounded by dialTimeout
// instead of the library's 30s default.
func (p *QueuePublisher) dialBroker(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
}

// PublishGuessRecorded queues ev for delivery to the guess.recorded queue.
// It never blocks; when the buffer is full the event is dropped and
// ErrBufferFull returned.
func (p *QueuePublisher) PublishGuessRecorded(_ context.Context, ev queue.GuessRecordedEvent) error {
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrBufferFull
	}
}

// Run sends queued events until ctx is cancelled.  Send failures are
// logged and the event is dropped.
func (p *QueuePublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			if err := p.send(ctx, ev); err != nil {
				p.log.WithError(err).WithFields(logrus.Fields{
					"event_id": ev.EventID,
					"play_id":  ev.PlayID,
					"cell_key": ev.CellKey,
				}).Warn("publish guess event failed")
			}
		}
	}
}

func (p *QueuePublisher) send(ctx context.Context, ev queue.GuessRecordedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	err = ch.PublishWithContext(sendCtx, "", queue.GuessRecordedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing if needed.  Caller holds mu.
func (p *QueuePublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue.GuessRecordedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.log.WithField("queue", queue.GuessRecordedQueue).Info("publisher connected")
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *QueuePublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *QueuePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
