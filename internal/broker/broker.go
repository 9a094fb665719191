// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultRPCTimeout is used by RPCCall when the caller passes zero.
const DefaultRPCTimeout = 5 * time.Second

// TransportError wraps any error surfaced by the underlying AMQP client.
type TransportError struct{ Err error }

func (e *TransportError) Error() string { return fmt.Sprintf("broker: transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError is returned by RPCCall when no reply arrives within the
// call's deadline.
type TimeoutError struct{ Timeout time.Duration }

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("broker: rpc call timed out after %s", e.Timeout)
}

// ChannelInternalError signals a broker-internal invariant violation, such
// as a channel container handed back a nil channel.
type ChannelInternalError struct{ Msg string }

func (e *ChannelInternalError) Error() string { return "broker: " + e.Msg }

// channelContainer lazily creates and caches one AMQP channel. AMQP
// channels are not safe for concurrent use from multiple goroutines;
// callers are expected to own one Repository (and therefore one
// channelContainer) per goroutine that publishes or calls RPCs, exactly
// the way Repository.Clone hands out a fresh container per clone.
type channelContainer struct {
	mu      sync.Mutex
	channel *amqp.Channel
}

func (cc *channelContainer) get(conn *amqp.Connection) (*amqp.Channel, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.channel != nil {
		return cc.channel, nil
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	cc.channel = ch
	return cc.channel, nil
}

// Repository is the topic-exchange message broker adapter: a thin layer
// over a shared AMQP connection exposing publish, RPC-call, and
// RPC-respond. The connection is shared across every Repository cloned
// from the same root (safe for concurrent use); the channel is not, so
// every clone owns its own channelContainer.
type Repository struct {
	connection   *amqp.Connection
	channels     *channelContainer
	exchangeName string
}

// New builds a Repository bound to connection and the given topic
// exchange name. Call TryInit once per goroutine that will use the
// returned Repository (or one of its Clones) before publishing.
func New(connection *amqp.Connection, exchangeName string) *Repository {
	return &Repository{
		connection:   connection,
		channels:     &channelContainer{},
		exchangeName: exchangeName,
	}
}

// Clone returns a Repository sharing this one's connection and exchange
// name but owning a brand new, not-yet-initialized channel. Use this to
// hand a worker goroutine its own channel before it starts publishing.
func (r *Repository) Clone() *Repository {
	return &Repository{
		connection:   r.connection,
		channels:     &channelContainer{},
		exchangeName: r.exchangeName,
	}
}

// TryInit declares this Repository's topic exchange (durable, idempotent)
// on its channel, creating the channel on first use.
func (r *Repository) TryInit() error {
	ch, err := r.channels.get(r.connection)
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(
		r.exchangeName,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// Publish sends payload to routingKey on this Repository's exchange,
// fire-and-forget: no publisher confirm is awaited. A fresh message id
// and the current timestamp are attached.
func (r *Repository) Publish(ctx context.Context, routingKey string, payload []byte) error {
	ch, err := r.channels.get(r.connection)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, r.exchangeName, routingKey, false, false, amqp.Publishing{
		Timestamp: time.Now(),
		MessageId: uuid.NewString(),
		Body:      payload,
	})
	if err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// RPCCall declares a private, exclusive, auto-delete reply queue,
// publishes payload to routingKey with reply_to/correlation_id set, and
// waits for the first reply carrying a matching correlation id. The
// reply queue is torn down on every exit path, including timeout; a late
// reply arriving after a timed-out call is discarded by the broker's
// auto-delete.
//
// timeout <= 0 uses DefaultRPCTimeout.
func (r *Repository) RPCCall(ctx context.Context, routingKey string, payload []byte, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}

	ch, err := r.channels.get(r.connection)
	if err != nil {
		return nil, err
	}

	replyQueue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer ch.QueueDelete(replyQueue.Name, false, false, false)

	deliveries, err := ch.Consume(replyQueue.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	correlationID := uuid.NewString()
	err = ch.PublishWithContext(ctx, r.exchangeName, routingKey, false, false, amqp.Publishing{
		Timestamp:     time.Now(),
		MessageId:     uuid.NewString(),
		ReplyTo:       replyQueue.Name,
		CorrelationId: correlationID,
		Body:          payload,
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				return nil, &ChannelInternalError{Msg: "reply queue consumer closed before a matching reply arrived"}
			}
			if delivery.CorrelationId != correlationID {
				continue
			}
			return delivery.Body, nil
		case <-timer.C:
			return nil, &TimeoutError{Timeout: timeout}
		case <-ctx.Done():
			return nil, &TimeoutError{Timeout: timeout}
		}
	}
}

// RPCRespond publishes payload to replyTo on the default exchange,
// copying correlationID through so the caller of RPCCall can match it.
func (r *Repository) RPCRespond(ctx context.Context, replyTo, correlationID string, payload []byte) error {
	ch, err := r.channels.get(r.connection)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", replyTo, false, false, amqp.Publishing{
		Timestamp:     time.Now(),
		MessageId:     uuid.NewString(),
		CorrelationId: correlationID,
		Body:          payload,
	})
	if err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// IsTransient reports whether err (as returned by this package) should be
// retried rather than treated as a permanent failure.
func IsTransient(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}
