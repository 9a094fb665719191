// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/northbound/inkstream/internal/telemetry"
	"github.com/northbound/inkstream/internal/usecase"
)

// Func processes one decoded delivery. RPC-style handlers read replyTo
// and correlationID and are expected to respond themselves (via
// broker.Repository.RPCRespond) rather than returning data to be
// published by the runtime.
type Func func(ctx context.Context, delivery amqp.Delivery) error

// Runtime declares a topic exchange and a named, shared queue, binds it
// to routingKey, and dispatches every delivery to fn with the
// ack/nack-with-requeue/nack-without-requeue policy from
// SPEC_FULL.md §4.6/§7.
//
// Queue naming follows the "<prefix>_<routing_key>" convention so
// multiple replicas of the same service share work off one queue.
type Runtime struct {
	Channel      *amqp.Channel
	ExchangeName string
	QueuePrefix  string
	RoutingKey   string
	RequireReply bool
	Logger       *logrus.Logger

	Handle Func
}

func (r *Runtime) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return telemetry.GetDefault()
}

// queueName is "<prefix>_<routing_key>" with dots replaced by
// underscores, since AMQP queue names may not contain routing-key
// wildcard punctuation cleanly across brokers.
func (r *Runtime) queueName() string {
	return r.QueuePrefix + "_" + sanitizeRoutingKey(r.RoutingKey)
}

func sanitizeRoutingKey(key string) string {
	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			out[i] = '_'
		} else {
			out[i] = key[i]
		}
	}
	return string(out)
}

// Bind declares the exchange and queue, binds them on RoutingKey, and
// starts a manual-ack consumer. It blocks until ctx is cancelled;
// in-flight invocations of Handle are allowed to finish before Bind
// returns.
func (r *Runtime) Bind(ctx context.Context) error {
	if err := r.Channel.ExchangeDeclare(r.ExchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("handler: declaring exchange %s: %w", r.ExchangeName, err)
	}

	queue, err := r.Channel.QueueDeclare(r.queueName(), true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("handler: declaring queue %s: %w", r.queueName(), err)
	}

	if err := r.Channel.QueueBind(queue.Name, r.RoutingKey, r.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("handler: binding queue %s to %s: %w", queue.Name, r.RoutingKey, err)
	}

	deliveries, err := r.Channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("handler: starting consumer on %s: %w", queue.Name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			r.dispatch(ctx, delivery)
		}
	}
}

// dispatch applies the decode/reply_to/invoke/ack-or-nack policy to one
// delivery.
func (r *Runtime) dispatch(ctx context.Context, delivery amqp.Delivery) {
	if r.RequireReply && delivery.ReplyTo == "" {
		r.logger().WithField("routing_key", r.RoutingKey).Warn("rpc delivery missing reply_to, poisoning")
		_ = delivery.Nack(false, false)
		return
	}

	err := r.Handle(ctx, delivery)
	if err == nil {
		_ = delivery.Ack(false)
		return
	}

	var ucErr *usecase.Error
	requeue := errors.As(err, &ucErr) && ucErr.Kind == usecase.KindTransientUpstream

	r.logger().WithFields(logrus.Fields{
		"routing_key": r.RoutingKey,
		"requeue":     requeue,
		"error":       err,
	}).Error("handler invocation failed")

	_ = delivery.Nack(false, requeue)
}

// Decode is a small helper most Handle implementations use to turn a
// delivery's JSON body into a DTO, wrapping failures as KindDecode so
// Runtime's dispatch (driven by the use-case's own KindTransientUpstream
// check) still poisons rather than requeues — decode errors are never
// transient.
func Decode[T any](delivery amqp.Delivery) (T, error) {
	var v T
	if err := json.Unmarshal(delivery.Body, &v); err != nil {
		return v, &usecase.Error{Kind: usecase.KindDecode, Err: err}
	}
	return v, nil
}
