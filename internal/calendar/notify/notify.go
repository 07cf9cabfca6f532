// Package notify bridges the notification bus and the grid services:
// inbound records become coordinator merges, outbound engine events are
// mirrored onto the event topic.
package notify

import (
	"context"

	"roomgrid/internal/calendar/engine"
	"roomgrid/internal/calendar/service"
	"roomgrid/pkg/bus"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

// CalendarMessageHandler feeds reservation, price and restriction
// notifications into the calendar service. Malformed records are
// permanent failures and land on the DLQ; merge outcomes are logged.
func CalendarMessageHandler(svc service.CalendarService, log *logger.Logger) bus.MessageHandler {
	return func(ctx context.Context, msg bus.Message) error {
		var n model.Notification
		if err := msg.DecodeValue(&n); err != nil {
			log.Error("undecodable notification", "key", msg.Key, "error", err)
			return err
		}

		result, err := svc.ApplyNotification(ctx, &n)
		if err != nil {
			log.Error("notification rejected",
				"key", msg.Key,
				"entity", n.Entity,
				"action", n.Action,
				"error", err,
			)
			return err
		}
		if result.Stale {
			log.Warn("applied stale notification", "key", msg.Key, "entity", n.Entity)
		}
		return nil
	}
}

// ManagementMessageHandler feeds price, restriction and availability
// notifications into the management grid.
func ManagementMessageHandler(svc service.ManagementService, log *logger.Logger) bus.MessageHandler {
	return func(ctx context.Context, msg bus.Message) error {
		var n model.Notification
		if err := msg.DecodeValue(&n); err != nil {
			log.Error("undecodable notification", "key", msg.Key, "error", err)
			return err
		}
		if err := svc.ApplyNotification(ctx, &n); err != nil {
			log.Error("notification rejected",
				"key", msg.Key,
				"entity", n.Entity,
				"action", n.Action,
				"error", err,
			)
			return err
		}
		return nil
	}
}

// EventSink is the part of the producer the publisher needs.
type EventSink interface {
	Publish(ctx context.Context, msg bus.Message) error
}

// EventPublisher mirrors engine events onto the event topic so other
// services can follow grid activity. It implements engine.Emitter.
type EventPublisher struct {
	sink EventSink
	log  *logger.Logger
}

func NewEventPublisher(sink EventSink, log *logger.Logger) *EventPublisher {
	return &EventPublisher{sink: sink, log: log}
}

func (p *EventPublisher) Emit(ev engine.Event) {
	msg, err := bus.NewMessage(ev.ID, string(ev.Type), ev)
	if err != nil {
		p.log.Error("failed to encode engine event", "type", ev.Type, "error", err)
		return
	}
	if err := p.sink.Publish(context.Background(), msg); err != nil {
		p.log.Error("failed to publish engine event", "type", ev.Type, "error", err)
	}
}

// MultiEmitter fans one engine event out to several emitters, typically
// the websocket hub plus the bus publisher.
type MultiEmitter []engine.Emitter

func (m MultiEmitter) Emit(ev engine.Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ev)
		}
	}
}
