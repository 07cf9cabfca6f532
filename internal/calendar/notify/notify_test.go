package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"roomgrid/internal/calendar/coordinator"
	"roomgrid/internal/calendar/engine"
	"roomgrid/pkg/bus"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

type stubCalendarService struct {
	applied []*model.Notification
	result  coordinator.MergeResult
	err     error
}

func (s *stubCalendarService) Load(ctx context.Context) error { return nil }
func (s *stubCalendarService) Snapshot(ctx context.Context) (*coordinator.Snapshot, error) {
	return nil, nil
}
func (s *stubCalendarService) SwitchTab(ctx context.Context, name string) error { return nil }
func (s *stubCalendarService) MoveReservation(ctx context.Context, tab, id string, start, end time.Time, roomID string) error {
	return nil
}
func (s *stubCalendarService) RevertReservation(ctx context.Context, tab, id string) error {
	return nil
}
func (s *stubCalendarService) AckReservation(ctx context.Context, tab, id string) error { return nil }
func (s *stubCalendarService) SwapReservations(ctx context.Context, fromIDs, toIDs []string) error {
	return nil
}
func (s *stubCalendarService) SplitReservation(ctx context.Context, id string, nights int) error {
	return nil
}
func (s *stubCalendarService) UnifyReservations(ctx context.Context, ids []string) error { return nil }
func (s *stubCalendarService) ApplyNotification(ctx context.Context, n *model.Notification) (coordinator.MergeResult, error) {
	s.applied = append(s.applied, n)
	return s.result, s.err
}
func (s *stubCalendarService) Occupancy(ctx context.Context, tab string) ([]engine.DayOccupancy, error) {
	return nil, nil
}

func notificationMessage(t *testing.T, entity model.EntityType, payload any) bus.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	msg, err := bus.NewMessage("k", "notification", model.Notification{
		Entity:  entity,
		Action:  model.ActionUpdate,
		Payload: raw,
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	return msg
}

func TestCalendarMessageHandlerAppliesNotification(t *testing.T) {
	svc := &stubCalendarService{result: coordinator.MergeResult{Applied: true}}
	handler := CalendarMessageHandler(svc, logger.Discard())

	msg := notificationMessage(t, model.EntityPrice, model.PriceRecord{
		RoomType: "double", Date: "2026-03-02", Price: 110,
	})
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if len(svc.applied) != 1 || svc.applied[0].Entity != model.EntityPrice {
		t.Errorf("notification not forwarded: %+v", svc.applied)
	}
}

func TestCalendarMessageHandlerRejectsGarbage(t *testing.T) {
	svc := &stubCalendarService{}
	handler := CalendarMessageHandler(svc, logger.Discard())

	msg := bus.Message{Key: "k", Value: []byte("not json")}
	if err := handler(context.Background(), msg); err == nil {
		t.Fatal("garbage payload should fail so it lands on the DLQ")
	}
	if len(svc.applied) != 0 {
		t.Error("garbage payload must not reach the service")
	}
}

func TestCalendarMessageHandlerPropagatesServiceError(t *testing.T) {
	svc := &stubCalendarService{err: errors.New("merge failed")}
	handler := CalendarMessageHandler(svc, logger.Discard())

	msg := notificationMessage(t, model.EntityPrice, model.PriceRecord{
		RoomType: "double", Date: "2026-03-02", Price: 110,
	})
	if err := handler(context.Background(), msg); err == nil {
		t.Fatal("service error should propagate for retry handling")
	}
}

type stubSink struct {
	published []bus.Message
	err       error
}

func (s *stubSink) Publish(ctx context.Context, msg bus.Message) error {
	s.published = append(s.published, msg)
	return s.err
}

func TestEventPublisherMirrorsEvents(t *testing.T) {
	sink := &stubSink{}
	pub := NewEventPublisher(sink, logger.Discard())

	pub.Emit(engine.Event{ID: "ev-1", Type: engine.EventReservationChanged})

	if len(sink.published) != 1 {
		t.Fatalf("expected one published message, got %d", len(sink.published))
	}
	msg := sink.published[0]
	if msg.Key != "ev-1" || msg.EventType() != string(engine.EventReservationChanged) {
		t.Errorf("unexpected message: key=%s type=%s", msg.Key, msg.EventType())
	}

	var ev engine.Event
	if err := msg.DecodeValue(&ev); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ev.Type != engine.EventReservationChanged {
		t.Errorf("unexpected event payload: %+v", ev)
	}
}

func TestMultiEmitterFansOut(t *testing.T) {
	var got []string
	first := engine.EmitterFunc(func(ev engine.Event) { got = append(got, "first") })
	second := engine.EmitterFunc(func(ev engine.Event) { got = append(got, "second") })

	MultiEmitter{first, nil, second}.Emit(engine.Event{Type: engine.EventSelectionChanged})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("fan-out order wrong: %v", got)
	}
}
