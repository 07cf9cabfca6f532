package coordinator

import (
	"encoding/json"
	"testing"
	"time"

	"roomgrid/internal/calendar/engine"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

var testStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return testStart.AddDate(0, 0, n)
}

func testDataset() *model.CalendarData {
	return &model.CalendarData{
		Rooms: []*model.Room{
			{ID: "r1", Number: "101", Capacity: 1, Type: "single"},
			{ID: "r2", Number: "102", Capacity: 1, Type: "single"},
		},
		Reservations: []*model.Reservation{
			{ID: "a", RoomID: "r1", StartDate: day(0), EndDate: day(2), Adults: 1, Version: 3},
		},
		Pricelist: make(model.Pricelist),
	}
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c := New(logger.Discard(), nil, nil)
	if _, err := c.AddTab("week", engine.Options{StartDate: testStart, Days: 14}); err != nil {
		t.Fatalf("add tab: %v", err)
	}
	if _, err := c.AddTab("month", engine.Options{StartDate: testStart, Days: 30}); err != nil {
		t.Fatalf("add tab: %v", err)
	}
	c.SetData(testDataset())
	return c
}

func reservationNotification(t *testing.T, action model.NotificationAction, res *model.Reservation) *model.Notification {
	t.Helper()
	payload, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &model.Notification{Entity: model.EntityReservation, Action: action, Payload: payload}
}

func TestTabsSeeTheSharedDataset(t *testing.T) {
	c := newTestCoordinator(t)

	for _, tab := range []string{"week", "month"} {
		err := c.With(tab, func(e *engine.Engine) error {
			if _, ok := e.Reservation("a"); !ok {
				t.Errorf("tab %s is missing reservation a", tab)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("with %s: %v", tab, err)
		}
	}
}

func TestMergeUpdateReachesEveryTab(t *testing.T) {
	c := newTestCoordinator(t)

	updated := &model.Reservation{ID: "a", RoomID: "r2", StartDate: day(1), EndDate: day(3), Adults: 1, Version: 4}
	result, err := c.Merge(reservationNotification(t, model.ActionUpdate, updated))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !result.Applied || result.Stale {
		t.Fatalf("unexpected merge result %+v", result)
	}

	for _, tab := range []string{"week", "month"} {
		_ = c.With(tab, func(e *engine.Engine) error {
			res, ok := e.Reservation("a")
			if !ok || res.RoomID != "r2" {
				t.Errorf("tab %s did not pick up the update", tab)
			}
			return nil
		})
	}
}

func TestMergeFlagsStaleVersionButApplies(t *testing.T) {
	c := newTestCoordinator(t)

	stale := &model.Reservation{ID: "a", RoomID: "r2", StartDate: day(0), EndDate: day(2), Adults: 1, Version: 1}
	result, err := c.Merge(reservationNotification(t, model.ActionUpdate, stale))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !result.Stale {
		t.Errorf("expected the merge flagged stale")
	}
	if !result.Applied {
		t.Errorf("expected the stale record applied anyway, the server is authoritative")
	}
	_ = c.With("week", func(e *engine.Engine) error {
		if res, _ := e.Reservation("a"); res.RoomID != "r2" {
			t.Errorf("expected the stale update applied, got room %s", res.RoomID)
		}
		return nil
	})
}

func TestMergeCreateAndDelete(t *testing.T) {
	c := newTestCoordinator(t)

	created := &model.Reservation{ID: "b", RoomID: "r2", StartDate: day(0), EndDate: day(2), Adults: 1, Version: 1}
	if result, err := c.Merge(reservationNotification(t, model.ActionCreate, created)); err != nil || !result.Applied {
		t.Fatalf("create merge failed: %+v %v", result, err)
	}

	if result, err := c.Merge(reservationNotification(t, model.ActionDelete, created)); err != nil || !result.Applied {
		t.Fatalf("delete merge failed: %+v %v", result, err)
	}
	_ = c.With("week", func(e *engine.Engine) error {
		if _, ok := e.Reservation("b"); ok {
			t.Errorf("expected b removed from the tab")
		}
		return nil
	})

	// Deleting an unknown id is a quiet no-op.
	ghost := &model.Reservation{ID: "ghost", RoomID: "r1", StartDate: day(0), EndDate: day(1), Version: 1}
	result, err := c.Merge(reservationNotification(t, model.ActionDelete, ghost))
	if err != nil {
		t.Fatalf("ghost delete: %v", err)
	}
	if result.Applied {
		t.Errorf("expected ghost delete not applied")
	}
}

func TestMergePriceReachesSharedPricelist(t *testing.T) {
	c := newTestCoordinator(t)

	payload, _ := json.Marshal(model.PriceRecord{RoomType: "std", Date: model.DayKey(day(3)), Price: 99})
	result, err := c.Merge(&model.Notification{Entity: model.EntityPrice, Action: model.ActionUpdate, Payload: payload})
	if err != nil || !result.Applied {
		t.Fatalf("price merge failed: %+v %v", result, err)
	}

	if price, ok := c.data.Pricelist.Price("std", day(3)); !ok || price != 99 {
		t.Errorf("expected price visible in the dataset, got %v %v", price, ok)
	}
}

func TestSwitchTabRelaysOut(t *testing.T) {
	c := newTestCoordinator(t)

	if err := c.SwitchTab("month"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if c.ActiveTab() != "month" {
		t.Errorf("expected month active, got %s", c.ActiveTab())
	}
	if err := c.SwitchTab("ghost"); err == nil {
		t.Errorf("expected switching to a missing tab to fail")
	}
}

func TestSnapshotReflectsActiveTab(t *testing.T) {
	c := newTestCoordinator(t)

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Tab != "week" {
		t.Errorf("expected the first tab active, got %s", snap.Tab)
	}
	if len(snap.Rooms) != 2 || len(snap.Reservations) != 1 {
		t.Errorf("unexpected snapshot sizes: %d rooms, %d reservations", len(snap.Rooms), len(snap.Reservations))
	}
	if len(snap.Occupancy) == 0 {
		t.Errorf("expected occupancy rows in the snapshot")
	}
	if len(snap.Tabs) != 2 {
		t.Errorf("expected both tab names listed, got %v", snap.Tabs)
	}
}

func TestSnapshotIsDetachedFromLiveState(t *testing.T) {
	c := newTestCoordinator(t)

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	// A merge arriving after the snapshot was taken must not reach
	// into objects the caller is still reading.
	updated := &model.Reservation{ID: "a", RoomID: "r2", StartDate: day(1), EndDate: day(4), Adults: 1, Version: 4}
	if _, err := c.Merge(reservationNotification(t, model.ActionUpdate, updated)); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if snap.Reservations[0].RoomID != "r1" {
		t.Errorf("snapshot reservation mutated by a later merge: room %s", snap.Reservations[0].RoomID)
	}
	if !snap.Reservations[0].EndDate.Equal(day(2)) {
		t.Errorf("snapshot reservation end mutated: %v", snap.Reservations[0].EndDate)
	}

	_ = c.With("week", func(e *engine.Engine) error {
		live, ok := e.Reservation("a")
		if !ok {
			t.Fatalf("reservation a missing after merge")
		}
		if live == snap.Reservations[0] {
			t.Errorf("snapshot shares a reservation pointer with the engine")
		}
		for i, row := range e.Table().Rows() {
			for _, room := range snap.Rooms {
				if room == row.Room {
					t.Errorf("snapshot shares a room pointer with the engine (row %d)", i)
				}
			}
		}
		return nil
	})
}

func TestDuplicateTabRejected(t *testing.T) {
	c := newTestCoordinator(t)
	if _, err := c.AddTab("week", engine.Options{StartDate: testStart, Days: 14}); err == nil {
		t.Errorf("expected duplicate tab name rejected")
	}
}
