package engine

import (
	"testing"

	"roomgrid/pkg/model"
)

func TestDivideEmitsSplitRequest(t *testing.T) {
	e, _, rec := testEngine(Options{})
	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{mkRoom("r1", "101", 1, false)},
		Reservations: []*model.Reservation{mkRes("a", "r1", 4, 8, 1)},
	})

	e.StartDivide()

	res, _ := e.Reservation("a")
	base := e.Limit(res).Left
	click := CellRef{Row: base.Row, Day: base.Day + 2, Bed: base.Bed}
	if err := e.PointerDown("", click, RegionInside); err != nil {
		t.Fatalf("divide down: %v", err)
	}

	id, splitDay, ok := e.DividePreview()
	if !ok || id != "a" || splitDay != model.DayKey(day(6)) {
		t.Fatalf("unexpected preview %q %q %v", id, splitDay, ok)
	}

	if _, err := e.PointerUp(); err != nil {
		t.Fatalf("divide up: %v", err)
	}
	ev, ok := rec.last(EventSplitRequested)
	if !ok {
		t.Fatal("expected a split request event")
	}
	req := ev.Data.(*SplitRequest)
	if req.ReservationID != "a" || req.Nights != 2 {
		t.Errorf("expected 2 nights split off reservation a, got %+v", req)
	}
	if e.CurrentMode() != ModeNone {
		t.Errorf("expected divide mode to exit")
	}
}

func TestDivideRejectsBoundaryDays(t *testing.T) {
	e, _, _ := testEngine(Options{})
	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{mkRoom("r1", "101", 1, false)},
		Reservations: []*model.Reservation{mkRes("a", "r1", 4, 8, 1)},
	})

	e.StartDivide()
	res, _ := e.Reservation("a")
	base := e.Limit(res).Left

	// First day: the left segment would be empty.
	if err := e.PointerDown("", base, RegionInside); err == nil {
		t.Errorf("expected split on the arrival day to be rejected")
	}
	// Final night: the right segment would be empty.
	lastNight := CellRef{Row: base.Row, Day: base.Day + 3, Bed: base.Bed}
	if err := e.PointerDown("", lastNight, RegionInside); err == nil {
		t.Errorf("expected split on the final night to be rejected")
	}
}

func TestUnifySelectionRules(t *testing.T) {
	e, _, rec := testEngine(Options{})
	e.SetData(&model.CalendarData{
		Rooms: []*model.Room{mkRoom("r1", "101", 1, false), mkRoom("r2", "102", 1, false)},
		Reservations: []*model.Reservation{
			mkRes("a", "r1", 0, 2, 1),
			mkRes("b", "r1", 2, 4, 1),
			mkRes("gap", "r1", 5, 7, 1),
			mkRes("other", "r2", 2, 4, 1),
		},
	})

	e.StartUnify()
	if err := e.ToggleUnify("a"); err != nil {
		t.Fatalf("select a: %v", err)
	}
	if err := e.ToggleUnify("b"); err != nil {
		t.Fatalf("select adjacent b: %v", err)
	}
	if err := e.ToggleUnify("gap"); err == nil {
		t.Errorf("expected non-adjacent reservation to be rejected")
	}
	if err := e.ToggleUnify("other"); err == nil {
		t.Errorf("expected reservation in another room to be rejected")
	}

	e.KeyEnter()
	ev, ok := rec.last(EventUnifyRequested)
	if !ok {
		t.Fatal("expected a unify request event")
	}
	req := ev.Data.(*UnifyRequest)
	if len(req.IDs) != 2 || req.IDs[0] != "a" || req.IDs[1] != "b" {
		t.Errorf("unexpected unify ids %v", req.IDs)
	}
	if e.CurrentMode() != ModeNone {
		t.Errorf("expected unify mode to exit after enter")
	}
}

func TestUnifyAcceptsLinkedSegments(t *testing.T) {
	e, _, _ := testEngine(Options{})
	parent := mkRes("a", "r1", 0, 2, 1)
	child := mkRes("a2", "r1", 5, 7, 1)
	child.LinkedID = "a"
	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{mkRoom("r1", "101", 1, false)},
		Reservations: []*model.Reservation{parent, child},
	})

	e.StartUnify()
	_ = e.ToggleUnify("a")
	if err := e.ToggleUnify("a2"); err != nil {
		t.Errorf("expected linked segment to be accepted despite the gap: %v", err)
	}
}

func TestKeyEscapeLeavesModeWithoutDispatch(t *testing.T) {
	e, _, rec := testEngine(Options{})
	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{mkRoom("r1", "101", 1, false)},
		Reservations: []*model.Reservation{mkRes("a", "r1", 0, 3, 1)},
	})

	e.StartSwap()
	_ = e.swapClick("a")
	e.KeyEscape()

	if e.CurrentMode() != ModeNone {
		t.Errorf("expected escape to leave swap mode")
	}
	if _, ok := rec.last(EventSwapRequested); ok {
		t.Errorf("expected no swap request after escape")
	}
	if _, ok := rec.last(EventSwapCancelled); !ok {
		t.Errorf("expected a swap cancelled event")
	}
	in, _ := e.SwapSelection()
	if len(in) != 0 {
		t.Errorf("expected selection cleared, got %v", in)
	}
}

func TestModesAreMutuallyExclusive(t *testing.T) {
	e, _, _ := testEngine(Options{})
	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{mkRoom("r1", "101", 1, false)},
		Reservations: []*model.Reservation{mkRes("a", "r1", 0, 3, 1)},
	})

	e.StartSwap()
	_ = e.swapClick("a")
	e.StartUnify()

	if e.CurrentMode() != ModeUnify {
		t.Fatalf("expected unify mode, got %v", e.CurrentMode())
	}
	in, _ := e.SwapSelection()
	if len(in) != 0 {
		t.Errorf("expected swap selection cleared on mode switch, got %v", in)
	}
}
