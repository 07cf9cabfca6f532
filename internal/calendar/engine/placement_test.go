package engine

import (
	"testing"

	"roomgrid/pkg/model"
)

func TestClippingAtWindowEdges(t *testing.T) {
	e, _, _ := testEngine(Options{Days: 14})
	e.SetData(&model.CalendarData{
		Rooms: []*model.Room{mkRoom("r1", "101", 1, false)},
	})

	t.Run("start before window", func(t *testing.T) {
		e.AddReservation(mkRes("early", "r1", -5, 3, 1))
		res, ok := e.Reservation("early")
		if !ok {
			t.Fatal("expected the reservation to be placed")
		}
		limit := e.Limit(res)
		if !limit.Valid {
			t.Fatal("expected a valid clipped limit")
		}
		if limit.Left.Day != 0 {
			t.Errorf("expected left edge clipped to column 0, got %d", limit.Left.Day)
		}
		if res.DrawModes[0] != model.DrawSoftStart {
			t.Errorf("expected soft-start, got %q", res.DrawModes[0])
		}
		if res.DrawModes[1] != model.DrawHardEnd {
			t.Errorf("expected hard-end, got %q", res.DrawModes[1])
		}
	})

	t.Run("end past window", func(t *testing.T) {
		e.AddReservation(mkRes("late", "r1", 10, 25, 1))
		res, ok := e.Reservation("late")
		if !ok {
			t.Fatal("expected the reservation to be placed")
		}
		limit := e.Limit(res)
		if limit.Right.Day != e.table.Days-1 {
			t.Errorf("expected right edge clipped to last column %d, got %d", e.table.Days-1, limit.Right.Day)
		}
		if res.DrawModes[1] != model.DrawSoftEnd {
			t.Errorf("expected soft-end, got %q", res.DrawModes[1])
		}
	})

	t.Run("fully outside window", func(t *testing.T) {
		e.AddReservation(mkRes("gone", "r1", 40, 45, 1))
		if _, ok := e.Reservation("gone"); ok {
			t.Errorf("expected a reservation outside the window to be dropped")
		}
	})
}

func TestCheckoutOnFirstVisibleDayStillDraws(t *testing.T) {
	// The table starts one day before the requested window so a
	// reservation ending on the first visible day keeps its last night.
	e, _, _ := testEngine(Options{Days: 14})
	e.SetData(&model.CalendarData{
		Rooms: []*model.Room{mkRoom("r1", "101", 1, false)},
	})

	e.AddReservation(mkRes("checkout", "r1", -3, 0, 1))
	res, ok := e.Reservation("checkout")
	if !ok {
		t.Fatal("expected the reservation to be placed on the lead-in column")
	}
	limit := e.Limit(res)
	if limit.Left.Day != 0 || limit.Right.Day != 0 {
		t.Errorf("expected the last night on column 0, got [%d, %d]", limit.Left.Day, limit.Right.Day)
	}
}

func TestBedRetryFindsFreeSlot(t *testing.T) {
	e, _, _ := testEngine(Options{})
	e.SetData(&model.CalendarData{
		Rooms: []*model.Room{mkRoom("dorm", "D1", 3, true)},
	})

	e.AddReservation(mkRes("a", "dorm", 0, 4, 1))
	e.AddReservation(mkRes("b", "dorm", 0, 4, 1))

	a, _ := e.Reservation("a")
	b, _ := e.Reservation("b")
	if a.BedIndices[0] != 0 {
		t.Errorf("expected a on bed 0, got %d", a.BedIndices[0])
	}
	if b.BedIndices[0] != 1 {
		t.Errorf("expected b bumped to bed 1, got %d", b.BedIndices[0])
	}

	// Disjoint dates reuse the same bed.
	e.AddReservation(mkRes("c", "dorm", 4, 6, 1))
	c, _ := e.Reservation("c")
	if c.BedIndices[0] != 0 {
		t.Errorf("expected c on bed 0 after a checks out, got %d", c.BedIndices[0])
	}
}

func TestRelayoutRecomputesBedCounts(t *testing.T) {
	e, _, _ := testEngine(Options{})
	double := mkRoom("r1", "101", 2, false)
	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{double, mkRoom("r2", "102", 1, false)},
		Reservations: []*model.Reservation{mkRes("a", "r1", 0, 2, 2)},
	})

	if e.table.rows[0].Beds != 1 {
		t.Fatalf("expected non-shared room to render 1 bed row, got %d", e.table.rows[0].Beds)
	}

	e.SetOption(func(o *Options) { o.DivideRoomsByCapacity = true })

	if e.table.rows[0].Beds != 2 {
		t.Errorf("expected capacity-divided room to render 2 bed rows, got %d", e.table.rows[0].Beds)
	}
	if e.table.rows[1].Y != 2 {
		t.Errorf("expected second room shifted below the widened row, Y=%d", e.table.rows[1].Y)
	}
	if a, ok := e.Reservation("a"); !ok || len(a.BedIndices) != 2 {
		t.Errorf("expected the reservation re-placed across 2 beds")
	}
}
