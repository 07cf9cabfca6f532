package engine

import (
	"testing"

	"roomgrid/pkg/model"
)

func TestRoomPriceResolution(t *testing.T) {
	e, _, _ := testEngine(Options{})
	listed := mkRoom("r1", "101", 1, false)
	listed.PricelistKey = "std"
	fixed := mkRoom("r2", "102", 1, false)
	fixed.Price = 75

	pricelist := make(model.Pricelist)
	pricelist.Set("std", day(0), 100)
	pricelist.Set("std", day(1), 120)

	e.SetData(&model.CalendarData{
		Rooms:     []*model.Room{listed, fixed},
		Pricelist: pricelist,
	})

	if got := e.RoomPrice(listed, day(0)); got != 100 {
		t.Errorf("expected listed price 100, got %v", got)
	}
	if got := e.RoomPrice(listed, day(1)); got != 120 {
		t.Errorf("expected listed price 120, got %v", got)
	}
	// A day missing from the list falls back to the fixed price.
	if got := e.RoomPrice(listed, day(5)); got != listed.Price {
		t.Errorf("expected fallback price %v, got %v", listed.Price, got)
	}
	if got := e.RoomPrice(fixed, day(0)); got != 75 {
		t.Errorf("expected fixed price 75, got %v", got)
	}
}

func TestReservationPriceSumsNights(t *testing.T) {
	e, _, _ := testEngine(Options{})
	room := mkRoom("r1", "101", 1, false)
	room.PricelistKey = "std"
	pricelist := make(model.Pricelist)
	pricelist.Set("std", day(0), 100)
	pricelist.Set("std", day(1), 120)
	pricelist.Set("std", day(2), 90)

	e.SetData(&model.CalendarData{
		Rooms:        []*model.Room{room},
		Pricelist:    pricelist,
		Reservations: []*model.Reservation{mkRes("a", "r1", 0, 3, 1)},
	})

	res, _ := e.Reservation("a")
	if got := e.ReservationPrice(res); got != 310 {
		t.Errorf("expected 100+120+90=310, got %v", got)
	}

	res.Cancelled = true
	if got := e.ReservationPrice(res); got != 0 {
		t.Errorf("expected cancelled reservation priced at 0, got %v", got)
	}
}

func TestSelectionPriceChargesSharedBedsOnly(t *testing.T) {
	e, _, _ := testEngine(Options{})
	dorm := mkRoom("dorm", "D1", 4, true)
	dorm.Price = 20
	double := mkRoom("r1", "101", 2, false)
	double.Price = 80
	e.SetData(&model.CalendarData{Rooms: []*model.Room{dorm, double}})

	start := e.table.dayOffset(day(0))
	if got := e.SelectionPrice(dorm, start, start+2, 3); got != 120 {
		t.Errorf("expected 2 nights x 3 beds x 20 = 120, got %v", got)
	}
	if got := e.SelectionPrice(double, start, start+2, 2); got != 160 {
		t.Errorf("expected 2 nights x 80 regardless of bed count, got %v", got)
	}
}

func TestSetPriceEmitsEdit(t *testing.T) {
	e, _, rec := testEngine(Options{})
	room := mkRoom("r1", "101", 1, false)
	room.PricelistKey = "std"
	e.SetData(&model.CalendarData{Rooms: []*model.Room{room}})

	off := e.table.dayOffset(day(3))
	e.SetPrice("std", off, 99)

	if got := e.RoomPrice(room, day(3)); got != 99 {
		t.Errorf("expected edited price visible, got %v", got)
	}
	ev, ok := rec.last(EventPricelistEdited)
	if !ok {
		t.Fatal("expected a pricelist edit event")
	}
	edit := ev.Data.(PricelistEdit)
	if edit.Key != "std" || edit.Price != 99 || edit.Date != model.DayKey(day(3)) {
		t.Errorf("unexpected edit payload %+v", edit)
	}
}
