package engine

import (
	"roomgrid/pkg/model"
)

// BeginSelection starts a drag selection of free cells in a room row.
// Returns false on extra rows and out-of-range cells.
func (e *Engine) BeginSelection(cell CellRef) bool {
	row, ok := e.table.rowAt(cell.Row)
	if !ok || row.Room.IsExtra() {
		return false
	}
	if cell.Day < 0 || cell.Day >= e.table.Days {
		return false
	}
	if _, hit := e.ReservationAt(cell); hit {
		return false
	}

	start := e.table.dayAt(cell.Day)
	e.selection = &Selection{
		RoomID:    row.Room.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		Beds:      1,
	}
	e.selection.Price = e.SelectionPrice(row.Room, cell.Day, cell.Day+1, 1)
	return true
}

// ExtendSelection grows the active selection toward the hovered cell.
// The selection stays inside the original room row; only the day span
// and bed count follow the pointer.
func (e *Engine) ExtendSelection(cell CellRef) *Selection {
	if e.selection == nil {
		return nil
	}
	row, ok := e.table.row(e.selection.RoomID)
	if !ok {
		e.selection = nil
		return nil
	}

	startDay := e.table.dayOffset(e.selection.StartDate)
	endDay := cell.Day
	if endDay < startDay {
		endDay = startDay
	}
	if endDay >= e.table.Days {
		endDay = e.table.Days - 1
	}

	beds := cell.Bed + 1
	if beds < 1 {
		beds = 1
	}
	if beds > row.Beds {
		beds = row.Beds
	}

	e.selection.EndDate = e.table.dayAt(endDay).AddDate(0, 0, 1)
	e.selection.Beds = beds
	e.selection.Price = e.SelectionPrice(row.Room, startDay, endDay+1, beds)
	return e.selection
}

// EndSelection finalizes the active selection, emits it to the host and
// clears it. Returns nil when nothing was selected.
func (e *Engine) EndSelection() *Selection {
	sel := e.selection
	e.selection = nil
	if sel == nil {
		return nil
	}
	if !sel.EndDate.After(sel.StartDate) {
		return nil
	}
	e.emit(EventSelectionChanged, sel)
	return sel
}

// CancelSelection drops the active selection without emitting.
func (e *Engine) CancelSelection() {
	e.selection = nil
}

// SetPrice edits one pricelist cell and notifies the host, so an inline
// price edit in the header row round-trips through the same event bus
// as reservation changes.
func (e *Engine) SetPrice(key string, day int, price float64) {
	if day < 0 || day >= e.table.Days {
		return
	}
	date := e.table.dayAt(day)
	e.pricelist.Set(key, date, price)
	e.emit(EventPricelistEdited, PricelistEdit{
		Key:   key,
		Date:  model.DayKey(date),
		Price: price,
	})
}

// Tooltip returns the host-supplied tooltip text for a reservation.
func (e *Engine) Tooltip(reservationID string) (string, bool) {
	if e.tooltips == nil {
		return "", false
	}
	t, ok := e.tooltips[reservationID]
	return t, ok
}

// EventsOn lists calendar events (fairs, closures, notes) overlapping a
// visible day, for header badges.
func (e *Engine) EventsOn(day int) []model.CalendarEvent {
	if day < 0 || day >= e.table.Days {
		return nil
	}
	key := model.DayKey(e.table.dayAt(day))
	var out []model.CalendarEvent
	for _, ev := range e.events {
		if ev.Date == key {
			out = append(out, ev)
		}
	}
	return out
}
