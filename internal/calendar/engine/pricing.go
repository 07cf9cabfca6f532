package engine

import (
	"time"

	"roomgrid/pkg/model"
)

// RoomPrice resolves the nightly rate of a room on a given day. Rooms
// carrying a pricelist key read from the shared pricelist; rooms with a
// fixed price use it directly.
func (e *Engine) RoomPrice(room *model.Room, day time.Time) float64 {
	if room == nil {
		return 0
	}
	if room.PricelistKey != "" {
		if price, ok := e.pricelist.Price(room.PricelistKey, day); ok {
			return price
		}
	}
	return room.Price
}

// PriceRange sums nightly rates of a room over day offsets [start, end).
// The end offset is the departure day and is never charged.
func (e *Engine) PriceRange(room *model.Room, start, end int) float64 {
	total := 0.0
	for d := start; d < end; d++ {
		total += e.RoomPrice(room, e.table.dayAt(d))
	}
	return total
}

// ReservationPrice computes the current total price of a reservation
// from its committed dates. Cancelled reservations and unused zones
// are priced at zero.
func (e *Engine) ReservationPrice(res *model.Reservation) float64 {
	if res == nil || res.Cancelled || res.UnusedZone {
		return 0
	}
	room := res.Room
	if room == nil {
		if row, ok := e.table.row(res.RoomID); ok {
			room = row.Room
		}
	}
	if room == nil {
		return 0
	}
	total := 0.0
	for d := model.Midnight(res.StartDate); d.Before(res.EndDate); d = d.AddDate(0, 0, 1) {
		total += e.RoomPrice(room, d)
	}
	return total
}

// SelectionPrice prices an in-progress drag selection. For non-shared
// rooms only the first bed lane is charged so that dragging down over
// a double room does not double the quote.
func (e *Engine) SelectionPrice(room *model.Room, startDay, endDay, beds int) float64 {
	if room == nil {
		return 0
	}
	perNight := e.PriceRange(room, startDay, endDay)
	if room.Shared && beds > 1 {
		return perNight * float64(beds)
	}
	return perNight
}
