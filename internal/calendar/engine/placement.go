package engine

import (
	"roomgrid/pkg/model"
)

// CalcReservationCellLimits resolves the grid cells a reservation spans
// for a candidate bed index, clipping to the visible window and
// recording the draw mode per edge. When collision checking is on, an
// occupied bed bumps the candidate index and the attempt retries,
// bounded by the room's bed count.
func (e *Engine) CalcReservationCellLimits(res *model.Reservation, candidateBed int, checkCollisions bool) Limit {
	if res.Room == nil {
		return Limit{}
	}
	rowIdx, ok := e.table.rowIndex(res.Room.ID)
	if !ok {
		return Limit{}
	}
	row := e.table.rows[rowIdx]

	startOff := e.table.dayOffset(res.StartDate)
	drawStart := model.DrawHardStart
	if startOff < 0 {
		startOff = 0
		drawStart = model.DrawSoftStart
	}
	if startOff >= e.table.Days {
		return Limit{}
	}

	// The right boundary cell is the last occupied night's column.
	endOff := e.table.dayOffset(res.EndDate) - 1
	drawEnd := model.DrawHardEnd
	if endOff >= e.table.Days {
		endOff = e.table.Days - 1
		drawEnd = model.DrawSoftEnd
	}
	if endOff < 0 || endOff < startOff {
		return Limit{}
	}

	needed := e.bedsNeeded(res)
	if candidateBed < 0 {
		candidateBed = 0
	}

	for bed := candidateBed; bed+needed <= row.Beds; bed++ {
		if checkCollisions && e.bedsCollide(res, row.Room, bed, needed) {
			continue
		}
		res.DrawModes = [2]string{drawStart, drawEnd}
		return Limit{
			Left:  CellRef{Row: rowIdx, Day: startOff, Bed: bed},
			Right: CellRef{Row: rowIdx, Day: endOff, Bed: bed + needed - 1},
			Valid: true,
		}
	}

	return Limit{}
}

// bedsNeeded is how many consecutive bed slots the reservation consumes:
// its occupant count in a shared (or capacity-divided) room, one slot
// otherwise.
func (e *Engine) bedsNeeded(res *model.Reservation) int {
	if res.Room != nil && (res.Room.Shared || e.opts.DivideRoomsByCapacity) {
		return res.Guests(e.opts.CountChildrenAsGuests)
	}
	return 1
}

// bedsCollide scans each day of res's span for other non-unused-zone
// reservations already occupying the same room/beds.
func (e *Engine) bedsCollide(res *model.Reservation, room *model.Room, bed, needed int) bool {
	for _, other := range e.reservations {
		if other.ID == res.ID || other.UnusedZone || !other.Placed {
			continue
		}
		if other.Room == nil || other.Room.ID != room.ID {
			continue
		}
		if !other.Overlaps(res.StartDate, res.EndDate) {
			continue
		}
		for _, occupied := range other.BedIndices {
			if occupied >= bed && occupied < bed+needed {
				return true
			}
		}
	}
	return false
}

// place resolves and applies a reservation's placement, starting from
// its previously known bed. Unused zones never collide with anything.
func (e *Engine) place(res *model.Reservation) bool {
	candidate := 0
	if len(res.BedIndices) > 0 {
		candidate = res.BedIndices[0]
	}
	if res.UnusedZone {
		return e.placeAt(res, candidate)
	}

	limit := e.CalcReservationCellLimits(res, candidate, true)
	if !limit.Valid && candidate > 0 {
		// The remembered bed may no longer fit; retry from slot zero.
		limit = e.CalcReservationCellLimits(res, 0, true)
	}
	if !limit.Valid {
		res.Placed = false
		return false
	}
	e.applyLimit(res, limit)
	return true
}

// placeAt pins a reservation to an explicit bed without collision
// retries.
func (e *Engine) placeAt(res *model.Reservation, bed int) bool {
	limit := e.CalcReservationCellLimits(res, bed, false)
	if !limit.Valid || limit.Left.Bed != bed {
		res.Placed = false
		return false
	}
	e.applyLimit(res, limit)
	return true
}

func (e *Engine) applyLimit(res *model.Reservation, limit Limit) {
	n := limit.Right.Bed - limit.Left.Bed + 1
	beds := make([]int, n)
	for i := range beds {
		beds[i] = limit.Left.Bed + i
	}
	res.BedIndices = beds
	res.Placed = true
}

// Limit recomputes the current placement pair of a committed
// reservation without collision retries, for presentation.
func (e *Engine) Limit(res *model.Reservation) Limit {
	if !res.Placed || len(res.BedIndices) == 0 {
		return Limit{}
	}
	return e.CalcReservationCellLimits(res, res.BedIndices[0], false)
}
