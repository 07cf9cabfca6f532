package engine

import (
	"time"

	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/model"
)

// StartSwap enters swap mode: clicks populate the source set until the
// target toggle, then the destination set.
func (e *Engine) StartSwap() {
	e.SetMode(ModeSwap)
}

// ToggleSwapTarget switches clicks from filling the source set to the
// destination set (Ctrl-release in the original interaction).
func (e *Engine) ToggleSwapTarget() {
	if e.mode == ModeSwap {
		e.swapFillingOut = true
	}
}

func (e *Engine) SwapSelection() (in, out []string) {
	for _, r := range e.swapIn {
		in = append(in, r.ID)
	}
	for _, r := range e.swapOut {
		out = append(out, r.ID)
	}
	return in, out
}

// swapClick toggles a reservation's membership in the currently filled
// set, enforcing the validity rules: every candidate shares the room of
// its set's first member, fits the opposite room's capacity, and lies
// inside the capacity-derived free-date window around the anchor.
func (e *Engine) swapClick(reservationID string) error {
	res, ok := e.byID[reservationID]
	if !ok {
		return apperrors.NotFoundWithID("Reservation", reservationID)
	}
	if res.UnusedZone || res.ReadOnly {
		return apperrors.InvalidOperation("reservation cannot take part in a swap", map[string]any{
			"reservation_id": reservationID,
		})
	}

	set := &e.swapIn
	opposite := e.swapOut
	if e.swapFillingOut {
		set, opposite = &e.swapOut, e.swapIn
	}

	for i, member := range *set {
		if member.ID == res.ID {
			*set = append((*set)[:i], (*set)[i+1:]...)
			return nil
		}
	}

	if len(*set) > 0 && (*set)[0].Room.ID != res.Room.ID {
		return apperrors.InvalidOperation("swap candidates must share a room", map[string]any{
			"reservation_id": reservationID,
			"expected_room":  (*set)[0].Room.ID,
		})
	}

	if len(opposite) > 0 {
		anchor := opposite[0]
		if e.setGuests(opposite) > e.bedCount(res.Room) {
			return apperrors.InvalidOperation("opposite set exceeds room capacity", map[string]any{
				"reservation_id": reservationID,
			})
		}
		from, to := e.freeDatesWindow(anchor.Room, anchor.StartDate, anchor.EndDate, swapIDs(opposite))
		if res.StartDate.Before(from) || res.EndDate.After(to) {
			return apperrors.InvalidOperation("reservation lies outside the free-date window", map[string]any{
				"reservation_id": reservationID,
			})
		}
	}

	*set = append(*set, res)
	return nil
}

// ConfirmSwap dispatches a swap request for both sets and leaves swap
// mode. The authoritative exchange happens in SwapReservations once the
// host (or the remote service) approves.
func (e *Engine) ConfirmSwap() error {
	if len(e.swapIn) == 0 || len(e.swapOut) == 0 {
		return apperrors.InvalidOperation("both swap sets must be non-empty", nil)
	}
	in, out := e.SwapSelection()
	e.emit(EventSwapRequested, &SwapRequest{FromIDs: in, ToIDs: out})
	e.SetMode(ModeNone)
	return nil
}

// CancelSwap leaves swap mode without dispatching.
func (e *Engine) CancelSwap() {
	if e.mode == ModeSwap {
		e.emit(EventSwapCancelled, nil)
		e.SetMode(ModeNone)
	}
}

// SwapReservations performs the authoritative field exchange between the
// two sets: room, overbooking and cancelled move across. It fails
// without mutating anything when either set's occupied span does not fit
// inside the other's free-date window.
func (e *Engine) SwapReservations(fromIDs, toIDs []string) error {
	fromSet, err := e.collectSwapSet(fromIDs)
	if err != nil {
		return err
	}
	toSet, err := e.collectSwapSet(toIDs)
	if err != nil {
		return err
	}

	fromStart, fromEnd := spanOf(fromSet)
	toStart, toEnd := spanOf(toSet)

	fromRoom := fromSet[0].Room
	toRoom := toSet[0].Room

	fromWin0, fromWin1 := e.freeDatesWindow(fromRoom, fromStart, fromEnd, swapIDs(fromSet))
	if toStart.Before(fromWin0) || toEnd.After(fromWin1) {
		return apperrors.InvalidOperation("destination set does not fit the source room's free dates", nil)
	}
	toWin0, toWin1 := e.freeDatesWindow(toRoom, toStart, toEnd, swapIDs(toSet))
	if fromStart.Before(toWin0) || fromEnd.After(toWin1) {
		return apperrors.InvalidOperation("source set does not fit the destination room's free dates", nil)
	}

	fromFields := swapFields{room: fromRoom, overbooking: fromSet[0].Overbooking, cancelled: fromSet[0].Cancelled}
	toFields := swapFields{room: toRoom, overbooking: toSet[0].Overbooking, cancelled: toSet[0].Cancelled}

	for _, r := range fromSet {
		e.assignSwapFields(r, toFields)
	}
	for _, r := range toSet {
		e.assignSwapFields(r, fromFields)
	}

	e.Relayout()
	return nil
}

type swapFields struct {
	room        *model.Room
	overbooking bool
	cancelled   bool
}

func (e *Engine) assignSwapFields(res *model.Reservation, fields swapFields) {
	res.Room = fields.room
	res.RoomID = model.ParentRoomID(fields.room.ID)
	res.Overbooking = fields.overbooking
	res.Cancelled = fields.cancelled
}

func (e *Engine) collectSwapSet(ids []string) ([]*model.Reservation, error) {
	if len(ids) == 0 {
		return nil, apperrors.InvalidOperation("swap set cannot be empty", nil)
	}
	set := make([]*model.Reservation, 0, len(ids))
	for _, id := range ids {
		res, ok := e.byID[id]
		if !ok {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if res.Room == nil {
			return nil, apperrors.InvalidOperation("reservation has no resolved room", map[string]any{"reservation_id": id})
		}
		if len(set) > 0 && set[0].Room.ID != res.Room.ID {
			return nil, apperrors.InvalidOperation("swap set members must share a room", map[string]any{"reservation_id": id})
		}
		set = append(set, res)
	}
	return set, nil
}

func spanOf(set []*model.Reservation) (time.Time, time.Time) {
	start, end := set[0].StartDate, set[0].EndDate
	for _, r := range set[1:] {
		if r.StartDate.Before(start) {
			start = r.StartDate
		}
		if r.EndDate.After(end) {
			end = r.EndDate
		}
	}
	return model.Midnight(start), model.Midnight(end)
}

func swapIDs(set []*model.Reservation) map[string]bool {
	ids := make(map[string]bool, len(set))
	for _, r := range set {
		ids[r.ID] = true
	}
	return ids
}

func (e *Engine) setGuests(set []*model.Reservation) int {
	total := 0
	for _, r := range set {
		total += r.Guests(e.opts.CountChildrenAsGuests)
	}
	return total
}

// freeDatesWindow expands from the anchor span in both directions while
// the room still has a free bed each night, ignoring the excluded set.
// The window is bounded by the visible table range.
func (e *Engine) freeDatesWindow(room *model.Room, anchorStart, anchorEnd time.Time, exclude map[string]bool) (time.Time, time.Time) {
	capacity := e.bedCount(room)

	occupiedBeds := func(day time.Time) int {
		total := 0
		for _, r := range e.reservations {
			if r.UnusedZone || exclude[r.ID] {
				continue
			}
			if r.Room == nil || r.Room.ID != room.ID {
				continue
			}
			if r.OccupiedOn(day) {
				total += len(r.BedIndices)
			}
		}
		return total
	}

	from := model.Midnight(anchorStart)
	for from.After(e.table.StartDate) {
		prev := from.AddDate(0, 0, -1)
		if occupiedBeds(prev) >= capacity {
			break
		}
		from = prev
	}

	to := model.Midnight(anchorEnd)
	for to.Before(e.table.endDate()) {
		if occupiedBeds(to) >= capacity {
			break
		}
		to = to.AddDate(0, 0, 1)
	}

	return from, to
}
