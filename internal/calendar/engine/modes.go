package engine

import (
	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/model"
)

// SetMode switches the interaction mode. Swap, divide and unify are
// mutually exclusive; the outgoing mode's selection is cleared.
func (e *Engine) SetMode(mode Mode) {
	if e.mode == mode {
		return
	}
	e.swapIn = nil
	e.swapOut = nil
	e.swapFillingOut = false
	e.divideRes = nil
	e.divideSet = false
	e.toUnify = nil
	e.resetAction()
	e.mode = mode
}

func (e *Engine) StartDivide() {
	e.SetMode(ModeDivide)
}

func (e *Engine) StartUnify() {
	e.SetMode(ModeUnify)
}

// divideDown records the candidate split date: a day cell inside a
// reservation's span that is neither its first nor its final day.
func (e *Engine) divideDown(cell CellRef) error {
	res, ok := e.ReservationAt(cell)
	if !ok {
		return apperrors.NotFound("Reservation at cell")
	}
	if res.ReadOnly {
		return apperrors.InvalidOperation("reservation cannot be divided", map[string]any{
			"reservation_id": res.ID,
		})
	}

	day := model.Midnight(e.table.dayAt(cell.Day))
	lastNight := model.Midnight(res.EndDate).AddDate(0, 0, -1)
	if !day.After(model.Midnight(res.StartDate)) || !day.Before(lastNight) {
		return apperrors.InvalidOperation("split point must fall strictly inside the span", map[string]any{
			"reservation_id": res.ID,
			"day":            model.DayKey(day),
		})
	}

	e.divideRes = res
	e.divideDay = day
	e.divideSet = true
	return nil
}

// divideUp completes the divide: it emits a split request carrying the
// night offset of the second segment and leaves divide mode.
func (e *Engine) divideUp() error {
	if !e.divideSet {
		return nil
	}
	nights := model.DaysBetween(e.divideDay, e.divideRes.EndDate)
	e.emit(EventSplitRequested, &SplitRequest{
		ReservationID: e.divideRes.ID,
		Nights:        nights,
	})
	e.SetMode(ModeNone)
	return nil
}

// DividePreview exposes the recorded split point for the two-box
// divider overlay.
func (e *Engine) DividePreview() (reservationID string, day string, ok bool) {
	if !e.divideSet {
		return "", "", false
	}
	return e.divideRes.ID, model.DayKey(e.divideDay), true
}

// ToggleUnify toggles a reservation's membership in the unify list.
// Candidates must share the first member's room and either touch it
// date-wise (end equals next start) or be linked to it as parent/child.
func (e *Engine) ToggleUnify(reservationID string) error {
	res, ok := e.byID[reservationID]
	if !ok {
		return apperrors.NotFoundWithID("Reservation", reservationID)
	}
	if res.UnusedZone || res.ReadOnly {
		return apperrors.InvalidOperation("reservation cannot be unified", map[string]any{
			"reservation_id": reservationID,
		})
	}

	for i, member := range e.toUnify {
		if member.ID == res.ID {
			e.toUnify = append(e.toUnify[:i], e.toUnify[i+1:]...)
			return nil
		}
	}

	if len(e.toUnify) > 0 {
		first := e.toUnify[0]
		if first.Room.ID != res.Room.ID {
			return apperrors.InvalidOperation("unify candidates must share a room", map[string]any{
				"reservation_id": reservationID,
				"expected_room":  first.Room.ID,
			})
		}
		adjacent := model.Midnight(first.EndDate).Equal(model.Midnight(res.StartDate)) ||
			model.Midnight(res.EndDate).Equal(model.Midnight(first.StartDate))
		linked := res.LinkedID == first.ID || first.LinkedID == res.ID
		if !adjacent && !linked {
			return apperrors.InvalidOperation("unify candidates must be date-adjacent or linked", map[string]any{
				"reservation_id": reservationID,
			})
		}
	}

	e.toUnify = append(e.toUnify, res)
	return nil
}

func (e *Engine) UnifySelection() []string {
	ids := make([]string, 0, len(e.toUnify))
	for _, r := range e.toUnify {
		ids = append(ids, r.ID)
	}
	return ids
}

// KeyEnter confirms the current mode's selection. In unify mode a list
// of more than one member dispatches a unify request; in divide mode an
// incomplete divide is a no-op for dispatch. Either way the mode exits.
func (e *Engine) KeyEnter() {
	switch e.mode {
	case ModeUnify:
		if len(e.toUnify) > 1 {
			e.emit(EventUnifyRequested, &UnifyRequest{IDs: e.UnifySelection()})
		}
		e.SetMode(ModeNone)
	case ModeDivide:
		_ = e.divideUp()
		e.SetMode(ModeNone)
	case ModeSwap:
		_ = e.ConfirmSwap()
	}
}

// KeyEscape abandons the current mode without dispatching.
func (e *Engine) KeyEscape() {
	switch e.mode {
	case ModeSwap:
		e.CancelSwap()
	case ModeDivide, ModeUnify:
		e.SetMode(ModeNone)
	default:
		e.resetAction()
	}
}
