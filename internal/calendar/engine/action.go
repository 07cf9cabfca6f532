package engine

import (
	"time"

	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/model"
)

type ActionType int

const (
	ActionNone ActionType = iota
	ActionMoveAll
	ActionMoveLeft
	ActionMoveRight
	ActionMoveDown
)

// Action is one in-flight drag/resize interaction. Draft is the clone
// being mutated; the committed reservation is untouched until PointerUp
// commits.
type Action struct {
	Type        ActionType
	Reservation *model.Reservation
	Draft       *model.Reservation
	Origin      CellRef
	StartedAt   time.Time

	// InProgress flips once the pointer has been held past the action
	// delay; before that the gesture still counts as a click.
	InProgress bool
	Valid      bool
}

func (e *Engine) CurrentAction() *Action { return e.action }

// PointerDown starts an interaction on a reservation block. The region
// within the block selects the sub-action. Starting a new interaction
// implicitly abandons any previous uncommitted one.
func (e *Engine) PointerDown(reservationID string, cell CellRef, region Region) error {
	switch e.mode {
	case ModeSwap:
		return e.swapClick(reservationID)
	case ModeDivide:
		return e.divideDown(cell)
	case ModeUnify:
		return e.ToggleUnify(reservationID)
	}

	e.resetAction()

	res, ok := e.byID[reservationID]
	if !ok {
		return apperrors.NotFoundWithID("Reservation", reservationID)
	}
	if res.ReadOnly || res.UnusedZone {
		return apperrors.InvalidOperation("reservation is not interactive", map[string]any{
			"reservation_id": reservationID,
		})
	}

	actionType := ActionMoveAll
	switch region {
	case RegionLeftEdge:
		actionType = ActionMoveLeft
	case RegionRightEdge:
		actionType = ActionMoveRight
	case RegionBottomEdge:
		actionType = ActionMoveDown
	}

	e.action = &Action{
		Type:        actionType,
		Reservation: res,
		Draft:       res.Clone(),
		Origin:      cell,
		StartedAt:   e.clock.Now(),
		Valid:       true,
	}
	return nil
}

// PointerMove recomputes the draft against the hovered cell. The first
// move past the action delay marks the interaction as in progress; moves
// before that are debounced away as micro-drags.
func (e *Engine) PointerMove(cell CellRef) *Limit {
	act := e.action
	if act == nil {
		return nil
	}
	if !act.InProgress {
		if e.clock.Now().Sub(act.StartedAt) < e.opts.ActionDelay {
			return nil
		}
		act.InProgress = true
	}

	res := act.Reservation
	draft := res.Clone()
	dayDelta := cell.Day - act.Origin.Day

	switch act.Type {
	case ActionMoveAll:
		draft.StartDate = res.StartDate.AddDate(0, 0, dayDelta)
		draft.EndDate = res.EndDate.AddDate(0, 0, dayDelta)
		if row, ok := e.table.rowAt(cell.Row); ok && !row.Room.IsExtra() {
			draft.Room = row.Room
			draft.RoomID = row.Room.ID
		}
	case ActionMoveLeft:
		start := res.StartDate.AddDate(0, 0, dayDelta)
		if !start.Before(res.EndDate) {
			start = res.EndDate.AddDate(0, 0, -1)
		}
		draft.StartDate = start
	case ActionMoveRight:
		end := res.EndDate.AddDate(0, 0, dayDelta)
		if !end.After(res.StartDate) {
			end = res.StartDate.AddDate(0, 0, 1)
		}
		draft.EndDate = end
	case ActionMoveDown:
		bedDelta := cell.Bed - act.Origin.Bed
		guests := res.Guests(e.opts.CountChildrenAsGuests) + bedDelta
		if guests < 1 {
			guests = 1
		}
		draft.Adults = guests
		if e.opts.CountChildrenAsGuests {
			draft.Adults = guests - res.Children
			if draft.Adults < 1 {
				draft.Adults = 1
			}
		}
	}

	act.Draft = draft
	act.Valid = e.validateDraft(act)

	limit := e.draftLimit(act)
	return &limit
}

// validateDraft applies the constraint set: locked dates/rooms, capacity
// and occupancy collisions.
func (e *Engine) validateDraft(act *Action) bool {
	res, draft := act.Reservation, act.Draft

	datesChanged := !draft.StartDate.Equal(res.StartDate) || !draft.EndDate.Equal(res.EndDate)
	if res.FixDays && datesChanged {
		return false
	}
	roomChanged := draft.Room != nil && res.Room != nil && draft.Room.ID != res.Room.ID
	if res.FixRooms && roomChanged {
		return false
	}

	if draft.Room != nil {
		needed := e.bedsNeeded(draft)
		if needed > e.bedCount(draft.Room) {
			return false
		}
	}

	limit := e.draftLimit(act)
	return limit.Valid
}

// draftLimit places the draft. With assisted movement the placement
// retries free beds; without it the draft stays on its requested bed and
// any collision just flags the block invalid.
func (e *Engine) draftLimit(act *Action) Limit {
	draft := act.Draft
	candidate := 0
	if len(act.Reservation.BedIndices) > 0 {
		candidate = act.Reservation.BedIndices[0]
	}

	if e.opts.AssistedMovement {
		limit := e.CalcReservationCellLimits(draft, candidate, true)
		if !limit.Valid {
			limit = e.CalcReservationCellLimits(draft, 0, true)
		}
		return limit
	}

	limit := e.CalcReservationCellLimits(draft, candidate, false)
	if limit.Valid && e.bedsCollide(draft, draft.Room, limit.Left.Bed, limit.Right.Bed-limit.Left.Bed+1) {
		limit.Valid = false
	}
	return limit
}

// PointerUp ends the interaction. A gesture that never crossed the
// action delay is a click. An invalid pending change reverts to the
// original unless invalid actions are allowed. Otherwise the change is
// applied optimistically and a change event with old/new snapshots and
// prices is emitted for the host to persist.
func (e *Engine) PointerUp() (*ReservationChange, error) {
	if e.mode == ModeDivide {
		return nil, e.divideUp()
	}

	act := e.action
	if act == nil {
		return nil, nil
	}
	defer e.resetAction()

	if !act.InProgress {
		e.emit(EventReservationClicked, act.Reservation)
		return nil, nil
	}

	if !act.Valid && !e.opts.AllowInvalidActions {
		return nil, nil
	}

	res, draft := act.Reservation, act.Draft
	unchanged := draft.StartDate.Equal(res.StartDate) &&
		draft.EndDate.Equal(res.EndDate) &&
		draft.RoomID == res.RoomID &&
		draft.Adults == res.Adults
	if unchanged {
		return nil, nil
	}

	oldPrice := e.ReservationPrice(res)
	newPrice := e.ReservationPrice(draft)

	snapshot := res.Clone()
	e.pending[res.ID] = snapshot
	e.applyDraft(draft)

	change := &ReservationChange{
		Old:      snapshot,
		New:      draft,
		OldPrice: oldPrice,
		NewPrice: newPrice,
	}
	e.emit(EventReservationChanged, change)
	return change, nil
}

// applyDraft supersedes the committed reservation with its mutated
// clone, keeping the pending snapshot for a possible revert.
func (e *Engine) applyDraft(draft *model.Reservation) {
	pending := e.pending[draft.ID]
	e.replaceReservation(draft)
	if pending != nil {
		e.pending[draft.ID] = pending
	}
}

// Revert rolls a reservation back to its pre-change snapshot. The
// engine never detects host failure itself; the caller must invoke this
// explicitly when the persist request is rejected.
func (e *Engine) Revert(reservationID string) error {
	snapshot, ok := e.pending[reservationID]
	if !ok {
		return apperrors.NotFoundWithID("Pending change", reservationID)
	}
	delete(e.pending, reservationID)
	e.replaceReservation(snapshot)
	return nil
}

// Ack discards the pending snapshot after the host confirms the persist.
func (e *Engine) Ack(reservationID string) {
	delete(e.pending, reservationID)
}

// resetAction clears the in-progress record before a new interaction
// starts or after one ends.
func (e *Engine) resetAction() {
	e.action = nil
}

// DoubleClick reports a double-click on a reservation to the host.
func (e *Engine) DoubleClick(reservationID string) {
	if res, ok := e.byID[reservationID]; ok {
		e.emit(EventReservationDblClicked, res)
	}
}
