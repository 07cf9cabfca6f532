package engine

import (
	"roomgrid/pkg/model"
)

// ensureExtraRow finds or synthesizes the extra room row backing an
// overbooked/cancelled reservation: a clone of the nominal room under
// the composite id, inserted right after the parent's block of rows.
func (e *Engine) ensureExtraRow(res *model.Reservation) (*Row, bool) {
	parentID := model.ParentRoomID(res.RoomID)
	extraID := model.ExtraRoomID(res.ID, parentID)

	if row, ok := e.table.row(extraID); ok {
		return row, true
	}

	parentIdx, ok := e.table.rowIndex(parentID)
	if !ok {
		return nil, false
	}
	parent := e.table.rows[parentIdx]

	extra := parent.Room.Clone()
	extra.ID = extraID
	extra.Overbooking = res.Overbooking
	extra.Cancelled = res.Cancelled
	if res.Cancelled {
		extra.Number = "CN-" + parent.Room.Number
	} else {
		extra.Number = "OB-" + parent.Room.Number
	}

	// Insert after the parent and any extras it already accumulated, so
	// the new row lands before the next sibling room.
	insertAt := parentIdx
	for insertAt+1 < len(e.table.rows) {
		next := e.table.rows[insertAt+1]
		if model.ParentRoomID(next.Room.ID) != parentID || !next.Room.IsExtra() {
			break
		}
		insertAt++
	}

	row := e.table.insertRowAfter(insertAt, extra, parent.Beds)
	e.invalidateOffsets()
	return row, true
}

// removeExtraRowIfEmpty tears down an extra row once its last occupant
// is gone, shifting the rows below upward by the removed height.
func (e *Engine) removeExtraRowIfEmpty(extraRoomID string) {
	idx, ok := e.table.rowIndex(extraRoomID)
	if !ok || !e.table.rows[idx].Room.IsExtra() {
		return
	}
	for _, r := range e.reservations {
		if r.Room != nil && r.Room.ID == extraRoomID {
			return
		}
	}
	e.table.removeRow(idx)
	e.invalidateOffsets()
}
