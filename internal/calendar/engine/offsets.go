package engine

import "roomgrid/pkg/model"

// offsetCache memoizes the cumulative pixel Y of every row header so
// rect lookups stay O(1) between structural changes. Recomputed lazily
// on first use after an invalidation.
type offsetCache struct {
	rowY  map[string]int
	valid bool
}

func (e *Engine) invalidateOffsets() {
	e.offsets.valid = false
}

func (e *Engine) ensureOffsets() {
	if e.offsets.valid {
		return
	}
	e.offsets.rowY = make(map[string]int, len(e.table.rows))
	for _, row := range e.table.rows {
		e.offsets.rowY[row.Room.ID] = row.Y * e.opts.CellHeight
	}
	e.offsets.valid = true
}

// ReservationRect converts a placed reservation into its pixel
// rectangle. Soft-clipped ends draw half a cell past the boundary cell
// so the block visually bleeds off the window edge.
func (e *Engine) ReservationRect(res *model.Reservation) (Rect, bool) {
	if res == nil || !res.Placed {
		return Rect{}, false
	}
	limit := e.Limit(res)
	if !limit.Valid {
		return Rect{}, false
	}
	e.ensureOffsets()

	rowY, ok := e.offsets.rowY[res.RoomID]
	if !ok {
		return Rect{}, false
	}

	cw, ch := e.opts.CellWidth, e.opts.CellHeight
	x := limit.Left.Day*cw + cw/2
	right := limit.Right.Day*cw + cw + cw/2
	if res.DrawModes[0] == model.DrawSoftStart {
		x = limit.Left.Day * cw
	}
	if res.DrawModes[1] == model.DrawSoftEnd {
		right = (limit.Right.Day + 1) * cw
	}

	beds := len(res.BedIndices)
	if beds == 0 {
		beds = 1
	}
	return Rect{
		X: x,
		Y: rowY + limit.Left.Bed*ch,
		W: right - x,
		H: beds * ch,
	}, true
}

// OverbookingIndicator marks an extra row that currently sits outside
// the visible scroll window, with the direction the user must scroll
// to reach it.
type OverbookingIndicator struct {
	RoomID string `json:"room_id"`
	Label  string `json:"label"`
	Above  bool   `json:"above"`
}

// OverbookingIndicators reports extra rows scrolled out of the
// [viewTop, viewTop+viewHeight) pixel window.
func (e *Engine) OverbookingIndicators(viewTop, viewHeight int) []OverbookingIndicator {
	e.ensureOffsets()

	var out []OverbookingIndicator
	for _, row := range e.table.rows {
		if !row.Room.IsExtra() {
			continue
		}
		top := e.offsets.rowY[row.Room.ID]
		bottom := top + row.Beds*e.opts.CellHeight
		if bottom <= viewTop {
			out = append(out, OverbookingIndicator{RoomID: row.Room.ID, Label: row.Room.Number, Above: true})
		} else if top >= viewTop+viewHeight {
			out = append(out, OverbookingIndicator{RoomID: row.Room.ID, Label: row.Room.Number, Above: false})
		}
	}
	return out
}
