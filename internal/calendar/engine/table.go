package engine

import (
	"time"

	"roomgrid/pkg/model"
)

// Row is one room's horizontal band in the grid, subdivided into Beds
// bed sub-rows. Y is the cumulative bed offset of the row's top edge.
type Row struct {
	Room *model.Room
	Beds int
	Y    int
}

// Table is the room×day arena. The day range is contiguous and fixed
// per render cycle.
type Table struct {
	StartDate time.Time
	Days      int

	rows  []*Row
	index map[string]int
}

func newTable(startDate time.Time, days int) *Table {
	return &Table{
		StartDate: model.Midnight(startDate),
		Days:      days,
		index:     make(map[string]int),
	}
}

func (t *Table) appendRow(room *model.Room, beds int) *Row {
	y := 0
	if n := len(t.rows); n > 0 {
		last := t.rows[n-1]
		y = last.Y + last.Beds
	}
	row := &Row{Room: room, Beds: beds, Y: y}
	t.rows = append(t.rows, row)
	t.index[room.ID] = len(t.rows) - 1
	return row
}

// insertRowAfter injects a row after position idx and renumbers the
// rows below by the inserted height only.
func (t *Table) insertRowAfter(idx int, room *model.Room, beds int) *Row {
	anchor := t.rows[idx]
	row := &Row{Room: room, Beds: beds, Y: anchor.Y + anchor.Beds}

	t.rows = append(t.rows, nil)
	copy(t.rows[idx+2:], t.rows[idx+1:])
	t.rows[idx+1] = row

	for i := idx + 2; i < len(t.rows); i++ {
		t.rows[i].Y += beds
	}
	t.reindex()
	return row
}

// removeRow drops the row at idx and shifts every row below upward by
// exactly the removed height.
func (t *Table) removeRow(idx int) {
	removed := t.rows[idx]
	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	for i := idx; i < len(t.rows); i++ {
		t.rows[i].Y -= removed.Beds
	}
	t.reindex()
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		t.index[row.Room.ID] = i
	}
}

func (t *Table) rowIndex(roomID string) (int, bool) {
	idx, ok := t.index[roomID]
	return idx, ok
}

func (t *Table) row(roomID string) (*Row, bool) {
	if idx, ok := t.index[roomID]; ok {
		return t.rows[idx], true
	}
	return nil, false
}

// Rows exposes the table rows in display order.
func (t *Table) Rows() []*Row {
	return t.rows
}

func (t *Table) rowAt(idx int) (*Row, bool) {
	if idx < 0 || idx >= len(t.rows) {
		return nil, false
	}
	return t.rows[idx], true
}

func (t *Table) dayOffset(day time.Time) int {
	return model.DaysBetween(t.StartDate, day)
}

func (t *Table) dayAt(offset int) time.Time {
	return t.StartDate.AddDate(0, 0, offset)
}

func (t *Table) endDate() time.Time {
	return t.StartDate.AddDate(0, 0, t.Days)
}

// totalBeds is the grid height in bed units.
func (t *Table) totalBeds() int {
	if len(t.rows) == 0 {
		return 0
	}
	last := t.rows[len(t.rows)-1]
	return last.Y + last.Beds
}
