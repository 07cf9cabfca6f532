package mgmt

import (
	"sort"
	"time"

	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

// CellValues is the editable state of one room-type×day cell.
// ChannelAvail is reported by the channel manager and never editable.
type CellValues struct {
	Price          float64 `json:"price"`
	Quota          int     `json:"quota"`
	MaxAvail       int     `json:"max_avail"`
	ChannelAvail   int     `json:"channel_avail"`
	MinStay        int     `json:"min_stay"`
	MaxStay        int     `json:"max_stay"`
	MinStayArrival int     `json:"min_stay_arrival"`
	MaxStayArrival int     `json:"max_stay_arrival"`
	Closure        string  `json:"closure"`
	NoOTA          bool    `json:"no_ota"`
}

// Cell tracks its current values against the baseline captured at load
// or merge time. A cell is dirty when any field departed from the
// baseline; saving emits only dirty cells.
type Cell struct {
	RoomType string
	Date     string

	cur  CellValues
	orig CellValues
}

func (c *Cell) Values() CellValues { return c.cur }

func (c *Cell) Changed() bool { return c.cur != c.orig }

func (c *Cell) priceChanged() bool { return c.cur.Price != c.orig.Price }

func (c *Cell) restrictionChanged() bool {
	return c.cur.MinStay != c.orig.MinStay ||
		c.cur.MaxStay != c.orig.MaxStay ||
		c.cur.MinStayArrival != c.orig.MinStayArrival ||
		c.cur.MaxStayArrival != c.orig.MaxStayArrival ||
		c.cur.Closure != c.orig.Closure ||
		c.cur.NoOTA != c.orig.NoOTA
}

func (c *Cell) availabilityChanged() bool {
	return c.cur.Quota != c.orig.Quota || c.cur.MaxAvail != c.orig.MaxAvail
}

// Grid is the management engine: a room-type×day table of editable
// cells over a fixed date range.
type Grid struct {
	log *logger.Logger

	startDate time.Time
	days      int

	roomTypes []string
	cells     map[string]map[string]*Cell

	clipboard *CellValues
}

func New(log *logger.Logger, startDate time.Time, days int, roomTypes []string) *Grid {
	g := &Grid{
		log:       log,
		startDate: model.Midnight(startDate),
		days:      days,
		roomTypes: append([]string(nil), roomTypes...),
		cells:     make(map[string]map[string]*Cell, len(roomTypes)),
	}
	for _, rt := range roomTypes {
		g.cells[rt] = make(map[string]*Cell, days)
		for d := 0; d < days; d++ {
			key := g.dayKey(d)
			g.cells[rt][key] = &Cell{
				RoomType: rt,
				Date:     key,
				cur:      CellValues{Closure: model.ClosureOpen},
				orig:     CellValues{Closure: model.ClosureOpen},
			}
		}
	}
	return g
}

func (g *Grid) dayKey(offset int) string {
	return model.DayKey(g.startDate.AddDate(0, 0, offset))
}

func (g *Grid) RoomTypes() []string { return g.roomTypes }

func (g *Grid) Days() []string {
	keys := make([]string, g.days)
	for d := 0; d < g.days; d++ {
		keys[d] = g.dayKey(d)
	}
	return keys
}

func (g *Grid) Cell(roomType, date string) (*Cell, bool) {
	row, ok := g.cells[roomType]
	if !ok {
		return nil, false
	}
	cell, ok := row[date]
	return cell, ok
}

func (g *Grid) cell(roomType, date string) (*Cell, error) {
	cell, ok := g.Cell(roomType, date)
	if !ok {
		return nil, apperrors.NotFound("Management cell").WithDetails(map[string]any{
			"room_type": roomType,
			"date":      date,
		})
	}
	return cell, nil
}

// Load seeds the baseline from dataset records. Records outside the
// grid's range or with unknown room types are skipped with a warning.
func (g *Grid) Load(prices []model.PriceRecord, restrictions []model.RestrictionRecord, avails []model.AvailabilityRecord) {
	for _, rec := range prices {
		cell, ok := g.Cell(rec.RoomType, rec.Date)
		if !ok {
			g.log.Warn("skipping price record outside the grid", "room_type", rec.RoomType, "date", rec.Date)
			continue
		}
		cell.cur.Price = rec.Price
		cell.orig.Price = rec.Price
	}
	for _, rec := range restrictions {
		cell, ok := g.Cell(rec.RoomType, rec.Date)
		if !ok {
			g.log.Warn("skipping restriction record outside the grid", "room_type", rec.RoomType, "date", rec.Date)
			continue
		}
		applyRestriction(&cell.cur, rec)
		applyRestriction(&cell.orig, rec)
	}
	for _, rec := range avails {
		cell, ok := g.Cell(rec.RoomType, rec.Date)
		if !ok {
			g.log.Warn("skipping availability record outside the grid", "room_type", rec.RoomType, "date", rec.Date)
			continue
		}
		applyAvailability(&cell.cur, rec)
		applyAvailability(&cell.orig, rec)
	}
}

func applyRestriction(v *CellValues, rec model.RestrictionRecord) {
	v.MinStay = rec.MinStay
	v.MaxStay = rec.MaxStay
	v.MinStayArrival = rec.MinStayArrival
	v.MaxStayArrival = rec.MaxStayArrival
	if rec.Closure != "" {
		v.Closure = rec.Closure
	}
	v.NoOTA = rec.NoOTA
}

func applyAvailability(v *CellValues, rec model.AvailabilityRecord) {
	v.Quota = rec.Quota
	v.MaxAvail = rec.MaxAvail
	v.ChannelAvail = rec.ChannelAvail
}

func (g *Grid) SetPrice(roomType, date string, price float64) error {
	if price < 0 {
		return apperrors.InvalidInput("price cannot be negative")
	}
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur.Price = price
	return nil
}

func (g *Grid) SetQuota(roomType, date string, quota int) error {
	if quota < -1 {
		return apperrors.InvalidInput("quota cannot be below -1")
	}
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur.Quota = quota
	return nil
}

func (g *Grid) SetMaxAvail(roomType, date string, maxAvail int) error {
	if maxAvail < 0 {
		return apperrors.InvalidInput("max availability cannot be negative")
	}
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur.MaxAvail = maxAvail
	return nil
}

func (g *Grid) SetStay(roomType, date string, minStay, maxStay, minStayArrival, maxStayArrival int) error {
	if minStay < 0 || maxStay < 0 || minStayArrival < 0 || maxStayArrival < 0 {
		return apperrors.InvalidInput("stay restrictions cannot be negative")
	}
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur.MinStay = minStay
	cell.cur.MaxStay = maxStay
	cell.cur.MinStayArrival = minStayArrival
	cell.cur.MaxStayArrival = maxStayArrival
	return nil
}

func (g *Grid) SetClosure(roomType, date, closure string) error {
	switch closure {
	case model.ClosureOpen, model.ClosureClosed, model.ClosureClosedArrival, model.ClosureClosedDeparture:
	default:
		return apperrors.InvalidInput("unknown closure state: " + closure)
	}
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur.Closure = closure
	return nil
}

func (g *Grid) SetNoOTA(roomType, date string, noOTA bool) error {
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur.NoOTA = noOTA
	return nil
}

// Copy stores a cell's editable values on the grid clipboard.
func (g *Grid) Copy(roomType, date string) error {
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	values := cell.cur
	g.clipboard = &values
	return nil
}

// Paste applies the clipboard onto a cell, keeping its channel
// availability.
func (g *Grid) Paste(roomType, date string) error {
	if g.clipboard == nil {
		return apperrors.InvalidOperation("nothing has been copied yet", nil)
	}
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	channel := cell.cur.ChannelAvail
	cell.cur = *g.clipboard
	cell.cur.ChannelAvail = channel
	return nil
}

// CloneToRange replicates a source cell's editable values over every
// day of [fromDate, toDate] within the same room type.
func (g *Grid) CloneToRange(roomType, srcDate, fromDate, toDate string) error {
	src, err := g.cell(roomType, srcDate)
	if err != nil {
		return err
	}
	if fromDate > toDate {
		fromDate, toDate = toDate, fromDate
	}
	for d := 0; d < g.days; d++ {
		key := g.dayKey(d)
		if key < fromDate || key > toDate || key == srcDate {
			continue
		}
		dst := g.cells[roomType][key]
		channel := dst.cur.ChannelAvail
		dst.cur = src.cur
		dst.cur.ChannelAvail = channel
	}
	return nil
}

// Reset discards every unsaved edit, restoring each cell's baseline.
func (g *Grid) Reset() {
	for _, row := range g.cells {
		for _, cell := range row {
			cell.cur = cell.orig
		}
	}
}

func (g *Grid) ResetCell(roomType, date string) error {
	cell, err := g.cell(roomType, date)
	if err != nil {
		return err
	}
	cell.cur = cell.orig
	return nil
}

// Dirty reports whether any cell departed from its baseline.
func (g *Grid) Dirty() bool {
	for _, row := range g.cells {
		for _, cell := range row {
			if cell.Changed() {
				return true
			}
		}
	}
	return false
}

// Diffs collects the changed cells per category, in deterministic
// room-type then date order. This is exactly the payload a save sends.
func (g *Grid) Diffs() (prices []model.PriceRecord, restrictions []model.RestrictionRecord, avails []model.AvailabilityRecord) {
	for _, cell := range g.sortedCells() {
		if cell.priceChanged() {
			prices = append(prices, model.PriceRecord{
				RoomType: cell.RoomType,
				Date:     cell.Date,
				Price:    cell.cur.Price,
			})
		}
		if cell.restrictionChanged() {
			restrictions = append(restrictions, model.RestrictionRecord{
				RoomType:       cell.RoomType,
				Date:           cell.Date,
				MinStay:        cell.cur.MinStay,
				MaxStay:        cell.cur.MaxStay,
				MinStayArrival: cell.cur.MinStayArrival,
				MaxStayArrival: cell.cur.MaxStayArrival,
				Closure:        cell.cur.Closure,
				NoOTA:          cell.cur.NoOTA,
			})
		}
		if cell.availabilityChanged() {
			avails = append(avails, model.AvailabilityRecord{
				RoomType:     cell.RoomType,
				Date:         cell.Date,
				Quota:        cell.cur.Quota,
				MaxAvail:     cell.cur.MaxAvail,
				ChannelAvail: cell.cur.ChannelAvail,
			})
		}
	}
	return prices, restrictions, avails
}

// MarkSaved promotes the current values to the new baseline after a
// successful save.
func (g *Grid) MarkSaved() {
	for _, row := range g.cells {
		for _, cell := range row {
			cell.orig = cell.cur
		}
	}
}

// Merge folds a live notification into the baseline. Cells without
// local edits follow the incoming value; locally dirty cells keep their
// edit until the user saves or resets.
func (g *Grid) MergePrice(rec model.PriceRecord) {
	cell, ok := g.Cell(rec.RoomType, rec.Date)
	if !ok {
		return
	}
	dirty := cell.priceChanged()
	cell.orig.Price = rec.Price
	if !dirty {
		cell.cur.Price = rec.Price
	}
}

func (g *Grid) MergeRestriction(rec model.RestrictionRecord) {
	cell, ok := g.Cell(rec.RoomType, rec.Date)
	if !ok {
		return
	}
	dirty := cell.restrictionChanged()
	applyRestriction(&cell.orig, rec)
	if !dirty {
		applyRestriction(&cell.cur, rec)
	}
}

func (g *Grid) MergeAvailability(rec model.AvailabilityRecord) {
	cell, ok := g.Cell(rec.RoomType, rec.Date)
	if !ok {
		return
	}
	dirty := cell.availabilityChanged()
	applyAvailability(&cell.orig, rec)
	// Channel availability is not editable, it always follows the feed.
	cell.cur.ChannelAvail = rec.ChannelAvail
	if !dirty {
		cell.cur.Quota = rec.Quota
		cell.cur.MaxAvail = rec.MaxAvail
	}
}

func (g *Grid) sortedCells() []*Cell {
	var out []*Cell
	types := append([]string(nil), g.roomTypes...)
	sort.Strings(types)
	for _, rt := range types {
		row := g.cells[rt]
		dates := make([]string, 0, len(row))
		for date := range row {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			out = append(out, row[date])
		}
	}
	return out
}
