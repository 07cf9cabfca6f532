package engine

import (
	"strconv"
	"time"

	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

type Mode int

const (
	ModeNone Mode = iota
	ModeSwap
	ModeDivide
	ModeUnify
)

type Options struct {
	// StartDate is the requested window start; the table start is
	// normalized one day earlier so a checkout on the first visible day
	// still draws against its column.
	StartDate time.Time
	Days      int

	AllowInvalidActions   bool
	AssistedMovement      bool
	DivideRoomsByCapacity bool
	ShowUnusedZones       bool
	CountChildrenAsGuests bool

	ActionDelay time.Duration

	CellWidth  int
	CellHeight int
}

// Engine owns the date/room table, the reservation placement algorithm,
// the drag/resize/swap/divide/unify state machine and the occupancy and
// pricing aggregations for one calendar tab.
type Engine struct {
	log     *logger.Logger
	opts    Options
	clock   Clock
	emitter Emitter

	table        *Table
	reservations []*model.Reservation
	byID         map[string]*model.Reservation
	pricelist    model.Pricelist
	tooltips     map[string]string
	events       []model.CalendarEvent

	mode   Mode
	action *Action

	// pending holds pre-change snapshots of optimistically applied
	// reservations until the host acks or asks for a revert.
	pending map[string]*model.Reservation

	swapIn         []*model.Reservation
	swapOut        []*model.Reservation
	swapFillingOut bool

	divideRes *model.Reservation
	divideDay time.Time
	divideSet bool

	toUnify []*model.Reservation

	selection *Selection

	offsets offsetCache
}

func New(log *logger.Logger, opts Options, clock Clock, emitter Emitter) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if opts.Days < 1 {
		opts.Days = 1
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 42
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}

	start := model.Midnight(opts.StartDate).AddDate(0, 0, -1)
	e := &Engine{
		log:       log,
		opts:      opts,
		clock:     clock,
		emitter:   emitter,
		table:     newTable(start, opts.Days+1),
		byID:      make(map[string]*model.Reservation),
		pending:   make(map[string]*model.Reservation),
		pricelist: make(model.Pricelist),
	}
	return e
}

func (e *Engine) Options() Options  { return e.opts }
func (e *Engine) Table() *Table     { return e.table }
func (e *Engine) CurrentMode() Mode { return e.mode }

func (e *Engine) SetOption(mutate func(*Options)) {
	mutate(&e.opts)
	e.Relayout()
}

// SetData replaces the engine's dataset and rebuilds the table and every
// placement. Malformed entities are skipped with a warning, never fatal.
func (e *Engine) SetData(data *model.CalendarData) {
	e.table = newTable(e.table.StartDate, e.table.Days)
	e.reservations = nil
	e.byID = make(map[string]*model.Reservation)
	e.pending = make(map[string]*model.Reservation)
	e.pricelist = data.Pricelist
	if e.pricelist == nil {
		e.pricelist = make(model.Pricelist)
	}
	e.tooltips = data.Tooltips
	e.events = data.Events
	e.invalidateOffsets()

	for _, room := range data.Rooms {
		if room == nil || room.ID == "" || room.Capacity < 1 {
			e.log.Warn("skipping malformed room record", "room", room)
			continue
		}
		if room.IsExtra() {
			// Extra rows are ephemeral; they are re-synthesized from the
			// reservations that need them, never loaded.
			continue
		}
		room.Active = true
		e.table.appendRow(room, e.bedCount(room))
	}

	for _, res := range data.Reservations {
		e.AddReservation(res)
	}
}

// bedCount is the number of bed sub-rows a room contributes.
func (e *Engine) bedCount(room *model.Room) int {
	if room.Shared || e.opts.DivideRoomsByCapacity {
		return room.Capacity
	}
	return 1
}

// AddReservation resolves the room reference, synthesizes an extra row
// when needed, and places the reservation. A reservation that cannot be
// placed is dropped from the visible set.
func (e *Engine) AddReservation(res *model.Reservation) {
	if res == nil || res.ID == "" || res.RoomID == "" {
		e.log.Warn("skipping malformed reservation record", "reservation", res)
		return
	}
	if !res.EndDate.After(res.StartDate) {
		e.log.Warn("skipping reservation with inverted dates",
			"id", res.ID,
			"start", res.StartDate,
			"end", res.EndDate,
		)
		return
	}
	if _, exists := e.byID[res.ID]; exists {
		e.replaceReservation(res)
		return
	}

	row, ok := e.resolveRow(res)
	if !ok {
		e.log.Warn("reservation references unknown room", "id", res.ID, "room_id", res.RoomID)
		return
	}
	res.Room = row.Room

	e.reservations = append(e.reservations, res)
	e.byID[res.ID] = res

	if !e.place(res) {
		e.log.Warn("reservation cannot be placed, dropping from view",
			"id", res.ID,
			"room_id", res.RoomID,
		)
		e.dropReservation(res.ID)
		return
	}

	if !res.UnusedZone {
		e.refreshUnusedZones(res.Room, res.StartDate, res.EndDate)
	}
}

// resolveRow finds (or synthesizes) the table row a reservation lives
// on: the nominal room's row, or an extra row for overbooked/cancelled
// placements.
func (e *Engine) resolveRow(res *model.Reservation) (*Row, bool) {
	if res.Overbooking || res.Cancelled {
		return e.ensureExtraRow(res)
	}
	return e.table.row(model.ParentRoomID(res.RoomID))
}

// replaceReservation swaps in a new record carrying an existing identity
// (live-update merges, optimistic commits).
func (e *Engine) replaceReservation(res *model.Reservation) {
	e.RemoveReservation(res.ID)
	e.AddReservation(res)
}

// RemoveReservation destroys a reservation, its unused-zone children and
// any extra row left without occupants.
func (e *Engine) RemoveReservation(id string) {
	res, ok := e.byID[id]
	if !ok {
		return
	}
	roomID := ""
	if res.Room != nil {
		roomID = res.Room.ID
	}

	room := res.Room
	start, end := res.StartDate, res.EndDate

	e.dropReservation(id)
	for _, child := range e.childrenOf(id) {
		e.dropReservation(child.ID)
	}

	if roomID != "" && model.ParentRoomID(roomID) != roomID {
		e.removeExtraRowIfEmpty(roomID)
	}
	if !res.UnusedZone {
		e.refreshUnusedZones(room, start, end)
	}
}

func (e *Engine) dropReservation(id string) {
	res, ok := e.byID[id]
	if !ok {
		return
	}
	delete(e.byID, id)
	delete(e.pending, id)
	for i, r := range e.reservations {
		if r == res {
			e.reservations = append(e.reservations[:i], e.reservations[i+1:]...)
			break
		}
	}
}

func (e *Engine) childrenOf(id string) []*model.Reservation {
	var children []*model.Reservation
	for _, r := range e.reservations {
		if r.UnusedZone && r.LinkedID == id {
			children = append(children, r)
		}
	}
	return children
}

// linkedSiblings returns the reservations tied to res as split segments
// or unused-zone children, used for marking a whole series "in action".
func (e *Engine) linkedSiblings(res *model.Reservation) []*model.Reservation {
	var linked []*model.Reservation
	for _, r := range e.reservations {
		if r.ID == res.ID {
			continue
		}
		if r.LinkedID == res.ID || (res.LinkedID != "" && (r.ID == res.LinkedID || r.LinkedID == res.LinkedID)) {
			linked = append(linked, r)
		}
	}
	return linked
}

func (e *Engine) Reservation(id string) (*model.Reservation, bool) {
	res, ok := e.byID[id]
	return res, ok
}

func (e *Engine) Reservations() []*model.Reservation {
	return e.reservations
}

// ReservationAt locates the reservation occupying a grid cell, ignoring
// unused zones (they are non-interactive).
func (e *Engine) ReservationAt(cell CellRef) (*model.Reservation, bool) {
	row, ok := e.table.rowAt(cell.Row)
	if !ok {
		return nil, false
	}
	day := e.table.dayAt(cell.Day)
	for _, r := range e.reservations {
		if r.UnusedZone || !r.Placed || r.Room == nil || r.Room.ID != row.Room.ID {
			continue
		}
		if !r.OccupiedOn(day) {
			continue
		}
		for _, bed := range r.BedIndices {
			if bed == cell.Bed {
				return r, true
			}
		}
	}
	return nil, false
}

// Relayout re-places every reservation against the current table. Called
// after structural changes, window resizes and tab activation.
func (e *Engine) Relayout() {
	e.invalidateOffsets()
	for _, row := range e.table.rows {
		if !row.Room.IsExtra() {
			row.Beds = e.bedCount(row.Room)
		}
	}
	// Renumber cumulative offsets from scratch after bed counts moved.
	y := 0
	for _, row := range e.table.rows {
		row.Y = y
		y += row.Beds
	}

	var dropped []string
	for _, res := range e.reservations {
		if !e.place(res) {
			dropped = append(dropped, res.ID)
		}
	}
	for _, id := range dropped {
		e.log.Warn("reservation lost its placement on relayout", "id", id)
		e.dropReservation(id)
	}
}

// refreshUnusedZones rebuilds the placeholder children of every parent
// in a shared room whose span touches [start, end). A newly placed
// reservation evicts the zone that was filling its bed, and a removal
// restores the zones over the freed beds.
func (e *Engine) refreshUnusedZones(room *model.Room, start, end time.Time) {
	if !e.opts.ShowUnusedZones || room == nil || !room.Shared {
		return
	}

	var parents []*model.Reservation
	for _, r := range e.reservations {
		if r.UnusedZone || !r.Placed || r.Room == nil || r.Room.ID != room.ID {
			continue
		}
		if !r.Overlaps(start, end) {
			continue
		}
		parents = append(parents, r)
	}
	for _, parent := range parents {
		for _, child := range e.childrenOf(parent.ID) {
			e.dropReservation(child.ID)
		}
	}
	for _, parent := range parents {
		e.generateUnusedZones(parent)
	}
}

// generateUnusedZones fills the bed slots of a shared room that a real
// reservation does not occupy with read-only placeholder children, one
// per unfilled slot, for the same date span.
func (e *Engine) generateUnusedZones(parent *model.Reservation) {
	if !e.opts.ShowUnusedZones || parent.Room == nil || !parent.Room.Shared {
		return
	}
	row, ok := e.table.row(parent.Room.ID)
	if !ok {
		return
	}

	occupied := make(map[int]bool, len(parent.BedIndices))
	for _, bed := range parent.BedIndices {
		occupied[bed] = true
	}
	for _, r := range e.reservations {
		if r.ID == parent.ID || !r.Placed || r.Room == nil || r.Room.ID != parent.Room.ID {
			continue
		}
		if !r.Overlaps(parent.StartDate, parent.EndDate) {
			continue
		}
		for _, bed := range r.BedIndices {
			occupied[bed] = true
		}
	}

	for bed := 0; bed < row.Beds; bed++ {
		if occupied[bed] {
			continue
		}
		zone := &model.Reservation{
			ID:         model.ExtraRoomID(parent.ID, "uz") + "-" + strconv.Itoa(bed),
			RoomID:     parent.Room.ID,
			Room:       parent.Room,
			StartDate:  parent.StartDate,
			EndDate:    parent.EndDate,
			Adults:     1,
			ReadOnly:   true,
			UnusedZone: true,
			LinkedID:   parent.ID,
			BedIndices: []int{bed},
		}
		if e.placeAt(zone, bed) {
			e.reservations = append(e.reservations, zone)
			e.byID[zone.ID] = zone
		}
	}
}
