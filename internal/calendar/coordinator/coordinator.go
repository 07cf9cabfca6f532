package coordinator

import (
	"sync"

	"roomgrid/internal/calendar/engine"
	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

// Coordinator owns the shared dataset and a set of tabbed engine
// instances over it. Every mutation (HTTP commits, bus merges, tab
// switches) funnels through one mutex; the engines themselves are not
// safe for concurrent use.
type Coordinator struct {
	mu sync.Mutex

	log     *logger.Logger
	clock   engine.Clock
	emitter engine.Emitter

	data *model.CalendarData

	tabs   map[string]*engine.Engine
	order  []string
	active string
}

func New(log *logger.Logger, clock engine.Clock, emitter engine.Emitter) *Coordinator {
	return &Coordinator{
		log:     log,
		clock:   clock,
		emitter: emitter,
		data:    &model.CalendarData{Pricelist: make(model.Pricelist)},
		tabs:    make(map[string]*engine.Engine),
	}
}

// AddTab creates a named engine over the shared dataset. The first tab
// becomes active.
func (c *Coordinator) AddTab(name string, opts engine.Options) (*engine.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return nil, apperrors.InvalidInput("tab name cannot be empty")
	}
	if _, exists := c.tabs[name]; exists {
		return nil, apperrors.Conflict("tab already exists: " + name)
	}

	e := engine.New(c.log, opts, c.clock, c.emitter)
	e.SetData(c.cloneData())

	c.tabs[name] = e
	c.order = append(c.order, name)
	if c.active == "" {
		c.active = name
	}
	c.log.Info("calendar tab added", "tab", name)
	return e, nil
}

func (c *Coordinator) Tabs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

func (c *Coordinator) ActiveTab() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SwitchTab activates a tab and relays it out; a background tab may
// hold a layout from before the last structural change.
func (c *Coordinator) SwitchTab(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tabs[name]
	if !ok {
		return apperrors.NotFoundWithID("Tab", name)
	}
	c.active = name
	e.Relayout()
	return nil
}

// Engine exposes a tab's engine for use under With; prefer With for
// anything that mutates.
func (c *Coordinator) Engine(name string) (*engine.Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.tabs[name]
	return e, ok
}

// With runs fn against the named tab's engine under the coordinator
// lock. An empty name targets the active tab.
func (c *Coordinator) With(name string, fn func(*engine.Engine) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		name = c.active
	}
	e, ok := c.tabs[name]
	if !ok {
		return apperrors.NotFoundWithID("Tab", name)
	}
	return fn(e)
}

// SetData replaces the shared dataset and reseeds every tab.
func (c *Coordinator) SetData(data *model.CalendarData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if data.Pricelist == nil {
		data.Pricelist = make(model.Pricelist)
	}
	c.data = data
	for _, name := range c.order {
		c.tabs[name].SetData(c.cloneData())
	}
}

// MergeResult reports how a live notification landed. A stale record
// (version behind the local copy) is still applied, the server is
// authoritative; the flag lets the host surface the conflict.
type MergeResult struct {
	Applied bool `json:"applied"`
	Stale   bool `json:"stale"`
}

// Merge folds one live notification into the dataset and every tab.
// Reservations merge last-write-wins by id.
func (c *Coordinator) Merge(n *model.Notification) (MergeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch n.Entity {
	case model.EntityReservation:
		return c.mergeReservation(n)
	case model.EntityPrice:
		return c.mergePrice(n)
	case model.EntityRestriction:
		return c.mergeRestriction(n)
	case model.EntityAvailability:
		// The reservation grid has no availability cells; management
		// grids consume these through their own merge path.
		return MergeResult{}, nil
	default:
		return MergeResult{}, apperrors.InvalidInput("unknown notification entity: " + string(n.Entity))
	}
}

func (c *Coordinator) mergeReservation(n *model.Notification) (MergeResult, error) {
	res, err := n.DecodeReservation()
	if err != nil {
		return MergeResult{}, apperrors.Validation("malformed reservation payload", map[string]any{"error": err.Error()})
	}

	stale := false
	for i, existing := range c.data.Reservations {
		if existing.ID != res.ID {
			continue
		}
		if existing.Version > res.Version {
			stale = true
			c.log.Warn("stale reservation notification applied",
				"id", res.ID,
				"local_version", existing.Version,
				"incoming_version", res.Version,
			)
		}
		if n.Action == model.ActionDelete {
			c.data.Reservations = append(c.data.Reservations[:i], c.data.Reservations[i+1:]...)
		} else {
			c.data.Reservations[i] = res
		}
		c.applyReservationToTabs(res, n.Action)
		return MergeResult{Applied: true, Stale: stale}, nil
	}

	if n.Action == model.ActionDelete {
		// Deleting something we never had is a no-op, not an error.
		return MergeResult{Applied: false}, nil
	}
	c.data.Reservations = append(c.data.Reservations, res)
	c.applyReservationToTabs(res, n.Action)
	return MergeResult{Applied: true}, nil
}

func (c *Coordinator) applyReservationToTabs(res *model.Reservation, action model.NotificationAction) {
	for _, name := range c.order {
		e := c.tabs[name]
		if action == model.ActionDelete {
			e.RemoveReservation(res.ID)
			continue
		}
		e.AddReservation(res.Clone())
	}
}

func (c *Coordinator) mergePrice(n *model.Notification) (MergeResult, error) {
	rec, err := n.DecodePrice()
	if err != nil {
		return MergeResult{}, apperrors.Validation("malformed price payload", map[string]any{"error": err.Error()})
	}
	day, err := model.ParseDayKey(rec.Date)
	if err != nil {
		return MergeResult{}, apperrors.Validation("malformed price date", map[string]any{"date": rec.Date})
	}

	// Every tab shares the dataset's pricelist map, one write reaches
	// them all.
	c.data.Pricelist.Set(rec.RoomType, day, rec.Price)
	return MergeResult{Applied: true}, nil
}

func (c *Coordinator) mergeRestriction(n *model.Notification) (MergeResult, error) {
	rec, err := n.DecodeRestriction()
	if err != nil {
		return MergeResult{}, apperrors.Validation("malformed restriction payload", map[string]any{"error": err.Error()})
	}

	for i, existing := range c.data.Restrictions {
		if existing.RoomType == rec.RoomType && existing.Date == rec.Date {
			c.data.Restrictions[i] = *rec
			return MergeResult{Applied: true}, nil
		}
	}
	c.data.Restrictions = append(c.data.Restrictions, *rec)
	return MergeResult{Applied: true}, nil
}

// Snapshot assembles the active tab's render state for the host.
type Snapshot struct {
	Tab          string                `json:"tab"`
	Rooms        []*model.Room         `json:"rooms"`
	Reservations []*model.Reservation  `json:"reservations"`
	Occupancy    []engine.DayOccupancy `json:"occupancy"`
	Events       []model.CalendarEvent `json:"events"`
	Tabs         []string              `json:"tabs"`
}

func (c *Coordinator) Snapshot() (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tabs[c.active]
	if !ok {
		return nil, apperrors.Unavailable("calendar")
	}

	// Clone everything the engines keep pointers to. The caller holds
	// the snapshot outside the lock (marshaling it for the wire) while
	// bus merges keep mutating the originals.
	rooms := make([]*model.Room, 0, len(e.Table().Rows()))
	for _, row := range e.Table().Rows() {
		rooms = append(rooms, row.Room.Clone())
	}
	reservations := make([]*model.Reservation, 0, len(e.Reservations()))
	for _, res := range e.Reservations() {
		reservations = append(reservations, res.Clone())
	}
	return &Snapshot{
		Tab:          c.active,
		Rooms:        rooms,
		Reservations: reservations,
		Occupancy:    e.CalcDayOccupancy(),
		Events:       append([]model.CalendarEvent(nil), c.data.Events...),
		Tabs:         append([]string(nil), c.order...),
	}, nil
}

func (c *Coordinator) cloneData() *model.CalendarData {
	clone := &model.CalendarData{
		Rooms:        make([]*model.Room, 0, len(c.data.Rooms)),
		Reservations: make([]*model.Reservation, 0, len(c.data.Reservations)),
		Pricelist:    c.data.Pricelist,
		Restrictions: c.data.Restrictions,
		Tooltips:     c.data.Tooltips,
		Events:       c.data.Events,
	}
	for _, room := range c.data.Rooms {
		clone.Rooms = append(clone.Rooms, room.Clone())
	}
	for _, res := range c.data.Reservations {
		clone.Reservations = append(clone.Reservations, res.Clone())
	}
	return clone
}
