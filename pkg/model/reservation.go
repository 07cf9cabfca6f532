package model

import "time"

// Draw modes for the two rendered edges of a reservation block. A soft
// edge means the true date boundary lies outside the visible window and
// the block is clipped at the window edge.
const (
	DrawHardStart = "hard-start"
	DrawSoftStart = "soft-start"
	DrawHardEnd   = "hard-end"
	DrawSoftEnd   = "soft-end"
)

type Reservation struct {
	ID string `json:"id" validate:"required"`

	// RoomID is the nominal room from the dataset record. Room is the
	// resolved reference once the reservation is placed; it may point at
	// an extra row for overbooked/cancelled placements.
	RoomID string `json:"room_id" validate:"required,nominal_room_id"`
	Room   *Room  `json:"-" validate:"-"`

	// EndDate is exclusive: the checkout day.
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`

	Adults   int    `json:"adults" validate:"min=0"`
	Children int    `json:"children" validate:"min=0"`
	Title    string `json:"title"`

	Color     string `json:"color,omitempty"`
	ColorText string `json:"color_text,omitempty"`

	ReadOnly    bool `json:"read_only"`
	FixDays     bool `json:"fix_days"`
	FixRooms    bool `json:"fix_rooms"`
	Splitted    bool `json:"splitted"`
	Overbooking bool `json:"overbooking"`
	Cancelled   bool `json:"cancelled"`
	UnusedZone  bool `json:"unused_zone"`

	// LinkedID back-references the parent reservation for split segments
	// and unused-zone placeholders.
	LinkedID string `json:"linked_id,omitempty"`

	// Version increases monotonically with every accepted write; the
	// coordinator uses it to flag stale notifications.
	Version int64 `json:"version"`

	// Render state, owned by the engine.
	BedIndices []int     `json:"bed_indices,omitempty" validate:"-"`
	DrawModes  [2]string `json:"draw_modes,omitempty" validate:"-"`
	Placed     bool      `json:"placed" validate:"-"`
}

func (r *Reservation) Clone() *Reservation {
	c := *r
	if r.BedIndices != nil {
		c.BedIndices = append([]int(nil), r.BedIndices...)
	}
	return &c
}

// Nights is the number of nights spanned; EndDate is the checkout day.
func (r *Reservation) Nights() int {
	return DaysBetween(r.StartDate, r.EndDate)
}

// OccupiedOn reports whether the reservation occupies the room on the
// night starting at day.
func (r *Reservation) OccupiedOn(day time.Time) bool {
	d := Midnight(day)
	return !d.Before(Midnight(r.StartDate)) && d.Before(Midnight(r.EndDate))
}

// Overlaps reports whether two date spans share at least one night.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return Midnight(r.StartDate).Before(Midnight(end)) && Midnight(start).Before(Midnight(r.EndDate))
}

// Guests is the occupant count used for bed-slot allocation.
func (r *Reservation) Guests(countChildren bool) int {
	n := r.Adults
	if countChildren {
		n += r.Children
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Midnight truncates a timestamp to its calendar day in UTC. All grid
// arithmetic runs on midnights.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

func DayKey(t time.Time) string {
	return Midnight(t).Format("2006-01-02")
}

func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", key, time.UTC)
}
