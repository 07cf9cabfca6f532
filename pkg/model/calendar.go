package model

import "time"

// Pricelist maps a price-list room key to nightly prices keyed by day
// (DayKey format).
type Pricelist map[string]map[string]float64

func (p Pricelist) Price(key string, day time.Time) (float64, bool) {
	days, ok := p[key]
	if !ok {
		return 0, false
	}
	price, ok := days[DayKey(day)]
	return price, ok
}

func (p Pricelist) Set(key string, day time.Time, price float64) {
	days, ok := p[key]
	if !ok {
		days = make(map[string]float64)
		p[key] = days
	}
	days[DayKey(day)] = price
}

// Closure states of a room type on a given day in the management grid.
const (
	ClosureOpen            = "open"
	ClosureClosed          = "closed"
	ClosureClosedArrival   = "closed_arrival"
	ClosureClosedDeparture = "closed_departure"
)

type PriceRecord struct {
	RoomType string  `json:"room_type" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Price    float64 `json:"price" validate:"min=0"`
}

type RestrictionRecord struct {
	RoomType       string `json:"room_type" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	MinStay        int    `json:"min_stay" validate:"min=0"`
	MaxStay        int    `json:"max_stay" validate:"min=0"`
	MinStayArrival int    `json:"min_stay_arrival" validate:"min=0"`
	MaxStayArrival int    `json:"max_stay_arrival" validate:"min=0"`
	Closure        string `json:"closure" validate:"omitempty,oneof=open closed closed_arrival closed_departure"`
	NoOTA          bool   `json:"no_ota"`
}

type AvailabilityRecord struct {
	RoomType     string `json:"room_type" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Quota        int    `json:"quota" validate:"min=-1"`
	MaxAvail     int    `json:"max_avail" validate:"min=0"`
	ChannelAvail int    `json:"channel_avail" validate:"min=0"`
}

// CalendarEvent is a dated annotation (festivity, note) shown in the
// grid header.
type CalendarEvent struct {
	Date  string `json:"date"`
	Title string `json:"title"`
}

// CalendarData is the full payload returned by the remote data service
// for a date range.
type CalendarData struct {
	Rooms        []*Room              `json:"rooms"`
	Reservations []*Reservation       `json:"reservations"`
	Pricelist    Pricelist            `json:"pricelist"`
	Restrictions []RestrictionRecord  `json:"restrictions"`
	Tooltips     map[string]string    `json:"tooltips"`
	Events       []CalendarEvent      `json:"events"`
}
