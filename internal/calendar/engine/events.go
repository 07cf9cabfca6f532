package engine

import (
	"time"

	"github.com/google/uuid"

	"roomgrid/pkg/model"
)

type EventType string

const (
	EventReservationClicked    EventType = "reservation_clicked"
	EventReservationDblClicked EventType = "reservation_dblclicked"
	EventReservationChanged    EventType = "reservation_changed"
	EventSplitRequested        EventType = "split_requested"
	EventUnifyRequested        EventType = "unify_requested"
	EventSwapRequested         EventType = "swap_requested"
	EventSwapCancelled         EventType = "swap_cancelled"
	EventSelectionChanged      EventType = "selection_changed"
	EventPricelistEdited       EventType = "pricelist_edited"
)

// Event is what the engine emits to host UI chrome. Data carries a
// type-specific payload struct.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

type Emitter interface {
	Emit(Event)
}

type EmitterFunc func(Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

// ReservationChange carries old/new snapshots plus old/new prices so the
// host can raise a confirmation dialog before persisting.
type ReservationChange struct {
	Old      *model.Reservation `json:"old"`
	New      *model.Reservation `json:"new"`
	OldPrice float64            `json:"old_price"`
	NewPrice float64            `json:"new_price"`
}

type SplitRequest struct {
	ReservationID string `json:"reservation_id"`
	Nights        int    `json:"nights"`
}

type UnifyRequest struct {
	IDs []string `json:"ids"`
}

type SwapRequest struct {
	FromIDs []string `json:"from_ids"`
	ToIDs   []string `json:"to_ids"`
}

type Selection struct {
	RoomID    string    `json:"room_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Beds      int       `json:"beds"`
	Price     float64   `json:"price"`
}

type PricelistEdit struct {
	Key   string  `json:"key"`
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

func (e *Engine) emit(evType EventType, data any) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(Event{
		ID:   uuid.New().String(),
		Type: evType,
		Data: data,
	})
}
