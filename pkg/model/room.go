package model

import "strings"

// ExtraRoomSep joins a reservation id and a room id into the composite id
// of a synthesized overbooking/cancellation row.
const ExtraRoomSep = "@"

type Room struct {
	ID       string `json:"id" validate:"required,nominal_room_id"`
	Number   string `json:"number" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Type     string `json:"type" validate:"required"`
	Shared   bool   `json:"shared"`

	// Price is used when PricelistKey is empty; otherwise the nightly
	// price is resolved from the price list under PricelistKey.
	Price        float64 `json:"price" validate:"omitempty,min=0"`
	PricelistKey string  `json:"pricelist_key,omitempty"`

	Overbooking bool `json:"overbooking"`
	Cancelled   bool `json:"cancelled"`

	// Active is the domain-filter result; inactive rooms keep their rows
	// hidden but are not destroyed.
	Active bool `json:"active"`

	// UserData carries backend-specific annotations matched by domain
	// filters alongside the direct fields.
	UserData map[string]any `json:"user_data,omitempty"`
}

func (r *Room) Clone() *Room {
	c := *r
	if r.UserData != nil {
		c.UserData = make(map[string]any, len(r.UserData))
		for k, v := range r.UserData {
			c.UserData[k] = v
		}
	}
	return &c
}

// IsExtra reports whether the room is a synthesized overbooking or
// cancellation row rather than a nominal room.
func (r *Room) IsExtra() bool {
	return strings.Contains(r.ID, ExtraRoomSep)
}

func ExtraRoomID(reservationID, roomID string) string {
	return reservationID + ExtraRoomSep + roomID
}

// ParentRoomID returns the nominal room id behind an extra-row composite
// id, or the id itself for normal rooms.
func ParentRoomID(id string) string {
	if idx := strings.Index(id, ExtraRoomSep); idx >= 0 {
		return id[idx+len(ExtraRoomSep):]
	}
	return id
}
