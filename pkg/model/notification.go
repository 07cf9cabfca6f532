package model

import "encoding/json"

type EntityType string

const (
	EntityReservation  EntityType = "reservation"
	EntityPrice        EntityType = "price"
	EntityRestriction  EntityType = "restriction"
	EntityAvailability EntityType = "availability"
)

type NotificationAction string

const (
	ActionCreate NotificationAction = "create"
	ActionUpdate NotificationAction = "update"
	ActionDelete NotificationAction = "delete"
)

// Notification is one tagged record from the live-update channel. The
// payload shape depends on Entity.
type Notification struct {
	Entity  EntityType         `json:"entity_type" validate:"required,oneof=reservation price restriction availability"`
	Action  NotificationAction `json:"action" validate:"required,oneof=create update delete"`
	Payload json.RawMessage    `json:"payload" validate:"required"`
}

func (n *Notification) DecodeReservation() (*Reservation, error) {
	var r Reservation
	if err := json.Unmarshal(n.Payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (n *Notification) DecodePrice() (*PriceRecord, error) {
	var p PriceRecord
	if err := json.Unmarshal(n.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (n *Notification) DecodeRestriction() (*RestrictionRecord, error) {
	var r RestrictionRecord
	if err := json.Unmarshal(n.Payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (n *Notification) DecodeAvailability() (*AvailabilityRecord, error) {
	var a AvailabilityRecord
	if err := json.Unmarshal(n.Payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
