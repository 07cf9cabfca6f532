package engine

import (
	"reflect"
	"strings"

	"roomgrid/pkg/model"
)

// Operator is a domain-filter comparison. "in" tests membership of a
// scalar field value in the condition list; "some" tests intersection
// between a list-valued field and the condition list. The two are
// deliberately distinct predicates.
type Operator string

const (
	OpEquals Operator = "="
	OpILike  Operator = "ilike"
	OpIn     Operator = "in"
	OpSome   Operator = "some"
)

// Condition is a single field comparison of a room filter.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Filter is a conjunction or disjunction of conditions applied to the
// room list. Applying the same filter twice yields the same Active set.
type Filter struct {
	Conditions []Condition `json:"conditions"`
	MatchAny   bool        `json:"match_any"`
}

// ApplyRoomFilter recomputes every room's Active flag from the filter
// and relays out so hidden rows collapse. A nil filter activates all
// rooms. Extra rows follow their parent room.
func (e *Engine) ApplyRoomFilter(filter *Filter) {
	active := make(map[string]bool, len(e.table.rows))
	for _, row := range e.table.rows {
		if row.Room.IsExtra() {
			continue
		}
		if filter == nil || len(filter.Conditions) == 0 {
			active[row.Room.ID] = true
			continue
		}
		active[row.Room.ID] = filter.matches(row.Room)
	}
	for _, row := range e.table.rows {
		row.Room.Active = active[model.ParentRoomID(row.Room.ID)]
	}
	e.Relayout()
}

func (f *Filter) matches(room *model.Room) bool {
	for _, c := range f.Conditions {
		ok := c.matches(room)
		if f.MatchAny && ok {
			return true
		}
		if !f.MatchAny && !ok {
			return false
		}
	}
	return !f.MatchAny
}

func (c *Condition) matches(room *model.Room) bool {
	value, ok := roomField(room, c.Field)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpEquals:
		return containsValue([]any{c.Value}, value)
	case OpILike:
		want, ok := c.Value.(string)
		if !ok {
			return false
		}
		got, ok := value.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	case OpIn:
		return containsValue(asList(c.Value), value)
	case OpSome:
		want := asList(c.Value)
		for _, item := range asList(value) {
			if containsValue(want, item) {
				return true
			}
		}
		return false
	}
	return false
}

func roomField(room *model.Room, field string) (any, bool) {
	switch field {
	case "id":
		return room.ID, true
	case "number":
		return room.Number, true
	case "type":
		return room.Type, true
	case "capacity":
		return room.Capacity, true
	case "shared":
		return room.Shared, true
	}
	if room.UserData != nil {
		v, ok := room.UserData[field]
		return v, ok
	}
	return nil, false
}

func asList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func containsValue(list []any, v any) bool {
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return false
	}
	for _, item := range list {
		if item != nil && reflect.TypeOf(item).Comparable() && item == v {
			return true
		}
	}
	return false
}
