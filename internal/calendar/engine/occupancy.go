package engine

import (
	"fmt"
	"math"

	"roomgrid/pkg/model"
)

// DayOccupancy aggregates one visible day: free rooms per type, total
// free count and the derived occupancy percentage.
type DayOccupancy struct {
	Date         string         `json:"date"`
	FreeByType   map[string]int `json:"free_by_type"`
	TotalFree    int            `json:"total_free"`
	OccupancyPct float64        `json:"occupancy_pct"`
	Color        string         `json:"color"`
}

// CalcDayOccupancy recomputes per-room-type and total free counts for
// every visible day: capacity minus the summed occupants of active
// reservations that night. Unused zones, cancellations and overbookings
// do not consume nominal capacity.
func (e *Engine) CalcDayOccupancy() []DayOccupancy {
	capacityByType := make(map[string]int)
	totalCapacity := 0
	for _, row := range e.table.rows {
		if row.Room.IsExtra() || !row.Room.Active {
			continue
		}
		capacityByType[row.Room.Type] += row.Room.Capacity
		totalCapacity += row.Room.Capacity
	}

	// Column zero is the lead-in day that exists only so a checkout on
	// the first visible day still draws; the occupancy row covers the
	// requested window.
	days := make([]DayOccupancy, 0, e.table.Days-1)
	for i := 1; i < e.table.Days; i++ {
		day := e.table.dayAt(i)

		occupiedByType := make(map[string]int)
		occupied := 0
		for _, r := range e.reservations {
			if r.UnusedZone || r.Cancelled || r.Overbooking || !r.Placed {
				continue
			}
			if r.Room == nil || !r.Room.Active || !r.OccupiedOn(day) {
				continue
			}
			guests := r.Guests(e.opts.CountChildrenAsGuests)
			occupiedByType[r.Room.Type] += guests
			occupied += guests
		}

		freeByType := make(map[string]int, len(capacityByType))
		for roomType, capacity := range capacityByType {
			freeByType[roomType] = capacity - occupiedByType[roomType]
		}

		pct := 0.0
		if totalCapacity > 0 {
			pct = float64(occupied) / float64(totalCapacity) * 100
		}

		days = append(days, DayOccupancy{
			Date:         model.DayKey(day),
			FreeByType:   freeByType,
			TotalFree:    totalCapacity - occupied,
			OccupancyPct: pct,
			Color:        OccupancyColor(pct / 100),
		})
	}
	return days
}

// OccupancyColor maps an occupancy ratio onto a continuous hue sweep
// from the base hue to its complement, so cells shade smoothly instead
// of snapping between palette entries.
func OccupancyColor(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	const baseHue = 120.0
	hue := math.Mod(baseHue+ratio*180, 360)
	return fmt.Sprintf("hsl(%d, 100%%, 50%%)", int(hue))
}

// SeparatorColor derives the grouping color of a split series from its
// parent reservation id: a sin-based hash scaled and truncated. Purely
// cosmetic grouping, nothing security-relevant.
func SeparatorColor(linkedID string) string {
	var seed float64
	for _, r := range linkedID {
		seed = seed*31 + float64(r)
	}
	v := math.Sin(seed) * 10000
	v -= math.Floor(v)
	return fmt.Sprintf("hsl(%d, 70%%, 45%%)", int(v*360))
}
