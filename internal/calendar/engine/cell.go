package engine

// CellRef addresses one cell of the grid arena by integer coordinates:
// row index in table order, day offset from the table start, and bed
// sub-row within the room.
type CellRef struct {
	Row int `json:"row"`
	Day int `json:"day"`
	Bed int `json:"bed"`
}

// Limit is the resolved placement of a reservation: the left and right
// boundary cells of its rendered span. Invalid when either side cannot
// be located inside the visible window.
type Limit struct {
	Left  CellRef `json:"left"`
	Right CellRef `json:"right"`
	Valid bool    `json:"valid"`
}

// Rect is a pixel rectangle derived from grid cells by the offset cache.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Region classifies where inside a reservation block a pointer-down
// landed; it selects the drag sub-action.
type Region int

const (
	RegionInside Region = iota
	RegionLeftEdge
	RegionRightEdge
	RegionBottomEdge
)
