package classroom

import (
	"sync"

	"github.com/matzehuels/seatplan/pkg/errors"
)

// SeatMap is the geometry of a layout, derived once per run.
// Its geometry is never modified after NewSeatMap returns. SeatMap must not
// be copied.
type SeatMap struct {
	Rows, Cols   int
	Grid         [][]bool // Grid[row][col] is true for seats
	TeacherDesks []SeatPosition
	Door         *SeatPosition // first door cell, nil if the room has none

	seats     []SeatPosition // row-major
	furniture map[SeatPosition]FurnitureType
	memo      sync.Map
}

// NewSeatMap builds the seat grid and furniture anchors for l.
//
// Every desk cell becomes a teacher anchor. For doors only the first
// position of the first door is used. Duplicate seat keys collapse to one
// seat. Seats must lie inside the grid; furniture positions are taken as
// given.
func NewSeatMap(l Layout) (*SeatMap, error) {
	if err := errors.ValidateGrid(l.GridRows, l.GridCols); err != nil {
		return nil, err
	}

	m := &SeatMap{
		Rows:      l.GridRows,
		Cols:      l.GridCols,
		Grid:      make([][]bool, l.GridRows),
		furniture: make(map[SeatPosition]FurnitureType),
	}
	for r := range m.Grid {
		m.Grid[r] = make([]bool, l.GridCols)
	}

	for _, key := range l.Seats {
		p, err := ParseSeatKey(key)
		if err != nil {
			return nil, err
		}
		if !m.InBounds(p) {
			return nil, errors.New(errors.ErrCodeInvalidLayout,
				"seat %s outside %dx%d grid", key, l.GridRows, l.GridCols)
		}
		m.Grid[p.Row][p.Col] = true
	}

	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.Grid[r][c] {
				m.seats = append(m.seats, SeatPosition{Row: r, Col: c})
			}
		}
	}

	for _, f := range l.Furniture {
		for _, p := range f.Positions {
			if _, seen := m.furniture[p]; !seen {
				m.furniture[p] = f.Type
			}
		}
		switch f.Type {
		case FurnitureDesk:
			m.TeacherDesks = append(m.TeacherDesks, f.Positions...)
		case FurnitureDoor:
			if m.Door == nil && len(f.Positions) > 0 {
				door := f.Positions[0]
				m.Door = &door
			}
		}
	}

	return m, nil
}

// Memo returns the value cached under key, calling compute on the first
// request. Values derived from the map's geometry can be shared this way
// across a run; compute may run more than once under concurrent first use.
func (m *SeatMap) Memo(key any, compute func() any) any {
	if v, ok := m.memo.Load(key); ok {
		return v
	}
	v, _ := m.memo.LoadOrStore(key, compute())
	return v
}

// InBounds reports whether p lies inside the grid.
func (m *SeatMap) InBounds(p SeatPosition) bool {
	return p.Row >= 0 && p.Row < m.Rows && p.Col >= 0 && p.Col < m.Cols
}

// IsSeat reports whether p is a seat.
func (m *SeatMap) IsSeat(p SeatPosition) bool {
	return m.InBounds(p) && m.Grid[p.Row][p.Col]
}

// Seats returns all seats in row-major order. The slice is a copy.
func (m *SeatMap) Seats() []SeatPosition {
	return append([]SeatPosition(nil), m.seats...)
}

// SeatCount returns the number of distinct seats.
func (m *SeatMap) SeatCount() int {
	return len(m.seats)
}

// FurnitureAt returns the furniture type covering p, if any.
func (m *SeatMap) FurnitureAt(p SeatPosition) (FurnitureType, bool) {
	t, ok := m.furniture[p]
	return t, ok
}

// Anchors returns the positions a location rule is measured against:
// every teacher desk for NEAR_TEACHER, the door for NEAR_DOOR.
func (m *SeatMap) Anchors(t RuleType) []SeatPosition {
	switch t {
	case RuleNearTeacher:
		return m.TeacherDesks
	case RuleNearDoor:
		if m.Door != nil {
			return []SeatPosition{*m.Door}
		}
	}
	return nil
}
