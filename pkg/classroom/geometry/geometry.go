package geometry

import (
	"math"
	"sort"

	"github.com/matzehuels/seatplan/pkg/classroom"
)

// Distance returns the Euclidean distance between two grid cells.
func Distance(a, b classroom.SeatPosition) float64 {
	return math.Hypot(float64(a.Row-b.Row), float64(a.Col-b.Col))
}

// AreAdjacent reports whether a and b share an edge.
func AreAdjacent(a, b classroom.SeatPosition) bool {
	dr, dc := absInt(a.Row-b.Row), absInt(a.Col-b.Col)
	return dr+dc == 1
}

// AreAdjacentIncludingDiagonal reports whether a and b are distinct and
// touch by edge or corner.
func AreAdjacentIncludingDiagonal(a, b classroom.SeatPosition) bool {
	if a == b {
		return false
	}
	return absInt(a.Row-b.Row) <= 1 && absInt(a.Col-b.Col) <= 1
}

// FrontRowSeats returns the lowest row index that contains a seat and that
// row's seats. ok is false for a room without seats.
func FrontRowSeats(m *classroom.SeatMap) (row int, seats []classroom.SeatPosition, ok bool) {
	for r := 0; r < m.Rows; r++ {
		if seats = rowSeats(m, r); len(seats) > 0 {
			return r, seats, true
		}
	}
	return 0, nil, false
}

// BackRowSeats returns the highest row index that contains a seat and that
// row's seats.
func BackRowSeats(m *classroom.SeatMap) (row int, seats []classroom.SeatPosition, ok bool) {
	for r := m.Rows - 1; r >= 0; r-- {
		if seats = rowSeats(m, r); len(seats) > 0 {
			return r, seats, true
		}
	}
	return 0, nil, false
}

func rowSeats(m *classroom.SeatMap, r int) []classroom.SeatPosition {
	var out []classroom.SeatPosition
	for c := 0; c < m.Cols; c++ {
		if m.Grid[r][c] {
			out = append(out, classroom.SeatPosition{Row: r, Col: c})
		}
	}
	return out
}

// RankedSeat is a seat with its distance to the nearest anchor.
type RankedSeat struct {
	Position classroom.SeatPosition
	Distance float64
}

// SeatsNearTeacher ranks all seats by distance to the nearest teacher desk,
// closest first. Ties keep row-major order. Returns nil if the room has no
// desk.
func SeatsNearTeacher(m *classroom.SeatMap) []RankedSeat {
	return rankByAnchor(m, m.Anchors(classroom.RuleNearTeacher))
}

// SeatsNearDoor ranks all seats by distance to the door, closest first.
// Returns nil if the room has no door.
func SeatsNearDoor(m *classroom.SeatMap) []RankedSeat {
	return rankByAnchor(m, m.Anchors(classroom.RuleNearDoor))
}

func rankByAnchor(m *classroom.SeatMap, anchors []classroom.SeatPosition) []RankedSeat {
	if len(anchors) == 0 {
		return nil
	}
	seats := m.Seats()
	out := make([]RankedSeat, len(seats))
	for i, s := range seats {
		out[i] = RankedSeat{Position: s, Distance: nearest(s, anchors)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// nearest returns the distance from p to the closest anchor.
func nearest(p classroom.SeatPosition, anchors []classroom.SeatPosition) float64 {
	best := math.Inf(1)
	for _, a := range anchors {
		if d := Distance(p, a); d < best {
			best = d
		}
	}
	return best
}

// ValidPosition reports whether every position lies inside the grid and
// none is covered by furniture.
func ValidPosition(positions []classroom.SeatPosition, m *classroom.SeatMap) bool {
	for _, p := range positions {
		if !m.InBounds(p) {
			return false
		}
		if _, taken := m.FurnitureAt(p); taken {
			return false
		}
	}
	return true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
