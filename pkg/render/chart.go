package render

import (
	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/classroom/geometry"
	"github.com/matzehuels/seatplan/pkg/placement"
)

// Label modes.
const (
	LabelName = "name"
	LabelID   = "id"
)

// Options configures chart rendering.
type Options struct {
	// Labels selects what seat cells show: LabelName (default) or LabelID.
	Labels string
}

// CellKind classifies a grid cell.
type CellKind int

const (
	CellEmpty CellKind = iota // no seat, no furniture
	CellSeat                  // free seat
	CellStudent
	CellDesk
	CellDoor
)

// Cell is one grid cell of a chart.
type Cell struct {
	Kind      CellKind
	Position  classroom.SeatPosition
	StudentID string
	Label     string
	Violated  bool // the student is named by a rule that does not hold
}

// Chart is a room with its final seating, ready to draw.
type Chart struct {
	Title    string
	Rows     int
	Cols     int
	Cells    [][]Cell
	Unplaced []string
	// Clashes are pairs of SEPARATE members seated next to each other.
	Clashes [][2]classroom.SeatPosition
}

// NewChart combines a classroom and its placement result.
func NewChart(c *classroom.Classroom, res *placement.Result, opts Options) (*Chart, error) {
	m, err := classroom.NewSeatMap(c.Layout)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(c.Students))
	for _, s := range c.Students {
		names[s.ID] = s.DisplayName()
	}
	label := func(id string) string {
		if opts.Labels == LabelID {
			return id
		}
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	violated := make(map[string]bool)
	for _, rs := range res.RuleSatisfaction {
		if !rs.Satisfied {
			for _, id := range rs.AffectedStudents {
				violated[id] = true
			}
		}
	}

	ch := &Chart{
		Title: chartTitle(c.Layout),
		Rows:  m.Rows,
		Cols:  m.Cols,
		Cells: make([][]Cell, m.Rows),
	}
	for r := range ch.Cells {
		ch.Cells[r] = make([]Cell, m.Cols)
		for col := range ch.Cells[r] {
			p := classroom.SeatPosition{Row: r, Col: col}
			cell := Cell{Kind: CellEmpty, Position: p}
			if m.IsSeat(p) {
				cell.Kind = CellSeat
			} else if ft, ok := m.FurnitureAt(p); ok {
				switch ft {
				case classroom.FurnitureDesk:
					cell.Kind, cell.Label = CellDesk, "desk"
				case classroom.FurnitureDoor:
					cell.Kind, cell.Label = CellDoor, "door"
				}
			}
			ch.Cells[r][col] = cell
		}
	}

	for _, p := range res.Placements {
		if !m.IsSeat(p.SeatPosition) {
			continue
		}
		cell := &ch.Cells[p.SeatPosition.Row][p.SeatPosition.Col]
		cell.Kind = CellStudent
		cell.StudentID = p.StudentID
		cell.Label = label(p.StudentID)
		cell.Violated = violated[p.StudentID]
	}
	for _, id := range res.UnplacedStudents {
		ch.Unplaced = append(ch.Unplaced, label(id))
	}
	ch.Clashes = clashes(res)
	return ch, nil
}

func chartTitle(l classroom.Layout) string {
	switch {
	case l.Name != "":
		return l.Name
	case l.ID != "":
		return l.ID
	}
	return "Classroom"
}

// clashes lists adjacent member pairs of every SEPARATE rule that does not
// hold.
func clashes(res *placement.Result) [][2]classroom.SeatPosition {
	var out [][2]classroom.SeatPosition
	for _, rs := range res.RuleSatisfaction {
		if rs.Satisfied || rs.RuleType != classroom.RuleSeparate {
			continue
		}
		var seats []classroom.SeatPosition
		for _, id := range rs.AffectedStudents {
			if p, ok := res.Placement(id); ok {
				seats = append(seats, p.SeatPosition)
			}
		}
		for i := range seats {
			for j := i + 1; j < len(seats); j++ {
				if geometry.AreAdjacentIncludingDiagonal(seats[i], seats[j]) {
					out = append(out, [2]classroom.SeatPosition{seats[i], seats[j]})
				}
			}
		}
	}
	return out
}
