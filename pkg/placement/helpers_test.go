package placement

import (
	"fmt"
	"testing"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/classroom/geometry"
)

type pos = classroom.SeatPosition

// deskLayout is a 3x3 room with the teacher desk at (0,1) and six seats on
// rows 1 and 2.
func deskLayout() classroom.Layout {
	return classroom.Layout{
		ID:       "layout1",
		GridRows: 3,
		GridCols: 3,
		Furniture: []classroom.Furniture{
			{Type: classroom.FurnitureDesk, Positions: []pos{{Row: 0, Col: 1}}},
		},
		Seats: []string{"1-0", "1-1", "1-2", "2-0", "2-1", "2-2"},
	}
}

func students(n int) []classroom.Student {
	out := make([]classroom.Student, n)
	for i := range out {
		out[i] = classroom.Student{ID: fmt.Sprintf("student%d", i+1), Name: fmt.Sprintf("Student %d", i+1)}
	}
	return out
}

func rule(id string, t classroom.RuleType, priority int, ids ...string) classroom.Rule {
	return classroom.Rule{ID: id, Type: t, Priority: priority, StudentIDs: ids, IsActive: true}
}

func mustContext(t *testing.T, l classroom.Layout, existing ...StudentPlacement) *Context {
	t.Helper()
	pc, err := NewContext(l, existing)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return pc
}

func seatOf(t *testing.T, r *Result, id string) pos {
	t.Helper()
	p, ok := r.Placement(id)
	if !ok {
		t.Fatalf("%s not placed; unplaced=%v conflicts=%+v", id, r.UnplacedStudents, r.Conflicts)
	}
	return p.SeatPosition
}

func satisfaction(t *testing.T, r *Result, ruleID string) RuleSatisfaction {
	t.Helper()
	for _, rs := range r.RuleSatisfaction {
		if rs.RuleID == ruleID {
			return rs
		}
	}
	t.Fatalf("rule %s missing from satisfaction report %+v", ruleID, r.RuleSatisfaction)
	return RuleSatisfaction{}
}

// assertPartition asserts that every student is either placed or unplaced,
// once, and that no seat is used twice.
func assertPartition(t *testing.T, r *Result, roster []classroom.Student) {
	t.Helper()
	if len(r.Placements)+len(r.UnplacedStudents) != len(roster) {
		t.Errorf("placements %d + unplaced %d != students %d",
			len(r.Placements), len(r.UnplacedStudents), len(roster))
	}
	placed := make(map[string]bool)
	seats := make(map[pos]string)
	for _, p := range r.Placements {
		if placed[p.StudentID] {
			t.Errorf("student %s placed twice", p.StudentID)
		}
		placed[p.StudentID] = true
		if other, dup := seats[p.SeatPosition]; dup {
			t.Errorf("seat %v double-booked by %s and %s", p.SeatPosition, other, p.StudentID)
		}
		seats[p.SeatPosition] = p.StudentID
	}
	for _, id := range r.UnplacedStudents {
		if placed[id] {
			t.Errorf("student %s both placed and unplaced", id)
		}
	}
	if len(roster) > 0 && r.Success != (len(r.UnplacedStudents) == 0) {
		t.Errorf("Success = %v with %d unplaced", r.Success, len(r.UnplacedStudents))
	}
	if r.ExecutionTime < 0 {
		t.Errorf("ExecutionTime = %v, want >= 0", r.ExecutionTime)
	}
}

// fixedScorer scores every seat the same for every location rule.
type fixedScorer float64

func (f fixedScorer) SeatScore(classroom.SeatPosition, classroom.RuleType, *classroom.SeatMap) float64 {
	return float64(f)
}

var _ geometry.Scorer = fixedScorer(0)
