package geometry

import (
	"math"
	"sync"
	"testing"

	"github.com/matzehuels/seatplan/pkg/classroom"
)

type pos = classroom.SeatPosition

func mustSeatMap(t *testing.T, l classroom.Layout) *classroom.SeatMap {
	t.Helper()
	m, err := classroom.NewSeatMap(l)
	if err != nil {
		t.Fatalf("NewSeatMap: %v", err)
	}
	return m
}

// deskRoom is a 3x3 grid with the teacher desk at (0,1) and seats on rows 1-2.
func deskRoom(t *testing.T) *classroom.SeatMap {
	return mustSeatMap(t, classroom.Layout{
		GridRows: 3,
		GridCols: 3,
		Furniture: []classroom.Furniture{
			{Type: classroom.FurnitureDesk, Positions: []pos{{Row: 0, Col: 1}}},
		},
		Seats: []string{"1-0", "1-1", "1-2", "2-0", "2-1", "2-2"},
	})
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b pos
		want float64
	}{
		{pos{Row: 0, Col: 0}, pos{Row: 0, Col: 0}, 0},
		{pos{Row: 0, Col: 0}, pos{Row: 0, Col: 3}, 3},
		{pos{Row: 0, Col: 0}, pos{Row: 3, Col: 4}, 5},
		{pos{Row: 2, Col: 1}, pos{Row: 1, Col: 0}, math.Sqrt2},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if Distance(tt.a, tt.b) != Distance(tt.b, tt.a) {
			t.Errorf("Distance not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}

func TestAdjacency(t *testing.T) {
	tests := []struct {
		a, b          pos
		orth, withDia bool
	}{
		{pos{Row: 1, Col: 1}, pos{Row: 1, Col: 1}, false, false},
		{pos{Row: 1, Col: 1}, pos{Row: 1, Col: 2}, true, true},
		{pos{Row: 1, Col: 1}, pos{Row: 0, Col: 1}, true, true},
		{pos{Row: 1, Col: 1}, pos{Row: 2, Col: 2}, false, true},
		{pos{Row: 1, Col: 1}, pos{Row: 0, Col: 0}, false, true},
		{pos{Row: 1, Col: 1}, pos{Row: 1, Col: 3}, false, false},
		{pos{Row: 0, Col: 0}, pos{Row: 2, Col: 2}, false, false},
	}
	for _, tt := range tests {
		if got := AreAdjacent(tt.a, tt.b); got != tt.orth {
			t.Errorf("AreAdjacent(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.orth)
		}
		if got := AreAdjacentIncludingDiagonal(tt.a, tt.b); got != tt.withDia {
			t.Errorf("AreAdjacentIncludingDiagonal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.withDia)
		}
	}
}

func TestRows(t *testing.T) {
	m := deskRoom(t)

	front, seats, ok := FrontRowSeats(m)
	if !ok || front != 1 || len(seats) != 3 {
		t.Errorf("FrontRowSeats = %d, %v, %v", front, seats, ok)
	}
	back, seats, ok := BackRowSeats(m)
	if !ok || back != 2 || len(seats) != 3 || seats[0] != (pos{Row: 2, Col: 0}) {
		t.Errorf("BackRowSeats = %d, %v, %v", back, seats, ok)
	}

	empty := mustSeatMap(t, classroom.Layout{GridRows: 2, GridCols: 2})
	if _, _, ok := FrontRowSeats(empty); ok {
		t.Error("FrontRowSeats on empty room should report !ok")
	}
	if _, _, ok := BackRowSeats(empty); ok {
		t.Error("BackRowSeats on empty room should report !ok")
	}
}

func TestSeatsNearTeacher(t *testing.T) {
	m := deskRoom(t)
	ranked := SeatsNearTeacher(m)
	if len(ranked) != 6 {
		t.Fatalf("len = %d, want 6", len(ranked))
	}
	want := []pos{{Row: 1, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 0}, {Row: 2, Col: 2}}
	for i, w := range want {
		if ranked[i].Position != w {
			t.Errorf("rank %d = %v, want %v", i, ranked[i].Position, w)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Distance < ranked[i-1].Distance {
			t.Errorf("not sorted at %d", i)
		}
	}
	if got := SeatsNearDoor(m); got != nil {
		t.Errorf("SeatsNearDoor without door = %v, want nil", got)
	}
}

func TestSeatScore(t *testing.T) {
	m := deskRoom(t)
	approx := func(a, b float64) bool { return math.Abs(a-b) < 0.01 }

	tests := []struct {
		name string
		p    pos
		rt   classroom.RuleType
		want float64
	}{
		{"front on front row", pos{Row: 1, Col: 2}, classroom.RuleFrontRow, 100},
		{"front on back row", pos{Row: 2, Col: 2}, classroom.RuleFrontRow, 0},
		{"back on back row", pos{Row: 2, Col: 0}, classroom.RuleBackRow, 100},
		{"back on front row", pos{Row: 1, Col: 0}, classroom.RuleBackRow, 0},
		{"teacher closest", pos{Row: 1, Col: 1}, classroom.RuleNearTeacher, 100},
		{"teacher farthest", pos{Row: 2, Col: 2}, classroom.RuleNearTeacher, 0},
		{"teacher diagonal", pos{Row: 1, Col: 0}, classroom.RuleNearTeacher, 100 * (math.Sqrt(5) - math.Sqrt2) / (math.Sqrt(5) - 1)},
		{"door missing", pos{Row: 1, Col: 0}, classroom.RuleNearDoor, NeutralScore},
		{"separate neutral", pos{Row: 1, Col: 0}, classroom.RuleSeparate, NeutralScore},
		{"together neutral", pos{Row: 1, Col: 0}, classroom.RuleTogether, NeutralScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SeatScore(tt.p, tt.rt, m)
			if !approx(got, tt.want) {
				t.Errorf("SeatScore(%v, %v) = %.2f, want %.2f", tt.p, tt.rt, got, tt.want)
			}
		})
	}
}

func TestSeatScoreDegenerate(t *testing.T) {
	single := mustSeatMap(t, classroom.Layout{
		GridRows: 2,
		GridCols: 3,
		Furniture: []classroom.Furniture{
			{Type: classroom.FurnitureDoor, Positions: []pos{{Row: 0, Col: 1}}},
		},
		Seats: []string{"1-1"},
	})
	for _, rt := range []classroom.RuleType{classroom.RuleFrontRow, classroom.RuleBackRow, classroom.RuleNearDoor} {
		if got := SeatScore(pos{Row: 1, Col: 1}, rt, single); got != MaxScore {
			t.Errorf("single seat %v score = %v, want %v", rt, got, MaxScore)
		}
	}

	empty := mustSeatMap(t, classroom.Layout{GridRows: 1, GridCols: 1})
	if got := SeatScore(pos{Row: 0, Col: 0}, classroom.RuleFrontRow, empty); got != NeutralScore {
		t.Errorf("empty room FRONT_ROW = %v, want %v", got, NeutralScore)
	}
}

func TestSeatScoreRange(t *testing.T) {
	m := mustSeatMap(t, classroom.Layout{
		GridRows: 5,
		GridCols: 6,
		Furniture: []classroom.Furniture{
			{Type: classroom.FurnitureDesk, Positions: []pos{{Row: 0, Col: 2}, {Row: 0, Col: 3}}},
			{Type: classroom.FurnitureDoor, Positions: []pos{{Row: 4, Col: 5}}},
		},
		Seats: []string{"1-0", "1-5", "2-2", "3-1", "4-0", "4-4", "2-3"},
	})
	for _, s := range m.Seats() {
		for _, rt := range classroom.RuleTypes() {
			if got := SeatScore(s, rt, m); got < MinScore || got > MaxScore {
				t.Errorf("SeatScore(%v, %v) = %v out of range", s, rt, got)
			}
		}
	}
}

func TestAnchorDistanceRange(t *testing.T) {
	m := deskRoom(t)
	tests := []struct {
		name     string
		rt       classroom.RuleType
		min, max float64
	}{
		{"teacher", classroom.RuleNearTeacher, 1, math.Sqrt(5)},
		{"teacher again", classroom.RuleNearTeacher, 1, math.Sqrt(5)},
		{"door missing", classroom.RuleNearDoor, math.Inf(1), math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnchorDistanceRange(m, tt.rt)
			if got.Min != tt.min || math.Abs(got.Max-tt.max) > 1e-9 {
				t.Errorf("range = %+v, want {%v %v}", got, tt.min, tt.max)
			}
		})
	}
}

func TestSeatScoreMemoizedRange(t *testing.T) {
	// Scores must not change once the anchor range is cached, and concurrent
	// first use must agree with a serial pass on a fresh map.
	layout := classroom.Layout{
		GridRows: 5,
		GridCols: 6,
		Furniture: []classroom.Furniture{
			{Type: classroom.FurnitureDesk, Positions: []pos{{Row: 0, Col: 2}, {Row: 0, Col: 3}}},
			{Type: classroom.FurnitureDoor, Positions: []pos{{Row: 4, Col: 5}}},
		},
		Seats: []string{"1-0", "1-5", "2-2", "3-1", "4-0", "4-4", "2-3"},
	}
	types := []classroom.RuleType{classroom.RuleNearTeacher, classroom.RuleNearDoor}

	serial := mustSeatMap(t, layout)
	want := map[classroom.RuleType]map[pos]float64{}
	for _, rt := range types {
		want[rt] = map[pos]float64{}
		anchors := serial.Anchors(rt)
		r := seatDistanceRange(serial.Seats(), anchors)
		for _, s := range serial.Seats() {
			want[rt][s] = MaxScore * (r.Max - nearest(s, anchors)) / (r.Max - r.Min)
			for i := 0; i < 3; i++ {
				if got := SeatScore(s, rt, serial); math.Abs(got-want[rt][s]) > 1e-9 {
					t.Fatalf("call %d: SeatScore(%v, %v) = %v, want %v", i, s, rt, got, want[rt][s])
				}
			}
		}
	}

	shared := mustSeatMap(t, layout)
	var wg sync.WaitGroup
	errs := make(chan string, 128)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, rt := range types {
				for _, s := range shared.Seats() {
					if got := SeatScore(s, rt, shared); math.Abs(got-want[rt][s]) > 1e-9 {
						errs <- rt.String() + " " + s.Key()
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent score mismatch: %s", e)
	}
}

func TestValidPosition(t *testing.T) {
	m := deskRoom(t)
	tests := []struct {
		name  string
		input []pos
		want  bool
	}{
		{"empty", nil, true},
		{"seats", []pos{{Row: 1, Col: 0}, {Row: 2, Col: 2}}, true},
		{"empty cell", []pos{{Row: 0, Col: 0}}, true},
		{"on desk", []pos{{Row: 1, Col: 0}, {Row: 0, Col: 1}}, false},
		{"out of bounds", []pos{{Row: 3, Col: 0}}, false},
		{"negative", []pos{{Row: -1, Col: 0}}, false},
	}
	for _, tt := range tests {
		if got := ValidPosition(tt.input, m); got != tt.want {
			t.Errorf("%s: ValidPosition(%v) = %v, want %v", tt.name, tt.input, got, tt.want)
		}
	}
}
