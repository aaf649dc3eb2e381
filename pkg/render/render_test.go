package render

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/placement"
)

func testClassroom() *classroom.Classroom {
	return &classroom.Classroom{
		Layout: classroom.Layout{
			Name:     "Room 7",
			GridRows: 3,
			GridCols: 3,
			Furniture: []classroom.Furniture{
				{Type: classroom.FurnitureDesk, Positions: []classroom.SeatPosition{{Row: 0, Col: 1}}},
				{Type: classroom.FurnitureDoor, Positions: []classroom.SeatPosition{{Row: 0, Col: 2}}},
			},
			Seats: []string{"1-0", "1-1", "1-2", "2-0", "2-1", "2-2"},
		},
		Students: []classroom.Student{{ID: "s1", Name: "Ada"}, {ID: "s2", Name: "Bartholomew"}, {ID: "s3"}},
		Rules: []classroom.Rule{
			{ID: "sep", Type: classroom.RuleSeparate, Priority: 1, StudentIDs: []string{"s1", "s2"}, IsActive: true},
		},
	}
}

// clashResult seats s1 and s2 side by side, breaking the SEPARATE rule.
func clashResult() *placement.Result {
	return &placement.Result{
		Placements: []placement.StudentPlacement{
			{StudentID: "s1", SeatPosition: classroom.SeatPosition{Row: 1, Col: 0}},
			{StudentID: "s2", SeatPosition: classroom.SeatPosition{Row: 1, Col: 1}},
		},
		RuleSatisfaction: []placement.RuleSatisfaction{
			{RuleID: "sep", RuleType: classroom.RuleSeparate, Satisfied: false, AffectedStudents: []string{"s1", "s2"}},
		},
		UnplacedStudents: []string{"s3"},
	}
}

func TestNewChart(t *testing.T) {
	ch, err := NewChart(testClassroom(), clashResult(), Options{})
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	if ch.Title != "Room 7" || ch.Rows != 3 || ch.Cols != 3 {
		t.Errorf("chart header = %q %dx%d", ch.Title, ch.Rows, ch.Cols)
	}
	tests := []struct {
		r, c     int
		kind     CellKind
		label    string
		violated bool
	}{
		{0, 0, CellEmpty, "", false},
		{0, 1, CellDesk, "desk", false},
		{0, 2, CellDoor, "door", false},
		{1, 0, CellStudent, "Ada", true},
		{1, 1, CellStudent, "Bartholomew", true},
		{2, 2, CellSeat, "", false},
	}
	for _, tt := range tests {
		c := ch.Cells[tt.r][tt.c]
		if c.Kind != tt.kind || c.Label != tt.label || c.Violated != tt.violated {
			t.Errorf("cell (%d,%d) = %+v", tt.r, tt.c, c)
		}
	}
	if len(ch.Unplaced) != 1 || ch.Unplaced[0] != "s3" {
		t.Errorf("Unplaced = %v", ch.Unplaced)
	}
	if len(ch.Clashes) != 1 {
		t.Errorf("Clashes = %v", ch.Clashes)
	}

	byID, _ := NewChart(testClassroom(), clashResult(), Options{Labels: LabelID})
	if got := byID.Cells[1][0].Label; got != "s1" {
		t.Errorf("LabelID label = %q", got)
	}
}

func TestNewChartBadLayout(t *testing.T) {
	c := testClassroom()
	c.Layout.Seats = []string{"nope"}
	if _, err := NewChart(c, &placement.Result{}, Options{}); err == nil {
		t.Error("expected error for malformed seat key")
	}
}

func TestText(t *testing.T) {
	ch, err := NewChart(testClassroom(), clashResult(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := "Room 7 (3x3)\n" +
		"             [desk]       [door]\n" +
		"Ada!         Bartholomew! __\n" +
		"__           __           __\n" +
		"unplaced: s3\n"
	if got := Text(ch); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Maximilian-Alexander", 12); got != "Maximilian-~" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Ada", 12); got != "Ada" {
		t.Errorf("truncate = %q", got)
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(clashResult())
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"success", "placements", "ruleSatisfaction", "conflicts", "unplacedStudents", "executionTime"} {
		if _, ok := back[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("JSON output should end with a newline")
	}
}

func TestToDOT(t *testing.T) {
	ch, err := NewChart(testClassroom(), clashResult(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(ch)
	for _, want := range []string{
		"graph seats {",
		"layout=neato;",
		`"c1-0" [label="Ada", pos="0.00,-0.90!"`,
		`"c0-1" [label="desk"`,
		`"c2-2" [label="", pos="2.80,-1.80!"`,
		`"c1-0" -- "c1-1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"c0-0"`) {
		t.Error("empty cell should not be drawn")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering skipped in short mode")
	}
	ch, err := NewChart(testClassroom(), clashResult(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(context.Background(), ToDOT(ch))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Ada")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		`Zoë`:      `"Zoë"`,
		`say "hi"`: `"say \"hi\""`,
		`a\b`:      `"a\\b"`,
	}
	for in, want := range tests {
		if got := quote(in); got != want {
			t.Errorf("quote(%s) = %s, want %s", in, got, want)
		}
	}
}
