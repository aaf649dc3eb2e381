package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/placement"
)

func testResultModel(t *testing.T) ResultModel {
	t.Helper()
	room := &classroom.Classroom{
		Layout: classroom.Layout{
			Name:     "Lab",
			GridRows: 2,
			GridCols: 2,
			Furniture: []classroom.Furniture{
				{Type: classroom.FurnitureDesk, Positions: []classroom.SeatPosition{{Row: 0, Col: 0}}},
			},
			Seats: []string{"0-1", "1-0", "1-1"},
		},
		Students: []classroom.Student{{ID: "a", Name: "Ada"}, {ID: "b", Name: "Bo"}},
		Rules: []classroom.Rule{
			{ID: "apart", Type: classroom.RuleSeparate, Priority: 1, StudentIDs: []string{"a", "b"}, IsActive: true},
		},
	}
	res := placement.Execute(room.Students, room.Rules, room.Layout, placement.Options{})
	m, err := newResultModel(room, res)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(m ResultModel, keys ...string) ResultModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ResultModel)
	}
	return m
}

func TestResultModelNavigation(t *testing.T) {
	m := testResultModel(t)

	m = press(m, "down", "down", "l", "l")
	if m.Row != 1 || m.Col != 1 {
		t.Errorf("cursor = (%d,%d), want (1,1)", m.Row, m.Col)
	}
	m = press(m, "up", "h", "h")
	if m.Row != 0 || m.Col != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", m.Row, m.Col)
	}
	if !strings.Contains(m.View(), "teacher desk") {
		t.Errorf("desk cell should be described:\n%s", m.View())
	}
}

func TestResultModelDetailsAndRules(t *testing.T) {
	m := testResultModel(t)

	p, ok := m.Result.Placement("a")
	if !ok {
		t.Fatal("a should be placed")
	}
	m.Row, m.Col = p.SeatPosition.Row, p.SeatPosition.Col
	view := m.View()
	if !strings.Contains(view, "Ada") || !strings.Contains(view, "apart") {
		t.Errorf("view:\n%s", view)
	}

	if strings.Contains(view, "Priority") {
		t.Error("rule table should be hidden until tab")
	}
	if m = press(m, "tab"); !strings.Contains(m.View(), "Priority") {
		t.Error("tab should show the rule table")
	}
}

func TestResultModelQuit(t *testing.T) {
	m := testResultModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
