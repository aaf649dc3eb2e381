package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/placement"
	"github.com/matzehuels/seatplan/pkg/render"
)

const cellWidth = 10

var (
	cellStyle         = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	cellSelectedStyle = cellStyle.Reverse(true).Bold(true)
	cellStudentStyle  = cellStyle.Foreground(colorWhite)
	cellViolatedStyle = cellStyle.Foreground(colorRed)
	cellFurnStyle     = cellStyle.Foreground(colorYellow)
	cellSeatStyle     = cellStyle.Foreground(colorDim)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// ResultModel - seating chart browser
// =============================================================================

// ResultModel is the bubbletea model of `place --interactive`. Arrow keys
// move a cursor over the room, the side panel describes the selected cell
// and tab toggles the rule table.
type ResultModel struct {
	Chart     *render.Chart
	Result    *placement.Result
	Row, Col  int
	ShowRules bool

	names map[string]string
	rules map[string][]placement.RuleSatisfaction // student ID -> rules naming them
}

func newResultModel(room *classroom.Classroom, res *placement.Result) (ResultModel, error) {
	chart, err := render.NewChart(room, res, render.Options{Labels: render.LabelName})
	if err != nil {
		return ResultModel{}, err
	}
	m := ResultModel{
		Chart:  chart,
		Result: res,
		names:  make(map[string]string, len(room.Students)),
		rules:  make(map[string][]placement.RuleSatisfaction),
	}
	for _, s := range room.Students {
		m.names[s.ID] = s.DisplayName()
	}
	for _, rs := range res.RuleSatisfaction {
		for _, id := range rs.AffectedStudents {
			m.rules[id] = append(m.rules[id], rs)
		}
	}
	return m, nil
}

func (m ResultModel) Init() tea.Cmd {
	return nil
}

func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Row > 0 {
			m.Row--
		}
	case "down", "j":
		if m.Row < m.Chart.Rows-1 {
			m.Row++
		}
	case "left", "h":
		if m.Col > 0 {
			m.Col--
		}
	case "right", "l":
		if m.Col < m.Chart.Cols-1 {
			m.Col++
		}
	case "tab":
		m.ShowRules = !m.ShowRules
	}
	return m, nil
}

func (m ResultModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Chart.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows: move  tab: rules  q: quit"))
	b.WriteString("\n\n")

	grid := m.gridView()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", panelStyle.Render(m.detailView())))
	b.WriteString("\n")

	if len(m.Chart.Unplaced) > 0 {
		b.WriteString(StyleWarning.Render("unplaced: " + strings.Join(m.Chart.Unplaced, ", ")))
		b.WriteString("\n")
	}
	if m.ShowRules && len(m.Result.RuleSatisfaction) > 0 {
		b.WriteString(ruleTable(m.Result))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ResultModel) gridView() string {
	rows := make([]string, m.Chart.Rows)
	for r, line := range m.Chart.Cells {
		cells := make([]string, len(line))
		for c, cell := range line {
			cells[c] = m.cellView(cell, r == m.Row && c == m.Col)
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m ResultModel) cellView(cell render.Cell, selected bool) string {
	text, style := "", cellStyle
	switch cell.Kind {
	case render.CellSeat:
		text, style = "·", cellSeatStyle
	case render.CellStudent:
		text, style = truncate(cell.Label, cellWidth-1), cellStudentStyle
		if cell.Violated {
			style = cellViolatedStyle
		}
	case render.CellDesk, render.CellDoor:
		text, style = "["+cell.Label+"]", cellFurnStyle
	}
	if selected {
		style = cellSelectedStyle
		if text == "" {
			text = " "
		}
	}
	return style.Render(text)
}

func (m ResultModel) detailView() string {
	cell := m.Chart.Cells[m.Row][m.Col]
	lines := []string{StyleDim.Render("seat " + cell.Position.String())}

	switch cell.Kind {
	case render.CellEmpty:
		lines = append(lines, "no seat")
	case render.CellSeat:
		lines = append(lines, "free seat")
	case render.CellDesk:
		lines = append(lines, "teacher desk")
	case render.CellDoor:
		lines = append(lines, "door")
	case render.CellStudent:
		lines = append(lines, StyleValue.Render(m.names[cell.StudentID]), StyleDim.Render("id "+cell.StudentID))
		for _, rs := range m.rules[cell.StudentID] {
			mark := StyleSuccess.Render(iconSuccess)
			if !rs.Satisfied {
				mark = StyleError.Render(iconError)
			}
			lines = append(lines, fmt.Sprintf("%s %s %s", mark, rs.RuleID, StyleDim.Render(rs.RuleType.String())))
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
