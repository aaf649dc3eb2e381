package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minCellWidth = 6
	maxCellWidth = 12
)

// Text draws the chart as a fixed-width grid. Row 0 is printed first. Free
// seats show as "__", violated students are suffixed with "!".
func Text(ch *Chart) string {
	width := minCellWidth
	for _, row := range ch.Cells {
		for _, c := range row {
			width = max(width, min(maxCellWidth, utf8.RuneCountInString(cellText(c))))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%dx%d)\n", ch.Title, ch.Rows, ch.Cols)
	for _, row := range ch.Cells {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = pad(truncate(cellText(c), width), width)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteByte('\n')
	}
	if len(ch.Unplaced) > 0 {
		fmt.Fprintf(&b, "unplaced: %s\n", strings.Join(ch.Unplaced, ", "))
	}
	return b.String()
}

func cellText(c Cell) string {
	switch c.Kind {
	case CellSeat:
		return "__"
	case CellStudent:
		if c.Violated {
			return c.Label + "!"
		}
		return c.Label
	case CellDesk, CellDoor:
		return "[" + c.Label + "]"
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "~"
}

func pad(s string, n int) string {
	return s + strings.Repeat(" ", n-utf8.RuneCountInString(s))
}
