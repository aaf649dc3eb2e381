package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Grid spacing in inches.
const (
	colSpacing = 1.4
	rowSpacing = 0.9
)

var cellStyles = map[CellKind]string{
	CellSeat:    `style="rounded,dashed", color=grey60, fontcolor=grey60`,
	CellStudent: `style="rounded,filled", fillcolor="#e3f2e1"`,
	CellDesk:    `style=filled, fillcolor="#d9c8a9", shape=box`,
	CellDoor:    `style=filled, fillcolor="#c8d8e8", shape=box`,
}

// ToDOT converts a chart to Graphviz DOT. Every cell is pinned to its grid
// position, so the output must be laid out with neato (or rendered with
// RenderSVG).
func ToDOT(ch *Chart) string {
	var buf bytes.Buffer
	buf.WriteString("graph seats {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%s;\n  labelloc=t;\n", quote(ch.Title))
	buf.WriteString("  node [shape=box, width=1.2, height=0.6, fixedsize=true, fontsize=12];\n")
	buf.WriteString("  edge [color=red, penwidth=2];\n\n")

	for _, row := range ch.Cells {
		for _, c := range row {
			style, ok := cellStyles[c.Kind]
			if !ok {
				continue
			}
			label := c.Label
			if c.Kind == CellSeat {
				label = ""
			}
			attrs := []string{
				"label=" + quote(label),
				fmt.Sprintf(`pos="%.2f,%.2f!"`, float64(c.Position.Col)*colSpacing, -float64(c.Position.Row)*rowSpacing),
				style,
			}
			if c.Violated {
				attrs = append(attrs, `fillcolor="#f8d7da"`, "color=red")
			}
			if c.StudentID != "" {
				attrs = append(attrs, "tooltip="+quote(c.StudentID))
			}
			fmt.Fprintf(&buf, "  %s [%s];\n", quote(nodeID(c)), strings.Join(attrs, ", "))
		}
	}

	if len(ch.Clashes) > 0 {
		buf.WriteString("\n")
	}
	for _, pair := range ch.Clashes {
		fmt.Fprintf(&buf, "  %s -- %s;\n", quote("c"+pair[0].Key()), quote("c"+pair[1].Key()))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// quote makes a DOT string literal. Unlike %q it leaves non-ASCII text
// alone.
func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

func nodeID(c Cell) string {
	return "c" + c.Position.Key()
}

// RenderSVG lays out DOT source with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's point-sized svg header with one that
// scales with its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
