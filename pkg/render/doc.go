// Package render turns a placement result into seating charts.
//
// # Formats
//
//   - [Text]: a fixed-width grid of the room, one cell per grid column.
//   - [JSON]: the placement result as indented JSON.
//   - [ToDOT]: Graphviz DOT with every cell pinned to its grid position.
//   - [RenderSVG]: the DOT chart laid out with neato and rendered in-process
//     through [github.com/goccy/go-graphviz].
//
// Seats whose student is named by a rule that does not hold over the final
// seating are highlighted, and pairs of SEPARATE members that ended up next
// to each other are joined by a red edge.
//
//	chart, err := render.NewChart(c, res, render.Options{})
//	svg, err := render.RenderSVG(ctx, render.ToDOT(chart))
package render
