// Package classroom defines the inputs of a seating run: the room layout,
// the roster and the placement rules.
//
// # Overview
//
// A [Layout] is a grid of cells. Some cells are seats (listed as "row-col"
// keys, the form used by layout editors), some hold furniture such as the
// teacher's desk or the door. [NewSeatMap] turns a layout into a [SeatMap]:
// a boolean seat grid plus the furniture anchors that location rules are
// measured against.
//
//	layout := classroom.Layout{
//	    GridRows: 3, GridCols: 3,
//	    Furniture: []classroom.Furniture{
//	        {Type: classroom.FurnitureDesk, Positions: []classroom.SeatPosition{{Row: 0, Col: 1}}},
//	    },
//	    Seats: []string{"1-0", "1-1", "1-2", "2-0", "2-1", "2-2"},
//	}
//	m, err := classroom.NewSeatMap(layout)
//
// # Rules
//
// A [Rule] names a set of students and a [RuleType]. Lower priority numbers
// are more important. Rule types form a closed set; unknown names are
// rejected when decoding.
//
// # Files
//
// [ReadFile] and [Decode] load a [Classroom] (layout, students, rules and
// optional existing placements) from TOML or JSON.
//
// All types in this package are plain values. Nothing here mutates a layout,
// roster or rule after it has been decoded.
package classroom
