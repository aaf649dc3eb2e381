// Package geometry measures seats: distances, adjacency, row zones and the
// 0..100 location score that location rules are judged by.
//
// All functions are pure. They read a [classroom.SeatMap] and never modify
// its geometry; anchor distance ranges are memoized on the map.
//
// # Scoring
//
// [Scorer] maps a seat and a location rule type to a score in [0, 100],
// where 100 is the best seat in the room for that rule. [Default] scores
// linearly:
//
//   - FRONT_ROW: 100 on the first row that has a seat, 0 on the last.
//   - BACK_ROW: the mirror image.
//   - NEAR_TEACHER, NEAR_DOOR: 100 for the seat closest to the nearest
//     anchor, 0 for the farthest. A room without the anchor scores every
//     seat 50.
//
// Relational rule types (SEPARATE, TOGETHER) always score 50.
package geometry
