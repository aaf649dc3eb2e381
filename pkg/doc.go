// Package pkg holds the seatplan libraries.
//
// # Overview
//
// Seatplan seats the students of a classroom on the seats of a grid layout
// while honoring prioritized seating rules. The packages are:
//
//   - [classroom]: layouts, students, rules and the TOML/JSON file format
//   - [classroom/geometry]: seat distances, adjacency and location scores
//   - [placement]: the greedy placement engine and its result report
//   - [render]: text, JSON, DOT and SVG seating charts
//   - [pipeline]: place → render orchestration with caching
//   - [cache]: file, Redis and null result caches
//   - [observability]: hooks for metrics and tracing
//   - [errors]: coded errors shared by the CLI and the HTTP API
//
// # Data Flow
//
//	classroom file (.toml / .json)
//	         ↓
//	    [classroom] decode + validate
//	         ↓
//	    [placement] compile rules → order students → seat greedily → check rules
//	         ↓
//	    [render] text / json / dot / svg
//
// # Quick Start
//
//	room, err := classroom.ReadFile("room.toml")
//	if err != nil {
//	    return err
//	}
//	res := placement.Execute(room.Students, room.Rules, room.Layout, placement.Options{})
//	for _, p := range res.Placements {
//	    fmt.Println(p.StudentID, p.SeatPosition)
//	}
//
// [classroom]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/classroom
// [classroom/geometry]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/classroom/geometry
// [placement]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/placement
// [render]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/seatplan/pkg/errors
package pkg
