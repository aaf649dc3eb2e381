package placement

import (
	"fmt"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/errors"
)

// Context is the mutable seating state of one run. Every seat of the seat
// map is either available or occupied, never both. A Context is owned by a
// single run and is not safe for concurrent use.
type Context struct {
	seatMap    *classroom.SeatMap
	available  []classroom.SeatPosition // row-major
	occupied   map[classroom.SeatPosition]StudentPlacement
	placements []StudentPlacement // commit order
	placed     map[string]classroom.SeatPosition
}

// NewContext builds the seat map for layout and seeds it with existing
// placements. Existing placements must sit on distinct seats and name
// distinct students.
func NewContext(layout classroom.Layout, existing []StudentPlacement) (*Context, error) {
	m, err := classroom.NewSeatMap(layout)
	if err != nil {
		return nil, err
	}
	pc := &Context{
		seatMap:   m,
		available: m.Seats(),
		occupied:  make(map[classroom.SeatPosition]StudentPlacement),
		placed:    make(map[string]classroom.SeatPosition),
	}
	for _, sp := range existing {
		if !m.IsSeat(sp.SeatPosition) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"existing placement of %s at %s is not a seat", sp.StudentID, sp.SeatPosition)
		}
		if sp.AppliedRules == nil {
			sp.AppliedRules = []string{}
		}
		if err := pc.occupy(sp); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// SeatMap returns the run's seat geometry.
func (pc *Context) SeatMap() *classroom.SeatMap { return pc.seatMap }

// Available returns the free seats in row-major order. Callers must not
// modify the returned slice.
func (pc *Context) Available() []classroom.SeatPosition { return pc.available }

// Occupant returns the placement at p, if any.
func (pc *Context) Occupant(p classroom.SeatPosition) (StudentPlacement, bool) {
	sp, ok := pc.occupied[p]
	return sp, ok
}

// SeatOf returns the seat of studentID, if placed.
func (pc *Context) SeatOf(studentID string) (classroom.SeatPosition, bool) {
	p, ok := pc.placed[studentID]
	return p, ok
}

// Placements returns committed placements in commit order.
func (pc *Context) Placements() []StudentPlacement {
	return append([]StudentPlacement(nil), pc.placements...)
}

// occupy moves sp.SeatPosition from available to occupied.
// On error the context is unchanged.
func (pc *Context) occupy(sp StudentPlacement) error {
	if _, dup := pc.placed[sp.StudentID]; dup {
		return errors.New(errors.ErrCodeInternal, "student %s is already seated", sp.StudentID)
	}
	idx := -1
	for i, p := range pc.available {
		if p == sp.SeatPosition {
			idx = i
			break
		}
	}
	if idx < 0 {
		if prev, taken := pc.occupied[sp.SeatPosition]; taken {
			return errors.New(errors.ErrCodeInternal,
				"seat %s is already taken by %s", sp.SeatPosition, prev.StudentID)
		}
		return errors.New(errors.ErrCodeInternal, "seat %s is not available", sp.SeatPosition)
	}

	pc.available = append(pc.available[:idx:idx], pc.available[idx+1:]...)
	pc.occupied[sp.SeatPosition] = sp
	pc.placed[sp.StudentID] = sp.SeatPosition
	pc.placements = append(pc.placements, sp)
	return nil
}

// checkPartition verifies that available and occupied split the seat map.
func (pc *Context) checkPartition() error {
	if got, want := len(pc.available)+len(pc.occupied), pc.seatMap.SeatCount(); got != want {
		return fmt.Errorf("seat partition broken: %d available + %d occupied != %d seats",
			len(pc.available), len(pc.occupied), want)
	}
	for _, p := range pc.available {
		if _, taken := pc.occupied[p]; taken {
			return fmt.Errorf("seat %s is both available and occupied", p)
		}
	}
	return nil
}
