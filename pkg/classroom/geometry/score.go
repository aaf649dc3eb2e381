package geometry

import (
	"math"

	"github.com/matzehuels/seatplan/pkg/classroom"
)

// Score bounds. Neutral is returned when a rule type has no preference.
const (
	MinScore     = 0.0
	MaxScore     = 100.0
	NeutralScore = 50.0
)

// Scorer rates how well a seat suits a location rule.
// Implementations must return values in [MinScore, MaxScore].
type Scorer interface {
	SeatScore(p classroom.SeatPosition, t classroom.RuleType, m *classroom.SeatMap) float64
}

// Linear is the default Scorer. See the package documentation.
type Linear struct{}

// Default is the scorer used when none is configured.
var Default Scorer = Linear{}

var _ Scorer = Linear{}

// SeatScore scores p with the Default scorer.
func SeatScore(p classroom.SeatPosition, t classroom.RuleType, m *classroom.SeatMap) float64 {
	return Default.SeatScore(p, t, m)
}

// SeatScore implements Scorer.
func (Linear) SeatScore(p classroom.SeatPosition, t classroom.RuleType, m *classroom.SeatMap) float64 {
	switch t {
	case classroom.RuleFrontRow, classroom.RuleBackRow:
		return rowScore(p, t, m)
	case classroom.RuleNearTeacher, classroom.RuleNearDoor:
		return anchorScore(p, t, m)
	}
	return NeutralScore
}

func rowScore(p classroom.SeatPosition, t classroom.RuleType, m *classroom.SeatMap) float64 {
	front, _, ok := FrontRowSeats(m)
	if !ok {
		return NeutralScore
	}
	back, _, _ := BackRowSeats(m)
	if front == back {
		return MaxScore
	}
	span := float64(back - front)
	var s float64
	if t == classroom.RuleFrontRow {
		s = MaxScore * float64(back-p.Row) / span
	} else {
		s = MaxScore * float64(p.Row-front) / span
	}
	return clamp(s)
}

func anchorScore(p classroom.SeatPosition, t classroom.RuleType, m *classroom.SeatMap) float64 {
	anchors := m.Anchors(t)
	if len(anchors) == 0 {
		return NeutralScore
	}
	r := AnchorDistanceRange(m, t)
	if math.IsInf(r.Min, 1) || r.Max == r.Min {
		return MaxScore
	}
	return clamp(MaxScore * (r.Max - nearest(p, anchors)) / (r.Max - r.Min))
}

// DistanceRange is the spread of seat distances to the nearest anchor.
type DistanceRange struct {
	Min, Max float64
}

type anchorRangeKey struct{ t classroom.RuleType }

// AnchorDistanceRange returns the smallest and largest distance from any
// seat of m to its nearest anchor of rule type t. The range is computed
// once per seat map. Without seats or anchors Min is +Inf.
func AnchorDistanceRange(m *classroom.SeatMap, t classroom.RuleType) DistanceRange {
	return m.Memo(anchorRangeKey{t}, func() any {
		return seatDistanceRange(m.Seats(), m.Anchors(t))
	}).(DistanceRange)
}

func seatDistanceRange(seats, anchors []classroom.SeatPosition) DistanceRange {
	r := DistanceRange{Min: math.Inf(1), Max: math.Inf(-1)}
	if len(anchors) == 0 {
		return r
	}
	for _, s := range seats {
		d := nearest(s, anchors)
		r.Min = math.Min(r.Min, d)
		r.Max = math.Max(r.Max, d)
	}
	return r
}

func clamp(s float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, s))
}
