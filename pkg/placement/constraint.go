package placement

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/classroom/geometry"
)

// Candidate score contributions of the relational rules.
const (
	separateViolation = -100.0
	separateBonus     = 10.0
	togetherBootstrap = 5.0
	togetherAdjacent  = 20.0
	togetherPerUnit   = -10.0
)

// Constraint is an active rule compiled for evaluation. It carries the rule
// as plain data; Validate dispatches on its type.
type Constraint struct {
	RuleID   string
	Type     classroom.RuleType
	Priority int
	Members  []string // rule order, duplicates removed

	members   map[string]struct{}
	scorer    geometry.Scorer
	threshold float64 // Thresholds.Candidate
}

// Compile turns the active rules into constraints sorted by ascending
// priority. Rules with equal priority keep their input order. Inactive rules
// are dropped.
func Compile(rules []classroom.Rule, scorer geometry.Scorer, th Thresholds) []*Constraint {
	if scorer == nil {
		scorer = geometry.Default
	}
	var out []*Constraint
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		c := &Constraint{
			RuleID:    r.ID,
			Type:      r.Type,
			Priority:  r.Priority,
			members:   make(map[string]struct{}, len(r.StudentIDs)),
			scorer:    scorer,
			threshold: th.Candidate,
		}
		for _, id := range r.StudentIDs {
			if _, dup := c.members[id]; dup {
				continue
			}
			c.members[id] = struct{}{}
			c.Members = append(c.Members, id)
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Has reports whether the rule names studentID.
func (c *Constraint) Has(studentID string) bool {
	_, ok := c.members[studentID]
	return ok
}

// Validate judges seating studentID at p given the seats committed so far.
// Students the rule does not name get a neutral, satisfied result.
// Validate does not modify pc.
func (c *Constraint) Validate(studentID string, p classroom.SeatPosition, pc *Context) ConstraintResult {
	if !c.Has(studentID) {
		return ConstraintResult{Satisfied: true}
	}
	switch c.Type {
	case classroom.RuleSeparate:
		return c.validateSeparate(studentID, p, pc)
	case classroom.RuleTogether:
		return c.validateTogether(studentID, p, pc)
	case classroom.RuleFrontRow, classroom.RuleBackRow, classroom.RuleNearTeacher, classroom.RuleNearDoor:
		return c.validateLocation(p, pc)
	}
	return ConstraintResult{Satisfied: true, Reason: fmt.Sprintf("unknown rule type %v", c.Type)}
}

// placedMembers returns the committed seats of the other members, in commit
// order.
func (c *Constraint) placedMembers(studentID string, pc *Context) []StudentPlacement {
	var out []StudentPlacement
	for _, sp := range pc.placements {
		if sp.StudentID != studentID && c.Has(sp.StudentID) {
			out = append(out, sp)
		}
	}
	return out
}

func (c *Constraint) validateSeparate(studentID string, p classroom.SeatPosition, pc *Context) ConstraintResult {
	for _, sp := range c.placedMembers(studentID, pc) {
		if geometry.AreAdjacentIncludingDiagonal(p, sp.SeatPosition) {
			return ConstraintResult{
				Satisfied: false,
				Score:     separateViolation,
				Reason:    fmt.Sprintf("adjacent to %s at %s", sp.StudentID, sp.SeatPosition),
			}
		}
	}
	return ConstraintResult{Satisfied: true, Score: separateBonus}
}

func (c *Constraint) validateTogether(studentID string, p classroom.SeatPosition, pc *Context) ConstraintResult {
	placed := c.placedMembers(studentID, pc)
	if len(placed) == 0 {
		return ConstraintResult{Satisfied: true, Score: togetherBootstrap}
	}
	minDist := math.Inf(1)
	for _, sp := range placed {
		if geometry.AreAdjacentIncludingDiagonal(p, sp.SeatPosition) {
			return ConstraintResult{Satisfied: true, Score: togetherAdjacent}
		}
		minDist = math.Min(minDist, geometry.Distance(p, sp.SeatPosition))
	}
	return ConstraintResult{
		Satisfied: false,
		Score:     togetherPerUnit * minDist,
		Reason:    fmt.Sprintf("%.1f seats from the nearest group member", minDist),
	}
}

func (c *Constraint) validateLocation(p classroom.SeatPosition, pc *Context) ConstraintResult {
	s := c.scorer.SeatScore(p, c.Type, pc.seatMap)
	res := ConstraintResult{Satisfied: s > c.threshold, Score: s - geometry.NeutralScore}
	if !res.Satisfied {
		res.Reason = fmt.Sprintf("seat score %.0f for %v", s, c.Type)
	}
	return res
}

// ConstraintCounts returns, per student, how many constraints name them.
func ConstraintCounts(constraints []*Constraint) map[string]int {
	counts := make(map[string]int)
	for _, c := range constraints {
		for _, id := range c.Members {
			counts[id]++
		}
	}
	return counts
}
