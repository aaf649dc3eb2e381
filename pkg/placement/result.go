package placement

import (
	"fmt"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/classroom/geometry"
)

// checkRules judges every constraint against the final seating, in
// priority order. Scores used while placing are not consulted.
func checkRules(constraints []*Constraint, pc *Context, scorer geometry.Scorer, th Thresholds) []RuleSatisfaction {
	out := make([]RuleSatisfaction, 0, len(constraints))
	for _, c := range constraints {
		var seats []classroom.SeatPosition
		var ids []string
		for _, id := range c.Members {
			if p, ok := pc.SeatOf(id); ok {
				seats = append(seats, p)
				ids = append(ids, id)
			}
		}

		var ok bool
		var reason string
		switch {
		case c.Type == classroom.RuleSeparate:
			ok, reason = separated(ids, seats)
		case c.Type == classroom.RuleTogether:
			ok, reason = grouped(seats)
		case c.Type.IsLocation():
			ok, reason = located(c.Type, seats, pc.SeatMap(), scorer, th.Aggregate)
		default:
			reason = fmt.Sprintf("unknown rule type %v", c.Type)
		}

		out = append(out, RuleSatisfaction{
			RuleID:           c.RuleID,
			RuleType:         c.Type,
			Satisfied:        ok,
			AffectedStudents: append([]string{}, c.Members...),
			Priority:         c.Priority,
			Reason:           reason,
		})
	}
	return out
}

// separated holds when no two placed members touch, diagonals included.
func separated(ids []string, seats []classroom.SeatPosition) (bool, string) {
	for i := range seats {
		for j := i + 1; j < len(seats); j++ {
			if geometry.AreAdjacentIncludingDiagonal(seats[i], seats[j]) {
				return false, fmt.Sprintf("%s and %s sit next to each other", ids[i], ids[j])
			}
		}
	}
	return true, ""
}

// grouped holds when the placed members form one connected block under
// 8-adjacency. A group with a single placed member holds; one with none
// does not.
func grouped(seats []classroom.SeatPosition) (bool, string) {
	switch len(seats) {
	case 0:
		return false, "no group member was seated"
	case 1:
		return true, ""
	}

	seen := make([]bool, len(seats))
	seen[0] = true
	queue := []int{0}
	reached := 1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for i := range seats {
			if !seen[i] && geometry.AreAdjacentIncludingDiagonal(seats[cur], seats[i]) {
				seen[i] = true
				reached++
				queue = append(queue, i)
			}
		}
	}
	if reached != len(seats) {
		return false, fmt.Sprintf("group split: %d of %d members connected", reached, len(seats))
	}
	return true, ""
}

// located holds when the mean seat score of the placed members reaches
// threshold.
func located(t classroom.RuleType, seats []classroom.SeatPosition, m *classroom.SeatMap, scorer geometry.Scorer, threshold float64) (bool, string) {
	if len(seats) == 0 {
		return false, "no member was seated"
	}
	var sum float64
	for _, p := range seats {
		sum += scorer.SeatScore(p, t, m)
	}
	mean := sum / float64(len(seats))
	if mean < threshold {
		return false, fmt.Sprintf("mean seat score %.1f below %.0f", mean, threshold)
	}
	return true, ""
}
