package placement

import (
	"sort"

	"github.com/matzehuels/seatplan/pkg/classroom"
)

// OrderByConstraintLoad returns the students sorted by how many constraints
// name them, most constrained first. Students with equal load keep their
// roster order. The input slice is not modified.
func OrderByConstraintLoad(students []classroom.Student, constraints []*Constraint) []classroom.Student {
	counts := ConstraintCounts(constraints)
	out := append([]classroom.Student(nil), students...)
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i].ID] > counts[out[j].ID]
	})
	return out
}
