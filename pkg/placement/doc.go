// Package placement assigns students to seats so that a prioritized list of
// rules is satisfied as well as possible.
//
// # Algorithm
//
// [Execute] runs a single greedy pass:
//
//  1. Validate the roster, rules and layout.
//  2. Compile active rules into [Constraint] values, ordered by priority.
//  3. Order students by how many constraints name them, most first.
//  4. For each student, score every free seat against every constraint,
//     take the best seat and commit it if its score clears
//     [Thresholds.Accept]. Committed seats are never revisited.
//  5. Re-check every rule against the final seating and report which ones
//     hold.
//
// The pass is deterministic. The same input always yields the same
// placements, satisfaction report and conflicts, in the same order.
//
// # Failures
//
// Execute never returns an error. Invalid input, students that could not be
// seated and unexpected failures are all reported as [Conflict] entries on
// the [Result], and Result.Success is false whenever a student is left
// unplaced.
//
// # Thresholds
//
// Three numbers steer the pass; see [Thresholds]. The defaults are tuning
// values, not derived ones.
package placement
