package placement

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/classroom/geometry"
)

// ConflictType classifies why students could not be seated.
type ConflictType string

const (
	ConflictImpossible        ConflictType = "IMPOSSIBLE"
	ConflictInsufficientSeats ConflictType = "INSUFFICIENT_SEATS"
)

// StudentPlacement is a committed seat.
type StudentPlacement struct {
	StudentID    string                 `json:"studentId"`
	SeatPosition classroom.SeatPosition `json:"seatPosition"`
	AppliedRules []string               `json:"appliedRules"` // rules satisfied when the seat was chosen
}

// Candidate is one seat evaluated for one student.
type Candidate struct {
	StudentID      string
	Position       classroom.SeatPosition
	Score          float64
	SatisfiedRules []string
	ViolatedRules  []string
}

// ConstraintResult is the verdict of one constraint on one candidate.
type ConstraintResult struct {
	Satisfied bool
	Score     float64
	Reason    string
}

// RuleSatisfaction reports whether a rule holds over the final seating.
type RuleSatisfaction struct {
	RuleID           string             `json:"ruleId"`
	RuleType         classroom.RuleType `json:"ruleType"`
	Satisfied        bool               `json:"satisfied"`
	AffectedStudents []string           `json:"affectedStudents"`
	Priority         int                `json:"priority"`
	Reason           string             `json:"reason,omitempty"`
}

// Conflict describes students the engine could not seat.
type Conflict struct {
	RuleIDs          []string     `json:"ruleIds"`
	ConflictType     ConflictType `json:"conflictType"`
	Description      string       `json:"description"`
	AffectedStudents []string     `json:"affectedStudents"`
}

// Result is the outcome of one placement run.
//
// Every student of the input appears in exactly one of Placements and
// UnplacedStudents. Success is false if any student is unplaced or the input
// was rejected; unsatisfied rules do not affect it.
type Result struct {
	Success          bool
	Placements       []StudentPlacement
	RuleSatisfaction []RuleSatisfaction
	Conflicts        []Conflict
	UnplacedStudents []string
	ExecutionTime    time.Duration
}

type resultJSON struct {
	Success          bool               `json:"success"`
	Placements       []StudentPlacement `json:"placements"`
	RuleSatisfaction []RuleSatisfaction `json:"ruleSatisfaction"`
	Conflicts        []Conflict         `json:"conflicts"`
	UnplacedStudents []string           `json:"unplacedStudents"`
	ExecutionTime    float64            `json:"executionTime"` // milliseconds
}

// MarshalJSON encodes the result with the execution time in milliseconds.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:          r.Success,
		Placements:       nonNil(r.Placements),
		RuleSatisfaction: nonNil(r.RuleSatisfaction),
		Conflicts:        nonNil(r.Conflicts),
		UnplacedStudents: nonNil(r.UnplacedStudents),
		ExecutionTime:    float64(r.ExecutionTime) / float64(time.Millisecond),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(data []byte) error {
	var aux resultJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Result{
		Success:          aux.Success,
		Placements:       nonNil(aux.Placements),
		RuleSatisfaction: nonNil(aux.RuleSatisfaction),
		Conflicts:        nonNil(aux.Conflicts),
		UnplacedStudents: nonNil(aux.UnplacedStudents),
		ExecutionTime:    time.Duration(aux.ExecutionTime * float64(time.Millisecond)),
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Placement returns the placement for studentID, if the student was seated.
func (r *Result) Placement(studentID string) (StudentPlacement, bool) {
	for _, p := range r.Placements {
		if p.StudentID == studentID {
			return p, true
		}
	}
	return StudentPlacement{}, false
}

// SatisfiedCount returns how many rules hold over the final seating.
func (r *Result) SatisfiedCount() int {
	n := 0
	for _, rs := range r.RuleSatisfaction {
		if rs.Satisfied {
			n++
		}
	}
	return n
}

// Thresholds steer acceptance and satisfaction decisions.
type Thresholds struct {
	// Accept is the lowest total candidate score that may be committed.
	Accept float64 `json:"accept" toml:"accept"`
	// Candidate is the seat score a single seat must exceed to satisfy a
	// location rule during placement.
	Candidate float64 `json:"candidate" toml:"candidate"`
	// Aggregate is the mean seat score the placed members of a location rule
	// must reach for the rule to hold over the final seating.
	Aggregate float64 `json:"aggregate" toml:"aggregate"`
}

// DefaultThresholds returns the standard tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{Accept: -50, Candidate: 50, Aggregate: 70}
}

// Progress step names.
const (
	StepValidating = "validating"
	StepCompiling  = "compiling rules"
	StepPlacing    = "placing students"
	StepReporting  = "checking rules"
	StepComplete   = "complete"
)

// Progress is reported synchronously while a run advances.
type Progress struct {
	CurrentStep    string
	StudentID      string // student just seated, during StepPlacing
	RulesProcessed int
	TotalRules     int
	StudentsPlaced int
	TotalStudents  int
}

// ProgressFunc receives progress events in order.
type ProgressFunc func(Progress)

// Options configures a run. The zero value is valid.
type Options struct {
	// ClearExisting ignores Existing when set.
	ClearExisting bool
	// Existing placements are kept as they are. Their students are not
	// placed again and their seats are not offered to anyone else.
	Existing []StudentPlacement
	// Progress, if set, is called after each step and each committed seat.
	Progress ProgressFunc
	// Thresholds defaults to DefaultThresholds when nil.
	Thresholds *Thresholds
	// Scorer defaults to geometry.Default.
	Scorer geometry.Scorer
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}
