package placement

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/classroom/geometry"
)

// Input is everything a run places.
type Input struct {
	Students []classroom.Student
	Rules    []classroom.Rule
	Layout   classroom.Layout
}

// Engine runs greedy placements with fixed options. An Engine holds no
// per-run state; concurrent calls to Place are safe as long as the
// configured Progress callback and Scorer are.
type Engine struct {
	opts       Options
	thresholds Thresholds
	scorer     geometry.Scorer
	logger     *log.Logger
}

// New returns an Engine configured with opts.
func New(opts Options) *Engine {
	e := &Engine{
		opts:       opts,
		thresholds: DefaultThresholds(),
		scorer:     opts.Scorer,
		logger:     opts.Logger,
	}
	if opts.Thresholds != nil {
		e.thresholds = *opts.Thresholds
	}
	if e.scorer == nil {
		e.scorer = geometry.Default
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Execute seats students in layout according to rules.
func Execute(students []classroom.Student, rules []classroom.Rule, layout classroom.Layout, opts Options) *Result {
	return New(opts).Place(context.Background(), Input{Students: students, Rules: rules, Layout: layout})
}

// Place runs one placement. ctx is consulted once before the run starts; a
// started run always completes. Place never returns nil.
func (e *Engine) Place(ctx context.Context, in Input) *Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return failure(in.Students, nil, fmt.Sprintf("placement not started: %v", err), start)
	}
	return e.run(in, start)
}

func (e *Engine) run(in Input, start time.Time) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("placement aborted", "panic", r)
			res = failure(in.Students, nil, fmt.Sprintf("internal error: %v", r), start)
		}
	}()

	totalRules := countActive(in.Rules)
	progress := Progress{TotalRules: totalRules, TotalStudents: len(in.Students)}
	e.report(&progress, StepValidating)

	var existing []StudentPlacement
	if !e.opts.ClearExisting {
		existing = e.opts.Existing
	}
	pc, err := NewContext(in.Layout, existing)
	if err != nil {
		return failure(in.Students, nil, err.Error(), start)
	}
	if ruleIDs, msg := validate(in, pc); msg != "" {
		e.logger.Debug("placement input rejected", "reason", msg)
		return failure(in.Students, ruleIDs, msg, start)
	}

	e.report(&progress, StepCompiling)
	constraints := Compile(in.Rules, e.scorer, e.thresholds)
	progress.RulesProcessed = len(constraints)
	e.logger.Debug("compiled constraints", "active", len(constraints), "total", len(in.Rules))

	ordered := OrderByConstraintLoad(in.Students, constraints)
	for _, s := range ordered {
		if _, ok := pc.SeatOf(s.ID); ok {
			progress.StudentsPlaced++
		}
	}
	e.report(&progress, StepPlacing)

	unplaced := []string{}
	conflicts := []Conflict{}
	for _, s := range ordered {
		if _, ok := pc.SeatOf(s.ID); ok {
			continue
		}
		best, ok := e.bestCandidate(s.ID, pc, constraints)
		if ok && best.Score >= e.thresholds.Accept {
			sp := StudentPlacement{StudentID: s.ID, SeatPosition: best.Position, AppliedRules: best.SatisfiedRules}
			if err := pc.occupy(sp); err != nil {
				return failure(in.Students, nil, err.Error(), start)
			}
			progress.StudentsPlaced++
			progress.StudentID = s.ID
			e.logger.Debug("placed student", "student", s.ID, "seat", best.Position.Key(), "score", best.Score)
			e.report(&progress, StepPlacing)
			continue
		}
		unplaced = append(unplaced, s.ID)
		conflicts = append(conflicts, unplacedConflict(s, constraints, best, ok, e.thresholds.Accept))
		e.logger.Debug("student unplaced", "student", s.ID, "seats_left", len(pc.Available()))
	}

	if err := pc.checkPartition(); err != nil {
		return failure(in.Students, nil, err.Error(), start)
	}

	progress.StudentID = ""
	e.report(&progress, StepReporting)
	satisfaction := checkRules(constraints, pc, e.scorer, e.thresholds)

	placements := pc.Placements()
	e.report(&progress, StepComplete)
	return &Result{
		Success:          len(unplaced) == 0,
		Placements:       placements,
		RuleSatisfaction: satisfaction,
		Conflicts:        conflicts,
		UnplacedStudents: unplaced,
		ExecutionTime:    time.Since(start),
	}
}

func (e *Engine) report(p *Progress, step string) {
	if e.opts.Progress == nil {
		return
	}
	p.CurrentStep = step
	e.opts.Progress(*p)
}

// Evaluate scores every available seat for studentID and returns the
// candidates best first. Seats with equal scores keep row-major order.
func Evaluate(studentID string, pc *Context, constraints []*Constraint) []Candidate {
	avail := pc.Available()
	cands := make([]Candidate, 0, len(avail))
	for _, p := range avail {
		c := Candidate{
			StudentID:      studentID,
			Position:       p,
			SatisfiedRules: []string{},
			ViolatedRules:  []string{},
		}
		for _, con := range constraints {
			r := con.Validate(studentID, p, pc)
			c.Score += r.Score
			if r.Satisfied {
				c.SatisfiedRules = append(c.SatisfiedRules, con.RuleID)
			} else {
				c.ViolatedRules = append(c.ViolatedRules, con.RuleID)
			}
		}
		cands = append(cands, c)
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	return cands
}

func (e *Engine) bestCandidate(studentID string, pc *Context, constraints []*Constraint) (Candidate, bool) {
	cands := Evaluate(studentID, pc, constraints)
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// validate checks the preconditions of a run. It returns the offending rule
// IDs, if any, and a description; an empty description means valid.
func validate(in Input, pc *Context) ([]string, string) {
	if len(in.Students) == 0 {
		return nil, "no students to place"
	}
	seats := pc.SeatMap().SeatCount()
	if seats == 0 {
		return nil, "layout has no seats"
	}
	if len(in.Students) > seats {
		return nil, fmt.Sprintf("not enough seats: %d students for %d seats", len(in.Students), seats)
	}

	roster := make(map[string]struct{}, len(in.Students))
	for _, s := range in.Students {
		if _, dup := roster[s.ID]; dup {
			return nil, fmt.Sprintf("duplicate student id %q", s.ID)
		}
		roster[s.ID] = struct{}{}
	}
	for _, r := range in.Rules {
		if !r.IsActive {
			continue
		}
		if _, err := r.Type.MarshalText(); err != nil {
			return []string{r.ID}, fmt.Sprintf("rule %s has unknown type %d", r.ID, int(r.Type))
		}
		for _, id := range r.StudentIDs {
			if _, ok := roster[id]; !ok {
				return []string{r.ID}, fmt.Sprintf("rule %s references unknown student %q", r.ID, id)
			}
		}
	}
	for _, sp := range pc.placements {
		if _, ok := roster[sp.StudentID]; !ok {
			return nil, fmt.Sprintf("existing placement references unknown student %q", sp.StudentID)
		}
	}
	return nil, ""
}

// unplacedConflict classifies why s stayed unseated. A student named by an
// active rule is always IMPOSSIBLE; anyone else is INSUFFICIENT_SEATS.
func unplacedConflict(s classroom.Student, constraints []*Constraint, best Candidate, hadSeat bool, accept float64) Conflict {
	var ruleIDs []string
	for _, c := range constraints {
		if c.Has(s.ID) {
			ruleIDs = append(ruleIDs, c.RuleID)
		}
	}
	if len(ruleIDs) == 0 {
		return Conflict{
			RuleIDs:          nonNil(ruleIDs),
			ConflictType:     ConflictInsufficientSeats,
			Description:      fmt.Sprintf("no seat left for %s", s.DisplayName()),
			AffectedStudents: []string{s.ID},
		}
	}
	desc := fmt.Sprintf("no acceptable seat for %s: best score %.1f is below %.1f (rules %s)",
		s.DisplayName(), best.Score, accept, strings.Join(ruleIDs, ", "))
	if !hadSeat {
		desc = fmt.Sprintf("no seat left for %s (rules %s)", s.DisplayName(), strings.Join(ruleIDs, ", "))
	}
	return Conflict{
		RuleIDs:          ruleIDs,
		ConflictType:     ConflictImpossible,
		Description:      desc,
		AffectedStudents: []string{s.ID},
	}
}

// failure builds the result of a run that could not be carried out: nobody
// is seated and a single IMPOSSIBLE conflict names every student.
func failure(students []classroom.Student, ruleIDs []string, msg string, start time.Time) *Result {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return &Result{
		Success:          false,
		Placements:       []StudentPlacement{},
		RuleSatisfaction: []RuleSatisfaction{},
		Conflicts: []Conflict{{
			RuleIDs:          nonNil(ruleIDs),
			ConflictType:     ConflictImpossible,
			Description:      msg,
			AffectedStudents: append([]string(nil), ids...),
		}},
		UnplacedStudents: ids,
		ExecutionTime:    time.Since(start),
	}
}

func countActive(rules []classroom.Rule) int {
	n := 0
	for _, r := range rules {
		if r.IsActive {
			n++
		}
	}
	return n
}
