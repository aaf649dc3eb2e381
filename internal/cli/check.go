package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seatplan/pkg/classroom"
)

func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a classroom file without placing anyone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := classroom.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := classroom.NewSeatMap(room.Layout)
			if err != nil {
				return err
			}

			printKeyValue("grid", fmt.Sprintf("%d×%d", m.Rows, m.Cols))
			printKeyValue("seats", strconv.Itoa(m.SeatCount()))
			printKeyValue("students", strconv.Itoa(len(room.Students)))
			printKeyValue("rules", fmt.Sprintf("%d (%d active)", len(room.Rules), activeRules(room.Rules)))
			printNewline()

			problems, warnings := lint(room, m)
			for _, w := range warnings {
				printWarning("%s", w)
			}
			for _, p := range problems {
				printError("%s", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s: %d problem(s)", args[0], len(problems))
			}
			printSuccess("%s is ready to place", args[0])
			printNextStep("Seat the class", "seatplan place "+args[0])
			return nil
		},
	}
}

// lint reports input problems that make placement fail outright and
// warnings about rules that cannot have any effect.
func lint(room *classroom.Classroom, m *classroom.SeatMap) (problems, warnings []string) {
	if len(room.Students) == 0 {
		problems = append(problems, "no students")
	}
	if len(room.Students) > m.SeatCount() {
		problems = append(problems, fmt.Sprintf("%d students but only %d seats", len(room.Students), m.SeatCount()))
	}

	known := make(map[string]bool, len(room.Students))
	for _, s := range room.Students {
		known[s.ID] = true
	}
	for _, r := range room.Rules {
		if !r.IsActive {
			continue
		}
		for _, id := range r.StudentIDs {
			if !known[id] {
				problems = append(problems, fmt.Sprintf("rule %s names unknown student %q", r.ID, id))
			}
		}
		switch {
		case len(r.StudentIDs) == 0:
			warnings = append(warnings, fmt.Sprintf("rule %s names no students", r.ID))
		case (r.Type == classroom.RuleSeparate || r.Type == classroom.RuleTogether) && len(r.StudentIDs) < 2:
			warnings = append(warnings, fmt.Sprintf("rule %s (%s) needs at least two students", r.ID, r.Type))
		case (r.Type == classroom.RuleNearTeacher || r.Type == classroom.RuleNearDoor) && len(m.Anchors(r.Type)) == 0:
			warnings = append(warnings, fmt.Sprintf("rule %s (%s) has nothing to be near", r.ID, r.Type))
		}
	}
	return problems, warnings
}

func activeRules(rules []classroom.Rule) int {
	n := 0
	for _, r := range rules {
		if r.IsActive {
			n++
		}
	}
	return n
}
