package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/pipeline"
	"github.com/matzehuels/seatplan/pkg/placement"
	"github.com/matzehuels/seatplan/pkg/render"
)

func (c *CLI) showCommand() *cobra.Command {
	var labels string

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the room layout with its pinned seats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateLabels(labels); err != nil {
				return err
			}
			room, err := classroom.ReadFile(args[0])
			if err != nil {
				return err
			}
			pinned := &placement.Result{Placements: pipeline.ExistingPlacements(room)}
			chart, err := render.NewChart(room, pinned, render.Options{Labels: labels})
			if err != nil {
				return err
			}
			fmt.Fprint(out, render.Text(chart))
			return nil
		},
	}

	cmd.Flags().StringVar(&labels, "labels", render.LabelName, "seat labels: name or id")
	return cmd
}

func validateLabels(labels string) error {
	opts := pipeline.Options{Labels: labels}
	return opts.ValidateForRender()
}
