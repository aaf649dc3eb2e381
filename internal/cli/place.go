package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/errors"
	"github.com/matzehuels/seatplan/pkg/pipeline"
)

// placeOpts holds the flags of the place command.
type placeOpts struct {
	output        string
	formats       string
	labels        string
	clearExisting bool
	accept        float64
	candidate     float64
	aggregate     float64
	noCache       bool
	refresh       bool
	interactive   bool
	strict        bool
}

func (c *CLI) placeCommand() *cobra.Command {
	var opts placeOpts

	cmd := &cobra.Command{
		Use:   "place [file]",
		Short: "Seat the students of a classroom file",
		Long: `Place reads a classroom file (.toml or .json), seats every student it can
and writes the seating chart in each requested format.

Text output goes to stdout unless --output is set. Other formats are
written next to the input file, or to --output (a file for one format, a
base path for several).`,
		Example: `  seatplan place room.toml
  seatplan place room.toml -f svg,json -o charts/room
  seatplan place room.json --candidate 60 --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlace(cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several)")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): text, json, dot, svg (comma-separated)")
	f.StringVar(&opts.labels, "labels", "", "seat labels: name (default) or id")
	f.BoolVar(&opts.clearExisting, "clear-existing", false, "ignore pinned seats in the input")
	f.Float64Var(&opts.accept, "accept", 0, "lowest combined score a seat may have")
	f.Float64Var(&opts.candidate, "candidate", 0, "score a single rule needs to count as satisfied")
	f.Float64Var(&opts.aggregate, "aggregate", 0, "mean score a location rule needs to hold")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the result in the terminal")
	f.BoolVar(&opts.strict, "strict", false, "fail if any student stays unplaced")

	return cmd
}

func (c *CLI) runPlace(cmd *cobra.Command, path string, opts *placeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(c.ConfigPath)
	if err != nil {
		return err
	}
	popts := cfg.Placement
	applyPlaceFlags(cmd, &popts, opts)
	popts.Logger = logger
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	room, err := classroom.ReadFile(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cmd, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	var spin *spinner
	if !opts.interactive && logger.GetLevel() > LogDebug {
		spin = newSpinner(ctx, "Placing students...")
		popts.Progress = spin.Progress()
		spin.Start()
	}
	res, err := runner.Execute(ctx, room, popts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d students", res.Stats.Placed))

	if opts.interactive {
		return runResultBrowser(ctx, room, res)
	}

	paths, err := writeArtifacts(path, opts.output, popts.Formats, res.Artifacts)
	if err != nil {
		return err
	}

	title := room.Layout.Name
	if title == "" {
		title = filepath.Base(path)
	}
	if res.Placement.Success {
		printSuccess("Seated %s", title)
	} else {
		printWarning("Seated %s with %d unplaced", title, res.Stats.Unplaced)
	}
	printStats(res.Stats, res.CacheInfo.PlacementHit)
	for _, p := range paths {
		printFile(p)
	}
	printNewline()
	printReport(res.Placement)

	if opts.strict && !res.Placement.Success {
		return fmt.Errorf("%d student(s) unplaced", res.Stats.Unplaced)
	}
	return nil
}

// applyPlaceFlags overrides config values with flags the user set.
func applyPlaceFlags(cmd *cobra.Command, dst *pipeline.Options, opts *placeOpts) {
	f := cmd.Flags()
	if formats := parseFormats(opts.formats); formats != nil {
		dst.Formats = formats
	}
	if opts.labels != "" {
		dst.Labels = opts.labels
	}
	if f.Changed("clear-existing") {
		dst.ClearExisting = opts.clearExisting
	}
	if f.Changed("accept") || f.Changed("candidate") || f.Changed("aggregate") {
		dst.SetPlacementDefaults()
	}
	if f.Changed("accept") {
		dst.Thresholds.Accept = opts.accept
	}
	if f.Changed("candidate") {
		dst.Thresholds.Candidate = opts.candidate
	}
	if f.Changed("aggregate") {
		dst.Thresholds.Aggregate = opts.aggregate
	}
	dst.Refresh = opts.refresh
}

// writeArtifacts writes every artifact and returns the files written.
// Text goes to stdout when no output path is given.
func writeArtifacts(input, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if output != "" {
		if err := errors.ValidateFilename(filepath.Base(output)); err != nil {
			return nil, fmt.Errorf("output %q: %w", output, err)
		}
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	var written []string
	for _, format := range formats {
		data := artifacts[format]
		if output == "" && format == pipeline.FormatText {
			fmt.Fprint(out, string(data))
			continue
		}

		path := base + pipeline.FileExtensions[format]
		if output != "" && len(formats) == 1 {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, err
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func runResultBrowser(ctx context.Context, room *classroom.Classroom, res *pipeline.Result) error {
	model, err := newResultModel(room, res.Placement)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
