// Package pipeline runs the place → render pipeline shared by the CLI and
// the HTTP server.
//
// # Stages
//
//  1. Place: run the placement engine over a classroom. Results are cached
//     by the hash of the classroom and the thresholds.
//  2. Render: draw the result in each requested format (text, json, dot,
//     svg). Artifacts are cached by the hash of the placement.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, c, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seatplan/pkg/cache"
	"github.com/matzehuels/seatplan/pkg/errors"
	"github.com/matzehuels/seatplan/pkg/placement"
	"github.com/matzehuels/seatplan/pkg/render"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// AllFormats lists every supported output format.
var AllFormats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// FileExtensions maps formats to output file extensions.
var FileExtensions = map[string]string{
	FormatText: ".txt",
	FormatJSON: ".json",
	FormatDOT:  ".dot",
	FormatSVG:  ".svg",
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is read from the tool config file
// and from API requests.
type Options struct {
	// Thresholds tune the placement engine. The zero value selects
	// placement.DefaultThresholds.
	Thresholds    placement.Thresholds `json:"thresholds" toml:"thresholds"`
	ClearExisting bool                 `json:"clear_existing,omitempty" toml:"clear_existing"`

	Formats []string `json:"formats,omitempty" toml:"formats"`
	Labels  string   `json:"labels,omitempty" toml:"labels"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	Logger   *log.Logger            `json:"-" toml:"-"`
	Progress placement.ProgressFunc `json:"-" toml:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetPlacementDefaults()
	if err := o.ValidateThresholds(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetPlacementDefaults fills in thresholds and the logger.
func (o *Options) SetPlacementDefaults() {
	if o.Thresholds == (placement.Thresholds{}) {
		o.Thresholds = placement.DefaultThresholds()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateThresholds checks that the score thresholds lie on the seat score
// scale.
func (o *Options) ValidateThresholds() error {
	th := o.Thresholds
	if th.Candidate < 0 || th.Candidate > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "candidate threshold %.1f outside 0..100", th.Candidate)
	}
	if th.Aggregate < 0 || th.Aggregate > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "aggregate threshold %.1f outside 0..100", th.Aggregate)
	}
	return nil
}

// SetRenderDefaults fills in formats and labels.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Labels == "" {
		o.Labels = render.LabelName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender checks formats and labels.
func (o *Options) ValidateForRender() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return errors.ValidateFormat(o.Labels, render.LabelName, render.LabelID)
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, AllFormats...); err != nil {
			return err
		}
	}
	return nil
}

// PlacementKeyOpts returns the cache key options of the placement stage.
func (o *Options) PlacementKeyOpts() cache.PlacementKeyOpts {
	return cache.PlacementKeyOpts{
		Accept:        o.Thresholds.Accept,
		Candidate:     o.Thresholds.Candidate,
		Aggregate:     o.Thresholds.Aggregate,
		ClearExisting: o.ClearExisting,
	}
}

// ArtifactKeyOpts returns the cache key options of one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Labels: o.Labels}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string
	// InputHash is the content hash of the classroom.
	InputHash string

	Placement *placement.Result
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats summarizes a run.
type Stats struct {
	Students   int
	Seats      int
	Rules      int
	Placed     int
	Unplaced   int
	Satisfied  int
	PlaceTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	PlacementHit bool
	RenderHit    bool // every artifact came from the cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d placed, %d/%d rules hold", s.Placed, s.Students, s.Satisfied, s.Rules)
}
