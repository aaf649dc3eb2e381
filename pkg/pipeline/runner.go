package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/seatplan/pkg/cache"
	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/observability"
	"github.com/matzehuels/seatplan/pkg/placement"
)

// Cache key types reported to observability hooks.
const (
	keyTypePlacement = "placement"
	keyTypeArtifact  = "artifact"
)

// Runner executes the pipeline with caching. It keeps no per-run state and
// may be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute places the classroom and renders every requested format.
func (r *Runner) Execute(ctx context.Context, c *classroom.Classroom, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	placeStart := time.Now()
	res, inputHash, hit, err := r.PlaceWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	result.Placement = res
	result.InputHash = inputHash
	result.CacheInfo.PlacementHit = hit
	result.Stats = stats(c, res)
	result.Stats.PlaceTime = time.Since(placeStart)

	logger.Info("placed students",
		"placed", result.Stats.Placed,
		"unplaced", result.Stats.Unplaced,
		"rules_ok", fmt.Sprintf("%d/%d", result.Stats.Satisfied, len(res.RuleSatisfaction)),
		"cached", hit,
		"duration", result.Stats.PlaceTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Debug("rendered outputs", "formats", opts.Formats, "cached", renderHit, "duration", result.Stats.RenderTime)
	return result, nil
}

// PlaceWithCacheInfo runs the placement engine, serving repeated inputs from
// the cache. It returns the result, the input hash and whether the cache was
// hit.
func (r *Runner) PlaceWithCacheInfo(ctx context.Context, c *classroom.Classroom, opts Options) (*placement.Result, string, bool, error) {
	opts.SetPlacementDefaults()
	if err := opts.ValidateThresholds(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	inputHash, err := cache.HashJSON(c)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash classroom: %w", err)
	}
	key := r.Keyer.PlacementKey(inputHash, opts.PlacementKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res placement.Result
			if err := json.Unmarshal(data, &res); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypePlacement)
				return &res, inputHash, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypePlacement)
	}

	res := r.place(ctx, c, opts)

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.PlacementTTL); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypePlacement, len(data))
		}
	}
	return res, inputHash, false, nil
}

// Place is PlaceWithCacheInfo without the cache details.
func (r *Runner) Place(ctx context.Context, c *classroom.Classroom, opts Options) (*placement.Result, error) {
	res, _, _, err := r.PlaceWithCacheInfo(ctx, c, opts)
	return res, err
}

func (r *Runner) place(ctx context.Context, c *classroom.Classroom, opts Options) *placement.Result {
	hooks := observability.Placement()
	hooks.OnPlacementStart(ctx, len(c.Students), len(c.Rules))

	th := opts.Thresholds
	engine := placement.New(placement.Options{
		ClearExisting: opts.ClearExisting,
		Existing:      ExistingPlacements(c),
		Thresholds:    &th,
		Logger:        opts.Logger,
		Progress: func(p placement.Progress) {
			if p.CurrentStep == placement.StepPlacing && p.StudentID != "" {
				hooks.OnStudentPlaced(ctx, p.StudentID, p.StudentsPlaced, p.TotalStudents)
			}
			if opts.Progress != nil {
				opts.Progress(p)
			}
		},
	})
	res := engine.Place(ctx, placement.Input{Students: c.Students, Rules: c.Rules, Layout: c.Layout})

	var err error
	if !res.Success && len(res.Placements) == 0 && len(res.Conflicts) > 0 {
		err = fmt.Errorf("%s", res.Conflicts[0].Description)
	}
	hooks.OnPlacementComplete(ctx, len(res.Placements), len(res.UnplacedStudents), res.ExecutionTime, err)
	return res
}

// RenderWithCacheInfo renders every requested format of res and reports
// whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *classroom.Classroom, res *placement.Result, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Execution time differs between otherwise identical runs.
	keyed := *res
	keyed.ExecutionTime = 0
	placementHash, err := cache.HashJSON(struct {
		Layout   classroom.Layout    `json:"layout"`
		Students []classroom.Student `json:"students"`
		Result   placement.Result    `json:"result"`
	}{c.Layout, c.Students, keyed})
	if err != nil {
		return nil, false, fmt.Errorf("hash placement: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(placementHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, c, res, missing, opts.Labels)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(placementHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// ExistingPlacements converts a classroom's pinned seats into engine
// placements.
func ExistingPlacements(c *classroom.Classroom) []placement.StudentPlacement {
	if len(c.Existing) == 0 {
		return nil
	}
	out := make([]placement.StudentPlacement, len(c.Existing))
	for i, a := range c.Existing {
		out[i] = placement.StudentPlacement{StudentID: a.StudentID, SeatPosition: a.Position, AppliedRules: []string{}}
	}
	return out
}

func stats(c *classroom.Classroom, res *placement.Result) Stats {
	s := Stats{
		Students:  len(c.Students),
		Seats:     len(c.Layout.Seats),
		Rules:     len(res.RuleSatisfaction),
		Placed:    len(res.Placements),
		Unplaced:  len(res.UnplacedStudents),
		Satisfied: res.SatisfiedCount(),
	}
	if m, err := classroom.NewSeatMap(c.Layout); err == nil {
		s.Seats = m.SeatCount()
	}
	return s
}
