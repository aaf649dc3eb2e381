package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seatplan/pkg/cache"
	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/errors"
	"github.com/matzehuels/seatplan/pkg/observability"
	"github.com/matzehuels/seatplan/pkg/placement"
)

func testClassroom() *classroom.Classroom {
	return &classroom.Classroom{
		Layout: classroom.Layout{
			Name:     "Room 1",
			GridRows: 3,
			GridCols: 3,
			Furniture: []classroom.Furniture{
				{Type: classroom.FurnitureDesk, Positions: []classroom.SeatPosition{{Row: 0, Col: 1}}},
			},
			Seats: []string{"1-0", "1-1", "1-2", "2-0", "2-1", "2-2"},
		},
		Students: []classroom.Student{{ID: "s1", Name: "Ada"}, {ID: "s2", Name: "Bo"}, {ID: "s3", Name: "Cy"}},
		Rules: []classroom.Rule{
			{ID: "apart", Type: classroom.RuleSeparate, Priority: 1, StudentIDs: []string{"s1", "s2"}, IsActive: true},
		},
	}
}

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"text"}, false},
		{[]string{"svg", "json", "dot"}, false},
		{[]string{"png"}, true},
		{[]string{"text", "SVG"}, true},
		{[]string{""}, true},
	}
	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormats(%v) code = %s", tt.formats, errors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Thresholds != placement.DefaultThresholds() {
		t.Errorf("Thresholds = %+v", o.Thresholds)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatText || o.Labels != "name" || o.Logger == nil {
		t.Errorf("defaults = %+v", o)
	}

	custom := Options{Thresholds: placement.Thresholds{Accept: -20, Candidate: 60, Aggregate: 80}, Formats: []string{"svg"}}
	if err := custom.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if custom.Thresholds.Accept != -20 || custom.Formats[0] != "svg" {
		t.Errorf("custom options overwritten: %+v", custom)
	}

	// Idempotent.
	if err := custom.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"candidate above scale", Options{Thresholds: placement.Thresholds{Candidate: 120}}},
		{"aggregate negative", Options{Thresholds: placement.Thresholds{Candidate: 50, Aggregate: -1}}},
		{"bad format", Options{Formats: []string{"pdf"}}},
		{"bad labels", Options{Labels: "initials"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunnerExecute(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, log.New(&strings.Builder{}))

	res, err := r.Execute(context.Background(), testClassroom(), Options{Formats: []string{FormatText, FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" || len(res.InputHash) != 64 {
		t.Errorf("RunID=%q InputHash=%q", res.RunID, res.InputHash)
	}
	if !res.Placement.Success || res.Stats.Placed != 3 || res.Stats.Seats != 6 || res.Stats.Satisfied != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo.PlacementHit || res.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", res.CacheInfo)
	}
	for _, f := range []string{FormatText, FormatJSON, FormatDOT} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing artifact %s", f)
		}
	}
	if !strings.Contains(string(res.Artifacts[FormatText]), "Ada") {
		t.Errorf("text artifact:\n%s", res.Artifacts[FormatText])
	}
	var decoded placement.Result
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &decoded); err != nil || len(decoded.Placements) != 3 {
		t.Errorf("json artifact = %+v, %v", decoded, err)
	}

	again, err := r.Execute(context.Background(), testClassroom(), Options{Formats: []string{FormatText, FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.PlacementHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if again.RunID == res.RunID {
		t.Error("RunID should differ between runs")
	}
	if string(again.Artifacts[FormatText]) != string(res.Artifacts[FormatText]) {
		t.Error("cached artifact differs")
	}
}

func TestRunnerCacheKeysDependOnOptions(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	ctx := context.Background()

	if _, err := r.Place(ctx, testClassroom(), Options{}); err != nil {
		t.Fatal(err)
	}
	_, _, hit, err := r.PlaceWithCacheInfo(ctx, testClassroom(), Options{Thresholds: placement.Thresholds{Accept: 0, Candidate: 50, Aggregate: 90}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("different thresholds should not share a cache entry")
	}

	c := testClassroom()
	c.Students[0].Name = "Ada L."
	if _, _, hit, _ := r.PlaceWithCacheInfo(ctx, c, Options{}); hit {
		t.Error("changed classroom should not hit the cache")
	}
	if _, _, hit, _ := r.PlaceWithCacheInfo(ctx, testClassroom(), Options{Refresh: true}); hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerExistingPlacements(t *testing.T) {
	c := testClassroom()
	c.Existing = []classroom.Assignment{{StudentID: "s3", Position: classroom.SeatPosition{Row: 2, Col: 2}}}
	r := NewRunner(nil, nil, nil)

	res, err := r.Place(context.Background(), c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := res.Placement("s3"); !ok || p.SeatPosition != (classroom.SeatPosition{Row: 2, Col: 2}) {
		t.Errorf("s3 = %+v", p)
	}

	res, err = r.Place(context.Background(), c, Options{ClearExisting: true})
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := res.Placement("s3"); p.SeatPosition == (classroom.SeatPosition{Row: 2, Col: 2}) {
		t.Error("ClearExisting should drop the pinned seat")
	}
}

type recordingHooks struct {
	observability.NoopPlacementHooks
	mu       sync.Mutex
	started  int
	placed   []string
	complete int
}

func (h *recordingHooks) OnPlacementStart(context.Context, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *recordingHooks) OnStudentPlaced(_ context.Context, id string, _, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.placed = append(h.placed, id)
}

func (h *recordingHooks) OnPlacementComplete(context.Context, int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.complete++
}

func TestRunnerHooksAndProgress(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPlacementHooks(hooks)
	defer observability.Reset()

	var steps []string
	r := NewRunner(nil, nil, nil)
	_, err := r.Place(context.Background(), testClassroom(), Options{
		Progress: func(p placement.Progress) { steps = append(steps, p.CurrentStep) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if hooks.started != 1 || hooks.complete != 1 || len(hooks.placed) != 3 {
		t.Errorf("hooks = %+v", hooks)
	}
	if len(steps) == 0 || steps[len(steps)-1] != placement.StepComplete {
		t.Errorf("steps = %v", steps)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), testClassroom(), Options{Formats: []string{"gif"}})
	if err == nil || !strings.Contains(err.Error(), "invalid options") {
		t.Errorf("err = %v", err)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	res := placement.Execute(testClassroom().Students, nil, testClassroom().Layout, placement.Options{})
	if _, err := Render(context.Background(), testClassroom(), res, []string{"bmp"}, "name"); err == nil {
		t.Error("expected error")
	}
}
