package classroom

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seatplan/pkg/errors"
)

// Classroom bundles everything one seating run needs.
type Classroom struct {
	Layout   Layout       `json:"layout" toml:"layout"`
	Students []Student    `json:"students" toml:"students"`
	Rules    []Rule       `json:"rules" toml:"rules"`
	Existing []Assignment `json:"existing,omitempty" toml:"existing"`
}

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// FormatFromPath infers the file format from the extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "cannot infer format of %q (want .toml or .json)", path)
}

// ReadFile loads and validates a classroom file.
func ReadFile(path string) (*Classroom, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, err
	}
	defer f.Close()

	c, err := Decode(f, format)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return c, nil
}

// Decode reads a classroom in the given format and validates it.
func Decode(r io.Reader, format string) (*Classroom, error) {
	if err := errors.ValidateFormat(format, FormatTOML, FormatJSON); err != nil {
		return nil, err
	}

	var raw file
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	}

	c := raw.classroom()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// file mirrors Classroom with is_active optional; rules default to active.
type file struct {
	Layout   Layout       `json:"layout" toml:"layout"`
	Students []Student    `json:"students" toml:"students"`
	Rules    []fileRule   `json:"rules" toml:"rules"`
	Existing []Assignment `json:"existing" toml:"existing"`
}

type fileRule struct {
	ID         string   `json:"id" toml:"id"`
	Type       RuleType `json:"type" toml:"type"`
	Priority   int      `json:"priority" toml:"priority"`
	StudentIDs []string `json:"student_ids" toml:"student_ids"`
	IsActive   *bool    `json:"is_active" toml:"is_active"`
}

func (f *file) classroom() *Classroom {
	c := &Classroom{
		Layout:   f.Layout,
		Students: f.Students,
		Existing: f.Existing,
		Rules:    make([]Rule, len(f.Rules)),
	}
	for i, r := range f.Rules {
		c.Rules[i] = Rule{
			ID:         r.ID,
			Type:       r.Type,
			Priority:   r.Priority,
			StudentIDs: r.StudentIDs,
			IsActive:   r.IsActive == nil || *r.IsActive,
		}
	}
	return c
}

// Encode writes c in the given format.
func Encode(w io.Writer, c *Classroom, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	return errors.ValidateFormat(format, FormatTOML, FormatJSON)
}

// Validate checks the structure of the file: identifiers, grid and seat
// keys. Roster-level checks (empty roster, too few seats, rules naming
// unknown students) belong to the placement engine, which reports them as
// conflicts.
func (c *Classroom) Validate() error {
	if err := errors.ValidateGrid(c.Layout.GridRows, c.Layout.GridCols); err != nil {
		return err
	}
	if _, err := NewSeatMap(c.Layout); err != nil {
		return err
	}
	for _, s := range c.Students {
		if err := errors.ValidateID("student", s.ID); err != nil {
			return err
		}
	}
	for _, r := range c.Rules {
		if err := errors.ValidateID("rule", r.ID); err != nil {
			return err
		}
		if _, ok := ruleTypeNames[r.Type]; !ok {
			return errors.New(errors.ErrCodeInvalidRule, "rule %s has no type", r.ID)
		}
	}
	for _, a := range c.Existing {
		if err := errors.ValidateID("student", a.StudentID); err != nil {
			return err
		}
	}
	return nil
}
