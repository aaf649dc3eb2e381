package classroom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/seatplan/pkg/errors"
)

// SeatPosition is a 0-based grid coordinate. It is comparable and used
// directly as a map key.
type SeatPosition struct {
	Row int `json:"row" toml:"row"`
	Col int `json:"col" toml:"col"`
}

// Key returns the "row-col" form used by layout stores.
func (p SeatPosition) Key() string {
	return strconv.Itoa(p.Row) + "-" + strconv.Itoa(p.Col)
}

// String implements fmt.Stringer.
func (p SeatPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// ParseSeatKey parses a "row-col" key into a SeatPosition.
func ParseSeatKey(key string) (SeatPosition, error) {
	if err := errors.ValidateSeatKey(key); err != nil {
		return SeatPosition{}, err
	}
	r, c, _ := strings.Cut(key, "-")
	row, err := strconv.Atoi(r)
	if err != nil {
		return SeatPosition{}, errors.Wrap(errors.ErrCodeInvalidSeatKey, err, "seat key %q", key)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return SeatPosition{}, errors.Wrap(errors.ErrCodeInvalidSeatKey, err, "seat key %q", key)
	}
	return SeatPosition{Row: row, Col: col}, nil
}

// FurnitureType identifies a non-seat grid feature.
type FurnitureType string

const (
	FurnitureDesk FurnitureType = "desk"
	FurnitureDoor FurnitureType = "door"
)

// Furniture is a piece of furniture covering one or more grid cells.
type Furniture struct {
	Type      FurnitureType  `json:"type" toml:"type"`
	Positions []SeatPosition `json:"positions" toml:"positions"`
}

// Layout is the room as supplied by the layout store.
type Layout struct {
	ID        string      `json:"id,omitempty" toml:"id"`
	Name      string      `json:"name,omitempty" toml:"name"`
	GridRows  int         `json:"grid_rows" toml:"grid_rows"`
	GridCols  int         `json:"grid_cols" toml:"grid_cols"`
	Furniture []Furniture `json:"furniture,omitempty" toml:"furniture"`
	Seats     []string    `json:"seats" toml:"seats"` // "row-col" keys
}

// Student is a roster entry. Only ID takes part in placement; Name is used
// in conflict descriptions.
type Student struct {
	ID   string `json:"id" toml:"id"`
	Name string `json:"name,omitempty" toml:"name"`
}

// DisplayName returns the name if set, otherwise the ID.
func (s Student) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// RuleType is the closed set of placement rule kinds.
type RuleType int

const (
	RuleSeparate RuleType = iota + 1
	RuleTogether
	RuleFrontRow
	RuleBackRow
	RuleNearTeacher
	RuleNearDoor
)

var ruleTypeNames = map[RuleType]string{
	RuleSeparate:    "SEPARATE",
	RuleTogether:    "TOGETHER",
	RuleFrontRow:    "FRONT_ROW",
	RuleBackRow:     "BACK_ROW",
	RuleNearTeacher: "NEAR_TEACHER",
	RuleNearDoor:    "NEAR_DOOR",
}

// RuleTypes lists every rule type in declaration order.
func RuleTypes() []RuleType {
	return []RuleType{RuleSeparate, RuleTogether, RuleFrontRow, RuleBackRow, RuleNearTeacher, RuleNearDoor}
}

// ParseRuleType converts a rule type name (case-insensitive) to a RuleType.
func ParseRuleType(s string) (RuleType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range RuleTypes() {
		if ruleTypeNames[t] == want {
			return t, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidRule, "unknown rule type %q", s)
}

// String implements fmt.Stringer.
func (t RuleType) String() string {
	if s, ok := ruleTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("RuleType(%d)", int(t))
}

// IsLocation reports whether the rule prefers a zone of the room rather than
// a relation between students.
func (t RuleType) IsLocation() bool {
	switch t {
	case RuleFrontRow, RuleBackRow, RuleNearTeacher, RuleNearDoor:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (t RuleType) MarshalText() ([]byte, error) {
	s, ok := ruleTypeNames[t]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidRule, "unknown rule type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RuleType) UnmarshalText(b []byte) error {
	v, err := ParseRuleType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Rule is a prioritized constraint over a set of students.
// Lower Priority values are more important.
type Rule struct {
	ID         string   `json:"id" toml:"id"`
	Type       RuleType `json:"type" toml:"type"`
	Priority   int      `json:"priority" toml:"priority"`
	StudentIDs []string `json:"student_ids" toml:"student_ids"`
	IsActive   bool     `json:"is_active" toml:"is_active"`
}

// Assignment pins a student to a seat before a run starts.
type Assignment struct {
	StudentID string       `json:"student_id" toml:"student_id"`
	Position  SeatPosition `json:"position" toml:"position"`
}
