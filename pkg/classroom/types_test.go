package classroom

import (
	"testing"

	"github.com/matzehuels/seatplan/pkg/errors"
)

func TestParseSeatKey(t *testing.T) {
	tests := []struct {
		key     string
		want    SeatPosition
		wantErr bool
	}{
		{"0-0", SeatPosition{0, 0}, false},
		{"1-2", SeatPosition{1, 2}, false},
		{"10-11", SeatPosition{10, 11}, false},
		{"1_2", SeatPosition{}, true},
		{"", SeatPosition{}, true},
		{"99999999999999999999-1", SeatPosition{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSeatKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeatKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidSeatKey) {
				t.Errorf("ParseSeatKey(%q) code = %v", tt.key, errors.GetCode(err))
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeatKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
		if got.Key() != tt.key {
			t.Errorf("Key() = %q, want %q", got.Key(), tt.key)
		}
	}
}

func TestRuleTypeText(t *testing.T) {
	for _, rt := range RuleTypes() {
		b, err := rt.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", rt, err)
		}
		var back RuleType
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if back != rt {
			t.Errorf("round trip %v -> %s -> %v", rt, b, back)
		}
	}

	var rt RuleType
	if err := rt.UnmarshalText([]byte("near_teacher")); err != nil || rt != RuleNearTeacher {
		t.Errorf("UnmarshalText(near_teacher) = %v, %v", rt, err)
	}
	if err := rt.UnmarshalText([]byte("SIDEWAYS")); !errors.Is(err, errors.ErrCodeInvalidRule) {
		t.Errorf("UnmarshalText(SIDEWAYS) error = %v, want INVALID_RULE", err)
	}
	if _, err := RuleType(0).MarshalText(); err == nil {
		t.Error("MarshalText(0) should fail")
	}
}

func TestRuleTypeIsLocation(t *testing.T) {
	want := map[RuleType]bool{
		RuleSeparate:    false,
		RuleTogether:    false,
		RuleFrontRow:    true,
		RuleBackRow:     true,
		RuleNearTeacher: true,
		RuleNearDoor:    true,
	}
	for rt, w := range want {
		if rt.IsLocation() != w {
			t.Errorf("%v.IsLocation() = %v, want %v", rt, !w, w)
		}
	}
}

func TestStudentDisplayName(t *testing.T) {
	if got := (Student{ID: "s1"}).DisplayName(); got != "s1" {
		t.Errorf("DisplayName() = %q, want s1", got)
	}
	if got := (Student{ID: "s1", Name: "Ada"}).DisplayName(); got != "Ada" {
		t.Errorf("DisplayName() = %q, want Ada", got)
	}
}
