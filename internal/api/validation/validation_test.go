package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatalf("RegisterOn failed: %v", err)
	}
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		tag   string
		value string
		ok    bool
	}{
		{"isodate", "2026-03-12", true},
		{"isodate", "2026-02-30", false},
		{"isodate", "12/03/2026", false},
		{"isodate", "", false},
		{"hhmm", "09:30", true},
		{"hhmm", "23:59", true},
		{"hhmm", "9:30", false},
		{"hhmm", "24:00", false},
		{"hhmm", "12:60", false},
		{"role", "ADMIN", true},
		{"role", "GROUP_ADMIN", true},
		{"role", "admin", false},
		{"role", "OWNER", false},
	}
	for _, tt := range tests {
		err := v.Var(tt.value, tt.tag)
		if (err == nil) != tt.ok {
			t.Errorf("%s(%q): got err=%v, want ok=%v", tt.tag, tt.value, err, tt.ok)
		}
	}
}

func TestOmitEmptyCombination(t *testing.T) {
	v := newValidator(t)

	type query struct {
		From string `validate:"omitempty,isodate"`
	}
	if err := v.Struct(query{}); err != nil {
		t.Errorf("empty optional date should pass: %v", err)
	}
	if err := v.Struct(query{From: "tomorrow"}); err == nil {
		t.Error("malformed date should fail")
	}
}
