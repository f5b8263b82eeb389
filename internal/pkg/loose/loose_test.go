package loose

import (
	"encoding/json"
	"testing"
)

type record struct {
	ID    *string `mapstructure:"id"`
	Alt   *string `mapstructure:"alt"`
	Label *string `mapstructure:"label"`
}

func TestDecode_WeakTyping(t *testing.T) {
	input := map[string]any{
		"id":    json.Number("2265603"),
		"alt":   float64(12),
		"label": map[string]any{"nested": true},
	}

	var rec record
	err := Decode(input, &rec)
	if err == nil {
		t.Error("Decode() error = nil, want error for nested label")
	}
	if got := String(rec.ID); got != "2265603" {
		t.Errorf("ID = %q, want 2265603", got)
	}
	if got := String(rec.Alt); got != "12" {
		t.Errorf("Alt = %q, want 12", got)
	}
	if rec.Label != nil {
		t.Errorf("Label = %q, want nil", *rec.Label)
	}
}

func TestDecode_NullStaysAbsent(t *testing.T) {
	var rec record
	if err := Decode(map[string]any{"id": nil, "alt": "x"}, &rec); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.ID != nil {
		t.Errorf("ID = %q, want nil", *rec.ID)
	}
}

func TestDecode_BoolsReadAsWords(t *testing.T) {
	var rec record
	if err := Decode(map[string]any{"id": true, "alt": false}, &rec); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := String(rec.ID); got != "true" {
		t.Errorf("ID = %q, want true", got)
	}
	if got := String(rec.Alt); got != "false" {
		t.Errorf("Alt = %q, want false", got)
	}
}

func TestFirst(t *testing.T) {
	byID := func(r record) *string { return r.ID }
	byAlt := func(r record) *string { return r.Alt }

	empty := ""
	alt := "b"
	tests := []struct {
		name string
		rec  record
		want *string
	}{
		{name: "none present", rec: record{}, want: nil},
		{name: "fallback", rec: record{Alt: &alt}, want: &alt},
		{name: "empty string wins", rec: record{ID: &empty, Alt: &alt}, want: &empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := First(tt.rec, byID, byAlt)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("First() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("First() = %q, want %q", *got, *tt.want)
			}
		})
	}
}
