package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/resale/internal/store"
)

var testSpecs = []FieldSpec{
	{Name: "name", Type: FieldText, Required: true},
	{Name: "count", Type: FieldInteger, Required: true},
	{Name: "price", Type: FieldNumeric},
	{Name: "sold_on", Type: FieldDate},
}

func TestNormalizeRecord(t *testing.T) {
	tests := []struct {
		name      string
		rec       store.Record
		wantField string
		wantMsg   string
	}{
		{
			name: "valid record",
			rec:  store.Record{"name": "Widget", "count": "2", "price": "4.50", "sold_on": "2026-03-14"},
		},
		{
			name: "optional fields omitted",
			rec:  store.Record{"name": "Widget", "count": "0"},
		},
		{
			name:      "unknown column",
			rec:       store.Record{"name": "Widget", "count": "1", "colour": "red"},
			wantField: "colour",
			wantMsg:   "unknown column",
		},
		{
			name:      "missing required",
			rec:       store.Record{"count": "1"},
			wantField: "name",
			wantMsg:   "required field is empty",
		},
		{
			name:      "blank required",
			rec:       store.Record{"name": "   ", "count": "1"},
			wantField: "name",
			wantMsg:   "required field is empty",
		},
		{
			name:      "negative count",
			rec:       store.Record{"name": "Widget", "count": "-1"},
			wantField: "count",
			wantMsg:   "invalid whole number",
		},
		{
			name:      "fractional count",
			rec:       store.Record{"name": "Widget", "count": "1.5"},
			wantField: "count",
			wantMsg:   "invalid whole number",
		},
		{
			name:      "bad price",
			rec:       store.Record{"name": "Widget", "count": "1", "price": "cheap"},
			wantField: "price",
			wantMsg:   "invalid number",
		},
		{
			name:      "bad date",
			rec:       store.Record{"name": "Widget", "count": "1", "sold_on": "03/14/2026"},
			wantField: "sold_on",
			wantMsg:   "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeRecord(testSpecs, tt.rec)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
			if !strings.Contains(ve.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", ve.Message, tt.wantMsg)
			}
		})
	}
}

func TestNormalizeRecord_TrimsValues(t *testing.T) {
	rec, err := normalizeRecord(testSpecs, store.Record{"name": "  Widget ", "count": " 3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["name"] != "Widget" || rec["count"] != "3" {
		t.Errorf("values not trimmed: %v", rec)
	}
}

func TestNormalizeRecord_CanonicalIDs(t *testing.T) {
	specs := []FieldSpec{{Name: "id", Type: FieldID}}
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"01", "1"},
		{"+7", "7"},
		{" 0042 ", "42"},
	}
	for _, tt := range tests {
		rec, err := normalizeRecord(specs, store.Record{"id": tt.in})
		if err != nil {
			t.Errorf("normalizeRecord(%q) error: %v", tt.in, err)
			continue
		}
		if rec["id"] != tt.want {
			t.Errorf("normalizeRecord(%q) id = %q, want %q", tt.in, rec["id"], tt.want)
		}
	}

	for _, bad := range []string{"0", "-1", "1.0", "x1"} {
		_, err := normalizeRecord(specs, store.Record{"id": bad})
		var ve *ValidationError
		if !errors.As(err, &ve) || !strings.Contains(ve.Message, "invalid id") {
			t.Errorf("normalizeRecord(%q) error = %v, want invalid id", bad, err)
		}
	}
}
