package flrload_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/flrload/pkg/flrload"
)

func field(name string, start, end int) flrload.Field {
	return flrload.Field{Name: name, Range: flrload.Range{Start: start, End: end}}
}

func TestNewLayout_Valid(t *testing.T) {
	l, err := flrload.NewLayout(flrload.RecordTypeHousehold, 20,
		field("ACSYR", 2, 5),
		field("SERIAL", 8, 15),
		flrload.Field{Name: "NOTE", Range: flrload.Range{Start: 16, End: 20}, Kind: flrload.KindText},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if l.Len() != 3 {
		t.Errorf("expected 3 fields, got %d", l.Len())
	}
	if got := strings.Join(l.FieldNames(), ","); got != "ACSYR,SERIAL,NOTE" {
		t.Errorf("field order not preserved: %s", got)
	}
	if l.Width() != 20 {
		t.Errorf("expected width 20, got %d", l.Width())
	}
	if f, ok := l.Lookup("serial"); !ok || f.Range.Width() != 8 {
		t.Errorf("case-insensitive lookup failed: %+v %v", f, ok)
	}
}

func TestNewLayout_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		max    int
		fields []flrload.Field
		want   string
	}{
		{"no fields", 0, nil, "no fields"},
		{"overlap", 0, []flrload.Field{field("A", 1, 5), field("B", 5, 6)}, "overlap"},
		{"nested overlap", 0, []flrload.Field{field("A", 1, 10), field("B", 3, 4)}, "overlap"},
		{"duplicate", 0, []flrload.Field{field("A", 1, 2), field("a", 3, 4)}, "duplicate"},
		{"zero start", 0, []flrload.Field{field("A", 0, 2)}, "invalid range"},
		{"inverted", 0, []flrload.Field{field("A", 5, 2)}, "invalid range"},
		{"past max length", 10, []flrload.Field{field("A", 8, 12)}, "exceeds max length"},
		{"empty name", 0, []flrload.Field{field(" ", 1, 2)}, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flrload.NewLayout(flrload.RecordTypePerson, tt.max, tt.fields...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, flrload.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestNewLayout_CopiesFields(t *testing.T) {
	fields := []flrload.Field{field("A", 1, 2)}
	l, err := flrload.NewLayout(flrload.RecordTypePerson, 0, fields...)
	if err != nil {
		t.Fatal(err)
	}

	fields[0].Name = "MUTATED"
	if l.Field(0).Name != "A" {
		t.Error("layout must not share the caller's slice")
	}
}

func TestRange(t *testing.T) {
	r := flrload.Range{Start: 2, End: 5}
	if r.Width() != 4 {
		t.Errorf("Width() = %d, want 4", r.Width())
	}
	if s := r.Shift(1); s.Start != 3 || s.End != 6 {
		t.Errorf("Shift(1) = %v", s)
	}
	if !r.Overlaps(flrload.Range{Start: 5, End: 9}) || r.Overlaps(flrload.Range{Start: 6, End: 9}) {
		t.Error("Overlaps is off by one")
	}
}

func TestParseFieldKind(t *testing.T) {
	for in, want := range map[string]flrload.FieldKind{"": flrload.KindInteger, "Integer": flrload.KindInteger, "text": flrload.KindText} {
		got, err := flrload.ParseFieldKind(in)
		if err != nil || got != want {
			t.Errorf("ParseFieldKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := flrload.ParseFieldKind("float"); !errors.Is(err, flrload.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
