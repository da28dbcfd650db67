package flrload

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RecordType is the logical tag of a line, e.g. household or person.
// It selects the layout used to decode the line and the importer that receives it.
type RecordType string

func (t RecordType) String() string { return string(t) }

// Range is a 1-based, inclusive column range before any offset is applied.
type Range struct {
	Start int
	End   int
}

// Width returns the number of columns the range covers.
func (r Range) Width() int { return r.End - r.Start + 1 }

// Shift returns the range moved right by offset columns.
func (r Range) Shift(offset int) Range {
	return Range{Start: r.Start + offset, End: r.End + offset}
}

// Overlaps reports whether r and o share at least one column.
func (r Range) Overlaps(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

func (r Range) String() string { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// FieldKind selects how a field's text is coerced.
type FieldKind int

const (
	// KindInteger parses the trimmed slice as a signed integer. Blank slices
	// decode to the empty value.
	KindInteger FieldKind = iota
	// KindText keeps the trimmed slice as text.
	KindText
)

func (k FieldKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ParseFieldKind converts the configuration spelling of a kind. The empty
// string selects KindInteger.
func ParseFieldKind(s string) (FieldKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "int", "integer", "numeric":
		return KindInteger, nil
	case "text", "string", "untyped":
		return KindText, nil
	default:
		return 0, fmt.Errorf("unknown field type %q: %w", s, ErrInvalidConfig)
	}
}

// Field is one named column range of a layout.
type Field struct {
	Name  string
	Range Range
	Kind  FieldKind
}

// Layout is the immutable, ordered column specification of one record type.
type Layout struct {
	recordType RecordType
	fields     []Field
	maxLength  int
}

// NewLayout validates fields and returns a layout that decodes them in the
// given order. maxLength is the longest line expected for the record type;
// zero disables the length check.
//
// Every violation is reported, joined, and wraps ErrInvalidConfig.
func NewLayout(recordType RecordType, maxLength int, fields ...Field) (*Layout, error) {
	var errs []error

	if recordType == "" {
		errs = append(errs, fmt.Errorf("record type is required: %w", ErrInvalidConfig))
	}
	if len(fields) == 0 {
		errs = append(errs, fmt.Errorf("layout %q has no fields: %w", recordType, ErrInvalidConfig))
	}
	if maxLength < 0 {
		errs = append(errs, fmt.Errorf("layout %q: max length cannot be negative: %w", recordType, ErrInvalidConfig))
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := strings.ToLower(f.Name)
		switch {
		case strings.TrimSpace(f.Name) == "":
			errs = append(errs, fmt.Errorf("layout %q: field name is required: %w", recordType, ErrInvalidConfig))
		case seen[key]:
			errs = append(errs, fmt.Errorf("layout %q: duplicate field %s: %w", recordType, f.Name, ErrInvalidConfig))
		}
		seen[key] = true

		if f.Range.Start < 1 || f.Range.End < f.Range.Start {
			errs = append(errs, fmt.Errorf("layout %q: field %s has invalid range %s: %w",
				recordType, f.Name, f.Range, ErrInvalidConfig))
			continue
		}
		if maxLength > 0 && f.Range.End > maxLength {
			errs = append(errs, fmt.Errorf("layout %q: field %s range %s exceeds max length %d: %w",
				recordType, f.Name, f.Range, maxLength, ErrInvalidConfig))
		}
	}

	errs = append(errs, overlaps(recordType, fields)...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Layout{
		recordType: recordType,
		fields:     append([]Field(nil), fields...),
		maxLength:  maxLength,
	}, nil
}

// overlaps reports every pair of neighbouring ranges that share columns.
func overlaps(recordType RecordType, fields []Field) []error {
	sorted := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Range.Start >= 1 && f.Range.End >= f.Range.Start {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Range.Start < sorted[j].Range.Start })

	var errs []error
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Range.Overlaps(cur.Range) {
			errs = append(errs, fmt.Errorf("layout %q: fields %s (%s) and %s (%s) overlap: %w",
				recordType, prev.Name, prev.Range, cur.Name, cur.Range, ErrInvalidConfig))
		}
	}
	return errs
}

// RecordType returns the tag this layout decodes.
func (l *Layout) RecordType() RecordType { return l.recordType }

// Len returns the number of fields.
func (l *Layout) Len() int { return len(l.fields) }

// Field returns the i-th field in declaration order.
func (l *Layout) Field(i int) Field { return l.fields[i] }

// Fields returns a copy of the fields in declaration order.
func (l *Layout) Fields() []Field { return append([]Field(nil), l.fields...) }

// FieldNames returns the field names in declaration order.
func (l *Layout) FieldNames() []string {
	names := make([]string, len(l.fields))
	for i, f := range l.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by name. Names match case-insensitively because they
// end up as PostgreSQL identifiers, which fold case.
func (l *Layout) Lookup(name string) (Field, bool) {
	for _, f := range l.fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// MaxLength returns the declared maximum line length, or zero if unchecked.
func (l *Layout) MaxLength() int { return l.maxLength }

// Width returns the last column any field reaches, before offset.
func (l *Layout) Width() int {
	w := 0
	for _, f := range l.fields {
		if f.Range.End > w {
			w = f.Range.End
		}
	}
	return w
}

// Format bundles everything needed to read one kind of FLR file: the marker
// map, the layout per record type, the global offset and the synthetic
// fields appended per record type.
type Format struct {
	Markers   map[string]RecordType
	Layouts   []*Layout
	Offset    int
	Synthetic map[RecordType][]string
}

// Layout returns the layout registered for rt, or nil.
func (f Format) Layout(rt RecordType) *Layout {
	for _, l := range f.Layouts {
		if l.RecordType() == rt {
			return l
		}
	}
	return nil
}

// RecordTypes returns the record types in layout order.
func (f Format) RecordTypes() []RecordType {
	types := make([]RecordType, 0, len(f.Layouts))
	for _, l := range f.Layouts {
		types = append(types, l.RecordType())
	}
	return types
}
