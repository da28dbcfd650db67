package flrload

import (
	"strconv"
	"strings"
)

// ValueKind identifies what a Value holds.
type ValueKind uint8

const (
	// ValueEmpty marks a numeric field whose columns were blank.
	ValueEmpty ValueKind = iota
	ValueInt
	ValueText
)

// Value is a decoded field value: a signed integer, trimmed text, or the
// empty sentinel produced by blank numeric columns. The zero Value is empty.
type Value struct {
	kind ValueKind
	i    int64
	s    string
}

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: ValueInt, i: v} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: ValueText, s: s} }

// Empty returns the empty sentinel.
func Empty() Value { return Value{} }

// Kind returns what the value holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether v is the empty sentinel.
func (v Value) IsEmpty() bool { return v.kind == ValueEmpty }

// Int returns the integer and true if v holds one.
func (v Value) Int() (int64, bool) { return v.i, v.kind == ValueInt }

// Text returns the text and true if v holds text.
func (v Value) Text() (string, bool) { return v.s, v.kind == ValueText }

// Any returns the value in the form database drivers expect:
// nil for empty, int64 or string otherwise.
func (v Value) Any() any {
	switch v.kind {
	case ValueInt:
		return v.i
	case ValueText:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueText:
		return v.s
	default:
		return ""
	}
}

// Record is one decoded line: its record type, input line number and the
// ordered field values. Records are filled by the reader and must be treated
// as read-only once they have been handed out.
type Record struct {
	Type RecordType
	Line int

	names  []string
	values []Value
}

// NewRecord returns an empty record with room for capacity fields.
func NewRecord(rt RecordType, line int, capacity int) *Record {
	return &Record{
		Type:   rt,
		Line:   line,
		names:  make([]string, 0, capacity),
		values: make([]Value, 0, capacity),
	}
}

// Set stores v under name. An existing field keeps its position; a new one
// is appended after all others.
func (r *Record) Set(name string, v Value) {
	if i := r.index(name); i >= 0 {
		r.values[i] = v
		return
	}
	r.names = append(r.names, name)
	r.values = append(r.values, v)
}

// Get returns the value stored under name. Names match case-insensitively.
func (r *Record) Get(name string) (Value, bool) {
	if i := r.index(name); i >= 0 {
		return r.values[i], true
	}
	return Value{}, false
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.names) }

// At returns the name and value of the i-th field.
func (r *Record) At(i int) (string, Value) { return r.names[i], r.values[i] }

// Names returns a copy of the field names in order.
func (r *Record) Names() []string { return append([]string(nil), r.names...) }

// Values returns a copy of the values in field order.
func (r *Record) Values() []Value { return append([]Value(nil), r.values...) }

func (r *Record) index(name string) int {
	for i, n := range r.names {
		if n == name || strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
