package flr

import (
	"strconv"
	"strings"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// Decode slices line according to l, shifted right by offset columns, and
// returns the fields in declaration order. The record's Type is the layout's
// record type; Line is left at zero for the caller to fill in.
func Decode(line string, l *flrload.Layout, offset int) (*flrload.Record, error) {
	rec := flrload.NewRecord(l.RecordType(), 0, l.Len())
	if err := decodeInto(rec, line, l, offset); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeInto(rec *flrload.Record, line string, l *flrload.Layout, offset int) error {
	for i := 0; i < l.Len(); i++ {
		f := l.Field(i)
		v, err := decodeField(line, f, offset)
		if err != nil {
			return err
		}
		rec.Set(f.Name, v)
	}
	return nil
}

func decodeField(line string, f flrload.Field, offset int) (flrload.Value, error) {
	r := f.Range.Shift(offset)
	if r.Start < 1 || r.End > len(line) {
		raw := ""
		if r.Start >= 1 && r.Start <= len(line) {
			raw = line[r.Start-1:]
		}
		return flrload.Value{}, &flrload.FieldError{
			Field: f.Name, Raw: raw, Start: r.Start, End: r.End, Err: flrload.ErrFieldOutOfBounds,
		}
	}

	raw := line[r.Start-1 : r.End]
	text := strings.TrimSpace(raw)

	if f.Kind == flrload.KindText {
		return flrload.Text(text), nil
	}
	if text == "" {
		return flrload.Empty(), nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return flrload.Value{}, &flrload.FieldError{
			Field: f.Name, Raw: raw, Start: r.Start, End: r.End, Err: flrload.ErrFieldDecode,
		}
	}
	return flrload.Int(n), nil
}
