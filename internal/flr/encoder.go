package flr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// Encode renders rec as a fixed-width line for layout l shifted by offset.
// Integers are right-justified, text is left-justified and empty values are
// blank. Columns not covered by any field, including the first offset
// columns, are spaces; callers that need a marker write it over the leading
// bytes. Fields missing from rec are blank.
func Encode(rec *flrload.Record, l *flrload.Layout, offset int) (string, error) {
	width := l.Width() + offset
	if width < 1 {
		return "", fmt.Errorf("layout %q is empty at offset %d: %w", l.RecordType(), offset, flrload.ErrInvalidConfig)
	}

	buf := []byte(strings.Repeat(" ", width))
	for i := 0; i < l.Len(); i++ {
		f := l.Field(i)
		r := f.Range.Shift(offset)
		if r.Start < 1 {
			return "", &flrload.FieldError{Field: f.Name, Start: r.Start, End: r.End, Err: flrload.ErrFieldOutOfBounds}
		}

		v, _ := rec.Get(f.Name)
		text, err := render(v, f)
		if err != nil {
			return "", err
		}
		if len(text) > r.Width() {
			return "", &flrload.FieldError{
				Field: f.Name, Raw: text, Start: r.Start, End: r.End,
				Err: fmt.Errorf("%w: value wider than %d columns", flrload.ErrFieldOutOfBounds, r.Width()),
			}
		}

		pad := r.Width() - len(text)
		if f.Kind == flrload.KindText {
			copy(buf[r.Start-1:], text)
		} else {
			copy(buf[r.Start-1+pad:], text)
		}
	}
	return string(buf), nil
}

func render(v flrload.Value, f flrload.Field) (string, error) {
	switch v.Kind() {
	case flrload.ValueEmpty:
		return "", nil
	case flrload.ValueInt:
		n, _ := v.Int()
		return strconv.FormatInt(n, 10), nil
	default:
		s, _ := v.Text()
		if f.Kind == flrload.KindInteger {
			return "", &flrload.FieldError{Field: f.Name, Raw: s, Err: flrload.ErrFieldDecode}
		}
		return s, nil
	}
}
