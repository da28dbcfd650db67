package flr

import (
	"fmt"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// Classifier maps the leading marker of a line to its record type.
type Classifier struct {
	width   int
	markers map[string]flrload.RecordType
}

// NewClassifier builds a classifier from a marker map. All markers must be
// non-empty and equally wide; the width is how many leading bytes are read.
func NewClassifier(markers map[string]flrload.RecordType) (*Classifier, error) {
	if len(markers) == 0 {
		return nil, fmt.Errorf("marker map is empty: %w", flrload.ErrInvalidConfig)
	}

	c := &Classifier{markers: make(map[string]flrload.RecordType, len(markers))}
	for marker, rt := range markers {
		switch {
		case marker == "":
			return nil, fmt.Errorf("empty record marker: %w", flrload.ErrInvalidConfig)
		case rt == "":
			return nil, fmt.Errorf("marker %q has no record type: %w", marker, flrload.ErrInvalidConfig)
		case c.width != 0 && len(marker) != c.width:
			return nil, fmt.Errorf("markers must share one width, %q is %d wide, expected %d: %w",
				marker, len(marker), c.width, flrload.ErrInvalidConfig)
		}
		c.width = len(marker)
		c.markers[marker] = rt
	}
	return c, nil
}

// Width returns the number of leading bytes that form the marker.
func (c *Classifier) Width() int { return c.width }

// Classify returns the record type of line. Unknown markers and lines shorter
// than the marker fail with flrload.ErrUnrecognizedRecordType; there is no
// default record type.
func (c *Classifier) Classify(line string) (flrload.RecordType, error) {
	if len(line) < c.width {
		return "", fmt.Errorf("%w: line shorter than marker width %d", flrload.ErrUnrecognizedRecordType, c.width)
	}
	marker := line[:c.width]
	rt, ok := c.markers[marker]
	if !ok {
		return "", fmt.Errorf("%w: marker %q", flrload.ErrUnrecognizedRecordType, marker)
	}
	return rt, nil
}
