package layout

import (
	"fmt"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// Registry maps record types to layouts. It is immutable after NewRegistry
// and safe for concurrent reads.
type Registry struct {
	order   []flrload.RecordType
	layouts map[flrload.RecordType]*flrload.Layout
}

// NewRegistry registers each layout under its record type.
// Registering two layouts for one record type is a configuration error.
func NewRegistry(layouts ...*flrload.Layout) (*Registry, error) {
	r := &Registry{layouts: make(map[flrload.RecordType]*flrload.Layout, len(layouts))}
	for _, l := range layouts {
		if l == nil {
			return nil, fmt.Errorf("nil layout: %w", flrload.ErrInvalidConfig)
		}
		rt := l.RecordType()
		if _, dup := r.layouts[rt]; dup {
			return nil, fmt.Errorf("layout for %q registered twice: %w", rt, flrload.ErrInvalidConfig)
		}
		r.layouts[rt] = l
		r.order = append(r.order, rt)
	}
	return r, nil
}

// LayoutFor returns the layout of rt or an error wrapping ErrUnknownRecordType.
func (r *Registry) LayoutFor(rt flrload.RecordType) (*flrload.Layout, error) {
	l, ok := r.layouts[rt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", flrload.ErrUnknownRecordType, rt)
	}
	return l, nil
}

// Types returns the registered record types in registration order.
func (r *Registry) Types() []flrload.RecordType {
	return append([]flrload.RecordType(nil), r.order...)
}
