// Package event defines the closed set of data-container event tags and the
// type-indexed keys that bind a tag to its payload type.
package event

import (
	"errors"
	"fmt"
)

// ErrPayloadType is returned by Post when the folded payload is not of the
// type bound to the key.
var ErrPayloadType = errors.New("event payload has unexpected type")

// Type is an event tag. The set is closed: only the constants below are valid.
type Type uint8

const (
	// DataChange is posted by a container after its series data was replaced.
	DataChange Type = iota + 1
	// PointerMove carries a pointer position resolved into a snap/match pair.
	PointerMove
	// TooltipChange is posted when the tooltip should be recomputed or hidden.
	TooltipChange
	// Custom is reserved for caller-defined payloads (tools, tests).
	Custom
)

func (t Type) String() string {
	switch t {
	case DataChange:
		return "data_change"
	case PointerMove:
		return "pointer_move"
	case TooltipChange:
		return "tooltip_change"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the declared tags.
func (t Type) Valid() bool { return t >= DataChange && t <= Custom }

// Poster is anything that accepts an event and returns the folded payload.
// Both containers and extensions implement it.
type Poster interface {
	PostEvent(t Type, payload any) (any, error)
}

// Key binds an event tag to its payload type P.
//
//	var Move = event.Key[tooltip.Event]{Type: event.PointerMove}
//	ev, err := event.Post(container, Move, tooltip.Event{...})
type Key[P any] struct {
	Type Type
}

// Post posts payload through p and returns the folded result as P.
// A nil folded payload yields the zero P.
func Post[P any](p Poster, k Key[P], payload P) (P, error) {
	var zero P
	out, err := p.PostEvent(k.Type, payload)
	if err != nil {
		if v, ok := out.(P); ok {
			return v, err
		}
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	v, ok := out.(P)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrPayloadType, k.Type, out, zero)
	}
	return v, nil
}
