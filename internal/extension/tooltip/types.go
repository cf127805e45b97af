package tooltip

import (
	"slices"

	"kanva/internal/datacontainer"
	"kanva/internal/event"
)

type Point = datacontainer.Point

// Surface is the drawing surface pointer coordinates are measured against.
// Offset is the surface's top-left corner in the pointer's coordinate space.
type Surface interface {
	Offset() Point
}

// View is a rendered view that can resolve a surface-relative pixel position
// into the nearest data point. ok is false when nothing is close enough.
type View interface {
	Snap(pos Point) (snap SnapValuesMatch, ok bool, err error)
}

// SnapValuesMatch is the data point a position snapped to.
type SnapValuesMatch struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	// Canvas is the snapped position in surface pixels (crosshair anchor).
	Canvas Point `json:"canvas"`
}

// YValuesMatch holds the value of every series at the snapped index, across
// all containers the coordinator broadcast through.
type YValuesMatch struct {
	Index  int                         `json:"index"`
	X      float64                     `json:"x"`
	Values []datacontainer.SeriesValue `json:"values"`
}

// Event is the payload of event.PointerMove and the value delivered to the
// registered handler. Both fields are nil when the position matched nothing.
type Event struct {
	Snap  *SnapValuesMatch `json:"snap,omitempty"`
	Match *YValuesMatch    `json:"match,omitempty"`
}

// Empty reports whether the event carries no match.
func (e Event) Empty() bool { return e.Snap == nil && e.Match == nil }

// Equal reports whether e and o describe the same snap and values.
func (e Event) Equal(o Event) bool {
	if (e.Snap == nil) != (o.Snap == nil) || (e.Match == nil) != (o.Match == nil) {
		return false
	}
	if e.Snap != nil && *e.Snap != *o.Snap {
		return false
	}
	if e.Match != nil {
		if e.Match.Index != o.Match.Index || e.Match.X != o.Match.X {
			return false
		}
		return slices.Equal(e.Match.Values, o.Match.Values)
	}
	return true
}

func (e Event) clone() Event {
	out := Event{}
	if e.Snap != nil {
		s := *e.Snap
		out.Snap = &s
	}
	if e.Match != nil {
		m := *e.Match
		m.Values = slices.Clone(e.Match.Values)
		out.Match = &m
	}
	return out
}

// EventHandler receives the folded event after a position change.
type EventHandler func(Event)

// PointerMoveKey is the typed key for event.PointerMove.
var PointerMoveKey = event.Key[Event]{Type: event.PointerMove}

// TooltipChangeKey is the typed key for event.TooltipChange.
var TooltipChangeKey = event.Key[Event]{Type: event.TooltipChange}

type State uint8

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}
