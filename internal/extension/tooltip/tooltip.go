// Package tooltip implements the extension that keeps pointer and tooltip
// state in sync across every view sharing its containers.
//
// A rendering layer registers a handler, a surface and a view, then feeds
// pointer positions through SetPosition. Each position is resolved by the view
// into a snap, broadcast as event.PointerMove through every attached
// container (where the tooltip provider fills in the series values), and the
// folded result is delivered to the handler unless it equals the previous
// delivery.
package tooltip

import (
	"sync"

	"kanva/internal/datacontainer"
	"kanva/internal/event"
	logx "kanva/pkg/logx"
)

const DefaultName = "tooltip"

type Option func(*Extension)

func WithLogger(log logx.Logger) Option {
	return func(t *Extension) { t.log = log }
}

// WithName replaces the default name. It swaps in a fresh Base, so it only
// applies through New, before the first attach.
func WithName(name string) Option {
	return func(t *Extension) { t.Base = datacontainer.NewBase(name) }
}

// Extension coordinates tooltip state. Create it with New.
type Extension struct {
	datacontainer.Base

	log logx.Logger

	mu       sync.Mutex
	handler  EventHandler
	offset   *Point
	position *Point
	view     View
	last     *Event
}

func New(opts ...Option) *Extension {
	t := &Extension{Base: datacontainer.NewBase(DefaultName)}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.log.IsZero() {
		t.log = logx.Nop()
	}
	t.log = t.log.With(logx.String("extension", t.Name()))
	return t
}

// RegisterTooltipEventHandler sets the single delivery target, replacing any
// previous handler. nil removes it. The next position is always delivered to
// a newly registered handler.
func (t *Extension) RegisterTooltipEventHandler(h EventHandler) {
	t.mu.Lock()
	t.handler = h
	t.last = nil
	t.mu.Unlock()
}

// RegisterCanvasOffset records the surface pointer positions are relative to.
// nil clears it; positions are then used as-is.
func (t *Extension) RegisterCanvasOffset(s Surface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s == nil {
		t.offset = nil
		return
	}
	off := s.Offset()
	t.offset = &off
}

// RegisterView records the view used to resolve positions. nil clears it.
func (t *Extension) RegisterView(v View) {
	t.mu.Lock()
	t.view = v
	t.mu.Unlock()
}

// Position returns the last position passed to SetPosition.
func (t *Extension) Position() (Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.position == nil {
		return Point{}, false
	}
	return *t.position, true
}

// State reports Active when a handler holds a non-empty match.
func (t *Extension) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil && t.last != nil && !t.last.Empty() {
		return Active
	}
	return Idle
}

// SetPosition resolves p through the registered view and broadcasts the
// result. Without a view it only records p. View and broadcast errors are
// returned; nothing is delivered in that case.
func (t *Extension) SetPosition(p Point) error {
	t.mu.Lock()
	t.position = &p
	view := t.view
	rel := p
	if t.offset != nil {
		rel.X -= t.offset.X
		rel.Y -= t.offset.Y
	}
	t.mu.Unlock()

	if view == nil {
		return nil
	}

	snap, ok, err := view.Snap(rel)
	if err != nil {
		return err
	}
	var ev Event
	if ok {
		ev = Event{
			Snap:  &snap,
			Match: &YValuesMatch{Index: snap.Index, X: snap.X},
		}
	}

	out, err := event.Post(t, PointerMoveKey, ev)
	if err != nil {
		return err
	}
	t.deliver(out)
	return nil
}

// Clear forgets the position and last delivery and broadcasts an empty
// event.TooltipChange so other extensions can hide pointer state.
func (t *Extension) Clear() error {
	t.mu.Lock()
	t.position = nil
	t.last = nil
	t.mu.Unlock()

	_, err := event.Post(t, TooltipChangeKey, Event{})
	return err
}

func (t *Extension) deliver(ev Event) {
	t.mu.Lock()
	h := t.handler
	if h == nil || (t.last != nil && t.last.Equal(ev)) {
		t.mu.Unlock()
		return
	}
	cp := ev.clone()
	t.last = &cp
	t.mu.Unlock()

	if t.log.Enabled(logx.LevelDebug) {
		fields := []logx.Field{logx.Bool("empty", ev.Empty())}
		if ev.Match != nil {
			fields = append(fields, logx.Int("index", ev.Match.Index), logx.Int("values", len(ev.Match.Values)))
		}
		t.log.Debug("tooltip delivered", fields...)
	}
	h(ev)
}

// OnAttach makes t the container's tooltip provider.
func (t *Extension) OnAttach(c *datacontainer.Container) error {
	c.SetProvider(datacontainer.ProviderTooltip, t)
	return nil
}

// OnDetach gives up the provider slot if t still holds it.
func (t *Extension) OnDetach(c *datacontainer.Container) error {
	c.ClearProvider(datacontainer.ProviderTooltip, t)
	return nil
}

// HandleEvent fills in the series values of c for pointer moves (when t is
// c's tooltip provider) and invalidates the last delivery on data changes.
func (t *Extension) HandleEvent(c *datacontainer.Container, typ event.Type, payload any) (any, error) {
	switch typ {
	case event.PointerMove:
		ev, ok := payload.(Event)
		if !ok || ev.Match == nil || !c.IsProvider(datacontainer.ProviderTooltip, t) {
			return payload, nil
		}
		m := *ev.Match
		m.Values = append(append([]datacontainer.SeriesValue(nil), ev.Match.Values...), c.ValuesAt(m.Index)...)
		ev.Match = &m
		return ev, nil
	case event.DataChange:
		t.mu.Lock()
		t.last = nil
		t.mu.Unlock()
	}
	return payload, nil
}
