package datacontainer

import (
	"sync/atomic"

	"kanva/internal/event"
)

// Extension is the capability contract every attachable behavior implements.
//
// Concrete extensions embed Base, which supplies the bookkeeping, the
// broadcast operation and no-op defaults for the hooks. A variant overrides
// a hook by declaring the method on its own type:
//
//	type Crosshair struct{ datacontainer.Base }
//	func (x *Crosshair) OnAttach(c *datacontainer.Container) error { ... }
//
// Hook contract:
//   - OnAttach runs after the association is recorded on both sides; returning
//     an error (or panicking) rolls the association back.
//   - OnDetach runs after the association is removed; returning an error (or
//     panicking) restores it. Everything installed in OnAttach must be
//     removed here.
//   - HandleEvent receives the payload folded so far on container c and
//     returns the payload handed to the next extension.
type Extension interface {
	Name() string
	OnAttach(c *Container) error
	OnDetach(c *Container) error
	HandleEvent(c *Container, t event.Type, payload any) (any, error)

	base() *Base
}

// Base carries the state shared by every extension. Embed it by value and
// construct it with NewBase.
//
// A Base must not be copied after its first attach: it holds the hub
// binding and the container list the hub updates in place.
type Base struct {
	name string
	id   ExtensionID

	hub atomic.Pointer[Hub]
	// guarded by hub.mu
	containers []ContainerID
}

// NewBase returns a detached base with an immutable name.
func NewBase(name string) Base {
	return Base{name: name, id: newExtensionID()}
}

func (b *Base) base() *Base { return b }

func (b *Base) Name() string { return b.name }

// ID returns the extension handle. It is assigned at construction (or on
// first attach for a zero Base) and never changes.
func (b *Base) ID() ExtensionID { return b.id }

func (b *Base) OnAttach(*Container) error { return nil }
func (b *Base) OnDetach(*Container) error { return nil }

// HandleEvent is the identity step of the fold.
func (b *Base) HandleEvent(_ *Container, _ event.Type, payload any) (any, error) {
	return payload, nil
}

// Hub returns the hub this extension is bound to, or nil.
func (b *Base) Hub() *Hub { return b.hub.Load() }

// Containers returns the attached containers in attachment order.
func (b *Base) Containers() []*Container {
	h := b.hub.Load()
	if h == nil {
		return nil
	}
	return h.containersOf(b)
}

// Attached reports whether c is in the attached list.
func (b *Base) Attached(c *Container) bool {
	h := b.hub.Load()
	if h == nil || c == nil || c.hub != h {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return indexOf(b.containers, c.id) >= 0
}

// PostEvent broadcasts an event to every attached container in attachment
// order and returns the folded payload:
//
//	attached [c1, c2]: PostEvent(t, p) == c2.PostEvent(t, c1.PostEvent(t, p))
//
// With no attached containers the payload is returned unchanged. The fold
// stops at the first container that fails; the payload accumulated up to
// that point is returned along with the error.
func (b *Base) PostEvent(t event.Type, payload any) (any, error) {
	var err error
	for _, c := range b.Containers() {
		payload, err = c.PostEvent(t, payload)
		if err != nil {
			return payload, err
		}
	}
	return payload, nil
}

// bind ties the base to h on first use. ok is false when the base is
// already bound to a different hub; fresh reports that this call bound it.
func (b *Base) bind(h *Hub) (ok, fresh bool) {
	if b.hub.CompareAndSwap(nil, h) {
		return true, true
	}
	return b.hub.Load() == h, false
}

// Attach associates ext with c. Attaching an already attached pair is a no-op.
func Attach(ext Extension, c *Container) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.hub.Attach(ext, c)
}

// Detach removes the association between ext and c. Detaching a pair that is
// not associated is a no-op.
func Detach(ext Extension, c *Container) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.hub.Detach(ext, c)
}

// Release detaches ext from every container and unbinds it from its hub.
// Call it before discarding an extension.
func Release(ext Extension) error {
	if ext == nil {
		return ErrNilExtension
	}
	h := ext.base().hub.Load()
	if h == nil {
		return nil
	}
	return h.Release(ext)
}
