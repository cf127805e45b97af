package datacontainer

import (
	"sync"

	"kanva/internal/event"
	logx "kanva/pkg/logx"
)

// ProviderKind names a default behavior of a container that an attached
// extension can take over.
type ProviderKind uint8

const (
	// ProviderTooltip is the extension that resolves pointer positions into
	// tooltip matches for views rendering this container.
	ProviderTooltip ProviderKind = iota + 1
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderTooltip:
		return "tooltip"
	default:
		return "unknown"
	}
}

// Container holds chart series data and dispatches events to the extensions
// attached to it.
type Container struct {
	id   ContainerID
	name string
	hub  *Hub
	log  logx.Logger

	// guarded by hub.mu
	extensions []ExtensionID
	providers  map[ProviderKind]ExtensionID

	dataMu   sync.RWMutex
	series   []Series
	accessor PointAccessor
	yExtend  []float64
	xAxis    XAxisParameters
	yAxis    YAxisParameters
}

func newContainer(h *Hub, name string) *Container {
	return &Container{
		id:        newContainerID(),
		name:      name,
		hub:       h,
		log:       h.log.With(logx.String("container", name)),
		providers: map[ProviderKind]ExtensionID{},
		accessor:  DefaultPointAccessor,
	}
}

func (c *Container) ID() ContainerID { return c.id }
func (c *Container) Name() string    { return c.name }
func (c *Container) Hub() *Hub       { return c.hub }

// AddExtension attaches ext to c. See Hub.Attach.
func (c *Container) AddExtension(ext Extension) error { return c.hub.Attach(ext, c) }

// RemoveExtension detaches ext from c. See Hub.Detach.
func (c *Container) RemoveExtension(ext Extension) error { return c.hub.Detach(ext, c) }

// Extensions returns the attached extensions in dispatch order.
func (c *Container) Extensions() []Extension { return c.hub.extensionsOf(c) }

// HasExtension reports whether ext is in c's registry.
func (c *Container) HasExtension(ext Extension) bool {
	if ext == nil {
		return false
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	return indexOf(c.extensions, ext.base().id) >= 0
}

// PostEvent dispatches an event to every attached extension in attachment
// order, threading the payload through each HandleEvent, and returns the
// final payload. With no extensions the payload is returned unchanged.
//
// A failing extension stops the fold; the payload produced before it is
// returned together with a *HookError.
func (c *Container) PostEvent(t event.Type, payload any) (any, error) {
	exts := c.hub.extensionsOf(c)
	if c.log.Enabled(logx.LevelTrace) {
		c.log.Trace("post event", logx.Stringer("event", t), logx.Int("extensions", len(exts)))
	}
	for _, ext := range exts {
		out, err := ext.HandleEvent(c, t, payload)
		if err != nil {
			return payload, &HookError{Hook: HookEvent, Extension: ext.Name(), Container: c.name, Event: t, Err: err}
		}
		payload = out
	}
	return payload, nil
}

// SetProvider installs ext as the provider of kind on c, replacing any
// previous provider. ext must be attached to c; otherwise SetProvider
// reports false and changes nothing.
func (c *Container) SetProvider(kind ProviderKind, ext Extension) bool {
	if ext == nil {
		return false
	}
	id := ext.base().id
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if indexOf(c.extensions, id) < 0 {
		return false
	}
	c.providers[kind] = id
	return true
}

// ClearProvider removes ext as provider of kind. It reports false when ext
// is not the current provider.
func (c *Container) ClearProvider(kind ProviderKind, ext Extension) bool {
	if ext == nil {
		return false
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if cur, ok := c.providers[kind]; !ok || cur != ext.base().id {
		return false
	}
	delete(c.providers, kind)
	return true
}

// Provider returns the extension currently providing kind.
func (c *Container) Provider(kind ProviderKind) (Extension, bool) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	id, ok := c.providers[kind]
	if !ok {
		return nil, false
	}
	ext, ok := c.hub.extensions[id]
	return ext, ok
}

// IsProvider reports whether ext currently provides kind on c.
func (c *Container) IsProvider(kind ProviderKind, ext Extension) bool {
	if ext == nil {
		return false
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	id, ok := c.providers[kind]
	return ok && id == ext.base().id
}

// dropProviders clears every provider slot held by id and returns the kinds
// that were cleared.
func (c *Container) dropProviders(id ExtensionID) []string {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	var dropped []string
	for _, kind := range c.dropProvidersLocked(id) {
		dropped = append(dropped, kind.String())
	}
	return dropped
}

// Caller holds hub.mu.
func (c *Container) dropProvidersLocked(id ExtensionID) []ProviderKind {
	held := c.providersOfLocked(id)
	for _, kind := range held {
		delete(c.providers, kind)
	}
	return held
}

// Caller holds hub.mu.
func (c *Container) providersOfLocked(id ExtensionID) []ProviderKind {
	var held []ProviderKind
	for kind, cur := range c.providers {
		if cur == id {
			held = append(held, kind)
		}
	}
	return held
}
