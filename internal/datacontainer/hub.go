package datacontainer

import (
	"sync"

	"kanva/internal/eventbus"
	logx "kanva/pkg/logx"
)

// Hub is the arena that owns containers and tracks attached extensions.
//
// A single RWMutex guards every association table (hub maps, each
// container's extension list and providers, each bound extension's container
// list). It is never held while extension hooks run.
type Hub struct {
	mu sync.RWMutex

	order      []ContainerID
	containers map[ContainerID]*Container
	// extensions holds only extensions attached to at least one container.
	extensions map[ExtensionID]Extension

	log logx.Logger
	bus eventbus.Bus
}

type Option func(*Hub)

// WithLogger sets the hub logger. Containers derive their loggers from it.
func WithLogger(log logx.Logger) Option {
	return func(h *Hub) { h.log = log }
}

// WithBus publishes lifecycle notices (container created, extension
// attached/detached/released) to bus.
func WithBus(bus eventbus.Bus) Option {
	return func(h *Hub) { h.bus = bus }
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		containers: map[ContainerID]*Container{},
		extensions: map[ExtensionID]Extension{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.log.IsZero() {
		h.log = logx.Nop()
	}
	return h
}

// NewContainer creates an empty container owned by h.
func (h *Hub) NewContainer(name string) *Container {
	c := newContainer(h, name)

	h.mu.Lock()
	h.containers[c.id] = c
	h.order = append(h.order, c.id)
	h.mu.Unlock()

	h.log.Debug("container created", logx.String("container", name), logx.Stringer("id", c.id))
	h.emit(eventbus.ContainerCreated, c, nil)
	return c
}

// Container resolves a container handle.
func (h *Hub) Container(id ContainerID) (*Container, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.containers[id]
	return c, ok
}

// ContainerByName returns the first container created with name.
func (h *Hub) ContainerByName(name string) (*Container, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range h.order {
		if c := h.containers[id]; c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Containers returns every container in creation order.
func (h *Hub) Containers() []*Container {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Container, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.containers[id])
	}
	return out
}

// Extension resolves an extension handle. Only attached extensions resolve.
func (h *Hub) Extension(id ExtensionID) (Extension, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ext, ok := h.extensions[id]
	return ext, ok
}

// Attach records ext <-> c on both sides, then runs ext.OnAttach(c).
// If the pair is already associated, Attach does nothing. If the hook fails
// or panics, the association, any provider slot the hook installed on c and
// a hub binding made by this call are rolled back before the failure
// propagates.
func (h *Hub) Attach(ext Extension, c *Container) (err error) {
	if ext == nil {
		return ErrNilExtension
	}
	if c == nil {
		return ErrNilContainer
	}
	if c.hub != h {
		return ErrForeignHub
	}
	b := ext.base()
	bound, fresh := b.bind(h)
	if !bound {
		return ErrForeignHub
	}

	h.mu.Lock()
	if b.id.IsZero() {
		b.id = newExtensionID()
	}
	if indexOf(b.containers, c.id) >= 0 {
		h.mu.Unlock()
		return nil
	}
	b.containers = append(b.containers, c.id)
	c.extensions = append(c.extensions, b.id)
	h.extensions[b.id] = ext
	h.mu.Unlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		h.mu.Lock()
		h.unlinkLocked(b, c)
		c.dropProvidersLocked(b.id)
		if fresh && len(b.containers) == 0 {
			b.hub.CompareAndSwap(h, nil)
		}
		h.mu.Unlock()
		h.log.Warn("extension attach rolled back", logx.String("extension", b.name), logx.String("container", c.name), logx.Err(err))
	}()

	if hookErr := ext.OnAttach(c); hookErr != nil {
		return &HookError{Hook: HookAttach, Extension: b.name, Container: c.name, Err: hookErr}
	}
	committed = true

	h.log.Debug("extension attached", logx.String("extension", b.name), logx.String("container", c.name))
	h.emit(eventbus.ExtensionAttached, c, b)
	return nil
}

// Detach removes ext <-> c on both sides, then runs ext.OnDetach(c).
// If the pair is not associated, Detach does nothing. If the hook fails or
// panics, the association is restored at its previous positions together
// with the provider slots ext held on c.
//
// Providers still held by ext on c after a successful OnDetach are cleared.
func (h *Hub) Detach(ext Extension, c *Container) (err error) {
	if ext == nil {
		return ErrNilExtension
	}
	if c == nil {
		return ErrNilContainer
	}
	b := ext.base()
	if c.hub != h || b.hub.Load() != h {
		return nil
	}

	h.mu.Lock()
	bi := indexOf(b.containers, c.id)
	if bi < 0 {
		h.mu.Unlock()
		return nil
	}
	ci := indexOf(c.extensions, b.id)
	held := c.providersOfLocked(b.id)
	h.unlinkLocked(b, c)
	h.mu.Unlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		h.mu.Lock()
		if indexOf(b.containers, c.id) < 0 {
			b.containers = insertAt(b.containers, bi, c.id)
		}
		if indexOf(c.extensions, b.id) < 0 {
			c.extensions = insertAt(c.extensions, ci, b.id)
		}
		h.extensions[b.id] = ext
		for _, kind := range held {
			c.providers[kind] = b.id
		}
		h.mu.Unlock()
		h.log.Warn("extension detach rolled back", logx.String("extension", b.name), logx.String("container", c.name), logx.Err(err))
	}()

	if hookErr := ext.OnDetach(c); hookErr != nil {
		return &HookError{Hook: HookDetach, Extension: b.name, Container: c.name, Err: hookErr}
	}
	committed = true

	if leaked := c.dropProviders(b.id); len(leaked) > 0 {
		h.log.Warn("extension left providers installed after detach", logx.String("extension", b.name), logx.String("container", c.name), logx.Any("providers", leaked))
	}

	h.log.Debug("extension detached", logx.String("extension", b.name), logx.String("container", c.name))
	h.emit(eventbus.ExtensionDetached, c, b)
	return nil
}

// Release detaches ext from every container, most recently attached first,
// and unbinds it from h so it may later join another hub.
func (h *Hub) Release(ext Extension) error {
	if ext == nil {
		return ErrNilExtension
	}
	b := ext.base()
	if b.hub.Load() != h {
		return nil
	}
	cs := h.containersOf(b)
	for i := len(cs) - 1; i >= 0; i-- {
		if err := h.Detach(ext, cs[i]); err != nil {
			return err
		}
	}

	h.mu.Lock()
	unbound := len(b.containers) == 0 && b.hub.CompareAndSwap(h, nil)
	h.mu.Unlock()
	if unbound {
		h.log.Debug("extension released", logx.String("extension", b.name))
		h.emit(eventbus.ExtensionReleased, nil, b)
	}
	return nil
}

// unlinkLocked removes the association from both sides. Caller holds h.mu.
func (h *Hub) unlinkLocked(b *Base, c *Container) {
	if i := indexOf(b.containers, c.id); i >= 0 {
		b.containers = removeAt(b.containers, i)
	}
	if i := indexOf(c.extensions, b.id); i >= 0 {
		c.extensions = removeAt(c.extensions, i)
	}
	if len(b.containers) == 0 {
		delete(h.extensions, b.id)
	}
}

func (h *Hub) containersOf(b *Base) []*Container {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Container, 0, len(b.containers))
	for _, id := range b.containers {
		if c, ok := h.containers[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) extensionsOf(c *Container) []Extension {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Extension, 0, len(c.extensions))
	for _, id := range c.extensions {
		if ext, ok := h.extensions[id]; ok {
			out = append(out, ext)
		}
	}
	return out
}

func (h *Hub) emit(kind eventbus.Kind, c *Container, b *Base) {
	if h.bus == nil {
		return
	}
	n := eventbus.Notice{Kind: kind}
	if c != nil {
		n.Container = c.name
	}
	if b != nil {
		n.Extension = b.id.String()
		n.Name = b.name
	}
	h.bus.Publish(n)
}
