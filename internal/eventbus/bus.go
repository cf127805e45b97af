package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind names a lifecycle notice.
type Kind string

const (
	ContainerCreated  Kind = "container.created"
	ExtensionAttached Kind = "extension.attached"
	ExtensionDetached Kind = "extension.detached"
	ExtensionReleased Kind = "extension.released"
)

// Notice is a lightweight, in-memory signal describing a change in the
// extension/container association graph. It is observational only: the
// synchronous event fold never goes through the bus.
//
// Contract:
//   - Publish MUST be non-blocking.
//   - Subscribers MUST use buffered channels.
//   - Slow subscribers may drop notices (bounded backpressure).
type Notice struct {
	Kind      Kind
	Time      time.Time
	Container string
	Extension string
	Name      string
}

type Bus interface {
	Publish(n Notice)
	Subscribe(buffer int) (ch <-chan Notice, unsubscribe func())
}

// New returns a simple in-memory fanout bus.
//
// It does not own any background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Notice{}}
}

type memBus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Notice
	seq     atomic.Uint64
	dropped atomic.Uint64
}

func (b *memBus) Publish(n Notice) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	// Snapshot subscribers so Publish doesn't hold locks while attempting sends.
	b.mu.RLock()
	chs := make([]chan Notice, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// A concurrent unsubscribe may close ch; recover from send on closed channel.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- n:
			default:
				b.dropped.Add(1)
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Notice, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Notice, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

// Dropped returns how many notices were dropped because a subscriber was full.
// Buses not created by New report 0.
func Dropped(b Bus) uint64 {
	if mb, ok := b.(*memBus); ok {
		return mb.dropped.Load()
	}
	return 0
}
