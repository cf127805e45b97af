// Package transform provides an extension that rewrites event payloads with
// plain functions, one per event type.
package transform

import (
	"kanva/internal/datacontainer"
	"kanva/internal/event"
)

// Func rewrites the payload of one event on container c.
type Func func(c *datacontainer.Container, payload any) (any, error)

// Funcs maps event types to their rewrite. Types without an entry pass through.
type Funcs map[event.Type]Func

type Extension struct {
	datacontainer.Base
	funcs Funcs
}

// New copies funcs; later changes to the map have no effect.
func New(name string, funcs Funcs) *Extension {
	cp := make(Funcs, len(funcs))
	for t, fn := range funcs {
		if fn != nil {
			cp[t] = fn
		}
	}
	return &Extension{Base: datacontainer.NewBase(name), funcs: cp}
}

func (x *Extension) HandleEvent(c *datacontainer.Container, t event.Type, payload any) (any, error) {
	fn, ok := x.funcs[t]
	if !ok {
		return payload, nil
	}
	return fn(c, payload)
}

// Typed adapts a function over P into a Func. Payloads of another type pass
// through untouched.
func Typed[P any](fn func(c *datacontainer.Container, p P) (P, error)) Func {
	return func(c *datacontainer.Container, payload any) (any, error) {
		p, ok := payload.(P)
		if !ok {
			return payload, nil
		}
		return fn(c, p)
	}
}
