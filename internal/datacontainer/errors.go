package datacontainer

import (
	"errors"
	"fmt"

	"kanva/internal/event"
)

var (
	ErrNilExtension = errors.New("datacontainer: nil extension")
	ErrNilContainer = errors.New("datacontainer: nil container")
	// ErrForeignHub is returned when an extension bound to one hub is attached
	// to a container owned by another. Release the extension first.
	ErrForeignHub = errors.New("datacontainer: extension belongs to another hub")
)

// Hook names reported by HookError.
const (
	HookAttach = "attach"
	HookDetach = "detach"
	HookEvent  = "event"
)

// HookError wraps an error returned by an extension hook.
//
// For attach/detach the association state was rolled back before the error
// was returned. For events, the fold stopped at Extension.
type HookError struct {
	Hook      string
	Extension string
	Container string
	Event     event.Type
	Err       error
}

func (e *HookError) Error() string {
	if e.Hook == HookEvent {
		return fmt.Sprintf("extension %q %s hook on container %q (%s): %v", e.Extension, e.Hook, e.Container, e.Event, e.Err)
	}
	return fmt.Sprintf("extension %q %s hook on container %q: %v", e.Extension, e.Hook, e.Container, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
