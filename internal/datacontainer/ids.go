package datacontainer

import "github.com/google/uuid"

// ContainerID identifies a container inside its hub.
type ContainerID uuid.UUID

// ExtensionID identifies an extension across every hub it is ever attached to.
type ExtensionID uuid.UUID

func newContainerID() ContainerID { return ContainerID(uuid.New()) }
func newExtensionID() ExtensionID { return ExtensionID(uuid.New()) }

func (id ContainerID) String() string { return uuid.UUID(id).String() }
func (id ExtensionID) String() string { return uuid.UUID(id).String() }

func (id ContainerID) IsZero() bool { return id == ContainerID{} }
func (id ExtensionID) IsZero() bool { return id == ExtensionID{} }

func indexOf[T comparable](s []T, v T) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}
	return -1
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

// insertAt inserts v at i, clamping i to the slice bounds.
func insertAt[T any](s []T, i int, v T) []T {
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		return append(s, v)
	}
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
