package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanva/internal/datacontainer"
	"kanva/internal/event"
)

func scale(k int) Func {
	return Typed(func(_ *datacontainer.Container, v int) (int, error) { return v * k, nil })
}

func TestFoldAcrossContainers(t *testing.T) {
	h := datacontainer.NewHub()
	a := h.NewContainer("A")
	b := h.NewContainer("B")
	require.NoError(t, a.AddExtension(New("double", Funcs{event.Custom: scale(2)})))
	require.NoError(t, b.AddExtension(New("inc", Funcs{event.Custom: Typed(func(_ *datacontainer.Container, v int) (int, error) {
		return v + 1, nil
	})})))

	e := New("E", nil)
	require.NoError(t, datacontainer.Attach(e, a))
	require.NoError(t, datacontainer.Attach(e, b))

	got, err := event.Post(e, event.Key[int]{Type: event.Custom}, 5)
	require.NoError(t, err)
	assert.Equal(t, 11, got)

	require.NoError(t, datacontainer.Detach(e, b))
	got, err = event.Post(e, event.Key[int]{Type: event.Custom}, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestUnhandledTypesPassThrough(t *testing.T) {
	c := datacontainer.NewHub().NewContainer("c")
	require.NoError(t, c.AddExtension(New("double", Funcs{event.Custom: scale(2)})))

	out, err := c.PostEvent(event.PointerMove, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out)

	out, err = c.PostEvent(event.Custom, "text")
	require.NoError(t, err)
	assert.Equal(t, "text", out)
}

func TestFuncErrorIsWrapped(t *testing.T) {
	c := datacontainer.NewHub().NewContainer("c")
	boom := errors.New("boom")
	require.NoError(t, c.AddExtension(New("fail", Funcs{event.Custom: func(*datacontainer.Container, any) (any, error) {
		return nil, boom
	}})))

	_, err := c.PostEvent(event.Custom, 1)
	assert.ErrorIs(t, err, boom)
	var he *datacontainer.HookError
	assert.ErrorAs(t, err, &he)
}
