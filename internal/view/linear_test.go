package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanva/internal/datacontainer"
	"kanva/internal/extension/tooltip"
)

func container(t *testing.T, grouped bool) *datacontainer.Container {
	t.Helper()
	c := datacontainer.NewHub().NewContainer("c")
	require.NoError(t, c.SetData(datacontainer.Series{Name: "s", Data: []float64{1, 2, 3, 4}}))
	c.SetXAxisParameters(datacontainer.XAxisParameters{Grouped: grouped})
	return c
}

func TestGroupedSnapsToBandCenter(t *testing.T) {
	v := NewLinear(container(t, true), 400, 100)

	snap, ok, err := v.Snap(tooltip.Point{X: 120})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 1.0, snap.X)
	assert.Equal(t, tooltip.Point{X: 150, Y: 50}, snap.Canvas)

	snap, ok, _ = v.Snap(tooltip.Point{X: 400})
	require.True(t, ok)
	assert.Equal(t, 3, snap.Index)
}

func TestUngroupedSnapsToNearestTick(t *testing.T) {
	v := NewLinear(container(t, false), 300, 0)

	snap, ok, err := v.Snap(tooltip.Point{X: 140})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 100.0, snap.Canvas.X)
}

func TestOutOfRange(t *testing.T) {
	v := NewLinear(container(t, true), 400, 100)
	_, ok, err := v.Snap(tooltip.Point{X: -1})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = NewLinear(datacontainer.NewHub().NewContainer("empty"), 400, 100).Snap(tooltip.Point{X: 10})
	assert.False(t, ok)
	_, ok, _ = (&Linear{}).Snap(tooltip.Point{X: 10})
	assert.False(t, ok)
}

func TestDrivesTooltip(t *testing.T) {
	c := container(t, true)
	tip := tooltip.New()
	require.NoError(t, c.AddExtension(tip))
	tip.RegisterView(NewLinear(c, 400, 100))

	var got []tooltip.Event
	tip.RegisterTooltipEventHandler(func(e tooltip.Event) { got = append(got, e) })
	require.NoError(t, tip.SetPosition(tooltip.Point{X: 350}))

	require.Len(t, got, 1)
	assert.Equal(t, []datacontainer.SeriesValue{{Series: "s", X: 3, Y: 4}}, got[0].Match.Values)
}
