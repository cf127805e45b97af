package tooltip

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanva/internal/datacontainer"
	"kanva/internal/event"
)

// bandView snaps x to 100px wide bands.
type bandView struct {
	count int
	calls int
	err   error
	seen  []Point
}

func (v *bandView) Snap(p Point) (SnapValuesMatch, bool, error) {
	v.calls++
	v.seen = append(v.seen, p)
	if v.err != nil {
		return SnapValuesMatch{}, false, v.err
	}
	i := int(math.Floor(p.X / 100))
	if i < 0 || i >= v.count {
		return SnapValuesMatch{}, false, nil
	}
	return SnapValuesMatch{Index: i, X: float64(i), Canvas: Point{X: float64(i)*100 + 50}}, true, nil
}

type surface Point

func (s surface) Offset() Point { return Point(s) }

type collector struct{ events []Event }

func (c *collector) handle(e Event) { c.events = append(c.events, e) }

func setup(t *testing.T) (*datacontainer.Container, *Extension, *bandView, *collector) {
	t.Helper()
	c := datacontainer.NewHub().NewContainer("energy")
	require.NoError(t, c.SetData(
		datacontainer.Series{Name: "production", Data: []float64{10, 20, 30}},
		datacontainer.Series{Name: "consumption", Data: []float64{5, 6, 7}},
	))
	tip := New()
	require.NoError(t, c.AddExtension(tip))
	v := &bandView{count: 3}
	tip.RegisterView(v)
	col := &collector{}
	tip.RegisterTooltipEventHandler(col.handle)
	return c, tip, v, col
}

func TestSetPositionDeliversMatch(t *testing.T) {
	_, tip, _, col := setup(t)

	require.NoError(t, tip.SetPosition(Point{X: 150}))
	require.Len(t, col.events, 1)
	ev := col.events[0]
	require.NotNil(t, ev.Snap)
	assert.Equal(t, 1, ev.Snap.Index)
	assert.Equal(t, 150.0, ev.Snap.Canvas.X)
	require.NotNil(t, ev.Match)
	assert.Equal(t, []datacontainer.SeriesValue{
		{Series: "production", X: 1, Y: 20},
		{Series: "consumption", X: 1, Y: 6},
	}, ev.Match.Values)
	assert.Equal(t, Active, tip.State())
}

func TestIdenticalMatchDeliveredOnce(t *testing.T) {
	_, tip, v, col := setup(t)

	require.NoError(t, tip.SetPosition(Point{X: 110}))
	require.NoError(t, tip.SetPosition(Point{X: 190}))
	assert.Equal(t, 2, v.calls)
	assert.Len(t, col.events, 1)

	require.NoError(t, tip.SetPosition(Point{X: 210}))
	assert.Len(t, col.events, 2)
}

func TestSetPositionBeforeRegistration(t *testing.T) {
	tip := New()
	col := &collector{}
	tip.RegisterTooltipEventHandler(col.handle)

	require.NoError(t, tip.SetPosition(Point{X: 10, Y: 10}))
	assert.Empty(t, col.events)
	p, ok := tip.Position()
	require.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 10}, p)
	assert.Equal(t, Idle, tip.State())

	// A view without containers or offset still resolves; the match is empty
	// of values.
	tip.RegisterView(&bandView{count: 1})
	require.NoError(t, tip.SetPosition(Point{X: 10}))
	require.Len(t, col.events, 1)
	assert.Empty(t, col.events[0].Match.Values)
}

func TestNoHandlerNoDelivery(t *testing.T) {
	_, tip, _, col := setup(t)
	tip.RegisterTooltipEventHandler(nil)
	require.NoError(t, tip.SetPosition(Point{X: 10}))
	assert.Empty(t, col.events)
	assert.Equal(t, Idle, tip.State())
}

func TestCanvasOffsetTranslatesPositions(t *testing.T) {
	_, tip, v, col := setup(t)
	tip.RegisterCanvasOffset(surface{X: 100, Y: 40})

	require.NoError(t, tip.SetPosition(Point{X: 150, Y: 50}))
	assert.Equal(t, Point{X: 50, Y: 10}, v.seen[len(v.seen)-1])
	assert.Equal(t, 0, col.events[0].Snap.Index)

	tip.RegisterCanvasOffset(nil)
	require.NoError(t, tip.SetPosition(Point{X: 150, Y: 50}))
	assert.Equal(t, Point{X: 150, Y: 50}, v.seen[len(v.seen)-1])
}

func TestNoSnapDeliversEmptyEventOnce(t *testing.T) {
	_, tip, _, col := setup(t)

	require.NoError(t, tip.SetPosition(Point{X: 150}))
	require.NoError(t, tip.SetPosition(Point{X: 900}))
	require.NoError(t, tip.SetPosition(Point{X: 950}))

	require.Len(t, col.events, 2)
	assert.True(t, col.events[1].Empty())
	assert.Equal(t, Idle, tip.State())
}

func TestViewErrorPropagates(t *testing.T) {
	_, tip, v, col := setup(t)
	boom := errors.New("layout not ready")
	v.err = boom

	assert.ErrorIs(t, tip.SetPosition(Point{X: 10}), boom)
	assert.Empty(t, col.events)
}

func TestReplacingHandlerDiscardsOld(t *testing.T) {
	_, tip, _, first := setup(t)
	require.NoError(t, tip.SetPosition(Point{X: 10}))

	second := &collector{}
	tip.RegisterTooltipEventHandler(second.handle)
	require.NoError(t, tip.SetPosition(Point{X: 10}))

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1, "new handler receives the current match")
}

func TestDataChangeResetsSuppression(t *testing.T) {
	c, tip, _, col := setup(t)
	require.NoError(t, tip.SetPosition(Point{X: 10}))

	require.NoError(t, c.SetData(datacontainer.Series{Name: "production", Data: []float64{99}}))
	require.NoError(t, tip.SetPosition(Point{X: 10}))

	require.Len(t, col.events, 2)
	assert.Equal(t, 99.0, col.events[1].Match.Values[0].Y)
}

func TestProviderInstalledAndRemoved(t *testing.T) {
	c, tip, _, _ := setup(t)

	p, ok := c.Provider(datacontainer.ProviderTooltip)
	require.True(t, ok)
	assert.Same(t, tip, p)

	require.NoError(t, c.RemoveExtension(tip))
	_, ok = c.Provider(datacontainer.ProviderTooltip)
	assert.False(t, ok)
}

func TestBroadcastAcrossContainers(t *testing.T) {
	h := datacontainer.NewHub()
	a := h.NewContainer("a")
	b := h.NewContainer("b")
	require.NoError(t, a.SetData(datacontainer.Series{Name: "pv", Data: []float64{1, 2}}))
	require.NoError(t, b.SetData(datacontainer.Series{Name: "grid", Data: []float64{3, 4}}))

	tip := New()
	require.NoError(t, datacontainer.Attach(tip, a))
	require.NoError(t, datacontainer.Attach(tip, b))
	tip.RegisterView(&bandView{count: 2})
	col := &collector{}
	tip.RegisterTooltipEventHandler(col.handle)

	require.NoError(t, tip.SetPosition(Point{X: 120}))
	require.Len(t, col.events, 1)
	assert.Equal(t, []datacontainer.SeriesValue{
		{Series: "pv", X: 1, Y: 2},
		{Series: "grid", X: 1, Y: 4},
	}, col.events[0].Match.Values)
}

func TestOnlyProviderFillsValues(t *testing.T) {
	c, first, _, col := setup(t)

	// A second coordinator on the same container takes over the provider
	// slot; the first one's broadcast is filled in exactly once.
	second := New(WithName("tooltip-2"))
	require.NoError(t, c.AddExtension(second))
	assert.True(t, c.IsProvider(datacontainer.ProviderTooltip, second))

	require.NoError(t, first.SetPosition(Point{X: 10}))
	require.Len(t, col.events, 1)
	assert.Len(t, col.events[0].Match.Values, 2)
}

func TestClearBroadcastsTooltipChange(t *testing.T) {
	c, tip, _, col := setup(t)
	seen := &changeRecorder{Base: datacontainer.NewBase("recorder")}
	require.NoError(t, c.AddExtension(seen))

	require.NoError(t, tip.SetPosition(Point{X: 10}))
	require.NoError(t, tip.Clear())

	assert.Equal(t, 1, seen.changes)
	_, ok := tip.Position()
	assert.False(t, ok)
	assert.Len(t, col.events, 1)

	require.NoError(t, tip.SetPosition(Point{X: 10}))
	assert.Len(t, col.events, 2, "cleared coordinator delivers the same match again")
}

type changeRecorder struct {
	datacontainer.Base
	changes int
}

func (r *changeRecorder) HandleEvent(_ *datacontainer.Container, t event.Type, payload any) (any, error) {
	if t == event.TooltipChange {
		r.changes++
	}
	return payload, nil
}

func TestEventEqual(t *testing.T) {
	a := Event{Snap: &SnapValuesMatch{Index: 1}, Match: &YValuesMatch{Index: 1, Values: []datacontainer.SeriesValue{{Series: "s", Y: 1}}}}
	b := a.clone()
	assert.True(t, a.Equal(b))

	b.Match.Values[0].Y = 2
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(Event{}))
	assert.True(t, Event{}.Equal(Event{}))
}
