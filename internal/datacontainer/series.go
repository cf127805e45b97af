package datacontainer

import (
	"math"
	"strconv"

	"kanva/internal/event"
)

// Point is a position in data space or in pixels, depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is one named sequence of raw values.
type Series struct {
	Name string
	Data []float64
}

// PointAccessor maps a raw value at index to a data-space point.
type PointAccessor func(value float64, index int) Point

// DefaultPointAccessor places value i at x=i.
func DefaultPointAccessor(value float64, index int) Point {
	return Point{X: float64(index), Y: value}
}

type XAxisParameters struct {
	// Grouped renders each x index as a band (bar charts) instead of a tick.
	Grouped       bool
	LabelAccessor func(value float64, index int) string
}

type YAxisParameters struct {
	TickCount int
	// ApproximateValues rounds the tick step to 1, 2 or 5 times a power of ten.
	ApproximateValues bool
	LabelAccessor     func(value float64) string
}

// Bounds is the data-space extent of a container.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// SeriesValue is the value of one series at a point index.
type SeriesValue struct {
	Series string  `json:"series"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Tick is one y-axis tick.
type Tick struct {
	Value float64
	Label string
}

// DataChange is the payload of event.DataChange.
type DataChange struct {
	Container ContainerID
	Series    []string
}

// DataChangeKey is the typed key for event.DataChange.
var DataChangeKey = event.Key[DataChange]{Type: event.DataChange}

const defaultTickCount = 5

// SetData replaces the series data and posts event.DataChange to the
// attached extensions. The slices are copied.
func (c *Container) SetData(series ...Series) error {
	cp := make([]Series, len(series))
	names := make([]string, len(series))
	for i, s := range series {
		cp[i] = Series{Name: s.Name, Data: append([]float64(nil), s.Data...)}
		names[i] = s.Name
	}

	c.dataMu.Lock()
	c.series = cp
	c.dataMu.Unlock()

	_, err := event.Post(c, DataChangeKey, DataChange{Container: c.id, Series: names})
	return err
}

// SetPointAccessor overrides how raw values map to points. nil restores the default.
func (c *Container) SetPointAccessor(fn PointAccessor) *Container {
	if fn == nil {
		fn = DefaultPointAccessor
	}
	c.dataMu.Lock()
	c.accessor = fn
	c.dataMu.Unlock()
	return c
}

// SetYBoundsExtension forces the y bounds to include every given value.
func (c *Container) SetYBoundsExtension(values ...float64) *Container {
	c.dataMu.Lock()
	c.yExtend = append([]float64(nil), values...)
	c.dataMu.Unlock()
	return c
}

func (c *Container) SetXAxisParameters(p XAxisParameters) *Container {
	c.dataMu.Lock()
	c.xAxis = p
	c.dataMu.Unlock()
	return c
}

func (c *Container) SetYAxisParameters(p YAxisParameters) *Container {
	c.dataMu.Lock()
	c.yAxis = p
	c.dataMu.Unlock()
	return c
}

func (c *Container) XAxisParameters() XAxisParameters {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	return c.xAxis
}

func (c *Container) YAxisParameters() YAxisParameters {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	return c.yAxis
}

// Series returns a copy of the series data.
func (c *Container) Series() []Series {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	out := make([]Series, len(c.series))
	for i, s := range c.series {
		out[i] = Series{Name: s.Name, Data: append([]float64(nil), s.Data...)}
	}
	return out
}

// PointCount returns the length of the longest series.
func (c *Container) PointCount() int {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	n := 0
	for _, s := range c.series {
		n = max(n, len(s.Data))
	}
	return n
}

// Points returns the points of the named series, or nil if it does not exist.
func (c *Container) Points(name string) []Point {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	for _, s := range c.series {
		if s.Name != name {
			continue
		}
		pts := make([]Point, len(s.Data))
		for i, v := range s.Data {
			pts[i] = c.accessor(v, i)
		}
		return pts
	}
	return nil
}

// ValuesAt returns the point of every series at index, in series order.
// Series shorter than index+1 are skipped.
func (c *Container) ValuesAt(index int) []SeriesValue {
	if index < 0 {
		return nil
	}
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	var out []SeriesValue
	for _, s := range c.series {
		if index >= len(s.Data) {
			continue
		}
		p := c.accessor(s.Data[index], index)
		out = append(out, SeriesValue{Series: s.Name, X: p.X, Y: p.Y})
	}
	return out
}

// XAt returns the data-space x of point index, taken from the first series
// long enough to contain it. ok is false when no series has that index.
func (c *Container) XAt(index int) (x float64, ok bool) {
	vals := c.ValuesAt(index)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[0].X, true
}

// Bounds returns the data extent over all series, widened to include the
// y bounds extension. ok is false when there is nothing to bound.
func (c *Container) Bounds() (b Bounds, ok bool) {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()

	b = Bounds{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for _, s := range c.series {
		for i, v := range s.Data {
			p := c.accessor(v, i)
			b.MinX, b.MaxX = math.Min(b.MinX, p.X), math.Max(b.MaxX, p.X)
			b.MinY, b.MaxY = math.Min(b.MinY, p.Y), math.Max(b.MaxY, p.Y)
			ok = true
		}
	}
	for _, y := range c.yExtend {
		b.MinY, b.MaxY = math.Min(b.MinY, y), math.Max(b.MaxY, y)
	}
	if !ok {
		if len(c.yExtend) == 0 {
			return Bounds{}, false
		}
		b.MinX, b.MaxX = 0, 0
		ok = true
	}
	return b, ok
}

// XLabel formats the x value of index with the x-axis label accessor.
func (c *Container) XLabel(index int) string {
	x, _ := c.XAt(index)
	p := c.XAxisParameters()
	if p.LabelAccessor != nil {
		return p.LabelAccessor(x, index)
	}
	return strconv.Itoa(index)
}

// YTicks computes the y-axis ticks over Bounds. With ApproximateValues the
// step is rounded to a "nice" value and the tick count follows from it;
// otherwise exactly TickCount ticks are spread evenly from min to max.
func (c *Container) YTicks() []Tick {
	b, ok := c.Bounds()
	if !ok {
		return nil
	}
	p := c.YAxisParameters()
	n := p.TickCount
	if n <= 0 {
		n = defaultTickCount
	}
	label := p.LabelAccessor
	if label == nil {
		label = func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	}

	span := b.MaxY - b.MinY
	if span == 0 || n == 1 {
		return []Tick{{Value: b.MinY, Label: label(b.MinY)}}
	}

	var values []float64
	if p.ApproximateValues {
		step := niceStep(span / float64(n-1))
		start := math.Floor(b.MinY/step) * step
		for v := start; v <= b.MaxY+step*1e-9; v += step {
			values = append(values, roundTo(v, step))
		}
	} else {
		step := span / float64(n-1)
		for i := 0; i < n; i++ {
			values = append(values, b.MinY+float64(i)*step)
		}
	}

	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Label: label(v)}
	}
	return ticks
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm < 1.5:
		return mag
	case norm < 3:
		return 2 * mag
	case norm < 7:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// roundTo strips accumulated float error from multiples of step.
func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
