// Package view provides a minimal stand-in for a rendered chart view: it maps
// pixel positions onto the x indices of a container and back, which is all the
// tooltip coordinator needs from a real renderer.
package view

import (
	"math"

	"kanva/internal/datacontainer"
	"kanva/internal/extension/tooltip"
)

// Linear lays the container's point indices out evenly across Width pixels.
// When the container's x axis is grouped, each index owns a band and snaps to
// the band center; otherwise indices sit on ticks from 0 to Width.
type Linear struct {
	Container *datacontainer.Container
	Width     float64
	Height    float64
}

func NewLinear(c *datacontainer.Container, width, height float64) *Linear {
	return &Linear{Container: c, Width: width, Height: height}
}

// Snap implements tooltip.View.
func (v *Linear) Snap(pos tooltip.Point) (tooltip.SnapValuesMatch, bool, error) {
	if v.Container == nil || v.Width <= 0 {
		return tooltip.SnapValuesMatch{}, false, nil
	}
	n := v.Container.PointCount()
	if n == 0 || pos.X < 0 || pos.X > v.Width {
		return tooltip.SnapValuesMatch{}, false, nil
	}

	var idx int
	if v.grouped() {
		band := v.Width / float64(n)
		idx = min(int(math.Floor(pos.X/band)), n-1)
	} else if n > 1 {
		step := v.Width / float64(n-1)
		idx = int(math.Round(pos.X / step))
	}

	x, ok := v.Container.XAt(idx)
	if !ok {
		return tooltip.SnapValuesMatch{}, false, nil
	}
	return tooltip.SnapValuesMatch{
		Index:  idx,
		X:      x,
		Canvas: v.CanvasPosition(idx),
	}, true, nil
}

// CanvasPosition returns the pixel anchor of index on the x axis, at mid height.
func (v *Linear) CanvasPosition(index int) tooltip.Point {
	p := tooltip.Point{Y: v.Height / 2}
	if v.Container == nil {
		return p
	}
	n := v.Container.PointCount()
	switch {
	case n == 0:
	case v.grouped():
		band := v.Width / float64(n)
		p.X = (float64(index) + 0.5) * band
	case n > 1:
		p.X = float64(index) * v.Width / float64(n-1)
	}
	return p
}

func (v *Linear) grouped() bool {
	return v.Container.XAxisParameters().Grouped
}
