package app

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"kanva/internal/config"
	"kanva/internal/datacontainer"
	"kanva/internal/event"
	"kanva/internal/eventbus"
	"kanva/internal/extension/tooltip"
	"kanva/internal/extension/transform"
	"kanva/internal/view"
	logx "kanva/pkg/logx"
)

var ErrUnknownContainer = errors.New("unknown container")

// Scene is the container graph described by a config: containers with their
// data, an optional tooltip coordinator and the transforms.
type Scene struct {
	Hub        *datacontainer.Hub
	Containers []*datacontainer.Container
	Tooltip    *tooltip.Extension
	View       *view.Linear
	Transforms []*transform.Extension
}

// FixedSurface is a tooltip.Surface at a constant offset.
type FixedSurface tooltip.Point

func (s FixedSurface) Offset() tooltip.Point { return tooltip.Point(s) }

// BuildScene creates every container, then attaches the tooltip (when
// configured) and finally the transforms, so transforms fold after the
// tooltip filled in the container's values.
func BuildScene(cfg *config.Config, log logx.Logger, bus eventbus.Bus, handler tooltip.EventHandler) (*Scene, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	opts := []datacontainer.Option{datacontainer.WithLogger(log.With(logx.String("comp", "hub")))}
	if bus != nil {
		opts = append(opts, datacontainer.WithBus(bus))
	}
	s := &Scene{Hub: datacontainer.NewHub(opts...)}

	for _, cc := range cfg.Containers {
		c, err := buildContainer(s.Hub, cc)
		if err != nil {
			return nil, err
		}
		s.Containers = append(s.Containers, c)
	}

	if tc := cfg.Tooltip; tc != nil {
		tt := tooltip.New(tooltip.WithLogger(log.With(logx.String("comp", "tooltip"))))
		s.Tooltip = tt
		var first *datacontainer.Container
		for _, name := range tc.Containers {
			c, err := s.container(name)
			if err == nil {
				err = c.AddExtension(tt)
			}
			if err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("attach tooltip to %q: %w", name, err)
			}
			if first == nil {
				first = c
			}
		}
		s.View = view.NewLinear(first, tc.Width, tc.Height)
		tt.RegisterView(s.View)
		tt.RegisterCanvasOffset(FixedSurface{X: tc.OffsetX, Y: tc.OffsetY})
		if handler != nil {
			tt.RegisterTooltipEventHandler(handler)
		}
	}

	for _, xc := range cfg.Transforms {
		x := newScaleTransform(xc)
		s.Transforms = append(s.Transforms, x)
		c, err := s.container(xc.Container)
		if err == nil {
			err = c.AddExtension(x)
		}
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("attach transform %q: %w", xc.Name, err)
		}
	}

	log.Info("scene built",
		logx.Int("containers", len(s.Containers)),
		logx.Bool("tooltip", s.Tooltip != nil),
		logx.Int("transforms", len(s.Transforms)),
	)
	return s, nil
}

func (s *Scene) container(name string) (*datacontainer.Container, error) {
	c, ok := s.Hub.ContainerByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, name)
	}
	return c, nil
}

func buildContainer(h *datacontainer.Hub, cc config.ContainerConfig) (*datacontainer.Container, error) {
	c := h.NewContainer(cc.Name)
	c.SetXAxisParameters(datacontainer.XAxisParameters{Grouped: cc.XAxis.Grouped}).
		SetYAxisParameters(datacontainer.YAxisParameters{
			TickCount:         cc.YAxis.TickCount,
			ApproximateValues: cc.YAxis.Approximate,
			LabelAccessor:     yLabel(cc.YAxis.Divisor, cc.YAxis.Unit),
		}).
		SetYBoundsExtension(cc.YBoundsExtension...)

	series := make([]datacontainer.Series, 0, len(cc.Series))
	for _, sc := range cc.Series {
		series = append(series, datacontainer.Series{Name: sc.Name, Data: sc.Data})
	}
	if err := c.SetData(series...); err != nil {
		return nil, fmt.Errorf("container %q: %w", cc.Name, err)
	}
	return c, nil
}

// yLabel renders value/divisor followed by unit, e.g. "4 kWh".
func yLabel(divisor float64, unit string) func(float64) string {
	if divisor == 0 {
		divisor = 1
	}
	unit = strings.TrimSpace(unit)
	return func(v float64) string {
		s := strconv.FormatFloat(v/divisor, 'f', -1, 64)
		if unit == "" {
			return s
		}
		return s + " " + unit
	}
}

// newScaleTransform rewrites the tooltip values of its container's series as
// y*scale + shift. Values from other containers are left alone.
func newScaleTransform(xc config.TransformConfig) *transform.Extension {
	scale := xc.Scale
	if scale == 0 {
		scale = 1
	}
	shift := xc.Shift
	return transform.New(xc.Name, transform.Funcs{
		event.PointerMove: transform.Typed(func(c *datacontainer.Container, ev tooltip.Event) (tooltip.Event, error) {
			if ev.Match == nil || len(ev.Match.Values) == 0 {
				return ev, nil
			}
			own := map[string]bool{}
			for _, s := range c.Series() {
				own[s.Name] = true
			}
			m := *ev.Match
			m.Values = slices.Clone(m.Values)
			for i, v := range m.Values {
				if own[v.Series] {
					m.Values[i].Y = v.Y*scale + shift
				}
			}
			ev.Match = &m
			return ev, nil
		}),
	})
}

// Close releases every extension of the scene. Containers stay registered.
func (s *Scene) Close() error {
	var errs []error
	for i := len(s.Transforms) - 1; i >= 0; i-- {
		errs = append(errs, datacontainer.Release(s.Transforms[i]))
	}
	if s.Tooltip != nil {
		errs = append(errs, datacontainer.Release(s.Tooltip))
	}
	return errors.Join(errs...)
}

// ContainerTicks is the y-axis summary of one container.
type ContainerTicks struct {
	Container string
	Points    int
	Ticks     []datacontainer.Tick
}

// Ticks reports the y ticks of every container in config order.
func (s *Scene) Ticks() []ContainerTicks {
	out := make([]ContainerTicks, 0, len(s.Containers))
	for _, c := range s.Containers {
		out = append(out, ContainerTicks{Container: c.Name(), Points: c.PointCount(), Ticks: c.YTicks()})
	}
	return out
}
