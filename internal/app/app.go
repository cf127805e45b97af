package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"kanva/internal/config"
	"kanva/internal/eventbus"
	"kanva/internal/extension/tooltip"
	"kanva/internal/replay"
	"kanva/internal/runtime/supervisor"
	logx "kanva/pkg/logx"
)

var ErrNoTooltip = errors.New("no tooltip configured")

type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	scene   *Scene
	handler tooltip.EventHandler

	delivered atomic.Uint64
}

type Option func(*App)

// WithTooltipHandler receives every tooltip delivery after it was logged.
func WithTooltipHandler(h tooltip.EventHandler) Option {
	return func(a *App) { a.handler = h }
}

func New(cfgPath string, opts ...Option) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.NewService(loggingConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	a := &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     eventbus.New(),
	}
	for _, o := range opts {
		o(a)
	}

	scene, err := BuildScene(cfg, logSvc.Logger(), a.bus, a.onTooltip)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	a.scene = scene
	return a, nil
}

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func (a *App) Scene() *Scene { return a.scene }

func (a *App) Config() *config.Config { return a.cfgm.Get() }

// Delivered counts tooltip events handed to the handler.
func (a *App) Delivered() uint64 { return a.delivered.Load() }

func (a *App) onTooltip(ev tooltip.Event) {
	a.delivered.Add(1)
	if ev.Empty() {
		a.log.Info("tooltip hidden")
	} else {
		fields := []logx.Field{
			logx.Int("index", ev.Match.Index),
			logx.Float64("x", ev.Match.X),
		}
		for _, v := range ev.Match.Values {
			fields = append(fields, logx.Float64(v.Series, v.Y))
		}
		a.log.Info("tooltip", fields...)
	}
	if a.handler != nil {
		a.handler(ev)
	}
}

// Done is closed when the supervisor context is canceled.
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Start launches the notice logger and, with watch, config hot reload.
func (a *App) Start(ctx context.Context, watch bool) error {
	if a.sup != nil {
		return errors.New("app already started")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	notices, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case n, ok := <-notices:
				if !ok {
					return
				}
				a.log.Debug("notice",
					logx.String("kind", string(n.Kind)),
					logx.String("container", n.Container),
					logx.String("extension", n.Extension),
					logx.String("name", n.Name),
				)
			}
		}
	})

	if watch {
		a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
		sub := a.cfgm.Subscribe(8)
		a.sup.Go0("config.reload", func(c context.Context) {
			defer a.cfgm.Unsubscribe(sub)
			lastApplied := a.cfgm.Get()
			for {
				select {
				case <-c.Done():
					return
				case newCfg, ok := <-sub:
					if !ok {
						return
					}
					a.applyConfig(lastApplied, newCfg)
					lastApplied = newCfg
				}
			}
		})
		a.sup.Go("config.watch", func(c context.Context) error {
			return a.cfgm.Watch(c)
		})
	}

	a.log.Info("app started", logx.String("config", a.cfgPath), logx.Bool("watch", watch))
	return nil
}

// applyConfig applies the live parts of a reload. The scene itself is built
// once; changes to it need a restart.
func (a *App) applyConfig(prev, next *config.Config) {
	sections, _ := config.SummarizeConfigChange(prev, next)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	a.logs.Apply(loggingConfig(next))

	for _, s := range []string{"containers", "tooltip", "transforms"} {
		if slices.Contains(sections, s) {
			a.log.Warn("scene config changed; restart required for changes to take effect", logx.String("section", s))
		}
	}
	a.log.Info("config applied", logx.String("changed", strings.Join(sections, ",")))
}

// Replay feeds a pointer trace into the tooltip, paced by the replay config.
func (a *App) Replay(ctx context.Context, r io.Reader) (int, error) {
	if a.scene.Tooltip == nil {
		return 0, ErrNoTooltip
	}
	cfg := a.cfgm.Get()
	if d := cfg.ReplayTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	n, err := replay.Run(ctx, r, a.scene.Tooltip, replay.Options{
		RatePerSec: cfg.Replay.RatePerSec,
		Burst:      cfg.Replay.Burst,
		Log:        a.log.With(logx.String("comp", "replay")),
	})
	if err != nil {
		return n, fmt.Errorf("replay: %w", err)
	}
	if err := a.scene.Tooltip.Clear(); err != nil {
		return n, err
	}
	return n, nil
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	a.log.Info("stopping", logx.String("reason", string(reason)))

	var errs []error
	if a.sup != nil {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := a.sup.Stop(stopCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
		cancel()
	}
	if a.scene != nil {
		errs = append(errs, a.scene.Close())
	}

	a.log.Info("stopped",
		logx.Int64("tooltip_delivered", int64(a.delivered.Load())),
		logx.Int64("notices_dropped", int64(eventbus.Dropped(a.bus))),
	)
	if a.logs != nil {
		errs = append(errs, a.logs.Close())
	}
	return errors.Join(errs...)
}
