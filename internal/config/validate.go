package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid config")

// Validate checks cross-references and required fields. Container names are
// matched exactly. All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	names := map[string]bool{}
	for i, c := range cfg.Containers {
		name := c.Name
		if strings.TrimSpace(name) == "" {
			bad("containers[%d].name is required", i)
			continue
		}
		if name != strings.TrimSpace(name) {
			bad("containers[%d].name %q has surrounding whitespace", i, name)
		}
		if names[name] {
			bad("containers[%d].name %q is duplicated", i, name)
		}
		names[name] = true
		if c.YAxis.TickCount < 0 {
			bad("containers[%d].y_axis.tick_count must be >= 0", i)
		}
		for j, s := range c.Series {
			if strings.TrimSpace(s.Name) == "" {
				bad("containers[%d].series[%d].name is required", i, j)
			}
		}
	}

	if t := cfg.Tooltip; t != nil {
		if len(t.Containers) == 0 {
			bad("tooltip.containers must list at least one container")
		}
		for _, name := range t.Containers {
			if !names[name] {
				bad("tooltip.containers: unknown container %q", name)
			}
		}
		if t.Width <= 0 {
			bad("tooltip.width must be > 0")
		}
	}

	for i, x := range cfg.Transforms {
		if strings.TrimSpace(x.Name) == "" {
			bad("transforms[%d].name is required", i)
		}
		if !names[x.Container] {
			bad("transforms[%d].container: unknown container %q", i, x.Container)
		}
	}

	if cfg.Replay.RatePerSec < 0 {
		bad("replay.rate_per_sec must be >= 0")
	}
	if _, err := ParseDurationField("replay.timeout", cfg.Replay.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}
