// Package replay feeds recorded pointer traces into a tooltip coordinator.
//
// A trace is JSON Lines, one {"x": .., "y": ..} sample per line. Blank lines
// and lines starting with '#' are skipped. Samples are paced by a token
// bucket so a recorded burst does not flood the coordinator's handler.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/time/rate"

	"kanva/internal/datacontainer"
	logx "kanva/pkg/logx"
)

// Positioner is the part of the tooltip coordinator a replay drives.
type Positioner interface {
	SetPosition(p datacontainer.Point) error
}

type Options struct {
	// RatePerSec limits samples per second. <= 0 means unlimited.
	RatePerSec float64
	Burst      int
	Log        logx.Logger
}

// NewLimiter builds the limiter described by o.
func (o Options) NewLimiter() *rate.Limiter {
	if o.RatePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(o.RatePerSec), max(1, o.Burst))
}

// Run replays every sample in r into target and returns how many were fed.
// It stops at the first malformed line, the first SetPosition error, or when
// ctx is done.
func Run(ctx context.Context, r io.Reader, target Positioner, opts Options) (int, error) {
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	lim := opts.NewLimiter()

	sc := bufio.NewScanner(r)
	line, n := 0, 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var p datacontainer.Point
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return n, fmt.Errorf("replay line %d: %w", line, err)
		}
		if err := lim.Wait(ctx); err != nil {
			return n, err
		}
		if err := target.SetPosition(p); err != nil {
			return n, fmt.Errorf("replay line %d: %w", line, err)
		}
		n++
		log.Trace("replayed sample", logx.Int("line", line), logx.Float64("x", p.X), logx.Float64("y", p.Y))
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	log.Debug("replay finished", logx.Int("samples", n))
	return n, nil
}
