package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses an optional non-negative duration. Empty means 0.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ReplayTimeout returns the parsed replay timeout (0 when unset or invalid;
// Validate reports invalid values).
func (c *Config) ReplayTimeout() time.Duration {
	d, _ := ParseDurationField("replay.timeout", c.Replay.Timeout)
	return d
}
