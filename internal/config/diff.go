package config

import (
	"reflect"
	"sort"
	"strings"

	logx "kanva/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections and
// structured attrs for logging the reload.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if names := diffContainers(oldCfg.Containers, newCfg.Containers); len(names) > 0 {
		changed = append(changed, "containers")
		attrs = append(attrs,
			logx.Int("containers.count", len(newCfg.Containers)),
			logx.Any("containers.changed", names),
		)
	}

	if !reflect.DeepEqual(oldCfg.Tooltip, newCfg.Tooltip) {
		changed = append(changed, "tooltip")
		attrs = append(attrs, logx.Bool("tooltip.enabled", newCfg.Tooltip != nil))
		if t := newCfg.Tooltip; t != nil {
			attrs = append(attrs, logx.Int("tooltip.containers", len(t.Containers)))
		}
	}

	if !reflect.DeepEqual(oldCfg.Transforms, newCfg.Transforms) {
		changed = append(changed, "transforms")
		attrs = append(attrs, logx.Int("transforms.count", len(newCfg.Transforms)))
	}

	if oldCfg.Replay != newCfg.Replay {
		changed = append(changed, "replay")
		attrs = append(attrs,
			logx.Float64("replay.rate_per_sec", newCfg.Replay.RatePerSec),
			logx.Int("replay.burst", newCfg.Replay.Burst),
			logx.String("replay.timeout", strings.TrimSpace(newCfg.Replay.Timeout)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

// diffContainers returns the sorted names of containers that were added,
// removed or modified.
func diffContainers(oldL, newL []ContainerConfig) []string {
	oldM := make(map[string]ContainerConfig, len(oldL))
	for _, c := range oldL {
		oldM[c.Name] = c
	}
	newM := make(map[string]ContainerConfig, len(newL))
	for _, c := range newL {
		newM[c.Name] = c
	}

	out := make([]string, 0)
	for name, n := range newM {
		o, ok := oldM[name]
		if !ok || !reflect.DeepEqual(o, n) {
			out = append(out, name)
		}
	}
	for name := range oldM {
		if _, ok := newM[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
