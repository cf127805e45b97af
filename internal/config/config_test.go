package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logging:
  level: debug
  console: true
containers:
  - name: energy
    y_bounds_extension: [0]
    x_axis: { grouped: true }
    y_axis: { tick_count: 8, approximate: true, divisor: 1000, unit: kWh }
    series:
      - { name: production, data: [1200, 3400, 800] }
      - { name: usage, data: [900, 1100, 1000] }
tooltip:
  containers: [energy]
  width: 300
transforms:
  - { name: kwh, container: energy, scale: 0.001 }
replay:
  rate_per_sec: 60
  timeout: 10s
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadYAML(t *testing.T) {
	m := NewConfigManager(writeFile(t, "kanva.yaml", sampleYAML))
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Same(t, cfg, m.Get())

	require.Len(t, cfg.Containers, 1)
	c := cfg.Containers[0]
	assert.Equal(t, "energy", c.Name)
	assert.True(t, c.XAxis.Grouped)
	assert.Equal(t, 8, c.YAxis.TickCount)
	assert.Equal(t, []float64{0}, c.YBoundsExtension)
	require.Len(t, c.Series, 2)
	assert.Equal(t, []float64{1200, 3400, 800}, c.Series[0].Data)

	require.NotNil(t, cfg.Tooltip)
	assert.Equal(t, []string{"energy"}, cfg.Tooltip.Containers)
	assert.Equal(t, 10*time.Second, cfg.ReplayTimeout())
}

func TestLoadJSON(t *testing.T) {
	m := NewConfigManager(writeFile(t, "kanva.json", `{"containers":[{"name":"a","series":[{"name":"s","data":[1,2]}]}]}`))
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Tooltip)
	assert.Equal(t, "a", cfg.Containers[0].Name)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	m := NewConfigManager(writeFile(t, "kanva.yaml", "containers: []\nbogus: 1\n"))
	_, err := m.Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestParseRejectsTrailingData(t *testing.T) {
	m := NewConfigManager(writeFile(t, "kanva.json", `{"containers":[]} {"containers":[]}`))
	_, err := m.Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing data")
}

func TestDecodeErrorsNameFormatAndPath(t *testing.T) {
	p := writeFile(t, "kanva.yaml", "containers: [\n")
	_, err := NewConfigManager(p).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml config "+p)

	p = writeFile(t, "kanva.yml", "# nothing here\n")
	_, err = NewConfigManager(p).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty document")

	p = writeFile(t, "kanva.json", `{"containers":`)
	_, err = NewConfigManager(p).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json config "+p)
}

func TestStringKeysConvertsNonStringKeys(t *testing.T) {
	in := map[string]any{
		"a": []any{map[any]any{1: "x", true: map[any]any{2.5: "y"}}},
	}
	out := stringKeys(in).(map[string]any)
	inner := out["a"].([]any)[0].(map[string]any)
	assert.Equal(t, "x", inner["1"])
	assert.Equal(t, map[string]any{"2.5": "y"}, inner["true"])
}

func TestLoadRunsValidation(t *testing.T) {
	body := `
containers:
  - { name: a, series: [{ name: "", data: [1] }] }
  - { name: a }
tooltip: { containers: [missing], width: 0 }
transforms: [{ name: t, container: nope }]
replay: { rate_per_sec: -1, timeout: soon }
`
	m := NewConfigManager(writeFile(t, "kanva.yaml", body))
	_, err := m.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{
		"series[0].name is required",
		`"a" is duplicated`,
		`unknown container "missing"`,
		"tooltip.width",
		`unknown container "nope"`,
		"rate_per_sec",
		"replay.timeout",
	} {
		assert.Contains(t, err.Error(), want)
	}
	assert.Nil(t, m.Get())
}

func TestValidateMatchesContainerNamesExactly(t *testing.T) {
	cfg := &Config{
		Containers: []ContainerConfig{{Name: "energy "}},
		Tooltip:    &TooltipConfig{Containers: []string{"energy"}, Width: 10},
	}
	err := Validate(cfg)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "surrounding whitespace")
	assert.Contains(t, err.Error(), `unknown container "energy"`)

	cfg.Containers[0].Name = "energy"
	assert.NoError(t, Validate(cfg))
}

func TestLoadRunsCustomValidator(t *testing.T) {
	m := NewConfigManager(writeFile(t, "kanva.yaml", sampleYAML))
	boom := errors.New("boom")
	m.SetValidator(func(ctx context.Context, cfg *Config) error { return boom })
	_, err := m.Load()
	assert.ErrorIs(t, err, boom)
}

func TestPublishKeepsLatest(t *testing.T) {
	m := NewConfigManager("unused.yaml")
	ch := m.Subscribe(1)
	a, b := &Config{}, &Config{}
	m.publish(a)
	m.publish(b)
	assert.Same(t, b, <-ch)

	m.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestWatchPublishesChanges(t *testing.T) {
	p := writeFile(t, "kanva.yaml", sampleYAML)
	m := NewConfigManager(p)
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Watch(ctx)
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(p, []byte(replaceLevel(sampleYAML, "warn")), 0o600))

	select {
	case cfg := <-ch:
		assert.Equal(t, "warn", cfg.Logging.Level)
	case <-time.After(3 * time.Second):
		t.Fatal("no config published")
	}
	cancel()
	<-done
}

func replaceLevel(s, level string) string {
	return "logging:\n  level: " + level + "\n" + s[len("\nlogging:\n  level: debug\n"):]
}

func TestSummarizeConfigChange(t *testing.T) {
	oldCfg := &Config{
		Logging:    LoggingConfig{Level: "info"},
		Containers: []ContainerConfig{{Name: "a"}, {Name: "b"}},
	}
	newCfg := &Config{
		Logging:    LoggingConfig{Level: "info"},
		Containers: []ContainerConfig{{Name: "a", XAxis: XAxisConfig{Grouped: true}}, {Name: "c"}},
		Tooltip:    &TooltipConfig{Containers: []string{"a"}, Width: 10},
	}
	changed, fields := SummarizeConfigChange(oldCfg, newCfg)
	assert.Equal(t, []string{"containers", "tooltip"}, changed)
	assert.NotEmpty(t, fields)
	assert.Equal(t, []string{"a", "b", "c"}, diffContainers(oldCfg.Containers, newCfg.Containers))

	changed, _ = SummarizeConfigChange(newCfg, newCfg)
	assert.Empty(t, changed)
}
