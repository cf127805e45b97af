package config

// Config is the kanva CLI configuration (JSON or YAML).
type Config struct {
	Logging    LoggingConfig     `json:"logging"`
	Containers []ContainerConfig `json:"containers"`
	Tooltip    *TooltipConfig    `json:"tooltip,omitempty"`
	Transforms []TransformConfig `json:"transforms,omitempty"`
	Replay     ReplayConfig      `json:"replay,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    FileLogging `json:"file"`
}

type FileLogging struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ContainerConfig describes one data container.
//
// Example (YAML):
//
//	- name: energy
//	  y_bounds_extension: [0]
//	  x_axis: { grouped: true }
//	  y_axis: { tick_count: 8, approximate: true, divisor: 1000, unit: kWh }
//	  series:
//	    - { name: production, data: [1200, 3400] }
type ContainerConfig struct {
	Name             string         `json:"name"`
	YBoundsExtension []float64      `json:"y_bounds_extension,omitempty"`
	XAxis            XAxisConfig    `json:"x_axis,omitempty"`
	YAxis            YAxisConfig    `json:"y_axis,omitempty"`
	Series           []SeriesConfig `json:"series"`
}

type XAxisConfig struct {
	Grouped bool `json:"grouped,omitempty"`
}

// YAxisConfig controls tick generation. Labels are value/divisor followed by
// unit (divisor defaults to 1).
type YAxisConfig struct {
	TickCount   int     `json:"tick_count,omitempty"`
	Approximate bool    `json:"approximate,omitempty"`
	Divisor     float64 `json:"divisor,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

type SeriesConfig struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// TooltipConfig attaches one tooltip coordinator to the listed containers,
// in order. The first container backs the view.
type TooltipConfig struct {
	Containers []string `json:"containers"`
	OffsetX    float64  `json:"offset_x,omitempty"`
	OffsetY    float64  `json:"offset_y,omitempty"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height,omitempty"`
}

// TransformConfig attaches a transform to a container that rescales the
// tooltip values it sees: y' = y*scale + shift. Scale 0 means 1.
type TransformConfig struct {
	Name      string  `json:"name"`
	Container string  `json:"container"`
	Scale     float64 `json:"scale,omitempty"`
	Shift     float64 `json:"shift,omitempty"`
}

type ReplayConfig struct {
	RatePerSec float64 `json:"rate_per_sec,omitempty"`
	Burst      int     `json:"burst,omitempty"`
	// Timeout bounds a whole replay run, e.g. "30s". Empty means no limit.
	Timeout string `json:"timeout,omitempty"`
}
