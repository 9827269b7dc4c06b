package config

import (
	"fmt"
	"time"

	"perflab/internal/window"
)

// List is the per-list configuration surface: set once, turned into an
// immutable window.Geometry.
type List struct {
	ItemExtent     float64 `mapstructure:"item_extent"`     // Extent of one item in layout units (default: 35)
	ItemCount      int     `mapstructure:"item_count"`      // Number of items in the collection (default: 10000)
	Overscan       int     `mapstructure:"overscan"`        // Extra items on each side of the window (default: 2)
	ViewportExtent float64 `mapstructure:"viewport_extent"` // Viewport extent for headless queries (default: 320)
	Virtualized    bool    `mapstructure:"virtualized"`     // Start with windowing enabled (default: true)

	MaxMaterialized int `mapstructure:"max_materialized"` // Items one MCP materialize call may build (default: 100000)
}

// Geometry builds the window.Geometry described by l.
func (l List) Geometry() (window.Geometry, error) {
	return window.NewGeometry(l.ItemExtent, l.ItemCount)
}

// Thresholds defines warning and critical levels for one frame-budget check.
type Thresholds struct {
	Warning  float64 `mapstructure:"warning"`
	Critical float64 `mapstructure:"critical"`
}

// Budget holds the thresholds a render pass is judged against.
type Budget struct {
	MaterializedNodes Thresholds `mapstructure:"materialized_nodes"`
	ComputeMillis     Thresholds `mapstructure:"compute_ms"`
	FrameRate         Thresholds `mapstructure:"fps"` // lower is worse
	WindowRatio       Thresholds `mapstructure:"window_ratio"`
}

// Telemetry configures the DuckDB render-pass store.
type Telemetry struct {
	Enabled       bool          `mapstructure:"enabled"`        // Record render passes (default: true)
	DSN           string        `mapstructure:"dsn"`            // DuckDB DSN, empty for in-memory (default: "")
	FlushInterval time.Duration `mapstructure:"flush_interval"` // How often buffered passes are written (default: 2s)
	BufferSize    int           `mapstructure:"buffer_size"`    // Passes held before new ones are dropped (default: 1024)
	Threads       int           `mapstructure:"threads"`        // DuckDB threads, 0 for default
}

// Log configures the charmbracelet logger.
type Log struct {
	Level string `mapstructure:"level"` // debug, info, warn, error (default: info)
	File  string `mapstructure:"file"`  // Log file for the TUI, empty discards (default: "")
}

// Config is the complete application configuration.
// Use DefaultConfig() to get sensible defaults, then override as needed.
type Config struct {
	List      List      `mapstructure:"list"`
	Budget    Budget    `mapstructure:"budget"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	Log       Log       `mapstructure:"log"`

	// Host polling
	SampleInterval time.Duration `mapstructure:"sample_interval"` // Process sampling and stats refresh (default: 1s)
	FrameInterval  time.Duration `mapstructure:"frame_interval"`  // Paint opportunity / animation tick (default: 16ms)
	ConsoleLines   int           `mapstructure:"console_lines"`   // Pass log lines kept by the TUI (default: 200)
}

// DefaultConfig returns a Config matching the demo list: 10,000 items of 35
// units in a 320 unit viewport with an overscan of 2.
func DefaultConfig() Config {
	return Config{
		List: List{
			ItemExtent:     35,
			ItemCount:      10000,
			Overscan:       2,
			ViewportExtent: 320,
			Virtualized:    true,

			MaxMaterialized: 100000,
		},
		Budget: Budget{
			MaterializedNodes: Thresholds{Warning: 200, Critical: 1000},
			ComputeMillis:     Thresholds{Warning: 8, Critical: 16.7},
			FrameRate:         Thresholds{Warning: 60, Critical: 30},
			WindowRatio:       Thresholds{Warning: 10, Critical: 50},
		},
		Telemetry: Telemetry{
			Enabled:       true,
			DSN:           "",
			FlushInterval: 2 * time.Second,
			BufferSize:    1024,
		},
		Log: Log{
			Level: "info",
		},

		SampleInterval: 1 * time.Second,
		FrameInterval:  16 * time.Millisecond,
		ConsoleLines:   200,
	}
}

// WithItemCount returns a copy of the config with a different collection size.
func (c Config) WithItemCount(n int) Config {
	c.List.ItemCount = n
	return c
}

// WithItemExtent returns a copy of the config with a different item extent.
func (c Config) WithItemExtent(extent float64) Config {
	c.List.ItemExtent = extent
	return c
}

// WithOverscan returns a copy of the config with a different overscan.
func (c Config) WithOverscan(n int) Config {
	c.List.Overscan = n
	return c
}

// WithVirtualized returns a copy of the config with windowing enabled/disabled.
func (c Config) WithVirtualized(enabled bool) Config {
	c.List.Virtualized = enabled
	return c
}

// WithTelemetryDSN returns a copy of the config writing telemetry to dsn.
func (c Config) WithTelemetryDSN(dsn string) Config {
	c.Telemetry.DSN = dsn
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	if _, err := c.List.Geometry(); err != nil {
		return &ConfigError{Field: "list", Message: err.Error(), Err: err}
	}
	if c.List.Overscan < 0 {
		return &ConfigError{Field: "list.overscan", Message: "must not be negative"}
	}
	if c.List.ViewportExtent <= 0 {
		return &ConfigError{Field: "list.viewport_extent", Message: "must be positive"}
	}
	if c.List.MaxMaterialized <= 0 {
		return &ConfigError{Field: "list.max_materialized", Message: "must be positive"}
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.FlushInterval <= 0 {
			return &ConfigError{Field: "telemetry.flush_interval", Message: "must be positive"}
		}
		if c.Telemetry.BufferSize <= 0 {
			return &ConfigError{Field: "telemetry.buffer_size", Message: "must be positive"}
		}
	}
	if c.SampleInterval <= 0 {
		return &ConfigError{Field: "sample_interval", Message: "must be positive"}
	}
	if c.FrameInterval <= 0 {
		return &ConfigError{Field: "frame_interval", Message: "must be positive"}
	}
	if c.ConsoleLines <= 0 {
		return &ConfigError{Field: "console_lines", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
