package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// PERFLAB_LIST_ITEM_COUNT=500.
const EnvPrefix = "perflab"

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"item-extent":     "list.item_extent",
	"item-count":      "list.item_count",
	"overscan":        "list.overscan",
	"viewport-extent": "list.viewport_extent",
	"virtualized":     "list.virtualized",
	"telemetry":       "telemetry.enabled",
	"telemetry-dsn":   "telemetry.dsn",
	"log-level":       "log.level",
	"log-file":        "log.file",
}

// Load resolves the configuration from, in increasing precedence: defaults,
// the config file (explicit path, or perflab.yaml in the user config dir or
// the working directory), PERFLAB_* environment variables and changed flags.
// flags may be nil.
func Load(flags *pflag.FlagSet, path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("perflab")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "perflab"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless it was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("list.item_extent", d.List.ItemExtent)
	v.SetDefault("list.item_count", d.List.ItemCount)
	v.SetDefault("list.overscan", d.List.Overscan)
	v.SetDefault("list.viewport_extent", d.List.ViewportExtent)
	v.SetDefault("list.virtualized", d.List.Virtualized)
	v.SetDefault("list.max_materialized", d.List.MaxMaterialized)

	v.SetDefault("budget.materialized_nodes.warning", d.Budget.MaterializedNodes.Warning)
	v.SetDefault("budget.materialized_nodes.critical", d.Budget.MaterializedNodes.Critical)
	v.SetDefault("budget.compute_ms.warning", d.Budget.ComputeMillis.Warning)
	v.SetDefault("budget.compute_ms.critical", d.Budget.ComputeMillis.Critical)
	v.SetDefault("budget.fps.warning", d.Budget.FrameRate.Warning)
	v.SetDefault("budget.fps.critical", d.Budget.FrameRate.Critical)
	v.SetDefault("budget.window_ratio.warning", d.Budget.WindowRatio.Warning)
	v.SetDefault("budget.window_ratio.critical", d.Budget.WindowRatio.Critical)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.dsn", d.Telemetry.DSN)
	v.SetDefault("telemetry.flush_interval", d.Telemetry.FlushInterval)
	v.SetDefault("telemetry.buffer_size", d.Telemetry.BufferSize)
	v.SetDefault("telemetry.threads", d.Telemetry.Threads)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("sample_interval", d.SampleInterval)
	v.SetDefault("frame_interval", d.FrameInterval)
	v.SetDefault("console_lines", d.ConsoleLines)
}
