package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"perflab/internal/window"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.List.ItemExtent != 35 {
		t.Errorf("Expected ItemExtent 35, got %v", cfg.List.ItemExtent)
	}
	if cfg.List.ItemCount != 10000 {
		t.Errorf("Expected ItemCount 10000, got %d", cfg.List.ItemCount)
	}
	if cfg.List.Overscan != 2 {
		t.Errorf("Expected Overscan 2, got %d", cfg.List.Overscan)
	}
	if cfg.List.ViewportExtent != 320 {
		t.Errorf("Expected ViewportExtent 320, got %v", cfg.List.ViewportExtent)
	}
	if !cfg.List.Virtualized {
		t.Error("Expected Virtualized to be true by default")
	}
	if cfg.List.MaxMaterialized != 100000 {
		t.Errorf("Expected MaxMaterialized 100000, got %d", cfg.List.MaxMaterialized)
	}
	if cfg.Telemetry.FlushInterval != 2*time.Second {
		t.Errorf("Expected FlushInterval 2s, got %v", cfg.Telemetry.FlushInterval)
	}
	if cfg.FrameInterval != 16*time.Millisecond {
		t.Errorf("Expected FrameInterval 16ms, got %v", cfg.FrameInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid default config",
			cfg:  DefaultConfig(),
		},
		{
			name:    "zero item extent",
			cfg:     DefaultConfig().WithItemExtent(0),
			wantErr: true,
		},
		{
			name:    "negative item count",
			cfg:     DefaultConfig().WithItemCount(-1),
			wantErr: true,
		},
		{
			name:    "negative overscan",
			cfg:     DefaultConfig().WithOverscan(-2),
			wantErr: true,
		},
		{
			name: "empty list is valid",
			cfg:  DefaultConfig().WithItemCount(0),
		},
		{
			name: "zero flush interval with telemetry enabled",
			cfg: func() Config {
				c := DefaultConfig()
				c.Telemetry.FlushInterval = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "zero flush interval with telemetry disabled",
			cfg: func() Config {
				c := DefaultConfig()
				c.Telemetry.Enabled = false
				c.Telemetry.FlushInterval = 0
				return c
			}(),
		},
		{
			name: "zero materialize limit",
			cfg: func() Config {
				c := DefaultConfig()
				c.List.MaxMaterialized = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "zero frame interval",
			cfg: func() Config {
				c := DefaultConfig()
				c.FrameInterval = 0
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigError_UnwrapsGeometryError(t *testing.T) {
	err := DefaultConfig().WithItemExtent(-1).Validate()

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if !errors.Is(err, window.ErrInvalidGeometry) {
		t.Errorf("expected error chain to contain ErrInvalidGeometry, got %v", err)
	}
}

func TestWithMethods_DoNotMutateReceiver(t *testing.T) {
	base := DefaultConfig()
	_ = base.WithItemCount(5).WithOverscan(9).WithVirtualized(false).WithTelemetryDSN("x.db")

	if base.List.ItemCount != 10000 || base.List.Overscan != 2 || !base.List.Virtualized || base.Telemetry.DSN != "" {
		t.Errorf("With* modified the receiver: %+v", base.List)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.List != DefaultConfig().List {
		t.Errorf("Expected default list config, got %+v", cfg.List)
	}
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perflab.yaml")
	content := []byte(`
list:
  item_count: 500
  overscan: 4
telemetry:
  flush_interval: 5s
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PERFLAB_LIST_ITEM_EXTENT", "20")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("overscan", 2, "")
	flags.String("log-level", "info", "")
	if err := flags.Parse([]string{"--overscan=6"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(flags, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.List.ItemCount != 500 {
		t.Errorf("Expected ItemCount 500 from file, got %d", cfg.List.ItemCount)
	}
	if cfg.List.ItemExtent != 20 {
		t.Errorf("Expected ItemExtent 20 from env, got %v", cfg.List.ItemExtent)
	}
	if cfg.List.Overscan != 6 {
		t.Errorf("Expected Overscan 6 from flag, got %d", cfg.List.Overscan)
	}
	if cfg.Telemetry.FlushInterval != 5*time.Second {
		t.Errorf("Expected FlushInterval 5s from file, got %v", cfg.Telemetry.FlushInterval)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected unchanged flag to keep default level, got %q", cfg.Log.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PERFLAB_LIST_ITEM_EXTENT", "0")

	_, err := Load(nil, "")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}
