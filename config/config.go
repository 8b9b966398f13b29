// SPDX-License-Identifier: Apache-2.0

// Package config loads the TOML configuration of jemallocctl and of
// programs embedding this module, and applies its allocator section to a
// running allocator.
//
//	[allocator]
//	background_thread = true
//	max_background_threads = 4
//	purge_on_start = false
//
//	[metrics]
//	namespace = "jemalloc"
//	address = ":9464"
//
//	[log]
//	level = "info"
//	format = "console"
//	file = ""
//	max_size_mb = 100
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/ctl"
	"github.com/wundergraph/go-jemalloc/internal/logutil"
	"github.com/wundergraph/go-jemalloc/metrics"
)

// Config is the root of the configuration file.
type Config struct {
	Allocator Allocator         `toml:"allocator"`
	Metrics   Metrics           `toml:"metrics"`
	Log       logutil.LogConfig `toml:"log"`
}

// Allocator holds the run-time tunable controls. Unset values leave the
// allocator's setting alone.
type Allocator struct {
	BackgroundThread     *bool   `toml:"background_thread"`
	MaxBackgroundThreads *uint64 `toml:"max_background_threads"`

	// PurgeOnStart purges every arena once the other settings are applied.
	PurgeOnStart bool `toml:"purge_on_start"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Namespace string `toml:"namespace"`
	Address   string `toml:"address"`
}

// maxThreadLimit is the largest max_background_threads the size_t control
// can hold.
var maxThreadLimit = uint64(^uintptr(0))

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Metrics: Metrics{
			Namespace: metrics.DefaultNamespace,
			Address:   ":9464",
		},
		Log: logutil.LogConfig{
			Level:   "info",
			Format:  "console",
			MaxSize: 100,
		},
	}
}

// Load reads the file at path over Default(). Unknown keys are an error, so
// that a misspelt setting does not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the allocator would reject.
func (cfg *Config) Validate() error {
	if err := cfg.Allocator.validate(); err != nil {
		return err
	}
	if cfg.Log.MaxSize < 0 {
		return fmt.Errorf("log.max_size_mb must not be negative")
	}
	return nil
}

func (a *Allocator) validate() error {
	if n := a.MaxBackgroundThreads; n != nil {
		if *n == 0 {
			return fmt.Errorf("allocator.max_background_threads must be positive")
		}
		if *n > maxThreadLimit {
			return fmt.Errorf("allocator.max_background_threads %d exceeds %d", *n, maxThreadLimit)
		}
	}
	return nil
}

// Apply writes the allocator section to n. The thread limit is written
// before background threads are enabled so that they start within it.
func (a *Allocator) Apply(n jemalloc.Native) error {
	if a.MaxBackgroundThreads != nil {
		if *a.MaxBackgroundThreads > maxThreadLimit {
			return fmt.Errorf("set %s: %d exceeds %d", ctl.MaxBackgroundThreads.Name(), *a.MaxBackgroundThreads, maxThreadLimit)
		}
		v := uintptr(*a.MaxBackgroundThreads)
		if err := ctl.MaxBackgroundThreads.Write(n, v); err != nil {
			return fmt.Errorf("set %s: %w", ctl.MaxBackgroundThreads.Name(), err)
		}
		logutil.Info("applied allocator setting", zap.Stringer("control", ctl.MaxBackgroundThreads.Name()), zap.Uint64("value", uint64(v)))
	}
	if a.BackgroundThread != nil {
		if err := ctl.BackgroundThread.Write(n, *a.BackgroundThread); err != nil {
			return fmt.Errorf("set %s: %w", ctl.BackgroundThread.Name(), err)
		}
		logutil.Info("applied allocator setting", zap.Stringer("control", ctl.BackgroundThread.Name()), zap.Bool("value", *a.BackgroundThread))
	}
	if a.PurgeOnStart {
		if err := ctl.PurgeArena(n, ctl.AllArenas); err != nil {
			return fmt.Errorf("purge arenas: %w", err)
		}
		logutil.Info("purged all arenas")
	}
	return nil
}
