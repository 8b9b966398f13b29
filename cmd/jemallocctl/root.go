// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/config"
)

var (
	// Global flags
	configPath string
	logLevel   string
	jsonOut    bool

	cfg    = config.Default()
	native = jemalloc.Default()
)

var rootCmd = &cobra.Command{
	Use:   "jemallocctl",
	Short: "Inspect and tune the jemalloc allocator",
	Long: `jemallocctl reads and writes jemalloc's mallctl controls, prints
allocator statistics and serves them as Prometheus metrics.

Controls are named by their dotted mallctl path, such as stats.allocated or
arenas.bin.3.size.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	jemalloc.SetLogger(logger)
	return nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
