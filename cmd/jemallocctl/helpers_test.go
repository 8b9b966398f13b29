// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/config"
	"github.com/wundergraph/go-jemalloc/internal/sim"
)

// runCommand executes jemallocctl with args against n and returns what it
// wrote to stdout.
func runCommand(t *testing.T, n jemalloc.Native, args ...string) (string, error) {
	t.Helper()

	stubs := gostub.Stub(&native, n)
	stubs.Stub(&cfg, config.Default())
	t.Cleanup(func() {
		stubs.Reset()
		resetFlags(rootCmd)
		jemalloc.SetLogger(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	return out.String(), err
}

// runSim is runCommand against a fresh simulated allocator.
func runSim(t *testing.T, args ...string) (string, *sim.Sim, error) {
	t.Helper()
	s := sim.New()
	out, err := runCommand(t, s, args...)
	return out, s, err
}

// resetFlags restores every flag to its default so that commands can be
// executed more than once per process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func decodeJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output is not JSON:\n%s", output)
	return result
}
