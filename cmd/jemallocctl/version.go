// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/ctl"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command) error {
	jeVersion, err := ctl.Version.Read(native)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, map[string]any{
			"version":  version,
			"commit":   commit,
			"date":     date,
			"jemalloc": jeVersion,
			"linked":   jemalloc.Linked,
		})
	}
	fmt.Fprintf(out, "jemallocctl %s\n", version)
	fmt.Fprintf(out, "  commit:   %s\n", commit)
	fmt.Fprintf(out, "  built:    %s\n", date)
	fmt.Fprintf(out, "  jemalloc: %s", jeVersion)
	if !jemalloc.Linked {
		fmt.Fprint(out, " (simulated)")
	}
	fmt.Fprintln(out)
	return nil
}
