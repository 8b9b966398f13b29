// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wundergraph/go-jemalloc/ctl"
)

var statsOpts string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print allocator statistics",
	Long: `Print the global allocator statistics after refreshing them.

Without --opts a short summary is printed. With --opts the full
malloc_stats_print report is written, filtered by the given option
characters (for example "J" for JSON or "gba" to omit general, bin and
arena sections).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsOpts, "opts", "", "malloc_stats_print options")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if cmd.Flags().Changed("opts") {
		fmt.Fprint(out, native.StatsPrint(statsOpts))
		return nil
	}

	s, err := ctl.ReadStats(native)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(out, map[string]any{
			"epoch":     s.Epoch,
			"allocated": s.Allocated,
			"active":    s.Active,
			"metadata":  s.Metadata,
			"resident":  s.Resident,
			"mapped":    s.Mapped,
			"retained":  s.Retained,
		})
	}
	fmt.Fprintf(out, "Epoch:     %d\n", s.Epoch)
	fmt.Fprintf(out, "Allocated: %s\n", formatBytes(s.Allocated))
	fmt.Fprintf(out, "Active:    %s\n", formatBytes(s.Active))
	fmt.Fprintf(out, "Metadata:  %s\n", formatBytes(s.Metadata))
	fmt.Fprintf(out, "Resident:  %s\n", formatBytes(s.Resident))
	fmt.Fprintf(out, "Mapped:    %s\n", formatBytes(s.Mapped))
	fmt.Fprintf(out, "Retained:  %s\n", formatBytes(s.Retained))
	return nil
}

func formatBytes(n uintptr) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := uint64(n) / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
