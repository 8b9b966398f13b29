// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wundergraph/go-jemalloc/ctl"
)

var decayOnly bool

var purgeCmd = &cobra.Command{
	Use:   "purge [arena]",
	Short: "Return unused dirty pages to the operating system",
	Long: `Purge unused dirty pages of one arena, or of all arenas when none is
given. With --decay, only pages whose decay time has passed are purged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPurge(cmd, args)
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&decayOnly, "decay", false, "Purge only pages past their decay time")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	arena := uintptr(ctl.AllArenas)
	if len(args) == 1 {
		i, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid arena index %q", args[0])
		}
		arena = uintptr(i)
	}

	purge := ctl.PurgeArena
	if decayOnly {
		purge = ctl.DecayArena
	}
	if err := purge(native, arena); err != nil {
		return err
	}

	target := "all arenas"
	if arena != ctl.AllArenas {
		target = fmt.Sprintf("arena %d", arena)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", target)
	return nil
}
