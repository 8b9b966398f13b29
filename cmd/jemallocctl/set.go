// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wundergraph/go-jemalloc/internal/logutil"
)

var setType string

var setCmd = &cobra.Command{
	Use:   "set <control> [value]",
	Short: "Write a mallctl control",
	Long: `Write a value to a mallctl control and print the value it replaced.
Controls that take no value, such as arena.<i>.purge, are triggered.

Example:
  jemallocctl set background_thread true
  jemallocctl set arena.4096.decay`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet(cmd, args)
	},
}

func init() {
	setCmd.Flags().StringVarP(&setType, "type", "t", "", "Value type: bool, u32, u64, size or void")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	path, value := args[0], ""
	if len(args) == 2 {
		value = args[1]
	}
	k, err := lookupKind(path, setType)
	if err != nil {
		return err
	}
	if k != kindVoid && len(args) != 2 {
		return fmt.Errorf("%s needs a value", path)
	}

	old, err := writeControl(native, path, k, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logutil.Info("wrote control", zap.String("control", path), zap.String("value", value))

	out := cmd.OutOrStdout()
	if jsonOut {
		if k == kindVoid {
			return printJSON(out, map[string]any{"control": path})
		}
		return printJSON(out, map[string]any{"control": path, "old": old, "new": value})
	}
	if k == kindVoid {
		fmt.Fprintf(out, "%s: done\n", path)
		return nil
	}
	fmt.Fprintf(out, "%s: %v -> %s\n", path, old, value)
	return nil
}
