// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getType string

var getCmd = &cobra.Command{
	Use:   "get <control>...",
	Short: "Read mallctl controls",
	Long: `Read one or more mallctl controls and print their values.

The value type of well-known controls is inferred; pass --type for others.

Example:
  jemallocctl get version opt.narenas
  jemallocctl get arenas.bin.0.size --json
  jemallocctl get opt.metadata_thp --type string`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd, args)
	},
}

func init() {
	getCmd.Flags().StringVarP(&getType, "type", "t", "", "Value type: bool, u32, u64, size or string")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	values := make(map[string]any, len(args))
	for _, path := range args {
		k, err := lookupKind(path, getType)
		if err != nil {
			return err
		}
		v, err := readControl(native, path, k)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		values[path] = v
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, values)
	}
	for _, path := range args {
		fmt.Fprintf(out, "%s: %v\n", path, values[path])
	}
	return nil
}
