package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"varvm/internal/stdlib"
)

var listStdlibCmd = &cobra.Command{
	Use:   "list-stdlib",
	Short: "List the bundled standard library files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range stdlib.List() {
			fmt.Println(name)
		}
		return nil
	},
}

var extractStdlibCmd = &cobra.Command{
	Use:   "extract-stdlib <dir>",
	Short: "Write the bundled standard library files into dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		for _, name := range stdlib.List() {
			src, ok := stdlib.Get(name)
			if !ok {
				continue
			}
			dest := filepath.Join(dir, name)
			if err := os.WriteFile(dest, []byte(src), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
			fmt.Printf("extracted %s\n", dest)
		}
		return nil
	},
}
