package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"varvm/internal/assembler"
	"varvm/internal/bytecode"
	"varvm/internal/program"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <source.vasm>",
	Short: "Assemble a source file into a binary image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(args[0], outPath)
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path for the binary image (default: <source>.vbin)")
}

func runAssemble(sourcePath, out string) error {
	prog, err := assembleFile(sourcePath)
	if err != nil {
		return err
	}

	data, err := bytecode.Encode(prog)
	if err != nil {
		return fmt.Errorf("encode binary image: %w", err)
	}

	if out == "" {
		out = sourcePath + ".vbin"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Printf("Assembled %s -> %s (%d bytes, %d instructions)\n", sourcePath, out, len(data), len(prog.Instructions))
	return nil
}

// assembleFile reads sourcePath and assembles it, resolving includes
// through cliLoader (bundled stdlib first, then disk).
func assembleFile(sourcePath string) (*program.Program, error) {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	loader := newCLILoader(cfg.StdlibDir)
	prog, err := assembler.New(loader).Assemble(sourcePath, string(src))
	if err != nil {
		return nil, err
	}
	return prog, nil
}
