package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"varvm/internal/bytecode"
	"varvm/internal/disasm"
	"varvm/internal/program"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <source.vasm|image.vbin>",
	Short: "Disassemble a source file or binary image to assembly text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := loadEitherFormat(args[0])
		if err != nil {
			return err
		}

		out := disasm.Disassemble(prog)
		if outPath == "" {
			fmt.Print(out)
			return nil
		}
		return os.WriteFile(outPath, []byte(out), 0o644)
	},
}

func init() {
	disasmCmd.Flags().StringVarP(&outPath, "out", "o", "", "write disassembly to a file instead of stdout")
}

// loadEitherFormat accepts either an assembled binary image or raw
// source text, trying the binary decoder first since it fails fast on
// text input (a bad magic number), then falling back to assembling.
func loadEitherFormat(path string) (*program.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if prog, decErr := bytecode.Decode(data); decErr == nil {
		return prog, nil
	}
	return assembleFile(path)
}
