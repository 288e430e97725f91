package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"varvm/internal/bytecode"
	"varvm/internal/program"
	"varvm/internal/replconsole"
	"varvm/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run <image.vbin>",
	Short: "Run an already-assembled binary image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		prog, err := bytecode.Decode(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}
		return runProgramOrDebug(prog)
	},
}

var asmRunCmd = &cobra.Command{
	Use:   "asm-run <source.vasm>",
	Short: "Assemble and immediately run a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := assembleFile(args[0])
		if err != nil {
			return err
		}
		return runProgramOrDebug(prog)
	},
}

func runProgramOrDebug(prog *program.Program) error {
	m := vm.New(prog)
	if cfg.Debug {
		if err := m.Start(); err != nil {
			return err
		}
		console := replconsole.New(os.Stdin, os.Stdout)
		if err := console.Run(m); err != nil {
			return err
		}
		fmt.Printf("Exit code: %d\n", m.ExitCode())
		return nil
	}

	if err := m.Run(); err != nil {
		return err
	}
	os.Exit(m.ExitCode())
	return nil
}
