// Command varvm assembles, runs, disassembles and profiles programs for
// the variable-addressed virtual machine implemented by this module.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"varvm/internal/config"
)

const version = "0.1.0"

var (
	cfg       config.Config
	outPath   string
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:     "varvm",
	Short:   "Assembler, interpreter and tooling for the varvm bytecode VM",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, _ := config.Load()
		cfg = loaded
		if debugFlag {
			cfg.Debug = true
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "default run/asm-run into single-step debugger mode")
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(asmRunCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(listStdlibCmd)
	rootCmd.AddCommand(extractStdlibCmd)
	rootCmd.AddCommand(replCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
