package main

import (
	"os"

	"github.com/spf13/cobra"

	"varvm/internal/replconsole"
	"varvm/internal/vm"
)

var replCmd = &cobra.Command{
	Use:   "repl <source.vasm>",
	Short: "Assemble a source file and step through it in the interactive debugger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := assembleFile(args[0])
		if err != nil {
			return err
		}
		m := vm.New(prog)
		if err := m.Start(); err != nil {
			return err
		}
		console := replconsole.New(os.Stdin, os.Stdout)
		return console.Run(m)
	},
}
