package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"varvm/internal/profiler"
	"varvm/internal/vm"
)

var (
	profileTopN  int
	profileFmt   string
)

var profileCmd = &cobra.Command{
	Use:   "profile <source.vasm>",
	Short: "Run a program under the instruction profiler and report hot spots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := assembleFile(args[0])
		if err != nil {
			return err
		}

		p := profiler.New()
		m := vm.New(prog, p.Option())
		p.Start()
		runErr := m.Run()
		p.Stop()
		if runErr != nil {
			return runErr
		}

		var report string
		switch profileFmt {
		case "yaml":
			report, err = p.Data().ReportYAML(profileTopN)
			if err != nil {
				return err
			}
		default:
			report = p.Data().Report(profileTopN)
		}

		out := outPath
		if out == "" {
			ext := "txt"
			if profileFmt == "yaml" {
				ext = "yaml"
			}
			out = fmt.Sprintf("profile-%s.%s", uuid.NewString(), ext)
		}
		if err := os.WriteFile(out, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("Profile report written to %s\n", out)
		return nil
	},
}

func init() {
	profileCmd.Flags().IntVar(&profileTopN, "top", 10, "number of entries to show per report section")
	profileCmd.Flags().StringVar(&profileFmt, "format", "text", "report format: text or yaml")
	profileCmd.Flags().StringVarP(&outPath, "out", "o", "", "path of the report file (default: profile-<uuid>.txt, or .yaml with --format yaml)")
}
