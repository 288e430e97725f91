// Package replconsole is an interactive line-oriented front-end over
// internal/debugger, the `varvm repl` subcommand's implementation.
package replconsole

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"varvm/internal/debugger"
	"varvm/internal/vm"
)

// Console drives a debugger session, reading commands from in and
// writing prompts/output to out.
type Console struct {
	debugger *debugger.Debugger
	in       *bufio.Reader
	out      io.Writer
}

// New returns a Console over in/out with a fresh debug session.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		debugger: debugger.New(),
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Run drives m to completion, prompting for commands whenever the
// session is paused and stepping/continuing in between.
func (c *Console) Run(m *vm.VM) error {
	fmt.Fprintf(c.out, "varvm Debugger (session %s)\n", c.debugger.SessionID)
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	for m.Running() {
		if c.debugger.IsPaused() {
			cont, err := c.promptCommand(m)
			if err != nil {
				fmt.Fprintf(c.out, "Error: %s\n", err)
				continue
			}
			if !cont {
				return nil
			}
			continue
		}

		running, err := c.debugger.RunUntilPause(m)
		if err != nil {
			return err
		}
		if running {
			c.showCurrentInstruction(m)
		}
	}

	fmt.Fprintln(c.out, "Program completed")
	return nil
}

func (c *Console) promptCommand(m *vm.VM) (bool, error) {
	fmt.Fprint(c.out, "(vdb) ")
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read line: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return true, nil
	}

	cmd, err := parseCommand(line)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %s\n", err)
		return true, nil
	}
	if cmd.Kind == debugger.Quit {
		fmt.Fprintln(c.out, "Exiting debugger")
		return false, nil
	}

	result, err := c.debugger.Execute(m, cmd)
	if err != nil {
		return true, err
	}
	if result != "" {
		fmt.Fprintln(c.out, result)
	}
	return true, nil
}

func parseCommand(input string) (debugger.Command, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return debugger.Command{}, fmt.Errorf("empty command")
	}

	switch parts[0] {
	case "step", "s":
		return debugger.Command{Kind: debugger.Step}, nil
	case "next", "n":
		return debugger.Command{Kind: debugger.Next}, nil
	case "continue", "c":
		return debugger.Command{Kind: debugger.Continue}, nil
	case "finish", "f":
		return debugger.Command{Kind: debugger.Finish}, nil
	case "break", "b":
		if len(parts) < 2 {
			return debugger.Command{}, fmt.Errorf("break requires an argument (IP or function name)")
		}
		if ip, err := strconv.Atoi(parts[1]); err == nil {
			return debugger.Command{Kind: debugger.Break, IP: ip}, nil
		}
		return debugger.Command{Kind: debugger.BreakFunction, Arg: parts[1]}, nil
	case "delete", "del":
		if len(parts) < 2 {
			return debugger.Command{}, fmt.Errorf("delete requires an IP argument")
		}
		ip, err := strconv.Atoi(parts[1])
		if err != nil {
			return debugger.Command{}, fmt.Errorf("invalid IP number")
		}
		return debugger.Command{Kind: debugger.DeleteBreakpoint, IP: ip}, nil
	case "list":
		return debugger.Command{Kind: debugger.ListBreakpoints}, nil
	case "print", "p":
		if len(parts) < 2 {
			return debugger.Command{}, fmt.Errorf("print requires a variable name")
		}
		return debugger.Command{Kind: debugger.Print, Arg: parts[1]}, nil
	case "locals":
		return debugger.Command{Kind: debugger.Locals}, nil
	case "globals":
		return debugger.Command{Kind: debugger.Globals}, nil
	case "backtrace", "bt":
		return debugger.Command{Kind: debugger.Backtrace}, nil
	case "disasm", "d":
		return debugger.Command{Kind: debugger.Disasm}, nil
	case "registers", "r":
		return debugger.Command{Kind: debugger.Registers}, nil
	case "listsrc", "l":
		return debugger.Command{Kind: debugger.List}, nil
	case "help", "h":
		return debugger.Command{Kind: debugger.Help}, nil
	case "quit", "q":
		return debugger.Command{Kind: debugger.Quit}, nil
	default:
		return debugger.Command{}, fmt.Errorf("unknown command: %s", parts[0])
	}
}

func (c *Console) showCurrentInstruction(m *vm.VM) {
	ip := m.IP()
	instr, ok := m.CurrentInstruction(ip)
	if !ok {
		return
	}
	fmt.Fprintf(c.out, "=> %4d %T\n", ip, instr)
}
