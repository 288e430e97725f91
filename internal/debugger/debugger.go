// Package debugger implements an interactive step/breakpoint controller
// over a running vm.VM, driven by a sequence of Commands.
package debugger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"varvm/internal/disasm"
	"varvm/internal/vm"
)

// CommandKind identifies which debugger command was issued.
type CommandKind int

const (
	Step CommandKind = iota
	Next
	Continue
	Finish
	Break
	BreakFunction
	DeleteBreakpoint
	ListBreakpoints
	Print
	Locals
	Globals
	Backtrace
	Disasm
	Registers
	List
	Help
	Quit
)

// Command is one parsed debugger command line; Arg and IP are populated
// depending on Kind (Print/BreakFunction use Arg, Break/DeleteBreakpoint
// use IP).
type Command struct {
	Kind CommandKind
	Arg  string
	IP   int
}

// Debugger tracks pause state, single-step/step-over/finish targets and
// breakpoints for one debug session.
type Debugger struct {
	SessionID string

	paused       bool
	stepMode     bool
	nextDepth    *int
	finishDepth  *int
	breakpoints  map[int]bool
}

// New starts a new, paused debug session with a fresh session ID.
func New() *Debugger {
	return &Debugger{
		SessionID:   uuid.NewString(),
		paused:      true,
		breakpoints: make(map[int]bool),
	}
}

// IsPaused reports whether the session is currently paused.
func (d *Debugger) IsPaused() bool { return d.paused }

func (d *Debugger) pause()  { d.paused = true }
func (d *Debugger) resume() { d.paused = false }

// Execute applies cmd against m, returning a human-readable result line
// or an error for the REPL to display.
func (d *Debugger) Execute(m *vm.VM, cmd Command) (string, error) {
	switch cmd.Kind {
	case Step:
		d.stepMode = true
		d.nextDepth = nil
		d.finishDepth = nil
		d.resume()
		return "Stepping to next instruction", nil
	case Next:
		depth := m.CallDepth()
		d.stepMode = false
		d.nextDepth = &depth
		d.finishDepth = nil
		d.resume()
		return "Stepping over function calls", nil
	case Continue:
		d.stepMode = false
		d.nextDepth = nil
		d.finishDepth = nil
		d.resume()
		return "Continuing execution", nil
	case Finish:
		depth := m.CallDepth()
		if depth == 0 {
			return "", fmt.Errorf("already in top-level frame")
		}
		target := depth - 1
		d.stepMode = false
		d.nextDepth = nil
		d.finishDepth = &target
		d.resume()
		return "Running until function returns", nil
	case Break:
		d.breakpoints[cmd.IP] = true
		return fmt.Sprintf("Breakpoint set at IP %d", cmd.IP), nil
	case BreakFunction:
		fn, ok := m.Program.Functions[cmd.Arg]
		if !ok {
			return "", fmt.Errorf("function %q not found", cmd.Arg)
		}
		d.breakpoints[fn.StartIP] = true
		return fmt.Sprintf("Breakpoint set at function %q (IP %d)", cmd.Arg, fn.StartIP), nil
	case DeleteBreakpoint:
		delete(d.breakpoints, cmd.IP)
		return fmt.Sprintf("Breakpoint at IP %d removed", cmd.IP), nil
	case ListBreakpoints:
		return d.listBreakpoints(), nil
	case Print:
		return d.printVariable(m, cmd.Arg)
	case Locals:
		return d.printLocals(m), nil
	case Globals:
		return d.printGlobals(m), nil
	case Backtrace:
		return d.printBacktrace(m), nil
	case Disasm:
		return disasm.Disassemble(m.Program), nil
	case Registers:
		return d.printRegisters(m), nil
	case List:
		return d.listSource(m)
	case Help:
		return helpText(), nil
	case Quit:
		return "Exiting debugger", nil
	default:
		return "", fmt.Errorf("unknown command")
	}
}

// RunUntilPause executes the instruction at the current IP, then keeps
// driving m one instruction at a time until ShouldBreak pauses it, the
// program terminates, or an error occurs. It returns running=false once
// m has no more instructions to execute.
func (d *Debugger) RunUntilPause(m *vm.VM) (running bool, err error) {
	for first := true; m.Running(); first = false {
		if !first && d.ShouldBreak(m, m.IP()) {
			return true, nil
		}
		if err := m.StepOnce(); err != nil {
			return false, err
		}
	}
	return false, nil
}

// ShouldBreak reports whether execution should pause before ip executes,
// and updates internal step/next/finish tracking accordingly.
func (d *Debugger) ShouldBreak(m *vm.VM, ip int) bool {
	if d.breakpoints[ip] {
		d.pause()
		return true
	}
	if d.stepMode {
		d.pause()
		return true
	}
	if d.nextDepth != nil && m.CallDepth() <= *d.nextDepth {
		d.pause()
		d.nextDepth = nil
		return true
	}
	if d.finishDepth != nil && m.CallDepth() <= *d.finishDepth {
		d.pause()
		d.finishDepth = nil
		return true
	}
	return false
}

func (d *Debugger) listBreakpoints() string {
	if len(d.breakpoints) == 0 {
		return "No breakpoints set"
	}
	ips := make([]int, 0, len(d.breakpoints))
	for ip := range d.breakpoints {
		ips = append(ips, ip)
	}
	sort.Ints(ips)
	var out strings.Builder
	out.WriteString("Breakpoints:\n")
	for i, ip := range ips {
		fmt.Fprintf(&out, "  %d. IP %d\n", i+1, ip)
	}
	return out.String()
}

func (d *Debugger) printVariable(m *vm.VM, name string) (string, error) {
	if locals := m.Locals(); locals != nil {
		if v, ok := locals[name]; ok {
			return fmt.Sprintf("%s: %s", name, v.GoString()), nil
		}
	}
	if v, ok := m.Globals()[name]; ok {
		return fmt.Sprintf("%s: %s", name, v.GoString()), nil
	}
	return "", fmt.Errorf("variable %q not found", name)
}

func (d *Debugger) printLocals(m *vm.VM) string {
	locals := m.Locals()
	if len(locals) == 0 {
		return "No local variables"
	}
	names := sortedKeys(locals)
	var out strings.Builder
	out.WriteString("Local variables:\n")
	for _, name := range names {
		fmt.Fprintf(&out, "  %s: %s\n", name, locals[name].GoString())
	}
	return out.String()
}

func (d *Debugger) printGlobals(m *vm.VM) string {
	globals := m.Globals()
	if len(globals) == 0 {
		return "No global variables"
	}
	names := sortedKeys(globals)
	var out strings.Builder
	out.WriteString("Global variables:\n")
	for _, name := range names {
		fmt.Fprintf(&out, "  %s: %s\n", name, globals[name].GoString())
	}
	return out.String()
}

func (d *Debugger) printBacktrace(m *vm.VM) string {
	var out strings.Builder
	out.WriteString("Call stack:\n")
	fmt.Fprintf(&out, "  0. %s (current)\n", m.CurrentFunction())
	return out.String()
}

func (d *Debugger) printRegisters(m *vm.VM) string {
	var out strings.Builder
	out.WriteString("Registers/State:\n")
	fmt.Fprintf(&out, "  IP: %d\n", m.IP())
	fmt.Fprintf(&out, "  Call Depth: %d\n", m.CallDepth())
	fmt.Fprintf(&out, "  Current Function: %s\n", m.CurrentFunction())
	fmt.Fprintf(&out, "  Running: %t\n", m.Running())
	return out.String()
}

func (d *Debugger) listSource(m *vm.VM) (string, error) {
	ip := m.IP()
	total := len(m.Program.Instructions)
	if ip >= total {
		return "", fmt.Errorf("IP out of bounds")
	}
	start := 0
	if ip >= 5 {
		start = ip - 5
	}
	end := ip + 10
	if end > total {
		end = total
	}

	var out strings.Builder
	for i := start; i < end; i++ {
		prefix := "  "
		if i == ip {
			prefix = "=>"
		}
		instr, _ := m.CurrentInstruction(i)
		fmt.Fprintf(&out, "%s %4d %T\n", prefix, i, instr)
	}
	return out.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func helpText() string {
	return `varvm Debugger Commands:

Execution Control:
  step, s          Step to next instruction
  next, n          Step over function calls
  continue, c      Continue execution until breakpoint
  finish, f        Run until current function returns

Breakpoints:
  break <ip>       Set breakpoint at instruction pointer
  break <func>     Set breakpoint at function entry
  delete <ip>      Remove breakpoint
  list             List all breakpoints

Inspection:
  print <var>      Print variable value
  locals           Show local variables
  globals          Show global variables
  backtrace, bt    Show call stack
  registers, r     Show VM state
  listsrc, l       List instructions around current IP
  disasm, d        Disassemble entire program

Other:
  help, h          Show this help
  quit, q          Exit debugger
`
}
