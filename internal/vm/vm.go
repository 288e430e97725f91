// Package vm implements the interpreter (C8): a register-less, named
// variable dispatch loop over a program.Program.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"varvm/internal/asmerr"
	"varvm/internal/opcode"
	"varvm/internal/program"
	"varvm/internal/value"
)

// VM executes a loaded Program to completion.
type VM struct {
	Program *program.Program

	ip int

	globals     map[string]value.Value
	globalTypes map[string]value.DataType
	frame       *CallFrame
	callStack   []*CallFrame

	// globalAddrs caches GetAddr's allocation for global variables, the
	// same way CallFrame.Addrs does for locals.
	globalAddrs map[string]uint64

	heap *heap

	running  bool
	exitCode int

	stdout io.Writer
	stdin  *bufio.Reader

	trace func(ip int, instr opcode.Opcode)

	// calling is true for the single step that lands on a function's
	// FuncBegin instruction as a direct result of Start/Call setting ip
	// to that function's StartIP. It distinguishes an intentional call
	// entry (FuncBegin is a no-op, execution falls into the body) from
	// straight-line fallthrough out of the previous function (FuncBegin
	// must skip to the end of its own function instead).
	calling bool
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithStdout redirects Print output (default os.Stdout).
func WithStdout(w io.Writer) Option { return func(v *VM) { v.stdout = w } }

// WithStdin redirects Input reads (default os.Stdin).
func WithStdin(r io.Reader) Option { return func(v *VM) { v.stdin = bufio.NewReader(r) } }

// WithTrace registers fn to be called with the IP and decoded
// instruction immediately before each instruction executes, letting a
// profiler or debugger observe execution without the VM knowing about
// either.
func WithTrace(fn func(ip int, instr opcode.Opcode)) Option {
	return func(v *VM) { v.trace = fn }
}

// New builds a VM over prog, with globals and heap-resident string
// literals initialized but not yet running.
func New(prog *program.Program, opts ...Option) *VM {
	v := &VM{
		Program:     prog,
		globals:     make(map[string]value.Value),
		globalTypes: make(map[string]value.DataType),
		globalAddrs: make(map[string]uint64),
		heap:        newHeap(),
		stdout:      os.Stdout,
		stdin:       bufio.NewReader(os.Stdin),
	}
	for _, g := range prog.Globals {
		v.globals[g.Name] = value.Default(g.DType)
		v.globalTypes[g.Name] = g.DType
	}
	for _, opt := range opts {
		opt(v)
	}
	for _, s := range prog.Strings {
		data := append([]byte(s.Content), 0)
		addr := v.heap.alloc(uint64(len(data)))
		v.heap.write(addr, data)
		v.globals[s.GlobalName] = value.PtrV(addr)
	}
	return v
}

// ExitCode returns the value passed to Exit, or the value returned
// from main's top-level Return, once Run has completed.
func (v *VM) ExitCode() int { return v.exitCode }

// Locals returns a snapshot of the current call frame's variables, or
// nil outside any function.
func (v *VM) Locals() map[string]value.Value {
	if v.frame == nil {
		return nil
	}
	out := make(map[string]value.Value, len(v.frame.Locals))
	for k, val := range v.frame.Locals {
		out[k] = val
	}
	return out
}

// Globals returns a snapshot of every global variable's current value.
func (v *VM) Globals() map[string]value.Value {
	out := make(map[string]value.Value, len(v.globals))
	for k, val := range v.globals {
		out[k] = val
	}
	return out
}

// CallDepth returns the number of frames currently on the call stack,
// not counting the active frame.
func (v *VM) CallDepth() int { return len(v.callStack) }

// CurrentFunction returns the name of the function the active frame
// belongs to, or "" if no frame is active.
func (v *VM) CurrentFunction() string {
	if v.frame == nil {
		return ""
	}
	return v.frame.FunctionName
}

// Start locates "main" and readies the VM to execute it one instruction
// at a time via StepOnce, without running anything yet. Run is Start
// followed by driving StepOnce to completion; a debugger calls Start
// once and then StepOnce under its own control.
func (v *VM) Start() error {
	fn, ok := v.Program.Functions["main"]
	if !ok {
		return asmerr.New(asmerr.Runtime, "program defines no \"main\" function")
	}
	v.frame = newFrame("main", -1, nil, nil)
	v.ip = fn.StartIP
	v.calling = true
	v.running = true
	return nil
}

// Running reports whether the program has more instructions to execute.
func (v *VM) Running() bool { return v.running }

// IP returns the instruction pointer of the next instruction StepOnce
// will execute.
func (v *VM) IP() int { return v.ip }

// StepOnce executes exactly one instruction and returns. Callers must
// check Running() after each call; Run calls this in a loop.
func (v *VM) StepOnce() error {
	if v.ip < 0 || v.ip >= len(v.Program.Instructions) {
		return asmerr.New(asmerr.Runtime, "instruction pointer %d ran off the end of the program", v.ip)
	}
	instr := v.Program.Instructions[v.ip]
	if v.trace != nil {
		v.trace(v.ip, instr)
	}
	v.ip++
	if err := v.step(instr); err != nil {
		return v.runtimeErr(err)
	}
	return nil
}

// CurrentInstruction returns the instruction at the given ip, for a
// debugger to inspect before it executes.
func (v *VM) CurrentInstruction(ip int) (opcode.Opcode, bool) {
	if ip < 0 || ip >= len(v.Program.Instructions) {
		return nil, false
	}
	return v.Program.Instructions[ip], true
}

// Run calls "main" with no arguments and dispatches until it returns
// or the program executes Exit.
func (v *VM) Run() error {
	if err := v.Start(); err != nil {
		return err
	}
	for v.running {
		if err := v.StepOnce(); err != nil {
			return err
		}
	}
	return nil
}

func (v *VM) runtimeErr(err error) error {
	if ae, ok := err.(*asmerr.Error); ok {
		return ae
	}
	loc := v.sourceLocation(v.ip - 1)
	if loc != nil {
		return asmerr.At(asmerr.Runtime, *loc, "%s", err)
	}
	return asmerr.Wrap(asmerr.Runtime, err, "at instruction %d", v.ip-1)
}

func (v *VM) sourceLocation(ip int) *asmerr.Location {
	if v.Program.Source == nil {
		return nil
	}
	loc, ok := v.Program.Source.Locations[ip]
	if !ok {
		return nil
	}
	return &asmerr.Location{File: loc.File, Line: loc.Line, Column: loc.Column}
}

func (v *VM) step(instr opcode.Opcode) error {
	switch o := instr.(type) {
	case opcode.Label, opcode.FuncEnd:
		return nil
	case opcode.FuncBegin:
		if v.calling {
			v.calling = false
			return nil
		}
		// Reached by straight-line fallthrough from the previous
		// function, not by Call/Start: skip the whole body instead of
		// executing it under the wrong frame.
		fn, ok := v.Program.Functions[o.Name]
		if !ok {
			return fmt.Errorf("func_begin: unknown function %q", o.Name)
		}
		v.ip = fn.EndIP + 1
		return nil
	case opcode.CreateLocal:
		if v.frame == nil {
			return fmt.Errorf("local %q declared outside a function", o.Name)
		}
		v.frame.Locals[o.Name] = value.Default(o.DType)
		v.frame.LocalTypes[o.Name] = o.DType
		return nil
	case opcode.CreateGlobal:
		v.globals[o.Name] = value.Default(o.DType)
		v.globalTypes[o.Name] = o.DType
		return nil
	case opcode.DeleteLocal:
		if v.frame == nil {
			return fmt.Errorf("delete_local %q outside a function", o.Name)
		}
		if _, ok := v.frame.Locals[o.Name]; !ok {
			return fmt.Errorf("delete_local: %q is not a local variable", o.Name)
		}
		delete(v.frame.Locals, o.Name)
		delete(v.frame.LocalTypes, o.Name)
		return nil
	case opcode.SetVar:
		val, err := v.resolve(o.Value)
		if err != nil {
			return err
		}
		return v.writeVar(o.Dest, val)
	case opcode.CopyVar:
		val, err := v.readVar(o.Source)
		if err != nil {
			return err
		}
		return v.writeVar(o.Dest, val)
	case opcode.Add:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Add)
	case opcode.Sub:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Sub)
	case opcode.Mul:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Mul)
	case opcode.Div:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Div)
	case opcode.Mod:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Modulo)
	case opcode.Neg:
		return v.unaryArith(o.Dest, o.Source, value.Value.Neg)
	case opcode.And:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.And)
	case opcode.Or:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Or)
	case opcode.Xor:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.Xor)
	case opcode.Not:
		return v.unaryArith(o.Dest, o.Source, value.Value.Not)
	case opcode.Shl:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.ShiftLeft)
	case opcode.Shr:
		return v.binaryArith(o.Dest, o.Left, o.Right, value.Value.ShiftRight)
	case opcode.Eq:
		return v.compareOp(o.Dest, o.Left, o.Right, func(a, b value.Value) (bool, error) { return a.Equals(b), nil })
	case opcode.Ne:
		return v.compareOp(o.Dest, o.Left, o.Right, func(a, b value.Value) (bool, error) { return !a.Equals(b), nil })
	case opcode.Lt:
		return v.compareOp(o.Dest, o.Left, o.Right, value.Value.Lt)
	case opcode.Le:
		return v.compareOp(o.Dest, o.Left, o.Right, value.Value.Le)
	case opcode.Gt:
		return v.compareOp(o.Dest, o.Left, o.Right, value.Value.Gt)
	case opcode.Ge:
		return v.compareOp(o.Dest, o.Left, o.Right, value.Value.Ge)
	case opcode.Sqrt:
		return v.unaryArith(o.Dest, o.Source, func(a value.Value) (value.Value, error) { return a.Sqrt() })
	case opcode.Sin:
		return v.unaryArith(o.Dest, o.Source, func(a value.Value) (value.Value, error) { return a.Sin() })
	case opcode.Cos:
		return v.unaryArith(o.Dest, o.Source, func(a value.Value) (value.Value, error) { return a.Cos() })
	case opcode.Tan:
		return v.unaryArith(o.Dest, o.Source, func(a value.Value) (value.Value, error) { return a.Tan() })
	case opcode.Abs:
		return v.unaryArith(o.Dest, o.Source, func(a value.Value) (value.Value, error) { return a.Abs() })
	case opcode.Pow:
		return v.binaryArith(o.Dest, o.Base, o.Exp, func(a, b value.Value) (value.Value, error) { return a.Pow(b) })
	case opcode.Min:
		return v.binaryArith(o.Dest, o.A, o.B, func(a, b value.Value) (value.Value, error) { return a.Min(b) })
	case opcode.Max:
		return v.binaryArith(o.Dest, o.A, o.B, func(a, b value.Value) (value.Value, error) { return a.Max(b) })
	case opcode.Jmp:
		return v.jumpTo(o.Target)
	case opcode.Jz:
		return v.condJump(o.Var, o.Target, true)
	case opcode.Jnz:
		return v.condJump(o.Var, o.Target, false)
	case opcode.Cast:
		return v.doCast(o)
	case opcode.Alloc:
		return v.doAlloc(o)
	case opcode.Free:
		return v.doFree(o)
	case opcode.Load:
		return v.doLoad(o)
	case opcode.Store:
		return v.doStore(o)
	case opcode.GetAddr:
		return v.doGetAddr(o)
	case opcode.Call:
		return v.doCall(o)
	case opcode.Return:
		return v.doReturn(o)
	case opcode.PushArg:
		_, err := v.readVar(o.Var)
		return err
	case opcode.PopArg:
		if v.frame == nil {
			return fmt.Errorf("pop_arg outside a function")
		}
		val, ok := v.frame.popArg()
		if !ok {
			return fmt.Errorf("pop_arg: no more queued arguments")
		}
		return v.writeVar(o.Dest, val)
	case opcode.Print:
		val, err := v.readVar(o.Var)
		if err != nil {
			return err
		}
		fmt.Fprintf(v.stdout, "%s: %s\n", o.Var, val.GoString())
		return nil
	case opcode.Input:
		return v.doInput(o)
	case opcode.Exit:
		code, err := v.resolve(o.Code)
		if err != nil {
			return err
		}
		n, err := code.AsUsize()
		if err != nil {
			return fmt.Errorf("exit code: %w", err)
		}
		v.exitCode = int(n)
		v.running = false
		return nil
	default:
		return fmt.Errorf("unhandled opcode %T", instr)
	}
}
