package vm

import (
	"fmt"
	"strconv"
	"strings"

	"varvm/internal/opcode"
	"varvm/internal/value"
)

// resolve turns an operand into a concrete Value. Labels and bare
// Types are not values and cannot appear where a Value is expected.
func (v *VM) resolve(op value.Operand) (value.Value, error) {
	switch op.Kind {
	case value.OperandVariable:
		return v.readVar(op.Name)
	case value.OperandImmediate:
		return op.Value, nil
	default:
		return value.Value{}, fmt.Errorf("operand of kind %d cannot be used as a value", op.Kind)
	}
}

// readVar looks up name first in the current frame's locals, then in
// globals.
func (v *VM) readVar(name string) (value.Value, error) {
	if v.frame != nil {
		if val, ok := v.frame.Locals[name]; ok {
			return val, nil
		}
	}
	if val, ok := v.globals[name]; ok {
		return val, nil
	}
	return value.Value{}, fmt.Errorf("undefined variable %q", name)
}

// writeVar assigns to name if it is already a declared local, else a
// declared global; it never implicitly declares a new variable.
func (v *VM) writeVar(name string, val value.Value) error {
	if v.frame != nil {
		if _, ok := v.frame.Locals[name]; ok {
			v.frame.Locals[name] = val
			return nil
		}
	}
	if _, ok := v.globals[name]; ok {
		v.globals[name] = val
		return nil
	}
	return fmt.Errorf("cannot assign to %q: not declared as a local or global", name)
}

func (v *VM) varType(name string) (value.DataType, bool) {
	if v.frame != nil {
		if dt, ok := v.frame.LocalTypes[name]; ok {
			return dt, true
		}
	}
	dt, ok := v.globalTypes[name]
	return dt, ok
}

func (v *VM) binaryArith(dest string, left, right value.Operand, fn func(a, b value.Value) (value.Value, error)) error {
	l, err := v.resolve(left)
	if err != nil {
		return err
	}
	r, err := v.resolve(right)
	if err != nil {
		return err
	}
	res, err := fn(l, r)
	if err != nil {
		return err
	}
	return v.writeVar(dest, res)
}

func (v *VM) unaryArith(dest string, src value.Operand, fn func(a value.Value) (value.Value, error)) error {
	a, err := v.resolve(src)
	if err != nil {
		return err
	}
	res, err := fn(a)
	if err != nil {
		return err
	}
	return v.writeVar(dest, res)
}

func (v *VM) compareOp(dest string, left, right value.Operand, fn func(a, b value.Value) (bool, error)) error {
	l, err := v.resolve(left)
	if err != nil {
		return err
	}
	r, err := v.resolve(right)
	if err != nil {
		return err
	}
	ok, err := fn(l, r)
	if err != nil {
		return err
	}
	if ok {
		return v.writeVar(dest, value.I32V(1))
	}
	return v.writeVar(dest, value.I32V(0))
}

func (v *VM) jumpTo(label string) error {
	ip, ok := v.Program.Labels[label]
	if !ok {
		return fmt.Errorf("undefined label %q", label)
	}
	v.ip = ip
	return nil
}

func (v *VM) condJump(varName, label string, onZero bool) error {
	val, err := v.readVar(varName)
	if err != nil {
		return err
	}
	if val.IsZero() == onZero {
		return v.jumpTo(label)
	}
	return nil
}

func (v *VM) doCast(o opcode.Cast) error {
	src, err := v.readVar(o.Source)
	if err != nil {
		return err
	}
	res, err := src.Cast(o.TargetType)
	if err != nil {
		return err
	}
	return v.writeVar(o.Dest, res)
}

func (v *VM) doAlloc(o opcode.Alloc) error {
	size, err := v.resolve(o.Size)
	if err != nil {
		return err
	}
	n, err := size.AsUsize()
	if err != nil {
		return fmt.Errorf("alloc size: %w", err)
	}
	addr := v.heap.alloc(n)
	return v.writeVar(o.Dest, value.PtrV(addr))
}

func (v *VM) doFree(o opcode.Free) error {
	ptr, err := v.readVar(o.Ptr)
	if err != nil {
		return err
	}
	addr, err := ptr.AsUsize()
	if err != nil {
		return fmt.Errorf("free: %w", err)
	}
	return v.heap.free(addr)
}

func (v *VM) doLoad(o opcode.Load) error {
	ptr, err := v.readVar(o.Ptr)
	if err != nil {
		return err
	}
	addr, err := ptr.AsUsize()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	size := uint64(o.DType.Size())
	bytes, offset, err := v.heap.find(addr, size)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	val := decodeTyped(o.DType, bytes[offset:offset+size])
	return v.writeVar(o.Dest, val)
}

func (v *VM) doStore(o opcode.Store) error {
	ptr, err := v.readVar(o.Ptr)
	if err != nil {
		return err
	}
	addr, err := ptr.AsUsize()
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	src, err := v.readVar(o.Source)
	if err != nil {
		return err
	}
	size := uint64(o.DType.Size())
	bytes, offset, err := v.heap.find(addr, size)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	encodeTyped(o.DType, src, bytes[offset:offset+size])
	return nil
}

// doGetAddr allocates a dedicated heap cell the first time a given
// variable's address is taken and reuses that same address on every
// later get_addr for the same variable (within the current frame for a
// local, or for the lifetime of the program for a global), so address
// identity is stable. The cell's contents are refreshed from the
// variable's current value on every call, since the cell is a snapshot
// copy rather than a live alias of the variable's storage.
func (v *VM) doGetAddr(o opcode.GetAddr) error {
	val, err := v.readVar(o.Var)
	if err != nil {
		return err
	}
	dt, ok := v.varType(o.Var)
	if !ok {
		dt = val.Type
	}

	cache := v.globalAddrs
	if v.frame != nil {
		if _, isLocal := v.frame.Locals[o.Var]; isLocal {
			cache = v.frame.Addrs
		}
	}

	addr, ok := cache[o.Var]
	if !ok {
		addr = v.heap.alloc(uint64(dt.Size()))
		cache[o.Var] = addr
	}
	bytes, _, err := v.heap.find(addr, uint64(dt.Size()))
	if err != nil {
		return fmt.Errorf("get_addr: %w", err)
	}
	encodeTyped(dt, val, bytes)
	return v.writeVar(o.Dest, value.PtrV(addr))
}

// doInput reads one line from stdin and parses it according to dest's
// declared type: float arms via strconv.ParseFloat, Ptr via ParseUint,
// other integer arms via ParseInt. dest must already be declared.
func (v *VM) doInput(o opcode.Input) error {
	dt, ok := v.varType(o.Dest)
	if !ok {
		return fmt.Errorf("input: %q is not a declared variable", o.Dest)
	}
	line, err := v.stdin.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("input: %w", err)
	}
	text := strings.TrimSpace(line)

	var val value.Value
	switch {
	case dt.IsFloat():
		f, perr := strconv.ParseFloat(text, 64)
		if perr != nil {
			return fmt.Errorf("input: %w", perr)
		}
		if dt == value.F32 {
			val = value.F32V(float32(f))
		} else {
			val = value.F64V(f)
		}
	case dt == value.Ptr:
		n, perr := strconv.ParseUint(text, 10, 64)
		if perr != nil {
			return fmt.Errorf("input: %w", perr)
		}
		val = value.PtrV(n)
	default:
		i, perr := strconv.ParseInt(text, 10, 64)
		if perr != nil {
			return fmt.Errorf("input: %w", perr)
		}
		val, err = value.I64V(i).Cast(dt)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
	}
	return v.writeVar(o.Dest, val)
}

func (v *VM) doCall(o opcode.Call) error {
	fn, ok := v.Program.Functions[o.Func]
	if !ok {
		return fmt.Errorf("call to undefined function %q", o.Func)
	}
	args := make([]value.Value, 0, len(o.Args))
	for _, a := range o.Args {
		val, err := v.resolve(a)
		if err != nil {
			return err
		}
		args = append(args, val)
	}
	var result *string
	if o.Result != nil {
		r := *o.Result
		result = &r
	}
	callee := newFrame(o.Func, v.ip, result, args)
	v.callStack = append(v.callStack, v.frame)
	v.frame = callee
	v.ip = fn.StartIP
	v.calling = true
	return nil
}

func (v *VM) doReturn(o opcode.Return) error {
	var retVal value.Value
	var hasVal bool
	if o.Value != nil {
		val, err := v.resolve(*o.Value)
		if err != nil {
			return err
		}
		retVal, hasVal = val, true
	}

	if v.frame.ReturnIP == -1 {
		v.running = false
		if hasVal {
			n, err := retVal.AsUsize()
			if err == nil {
				v.exitCode = int(n)
			}
		}
		return nil
	}

	returning := v.frame
	n := len(v.callStack)
	v.frame = v.callStack[n-1]
	v.callStack = v.callStack[:n-1]
	v.ip = returning.ReturnIP
	if returning.ReturnDest != nil && hasVal {
		return v.writeVar(*returning.ReturnDest, retVal)
	}
	return nil
}
