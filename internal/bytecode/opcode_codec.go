package bytecode

import (
	"varvm/internal/asmerr"
	"varvm/internal/opcode"
	"varvm/internal/value"
)

func (w *writer) opcode(op opcode.Opcode) error {
	id, err := opcode.ID(op)
	if err != nil {
		return err
	}
	w.u8(id)
	switch o := op.(type) {
	case opcode.CreateLocal:
		w.dataType(o.DType)
		w.str(o.Name)
	case opcode.CreateGlobal:
		w.dataType(o.DType)
		w.str(o.Name)
	case opcode.DeleteLocal:
		w.str(o.Name)
	case opcode.SetVar:
		w.str(o.Dest)
		return w.operand(o.Value)
	case opcode.CopyVar:
		w.str(o.Dest)
		w.str(o.Source)
	case opcode.Alloc:
		w.str(o.Dest)
		return w.operand(o.Size)
	case opcode.Free:
		w.str(o.Ptr)
	case opcode.Load:
		w.str(o.Dest)
		w.str(o.Ptr)
		w.dataType(o.DType)
	case opcode.Store:
		w.str(o.Ptr)
		w.str(o.Source)
		w.dataType(o.DType)
	case opcode.GetAddr:
		w.str(o.Dest)
		w.str(o.Var)
	case opcode.Add:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Sub:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Mul:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Div:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Mod:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Neg:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.And:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Or:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Xor:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Not:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.Shl:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Shr:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Eq:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Ne:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Lt:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Le:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Gt:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Ge:
		return w.binary3(o.Dest, o.Left, o.Right)
	case opcode.Sqrt:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.Sin:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.Cos:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.Tan:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.Abs:
		w.str(o.Dest)
		return w.operand(o.Source)
	case opcode.Pow:
		return w.binary3(o.Dest, o.Base, o.Exp)
	case opcode.Min:
		return w.binary3(o.Dest, o.A, o.B)
	case opcode.Max:
		return w.binary3(o.Dest, o.A, o.B)
	case opcode.Label:
		w.str(o.Name)
	case opcode.Jmp:
		w.str(o.Target)
	case opcode.Jz:
		w.str(o.Var)
		w.str(o.Target)
	case opcode.Jnz:
		w.str(o.Var)
		w.str(o.Target)
	case opcode.FuncBegin:
		w.str(o.Name)
		w.dataType(o.ReturnType)
	case opcode.FuncEnd:
		// no payload
	case opcode.Call:
		w.u8(boolByte(o.Result != nil))
		if o.Result != nil {
			w.str(*o.Result)
		}
		w.str(o.Func)
		w.u32(uint32(len(o.Args)))
		for _, a := range o.Args {
			if err := w.operand(a); err != nil {
				return err
			}
		}
	case opcode.Return:
		w.u8(boolByte(o.Value != nil))
		if o.Value != nil {
			return w.operand(*o.Value)
		}
	case opcode.PushArg:
		w.str(o.Var)
	case opcode.PopArg:
		w.str(o.Dest)
	case opcode.Cast:
		w.str(o.Dest)
		w.str(o.Source)
		w.dataType(o.TargetType)
	case opcode.Print:
		w.str(o.Var)
	case opcode.Input:
		w.str(o.Dest)
	case opcode.Exit:
		return w.operand(o.Code)
	default:
		return asmerr.New(asmerr.Assembly, "unencodable opcode type %T", op)
	}
	return nil
}

func (w *writer) binary3(dest string, left, right value.Operand) error {
	w.str(dest)
	if err := w.operand(left); err != nil {
		return err
	}
	return w.operand(right)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (r *reader) opcodeOp() (opcode.Opcode, error) {
	id, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch id {
	case opcode.IDCreateLocal:
		dt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.CreateLocal{DType: dt, Name: name}, nil
	case opcode.IDCreateGlobal:
		dt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.CreateGlobal{DType: dt, Name: name}, nil
	case opcode.IDDeleteLocal:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.DeleteLocal{Name: name}, nil
	case opcode.IDSetVar:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		v, err := r.operand()
		if err != nil {
			return nil, err
		}
		return opcode.SetVar{Dest: dest, Value: v}, nil
	case opcode.IDCopyVar:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		src, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.CopyVar{Dest: dest, Source: src}, nil
	case opcode.IDAlloc:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		size, err := r.operand()
		if err != nil {
			return nil, err
		}
		return opcode.Alloc{Dest: dest, Size: size}, nil
	case opcode.IDFree:
		ptr, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.Free{Ptr: ptr}, nil
	case opcode.IDLoad:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		ptr, err := r.str()
		if err != nil {
			return nil, err
		}
		dt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		return opcode.Load{Dest: dest, Ptr: ptr, DType: dt}, nil
	case opcode.IDStore:
		ptr, err := r.str()
		if err != nil {
			return nil, err
		}
		src, err := r.str()
		if err != nil {
			return nil, err
		}
		dt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		return opcode.Store{Ptr: ptr, Source: src, DType: dt}, nil
	case opcode.IDGetAddr:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		v, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.GetAddr{Dest: dest, Var: v}, nil
	case opcode.IDAdd, opcode.IDSub, opcode.IDMul, opcode.IDDiv, opcode.IDMod,
		opcode.IDAnd, opcode.IDOr, opcode.IDXor, opcode.IDShl, opcode.IDShr,
		opcode.IDEq, opcode.IDNe, opcode.IDLt, opcode.IDLe, opcode.IDGt, opcode.IDGe,
		opcode.IDPow, opcode.IDMin, opcode.IDMax:
		dest, left, right, err := r.binary3()
		if err != nil {
			return nil, err
		}
		return buildBinaryOp(id, dest, left, right)
	case opcode.IDNeg:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Neg{Dest: dest, Source: src}, nil
	case opcode.IDNot:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Not{Dest: dest, Source: src}, nil
	case opcode.IDSqrt:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Sqrt{Dest: dest, Source: src}, nil
	case opcode.IDSin:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Sin{Dest: dest, Source: src}, nil
	case opcode.IDCos:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Cos{Dest: dest, Source: src}, nil
	case opcode.IDTan:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Tan{Dest: dest, Source: src}, nil
	case opcode.IDAbs:
		dest, src, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Abs{Dest: dest, Source: src}, nil
	case opcode.IDLabel:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.Label{Name: name}, nil
	case opcode.IDJmp:
		target, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.Jmp{Target: target}, nil
	case opcode.IDJz:
		v, target, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Jz{Var: v, Target: target}, nil
	case opcode.IDJnz:
		v, target, err := r.unary2()
		if err != nil {
			return nil, err
		}
		return opcode.Jnz{Var: v, Target: target}, nil
	case opcode.IDFuncBegin:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		rt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		return opcode.FuncBegin{Name: name, ReturnType: rt}, nil
	case opcode.IDFuncEnd:
		return opcode.FuncEnd{}, nil
	case opcode.IDCall:
		hasResult, err := r.u8()
		if err != nil {
			return nil, err
		}
		var result *string
		if hasResult == 1 {
			name, err := r.str()
			if err != nil {
				return nil, err
			}
			result = &name
		}
		fn, err := r.str()
		if err != nil {
			return nil, err
		}
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		args := make([]value.Operand, 0, n)
		for i := uint32(0); i < n; i++ {
			a, err := r.operand()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return opcode.Call{Result: result, Func: fn, Args: args}, nil
	case opcode.IDReturn:
		hasValue, err := r.u8()
		if err != nil {
			return nil, err
		}
		if hasValue == 1 {
			v, err := r.operand()
			if err != nil {
				return nil, err
			}
			return opcode.Return{Value: &v}, nil
		}
		return opcode.Return{Value: nil}, nil
	case opcode.IDPushArg:
		v, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.PushArg{Var: v}, nil
	case opcode.IDPopArg:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.PopArg{Dest: dest}, nil
	case opcode.IDCast:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		src, err := r.str()
		if err != nil {
			return nil, err
		}
		target, err := r.dataType()
		if err != nil {
			return nil, err
		}
		return opcode.Cast{Dest: dest, Source: src, TargetType: target}, nil
	case opcode.IDPrint:
		v, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.Print{Var: v}, nil
	case opcode.IDInput:
		dest, err := r.str()
		if err != nil {
			return nil, err
		}
		return opcode.Input{Dest: dest}, nil
	case opcode.IDExit:
		code, err := r.operand()
		if err != nil {
			return nil, err
		}
		return opcode.Exit{Code: code}, nil
	default:
		return nil, asmerr.New(asmerr.Assembly, "unknown opcode ID %d", id)
	}
}

func (r *reader) binary3() (dest string, left, right value.Operand, err error) {
	dest, err = r.str()
	if err != nil {
		return
	}
	left, err = r.operand()
	if err != nil {
		return
	}
	right, err = r.operand()
	return
}

func (r *reader) unary2() (a, b string, err error) {
	a, err = r.str()
	if err != nil {
		return
	}
	b, err = r.str()
	return
}

func buildBinaryOp(id uint8, dest string, left, right value.Operand) (opcode.Opcode, error) {
	switch id {
	case opcode.IDAdd:
		return opcode.Add{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDSub:
		return opcode.Sub{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDMul:
		return opcode.Mul{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDDiv:
		return opcode.Div{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDMod:
		return opcode.Mod{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDAnd:
		return opcode.And{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDOr:
		return opcode.Or{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDXor:
		return opcode.Xor{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDShl:
		return opcode.Shl{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDShr:
		return opcode.Shr{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDEq:
		return opcode.Eq{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDNe:
		return opcode.Ne{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDLt:
		return opcode.Lt{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDLe:
		return opcode.Le{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDGt:
		return opcode.Gt{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDGe:
		return opcode.Ge{Dest: dest, Left: left, Right: right}, nil
	case opcode.IDPow:
		return opcode.Pow{Dest: dest, Base: left, Exp: right}, nil
	case opcode.IDMin:
		return opcode.Min{Dest: dest, A: left, B: right}, nil
	case opcode.IDMax:
		return opcode.Max{Dest: dest, A: left, B: right}, nil
	default:
		return nil, asmerr.New(asmerr.Assembly, "opcode ID %d is not a three-operand binary op", id)
	}
}
