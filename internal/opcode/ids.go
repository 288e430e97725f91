package opcode

import "fmt"

// Binary opcode IDs. Fixed and must match table T1; new opcodes append
// IDs, they never renumber existing ones. Grounded in the reference
// encoder/decoder's numeric assignment (0-4 var mgmt, 5-9 heap, 10-15
// arith, 16-21 bitwise, 30-35 cmp, 50-53 control, 60-65 functions, 70-72
// I/O, 80 cast, 90-97 math).
const (
	IDCreateLocal  uint8 = 0
	IDCreateGlobal uint8 = 1
	IDDeleteLocal  uint8 = 2
	IDSetVar       uint8 = 3
	IDCopyVar      uint8 = 4
	IDAlloc        uint8 = 5
	IDFree         uint8 = 6
	IDLoad         uint8 = 7
	IDStore        uint8 = 8
	IDGetAddr      uint8 = 9
	IDAdd          uint8 = 10
	IDSub          uint8 = 11
	IDMul          uint8 = 12
	IDDiv          uint8 = 13
	IDMod          uint8 = 14
	IDNeg          uint8 = 15
	IDAnd          uint8 = 16
	IDOr           uint8 = 17
	IDXor          uint8 = 18
	IDNot          uint8 = 19
	IDShl          uint8 = 20
	IDShr          uint8 = 21
	IDEq           uint8 = 30
	IDNe           uint8 = 31
	IDLt           uint8 = 32
	IDLe           uint8 = 33
	IDGt           uint8 = 34
	IDGe           uint8 = 35
	IDLabel        uint8 = 50
	IDJmp          uint8 = 51
	IDJz           uint8 = 52
	IDJnz          uint8 = 53
	IDFuncBegin    uint8 = 60
	IDFuncEnd      uint8 = 61
	IDCall         uint8 = 62
	IDReturn       uint8 = 63
	IDPushArg      uint8 = 64
	IDPopArg       uint8 = 65
	IDPrint        uint8 = 70
	IDExit         uint8 = 71
	IDInput        uint8 = 72
	IDCast         uint8 = 80
	IDSqrt         uint8 = 90
	IDPow          uint8 = 91
	IDAbs          uint8 = 92
	IDMin          uint8 = 93
	IDMax          uint8 = 94
	IDSin          uint8 = 95
	IDCos          uint8 = 96
	IDTan          uint8 = 97
)

// ID returns the binary opcode ID for op.
func ID(op Opcode) (uint8, error) {
	switch op.(type) {
	case CreateLocal:
		return IDCreateLocal, nil
	case CreateGlobal:
		return IDCreateGlobal, nil
	case DeleteLocal:
		return IDDeleteLocal, nil
	case SetVar:
		return IDSetVar, nil
	case CopyVar:
		return IDCopyVar, nil
	case Alloc:
		return IDAlloc, nil
	case Free:
		return IDFree, nil
	case Load:
		return IDLoad, nil
	case Store:
		return IDStore, nil
	case GetAddr:
		return IDGetAddr, nil
	case Add:
		return IDAdd, nil
	case Sub:
		return IDSub, nil
	case Mul:
		return IDMul, nil
	case Div:
		return IDDiv, nil
	case Mod:
		return IDMod, nil
	case Neg:
		return IDNeg, nil
	case And:
		return IDAnd, nil
	case Or:
		return IDOr, nil
	case Xor:
		return IDXor, nil
	case Not:
		return IDNot, nil
	case Shl:
		return IDShl, nil
	case Shr:
		return IDShr, nil
	case Eq:
		return IDEq, nil
	case Ne:
		return IDNe, nil
	case Lt:
		return IDLt, nil
	case Le:
		return IDLe, nil
	case Gt:
		return IDGt, nil
	case Ge:
		return IDGe, nil
	case Label:
		return IDLabel, nil
	case Jmp:
		return IDJmp, nil
	case Jz:
		return IDJz, nil
	case Jnz:
		return IDJnz, nil
	case FuncBegin:
		return IDFuncBegin, nil
	case FuncEnd:
		return IDFuncEnd, nil
	case Call:
		return IDCall, nil
	case Return:
		return IDReturn, nil
	case PushArg:
		return IDPushArg, nil
	case PopArg:
		return IDPopArg, nil
	case Print:
		return IDPrint, nil
	case Exit:
		return IDExit, nil
	case Input:
		return IDInput, nil
	case Cast:
		return IDCast, nil
	case Sqrt:
		return IDSqrt, nil
	case Pow:
		return IDPow, nil
	case Abs:
		return IDAbs, nil
	case Min:
		return IDMin, nil
	case Max:
		return IDMax, nil
	case Sin:
		return IDSin, nil
	case Cos:
		return IDCos, nil
	case Tan:
		return IDTan, nil
	default:
		return 0, fmt.Errorf("unencodable opcode type %T", op)
	}
}

// Name returns the opcode's display name, the Go type name of its
// variant (e.g. "CreateLocal").
func Name(op Opcode) string {
	switch op.(type) {
	case CreateLocal:
		return "CreateLocal"
	case CreateGlobal:
		return "CreateGlobal"
	case DeleteLocal:
		return "DeleteLocal"
	case SetVar:
		return "SetVar"
	case CopyVar:
		return "CopyVar"
	case Alloc:
		return "Alloc"
	case Free:
		return "Free"
	case Load:
		return "Load"
	case Store:
		return "Store"
	case GetAddr:
		return "GetAddr"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Mod:
		return "Mod"
	case Neg:
		return "Neg"
	case And:
		return "And"
	case Or:
		return "Or"
	case Xor:
		return "Xor"
	case Not:
		return "Not"
	case Shl:
		return "Shl"
	case Shr:
		return "Shr"
	case Eq:
		return "Eq"
	case Ne:
		return "Ne"
	case Lt:
		return "Lt"
	case Le:
		return "Le"
	case Gt:
		return "Gt"
	case Ge:
		return "Ge"
	case Label:
		return "Label"
	case Jmp:
		return "Jmp"
	case Jz:
		return "Jz"
	case Jnz:
		return "Jnz"
	case FuncBegin:
		return "FuncBegin"
	case FuncEnd:
		return "FuncEnd"
	case Call:
		return "Call"
	case Return:
		return "Return"
	case PushArg:
		return "PushArg"
	case PopArg:
		return "PopArg"
	case Print:
		return "Print"
	case Exit:
		return "Exit"
	case Input:
		return "Input"
	case Cast:
		return "Cast"
	case Sqrt:
		return "Sqrt"
	case Pow:
		return "Pow"
	case Abs:
		return "Abs"
	case Min:
		return "Min"
	case Max:
		return "Max"
	case Sin:
		return "Sin"
	case Cos:
		return "Cos"
	case Tan:
		return "Tan"
	default:
		return fmt.Sprintf("%T", op)
	}
}
