package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"varvm/internal/value"
)

func TestIDUniqueAcrossAllVariants(t *testing.T) {
	result := "r"
	ops := []Opcode{
		CreateLocal{DType: value.I32, Name: "x"},
		CreateGlobal{DType: value.I32, Name: "g"},
		DeleteLocal{Name: "x"},
		SetVar{Dest: "x", Value: value.Immediate(value.I32V(1))},
		CopyVar{Dest: "x", Source: "y"},
		Alloc{Dest: "p", Size: value.Immediate(value.I32V(8))},
		Free{Ptr: "p"},
		Load{Dest: "x", Ptr: "p", DType: value.I32},
		Store{Ptr: "p", Source: "x", DType: value.I32},
		GetAddr{Dest: "p", Var: "x"},
		Add{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Sub{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Mul{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Div{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Mod{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Neg{Dest: "x", Source: value.Variable("a")},
		And{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Or{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Xor{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Not{Dest: "x", Source: value.Variable("a")},
		Shl{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Shr{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Eq{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Ne{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Lt{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Le{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Gt{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Ge{Dest: "x", Left: value.Variable("a"), Right: value.Variable("b")},
		Label{Name: "L1"},
		Jmp{Target: "L1"},
		Jz{Var: "x", Target: "L1"},
		Jnz{Var: "x", Target: "L1"},
		FuncBegin{Name: "f", ReturnType: value.I32},
		FuncEnd{},
		Call{Result: &result, Func: "f", Args: nil},
		Return{Value: nil},
		PushArg{Var: "x"},
		PopArg{Dest: "x"},
		Cast{Dest: "x", Source: "y", TargetType: value.I64},
		Print{Var: "x"},
		Input{Dest: "x"},
		Exit{Code: value.Immediate(value.I32V(0))},
		Sqrt{Dest: "x", Source: value.Variable("a")},
		Sin{Dest: "x", Source: value.Variable("a")},
		Cos{Dest: "x", Source: value.Variable("a")},
		Tan{Dest: "x", Source: value.Variable("a")},
		Abs{Dest: "x", Source: value.Variable("a")},
		Pow{Dest: "x", Base: value.Variable("a"), Exp: value.Variable("b")},
		Min{Dest: "x", A: value.Variable("a"), B: value.Variable("b")},
		Max{Dest: "x", A: value.Variable("a"), B: value.Variable("b")},
	}

	seen := map[uint8]string{}
	for _, op := range ops {
		id, err := ID(op)
		assert.NoError(t, err, Name(op))
		if prev, ok := seen[id]; ok {
			t.Fatalf("opcode ID %d used by both %s and %s", id, prev, Name(op))
		}
		seen[id] = Name(op)
		assert.NotEmpty(t, Name(op))
	}
}

func TestIDUnknownType(t *testing.T) {
	_, err := ID(nil)
	assert.Error(t, err)
}

func TestFixedIDsMatchTable(t *testing.T) {
	cases := []struct {
		op   Opcode
		want uint8
	}{
		{CreateLocal{}, 0},
		{CreateGlobal{}, 1},
		{DeleteLocal{}, 2},
		{SetVar{}, 3},
		{CopyVar{}, 4},
		{Alloc{}, 5},
		{Free{}, 6},
		{Load{}, 7},
		{Store{}, 8},
		{GetAddr{}, 9},
		{Add{}, 10},
		{Shr{}, 21},
		{Eq{}, 30},
		{Ge{}, 35},
		{Label{}, 50},
		{Jnz{}, 53},
		{FuncBegin{}, 60},
		{PopArg{}, 65},
		{Print{}, 70},
		{Input{}, 72},
		{Cast{}, 80},
		{Sqrt{}, 90},
		{Tan{}, 97},
	}
	for _, tc := range cases {
		id, err := ID(tc.op)
		assert.NoError(t, err)
		assert.Equalf(t, tc.want, id, "%T", tc.op)
	}
}
