// Package disasm renders an assembled program.Program as mnemonic text,
// mirroring the assembler's own mnemonic table one opcode at a time.
//
// The listing does not always re-assemble to the same image: each global
// appears both in the .data listing and as the global instruction in
// .text, string literal contents are not printed (a string's global is
// listed as a plain ptr global), and function-local labels are printed in
// their qualified "function:.label" form, which the assembler rejects.
package disasm

import (
	"fmt"
	"strings"

	"varvm/internal/opcode"
	"varvm/internal/program"
	"varvm/internal/value"
)

// Disassemble renders prog as assembly text: a .data section listing
// globals, then a .text section listing every instruction in program
// order, one mnemonic line per instruction.
func Disassemble(prog *program.Program) string {
	var out strings.Builder
	writeDataSection(&out, prog)
	out.WriteString("\n")
	writeTextSection(&out, prog)
	return out.String()
}

func writeDataSection(out *strings.Builder, prog *program.Program) {
	if len(prog.Globals) == 0 {
		return
	}
	out.WriteString(".data\n")
	for _, g := range prog.Globals {
		fmt.Fprintf(out, "    global %s, %s\n", formatType(g.DType), g.Name)
	}
}

func writeTextSection(out *strings.Builder, prog *program.Program) {
	out.WriteString(".text\n")
	for _, instr := range prog.Instructions {
		line := disassembleOne(instr)
		if line != "" {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
}

func disassembleOne(instr opcode.Opcode) string {
	switch o := instr.(type) {
	case opcode.Label:
		if strings.HasPrefix(o.Name, ".") {
			return o.Name + ":"
		}
		return "\n" + o.Name + ":"
	case opcode.FuncBegin:
		return fmt.Sprintf("    func_begin %s, %s", o.Name, formatType(o.ReturnType))
	case opcode.FuncEnd:
		return "    func_end"
	case opcode.CreateLocal:
		return fmt.Sprintf("    local %s %s", formatType(o.DType), o.Name)
	case opcode.CreateGlobal:
		return fmt.Sprintf("    global %s, %s", formatType(o.DType), o.Name)
	case opcode.DeleteLocal:
		return fmt.Sprintf("    delete_local %s", o.Name)
	case opcode.SetVar:
		return fmt.Sprintf("    set %s, %s", o.Dest, formatOperand(o.Value))
	case opcode.CopyVar:
		return fmt.Sprintf("    copy %s, %s", o.Dest, o.Source)
	case opcode.Add:
		return binLine("add", o.Dest, o.Left, o.Right)
	case opcode.Sub:
		return binLine("sub", o.Dest, o.Left, o.Right)
	case opcode.Mul:
		return binLine("mul", o.Dest, o.Left, o.Right)
	case opcode.Div:
		return binLine("div", o.Dest, o.Left, o.Right)
	case opcode.Mod:
		return binLine("mod", o.Dest, o.Left, o.Right)
	case opcode.Neg:
		return unLine("neg", o.Dest, o.Source)
	case opcode.And:
		return binLine("and", o.Dest, o.Left, o.Right)
	case opcode.Or:
		return binLine("or", o.Dest, o.Left, o.Right)
	case opcode.Xor:
		return binLine("xor", o.Dest, o.Left, o.Right)
	case opcode.Not:
		return unLine("not", o.Dest, o.Source)
	case opcode.Shl:
		return binLine("shl", o.Dest, o.Left, o.Right)
	case opcode.Shr:
		return binLine("shr", o.Dest, o.Left, o.Right)
	case opcode.Eq:
		return binLine("eq", o.Dest, o.Left, o.Right)
	case opcode.Ne:
		return binLine("ne", o.Dest, o.Left, o.Right)
	case opcode.Lt:
		return binLine("lt", o.Dest, o.Left, o.Right)
	case opcode.Le:
		return binLine("le", o.Dest, o.Left, o.Right)
	case opcode.Gt:
		return binLine("gt", o.Dest, o.Left, o.Right)
	case opcode.Ge:
		return binLine("ge", o.Dest, o.Left, o.Right)
	case opcode.Jmp:
		return fmt.Sprintf("    jmp %s", o.Target)
	case opcode.Jz:
		return fmt.Sprintf("    jz %s, %s", o.Var, o.Target)
	case opcode.Jnz:
		return fmt.Sprintf("    jnz %s, %s", o.Var, o.Target)
	case opcode.Call:
		result := "_"
		if o.Result != nil {
			result = *o.Result
		}
		if len(o.Args) == 0 {
			return fmt.Sprintf("    call %s, %s", result, o.Func)
		}
		args := make([]string, len(o.Args))
		for i, a := range o.Args {
			args[i] = formatOperand(a)
		}
		return fmt.Sprintf("    call %s, %s, %s", result, o.Func, strings.Join(args, ", "))
	case opcode.Return:
		if o.Value != nil {
			return fmt.Sprintf("    ret %s", formatOperand(*o.Value))
		}
		return "    ret"
	case opcode.PushArg:
		return fmt.Sprintf("    push_arg %s", o.Var)
	case opcode.PopArg:
		return fmt.Sprintf("    pop_arg %s", o.Dest)
	case opcode.Alloc:
		return fmt.Sprintf("    alloc %s, %s", o.Dest, formatOperand(o.Size))
	case opcode.Free:
		return fmt.Sprintf("    free %s", o.Ptr)
	case opcode.Load:
		return fmt.Sprintf("    load %s, %s, %s", o.Dest, o.Ptr, formatType(o.DType))
	case opcode.Store:
		return fmt.Sprintf("    store %s, %s, %s", o.Ptr, o.Source, formatType(o.DType))
	case opcode.GetAddr:
		return fmt.Sprintf("    get_addr %s, %s", o.Dest, o.Var)
	case opcode.Cast:
		return fmt.Sprintf("    cast %s, %s, %s", o.Dest, o.Source, formatType(o.TargetType))
	case opcode.Sqrt:
		return unLine("sqrt", o.Dest, o.Source)
	case opcode.Sin:
		return unLine("sin", o.Dest, o.Source)
	case opcode.Cos:
		return unLine("cos", o.Dest, o.Source)
	case opcode.Tan:
		return unLine("tan", o.Dest, o.Source)
	case opcode.Abs:
		return unLine("abs", o.Dest, o.Source)
	case opcode.Pow:
		return binLine("pow", o.Dest, o.Base, o.Exp)
	case opcode.Min:
		return binLine("min", o.Dest, o.A, o.B)
	case opcode.Max:
		return binLine("max", o.Dest, o.A, o.B)
	case opcode.Print:
		return fmt.Sprintf("    print %s", o.Var)
	case opcode.Input:
		return fmt.Sprintf("    input %s", o.Dest)
	case opcode.Exit:
		return fmt.Sprintf("    exit %s", formatOperand(o.Code))
	default:
		return fmt.Sprintf("    ; unrecognized opcode %T", instr)
	}
}

func binLine(mnemonic, dest string, left, right value.Operand) string {
	return fmt.Sprintf("    %s %s, %s, %s", mnemonic, dest, formatOperand(left), formatOperand(right))
}

func unLine(mnemonic, dest string, src value.Operand) string {
	return fmt.Sprintf("    %s %s, %s", mnemonic, dest, formatOperand(src))
}

func formatOperand(op value.Operand) string {
	switch op.Kind {
	case value.OperandVariable:
		return op.Name
	case value.OperandImmediate:
		return formatValue(op.Value)
	case value.OperandLabel:
		return op.Name
	case value.OperandType:
		return formatType(op.DataType)
	default:
		return "?"
	}
}

func formatValue(v value.Value) string {
	switch v.Type {
	case value.Ptr:
		n, _ := v.AsUsize()
		return fmt.Sprintf("0x%x", n)
	case value.F32, value.F64:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return v.String()
	}
}

func formatType(dt value.DataType) string {
	return strings.ToLower(dt.String())
}
