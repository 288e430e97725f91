// Package assembler turns parsed source (asmparser.Item lists) into a
// program.Program: it resolves includes, substitutes defines, qualifies
// local labels, and builds typed opcode.Opcode values with arity
// checking (C6).
package assembler

import (
	"path/filepath"
	"strconv"
	"strings"

	"varvm/internal/asmerr"
	"varvm/internal/asmlexer"
	"varvm/internal/asmparser"
	"varvm/internal/opcode"
	"varvm/internal/program"
	"varvm/internal/value"
)

// Loader resolves an include path (relative to the including file) to
// its source text and a canonical key used for cycle detection.
type Loader interface {
	Load(fromFile, path string) (canonicalKey string, source string, err error)
}

// Assembler drives the include/define/label pipeline and emits a
// program.Program.
type Assembler struct {
	loader      Loader
	defines     map[string]value.Value
	prog        *program.Program
	currentFunc string
	section     string // "" (no section chosen yet), "data", "text"
	srcMap      *program.SourceMap
}

// New returns an Assembler that resolves includes via loader.
func New(loader Loader) *Assembler {
	return &Assembler{loader: loader, defines: make(map[string]value.Value)}
}

// Assemble tokenizes and parses entryFile's source, expands includes,
// and builds the resulting Program.
func (a *Assembler) Assemble(entryFile, source string) (*program.Program, error) {
	items, err := a.expand(entryFile, source, map[string]bool{entryFile: true})
	if err != nil {
		return nil, err
	}
	a.prog = program.New()
	a.srcMap = &program.SourceMap{File: entryFile, Locations: make(map[int]program.SourceLocation)}
	a.prog.Source = a.srcMap
	for _, it := range items {
		if err := a.build(it); err != nil {
			return nil, err
		}
	}
	if a.currentFunc != "" {
		return nil, asmerr.New(asmerr.Assembly, "function %q missing func_end", a.currentFunc)
	}
	return a.prog, nil
}

// expand tokenizes+parses file's source and recursively splices in any
// include directives, in source order. visiting tracks the chain of
// files currently being expanded, for cycle detection.
func (a *Assembler) expand(file, source string, visiting map[string]bool) ([]asmparser.Item, error) {
	toks, err := asmlexer.New(file, source).Tokens()
	if err != nil {
		return nil, err
	}
	items, err := asmparser.New(file, toks).Parse()
	if err != nil {
		return nil, err
	}

	var out []asmparser.Item
	for _, it := range items {
		if it.Kind == asmparser.Stmt && it.Mnemonic == "include" {
			if len(it.Operands) != 1 || it.Operands[0].Kind != asmparser.OpString {
				return nil, a.assemblyErr(file, it, "include expects a single string path operand")
			}
			key, src, err := a.loader.Load(file, it.Operands[0].Text)
			if err != nil {
				return nil, asmerr.Wrap(asmerr.Assembly, err, "cannot resolve include %q", it.Operands[0].Text)
			}
			if visiting[key] {
				return nil, a.assemblyErr(file, it, "Circular include detected involving %q", it.Operands[0].Text)
			}
			nested := map[string]bool{key: true}
			for k := range visiting {
				nested[k] = true
			}
			included, err := a.expand(key, src, nested)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (a *Assembler) assemblyErr(file string, it asmparser.Item, format string, args ...any) *asmerr.Error {
	return asmerr.At(asmerr.Assembly, asmerr.Location{File: file, Line: it.Line, Column: it.Column}, format, args...)
}

func (a *Assembler) build(it asmparser.Item) error {
	switch it.Kind {
	case asmparser.SectionDirective:
		a.section = it.Section
		return nil
	case asmparser.LabelDef:
		name := a.qualifyLabel(it.Label)
		a.prog.Emit(opcode.Label{Name: name})
		return nil
	case asmparser.Stmt:
		return a.buildStmt(it)
	default:
		return asmerr.New(asmerr.Assembly, "unknown item kind")
	}
}

func (a *Assembler) qualifyLabel(name string) string {
	if strings.HasPrefix(name, ".") && a.currentFunc != "" {
		return a.currentFunc + ":" + name
	}
	return name
}

func (a *Assembler) buildStmt(it asmparser.Item) error {
	switch it.Mnemonic {
	case "define":
		return a.buildDefine(it)
	case "global":
		return a.buildGlobal(it)
	case "string":
		return a.buildString(it)
	case "local":
		return a.buildLocal(it)
	case "delete_local":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			name, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.DeleteLocal{Name: name})
			return nil
		})
	case "set":
		return a.arity(it, 2, func(ops []asmparser.Operand) error {
			dest, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			v, err := a.valueOperand(ops[1])
			if err != nil {
				return err
			}
			a.emit(it, opcode.SetVar{Dest: dest, Value: v})
			return nil
		})
	case "copy":
		return a.arity(it, 2, func(ops []asmparser.Operand) error {
			dest, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			src, err := a.varName(ops[1])
			if err != nil {
				return err
			}
			a.emit(it, opcode.CopyVar{Dest: dest, Source: src})
			return nil
		})
	case "add", "sub", "mul", "div", "mod", "and", "or", "xor", "shl", "shr",
		"eq", "ne", "lt", "le", "gt", "ge":
		return a.buildBinary(it)
	case "neg", "not", "sqrt", "abs", "sin", "cos", "tan":
		return a.buildUnary(it)
	case "pow", "min", "max":
		return a.buildTernaryValue(it)
	case "jmp":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			target, err := a.labelTarget(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Jmp{Target: target})
			return nil
		})
	case "jz", "jnz":
		return a.arity(it, 2, func(ops []asmparser.Operand) error {
			v, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			target, err := a.labelTarget(ops[1])
			if err != nil {
				return err
			}
			if it.Mnemonic == "jz" {
				a.emit(it, opcode.Jz{Var: v, Target: target})
			} else {
				a.emit(it, opcode.Jnz{Var: v, Target: target})
			}
			return nil
		})
	case "call":
		return a.buildCall(it)
	case "ret":
		return a.buildReturn(it)
	case "push_arg":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			v, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.PushArg{Var: v})
			return nil
		})
	case "pop_arg":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			v, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.PopArg{Dest: v})
			return nil
		})
	case "print":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			v, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Print{Var: v})
			return nil
		})
	case "input":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			v, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Input{Dest: v})
			return nil
		})
	case "exit":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			v, err := a.valueOperand(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Exit{Code: v})
			return nil
		})
	case "alloc":
		return a.arity(it, 2, func(ops []asmparser.Operand) error {
			dest, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			size, err := a.valueOperand(ops[1])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Alloc{Dest: dest, Size: size})
			return nil
		})
	case "free":
		return a.arity(it, 1, func(ops []asmparser.Operand) error {
			v, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Free{Ptr: v})
			return nil
		})
	case "load":
		return a.arity(it, 3, func(ops []asmparser.Operand) error {
			dest, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			ptr, err := a.varName(ops[1])
			if err != nil {
				return err
			}
			dt, err := a.typeOperand(ops[2])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Load{Dest: dest, Ptr: ptr, DType: dt})
			return nil
		})
	case "store":
		return a.arity(it, 3, func(ops []asmparser.Operand) error {
			ptr, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			src, err := a.varName(ops[1])
			if err != nil {
				return err
			}
			dt, err := a.typeOperand(ops[2])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Store{Ptr: ptr, Source: src, DType: dt})
			return nil
		})
	case "get_addr":
		return a.arity(it, 2, func(ops []asmparser.Operand) error {
			dest, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			v, err := a.varName(ops[1])
			if err != nil {
				return err
			}
			a.emit(it, opcode.GetAddr{Dest: dest, Var: v})
			return nil
		})
	case "cast":
		return a.arity(it, 3, func(ops []asmparser.Operand) error {
			dest, err := a.varName(ops[0])
			if err != nil {
				return err
			}
			src, err := a.varName(ops[1])
			if err != nil {
				return err
			}
			dt, err := a.typeOperand(ops[2])
			if err != nil {
				return err
			}
			a.emit(it, opcode.Cast{Dest: dest, Source: src, TargetType: dt})
			return nil
		})
	case "func_begin":
		return a.buildFuncBegin(it)
	case "func_end":
		return a.buildFuncEnd(it)
	default:
		return a.assemblyErr(a.srcMap.File, it, "unknown mnemonic %q", it.Mnemonic)
	}
}

func (a *Assembler) emit(it asmparser.Item, op opcode.Opcode) {
	ip := a.prog.Emit(op)
	a.srcMap.Locations[ip] = program.SourceLocation{File: a.srcMap.File, Line: it.Line, Column: it.Column}
}

func (a *Assembler) arity(it asmparser.Item, n int, fn func([]asmparser.Operand) error) error {
	if len(it.Operands) != n {
		return a.assemblyErr(a.srcMap.File, it, "%q expects %d operand(s), got %d", it.Mnemonic, n, len(it.Operands))
	}
	return fn(it.Operands)
}

func (a *Assembler) buildBinary(it asmparser.Item) error {
	return a.arity(it, 3, func(ops []asmparser.Operand) error {
		dest, err := a.varName(ops[0])
		if err != nil {
			return err
		}
		left, err := a.valueOperand(ops[1])
		if err != nil {
			return err
		}
		right, err := a.valueOperand(ops[2])
		if err != nil {
			return err
		}
		var op opcode.Opcode
		switch it.Mnemonic {
		case "add":
			op = opcode.Add{Dest: dest, Left: left, Right: right}
		case "sub":
			op = opcode.Sub{Dest: dest, Left: left, Right: right}
		case "mul":
			op = opcode.Mul{Dest: dest, Left: left, Right: right}
		case "div":
			op = opcode.Div{Dest: dest, Left: left, Right: right}
		case "mod":
			op = opcode.Mod{Dest: dest, Left: left, Right: right}
		case "and":
			op = opcode.And{Dest: dest, Left: left, Right: right}
		case "or":
			op = opcode.Or{Dest: dest, Left: left, Right: right}
		case "xor":
			op = opcode.Xor{Dest: dest, Left: left, Right: right}
		case "shl":
			op = opcode.Shl{Dest: dest, Left: left, Right: right}
		case "shr":
			op = opcode.Shr{Dest: dest, Left: left, Right: right}
		case "eq":
			op = opcode.Eq{Dest: dest, Left: left, Right: right}
		case "ne":
			op = opcode.Ne{Dest: dest, Left: left, Right: right}
		case "lt":
			op = opcode.Lt{Dest: dest, Left: left, Right: right}
		case "le":
			op = opcode.Le{Dest: dest, Left: left, Right: right}
		case "gt":
			op = opcode.Gt{Dest: dest, Left: left, Right: right}
		case "ge":
			op = opcode.Ge{Dest: dest, Left: left, Right: right}
		}
		a.emit(it, op)
		return nil
	})
}

func (a *Assembler) buildUnary(it asmparser.Item) error {
	return a.arity(it, 2, func(ops []asmparser.Operand) error {
		dest, err := a.varName(ops[0])
		if err != nil {
			return err
		}
		src, err := a.valueOperand(ops[1])
		if err != nil {
			return err
		}
		var op opcode.Opcode
		switch it.Mnemonic {
		case "neg":
			op = opcode.Neg{Dest: dest, Source: src}
		case "not":
			op = opcode.Not{Dest: dest, Source: src}
		case "sqrt":
			op = opcode.Sqrt{Dest: dest, Source: src}
		case "abs":
			op = opcode.Abs{Dest: dest, Source: src}
		case "sin":
			op = opcode.Sin{Dest: dest, Source: src}
		case "cos":
			op = opcode.Cos{Dest: dest, Source: src}
		case "tan":
			op = opcode.Tan{Dest: dest, Source: src}
		}
		a.emit(it, op)
		return nil
	})
}

func (a *Assembler) buildTernaryValue(it asmparser.Item) error {
	return a.arity(it, 3, func(ops []asmparser.Operand) error {
		dest, err := a.varName(ops[0])
		if err != nil {
			return err
		}
		x, err := a.valueOperand(ops[1])
		if err != nil {
			return err
		}
		y, err := a.valueOperand(ops[2])
		if err != nil {
			return err
		}
		switch it.Mnemonic {
		case "pow":
			a.emit(it, opcode.Pow{Dest: dest, Base: x, Exp: y})
		case "min":
			a.emit(it, opcode.Min{Dest: dest, A: x, B: y})
		case "max":
			a.emit(it, opcode.Max{Dest: dest, A: x, B: y})
		}
		return nil
	})
}

func (a *Assembler) buildCall(it asmparser.Item) error {
	if len(it.Operands) < 2 {
		return a.assemblyErr(a.srcMap.File, it, "call expects at least 2 operands (result, function)")
	}
	var result *string
	if it.Operands[0].Kind != asmparser.OpUnderscore {
		name, err := a.varName(it.Operands[0])
		if err != nil {
			return err
		}
		result = &name
	}
	fn, err := a.varName(it.Operands[1])
	if err != nil {
		return err
	}
	args := make([]value.Operand, 0, len(it.Operands)-2)
	for _, o := range it.Operands[2:] {
		v, err := a.valueOperand(o)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	a.emit(it, opcode.Call{Result: result, Func: fn, Args: args})
	return nil
}

func (a *Assembler) buildReturn(it asmparser.Item) error {
	switch len(it.Operands) {
	case 0:
		a.emit(it, opcode.Return{Value: nil})
		return nil
	case 1:
		v, err := a.valueOperand(it.Operands[0])
		if err != nil {
			return err
		}
		a.emit(it, opcode.Return{Value: &v})
		return nil
	default:
		return a.assemblyErr(a.srcMap.File, it, "ret expects 0 or 1 operand, got %d", len(it.Operands))
	}
}

func (a *Assembler) buildDefine(it asmparser.Item) error {
	return a.arity(it, 2, func(ops []asmparser.Operand) error {
		if ops[0].Kind != asmparser.OpIdent {
			return a.assemblyErr(a.srcMap.File, it, "define expects an identifier name")
		}
		if ops[1].Kind != asmparser.OpNumber {
			return a.assemblyErr(a.srcMap.File, it, "define expects a numeric value")
		}
		v, err := parseNumber(ops[1].Text)
		if err != nil {
			return a.assemblyErr(a.srcMap.File, it, "%s", err)
		}
		a.defines[ops[0].Text] = v
		return nil
	})
}

func (a *Assembler) buildGlobal(it asmparser.Item) error {
	return a.arity(it, 2, func(ops []asmparser.Operand) error {
		dt, err := a.typeOperand(ops[0])
		if err != nil {
			return err
		}
		name, err := a.varName(ops[1])
		if err != nil {
			return err
		}
		a.prog.AddGlobal(program.NewVariable(name, dt, true))
		a.emit(it, opcode.CreateGlobal{DType: dt, Name: name})
		return nil
	})
}

func (a *Assembler) buildLocal(it asmparser.Item) error {
	return a.arity(it, 2, func(ops []asmparser.Operand) error {
		dt, err := a.typeOperand(ops[0])
		if err != nil {
			return err
		}
		name, err := a.varName(ops[1])
		if err != nil {
			return err
		}
		a.emit(it, opcode.CreateLocal{DType: dt, Name: name})
		return nil
	})
}

func (a *Assembler) buildString(it asmparser.Item) error {
	return a.arity(it, 2, func(ops []asmparser.Operand) error {
		name, err := a.varName(ops[0])
		if err != nil {
			return err
		}
		if ops[1].Kind != asmparser.OpString {
			return a.assemblyErr(a.srcMap.File, it, "string expects a string literal content operand")
		}
		a.prog.AddGlobal(program.NewVariable(name, value.Ptr, true))
		a.prog.AddString(name, ops[1].Text)
		return nil
	})
}

func (a *Assembler) buildFuncBegin(it asmparser.Item) error {
	return a.arity(it, 2, func(ops []asmparser.Operand) error {
		if a.currentFunc != "" {
			return a.assemblyErr(a.srcMap.File, it, "nested func_begin inside %q", a.currentFunc)
		}
		if len(a.prog.Instructions) == 0 {
			return a.assemblyErr(a.srcMap.File, it, "func_begin must follow a label")
		}
		lbl, ok := a.prog.Instructions[len(a.prog.Instructions)-1].(opcode.Label)
		if !ok {
			return a.assemblyErr(a.srcMap.File, it, "func_begin must immediately follow a label")
		}
		name, err := a.varName(ops[0])
		if err != nil {
			return err
		}
		dt, err := a.typeOperand(ops[1])
		if err != nil {
			return err
		}
		a.currentFunc = name
		startIP := a.prog.Labels[lbl.Name]
		a.prog.AddFunction(program.Function{Name: name, ReturnType: dt, StartIP: startIP})
		a.emit(it, opcode.FuncBegin{Name: name, ReturnType: dt})
		return nil
	})
}

func (a *Assembler) buildFuncEnd(it asmparser.Item) error {
	return a.arity(it, 0, func([]asmparser.Operand) error {
		if a.currentFunc == "" {
			return a.assemblyErr(a.srcMap.File, it, "func_end with no matching func_begin")
		}
		fn := a.prog.Functions[a.currentFunc]
		fn.EndIP = len(a.prog.Instructions)
		a.prog.AddFunction(fn)
		a.emit(it, opcode.FuncEnd{})
		a.currentFunc = ""
		return nil
	})
}

func (a *Assembler) varName(op asmparser.Operand) (string, error) {
	if op.Kind != asmparser.OpIdent {
		return "", asmerr.At(asmerr.Assembly, asmerr.Location{File: a.srcMap.File, Line: op.Line, Column: op.Column}, "expected identifier, found %v", op.Text)
	}
	return op.Text, nil
}

func (a *Assembler) typeOperand(op asmparser.Operand) (value.DataType, error) {
	if op.Kind != asmparser.OpIdent {
		return 0, asmerr.At(asmerr.Assembly, asmerr.Location{File: a.srcMap.File, Line: op.Line, Column: op.Column}, "expected a type name")
	}
	dt, ok := value.ParseDataType(op.Text)
	if !ok {
		return 0, asmerr.At(asmerr.Assembly, asmerr.Location{File: a.srcMap.File, Line: op.Line, Column: op.Column}, "unknown type %q", op.Text)
	}
	return dt, nil
}

func (a *Assembler) labelTarget(op asmparser.Operand) (string, error) {
	if op.Kind != asmparser.OpLabel {
		return "", asmerr.At(asmerr.Assembly, asmerr.Location{File: a.srcMap.File, Line: op.Line, Column: op.Column}, "expected a local label")
	}
	return a.qualifyLabel(op.Text), nil
}

func (a *Assembler) valueOperand(op asmparser.Operand) (value.Operand, error) {
	switch op.Kind {
	case asmparser.OpIdent:
		if v, ok := a.defines[op.Text]; ok {
			return value.Immediate(v), nil
		}
		return value.Variable(op.Text), nil
	case asmparser.OpNumber:
		v, err := parseNumber(op.Text)
		if err != nil {
			return value.Operand{}, asmerr.At(asmerr.Assembly, asmerr.Location{File: a.srcMap.File, Line: op.Line, Column: op.Column}, "%s", err)
		}
		return value.Immediate(v), nil
	default:
		return value.Operand{}, asmerr.At(asmerr.Assembly, asmerr.Location{File: a.srcMap.File, Line: op.Line, Column: op.Column}, "expected a variable or immediate value")
	}
}

// parseNumber turns a lexed numeric literal into an Immediate-eligible
// Value: I32 if it fits and has no fractional/exponent part, I64 if it
// overflows I32, otherwise F64.
func parseNumber(text string) (value.Value, error) {
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Value{}, asmerr.New(asmerr.Assembly, "invalid numeric literal %q", text)
		}
		return value.F64V(f), nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Value{}, asmerr.New(asmerr.Assembly, "invalid numeric literal %q", text)
	}
	if i >= -2147483648 && i <= 2147483647 {
		return value.I32V(int32(i)), nil
	}
	return value.I64V(i), nil
}

// FileLoader resolves includes relative to the including file's
// directory using filepath.Join, returning the cleaned absolute-ish
// path as the cycle-detection key.
type FileLoader struct {
	Read func(path string) (string, error)
}

func (f FileLoader) Load(fromFile, path string) (string, string, error) {
	resolved := path
	if !filepath.IsAbs(path) {
		resolved = filepath.Join(filepath.Dir(fromFile), path)
	}
	key := filepath.Clean(resolved)
	src, err := f.Read(resolved)
	if err != nil {
		return "", "", err
	}
	return key, src, nil
}
