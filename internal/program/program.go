// Package program holds the assembled image: instructions, globals,
// functions and labels (C3 of the instruction model).
package program

import (
	"varvm/internal/opcode"
	"varvm/internal/value"
)

// Variable describes a global or local: its name, declared type, and
// whether it is a global.
type Variable struct {
	Name     string
	DType    value.DataType
	IsGlobal bool
}

// NewVariable builds a Variable with the given name/type/scope.
func NewVariable(name string, dtype value.DataType, isGlobal bool) Variable {
	return Variable{Name: name, DType: dtype, IsGlobal: isGlobal}
}

// Function records a function's declared return type and its inclusive
// instruction-index range [StartIP, EndIP]: StartIP is the index of the
// label naming the function (its FuncBegin follows) and EndIP the index
// of its FuncEnd.
type Function struct {
	Name       string
	ReturnType value.DataType
	StartIP    int
	EndIP      int
}

// StringLiteral is a global name bound to string content; the VM
// allocates Content+'\0' on the heap at load time and writes the
// resulting address into the named global.
type StringLiteral struct {
	GlobalName string
	Content    string
}

// SourceLocation is the (file, line, column) a given instruction index
// was emitted from, used to annotate runtime/assembly errors.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// SourceMap maps instruction index to the source location it came from.
// Present only when the program was built from text.
type SourceMap struct {
	File      string
	Locations map[int]SourceLocation
}

// Program is the assembled image: C3 of the spec.
type Program struct {
	Instructions []opcode.Opcode
	Globals      []Variable
	Functions    map[string]Function
	Labels       map[string]int
	Strings      []StringLiteral
	Source       *SourceMap
}

// New returns an empty image ready for emit/AddGlobal/AddFunction.
func New() *Program {
	return &Program{
		Functions: make(map[string]Function),
		Labels:    make(map[string]int),
	}
}

// Emit appends op to the instruction vector and returns its index. If op
// is a Label, its name is also bound to that index in the label table —
// label resolution happens entirely as this side effect of emission.
func (p *Program) Emit(op opcode.Opcode) int {
	ip := len(p.Instructions)
	if lbl, ok := op.(opcode.Label); ok {
		p.Labels[lbl.Name] = ip
	}
	p.Instructions = append(p.Instructions, op)
	return ip
}

// AddGlobal registers a global variable.
func (p *Program) AddGlobal(v Variable) {
	p.Globals = append(p.Globals, v)
}

// AddFunction registers (or overwrites) a function table entry by name.
func (p *Program) AddFunction(f Function) {
	p.Functions[f.Name] = f
}

// AddString records a string literal bound to globalName, to be
// materialized on the heap at VM load time.
func (p *Program) AddString(globalName, content string) {
	p.Strings = append(p.Strings, StringLiteral{GlobalName: globalName, Content: content})
}
