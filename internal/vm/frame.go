package vm

import "varvm/internal/value"

// CallFrame is one activation record: the callee's locals, the IP to
// resume at in the caller, and where (if anywhere) to store its
// return value.
type CallFrame struct {
	FunctionName string
	ReturnIP     int
	Locals       map[string]value.Value
	LocalTypes   map[string]value.DataType
	ReturnDest   *string
	Args         []value.Value

	// Addrs caches the heap address GetAddr has allocated for a given
	// local, keyed by variable name, so repeated get_addr on the same
	// variable within this frame returns the same address rather than a
	// fresh allocation every time.
	Addrs map[string]uint64
}

func newFrame(name string, returnIP int, returnDest *string, args []value.Value) *CallFrame {
	return &CallFrame{
		FunctionName: name,
		ReturnIP:     returnIP,
		Locals:       make(map[string]value.Value),
		LocalTypes:   make(map[string]value.DataType),
		ReturnDest:   returnDest,
		Args:         args,
		Addrs:        make(map[string]uint64),
	}
}

// popArg removes and returns the frontmost queued argument, preserving
// caller-to-callee left-to-right order.
func (f *CallFrame) popArg() (value.Value, bool) {
	if len(f.Args) == 0 {
		return value.Value{}, false
	}
	v := f.Args[0]
	f.Args = f.Args[1:]
	return v, true
}
