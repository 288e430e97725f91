package bytecode

import (
	"varvm/internal/asmerr"
	"varvm/internal/program"
)

// Encode serializes prog into the binary image format.
func Encode(prog *program.Program) ([]byte, error) {
	w := &writer{}
	w.buf.Write(Magic[:])
	w.u8(Version)

	w.u32(uint32(len(prog.Globals)))
	for _, g := range prog.Globals {
		w.str(g.Name)
		w.dataType(g.DType)
	}

	w.u32(uint32(len(prog.Functions)))
	for name, fn := range prog.Functions {
		w.str(name)
		w.dataType(fn.ReturnType)
		w.u32(uint32(fn.StartIP))
		w.u32(uint32(fn.EndIP))
	}

	w.u32(uint32(len(prog.Labels)))
	for name, ip := range prog.Labels {
		w.str(name)
		w.u32(uint32(ip))
	}

	w.u32(uint32(len(prog.Instructions)))
	for _, op := range prog.Instructions {
		if err := w.opcode(op); err != nil {
			return nil, err
		}
	}

	w.u32(uint32(len(prog.Strings)))
	for _, s := range prog.Strings {
		w.str(s.GlobalName)
		w.str(s.Content)
	}

	return w.buf.Bytes(), nil
}

// Decode parses a binary image produced by Encode back into a Program.
func Decode(data []byte) (*program.Program, error) {
	r := &reader{buf: data}

	var magic [4]byte
	for i := range magic {
		b, err := r.u8()
		if err != nil {
			return nil, asmerr.Wrap(asmerr.Assembly, err, "reading magic bytes")
		}
		magic[i] = b
	}
	if magic != Magic {
		return nil, asmerr.New(asmerr.Assembly, "not a varvm binary image (bad magic bytes)")
	}
	ver, err := r.u8()
	if err != nil {
		return nil, err
	}
	if ver != Version {
		return nil, asmerr.New(asmerr.Assembly, "unsupported binary image version %d", ver)
	}

	prog := program.New()

	nGlobals, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nGlobals; i++ {
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		dt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		prog.AddGlobal(program.NewVariable(name, dt, true))
	}

	nFuncs, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nFuncs; i++ {
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		rt, err := r.dataType()
		if err != nil {
			return nil, err
		}
		start, err := r.u32()
		if err != nil {
			return nil, err
		}
		end, err := r.u32()
		if err != nil {
			return nil, err
		}
		prog.AddFunction(program.Function{Name: name, ReturnType: rt, StartIP: int(start), EndIP: int(end)})
	}

	nLabels, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nLabels; i++ {
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		ip, err := r.u32()
		if err != nil {
			return nil, err
		}
		prog.Labels[name] = int(ip)
	}

	nInstr, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nInstr; i++ {
		op, err := r.opcodeOp()
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, op)
	}

	nStrings, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nStrings; i++ {
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		content, err := r.str()
		if err != nil {
			return nil, err
		}
		prog.AddString(name, content)
	}

	return prog, nil
}
