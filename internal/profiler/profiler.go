// Package profiler counts per-opcode, per-function and per-IP execution
// frequency over a VM run and formats the result as a report.
package profiler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"varvm/internal/opcode"
	"varvm/internal/vm"
)

// Data accumulates counters for one run. Create it with NewData: the
// zero value has nil maps and Record panics on it.
type Data struct {
	TotalInstructions uint64
	InstructionCounts  map[string]uint64
	FunctionCalls      map[string]uint64
	IPCounts           map[int]uint64

	start, end time.Time
}

// NewData returns an empty, ready-to-record Data.
func NewData() *Data {
	return &Data{
		InstructionCounts: make(map[string]uint64),
		FunctionCalls:     make(map[string]uint64),
		IPCounts:          make(map[int]uint64),
	}
}

// Record tallies one executed instruction at ip.
func (d *Data) Record(ip int, instr opcode.Opcode) {
	d.TotalInstructions++
	name := opcodeName(instr)
	d.InstructionCounts[name]++
	d.IPCounts[ip]++
	if call, ok := instr.(opcode.Call); ok {
		d.FunctionCalls[call.Func]++
	}
}

func (d *Data) duration() (time.Duration, bool) {
	if d.start.IsZero() || d.end.IsZero() {
		return 0, false
	}
	return d.end.Sub(d.start), true
}

// Profiler wraps Data with start/stop timestamping and attaches itself
// to a VM via vm.WithTrace.
type Profiler struct {
	data *Data
}

// New returns a Profiler with an empty Data set.
func New() *Profiler { return &Profiler{data: NewData()} }

// Option returns the vm.Option that wires this profiler's Record method
// into a VM's execution trace.
func (p *Profiler) Option() vm.Option {
	return vm.WithTrace(func(ip int, instr opcode.Opcode) { p.data.Record(ip, instr) })
}

// Start marks the beginning of a timed run.
func (p *Profiler) Start() { p.data.start = time.Now() }

// Stop marks the end of a timed run.
func (p *Profiler) Stop() { p.data.end = time.Now() }

// Data returns the accumulated counters.
func (p *Profiler) Data() *Data { return p.data }

type countPair struct {
	name  string
	count uint64
}

func topSorted(m map[string]uint64, topN int) []countPair {
	pairs := make([]countPair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, countPair{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if topN > 0 && len(pairs) > topN {
		pairs = pairs[:topN]
	}
	return pairs
}

type ipCount struct {
	ip    int
	count uint64
}

func topIPs(m map[int]uint64, topN int) []ipCount {
	pairs := make([]ipCount, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, ipCount{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].ip < pairs[j].ip
	})
	if topN > 0 && len(pairs) > topN {
		pairs = pairs[:topN]
	}
	return pairs
}

// Report renders d as the plain-text report format, showing at most
// topN entries per section.
func (d *Data) Report(topN int) string {
	var out strings.Builder
	out.WriteString("=== varvm Profile Report ===\n\n")
	fmt.Fprintf(&out, "Total Instructions: %d\n", d.TotalInstructions)

	if dur, ok := d.duration(); ok {
		millis := dur.Milliseconds()
		fmt.Fprintf(&out, "Execution Time: %dms\n", millis)
		if millis > 0 {
			ips := (int64(d.TotalInstructions) * 1000) / millis
			fmt.Fprintf(&out, "Instructions/sec: %d\n", ips)
		}
	}
	out.WriteString("\n")

	out.WriteString("Instruction Breakdown:\n")
	for _, p := range topSorted(d.InstructionCounts, topN) {
		pct := 0.0
		if d.TotalInstructions > 0 {
			pct = float64(p.count) / float64(d.TotalInstructions) * 100
		}
		fmt.Fprintf(&out, "  %-15s %8d (%5.1f%%)\n", p.name, p.count, pct)
	}
	out.WriteString("\n")

	if len(d.FunctionCalls) > 0 {
		out.WriteString("Function Call Counts:\n")
		for _, p := range topSorted(d.FunctionCalls, topN) {
			fmt.Fprintf(&out, "  %-20s %8d calls\n", p.name, p.count)
		}
		out.WriteString("\n")
	}

	fmt.Fprintf(&out, "Top %d Hot Spots (by IP):\n", topN)
	for _, p := range topIPs(d.IPCounts, topN) {
		pct := 0.0
		if d.TotalInstructions > 0 {
			pct = float64(p.count) / float64(d.TotalInstructions) * 100
		}
		fmt.Fprintf(&out, "  IP %-4d %8d executions (%5.1f%%)\n", p.ip, p.count, pct)
	}

	return out.String()
}

// yamlReport is the serializable shape of a profile report.
type yamlReport struct {
	TotalInstructions uint64           `yaml:"total_instructions"`
	ExecutionTimeMS   *int64           `yaml:"execution_time_ms,omitempty"`
	Instructions      []yamlCount      `yaml:"instructions"`
	FunctionCalls     []yamlCount      `yaml:"function_calls,omitempty"`
	HotSpots          []yamlIPCount    `yaml:"hot_spots"`
}

type yamlCount struct {
	Name  string `yaml:"name"`
	Count uint64 `yaml:"count"`
}

type yamlIPCount struct {
	IP    int    `yaml:"ip"`
	Count uint64 `yaml:"count"`
}

// ReportYAML renders d as a YAML document carrying the same information
// as Report, restoring the original tool's report in a machine-readable
// form.
func (d *Data) ReportYAML(topN int) (string, error) {
	r := yamlReport{TotalInstructions: d.TotalInstructions}
	if dur, ok := d.duration(); ok {
		ms := dur.Milliseconds()
		r.ExecutionTimeMS = &ms
	}
	for _, p := range topSorted(d.InstructionCounts, topN) {
		r.Instructions = append(r.Instructions, yamlCount{p.name, p.count})
	}
	for _, p := range topSorted(d.FunctionCalls, topN) {
		r.FunctionCalls = append(r.FunctionCalls, yamlCount{p.name, p.count})
	}
	for _, p := range topIPs(d.IPCounts, topN) {
		r.HotSpots = append(r.HotSpots, yamlIPCount{p.ip, p.count})
	}

	out, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("profiler: marshal yaml report: %w", err)
	}
	return string(out), nil
}

func opcodeName(instr opcode.Opcode) string {
	switch instr.(type) {
	case opcode.CreateLocal:
		return "CreateLocal"
	case opcode.CreateGlobal:
		return "CreateGlobal"
	case opcode.DeleteLocal:
		return "DeleteLocal"
	case opcode.SetVar:
		return "SetVar"
	case opcode.CopyVar:
		return "CopyVar"
	case opcode.Alloc:
		return "Alloc"
	case opcode.Free:
		return "Free"
	case opcode.Load:
		return "Load"
	case opcode.Store:
		return "Store"
	case opcode.GetAddr:
		return "GetAddr"
	case opcode.Add:
		return "Add"
	case opcode.Sub:
		return "Sub"
	case opcode.Mul:
		return "Mul"
	case opcode.Div:
		return "Div"
	case opcode.Mod:
		return "Mod"
	case opcode.Neg:
		return "Neg"
	case opcode.And:
		return "And"
	case opcode.Or:
		return "Or"
	case opcode.Xor:
		return "Xor"
	case opcode.Not:
		return "Not"
	case opcode.Shl:
		return "Shl"
	case opcode.Shr:
		return "Shr"
	case opcode.Eq:
		return "Eq"
	case opcode.Ne:
		return "Ne"
	case opcode.Lt:
		return "Lt"
	case opcode.Le:
		return "Le"
	case opcode.Gt:
		return "Gt"
	case opcode.Ge:
		return "Ge"
	case opcode.Label:
		return "Label"
	case opcode.Jmp:
		return "Jmp"
	case opcode.Jz:
		return "Jz"
	case opcode.Jnz:
		return "Jnz"
	case opcode.FuncBegin:
		return "FuncBegin"
	case opcode.FuncEnd:
		return "FuncEnd"
	case opcode.Call:
		return "Call"
	case opcode.Return:
		return "Return"
	case opcode.PushArg:
		return "PushArg"
	case opcode.PopArg:
		return "PopArg"
	case opcode.Cast:
		return "Cast"
	case opcode.Sqrt:
		return "Sqrt"
	case opcode.Pow:
		return "Pow"
	case opcode.Abs:
		return "Abs"
	case opcode.Min:
		return "Min"
	case opcode.Max:
		return "Max"
	case opcode.Sin:
		return "Sin"
	case opcode.Cos:
		return "Cos"
	case opcode.Tan:
		return "Tan"
	case opcode.Print:
		return "Print"
	case opcode.Input:
		return "Input"
	case opcode.Exit:
		return "Exit"
	default:
		return fmt.Sprintf("%T", instr)
	}
}
