// debug.go - register inspection, disassembly, and fault tracing
//
// Scales debug_cpu_x86.go/debug_disasm_x86.go's DebuggableCPU surface down
// to this core's single-CPU, segment:offset world: a flat register list
// for display, a disassembly walk built from the same Decode() the engine
// runs, and the breakpoint wrappers spec §4.E calls for. DumpState follows
// hejops-gone's use of go-spew for a one-call human-readable trace instead
// of hand-rolled Printf formatting.

package main

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// RegisterSnapshot describes one register's current value for display.
type RegisterSnapshot struct {
	Name  string
	Value uint16
	Group string
}

// Registers returns every architectural register in display order.
func Registers(cpu *CPU) []RegisterSnapshot {
	return []RegisterSnapshot{
		{"AX", cpu.AX(), "general"},
		{"BX", cpu.BX(), "general"},
		{"CX", cpu.CX(), "general"},
		{"DX", cpu.DX(), "general"},
		{"SI", cpu.SI(), "index"},
		{"DI", cpu.DI(), "index"},
		{"BP", cpu.BP(), "index"},
		{"SP", cpu.SP(), "index"},
		{"CS", cpu.CS(), "segment"},
		{"DS", cpu.DS(), "segment"},
		{"ES", cpu.ES(), "segment"},
		{"SS", cpu.SS(), "segment"},
		{"IP", cpu.IP(), "general"},
		{"FLAGS", cpu.Flags(), "flags"},
	}
}

// Register looks up one register by name, case-insensitive.
func Register(cpu *CPU, name string) (uint16, bool) {
	for _, r := range Registers(cpu) {
		if strings.EqualFold(r.Name, name) {
			return r.Value, true
		}
	}
	return 0, false
}

// FlagString renders the flags word as the conventional letter mnemonics,
// matching the order debuggers of this vintage print them in.
func FlagString(cpu *CPU) string {
	set := func(b bool, c string) string {
		if b {
			return c
		}
		return "-"
	}
	return set(cpu.OF(), "O") + set(cpu.DF(), "D") + set(cpu.IF(), "I") +
		set(cpu.SF(), "S") + set(cpu.ZF(), "Z") + set(cpu.AF(), "A") +
		set(cpu.PF(), "P") + set(cpu.CF(), "C")
}

// DisasmLine is one decoded instruction at a fixed CS, for listing a
// contiguous run starting at some IP.
type DisasmLine struct {
	Offset uint16
	Bytes  []byte
	Text   string
	IsPC   bool
}

// Disassemble decodes count instructions starting at cs:ip without
// executing them, for a debugger's instruction listing.
func Disassemble(mem *Memory, cs, ip uint16, count int, pc uint16) ([]DisasmLine, error) {
	lines := make([]DisasmLine, 0, count)
	offset := ip
	for i := 0; i < count; i++ {
		start := offset
		ins, err := Decode(func(o int) byte {
			b, _ := mem.Read8(cs, start+uint16(o))
			return b
		}, offset)
		if err != nil {
			return lines, err
		}
		raw := make([]byte, ins.Length)
		for j := 0; j < ins.Length; j++ {
			raw[j], _ = mem.Read8(cs, start+uint16(j))
		}
		lines = append(lines, DisasmLine{
			Offset: start,
			Bytes:  raw,
			Text:   ins.String(),
			IsPC:   start == pc,
		})
		offset += uint16(ins.Length)
	}
	return lines, nil
}

func (l DisasmLine) String() string {
	hex := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	marker := "  "
	if l.IsPC {
		marker = "->"
	}
	return fmt.Sprintf("%s %04X  %-18s %s", marker, l.Offset, strings.Join(hex, " "), l.Text)
}

// SetBreakpoint, ClearBreakpoint, and HasBreakpoint let a front end manage
// the engine's breakpoint set without reaching into Engine's fields.
func SetBreakpoint(e *Engine, cs, ip uint16)   { e.SetBreakpoint(cs, ip) }
func ClearBreakpoint(e *Engine, cs, ip uint16) { e.ClearBreakpoint(cs, ip) }
func HasBreakpoint(e *Engine, cs, ip uint16) bool { return e.HasBreakpoint(cs, ip) }

// stateDump is the shape DumpState hands to spew; a plain struct gives
// cleaner field alignment than dumping *CPU directly, which carries the
// unexported mutex and callback map a trace has no use for.
type stateDump struct {
	State     string
	Registers []RegisterSnapshot
	Flags     string
	LastCS    uint16
	LastIP    uint16
	Fault     string
}

// DumpState renders a snapshot of the CPU around a fault or breakpoint for
// the driver's --trace flag. err may be nil for a plain state dump.
func DumpState(cpu *CPU, err error) string {
	d := stateDump{
		State:     cpu.State().String(),
		Registers: Registers(cpu),
		Flags:     FlagString(cpu),
		LastCS:    cpu.LastCS(),
		LastIP:    cpu.LastIP(),
	}
	if err != nil {
		d.Fault = err.Error()
	}
	return spew.Sdump(d)
}
