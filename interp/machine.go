// Package interp implements the fetch-decode-execute loop and
// instruction semantics of spec.md §4.5. It is grounded on the
// teacher's cpu_x86.go execution core, generalized from a 32-bit
// ModRM-decoded opcode space to this simulator's synthetic tagged
// Opcode/Operand instruction records.
package interp

import (
	"fmt"

	"github.com/realmode-labs/x86sim/loader"
	"github.com/realmode-labs/x86sim/membus"
	"github.com/realmode-labs/x86sim/operand"
	"github.com/realmode-labs/x86sim/register"
	"github.com/realmode-labs/x86sim/simerr"
)

// DefaultMaxSteps bounds Run() the way spec.md §4.5 requires: it
// returns normally, without error, once this many instructions have
// executed.
const DefaultMaxSteps = 10000

// segment names the segment register an operand access goes through:
// DS for data or SS for the stack.
type segment int

const (
	segDS segment = iota
	segSS
)

// Machine owns one register file, one memory bus, and the currently
// loaded program. It has no goroutines, channels, or mutexes: per
// spec.md §5 the core is strictly single-threaded and synchronous.
type Machine struct {
	Regs    *register.File
	Bus     *membus.SystemBus
	Program *loader.Program

	MaxSteps int
	log      func(string)
}

// New constructs a Machine over an existing register file and bus.
// The caller (engine.Engine) owns both so it can snapshot and trace
// them without reaching back into interp.
func New(regs *register.File, bus *membus.SystemBus) *Machine {
	return &Machine{Regs: regs, Bus: bus, MaxSteps: DefaultMaxSteps}
}

// SetLog installs the sink OUT and hardware-adjacent diagnostics write
// to. A nil sink discards output.
func (m *Machine) SetLog(fn func(string)) {
	m.log = fn
}

func (m *Machine) logf(format string, args ...any) {
	if m.log != nil {
		m.log(fmt.Sprintf(format, args...))
	}
}

// regName returns the register name backing a segment.
func (s segment) regName() string {
	if s == segSS {
		return "ss"
	}
	return "ds"
}

// readOperand fetches an operand's value at the given width (8 or 16),
// reading through seg for a memory reference.
func (m *Machine) readOperand(op operand.Operand, width int, seg segment) (uint16, error) {
	switch op.Kind {
	case operand.KindRegister:
		return m.Regs.Get(op.Register)
	case operand.KindImmediate:
		return op.Immediate, nil
	case operand.KindMemory:
		offset, err := m.effectiveOffset(op)
		if err != nil {
			return 0, err
		}
		segVal, err := m.Regs.Get(seg.regName())
		if err != nil {
			return 0, err
		}
		if width == 8 {
			return uint16(m.Bus.ReadByte(segVal, offset)), nil
		}
		return m.Bus.ReadWord(segVal, offset), nil
	default:
		return 0, fmt.Errorf("%w: operand cannot be read", simerr.ErrInvalidOperand)
	}
}

// writeOperand stores value into a register or memory operand at the
// given width.
func (m *Machine) writeOperand(op operand.Operand, value uint16, width int, seg segment) error {
	switch op.Kind {
	case operand.KindRegister:
		if width == 8 {
			return m.Regs.Set(op.Register, value&0xFF)
		}
		return m.Regs.Set(op.Register, value)
	case operand.KindMemory:
		offset, err := m.effectiveOffset(op)
		if err != nil {
			return err
		}
		segVal, err := m.Regs.Get(seg.regName())
		if err != nil {
			return err
		}
		if width == 8 {
			m.Bus.WriteByte(segVal, offset, byte(value))
		} else {
			m.Bus.WriteWord(segVal, offset, value)
		}
		return nil
	default:
		return fmt.Errorf("%w: operand cannot be written", simerr.ErrInvalidOperand)
	}
}

func (m *Machine) effectiveOffset(op operand.Operand) (uint16, error) {
	return operand.EffectiveOffset(op, m.Regs.Get)
}

// labelTarget resolves a KindLabel operand against the loaded
// program's label table.
func (m *Machine) labelTarget(op operand.Operand) (uint16, error) {
	off, ok := m.Program.Labels[op.Label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", simerr.ErrUnknownLabel, op.Label)
	}
	return off, nil
}

// pushWord pushes a 16-bit value onto the stack (always ss:sp,
// always 16-bit, per spec.md §4.5).
func (m *Machine) pushWord(value uint16) error {
	sp, err := m.Regs.Get("sp")
	if err != nil {
		return err
	}
	sp = (sp - 2) & 0xFFFF
	if err := m.Regs.Set("sp", sp); err != nil {
		return err
	}
	ss, err := m.Regs.Get("ss")
	if err != nil {
		return err
	}
	m.Bus.WriteWord(ss, sp, value)
	return nil
}

// popWord pops a 16-bit value from the stack.
func (m *Machine) popWord() (uint16, error) {
	sp, err := m.Regs.Get("sp")
	if err != nil {
		return 0, err
	}
	ss, err := m.Regs.Get("ss")
	if err != nil {
		return 0, err
	}
	value := m.Bus.ReadWord(ss, sp)
	if err := m.Regs.Set("sp", (sp+2)&0xFFFF); err != nil {
		return 0, err
	}
	return value, nil
}
