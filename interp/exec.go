package interp

import (
	"fmt"

	"github.com/realmode-labs/x86sim/loader"
	"github.com/realmode-labs/x86sim/operand"
	"github.com/realmode-labs/x86sim/register"
	"github.com/realmode-labs/x86sim/simerr"
)

// opFunc is one opcode's implementation: given the machine and the
// instruction's resolved operands, mutate state and report any
// failure.
type opFunc func(*Machine, []operand.Operand) error

// dispatch is populated once in init, mirroring the teacher's
// baseOps [256]func(*CPU_X86) table (cpu_x86.go) but keyed by the
// tagged Opcode enum instead of a raw decoded byte.
var dispatch [loader.OpcodeCount]opFunc

func init() {
	dispatch[loader.OpMov] = (*Machine).execMov
	dispatch[loader.OpXchg] = (*Machine).execXchg
	dispatch[loader.OpPush] = (*Machine).execPush
	dispatch[loader.OpPop] = (*Machine).execPop
	dispatch[loader.OpAdd] = (*Machine).execAdd
	dispatch[loader.OpSub] = (*Machine).execSub
	dispatch[loader.OpInc] = (*Machine).execInc
	dispatch[loader.OpDec] = (*Machine).execDec
	dispatch[loader.OpNeg] = (*Machine).execNeg
	dispatch[loader.OpCmp] = (*Machine).execCmp
	dispatch[loader.OpMul] = (*Machine).execMul
	dispatch[loader.OpDiv] = (*Machine).execDiv
	dispatch[loader.OpAnd] = (*Machine).execAnd
	dispatch[loader.OpOr] = (*Machine).execOr
	dispatch[loader.OpXor] = (*Machine).execXor
	dispatch[loader.OpNot] = (*Machine).execNot
	dispatch[loader.OpJmp] = (*Machine).execJmp
	dispatch[loader.OpJe] = jccFunc(func(f register.Flags) bool { return f.ZF })
	dispatch[loader.OpJne] = jccFunc(func(f register.Flags) bool { return !f.ZF })
	dispatch[loader.OpJg] = jccFunc(func(f register.Flags) bool { return !f.ZF && f.SF == f.OF })
	dispatch[loader.OpJge] = jccFunc(func(f register.Flags) bool { return f.SF == f.OF })
	dispatch[loader.OpJl] = jccFunc(func(f register.Flags) bool { return f.SF != f.OF })
	dispatch[loader.OpJle] = jccFunc(func(f register.Flags) bool { return f.ZF || f.SF != f.OF })
	dispatch[loader.OpCall] = (*Machine).execCall
	dispatch[loader.OpRet] = (*Machine).execRet
	dispatch[loader.OpIret] = (*Machine).execRet
	dispatch[loader.OpLoop] = (*Machine).execLoop
	dispatch[loader.OpIn] = (*Machine).execIn
	dispatch[loader.OpOut] = (*Machine).execOut
}

// mask16 returns the arithmetic mask for a width, shared by every
// opcode handler that needs to reconstruct a two's-complement delta.
func mask16(width int) uint32 {
	if width == 8 {
		return 0xFF
	}
	return 0xFFFF
}

func (m *Machine) execMov(ops []operand.Operand) error {
	width := operand.Width(ops)
	v, err := m.readOperand(ops[1], width, segDS)
	if err != nil {
		return err
	}
	return m.writeOperand(ops[0], v, width, segDS)
}

func (m *Machine) execXchg(ops []operand.Operand) error {
	width := operand.Width(ops)
	a, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	b, err := m.readOperand(ops[1], width, segDS)
	if err != nil {
		return err
	}
	if err := m.writeOperand(ops[0], b, width, segDS); err != nil {
		return err
	}
	return m.writeOperand(ops[1], a, width, segDS)
}

func (m *Machine) execPush(ops []operand.Operand) error {
	v, err := m.readOperand(ops[0], 16, segDS)
	if err != nil {
		return err
	}
	return m.pushWord(v)
}

func (m *Machine) execPop(ops []operand.Operand) error {
	v, err := m.popWord()
	if err != nil {
		return err
	}
	return m.writeOperand(ops[0], v, 16, segDS)
}

func (m *Machine) execAdd(ops []operand.Operand) error {
	return m.arith(ops, register.OpAdd, func(a, b uint32) uint32 { return a + b })
}

func (m *Machine) execSub(ops []operand.Operand) error {
	return m.arith(ops, register.OpSub, func(a, b uint32) uint32 { return a - b })
}

// arith implements the shared ADD/SUB shape: read both operands,
// combine with op, update flags via the collapsed register.ApplyArith
// helper, write the result back to the destination.
func (m *Machine) arith(ops []operand.Operand, kind register.ArithOp, combine func(a, b uint32) uint32) error {
	width := operand.Width(ops)
	a, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	b, err := m.readOperand(ops[1], width, segDS)
	if err != nil {
		return err
	}
	result := combine(uint32(a), uint32(b))
	register.ApplyArith(&m.Regs.Flags, kind, width, uint32(a), uint32(b), result)
	return m.writeOperand(ops[0], uint16(result), width, segDS)
}

func (m *Machine) execCmp(ops []operand.Operand) error {
	width := operand.Width(ops)
	a, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	b, err := m.readOperand(ops[1], width, segDS)
	if err != nil {
		return err
	}
	result := uint32(a) - uint32(b)
	register.ApplyArith(&m.Regs.Flags, register.OpSub, width, uint32(a), uint32(b), result)
	return nil
}

func (m *Machine) execIncDec(ops []operand.Operand, increment bool) error {
	width := operand.Width(ops)
	old, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	delta := uint32(1)
	if !increment {
		delta = mask16(width) // two's-complement -1 at this width
	}
	result := uint32(old) + delta
	register.ApplyArith(&m.Regs.Flags, register.OpIncDec, width, uint32(old), delta, result)
	return m.writeOperand(ops[0], uint16(result), width, segDS)
}

func (m *Machine) execInc(ops []operand.Operand) error { return m.execIncDec(ops, true) }
func (m *Machine) execDec(ops []operand.Operand) error { return m.execIncDec(ops, false) }

func (m *Machine) execNeg(ops []operand.Operand) error {
	width := operand.Width(ops)
	val, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	result := uint32(0) - uint32(val)
	register.ApplyNeg(&m.Regs.Flags, width, uint32(val), result)
	return m.writeOperand(ops[0], uint16(result), width, segDS)
}

func (m *Machine) execMul(ops []operand.Operand) error {
	width := operand.Width(ops)
	s, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	if width == 8 {
		al, err := m.Regs.Get("al")
		if err != nil {
			return err
		}
		return m.Regs.Set("ax", al*s)
	}
	ax, err := m.Regs.Get("ax")
	if err != nil {
		return err
	}
	product := uint32(ax) * uint32(s)
	if err := m.Regs.Set("ax", uint16(product)); err != nil {
		return err
	}
	return m.Regs.Set("dx", uint16(product>>16))
}

func (m *Machine) execDiv(ops []operand.Operand) error {
	width := operand.Width(ops)
	s, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	if s == 0 {
		return fmt.Errorf("%w", simerr.ErrDivideByZero)
	}
	if width == 8 {
		ax, err := m.Regs.Get("ax")
		if err != nil {
			return err
		}
		if err := m.Regs.Set("al", ax/s); err != nil {
			return err
		}
		return m.Regs.Set("ah", ax%s)
	}
	ax, err := m.Regs.Get("ax")
	if err != nil {
		return err
	}
	dx, err := m.Regs.Get("dx")
	if err != nil {
		return err
	}
	dividend := uint32(dx)<<16 | uint32(ax)
	if err := m.Regs.Set("ax", uint16(dividend/uint32(s))); err != nil {
		return err
	}
	return m.Regs.Set("dx", uint16(dividend%uint32(s)))
}

func (m *Machine) logic(ops []operand.Operand, combine func(a, b uint16) uint16) error {
	width := operand.Width(ops)
	a, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	b, err := m.readOperand(ops[1], width, segDS)
	if err != nil {
		return err
	}
	result := combine(a, b)
	register.ApplyLogic(&m.Regs.Flags, width, uint32(result))
	return m.writeOperand(ops[0], result, width, segDS)
}

func (m *Machine) execAnd(ops []operand.Operand) error {
	return m.logic(ops, func(a, b uint16) uint16 { return a & b })
}

func (m *Machine) execOr(ops []operand.Operand) error {
	return m.logic(ops, func(a, b uint16) uint16 { return a | b })
}

func (m *Machine) execXor(ops []operand.Operand) error {
	return m.logic(ops, func(a, b uint16) uint16 { return a ^ b })
}

func (m *Machine) execNot(ops []operand.Operand) error {
	width := operand.Width(ops)
	v, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	return m.writeOperand(ops[0], ^v&uint16(mask16(width)), width, segDS)
}

func (m *Machine) execJmp(ops []operand.Operand) error {
	target, err := m.labelTarget(ops[0])
	if err != nil {
		return err
	}
	return m.Regs.Set("ip", target)
}

// jccFunc builds a conditional-jump handler from a flag predicate,
// collapsing the six JE/JNE/JG/JGE/JL/JLE handlers spec.md §4.5 lists
// into one generator instead of six near-identical methods.
func jccFunc(predicate func(register.Flags) bool) opFunc {
	return func(m *Machine, ops []operand.Operand) error {
		if !predicate(m.Regs.Flags) {
			return nil
		}
		target, err := m.labelTarget(ops[0])
		if err != nil {
			return err
		}
		return m.Regs.Set("ip", target)
	}
}

func (m *Machine) execCall(ops []operand.Operand) error {
	target, err := m.labelTarget(ops[0])
	if err != nil {
		return err
	}
	ip, err := m.Regs.Get("ip")
	if err != nil {
		return err
	}
	if err := m.pushWord(ip); err != nil {
		return err
	}
	return m.Regs.Set("ip", target)
}

func (m *Machine) execRet([]operand.Operand) error {
	ip, err := m.popWord()
	if err != nil {
		return err
	}
	return m.Regs.Set("ip", ip)
}

func (m *Machine) execLoop(ops []operand.Operand) error {
	cx, err := m.Regs.Get("cx")
	if err != nil {
		return err
	}
	cx = (cx - 1) & 0xFFFF
	if err := m.Regs.Set("cx", cx); err != nil {
		return err
	}
	if cx == 0 {
		return nil
	}
	target, err := m.labelTarget(ops[0])
	if err != nil {
		return err
	}
	return m.Regs.Set("ip", target)
}

func (m *Machine) execIn(ops []operand.Operand) error {
	return m.writeOperand(ops[0], 0, operand.Width(ops), segDS)
}

func (m *Machine) execOut(ops []operand.Operand) error {
	width := operand.Width(ops)
	port, err := m.readOperand(ops[0], width, segDS)
	if err != nil {
		return err
	}
	value, err := m.readOperand(ops[1], width, segDS)
	if err != nil {
		return err
	}
	m.logf("[IO] OUT %#04x <- %#04x", port, value)
	return nil
}
