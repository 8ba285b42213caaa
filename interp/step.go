package interp

import (
	"fmt"

	"github.com/realmode-labs/x86sim/simerr"
)

// StepStatus is the non-error result of step() (spec.md §6): "OK" or
// "END". A failure is reported through Step's error return instead.
type StepStatus string

const (
	StatusOK  StepStatus = "OK"
	StatusEnd StepStatus = "END"
)

// Step executes exactly one instruction per spec.md §4.5: compute the
// physical address from cs:ip, halt with StatusEnd if it is not in
// the program map, otherwise advance ip past the instruction *before*
// dispatching so a control-transfer handler can overwrite it.
func (m *Machine) Step() (StepStatus, error) {
	cs, err := m.Regs.Get("cs")
	if err != nil {
		return "", err
	}
	ip, err := m.Regs.Get("ip")
	if err != nil {
		return "", err
	}
	if m.Program == nil {
		return StatusEnd, nil
	}

	addr := m.Bus.RawAt(cs, ip)

	instr, ok := m.Program.Instructions[addr]
	if !ok {
		return StatusEnd, nil
	}

	if err := m.Regs.Set("ip", (ip+instr.Size)&0xFFFF); err != nil {
		return "", err
	}

	handler := dispatch[instr.Opcode]
	if handler == nil {
		return "", fmt.Errorf("%w: %v", simerr.ErrNotImplemented, instr.Opcode)
	}
	if err := handler(m, instr.Operands); err != nil {
		return "", err
	}
	return StatusOK, nil
}

// Run executes instructions until Step reports StatusEnd or MaxSteps
// instructions have run, whichever comes first. Hitting the cap is
// not an error: spec.md §5 requires run() to return normally in that
// case. executed reports how many instructions actually ran.
func (m *Machine) Run() (executed int, err error) {
	max := m.MaxSteps
	if max <= 0 {
		max = DefaultMaxSteps
	}
	for executed = 0; executed < max; executed++ {
		status, stepErr := m.Step()
		if stepErr != nil {
			return executed, stepErr
		}
		if status == StatusEnd {
			return executed, nil
		}
	}
	return executed, nil
}
