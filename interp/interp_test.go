package interp

import (
	"testing"

	"github.com/realmode-labs/x86sim/loader"
	"github.com/realmode-labs/x86sim/membus"
	"github.com/realmode-labs/x86sim/register"
)

func newTestMachine(t *testing.T, src string) *Machine {
	t.Helper()
	regs := register.New()
	bus := membus.New(membus.DefaultSize)
	prog, err := loader.Load(src, 0, uint32(bus.Size()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := New(regs, bus)
	m.Program = prog
	return m
}

func reg(t *testing.T, m *Machine, name string) uint16 {
	t.Helper()
	v, err := m.Regs.Get(name)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// Scenario 1: basic arithmetic.
func TestScenarioBasicArithmetic(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 5\nMOV BX, 3\nADD AX, BX\n")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if ax := reg(t, m, "ax"); ax != 8 {
		t.Errorf("ax = %#04x, want 8", ax)
	}
	if bx := reg(t, m, "bx"); bx != 3 {
		t.Errorf("bx = %#04x, want 3", bx)
	}
	f := m.Regs.Flags
	if f.ZF || f.SF || f.CF || f.OF {
		t.Errorf("flags = %+v, want all clear", f)
	}
}

// Scenario 2: flag edges on SUB.
func TestScenarioFlagEdgesOnSub(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 0x0000\nSUB AX, 0x0001\n")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if ax := reg(t, m, "ax"); ax != 0xFFFF {
		t.Errorf("ax = %#04x, want 0xFFFF", ax)
	}
	f := m.Regs.Flags
	if f.ZF || !f.SF || !f.CF || f.OF {
		t.Errorf("flags = %+v, want ZF=0 SF=1 CF=1 OF=0", f)
	}
}

// Scenario 3: signed overflow on ADD.
func TestScenarioSignedOverflowOnAdd(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 7FFFh\nADD AX, 1\n")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if ax := reg(t, m, "ax"); ax != 0x8000 {
		t.Errorf("ax = %#04x, want 0x8000", ax)
	}
	f := m.Regs.Flags
	if f.ZF || !f.SF || f.CF || !f.OF {
		t.Errorf("flags = %+v, want ZF=0 SF=1 CF=0 OF=1", f)
	}
}

// Scenario 4: 8-bit half preservation.
func TestScenarioEightBitHalfPreservation(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 1234h\nMOV AL, 0FFh\n")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if ax := reg(t, m, "ax"); ax != 0x12FF {
		t.Errorf("ax = %#04x, want 0x12FF", ax)
	}
	if ah := reg(t, m, "ah"); ah != 0x12 {
		t.Errorf("ah = %#02x, want 0x12", ah)
	}
	if al := reg(t, m, "al"); al != 0xFF {
		t.Errorf("al = %#02x, want 0xFF", al)
	}
}

// Scenario 5: CALL/RET returns to the instruction following CALL.
func TestScenarioCallReturnsPastCall(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 0\nCALL SUB1\nMOV BX, 7\nSUB1:\nMOV AX, 42\nRET\n")

	for i := 0; i < 4; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	// After MOV AX,0 / CALL SUB1 / MOV AX,42 / RET, ip must equal the
	// offset that followed CALL (the instruction after it, MOV BX,7).
	if ip := reg(t, m, "ip"); ip != 10 {
		t.Fatalf("ip after RET = %d, want 10 (address following CALL)", ip)
	}
	if ax := reg(t, m, "ax"); ax != 42 {
		t.Fatalf("ax = %d, want 42", ax)
	}

	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if bx := reg(t, m, "bx"); bx != 7 {
		t.Fatalf("bx = %d, want 7", bx)
	}
}

// Scenario 6: LOOP countdown.
func TestScenarioLoopCountdown(t *testing.T) {
	m := newTestMachine(t, "MOV CX, 3\nMOV AX, 0\nSTART:\nINC AX\nLOOP START\n")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if ax := reg(t, m, "ax"); ax != 3 {
		t.Errorf("ax = %d, want 3", ax)
	}
	if cx := reg(t, m, "cx"); cx != 0 {
		t.Errorf("cx = %d, want 0", cx)
	}
}

// Scenario 7: memory round-trip.
func TestScenarioMemoryRoundTrip(t *testing.T) {
	m := newTestMachine(t, "MOV [0x100], 0xBEEF\nMOV BX, [0x100]\n")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if bx := reg(t, m, "bx"); bx != 0xBEEF {
		t.Errorf("bx = %#04x, want 0xBEEF", bx)
	}
	if lo := m.Bus.ReadByte(0, 0x100); lo != 0xEF {
		t.Errorf("ds:0x100 = %#02x, want 0xEF", lo)
	}
	if hi := m.Bus.ReadByte(0, 0x101); hi != 0xBE {
		t.Errorf("ds:0x101 = %#02x, want 0xBE", hi)
	}
}

// Invariant: non-control-transfer instructions advance ip by exactly
// their decoded size.
func TestNonControlTransferAdvancesIPBySize(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 5\n")
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if ip := reg(t, m, "ip"); ip != 6 {
		t.Fatalf("ip = %d, want 6 (2 + 2*2 operands)", ip)
	}
}

// Invariant: PUSH immediately followed by POP restores sp and yields
// back the pushed value.
func TestPushPopRoundTrip(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 1234h\nPUSH AX\nPOP BX\n")
	spBefore := reg(t, m, "sp")
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if bx := reg(t, m, "bx"); bx != 0x1234 {
		t.Fatalf("bx = %#04x, want 0x1234", bx)
	}
	if sp := reg(t, m, "sp"); sp != spBefore {
		t.Fatalf("sp = %#04x, want %#04x (pre-push value)", sp, spBefore)
	}
}

func TestDivideByZero(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 10\nMOV BX, 0\nDIV BX\n")
	if _, err := m.Run(); err == nil {
		t.Fatal("expected divide-by-zero error")
	}
}

func TestUnknownLabelFails(t *testing.T) {
	m := newTestMachine(t, "JMP NOWHERE\n")
	if _, err := m.Run(); err == nil {
		t.Fatal("expected unknown-label error")
	}
}

func TestNotInProgramMapHaltsRun(t *testing.T) {
	m := newTestMachine(t, "MOV AX, 1\n")
	executed, err := m.Run()
	if err != nil {
		t.Fatal(err)
	}
	if executed != 1 {
		t.Fatalf("executed = %d, want 1", executed)
	}
}

func TestStepHaltsWithNoProgramLoaded(t *testing.T) {
	m := New(register.New(), membus.New(membus.DefaultSize))
	status, err := m.Step()
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusEnd {
		t.Fatalf("status = %q, want END with no program loaded", status)
	}
}
