// Package register implements the architectural register file and
// status flags of the simulated 8086-class CPU (spec.md §3, §4.1).
//
// All access goes through case-insensitive string names, mirroring
// the original Simulador.py CPU.get_reg/set_reg dictionary lookups,
// but resolved at compile time through a switch rather than a map of
// closures, matching the teacher's AX()/SetAX()/AL()/SetAL() accessor
// pairs in cpu_x86.go.
package register

import (
	"fmt"
	"strings"

	"github.com/realmode-labs/x86sim/simerr"
)

// initialStackTop is the reset value for SP and BP, placing the stack
// at the top of a 64KB segment.
const initialStackTop uint16 = 0xFFFE

// File holds the thirteen 16-bit architectural registers plus the
// four status flags. The zero value is not a valid reset state; use
// New.
type File struct {
	ax, bx, cx, dx uint16
	si, di, bp, sp uint16
	ip             uint16
	cs, ds, ss, es uint16

	Flags Flags
}

// Flags holds the four status bits this simulator models (spec.md §3).
type Flags struct {
	ZF bool
	SF bool
	OF bool
	CF bool
}

// New returns a register file in construction-state: sp and bp at the
// top of the stack, everything else zero (spec.md §3 Lifecycle).
func New() *File {
	f := &File{}
	f.Reset()
	return f
}

// Reset reverts the register file to construction state.
func (f *File) Reset() {
	*f = File{sp: initialStackTop, bp: initialStackTop}
}

// Get returns the value of the named register, case-insensitively.
// 8-bit halves return their byte masked into the low bits of the
// result.
func (f *File) Get(name string) (uint16, error) {
	switch strings.ToLower(name) {
	case "ax":
		return f.ax, nil
	case "bx":
		return f.bx, nil
	case "cx":
		return f.cx, nil
	case "dx":
		return f.dx, nil
	case "si":
		return f.si, nil
	case "di":
		return f.di, nil
	case "bp":
		return f.bp, nil
	case "sp":
		return f.sp, nil
	case "ip":
		return f.ip, nil
	case "cs":
		return f.cs, nil
	case "ds":
		return f.ds, nil
	case "ss":
		return f.ss, nil
	case "es":
		return f.es, nil
	case "al":
		return f.ax & 0xFF, nil
	case "ah":
		return (f.ax >> 8) & 0xFF, nil
	case "bl":
		return f.bx & 0xFF, nil
	case "bh":
		return (f.bx >> 8) & 0xFF, nil
	case "cl":
		return f.cx & 0xFF, nil
	case "ch":
		return (f.cx >> 8) & 0xFF, nil
	case "dl":
		return f.dx & 0xFF, nil
	case "dh":
		return (f.dx >> 8) & 0xFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", simerr.ErrUnknownRegister, name)
	}
}

// Set writes value into the named register, case-insensitively.
// 16-bit writes mask to 16 bits; 8-bit half writes preserve the other
// half (spec.md §4.1).
func (f *File) Set(name string, value uint16) error {
	switch strings.ToLower(name) {
	case "ax":
		f.ax = value
	case "bx":
		f.bx = value
	case "cx":
		f.cx = value
	case "dx":
		f.dx = value
	case "si":
		f.si = value
	case "di":
		f.di = value
	case "bp":
		f.bp = value
	case "sp":
		f.sp = value
	case "ip":
		f.ip = value
	case "cs":
		f.cs = value
	case "ds":
		f.ds = value
	case "ss":
		f.ss = value
	case "es":
		f.es = value
	case "al":
		f.ax = (f.ax & 0xFF00) | (value & 0xFF)
	case "ah":
		f.ax = (f.ax & 0x00FF) | ((value & 0xFF) << 8)
	case "bl":
		f.bx = (f.bx & 0xFF00) | (value & 0xFF)
	case "bh":
		f.bx = (f.bx & 0x00FF) | ((value & 0xFF) << 8)
	case "cl":
		f.cx = (f.cx & 0xFF00) | (value & 0xFF)
	case "ch":
		f.cx = (f.cx & 0x00FF) | ((value & 0xFF) << 8)
	case "dl":
		f.dx = (f.dx & 0xFF00) | (value & 0xFF)
	case "dh":
		f.dx = (f.dx & 0x00FF) | ((value & 0xFF) << 8)
	default:
		return fmt.Errorf("%w: %q", simerr.ErrUnknownRegister, name)
	}
	return nil
}

// IsEightBit reports whether name refers to an 8-bit register half.
func IsEightBit(name string) bool {
	switch strings.ToLower(name) {
	case "al", "ah", "bl", "bh", "cl", "ch", "dl", "dh":
		return true
	default:
		return false
	}
}

// Snapshot is the flat register view returned by Engine.Snapshot
// (spec.md §6). Field order matches the spec's listing.
type Snapshot struct {
	AX uint16 `json:"ax"`
	BX uint16 `json:"bx"`
	CX uint16 `json:"cx"`
	DX uint16 `json:"dx"`
	SI uint16 `json:"si"`
	DI uint16 `json:"di"`
	BP uint16 `json:"bp"`
	SP uint16 `json:"sp"`
	IP uint16 `json:"ip"`
	CS uint16 `json:"cs"`
	DS uint16 `json:"ds"`
	SS uint16 `json:"ss"`
	ES uint16 `json:"es"`
}

// Snapshot captures the current value of every 16-bit register.
func (f *File) Snapshot() Snapshot {
	return Snapshot{
		AX: f.ax, BX: f.bx, CX: f.cx, DX: f.dx,
		SI: f.si, DI: f.di, BP: f.bp, SP: f.sp,
		IP: f.ip,
		CS: f.cs, DS: f.ds, SS: f.ss, ES: f.es,
	}
}
