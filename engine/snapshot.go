package engine

import "github.com/realmode-labs/x86sim/register"

// snapshotMemoryWindow is the fixed size of the memory slice returned
// in a Snapshot (spec.md §6: "first 256 bytes of ds").
const snapshotMemoryWindow = 256

// FlagSnapshot is the JSON-facing view of the four status flags.
type FlagSnapshot struct {
	ZF bool `json:"ZF"`
	SF bool `json:"SF"`
	OF bool `json:"OF"`
	CF bool `json:"CF"`
}

// Snapshot is the structured state spec.md §6 requires snapshot() to
// return: registers, flags, a bounded memory window, and the trace
// log split into lines.
type Snapshot struct {
	Registers register.Snapshot `json:"registers"`
	Flags     FlagSnapshot      `json:"flags"`
	Memory    []byte            `json:"memory"`
	Logs      []string          `json:"logs"`
}

// Snapshot captures the engine's current architectural state. Memory
// is a copy of the 256 bytes starting at physical ds<<4; membus.Window
// clamps the range at the end of the bus and the rest is zero-padded
// here.
func (e *Engine) Snapshot() Snapshot {
	regs := e.machine.Regs.Snapshot()
	flags := e.machine.Regs.Flags

	window := e.bus.Window(uint32(regs.DS)<<4, snapshotMemoryWindow)
	if len(window) < snapshotMemoryWindow {
		padded := make([]byte, snapshotMemoryWindow)
		copy(padded, window)
		window = padded
	}

	return Snapshot{
		Registers: regs,
		Flags:     FlagSnapshot{ZF: flags.ZF, SF: flags.SF, OF: flags.OF, CF: flags.CF},
		Memory:    window,
		Logs:      splitLogLines(e.log.String()),
	}
}

func splitLogLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
