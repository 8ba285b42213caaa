// Package engine exposes the programmatic core API described in
// spec.md §6: load, run, step, reset, and snapshot over one owned
// Machine. Engine is the single mutable instance a caller (the CLI in
// cmd/x86sim, or any other facade) holds; no process-wide statics
// leak into this package, per spec.md §9's "global process state"
// redesign note.
package engine

import (
	"strings"

	"github.com/realmode-labs/x86sim/interp"
	"github.com/realmode-labs/x86sim/loader"
	"github.com/realmode-labs/x86sim/membus"
	"github.com/realmode-labs/x86sim/register"
)

// Segments names the four segment registers a caller may seed at
// Load time.
type Segments struct {
	CS, DS, SS, ES uint16
}

// Engine owns one Machine and the trace log describing its
// execution. The log is an append-only buffer owned exclusively by
// the Engine, cleared explicitly by the caller between calls — the
// "scoped resources" ownership spec.md §9 calls for, grounded on the
// teacher's DebugX86 adapter owning its CPU and runner outright.
type Engine struct {
	machine *interp.Machine
	bus     *membus.SystemBus
	log     strings.Builder
	trace   bool
}

// New constructs an Engine with a memSize-byte memory bus. memSize <=
// 0 selects membus.DefaultSize.
func New(memSize int) *Engine {
	bus := membus.New(memSize)
	regs := register.New()
	m := interp.New(regs, bus)
	e := &Engine{machine: m, bus: bus}
	m.SetLog(e.appendLog)
	return e
}

func (e *Engine) appendLog(line string) {
	e.log.WriteString(line)
	e.log.WriteByte('\n')
}

// SetHardwareTrace enables or disables MMU/BUS line tracing on every
// memory access (spec.md §4.2). Tracing is a pure side effect on the
// log; it never changes results.
func (e *Engine) SetHardwareTrace(enabled bool) {
	e.trace = enabled
	if enabled {
		e.bus.SetTrace(true, e.appendLog)
	} else {
		e.bus.SetTrace(false, nil)
	}
}

// ClearLog empties the trace buffer. The facade is expected to call
// this before each Run/Step it wants an isolated log for.
func (e *Engine) ClearLog() {
	e.log.Reset()
}

// Load rebuilds the label/constant/program tables from code and
// resets the register file before applying the optional initial
// segment values, per spec.md §6's load() row. On a loader error the
// engine is left in the defined empty-program state spec.md §7
// requires: labels/constants/program cleared, registers reset.
func (e *Engine) Load(code string, segments *Segments) error {
	e.machine.Regs.Reset()
	var cs, ds, ss, es uint16
	if segments != nil {
		cs, ds, ss, es = segments.CS, segments.DS, segments.SS, segments.ES
	}
	// These four names are always valid, so Set cannot fail here.
	_ = e.machine.Regs.Set("cs", cs)
	_ = e.machine.Regs.Set("ds", ds)
	_ = e.machine.Regs.Set("ss", ss)
	_ = e.machine.Regs.Set("es", es)

	prog, err := loader.Load(code, cs, uint32(e.bus.Size()))
	if err != nil {
		e.machine.Program = nil
		e.machine.Regs.Reset()
		return err
	}
	e.machine.Program = prog
	return nil
}

// RunResult reports how a Run() call ended.
type RunResult struct {
	Executed int
	Err      error
}

// Run executes instructions until the program map is exhausted or the
// instruction cap is hit (spec.md §4.5). A cap hit is not an error.
// Any error is appended to the trace log and the loop exits cleanly,
// matching spec.md §7's run() propagation rule.
func (e *Engine) Run() RunResult {
	executed, err := e.machine.Run()
	if err != nil {
		e.appendLog(err.Error())
	}
	return RunResult{Executed: executed, Err: err}
}

// Step executes exactly one instruction, returning "OK" or "END"
// (spec.md §6's step() row). On failure it returns an empty status
// and the error, whose text is also appended to the trace log.
func (e *Engine) Step() (string, error) {
	status, err := e.machine.Step()
	if err != nil {
		e.appendLog(err.Error())
		return "", err
	}
	return string(status), nil
}

// Reset reverts the engine to construction state: registers zeroed
// (sp/bp at 0xFFFE), memory zeroed, and the loaded program discarded —
// matching spec.md §3's "reverts to construction state" and
// Simulador.py's reset(), which clears self.labels/self.program
// alongside the CPU. A Step/Run after Reset must behave as if nothing
// was ever loaded, so the caller has to Load again before executing.
func (e *Engine) Reset() {
	e.machine.Regs.Reset()
	e.bus.Reset()
	e.machine.Program = nil
}
