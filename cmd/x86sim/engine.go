package main

import (
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

// segmentFlags holds the four segment-register flags shared by every
// subcommand that loads a program, grounded on spec.md §6's load()
// accepting an optional initial segment set.
type segmentFlags struct {
	cs, ds, ss, es uint16
}

func (s *segmentFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint16Var(&s.cs, "cs", 0, "initial CS segment")
	cmd.Flags().Uint16Var(&s.ds, "ds", 0, "initial DS segment")
	cmd.Flags().Uint16Var(&s.ss, "ss", 0, "initial SS segment")
	cmd.Flags().Uint16Var(&s.es, "es", 0, "initial ES segment")
}

func (s *segmentFlags) segments() *engine.Segments {
	return &engine.Segments{CS: s.cs, DS: s.ds, SS: s.ss, ES: s.es}
}

// loadSourceFile reads a program file and loads it into eng with the
// given segments, leaving the returned error for the caller to report.
func loadSourceFile(eng *engine.Engine, path string, segs *segmentFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return eng.Load(string(data), segs.segments())
}

func newMemSizeFlag(cmd *cobra.Command) *int {
	memSize := new(int)
	cmd.Flags().IntVar(memSize, "mem", 0, "memory bus size in bytes (0 = default 1MB)")
	return memSize
}
