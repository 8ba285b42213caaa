package main

import (
	"fmt"
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

// newResetCmd demonstrates the reset() entry of the external interface
// (SPEC_FULL.md §6): load a program, optionally run it, then reset and
// print the resulting state, which must match construction state
// (sp/bp at 0xFFFE, every other register and all of memory zero, and
// the loaded program discarded).
func newResetCmd() *cobra.Command {
	var segs segmentFlags
	var runFirst bool

	cmd := &cobra.Command{
		Use:   "reset <program.asm>",
		Short: "Load a program, optionally run it, then reset registers and memory",
		Args:  cobra.ExactArgs(1),
	}
	memSize := newMemSizeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		eng := engine.New(*memSize)
		if err := loadSourceFile(eng, args[0], &segs); err != nil {
			return err
		}
		if runFirst {
			if result := eng.Run(); result.Err != nil {
				fmt.Fprintln(os.Stderr, "run:", result.Err)
			}
		}
		eng.Reset()
		printSnapshot(os.Stdout, eng.Snapshot(), false)
		return nil
	}

	segs.register(cmd)
	cmd.Flags().BoolVar(&runFirst, "run", false, "run the program to completion before resetting")
	return cmd
}
