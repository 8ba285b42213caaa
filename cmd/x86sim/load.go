package main

import (
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

// newLoadCmd validates a program and prints the state right after
// loading, without executing anything — useful for checking assembler
// syntax and initial segment placement before a run or repl session.
func newLoadCmd() *cobra.Command {
	var segs segmentFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "load <program.asm>",
		Short: "Parse a program and print its initial register state",
		Args:  cobra.ExactArgs(1),
	}
	memSize := newMemSizeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		eng := engine.New(*memSize)
		if err := loadSourceFile(eng, args[0], &segs); err != nil {
			return err
		}
		snap := eng.Snapshot()
		if asJSON {
			return encodeSnapshotJSON(os.Stdout, snap)
		}
		printSnapshot(os.Stdout, snap, false)
		return nil
	}

	segs.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}
