package main

import (
	"fmt"
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var segs segmentFlags
	var trace bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <program.asm>",
		Short: "Load and run a program to completion (or until the step cap)",
		Args:  cobra.ExactArgs(1),
	}
	memSize := newMemSizeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		eng := engine.New(*memSize)
		eng.SetHardwareTrace(trace)
		if err := loadSourceFile(eng, args[0], &segs); err != nil {
			return err
		}
		result := eng.Run()
		if result.Err != nil {
			fmt.Fprintln(os.Stderr, "run:", result.Err)
		}
		fmt.Fprintf(os.Stdout, "executed %d instruction(s)\n", result.Executed)

		snap := eng.Snapshot()
		if trace {
			for _, line := range snap.Logs {
				fmt.Println(line)
			}
		}
		if asJSON {
			if err := encodeSnapshotJSON(os.Stdout, snap); err != nil {
				return err
			}
			return result.Err
		}
		printSnapshot(os.Stdout, snap, false)
		return result.Err
	}

	segs.register(cmd)
	cmd.Flags().BoolVar(&trace, "trace", false, "emit MMU/BUS hardware trace lines")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the final snapshot as JSON instead of text")
	return cmd
}
