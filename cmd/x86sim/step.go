package main

import (
	"fmt"
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

func newStepCmd() *cobra.Command {
	var segs segmentFlags
	var count int

	cmd := &cobra.Command{
		Use:   "step <program.asm>",
		Short: "Load a program and execute a fixed number of single steps",
		Args:  cobra.ExactArgs(1),
	}
	memSize := newMemSizeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		eng := engine.New(*memSize)
		if err := loadSourceFile(eng, args[0], &segs); err != nil {
			return err
		}

		for i := 0; i < count; i++ {
			status, err := eng.Step()
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "step %d: %s\n", i+1, status)
			if status == "END" {
				break
			}
		}
		printSnapshot(os.Stdout, eng.Snapshot(), false)
		return nil
	}

	segs.register(cmd)
	cmd.Flags().IntVar(&count, "count", 1, "number of instructions to step")
	return cmd
}
