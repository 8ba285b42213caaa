package main

import (
	"fmt"
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

func newSaveCmd() *cobra.Command {
	var segs segmentFlags
	var runFirst bool

	cmd := &cobra.Command{
		Use:   "save <program.asm> <snapshot-file>",
		Short: "Load (and optionally run) a program, then save its full state to a file",
		Args:  cobra.ExactArgs(2),
	}
	memSize := newMemSizeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		eng := engine.New(*memSize)
		if err := loadSourceFile(eng, args[0], &segs); err != nil {
			return err
		}
		if runFirst {
			if result := eng.Run(); result.Err != nil {
				return result.Err
			}
		}
		if err := eng.SaveToFile(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "saved state to %s\n", args[1])
		return nil
	}

	segs.register(cmd)
	cmd.Flags().BoolVar(&runFirst, "run", false, "run the program to completion before saving")
	return cmd
}

func newLoadSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-snapshot <snapshot-file>",
		Short: "Restore a saved state and print its registers and flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.New(0)
			if err := eng.LoadFromFile(args[0]); err != nil {
				return err
			}
			printSnapshot(os.Stdout, eng.Snapshot(), false)
			return nil
		},
	}
	return cmd
}
