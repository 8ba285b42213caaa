// Command x86sim is the operator-facing front end for the simulator
// core (spec.md §1, §6): a cobra command tree over one engine.Engine
// per invocation, grounded on oisee-z80-optimizer's cmd/z80opt/main.go
// command layout (root command + Flags()-configured subcommands using
// RunE, rather than the teacher's bare flag package).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "x86sim",
		Short: "8086-class real-mode CPU simulator",
	}

	root.AddCommand(
		newLoadCmd(),
		newRunCmd(),
		newStepCmd(),
		newResetCmd(),
		newDumpCmd(),
		newReplCmd(),
		newVerifyCmd(),
		newSaveCmd(),
		newLoadSnapshotCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "x86sim:", err)
		os.Exit(1)
	}
}
