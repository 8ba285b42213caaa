package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
)

// printSnapshot renders an engine.Snapshot the way a debugger register
// dump reads, three lines of registers plus one line of the four flags
// as 0/1 values,
// grounded on Simulador.py's register-dump formatting.
func printSnapshot(w *os.File, snap engine.Snapshot, showMemory bool) {
	r := snap.Registers
	fmt.Fprintf(w, "AX=%04X BX=%04X CX=%04X DX=%04X\n", r.AX, r.BX, r.CX, r.DX)
	fmt.Fprintf(w, "SI=%04X DI=%04X BP=%04X SP=%04X\n", r.SI, r.DI, r.BP, r.SP)
	fmt.Fprintf(w, "IP=%04X CS=%04X DS=%04X SS=%04X ES=%04X\n", r.IP, r.CS, r.DS, r.SS, r.ES)
	fmt.Fprintf(w, "FLAGS: ZF=%s SF=%s OF=%s CF=%s\n",
		flagChar(snap.Flags.ZF), flagChar(snap.Flags.SF), flagChar(snap.Flags.OF), flagChar(snap.Flags.CF))
	if showMemory {
		fmt.Fprintf(w, "MEMORY (DS window, %d bytes): % 02X\n", len(snap.Memory), snap.Memory)
	}
}

func flagChar(set bool) string {
	if set {
		return "1"
	}
	return "0"
}

func encodeSnapshotJSON(w *os.File, snap engine.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func newDumpCmd() *cobra.Command {
	var asJSON bool
	var showMemory bool

	cmd := &cobra.Command{
		Use:   "dump <snapshot-file>",
		Short: "Print registers, flags, and a memory window from a saved snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.New(0)
			if err := eng.LoadFromFile(args[0]); err != nil {
				return err
			}
			snap := eng.Snapshot()
			if asJSON {
				return encodeSnapshotJSON(os.Stdout, snap)
			}
			printSnapshot(os.Stdout, snap, showMemory)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().BoolVar(&showMemory, "memory", false, "include the DS memory window")
	return cmd
}
