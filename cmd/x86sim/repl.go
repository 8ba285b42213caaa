package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
	"golang.org/x/term"
)

// newReplCmd builds an interactive single-step session. Raw-mode
// handling is grounded on the teacher's TerminalHost.Start/Stop pair
// (terminal_host.go): set raw mode, read one byte at a time, always
// restore the terminal on exit.
func newReplCmd() *cobra.Command {
	var segs segmentFlags

	cmd := &cobra.Command{
		Use:   "repl <program.asm>",
		Short: "Interactively step a loaded program from the keyboard",
		Args:  cobra.ExactArgs(1),
	}
	memSize := newMemSizeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		eng := engine.New(*memSize)
		if err := loadSourceFile(eng, args[0], &segs); err != nil {
			return err
		}
		return runRepl(eng)
	}

	segs.register(cmd)
	return cmd
}

func runRepl(eng *engine.Engine) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("repl: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	clipboardOK := clipboard.Init() == nil

	printReplHelp()
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return nil
		}
		switch buf[0] {
		case 'q', 'Q', 0x03: // 0x03 = Ctrl-C
			fmt.Print("\r\nbye\r\n")
			return nil
		case 's', 'S':
			status, err := eng.Step()
			if err != nil {
				fmt.Printf("\r\nerror: %v\r\n", err)
				continue
			}
			fmt.Printf("\r\nstep: %s\r\n", status)
		case 'r', 'R':
			result := eng.Run()
			fmt.Printf("\r\nran %d instruction(s)", result.Executed)
			if result.Err != nil {
				fmt.Printf(", error: %v", result.Err)
			}
			fmt.Print("\r\n")
		case 'd', 'D':
			printReplSnapshot(eng)
		case 'y', 'Y':
			if !clipboardOK {
				fmt.Print("\r\nclipboard unavailable\r\n")
				continue
			}
			data, err := json.Marshal(eng.Snapshot())
			if err != nil {
				fmt.Printf("\r\nerror: %v\r\n", err)
				continue
			}
			clipboard.Write(clipboard.FmtText, data)
			fmt.Print("\r\nsnapshot copied to clipboard\r\n")
		case 'h', 'H', '?':
			printReplHelp()
		}
	}
}

func printReplHelp() {
	fmt.Print("x86sim repl: [s]tep [r]un [d]ump [y]copy-snapshot [q]uit [h]elp\r\n")
}

func printReplSnapshot(eng *engine.Engine) {
	snap := eng.Snapshot()
	r := snap.Registers
	fmt.Printf("\r\nAX=%04X BX=%04X CX=%04X DX=%04X SI=%04X DI=%04X BP=%04X SP=%04X\r\n",
		r.AX, r.BX, r.CX, r.DX, r.SI, r.DI, r.BP, r.SP)
	fmt.Printf("IP=%04X CS=%04X DS=%04X SS=%04X ES=%04X  ZF=%s SF=%s OF=%s CF=%s\r\n",
		r.IP, r.CS, r.DS, r.SS, r.ES,
		flagChar(snap.Flags.ZF), flagChar(snap.Flags.SF), flagChar(snap.Flags.OF), flagChar(snap.Flags.CF))
}
