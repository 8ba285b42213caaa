package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/realmode-labs/x86sim/engine"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// newVerifyCmd runs every *.asm fixture in a directory to completion,
// each against its own engine.Engine, and reports pass/fail. The
// engine core stays single-threaded per instance; concurrency here is
// confined to this outer fixture runner, one goroutine per file,
// coordinated with errgroup the way a build tool fans out independent
// jobs. A fixture named foo.asm may carry an adjacent foo.expect file
// listing register=value assertions; without one, a clean run (no
// error) is the pass condition.
func newVerifyCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "verify <fixtures-dir>",
		Short: "Run every .asm program in a directory and check it against its .expect file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := filepath.Glob(filepath.Join(args[0], "*.asm"))
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .asm files found in %s", args[0])
			}
			sort.Strings(files)

			results := make([]fixtureResult, len(files))
			g := new(errgroup.Group)
			g.SetLimit(concurrency)

			for i, path := range files {
				i, path := i, path
				g.Go(func() error {
					results[i] = runFixture(path)
					return nil
				})
			}
			_ = g.Wait() // runFixture never returns an error itself; failures are recorded per result

			return reportFixtures(results)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum number of fixtures to run at once")
	return cmd
}

type fixtureResult struct {
	path       string
	executed   int
	err        error
	mismatches []string
}

func runFixture(path string) fixtureResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureResult{path: path, err: err}
	}
	eng := engine.New(0)
	if err := eng.Load(string(data), nil); err != nil {
		return fixtureResult{path: path, err: err}
	}
	result := eng.Run()
	if result.Err != nil {
		return fixtureResult{path: path, executed: result.Executed, err: result.Err}
	}

	expectPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".expect"
	expect, err := parseExpectFile(expectPath)
	if err != nil {
		return fixtureResult{path: path, executed: result.Executed, err: err}
	}
	mismatches := checkExpect(eng.Snapshot(), expect)
	return fixtureResult{path: path, executed: result.Executed, mismatches: mismatches}
}

// parseExpectFile reads "register=value" lines (register names from
// register.File, values decimal or 0x-prefixed hex). A missing file is
// not an error: the fixture passes on a clean run alone.
func parseExpectFile(path string) (map[string]uint16, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	expect := make(map[string]uint16)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		name, valStr, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s: malformed line %q", path, line)
		}
		val, err := strconv.ParseUint(strings.TrimSpace(valStr), 0, 16)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		expect[strings.ToLower(strings.TrimSpace(name))] = uint16(val)
	}
	return expect, scanner.Err()
}

func checkExpect(snap engine.Snapshot, expect map[string]uint16) []string {
	r := snap.Registers
	actual := map[string]uint16{
		"ax": r.AX, "bx": r.BX, "cx": r.CX, "dx": r.DX,
		"si": r.SI, "di": r.DI, "bp": r.BP, "sp": r.SP,
		"ip": r.IP, "cs": r.CS, "ds": r.DS, "ss": r.SS, "es": r.ES,
	}
	var mismatches []string
	for name, want := range expect {
		got, known := actual[name]
		if !known {
			mismatches = append(mismatches, fmt.Sprintf("%s: not a register", name))
			continue
		}
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s: got %#04x, want %#04x", name, got, want))
		}
	}
	sort.Strings(mismatches)
	return mismatches
}

func reportFixtures(results []fixtureResult) error {
	failures := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			failures++
			fmt.Printf("FAIL %s: %v\n", r.path, r.err)
		case len(r.mismatches) > 0:
			failures++
			fmt.Printf("FAIL %s: %s\n", r.path, strings.Join(r.mismatches, ", "))
		default:
			fmt.Printf("OK   %s (%d instructions)\n", r.path, r.executed)
		}
	}
	fmt.Printf("%d/%d fixtures passed\n", len(results)-failures, len(results))
	if failures > 0 {
		return fmt.Errorf("%d fixture(s) failed", failures)
	}
	return nil
}
