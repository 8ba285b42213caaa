package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/realmode-labs/x86sim/engine"
)

func newTestEngine() *engine.Engine {
	return engine.New(0)
}

func TestSegmentFlagsSegments(t *testing.T) {
	s := segmentFlags{cs: 0x07C0, ds: 0x1000, ss: 0x2000, es: 0x3000}
	segs := s.segments()
	if segs.CS != 0x07C0 || segs.DS != 0x1000 || segs.SS != 0x2000 || segs.ES != 0x3000 {
		t.Fatalf("segments() = %+v, want the four flag values carried through", segs)
	}
}

func TestLoadSourceFileReadsAndLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.asm")
	if err := os.WriteFile(path, []byte("MOV AX, 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	eng := newTestEngine()
	var segs segmentFlags
	if err := loadSourceFile(eng, path, &segs); err != nil {
		t.Fatal(err)
	}
	result := eng.Run()
	if result.Err != nil {
		t.Fatal(result.Err)
	}
	if eng.Snapshot().Registers.AX != 1 {
		t.Fatalf("ax = %d, want 1", eng.Snapshot().Registers.AX)
	}
}

func TestLoadSourceFileMissingFile(t *testing.T) {
	eng := newTestEngine()
	var segs segmentFlags
	if err := loadSourceFile(eng, filepath.Join(t.TempDir(), "missing.asm"), &segs); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
