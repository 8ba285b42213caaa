package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLoadCmdRejectsMissingFile(t *testing.T) {
	cmd := newLoadCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.asm")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing program file")
	}
}

func TestNewResetCmdSucceedsAfterRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.asm")
	if err := os.WriteFile(path, []byte("MOV AX, 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newResetCmd()
	cmd.SetArgs([]string{"--run", path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
}
