package loader

import "testing"

const busSize = 1024 * 1024

func TestLoadSimpleProgram(t *testing.T) {
	src := "MOV AX, 5\nADD AX, BX\n"
	prog, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(prog.Instructions))
	}
	first, ok := prog.Instructions[0]
	if !ok {
		t.Fatal("no instruction at physical address 0")
	}
	if first.Opcode != OpMov {
		t.Fatalf("first opcode = %v, want MOV", first.Opcode)
	}
	if first.Size != 6 {
		t.Fatalf("first size = %d, want 6 (2 + 2*2 operands)", first.Size)
	}

	second, ok := prog.Instructions[6]
	if !ok {
		t.Fatal("no instruction at physical address 6")
	}
	if second.Opcode != OpAdd {
		t.Fatalf("second opcode = %v, want ADD", second.Opcode)
	}
}

func TestLoadStripsCommentsAndBlankLines(t *testing.T) {
	src := "; full line comment\nMOV AX, 1 ; trailing comment\n\n"
	prog, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(prog.Instructions))
	}
}

func TestLoadRecordsLabelOffsets(t *testing.T) {
	src := "start:\nMOV AX, 1\nJMP start\n"
	prog, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	if off, ok := prog.Labels["start"]; !ok || off != 0 {
		t.Fatalf("labels[start] = %d,%v want 0,true", off, ok)
	}
}

func TestLoadConstDirectiveSubstitutes(t *testing.T) {
	src := "CONST LIMIT = 10\nMOV CX, LIMIT\n"
	prog, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := prog.Constants["limit"]; !ok || v != 10 {
		t.Fatalf("constants[limit] = %d,%v want 10,true", v, ok)
	}
	instr := prog.Instructions[0]
	if instr.Operands[1].Immediate != 10 {
		t.Fatalf("operand not substituted: %+v", instr.Operands[1])
	}
}

func TestLoadConstInsideMemoryExpr(t *testing.T) {
	src := "CONST OFF = 4\nMOV AX, [bx+OFF]\n"
	prog, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	instr := prog.Instructions[0]
	mem := instr.Operands[1]
	if len(mem.Terms) != 2 {
		t.Fatalf("got %d terms, want 2: %+v", len(mem.Terms), mem)
	}
}

func TestLoadUnknownMnemonicFails(t *testing.T) {
	if _, err := Load("FROB AX, BX\n", 0, busSize); err == nil {
		t.Fatal("expected error for unknown mnemonic")
	}
}

func TestLoadPhysicalAddressUsesInitialCS(t *testing.T) {
	prog, err := Load("MOV AX, 1\n", 0x07C0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	want := (uint32(0x07C0) << 4) % busSize
	if _, ok := prog.Instructions[want]; !ok {
		t.Fatalf("no instruction at physical %#x", want)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	src := "MOV AX, 1\nADD AX, 2\n"
	p1, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Load(src, 0, busSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(p1.Instructions) != len(p2.Instructions) {
		t.Fatalf("reload produced a different instruction count: %d vs %d", len(p1.Instructions), len(p2.Instructions))
	}
}
