package operand

import "testing"

func TestParseRegister(t *testing.T) {
	op, err := Parse("AX")
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != KindRegister || op.Register != "ax" {
		t.Fatalf("got %+v", op)
	}
}

func TestParseEightBitRegister(t *testing.T) {
	op, err := Parse("al")
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != KindRegister || op.Register != "al" {
		t.Fatalf("got %+v", op)
	}
}

func TestParseX86HexImmediate(t *testing.T) {
	op, err := Parse("7FFFh")
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != KindImmediate || op.Immediate != 0x7FFF {
		t.Fatalf("got %+v", op)
	}
}

func TestParseCStyleImmediate(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uint16
	}{
		{"10", 10},
		{"0x1A", 0x1A},
		{"-1", 0xFFFF},
	} {
		op, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if op.Kind != KindImmediate || op.Immediate != tc.want {
			t.Fatalf("%s: got %+v, want immediate %#04x", tc.in, op, tc.want)
		}
	}
}

func TestParseMemorySingleRegister(t *testing.T) {
	op, err := Parse("[bx]")
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != KindMemory || len(op.Terms) != 1 || op.Terms[0].Register != "bx" {
		t.Fatalf("got %+v", op)
	}
}

func TestParseMemoryRegisterPlusHexDisplacement(t *testing.T) {
	op, err := Parse("[bx+si+10h]")
	if err != nil {
		t.Fatal(err)
	}
	if len(op.Terms) != 3 {
		t.Fatalf("got %d terms, want 3: %+v", len(op.Terms), op)
	}
	getReg := func(name string) (uint16, error) {
		switch name {
		case "bx":
			return 0x0100, nil
		case "si":
			return 0x0002, nil
		}
		t.Fatalf("unexpected register %q", name)
		return 0, nil
	}
	offset, err := EffectiveOffset(op, getReg)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0x0100+0x0002+0x10 {
		t.Fatalf("offset = %#04x, want %#04x", offset, 0x0100+0x0002+0x10)
	}
}

func TestParseMemoryNegativeDisplacement(t *testing.T) {
	op, err := Parse("[bp-4]")
	if err != nil {
		t.Fatal(err)
	}
	getReg := func(string) (uint16, error) { return 10, nil }
	offset, err := EffectiveOffset(op, getReg)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestParseMalformedMemoryExpr(t *testing.T) {
	if _, err := Parse("[]"); err == nil {
		t.Fatal("expected error for empty brackets")
	}
	if _, err := Parse("[qq]"); err == nil {
		t.Fatal("expected error for bad register name")
	}
}

func TestParseInvalidToken(t *testing.T) {
	if _, err := Parse("???"); err == nil {
		t.Fatal("expected error for unclassifiable token")
	}
}

func TestWidthTwoOperandEitherHalfMakesEight(t *testing.T) {
	ops := []Operand{{Kind: KindRegister, Register: "ax"}, {Kind: KindRegister, Register: "bl"}}
	if Width(ops) != 8 {
		t.Fatalf("Width = %d, want 8", Width(ops))
	}
}

func TestWidthDefaultsSixteen(t *testing.T) {
	ops := []Operand{{Kind: KindRegister, Register: "ax"}, {Kind: KindRegister, Register: "bx"}}
	if Width(ops) != 16 {
		t.Fatalf("Width = %d, want 16", Width(ops))
	}
}

func TestWidthSingleOperandHalf(t *testing.T) {
	ops := []Operand{{Kind: KindRegister, Register: "cl"}}
	if Width(ops) != 8 {
		t.Fatalf("Width = %d, want 8", Width(ops))
	}
}
