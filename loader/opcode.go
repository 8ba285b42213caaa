package loader

import "strings"

// Opcode is the tagged mnemonic enum produced once at load time
// (spec.md §9 REDESIGN FLAGS), replacing repeated string comparisons
// in the interpreter's dispatch path with a single array index.
type Opcode int

const (
	OpUnknown Opcode = iota
	OpMov
	OpXchg
	OpPush
	OpPop
	OpAdd
	OpSub
	OpInc
	OpDec
	OpNeg
	OpCmp
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpXor
	OpNot
	OpJmp
	OpJe
	OpJne
	OpJg
	OpJge
	OpJl
	OpJle
	OpCall
	OpRet
	OpIret
	OpLoop
	OpIn
	OpOut

	// OpcodeCount sizes the interpreter's dispatch table; keep it last.
	OpcodeCount
)

var mnemonics = map[string]Opcode{
	"MOV":  OpMov,
	"XCHG": OpXchg,
	"PUSH": OpPush,
	"POP":  OpPop,
	"ADD":  OpAdd,
	"SUB":  OpSub,
	"INC":  OpInc,
	"DEC":  OpDec,
	"NEG":  OpNeg,
	"CMP":  OpCmp,
	"MUL":  OpMul,
	"DIV":  OpDiv,
	"AND":  OpAnd,
	"OR":   OpOr,
	"XOR":  OpXor,
	"NOT":  OpNot,
	"JMP":  OpJmp,
	"JE":   OpJe,
	"JNE":  OpJne,
	"JG":   OpJg,
	"JGE":  OpJge,
	"JL":   OpJl,
	"JLE":  OpJle,
	"CALL": OpCall,
	"RET":  OpRet,
	"IRET": OpIret,
	"LOOP": OpLoop,
	"IN":   OpIn,
	"OUT":  OpOut,
}

var opcodeNames = func() map[Opcode]string {
	m := make(map[Opcode]string, len(mnemonics))
	for name, op := range mnemonics {
		m[op] = name
	}
	return m
}()

// LookupOpcode resolves a case-insensitive mnemonic to its Opcode tag.
// ok is false for anything outside spec.md §4.5's instruction set.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := mnemonics[strings.ToUpper(mnemonic)]
	return op, ok
}

// String returns the canonical upper-case mnemonic for op, used in
// trace lines and error messages.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
