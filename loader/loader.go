// Package loader implements the two-pass text-to-program assembler
// described in spec.md §4.4: strip comments and CONST directives,
// resolve label offsets, then emit a physical-address-keyed program
// map. It is grounded on the teacher's two-pass ie32asm.go assembler,
// adapted from byte-code emission to the synthetic fixed-size
// instruction records this simulator's interpreter consumes.
package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/realmode-labs/x86sim/operand"
	"github.com/realmode-labs/x86sim/simerr"
)

// identifierRe matches a bare identifier run, used to find constant
// references embedded inside a bracketed memory expression such as
// "[bx+SIZE]".
var identifierRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// Instruction is one decoded program entry: the tagged opcode, its
// resolved operands, and the byte count ip advances by when this
// entry executes.
type Instruction struct {
	Opcode   Opcode
	Operands []operand.Operand
	Size     uint16
}

// Program is the result of a successful Load: the physical-address
// keyed instruction map plus the label and constant tables a caller
// may want for diagnostics.
type Program struct {
	Instructions map[uint32]Instruction
	Labels       map[string]uint16
	Constants    map[string]uint16
}

// instructionSize implements spec.md §4.4's synthetic sizing rule:
// 2 bytes for the opcode plus 2 bytes per operand. It is not a real
// x86 encoding; it only needs to be consistent between passes.
func instructionSize(operandCount int) uint16 {
	return uint16(2 + 2*operandCount)
}

// Load runs all three passes over source and returns the resulting
// Program. csInitial and busSize parameterize Pass 2's physical
// address computation: physical = ((csInitial<<4) + offset) mod M.
func Load(source string, csInitial uint16, busSize uint32) (*Program, error) {
	lines, constants, err := normalize(source)
	if err != nil {
		return nil, err
	}

	labels, sized, err := resolveLabels(lines, constants)
	if err != nil {
		return nil, err
	}

	instructions := make(map[uint32]Instruction, len(sized))
	var offset uint32
	for _, instr := range sized {
		physical := ((uint32(csInitial) << 4) + offset) % busSize
		instructions[physical] = instr
		offset += uint32(instr.Size)
	}

	return &Program{Instructions: instructions, Labels: labels, Constants: constants}, nil
}

// normalize is Pass 0: strip comments, trim whitespace, drop blank
// lines, and bind CONST directives into the constant table.
func normalize(source string) ([]string, map[string]uint16, error) {
	constants := make(map[string]uint16)
	var out []string

	for lineNum, raw := range strings.Split(source, "\n") {
		line := raw
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "CONST ") {
			name, value, err := parseConst(line)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNum+1, err)
			}
			constants[name] = value
			continue
		}

		out = append(out, line)
	}

	return out, constants, nil
}

// parseConst parses "CONST NAME = EXPR".
func parseConst(line string) (string, uint16, error) {
	body := strings.TrimSpace(line[len("CONST "):])
	eq := strings.Index(body, "=")
	if eq < 0 {
		return "", 0, fmt.Errorf("%w: malformed CONST directive %q", simerr.ErrInvalidOperand, line)
	}
	name := strings.ToLower(strings.TrimSpace(body[:eq]))
	exprTok := strings.TrimSpace(body[eq+1:])
	value, err := operand.ParseLiteral(exprTok)
	if err != nil {
		return "", 0, fmt.Errorf("const %q: %w", name, err)
	}
	return name, value, nil
}

// resolveLabels is Pass 1: record label offsets and compute each
// instruction's size. It resolves operand tokens in the same pass
// rather than re-traversing the source a third time; since operand
// parsing (including constant substitution) depends only on the
// constant table bound in Pass 0 and not on the label table, this is
// equivalent to resolving them again in a dedicated Pass 2 traversal.
func resolveLabels(lines []string, constants map[string]uint16) (map[string]uint16, []Instruction, error) {
	labels := make(map[string]uint16)
	var sized []Instruction

	var offset uint16
	for lineNum, line := range lines {
		if strings.HasSuffix(line, ":") {
			label := strings.ToLower(strings.TrimSuffix(line, ":"))
			labels[label] = offset
			continue
		}

		mnemonic, operandToks := splitStatement(line)
		op, ok := LookupOpcode(mnemonic)
		if !ok {
			return nil, nil, fmt.Errorf("line %d: %w: %q", lineNum+1, simerr.ErrNotImplemented, mnemonic)
		}

		resolved := make([]operand.Operand, 0, len(operandToks))
		for i, tok := range operandToks {
			tok = substituteConstant(tok, constants)
			parsed, err := parseOperandToken(op, i, tok)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNum+1, err)
			}
			resolved = append(resolved, parsed)
		}

		size := instructionSize(len(resolved))
		sized = append(sized, Instruction{Opcode: op, Operands: resolved, Size: size})
		offset += size
	}

	return labels, sized, nil
}

// labelOperandOpcodes are the control-transfer opcodes whose sole
// operand names a label rather than a register/immediate/memory
// location (spec.md §4.5).
var labelOperandOpcodes = map[Opcode]bool{
	OpJmp: true, OpJe: true, OpJne: true, OpJg: true, OpJge: true,
	OpJl: true, OpJle: true, OpCall: true, OpLoop: true,
}

// parseOperandToken resolves one operand token, routing label targets
// through operand.ParseLabel instead of the register/immediate/memory
// grammar in spec.md §4.3.
func parseOperandToken(op Opcode, index int, tok string) (operand.Operand, error) {
	if index == 0 && labelOperandOpcodes[op] {
		return operand.ParseLabel(tok)
	}
	return operand.Parse(tok)
}

// splitStatement separates a non-label line into its mnemonic and
// comma-separated operand tokens.
func splitStatement(line string) (string, []string) {
	fields := strings.SplitN(line, " ", 2)
	mnemonic := fields[0]
	if len(fields) == 1 {
		return mnemonic, nil
	}
	parts := strings.Split(fields[1], ",")
	operands := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			operands = append(operands, p)
		}
	}
	return mnemonic, operands
}

// substituteConstant replaces every identifier in tok that names a
// bound CONST (case-folded, textual substitution per spec.md §4.4)
// with its decimal value, leaving register and mnemonic names
// untouched since they never collide with a constant name in well
// formed source. This also reaches identifiers embedded inside a
// bracketed memory expression such as "[bx+SIZE]".
func substituteConstant(tok string, constants map[string]uint16) string {
	if len(constants) == 0 {
		return tok
	}
	return identifierRe.ReplaceAllStringFunc(tok, func(ident string) string {
		if v, ok := constants[strings.ToLower(ident)]; ok {
			return strconv.Itoa(int(v))
		}
		return ident
	})
}
