// Package operand classifies and resolves the textual operands that
// appear in assembly source (spec.md §4.3). An Operand is decoded once
// at load time into a tagged value; the interpreter never re-parses a
// token during execution, matching the tagged-variant redesign spec.md
// §9 calls for in place of repeated string inspection.
package operand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/realmode-labs/x86sim/simerr"
)

// Kind tags which of the four resolved forms an Operand holds.
type Kind int

const (
	KindRegister Kind = iota
	KindImmediate
	KindMemory
	// KindLabel holds a control-transfer target name. Labels are not
	// part of spec.md §4.3's operand grammar (they resolve through the
	// label table, not the register/immediate/memory forms), but the
	// loader needs a tagged form for them too so JMP/CALL/Jcc/LOOP
	// operands fit the same Operand shape as everything else.
	KindLabel
)

// Term is one signed component of a memory-reference expression: an
// effective-address register (bx/bp/si/di) or a literal displacement.
type Term struct {
	Register string // empty if this term is a literal
	Literal  int32  // valid when Register == ""
	Negative bool
}

// Operand is the parsed, tagged form of a single instruction operand.
// Exactly one of the four kinds applies at a time:
//
//   - KindRegister:  Register names the register (possibly an 8-bit half).
//   - KindImmediate: Immediate holds the literal value.
//   - KindMemory:    Terms holds the additive expression inside "[ ]".
//   - KindLabel:     Label holds the case-folded control-transfer target.
type Operand struct {
	Kind      Kind
	Register  string
	Immediate uint16
	Terms     []Term
	Label     string
}

// registerNames lists every name register.File.Get/Set accepts, used
// to classify a bare token as KindRegister without importing the
// register package.
var registerNames = map[string]bool{
	"ax": true, "bx": true, "cx": true, "dx": true,
	"si": true, "di": true, "bp": true, "sp": true,
	"ip": true, "cs": true, "ds": true, "ss": true, "es": true,
	"al": true, "ah": true, "bl": true, "bh": true,
	"cl": true, "ch": true, "dl": true, "dh": true,
}

// eaRegisters lists the four registers valid inside a "[...]"
// effective-address expression (spec.md §4.3).
var eaRegisters = map[string]bool{"bx": true, "bp": true, "si": true, "di": true}

// IsRegisterName reports whether name is one of the thirteen
// registers or their 8-bit halves.
func IsRegisterName(name string) bool {
	return registerNames[strings.ToLower(name)]
}

// Parse classifies a single token per spec.md §4.3's ambiguity rule:
// memory reference, then register, then x86 hex literal, then C-style
// integer literal, in that order.
func Parse(token string) (Operand, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return Operand{}, fmt.Errorf("%w: empty operand", simerr.ErrInvalidOperand)
	}

	if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
		terms, err := parseMemoryExpr(tok[1 : len(tok)-1])
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: KindMemory, Terms: terms}, nil
	}

	lower := strings.ToLower(tok)
	if registerNames[lower] {
		return Operand{Kind: KindRegister, Register: lower}, nil
	}

	if v, ok := parseX86Hex(lower); ok {
		return Operand{Kind: KindImmediate, Immediate: v}, nil
	}

	if v, err := parseCStyleInt(lower); err == nil {
		return Operand{Kind: KindImmediate, Immediate: v}, nil
	}

	return Operand{}, fmt.Errorf("%w: %q", simerr.ErrInvalidOperand, token)
}

// parseMemoryExpr parses the contents of a "[...]" reference: an
// additive expression over effective-address registers and literals,
// following Simulador.py's _decode_memory_address normalization
// (strip spaces, split on '+', treat '-' as term negation).
func parseMemoryExpr(inner string) ([]Term, error) {
	s := strings.ToLower(strings.ReplaceAll(inner, " ", ""))
	if s == "" {
		return nil, fmt.Errorf("%w: empty memory expression", simerr.ErrMalformedAddress)
	}
	s = strings.ReplaceAll(s, "-", "+-")
	rawParts := strings.Split(s, "+")

	var terms []Term
	for _, part := range rawParts {
		if part == "" {
			continue
		}
		negative := false
		if strings.HasPrefix(part, "-") {
			negative = true
			part = part[1:]
		}
		if part == "" {
			return nil, fmt.Errorf("%w: dangling sign in %q", simerr.ErrMalformedAddress, inner)
		}

		if eaRegisters[part] {
			terms = append(terms, Term{Register: part, Negative: negative})
			continue
		}

		if v, ok := parseX86Hex(part); ok {
			terms = append(terms, Term{Literal: int32(v), Negative: negative})
			continue
		}

		if v, err := parseCStyleInt(part); err == nil {
			terms = append(terms, Term{Literal: int32(v), Negative: negative})
			continue
		}

		return nil, fmt.Errorf("%w: bad term %q in %q", simerr.ErrMalformedAddress, part, inner)
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms in %q", simerr.ErrMalformedAddress, inner)
	}
	return terms, nil
}

// parseX86Hex recognizes a trailing-h hex literal (e.g. "7fffh"),
// rejecting anything that also looks like a bracketed or additive
// expression per spec.md §4.3.
func parseX86Hex(tok string) (uint16, bool) {
	if !strings.HasSuffix(tok, "h") {
		return 0, false
	}
	digits := tok[:len(tok)-1]
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// ParseLabel wraps a bare identifier as a KindLabel operand for
// control-transfer instructions (JMP/Jcc/CALL/LOOP), case-folding it
// the same way the loader's label table keys are case-folded.
func ParseLabel(token string) (Operand, error) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if tok == "" {
		return Operand{}, fmt.Errorf("%w: empty label operand", simerr.ErrInvalidOperand)
	}
	return Operand{Kind: KindLabel, Label: tok}, nil
}

// ParseLiteral parses a bare integer literal in either x86 style
// (trailing "h") or C style (0x.../decimal), for callers outside this
// package that need the same literal grammar without a full operand
// classification — the loader's CONST directive is one such caller.
func ParseLiteral(tok string) (uint16, error) {
	lower := strings.ToLower(strings.TrimSpace(tok))
	if v, ok := parseX86Hex(lower); ok {
		return v, nil
	}
	if v, err := parseCStyleInt(lower); err == nil {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", simerr.ErrInvalidOperand, tok)
}

// parseCStyleInt recognizes decimal and 0x-prefixed hex literals,
// allowing a leading minus sign (two's-complement wrapped to 16 bits).
func parseCStyleInt(tok string) (uint16, error) {
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// EffectiveOffset sums a memory operand's terms into a 16-bit offset,
// resolving each register term through getReg.
func EffectiveOffset(op Operand, getReg func(name string) (uint16, error)) (uint16, error) {
	var offset int32
	for _, term := range op.Terms {
		var v int32
		if term.Register != "" {
			rv, err := getReg(term.Register)
			if err != nil {
				return 0, err
			}
			v = int32(rv)
		} else {
			v = term.Literal
		}
		if term.Negative {
			v = -v
		}
		offset += v
	}
	return uint16(offset) & 0xFFFF, nil
}

// Width reports the operand width in bits for an instruction given
// its operand list, per spec.md §4.3: 8 iff any operand (for a
// two-operand form) or the sole operand (for a one-operand form) is
// an 8-bit register half; 16 otherwise.
func Width(operands []Operand) int {
	for _, op := range operands {
		if op.Kind == KindRegister && isEightBitHalf(op.Register) {
			return 8
		}
	}
	return 16
}

func isEightBitHalf(name string) bool {
	switch name {
	case "al", "ah", "bl", "bh", "cl", "ch", "dl", "dh":
		return true
	default:
		return false
	}
}
