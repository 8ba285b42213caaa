// Package simerr defines the error kinds surfaced by the simulator core
// to its callers (spec.md §7). Each kind is a sentinel error that a
// caller can recover with errors.Is/errors.As after a wrapped return.
package simerr

import "errors"

var (
	// ErrUnknownRegister is returned when a register name does not
	// name any of the thirteen architectural registers or their
	// 8-bit halves.
	ErrUnknownRegister = errors.New("unknown register")

	// ErrInvalidOperand is returned when a textual operand token
	// cannot be classified as a register, immediate, or memory
	// reference.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrUnknownLabel is returned when a jump, call, or loop target
	// is not present in the label table.
	ErrUnknownLabel = errors.New("unknown label")

	// ErrNotImplemented is returned for an opcode outside the
	// supported instruction set.
	ErrNotImplemented = errors.New("not implemented")

	// ErrDivideByZero is returned by DIV when the divisor is zero.
	ErrDivideByZero = errors.New("divide by zero")

	// ErrMalformedAddress is returned when a memory "[...]"
	// expression fails to parse.
	ErrMalformedAddress = errors.New("malformed address")
)
