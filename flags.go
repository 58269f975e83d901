package corevm

import "strings"

// Flag names a single latched exception bit in the Flags register. Once
// set, a flag stays set until the host explicitly clears it.
type Flag uint32

const (
	// FlagValueStackOverflow is latched when a value-stack push would exceed
	// its configured capacity.
	FlagValueStackOverflow Flag = 1 << iota
	// FlagValueStackUnderflow is latched when a value-stack pop is attempted
	// on an empty stack.
	FlagValueStackUnderflow
	// FlagReturnStackOverflow is latched when a return-stack push would
	// exceed its configured capacity.
	FlagReturnStackOverflow
	// FlagReturnStackUnderflow is latched when a return-stack pop is
	// attempted on an empty stack.
	FlagReturnStackUnderflow
	// FlagFunctionTableOverflow is latched when the dictionary has no room
	// for another Function record.
	FlagFunctionTableOverflow
	// FlagInstructionTapeOverflow is latched when the code segment (or the
	// compiler scratch tape) has no room for another Opcode.
	FlagInstructionTapeOverflow
	// FlagCharSegmentOverflow is latched when the character segment has no
	// room for another name or string literal.
	FlagCharSegmentOverflow
	// FlagCompileError is latched on an unresolved token, an oversize
	// literal, or an oversize token during compilation.
	FlagCompileError

	flagMax
	allFlags = flagMax - 1
)

var flagNames = [...]string{
	"value-stack overflow",
	"value-stack underflow",
	"return-stack overflow",
	"return-stack underflow",
	"function-table overflow",
	"instruction-tape overflow",
	"char-segment overflow",
	"compile error",
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var sb strings.Builder
	for i, name := range flagNames {
		bit := Flag(1 << uint(i))
		if f&bit == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("|")
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// Flags is the latched exception-bit register, plus the separate boolean bf
// flag (see VM.BF). Once any exception bit is set, PushValue, PopValue,
// AddNativeFunction, BeginDefinition, Emit, Step, Interpret and the outer
// interpreter's word invocation are no-ops until the host clears it (see
// VM.Flags, VM.ClearFlags). Call, Return, Jump, PatchAt, CommitDefinition,
// AbortDefinition, the stream-stack operations and the auxiliary-stack
// operations do not check the flags.
type Flags struct {
	bits Flag
	bf   bool
}

// Any reports whether any exception bit is latched.
func (fl Flags) Any() bool { return fl.bits != 0 }

// Has reports whether the given flag is latched.
func (fl Flags) Has(f Flag) bool { return fl.bits&f != 0 }

// Set latches f. Setting an already-latched bit is a no-op.
func (fl *Flags) Set(f Flag) { fl.bits |= f }

// Clear unlatches f.
func (fl *Flags) Clear(f Flag) { fl.bits &^= f }

// ClearAll unlatches every exception bit, leaving bf untouched.
func (fl *Flags) ClearAll() { fl.bits = 0 }

// Bool returns the bf flag.
func (fl Flags) Bool() bool { return fl.bf }

// SetBool sets the bf flag.
func (fl *Flags) SetBool(b bool) { fl.bf = b }

// String renders the set of latched bits, or "none".
func (fl Flags) String() string { return fl.bits.String() }
