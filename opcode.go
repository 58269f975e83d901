package corevm

// Opcode is a single 32-bit word on the code tape. The high bit selects
// between a value opcode (push an immediate onto the value stack) and a
// call opcode (invoke a dictionary entry); the low 31 bits carry the
// operand in either case.
type Opcode uint32

const (
	opValue Opcode = 0x00000000
	opCall  Opcode = 0x80000000

	operandMask = 0x7FFFFFFF

	// MaxLiteral is the largest value a VALUE opcode can carry; above it an
	// operand would collide with the opcode-kind bit. A negative decimal
	// literal parses to a two's-complement value above MaxLiteral: it can be
	// pushed while interpreting, but compiling it latches FlagCompileError.
	MaxLiteral = operandMask
)

// Value packs v as a VALUE opcode. v must be <= MaxLiteral.
func Value(v uint32) Opcode { return opValue | Opcode(v&operandMask) }

// Call packs fid as a CALL opcode. fid must be <= MaxLiteral.
func Call(fid uint32) Opcode { return opCall | Opcode(fid&operandMask) }

// IsCall reports whether op is a CALL opcode (high bit set).
func (op Opcode) IsCall() bool { return op&opCall != 0 }

// Operation returns the high bit alone, one of opValue or opCall.
func (op Opcode) Operation() Opcode { return op & opCall }

// Operand returns the low 31 bits of op.
func (op Opcode) Operand() uint32 { return uint32(op & operandMask) }

// FunctionID returns the operand interpreted as a dictionary index; only
// meaningful when IsCall is true.
func (op Opcode) FunctionID() FunctionID { return FunctionID(op.Operand()) }
