package corevm

// FunctionID identifies a dictionary record. 0 is reserved to mean
// "not found" by FindFunction; valid ids returned to hosts are therefore
// 1-based at every host-facing boundary, while internal storage is 0-based
// (see dictionary.fromID).
type FunctionID uint32

// FunctionKind discriminates an interpreted word (a code-segment range) from
// a native one (a Go callback).
type FunctionKind uint8

const (
	// Interpreted words run by executing a slice of the code segment.
	Interpreted FunctionKind = iota
	// Native words run by invoking a Go callback synchronously.
	Native
)

// NativeFunc is the signature of a native word's implementation. It
// observes/mutates the VM's stacks and memory directly and may latch Flags;
// it must not call VM.Step recursively.
type NativeFunc func(vm *VM)

// Function is a single dictionary record.
//
// A function's CodeOffset..CodeOffset+CodeCount is a contiguous, stable
// slice of the code segment for the VM's lifetime; there is no compaction.
type Function struct {
	Kind        FunctionKind
	IsImmediate bool
	NameOffset  uint32 // offset into the character segment; NUL-terminated

	// Interpreted payload.
	CodeOffset uint32
	CodeCount  uint32

	// Native payload.
	Native NativeFunc

	// InArity/OutArity are informational only; the interpreter does not
	// enforce them.
	InArity, OutArity uint32
}

// dictionary is the append-only function table plus its backing character
// segment. Lookup scans from the most recently added record backward so
// that redefinition shadows rather than replaces.
type dictionary struct {
	funcs []Function
	cap   uint32
	chars byteArena
}

func newDictionary(maxFunctions, maxCharSegment uint32) dictionary {
	return dictionary{
		funcs: make([]Function, 0, maxFunctions),
		cap:   maxFunctions,
		chars: newByteArena(maxCharSegment),
	}
}

// Len returns the number of records appended so far.
func (d *dictionary) Len() uint32 { return uint32(len(d.funcs)) }

// fromID converts a 1-based FunctionID into a 0-based slice index, or
// (0, false) if id is 0 ("not found") or out of range.
func (d *dictionary) fromID(id FunctionID) (int, bool) {
	if id == 0 || uint32(id) > uint32(len(d.funcs)) {
		return 0, false
	}
	return int(id) - 1, true
}

// At returns the record named by id (1-based), or the zero Function and
// false if id is 0 or unknown.
func (d *dictionary) At(id FunctionID) (Function, bool) {
	i, ok := d.fromID(id)
	if !ok {
		return Function{}, false
	}
	return d.funcs[i], true
}

// Name returns the interned name of the record named by id.
func (d *dictionary) Name(id FunctionID) string {
	i, ok := d.fromID(id)
	if !ok {
		return ""
	}
	return d.chars.StringAt(d.funcs[i].NameOffset)
}

// FindFunction returns the most recently added record named name, or 0 if
// none matches. The scan runs newest-to-oldest so a redefinition shadows
// the word it replaces without removing it.
func (d *dictionary) FindFunction(name string) FunctionID {
	for i := len(d.funcs) - 1; i >= 0; i-- {
		if d.chars.StringAt(d.funcs[i].NameOffset) == name {
			return FunctionID(i + 1)
		}
	}
	return 0
}

// allocateInterpretedFunction appends a new interpreted record named name
// with an empty code range starting at codeLen (the code segment's current
// size), returning its id. ok is false (and nothing is mutated) if the
// function table or character segment has no room.
func (d *dictionary) allocateInterpretedFunction(name string, codeLen uint32) (id FunctionID, ok bool) {
	if uint32(len(d.funcs)) >= d.cap {
		return 0, false
	}
	offset, ok := d.chars.AppendString(name)
	if !ok {
		return 0, false
	}
	d.funcs = append(d.funcs, Function{
		Kind:       Interpreted,
		NameOffset: offset,
		CodeOffset: codeLen,
		CodeCount:  0,
	})
	return FunctionID(len(d.funcs)), true
}

// finalize sets the CodeCount of the interpreted record named by id once its
// definition has been committed.
func (d *dictionary) finalize(id FunctionID, codeCount uint32) {
	if i, ok := d.fromID(id); ok {
		d.funcs[i].CodeCount = codeCount
	}
}

// markImmediate sets the IsImmediate bit of the record named by id.
func (d *dictionary) markImmediate(id FunctionID) {
	if i, ok := d.fromID(id); ok {
		d.funcs[i].IsImmediate = true
	}
}

// charLen returns the character segment's current length, used to snapshot
// and restore state around BeginTx/AbortTx.
func (d *dictionary) charLen() uint32 { return d.chars.Len() }

// truncateChars rolls the character segment back to n bytes, used by
// AbortTx. Any names already interned past n become unreachable garbage
// inside the (still reserved) arena; no record can reference them since
// truncate(n) above always accompanies this call with the matching function
// count.
func (d *dictionary) truncateChars(n uint32) { d.chars.Truncate(n) }

// addNativeFunction appends a new native record, returning its id. ok is
// false (and nothing is mutated) if the function table or character segment
// has no room.
func (d *dictionary) addNativeFunction(name string, isImmediate bool, fn NativeFunc, inArity, outArity uint32) (id FunctionID, ok bool) {
	if uint32(len(d.funcs)) >= d.cap {
		return 0, false
	}
	offset, ok := d.chars.AppendString(name)
	if !ok {
		return 0, false
	}
	d.funcs = append(d.funcs, Function{
		Kind:        Native,
		IsImmediate: isImmediate,
		NameOffset:  offset,
		Native:      fn,
		InArity:     inArity,
		OutArity:    outArity,
	})
	return FunctionID(len(d.funcs)), true
}

// truncate discards records past n, used to implement AbortTx. It does not
// reclaim character-segment space; AbortTx and AbortDefinition roll that
// back themselves with truncateChars.
func (d *dictionary) truncate(n uint32) {
	if n < uint32(len(d.funcs)) {
		d.funcs = d.funcs[:n]
	}
}
