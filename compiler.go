package corevm

// compileMode is the outer interpreter's two-state mode: modeInterpret
// executes a resolved word immediately, modeCompile appends it to the
// definition currently under construction instead.
type compileMode uint8

const (
	modeInterpret compileMode = iota
	modeCompile
)

// compilerFrame records one in-progress definition on the compiler function
// stack. codeOffset is fixed at BeginDefinition time: nothing else may
// append to the code segment while a definition is open, so the eventual
// absolute address of every cell compiled into scratch is already known.
type compilerFrame struct {
	id           FunctionID
	codeOffset   uint32
	scratchStart uint32
}

// Mode reports whether the compiler is currently interpreting or compiling.
func (vm *VM) Mode() compileMode { return vm.mode }

// Compiling reports whether a definition is currently open.
func (vm *VM) Compiling() bool { return len(vm.cfs) > 0 }

// BeginDefinition opens a new interpreted-word definition named name,
// reserving its dictionary slot immediately so that a recursive reference
// to name resolves during its own body. It fails without
// mutating the compiler function stack if the function table, character
// segment, or compiler function stack has no room.
func (vm *VM) BeginDefinition(name string) (FunctionID, bool) {
	if vm.flags.Any() {
		return 0, false
	}
	if uint32(len(vm.cfs)) >= vm.cfg.MaxCFCount {
		return 0, false
	}
	codeOffset := vm.code.Len()
	id, ok := vm.dict.allocateInterpretedFunction(name, codeOffset)
	if !ok {
		vm.latchDictionaryOverflow()
		return 0, false
	}
	vm.cfs = append(vm.cfs, compilerFrame{id: id, codeOffset: codeOffset, scratchStart: vm.scratch.Len()})
	vm.mode = modeCompile
	return id, true
}

// CommitDefinition closes the innermost open definition, appending its
// scratch-tape body into the code segment and finalizing its dictionary
// record. ok is false if no definition is open.
func (vm *VM) CommitDefinition() bool {
	if len(vm.cfs) == 0 {
		return false
	}
	f := vm.cfs[len(vm.cfs)-1]
	vm.cfs = vm.cfs[:len(vm.cfs)-1]
	if len(vm.cfs) == 0 {
		vm.mode = modeInterpret
	}

	body := vm.scratch.Slice(f.scratchStart, vm.scratch.Len())
	for _, op := range body {
		if !vm.code.Append(op) {
			vm.flags.Set(FlagInstructionTapeOverflow)
			break
		}
	}
	count := vm.code.Len() - f.codeOffset
	vm.dict.finalize(f.id, count)
	vm.scratch.Truncate(f.scratchStart)
	return true
}

// AbortDefinition discards the innermost open definition without compiling
// it: its dictionary slot, scratch-tape contents, and any character-segment
// bytes allocated for its name are all rolled back.
func (vm *VM) AbortDefinition() bool {
	if len(vm.cfs) == 0 {
		return false
	}
	f := vm.cfs[len(vm.cfs)-1]
	vm.cfs = vm.cfs[:len(vm.cfs)-1]
	if len(vm.cfs) == 0 {
		vm.mode = modeInterpret
	}
	if fn, ok := vm.dict.At(f.id); ok {
		vm.dict.truncateChars(fn.NameOffset)
	}
	vm.dict.truncate(uint32(f.id) - 1)
	vm.scratch.Truncate(f.scratchStart)
	return true
}

// Here returns the absolute code-segment address the next Emit will write
// to: inside an open definition that is the scratch tape's position
// translated into the definition's eventual code range; otherwise it is
// simply the code segment's current length.
func (vm *VM) Here() uint32 {
	if len(vm.cfs) > 0 {
		f := vm.cfs[len(vm.cfs)-1]
		return f.codeOffset + (vm.scratch.Len() - f.scratchStart)
	}
	return vm.code.Len()
}

// Emit appends op at Here(), to the scratch tape if a definition is open or
// directly to the code segment otherwise (the "," word uses this to lay
// down code-segment cells outside any definition). It latches FlagInstructionTapeOverflow and returns false if
// there is no room.
func (vm *VM) Emit(op Opcode) bool {
	if vm.flags.Any() {
		return false
	}
	if len(vm.cfs) > 0 {
		if !vm.scratch.Append(uint32(op)) {
			vm.flags.Set(FlagInstructionTapeOverflow)
			return false
		}
		return true
	}
	if !vm.code.Append(uint32(op)) {
		vm.flags.Set(FlagInstructionTapeOverflow)
		return false
	}
	return true
}

// CodeAt reads back the opcode at absolute address addr, whether or not it
// has been committed to the code segment yet.
func (vm *VM) CodeAt(addr uint32) Opcode {
	if len(vm.cfs) > 0 {
		f := vm.cfs[len(vm.cfs)-1]
		if addr >= f.codeOffset {
			return Opcode(vm.scratch.At(f.scratchStart + (addr - f.codeOffset)))
		}
	}
	return Opcode(vm.code.At(addr))
}

// PatchAt overwrites the opcode at absolute address addr, used to back-patch
// forward branches once their target is known (if/then, do/loop style
// words).
func (vm *VM) PatchAt(addr uint32, op Opcode) {
	if len(vm.cfs) > 0 {
		f := vm.cfs[len(vm.cfs)-1]
		if addr >= f.codeOffset {
			vm.scratch.Set(f.scratchStart+(addr-f.codeOffset), uint32(op))
			return
		}
	}
	vm.code.Set(addr, uint32(op))
}

// resolveToken is the outer interpreter's per-token dispatch: a token is
// first looked up in the dictionary; an
// immediate word, or any word while not compiling, runs immediately, while
// a non-immediate word while compiling is appended as a CALL opcode.
// Failing that, the token is parsed as a numeric or rune literal, pushed
// immediately or appended as a VALUE opcode by the same rule. A token that
// is neither latches FlagCompileError, as does compiling a literal above
// MaxLiteral (a negative one), which no VALUE opcode can carry.
func (vm *VM) resolveToken(tok string) {
	if id := vm.dict.FindFunction(tok); id != 0 {
		fn, _ := vm.dict.At(id)
		if vm.mode == modeCompile && !fn.IsImmediate {
			vm.Emit(Call(uint32(id)))
			return
		}
		vm.invoke(id)
		return
	}
	if v, ok := parseLiteral(tok); ok {
		if vm.mode == modeCompile {
			if v > MaxLiteral {
				vm.latchCompileError()
				return
			}
			vm.Emit(Value(v))
		} else {
			vm.PushValue(v)
		}
		return
	}
	vm.latchCompileError()
}

// latchCompileError latches FlagCompileError and records the current
// stream's position for later diagnosis (see errors.go's Diagnose).
func (vm *VM) latchCompileError() {
	vm.flags.Set(FlagCompileError)
	if s := vm.topStream(); s != nil {
		vm.errLoc = s.Location()
	}
}

// Interpret drains the stream stack, resolving one token at a time, until
// input is exhausted or an exception flag is latched.
func (vm *VM) Interpret() {
	for !vm.flags.Any() {
		tok, ok := vm.nextToken()
		if !ok {
			return
		}
		vm.strs.Push(tok)
		vm.resolveToken(tok)
		vm.strs.Pop()
	}
}

// CurrentToken returns the token presently being resolved, as pushed onto
// the string stack by Interpret so it stays addressable during immediate
// execution.
func (vm *VM) CurrentToken() string { return vm.strs.Top() }

// NextToken scans and returns the next token directly, bypassing
// resolution. Native words that consume the tokens following them (":",
// "'", "(") call this themselves.
func (vm *VM) NextToken() (string, bool) { return vm.nextToken() }

// txSnapshot is an opaque marker returned by BeginTx and consumed by
// AbortTx to support transactional compilation.
type txSnapshot struct {
	codeLen    uint32
	funcLen    uint32
	charLen    uint32
	scratchLen uint32
}

// BeginTx snapshots every append-only segment the compiler can mutate.
func (vm *VM) BeginTx() txSnapshot {
	return txSnapshot{
		codeLen:    vm.code.Len(),
		funcLen:    vm.dict.Len(),
		charLen:    vm.dict.charLen(),
		scratchLen: vm.scratch.Len(),
	}
}

// Commit discards tx, accepting everything compiled since the matching
// BeginTx. It exists so callers can write a symmetric Begin/Commit/Abort
// shape even though acceptance itself requires no bookkeeping.
func (vm *VM) Commit(tx txSnapshot) { _ = tx }

// AbortTx rolls every segment snapshotted by tx back to its prior length,
// and discards every open definition, including any opened before tx. It
// does not clear latched
// Flags; callers that abort in response to a flag should ClearFlags
// themselves once they've decided recovery is safe.
func (vm *VM) AbortTx(tx txSnapshot) {
	vm.cfs = vm.cfs[:0]
	vm.mode = modeInterpret
	vm.code.Truncate(tx.codeLen)
	vm.dict.truncate(tx.funcLen)
	vm.dict.truncateChars(tx.charLen)
	vm.scratch.Truncate(tx.scratchLen)
}
