package corevm

import "testing"

func TestBeginCommitDefinition(t *testing.T) {
	vm := newTestVM(t)

	id, ok := vm.BeginDefinition("answer")
	if !ok {
		t.Fatalf("BeginDefinition failed")
	}
	if !vm.Compiling() {
		t.Fatalf("expected Compiling() true with an open definition")
	}
	vm.Emit(Value(42))
	if !vm.CommitDefinition() {
		t.Fatalf("CommitDefinition failed")
	}
	if vm.Compiling() {
		t.Fatalf("expected Compiling() false after commit")
	}

	fn, ok := vm.FunctionAt(id)
	if !ok {
		t.Fatalf("FunctionAt(id) not found")
	}
	if fn.CodeCount != 1 {
		t.Fatalf("CodeCount = %v, want 1", fn.CodeCount)
	}
	op := Opcode(vm.code.At(fn.CodeOffset))
	if op.IsCall() || op.Operand() != 42 {
		t.Fatalf("compiled opcode = %+v, want Value(42)", op)
	}
}

func TestHereTracksScratchDuringDefinition(t *testing.T) {
	vm := newTestVM(t)

	before := vm.Here()
	vm.BeginDefinition("w")
	if got := vm.Here(); got != before {
		t.Fatalf("Here() at start of definition = %v, want %v", got, before)
	}
	vm.Emit(Value(1))
	if got := vm.Here(); got != before+1 {
		t.Fatalf("Here() after one Emit = %v, want %v", got, before+1)
	}
	vm.CommitDefinition()
	if got := vm.Here(); got != before+1 {
		t.Fatalf("Here() after commit = %v, want %v", got, before+1)
	}
}

func TestPatchAtRewritesUncommittedOpcode(t *testing.T) {
	vm := newTestVM(t)

	vm.BeginDefinition("w")
	addr := vm.Here()
	vm.Emit(Value(0))
	vm.PatchAt(addr, Value(99))
	if got := vm.CodeAt(addr); got.Operand() != 99 {
		t.Fatalf("CodeAt(addr) = %v, want 99", got.Operand())
	}
	vm.CommitDefinition()
	if got := Opcode(vm.code.At(addr)); got.Operand() != 99 {
		t.Fatalf("committed opcode = %v, want 99", got.Operand())
	}
}

func TestResolveTokenInterpretModeLiteral(t *testing.T) {
	vm := newTestVM(t)
	vm.resolveToken("7")
	v, ok := vm.ValueStackTop()
	if !ok || v != 7 {
		t.Fatalf("ValueStackTop() = (%v, %v), want (7, true)", v, ok)
	}
}

func TestResolveTokenUnknownLatchesCompileError(t *testing.T) {
	vm := newTestVM(t)
	vm.resolveToken("not-a-word-or-number")
	if !vm.Flags().Has(FlagCompileError) {
		t.Fatalf("expected FlagCompileError to be latched")
	}
}

func TestResolveTokenCompilesCallForNonImmediateWord(t *testing.T) {
	vm := newTestVM(t)
	id, ok := vm.AddNativeFunction("noop", false, func(*VM) {}, 0, 0)
	if !ok {
		t.Fatalf("AddNativeFunction failed")
	}

	defID, _ := vm.BeginDefinition("uses-noop")
	vm.resolveToken("noop")
	vm.CommitDefinition()

	fn, _ := vm.FunctionAt(defID)
	if fn.CodeCount != 1 {
		t.Fatalf("CodeCount = %v, want 1", fn.CodeCount)
	}
	op := Opcode(vm.code.At(fn.CodeOffset))
	if !op.IsCall() || op.FunctionID() != id {
		t.Fatalf("compiled opcode = %+v, want Call(%v)", op, id)
	}
}

func TestResolveTokenRunsImmediateWordEvenWhileCompiling(t *testing.T) {
	vm := newTestVM(t)
	ran := false
	id, _ := vm.AddNativeFunction("now", true, func(*VM) { ran = true }, 0, 0)

	vm.BeginDefinition("w")
	vm.resolveToken("now")
	vm.CommitDefinition()

	if !ran {
		t.Fatalf("expected immediate word to run during compilation")
	}
	fn, _ := vm.FunctionAt(id)
	_ = fn
	if vm.code.Len() != 0 {
		t.Fatalf("immediate word must not be compiled into the body, code.Len() = %v", vm.code.Len())
	}
}

func TestBeginTxAbortTxRollsBackEverything(t *testing.T) {
	vm := newTestVM(t)
	vm.AddNativeFunction("pre-existing", false, func(*VM) {}, 0, 0)

	tx := vm.BeginTx()
	vm.AddNativeFunction("scratch", false, func(*VM) {}, 0, 0)
	vm.BeginDefinition("w")
	vm.Emit(Value(1))
	vm.Emit(Value(2))

	beforeFuncs := vm.dict.Len()
	vm.AbortTx(tx)

	if vm.dict.Len() == beforeFuncs {
		t.Fatalf("expected dictionary to roll back, still have %v records", vm.dict.Len())
	}
	if vm.Compiling() {
		t.Fatalf("expected AbortTx to discard the open definition")
	}
	if id := vm.FindFunction("scratch"); id != 0 {
		t.Fatalf("FindFunction(scratch) after abort = %v, want 0", id)
	}
	if id := vm.FindFunction("pre-existing"); id == 0 {
		t.Fatalf("expected pre-existing definition to survive the rollback")
	}
}
