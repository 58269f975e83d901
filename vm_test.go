package corevm

import (
	"bytes"
	"testing"
)

func TestConfigValidateRejectsZeroField(t *testing.T) {
	cfg := testConfig()
	cfg.MaxValuesCount = 0
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected New() to reject a zero-valued Config field")
	}
}

func TestNewAcceptsFullConfig(t *testing.T) {
	vm := newTestVM(t)
	if vm.Flags().Any() {
		t.Fatalf("fresh VM must not have any flag latched")
	}
	if !vm.Quit() {
		t.Fatalf("fresh VM should report Quit() true")
	}
}

func TestPushPopValueRoundTrip(t *testing.T) {
	vm := newTestVM(t)
	vm.PushValue(1)
	vm.PushValue(2)
	if got := vm.PopValue(); got != 2 {
		t.Fatalf("PopValue() = %v, want 2", got)
	}
	if got := vm.PopValue(); got != 1 {
		t.Fatalf("PopValue() = %v, want 1", got)
	}
}

func TestPopValueUnderflowLatchesFlagAndReturnsZero(t *testing.T) {
	vm := newTestVM(t)
	if got := vm.PopValue(); got != 0 {
		t.Fatalf("PopValue() on empty stack = %v, want 0", got)
	}
	if !vm.Flags().Has(FlagValueStackUnderflow) {
		t.Fatalf("expected FlagValueStackUnderflow to be latched")
	}
}

func TestOnceFlaggedFurtherOpsAreNoOps(t *testing.T) {
	vm := newTestVM(t)
	vm.PopValue() // latches underflow
	vm.PushValue(5)
	if vm.ValueStackHeight() != 0 {
		t.Fatalf("push after a latched flag must be a no-op, height = %v", vm.ValueStackHeight())
	}
	vm.ClearFlags()
	vm.PushValue(5)
	if vm.ValueStackHeight() != 1 {
		t.Fatalf("expected push to succeed again after ClearFlags")
	}
}

func TestReleaseReleasesStreams(t *testing.T) {
	vm := newTestVM(t)
	s := Memory(4)
	vm.PushStream(s)
	if got := s.RefCount(); got != 2 {
		t.Fatalf("RefCount() after push = %v, want 2 (one for the caller, one for the VM)", got)
	}
	vm.Release()
	if got := s.RefCount(); got != 1 {
		t.Fatalf("RefCount() after Release = %v, want 1", got)
	}
}

func TestDumpDoesNotPanic(t *testing.T) {
	vm := newTestVM(t)
	vm.AddNativeFunction("dup", false, func(*VM) {}, 1, 2)
	vm.BeginDefinition("w")
	vm.Emit(Value(1))
	vm.CommitDefinition()

	var buf bytes.Buffer
	vm.Dump(&buf)
	if buf.Len() == 0 {
		t.Fatalf("expected Dump to write something")
	}
}

func TestDiagnoseNilWhenClean(t *testing.T) {
	vm := newTestVM(t)
	if err := vm.Diagnose(); err != nil {
		t.Fatalf("Diagnose() = %v, want nil", err)
	}
}

func TestDiagnoseReportsLatchedFlag(t *testing.T) {
	vm := newTestVM(t)
	vm.CompileString("bad.3rd", "not-a-word")
	vm.Interpret()
	err := vm.Diagnose()
	if err == nil {
		t.Fatalf("expected Diagnose() to report the latched compile error")
	}
}
