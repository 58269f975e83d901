package corevm_test

import (
	"testing"

	"github.com/combforth/corevm"
	"github.com/combforth/corevm/stdwords"
)

func newConsole(t *testing.T) (*corevm.VM, *corevm.Stream) {
	t.Helper()
	vm, err := corevm.New(corevm.Config{
		MaxFunctionCount:    256,
		MaxInstructionCount: 1 << 14,
		MaxCharSegmentSize:  1 << 14,
		MaxValuesCount:      128,
		MaxReturnCount:      64,
		MaxFileCount:        8,
		MaxSSCharCount:      2048,
		MaxSSStringCount:    32,
		MaxCFCount:          16,
		MaxCISCount:         2048,
	})
	if err != nil {
		t.Fatalf("corevm.New() error: %v", err)
	}
	out := corevm.Memory(256)
	vm.SetOutput(out)
	if err := stdwords.Register(vm); err != nil {
		t.Fatalf("stdwords.Register() error: %v", err)
	}
	return vm, out
}

func run(t *testing.T, vm *corevm.VM, out *corevm.Stream, src string) string {
	t.Helper()
	start := out.Size()
	if !vm.CompileString("test", src) {
		t.Fatalf("CompileString failed: no room for input stream")
	}
	vm.Interpret()
	if err := vm.Diagnose(); err != nil {
		t.Fatalf("program %q failed: %v", src, err)
	}
	out.SetPos(start)
	var buf []byte
	for !out.IsEOS() {
		buf = append(buf, out.ReadChar())
	}
	return string(buf)
}

func TestArithmeticAndPrint(t *testing.T) {
	vm, out := newConsole(t)
	if got, want := run(t, vm, out, "2 3 + ."), "5 "; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestColonDefinitionAndRecursionlessReuse(t *testing.T) {
	vm, out := newConsole(t)
	if got, want := run(t, vm, out, ": sq dup * ; 7 sq ."), "49 "; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestIfElseThen(t *testing.T) {
	vm, out := newConsole(t)
	src := ": sign dup <0 if drop 0 1 - else drop 1 then ; -5 sign . 5 sign ."
	if got, want := run(t, vm, out, src), "-1 1 "; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestDoLoop(t *testing.T) {
	vm, out := newConsole(t)
	src := ": count 5 0 do i . loop ; count"
	if got, want := run(t, vm, out, src), "0 1 2 3 4 "; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestBootstrapWords(t *testing.T) {
	vm, out := newConsole(t)
	if got, want := run(t, vm, out, "-3 abs ."), "3 "; got != want {
		t.Fatalf("abs: output = %q, want %q", got, want)
	}
	if got, want := run(t, vm, out, "3 9 min ."), "3 "; got != want {
		t.Fatalf("min: output = %q, want %q", got, want)
	}
	if got, want := run(t, vm, out, "3 9 max ."), "9 "; got != want {
		t.Fatalf("max: output = %q, want %q", got, want)
	}
}

func TestUnknownWordLatchesCompileError(t *testing.T) {
	vm, out := newConsole(t)
	_ = out
	vm.CompileString("bad", "nonexistent-word")
	vm.Interpret()
	if err := vm.Diagnose(); err == nil {
		t.Fatalf("expected an unresolved token to latch a diagnosable flag")
	}
	vm.ClearFlags()
}

func TestCommentsAreSkipped(t *testing.T) {
	vm, out := newConsole(t)
	if got, want := run(t, vm, out, "2 ( this is a comment ) 3 + ."), "5 "; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
