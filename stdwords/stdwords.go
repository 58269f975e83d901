package stdwords

import (
	"fmt"

	"github.com/combforth/corevm"
)

// reg is a tiny builder collecting the first registration failure, so
// Register can install its forty-odd words without repeating error checks
// after every call.
type reg struct {
	vm  *corevm.VM
	err error
}

func (r *reg) native(name string, immediate bool, in, out uint32, fn corevm.NativeFunc) corevm.FunctionID {
	if r.err != nil {
		return 0
	}
	id, ok := r.vm.AddNativeFunction(name, immediate, fn, in, out)
	if !ok {
		if diag := r.vm.Diagnose(); diag != nil {
			r.err = diag
		} else {
			r.err = fmt.Errorf("stdwords: could not register %q", name)
		}
	}
	return id
}

// Register installs the standard native word set into vm, then compiles a
// small interpreted bootstrap built entirely on top of those natives. It
// must be called on a freshly constructed VM, before any host program is
// compiled, so that the dictionary ids the bootstrap resolves are stable.
func Register(vm *corevm.VM) error {
	r := &reg{vm: vm}

	r.native("+", false, 2, 1, binary(func(a, b int32) int32 { return a + b }))
	r.native("-", false, 2, 1, binary(func(a, b int32) int32 { return a - b }))
	r.native("*", false, 2, 1, binary(func(a, b int32) int32 { return a * b }))
	r.native("/", false, 2, 1, binary(func(a, b int32) int32 {
		if b == 0 {
			return 0
		}
		return a / b
	}))
	r.native("mod", false, 2, 1, binary(func(a, b int32) int32 {
		if b == 0 {
			return 0
		}
		return a % b
	}))
	r.native("<0", false, 1, 1, wordUnder0)
	r.native("=", false, 2, 1, compare(func(a, b int32) bool { return a == b }))
	r.native("<", false, 2, 1, compare(func(a, b int32) bool { return a < b }))
	r.native(">", false, 2, 1, compare(func(a, b int32) bool { return a > b }))
	r.native("<=", false, 2, 1, compare(func(a, b int32) bool { return a <= b }))
	r.native(">=", false, 2, 1, compare(func(a, b int32) bool { return a >= b }))

	r.native("dup", false, 1, 2, wordDup)
	r.native("drop", false, 1, 0, wordDrop)
	r.native("swap", false, 2, 2, wordSwap)
	r.native("over", false, 2, 3, wordOver)
	r.native("rot", false, 3, 3, wordRot)
	r.native("pick", false, 1, 1, wordPick)

	r.native("@", false, 1, 1, wordFetch)
	r.native("!", false, 2, 0, wordStore)
	r.native(",", false, 1, 0, wordComma)
	r.native("here", false, 0, 1, wordHere)
	r.native("'", true, 0, 1, wordTick)
	r.native("compile,", false, 1, 0, wordCompileComma)

	r.native(":", true, 0, 0, wordColon)
	r.native(";", true, 0, 0, wordSemicolon)
	r.native("immediate", false, 0, 0, wordImmediate)
	r.native("exit", false, 0, 0, wordExit)

	r.native("key", false, 0, 1, wordKey)
	r.native("echo", false, 1, 0, wordEcho)
	r.native(".", false, 1, 0, wordDot)
	r.native("(", true, 0, 0, wordParen)

	notBranchID := r.native("notbranch", false, 1, 0, wordNotBranch)
	branchID := r.native("branch", false, 0, 0, wordBranch)
	doRuntimeID := r.native("_do", false, 2, 0, wordDoRuntime)
	loopRuntimeID := r.native("_loop", false, 0, 0, wordLoopRuntime)

	r.native("if", true, 0, 0, func(vm *corevm.VM) { wordIf(vm, notBranchID) })
	r.native("else", true, 0, 0, func(vm *corevm.VM) { wordElse(vm, branchID) })
	r.native("then", true, 0, 0, wordThen)

	r.native("do", true, 0, 0, func(vm *corevm.VM) { wordDo(vm, doRuntimeID) })
	r.native("loop", true, 0, 0, func(vm *corevm.VM) { wordLoop(vm, loopRuntimeID) })
	r.native("i", false, 0, 1, wordI)
	r.native("j", false, 0, 1, wordJ)

	if r.err != nil {
		return r.err
	}

	return compileBootstrap(vm)
}

// compileBootstrap defines a handful of ordinary words purely in terms of
// the natives above, exercising the interpreted/compiled half of the
// dictionary the way THIRD's self-hosted definitions exercise FIRST's.
func compileBootstrap(vm *corevm.VM) error {
	tx := vm.BeginTx()
	if !vm.CompileString("<bootstrap>", bootstrapSource) {
		return fmt.Errorf("stdwords: no room to push bootstrap source stream")
	}
	vm.Interpret()
	if err := vm.Diagnose(); err != nil {
		vm.AbortTx(tx)
		vm.ClearFlags()
		return fmt.Errorf("stdwords: bootstrap: %w", err)
	}
	return nil
}

const bootstrapSource = `
: 1+ 1 + ;
: 1- 1 - ;
: negate 0 swap - ;
: 2dup over over ;
: 2drop drop drop ;
: nl 10 echo ;
: space 32 echo ;
: ?dup dup if dup then ;
: abs dup <0 if negate then ;
: min 2dup > if swap then drop ;
: max 2dup < if swap then drop ;
: square dup * ;
`
