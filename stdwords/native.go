// Package stdwords is the native-plus-interpreted standard word set that
// turns a bare corevm.VM into a working console: stack shuffling,
// arithmetic, dictionary/compiler access, and I/O, grounded in the native
// instruction set of jcorbin/gothird's FIRST layer and the interpreted
// control-flow idioms of its THIRD layer.
//
// The CORE package never depends on stdwords; a host picks and chooses,
// or swaps in its own word set entirely, by calling Register (or not).
package stdwords

import (
	"strconv"

	"github.com/combforth/corevm"
)

func bool32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func binary(f func(a, b int32) int32) corevm.NativeFunc {
	return func(vm *corevm.VM) {
		b := int32(vm.PopValue())
		a := int32(vm.PopValue())
		vm.PushValue(uint32(f(a, b)))
	}
}

func compare(f func(a, b int32) bool) corevm.NativeFunc {
	return func(vm *corevm.VM) {
		b := int32(vm.PopValue())
		a := int32(vm.PopValue())
		vm.PushValue(bool32(f(a, b)))
	}
}

func wordDup(vm *corevm.VM) {
	v, ok := vm.ValueStackTop()
	if !ok {
		return
	}
	vm.PushValue(v)
}

func wordDrop(vm *corevm.VM) { vm.PopValue() }

func wordSwap(vm *corevm.VM) {
	b := vm.PopValue()
	a := vm.PopValue()
	vm.PushValue(b)
	vm.PushValue(a)
}

func wordOver(vm *corevm.VM) {
	a, ok := vm.ValueStackPeek(1)
	if !ok {
		return
	}
	vm.PushValue(a)
}

func wordRot(vm *corevm.VM) {
	c := vm.PopValue()
	b := vm.PopValue()
	a := vm.PopValue()
	vm.PushValue(b)
	vm.PushValue(c)
	vm.PushValue(a)
}

func wordPick(vm *corevm.VM) {
	n := vm.PopValue()
	v, ok := vm.ValueStackPeek(n)
	if !ok {
		return
	}
	vm.PushValue(v)
}

func wordUnder0(vm *corevm.VM) {
	a := int32(vm.PopValue())
	vm.PushValue(bool32(a < 0))
}

func wordFetch(vm *corevm.VM) {
	addr := vm.PopValue()
	vm.PushValue(vm.CodeAt(addr).Operand())
}

func wordStore(vm *corevm.VM) {
	addr := vm.PopValue()
	v := vm.PopValue()
	vm.PatchAt(addr, corevm.Value(v))
}

func wordComma(vm *corevm.VM) {
	v := vm.PopValue()
	vm.Emit(corevm.Value(v))
}

func wordHere(vm *corevm.VM) { vm.PushValue(vm.Here()) }

func wordTick(vm *corevm.VM) {
	name, ok := vm.NextToken()
	if !ok {
		return
	}
	vm.PushValue(uint32(vm.FindFunction(name)))
}

func wordCompileComma(vm *corevm.VM) {
	id := vm.PopValue()
	vm.Emit(corevm.Call(id))
}

func wordColon(vm *corevm.VM) {
	name, ok := vm.NextToken()
	if !ok {
		return
	}
	vm.BeginDefinition(name)
}

func wordSemicolon(vm *corevm.VM) { vm.CommitDefinition() }

func wordImmediate(vm *corevm.VM) {
	if id := corevm.FunctionID(vm.LastDefinedID()); id != 0 {
		vm.MarkImmediate(id)
	}
}

func wordExit(vm *corevm.VM) { vm.Return() }

func wordKey(vm *corevm.VM) {
	c, ok := vm.ReadInputChar()
	if !ok {
		vm.PushValue(0)
		return
	}
	vm.PushValue(uint32(c))
}

func wordEcho(vm *corevm.VM) {
	c := vm.PopValue()
	if out := vm.Output(); out != nil {
		out.WriteChar(byte(c))
	}
}

func wordDot(vm *corevm.VM) {
	v := int32(vm.PopValue())
	out := vm.Output()
	if out == nil {
		return
	}
	for _, c := range strconv.Itoa(int(v)) {
		out.WriteChar(byte(c))
	}
	out.WriteChar(' ')
}

// wordParen skips a "( comment )"-style block, grounded on the convention
// THIRD layers on top of its primitives: discard tokens until one ends in
// ")".
func wordParen(vm *corevm.VM) {
	for {
		tok, ok := vm.NextToken()
		if !ok {
			return
		}
		if len(tok) > 0 && tok[len(tok)-1] == ')' {
			return
		}
	}
}

// wordBranch is the runtime half of an unconditional compiled branch: the
// VALUE opcode immediately following its own CALL carries the absolute
// target address.
func wordBranch(vm *corevm.VM) {
	target := vm.CodeAt(vm.IP()).Operand()
	vm.Jump(target)
}

// wordNotBranch pops a boolean off the value stack and branches to the
// target carried by the following VALUE opcode only if it is false,
// otherwise it falls through past that opcode.
func wordNotBranch(vm *corevm.VM) {
	cond := vm.PopValue()
	ip := vm.IP()
	target := vm.CodeAt(ip).Operand()
	if cond == 0 {
		vm.Jump(target)
	} else {
		vm.Jump(ip + 1)
	}
}

// wordIf is immediate: it compiles a call to notbranch followed by a
// placeholder offset cell, and leaves the placeholder's address on the
// value stack for "else" or "then" to patch, following THIRD's own
// if/then/else convention of using the data stack as a compile-time
// workspace for patch addresses.
func wordIf(vm *corevm.VM, notBranchID corevm.FunctionID) {
	vm.Emit(corevm.Call(uint32(notBranchID)))
	vm.PushValue(vm.Here())
	vm.Emit(corevm.Value(0))
}

func wordThen(vm *corevm.VM) {
	addr := vm.PopValue()
	vm.PatchAt(addr, corevm.Value(vm.Here()))
}

func wordElse(vm *corevm.VM, branchID corevm.FunctionID) {
	ifAddr := vm.PopValue()
	vm.Emit(corevm.Call(uint32(branchID)))
	elseAddr := vm.Here()
	vm.Emit(corevm.Value(0))
	vm.PatchAt(ifAddr, corevm.Value(vm.Here()))
	vm.PushValue(elseAddr)
}

// wordDo is immediate: its runtime half pops (limit, index) from the value
// stack onto the auxiliary loop stack; "do" itself also leaves the loop
// body's start address on the value stack for "loop" to branch back to.
func wordDoRuntime(vm *corevm.VM) {
	idx := vm.PopValue()
	limit := vm.PopValue()
	vm.PushAux(limit)
	vm.PushAux(idx)
}

func wordDo(vm *corevm.VM, doRuntimeID corevm.FunctionID) {
	vm.Emit(corevm.Call(uint32(doRuntimeID)))
	vm.PushValue(vm.Here())
}

// wordLoopRuntime increments the innermost loop index, looping back if it
// is still below the limit and otherwise discarding the loop frame.
func wordLoopRuntime(vm *corevm.VM) {
	idx, _ := vm.PopAux()
	limit, _ := vm.PopAux()
	idx++
	ip := vm.IP()
	target := vm.CodeAt(ip).Operand()
	if idx < limit {
		vm.PushAux(limit)
		vm.PushAux(idx)
		vm.Jump(target)
	} else {
		vm.Jump(ip + 1)
	}
}

func wordLoop(vm *corevm.VM, loopRuntimeID corevm.FunctionID) {
	bodyStart := vm.PopValue()
	vm.Emit(corevm.Call(uint32(loopRuntimeID)))
	vm.Emit(corevm.Value(bodyStart))
}

func wordI(vm *corevm.VM) {
	idx, ok := vm.PeekAux(0)
	if !ok {
		return
	}
	vm.PushValue(idx)
}

func wordJ(vm *corevm.VM) {
	idx, ok := vm.PeekAux(2)
	if !ok {
		return
	}
	vm.PushValue(idx)
}
