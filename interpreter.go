package corevm

import "fmt"

// Call pushes the current (fp, ip) and transfers control to id, the inner
// interpreter's equivalent of a CALL opcode. Native words are invoked
// synchronously instead of pushing a frame, since they never advance ip
// themselves.
func (vm *VM) Call(id FunctionID) bool {
	fn, ok := vm.dict.At(id)
	if !ok {
		return false
	}
	if fn.Kind == Native {
		fn.Native(vm)
		return !vm.flags.Any()
	}
	if !vm.returns.Push(frame{fp: vm.fp, ip: vm.ip}) {
		vm.flags.Set(FlagReturnStackOverflow)
		return false
	}
	vm.fp, vm.ip = id, 0
	vm.quit = false
	return true
}

// Return pops the return stack into (fp, ip), the inner interpreter's
// equivalent of reaching the end of a function's code range. Native words
// implementing "exit" call this directly to return early.
func (vm *VM) Return() bool {
	f, ok := vm.returns.Pop()
	if !ok {
		vm.flags.Set(FlagReturnStackUnderflow)
		return false
	}
	vm.fp, vm.ip = f.fp, f.ip
	if vm.fp == 0 {
		vm.quit = true
	}
	return true
}

// Jump sets ip within the currently executing function to the instruction
// at absolute code address addr, used by "branch"/"notbranch" native words.
// It is a no-op if there is no active frame or addr falls outside it; the
// address just past its last instruction is accepted, and the next Step
// then returns.
func (vm *VM) Jump(addr uint32) {
	fn, ok := vm.dict.At(vm.fp)
	if !ok || addr < fn.CodeOffset || addr > fn.CodeOffset+fn.CodeCount {
		return
	}
	vm.ip = addr - fn.CodeOffset
}

// IP returns the absolute code address of the next instruction the
// currently executing function will fetch.
func (vm *VM) IP() uint32 {
	fn, ok := vm.dict.At(vm.fp)
	if !ok {
		return 0
	}
	return fn.CodeOffset + vm.ip
}

// BF returns the separate boolean condition flag bf. The stdwords
// comparison and conditional words do not use it; they pass truth values
// on the value stack.
func (vm *VM) BF() bool { return vm.flags.Bool() }

// SetBF sets the boolean condition flag bf.
func (vm *VM) SetBF(b bool) { vm.flags.SetBool(b) }

// Step executes a single opcode of the currently active function: a VALUE
// opcode pushes its operand, a CALL opcode calls the named function, and
// running off the end of the function's code range performs an implicit
// Return. Step is a no-op returning false once idle (fp == 0) or once any
// exception flag is latched. The Step that performs the outermost Return
// returns true and leaves the VM idle, with Quit reporting true.
func (vm *VM) Step() bool {
	if vm.flags.Any() || vm.fp == 0 {
		vm.quit = vm.fp == 0
		return false
	}
	fn, ok := vm.dict.At(vm.fp)
	if !ok {
		vm.quit = true
		return false
	}
	if vm.logFn != nil {
		what := "return"
		if vm.ip < fn.CodeCount {
			op := Opcode(vm.code.At(fn.CodeOffset + vm.ip))
			what = fmt.Sprintf("value %v", op.Operand())
			if op.IsCall() {
				what = fmt.Sprintf("call %v", vm.dict.Name(op.FunctionID()))
			}
		}
		vm.logf("%v @%v %v r:%v v:%v", vm.dict.Name(vm.fp), fn.CodeOffset+vm.ip, what, vm.returns.buf, vm.values.Values())
	}
	if vm.ip >= fn.CodeCount {
		return vm.Return()
	}
	op := Opcode(vm.code.At(fn.CodeOffset + vm.ip))
	vm.ip++
	if !op.IsCall() {
		vm.PushValue(op.Operand())
		return !vm.flags.Any()
	}
	return vm.Call(op.FunctionID())
}

// invoke runs id to completion, synchronously, as the outer interpreter
// does for a word resolved outside (or as an immediate word inside)
// compilation. Native words simply run once; interpreted words run via
// Step until control has unwound back past the frame invoke pushed.
func (vm *VM) invoke(id FunctionID) {
	if vm.flags.Any() {
		return
	}
	fn, ok := vm.dict.At(id)
	if !ok {
		vm.flags.Set(FlagCompileError)
		return
	}
	if fn.Kind == Native {
		fn.Native(vm)
		return
	}
	depth := vm.returns.Len()
	if !vm.returns.Push(frame{fp: vm.fp, ip: vm.ip}) {
		vm.flags.Set(FlagReturnStackOverflow)
		return
	}
	vm.fp, vm.ip = id, 0
	for vm.returns.Len() > depth && !vm.flags.Any() {
		vm.Step()
	}
}

// Run drives Interpret over the top of the stream stack to completion.
// Hosts embedding the VM in a CLI typically push a bootstrap stream, call
// Run, then push each further input stream (a file, then stdin) and call
// Run again.
func (vm *VM) Run() {
	vm.quit = false
	vm.Interpret()
}
