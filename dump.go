package corevm

import (
	"fmt"
	"io"
)

// Dump writes a human-readable snapshot of the VM's stacks and dictionary
// to w: one section per register, one line per dictionary word
// disassembling its code range.
func (vm *VM) Dump(w io.Writer) {
	fmt.Fprintf(w, "# VM Dump\n")
	fmt.Fprintf(w, "  flags: %v\n", vm.flags)
	fmt.Fprintf(w, "  pc: fp=%v ip=%v quit=%v\n", vm.fp, vm.ip, vm.quit)
	fmt.Fprintf(w, "  values: %v\n", vm.values.Values())

	fmt.Fprintf(w, "  returns:\n")
	for i, f := range vm.returns.buf {
		fmt.Fprintf(w, "    [%v] fp=%v ip=%v\n", i, f.fp, f.ip)
	}

	fmt.Fprintf(w, "  streams:\n")
	for i, s := range vm.streams {
		fmt.Fprintf(w, "    [%v] %v mode=%v pos=%v/%v refs=%v\n", i, s.Location(), s.Mode, s.Pos(), s.Size(), s.RefCount())
	}

	fmt.Fprintf(w, "  dict:\n")
	n := vm.dict.Len()
	for id := FunctionID(1); id <= FunctionID(n); id++ {
		fn, _ := vm.dict.At(id)
		vm.dumpWord(w, id, fn)
	}
}

func (vm *VM) dumpWord(w io.Writer, id FunctionID, fn Function) {
	name := vm.dict.Name(id)
	switch fn.Kind {
	case Native:
		fmt.Fprintf(w, "    %v: %v native", id, name)
	default:
		fmt.Fprintf(w, "    %v: %v", id, name)
	}
	if fn.IsImmediate {
		fmt.Fprintf(w, " immediate")
	}
	if fn.Kind == Native {
		fmt.Fprintf(w, "\n")
		return
	}
	fmt.Fprintf(w, " @%v+%v\n", fn.CodeOffset, fn.CodeCount)
	for i := uint32(0); i < fn.CodeCount; i++ {
		op := Opcode(vm.code.At(fn.CodeOffset + i))
		addr := fn.CodeOffset + i
		if op.IsCall() {
			fmt.Fprintf(w, "      @%v call %v %q\n", addr, op.FunctionID(), vm.dict.Name(op.FunctionID()))
		} else {
			fmt.Fprintf(w, "      @%v value %v\n", addr, op.Operand())
		}
	}
}
