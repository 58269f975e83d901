package corevm

import (
	"fmt"

	"github.com/combforth/corevm/internal/fileinput"
)

// LogFunc is an optional step-tracing hook; the VM itself never logs on its
// own behalf. It is called once per VM.Step that executes an instruction or
// an implicit return, with a trace line naming the running function, the
// instruction address, the decoded instruction, and the return and value
// stacks.
type LogFunc func(mess string, args ...interface{})

// Config enumerates the fixed capacities a VM is constructed with. All
// fields are required; zero is invalid.
type Config struct {
	MaxFunctionCount    uint32
	MaxInstructionCount uint32
	MaxCharSegmentSize  uint32

	MaxValuesCount uint32
	MaxReturnCount uint32

	MaxFileCount uint32

	MaxSSCharCount   uint32
	MaxSSStringCount uint32

	MaxCFCount  uint32
	MaxCISCount uint32
}

// Validate reports the first zero-valued required field, by name.
func (c Config) Validate() error {
	fields := []struct {
		name string
		val  uint32
	}{
		{"MaxFunctionCount", c.MaxFunctionCount},
		{"MaxInstructionCount", c.MaxInstructionCount},
		{"MaxCharSegmentSize", c.MaxCharSegmentSize},
		{"MaxValuesCount", c.MaxValuesCount},
		{"MaxReturnCount", c.MaxReturnCount},
		{"MaxFileCount", c.MaxFileCount},
		{"MaxSSCharCount", c.MaxSSCharCount},
		{"MaxSSStringCount", c.MaxSSStringCount},
		{"MaxCFCount", c.MaxCFCount},
		{"MaxCISCount", c.MaxCISCount},
	}
	for _, f := range fields {
		if f.val == 0 {
			return fmt.Errorf("corevm: %v must be non-zero", f.name)
		}
	}
	return nil
}

// frame is a saved (fp, ip) program-counter pair, pushed on call and popped
// on return.
type frame struct {
	fp FunctionID
	ip uint32
}

// returnStack is the fixed-capacity LIFO of frames backing the interpreter's
// call/return discipline.
type returnStack struct {
	buf []frame
}

func newReturnStack(capacity uint32) returnStack {
	return returnStack{buf: make([]frame, 0, capacity)}
}

func (r *returnStack) Len() uint32 { return uint32(len(r.buf)) }
func (r *returnStack) Cap() uint32 { return uint32(cap(r.buf)) }

func (r *returnStack) Push(f frame) bool {
	if len(r.buf) >= cap(r.buf) {
		return false
	}
	r.buf = append(r.buf, f)
	return true
}

func (r *returnStack) Pop() (frame, bool) {
	n := len(r.buf)
	if n == 0 {
		return frame{}, false
	}
	f := r.buf[n-1]
	r.buf = r.buf[:n-1]
	return f, true
}

// VM is a single stack-oriented virtual machine instance: the bytecode
// interpreter, compiler/tokenizer, dictionary, and input stream stack,
// wired together over a set of fixed-capacity arenas.
//
// VM is not safe for concurrent use.
type VM struct {
	cfg   Config
	flags Flags

	dict dictionary
	code intArena

	values  stackArena
	returns returnStack

	streams []*Stream

	strs stringStack

	scratch intArena
	cfs     []compilerFrame
	mode    compileMode

	// aux is a small auxiliary stack of index/limit pairs backing stdwords'
	// do/loop/i/j; the CORE itself never reads or writes it.
	aux stackArena

	outStream *Stream

	fp   FunctionID
	ip   uint32
	quit bool

	logFn LogFunc

	errLoc fileinput.Location
}

// New constructs a VM from cfg, or returns an error if cfg is invalid.
func New(cfg Config) (*VM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vm := &VM{
		cfg:     cfg,
		dict:    newDictionary(cfg.MaxFunctionCount, cfg.MaxCharSegmentSize),
		code:    newIntArena(cfg.MaxInstructionCount),
		values:  newStackArena(cfg.MaxValuesCount),
		returns: newReturnStack(cfg.MaxReturnCount),
		strs:    newStringStack(cfg.MaxSSCharCount, cfg.MaxSSStringCount),
		scratch: newIntArena(cfg.MaxCISCount),
		aux:     newStackArena(cfg.MaxReturnCount),
		quit:    true,
	}
	return vm, nil
}

// Release releases any streams still on the stream stack and empties the
// stream stack.
func (vm *VM) Release() {
	for i := len(vm.streams) - 1; i >= 0; i-- {
		vm.streams[i].Release()
	}
	vm.streams = nil
}

// Flags returns the current latched exception-bit register.
func (vm *VM) Flags() Flags { return vm.flags }

// ClearFlags unlatches every exception bit, allowing subsequent operations
// to proceed. Recovery is the host's responsibility.
func (vm *VM) ClearFlags() { vm.flags.ClearAll() }

// SetLogFunc installs (or, with nil, removes) a step-tracing hook.
func (vm *VM) SetLogFunc(fn LogFunc) { vm.logFn = fn }

func (vm *VM) logf(mess string, args ...interface{}) {
	if vm.logFn != nil {
		vm.logFn(mess, args...)
	}
}

// FindFunction returns the most recently defined record named name, or 0 if
// none matches.
func (vm *VM) FindFunction(name string) FunctionID { return vm.dict.FindFunction(name) }

// FunctionAt returns the dictionary record named by id.
func (vm *VM) FunctionAt(id FunctionID) (Function, bool) { return vm.dict.At(id) }

// FunctionName returns the interned name of the record named by id.
func (vm *VM) FunctionName(id FunctionID) string { return vm.dict.Name(id) }

// AddNativeFunction installs a native word into the dictionary. It is a
// no-op returning (0, false) if any exception flag is already
// latched, or if the function table/character segment has no room (in
// which case the corresponding overflow flag is latched).
func (vm *VM) AddNativeFunction(name string, isImmediate bool, fn NativeFunc, inArity, outArity uint32) (FunctionID, bool) {
	if vm.flags.Any() {
		return 0, false
	}
	id, ok := vm.dict.addNativeFunction(name, isImmediate, fn, inArity, outArity)
	if !ok {
		vm.latchDictionaryOverflow()
	}
	return id, ok
}

func (vm *VM) latchDictionaryOverflow() {
	if vm.dict.Len() >= vm.cfg.MaxFunctionCount {
		vm.flags.Set(FlagFunctionTableOverflow)
	} else {
		vm.flags.Set(FlagCharSegmentOverflow)
	}
}

// PushValue pushes v onto the value stack, latching FlagValueStackOverflow
// on failure.
func (vm *VM) PushValue(v uint32) {
	if vm.flags.Any() {
		return
	}
	if !vm.values.Push(v) {
		vm.flags.Set(FlagValueStackOverflow)
	}
}

// PopValue pops the top of the value stack, latching FlagValueStackUnderflow
// (and returning 0) on an empty stack.
func (vm *VM) PopValue() uint32 {
	if vm.flags.Any() {
		return 0
	}
	v, ok := vm.values.Pop()
	if !ok {
		vm.flags.Set(FlagValueStackUnderflow)
		return 0
	}
	return v
}

// ValueStackTop returns the value currently on top of the value stack
// without popping it, and false if the stack is empty.
func (vm *VM) ValueStackTop() (uint32, bool) { return vm.values.Peek(0) }

// ValueStackPeek returns the value i cells down from the top of the value
// stack without popping, and false if i is out of range.
func (vm *VM) ValueStackPeek(i uint32) (uint32, bool) { return vm.values.Peek(i) }

// LastDefinedID returns the id of the most recently added dictionary
// record, or 0 if the dictionary is empty.
func (vm *VM) LastDefinedID() FunctionID { return FunctionID(vm.dict.Len()) }

// ReadInputChar reads one raw byte directly from the stream stack, popping
// exhausted streams exactly like nextToken but without skipping whitespace
// or assembling a token (the raw single-character read behind "key"). ok is
// false once the stream stack is empty.
func (vm *VM) ReadInputChar() (byte, bool) {
	for {
		s := vm.topStream()
		if s == nil {
			return 0, false
		}
		if s.IsEOS() {
			vm.PopStream()
			continue
		}
		c := s.ReadChar()
		if c == '\n' {
			s.advanceLine()
		}
		return c, true
	}
}

// ValueStackHeight returns the current value-stack depth.
func (vm *VM) ValueStackHeight() uint32 { return vm.values.Len() }

// ValueStack returns a bottom-to-top snapshot of the value stack.
func (vm *VM) ValueStack() []uint32 { return vm.values.Values() }

// ReturnStackHeight returns the current return-stack depth.
func (vm *VM) ReturnStackHeight() uint32 { return vm.returns.Len() }

// PC returns the current program counter (fp, ip).
func (vm *VM) PC() (FunctionID, uint32) { return vm.fp, vm.ip }

// Quit reports whether the interpreter has reached the idle state.
func (vm *VM) Quit() bool { return vm.quit }

// MarkImmediate marks id as an immediate word, run at compile time rather
// than compiled into the enclosing definition.
func (vm *VM) MarkImmediate(id FunctionID) { vm.dict.markImmediate(id) }

// SetOutput installs s as the destination for "echo"/"." style output
// words, returning the previously installed stream (nil if none).
func (vm *VM) SetOutput(s *Stream) *Stream {
	old := vm.outStream
	vm.outStream = s
	return old
}

// Output returns the currently installed output stream, or nil.
func (vm *VM) Output() *Stream { return vm.outStream }

// PushAux pushes v onto the auxiliary stack, returning false on overflow.
func (vm *VM) PushAux(v uint32) bool { return vm.aux.Push(v) }

// PopAux pops the auxiliary stack, returning ok=false on underflow.
func (vm *VM) PopAux() (uint32, bool) { return vm.aux.Pop() }

// PeekAux reads i cells down from the top of the auxiliary stack without
// popping, returning ok=false if i is out of range.
func (vm *VM) PeekAux(i uint32) (uint32, bool) { return vm.aux.Peek(i) }
