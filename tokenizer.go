package corevm

import (
	"strconv"

	"github.com/combforth/corevm/internal/runeio"
)

// maxTokenLen is the largest token the tokenizer will extract in one call.
// Bytes scanned past this bound are discarded and latch FlagCompileError
// rather than growing the token.
const maxTokenLen = 1023

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// topStream returns the stream at the top of the stream stack, or nil if
// empty.
func (vm *VM) topStream() *Stream {
	if len(vm.streams) == 0 {
		return nil
	}
	return vm.streams[len(vm.streams)-1]
}

// PushStream retains and pushes s onto the stream stack, returning false
// (without mutating state) if the stream stack is already at capacity.
func (vm *VM) PushStream(s *Stream) bool {
	if uint32(len(vm.streams)) >= vm.cfg.MaxFileCount {
		return false
	}
	vm.streams = append(vm.streams, s.Retain())
	return true
}

// PopStream releases and pops the top of the stream stack.
func (vm *VM) PopStream() (*Stream, bool) {
	n := len(vm.streams)
	if n == 0 {
		return nil, false
	}
	s := vm.streams[n-1]
	vm.streams = vm.streams[:n-1]
	s.Release()
	return s, true
}

// CompileString pushes an in-memory, read-only stream wrapping src as the
// new top of the stream stack, for use by hosts feeding program text
// directly rather than through a file.
func (vm *VM) CompileString(name, src string) bool {
	return vm.PushStream(MemoryFromString(name, src))
}

// nextToken scans the next maximal run of non-whitespace bytes (ASCII
// space, tab, CR, LF are the delimiters) from the stream stack. The stream
// stack's own EOS condition never halts anything by itself; it is this scan
// loop that observes EOS on the current top stream and pops it, falling
// through to the stream beneath. ok is false once the stream stack is empty
// with no token pending.
func (vm *VM) nextToken() (tok string, ok bool) {
	var buf [maxTokenLen]byte
	n := 0
	started := false
	for {
		s := vm.topStream()
		if s == nil {
			if started {
				break
			}
			return "", false
		}
		if s.IsEOS() {
			vm.PopStream()
			if started {
				break
			}
			continue
		}
		c := s.ReadChar()
		if c == '\n' {
			s.advanceLine()
		}
		if isASCIISpace(c) {
			if started {
				break
			}
			continue
		}
		started = true
		if n < len(buf) {
			buf[n] = c
			n++
		} else {
			vm.latchCompileError()
		}
	}
	return string(buf[:n]), true
}

// parseLiteral attempts to read tok as a numeric or rune literal: a leading
// digit or sign starts a decimal integer; a leading quote, caret, or '<'
// starts a rune literal (delegated to internal/runeio, which also knows the
// C0/C1 control mnemonics).
func parseLiteral(tok string) (v uint32, ok bool) {
	if tok == "" {
		return 0, false
	}
	switch tok[0] {
	case '\'', '^', '<':
		r, err := runeio.UnquoteRune(tok)
		if err != nil {
			return 0, false
		}
		return uint32(r), true
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		return uint32(int32(n)), true
	}
	if n > int64(MaxLiteral) {
		return 0, false
	}
	return uint32(n), true
}
