package corevm

// stringStack is the packed character buffer plus LIFO of start offsets
// backing the string stack: each scanned token is pushed as an addressable
// string and popped once it has been resolved. Both the character buffer
// and the offset array are fixed-capacity; Push reports failure rather than
// growing either.
type stringStack struct {
	chars byteArena
	marks []uint32
}

func newStringStack(maxChars, maxStrings uint32) stringStack {
	return stringStack{
		chars: newByteArena(maxChars),
		marks: make([]uint32, 0, maxStrings),
	}
}

// Len returns the number of strings currently on the stack.
func (s *stringStack) Len() uint32 { return uint32(len(s.marks)) }

// Push appends s as the new top of the stack, returning false (without
// mutating state) if the string-count limit or character-buffer capacity
// would be exceeded.
func (s *stringStack) Push(str string) bool {
	if len(s.marks) >= cap(s.marks) {
		return false
	}
	mark := s.chars.Len()
	if _, ok := s.chars.AppendString(str); !ok {
		return false
	}
	s.marks = append(s.marks, mark)
	return true
}

// Top returns the string currently at the top of the stack, or "" if empty.
func (s *stringStack) Top() string {
	if len(s.marks) == 0 {
		return ""
	}
	return s.chars.StringAt(s.marks[len(s.marks)-1])
}

// Pop discards the top of the stack, rolling the character buffer back to
// where that string started. ok is false if the stack is empty.
func (s *stringStack) Pop() (str string, ok bool) {
	n := len(s.marks)
	if n == 0 {
		return "", false
	}
	mark := s.marks[n-1]
	str = s.chars.StringAt(mark)
	s.marks = s.marks[:n-1]
	s.chars.buf = s.chars.buf[:mark]
	return str, true
}
