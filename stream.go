package corevm

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/combforth/corevm/internal/fileinput"
	"github.com/combforth/corevm/internal/flushio"
)

// StreamMode restricts what a Stream may be used for.
type StreamMode uint8

const (
	// ModeRO permits reads only; writes are rejected.
	ModeRO StreamMode = iota
	// ModeWO permits writes only; reads are rejected.
	ModeWO
	// ModeRW permits both reads and writes.
	ModeRW
)

func (m StreamMode) String() string {
	switch m {
	case ModeRO:
		return "ro"
	case ModeWO:
		return "wo"
	case ModeRW:
		return "rw"
	default:
		return "invalid"
	}
}

// Stream is a shared-ownership input or output byte source. The refCount
// is the only atomic field, so that an external holder (e.g. a native word
// implemented outside the core VM package) may retain a reference from
// another goroutine while the VM itself only ever touches a Stream from
// its owning thread.
type Stream struct {
	Mode StreamMode

	refCount int32

	file   *os.File
	closeF bool // close file on refcount 0 (false for fromFile-wrapped handles)
	out    flushio.WriteFlusher

	mem    []byte
	memPos int
	memCap int

	// peeked holds a byte already pulled off a file handle by IsEOS, for a
	// non-seekable handle (pipe, FIFO, TTY, socket) where the only way to
	// look ahead is to read it and hand it back on the next ReadChar.
	peeked    byte
	hasPeeked bool

	loc fileinput.Location
}

// OpenFile opens path with the given mode and wraps it as a file-backed
// Stream with an initial refcount of 1.
func OpenFile(path string, mode StreamMode) (*Stream, error) {
	flag := os.O_RDONLY
	switch mode {
	case ModeWO:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeRW:
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}
	s := &Stream{Mode: mode, refCount: 1, file: f, closeF: true, loc: fileinput.Location{Name: path, Line: 1}}
	if mode != ModeRO {
		s.out = flushio.NewWriteFlusher(f)
	}
	return s, nil
}

// FromFile wraps an already-open file handle as a Stream without taking
// ownership of closing it, with an initial refcount of 1.
func FromFile(f *os.File, mode StreamMode) *Stream {
	s := &Stream{Mode: mode, refCount: 1, file: f, loc: fileinput.Location{Name: f.Name(), Line: 1}}
	if mode != ModeRO {
		s.out = flushio.NewWriteFlusher(f)
	}
	return s
}

// Memory creates a fixed-capacity, seekable in-memory Stream with an
// initial refcount of 1.
func Memory(maxSize uint32) *Stream {
	return &Stream{
		Mode:     ModeRW,
		refCount: 1,
		mem:      make([]byte, 0, maxSize),
		memCap:   int(maxSize),
		loc:      fileinput.Location{Name: "<memory>", Line: 1},
	}
}

// MemoryFromString creates a read-only in-memory Stream pre-loaded with s,
// used by CompileString and tests.
func MemoryFromString(name, s string) *Stream {
	st := &Stream{
		Mode:     ModeRO,
		refCount: 1,
		mem:      []byte(s),
		memCap:   len(s),
		loc:      fileinput.Location{Name: name, Line: 1},
	}
	return st
}

func (s *Stream) isMemory() bool { return s.file == nil }

// Retain increments the refcount, returning the same Stream for chaining.
func (s *Stream) Retain() *Stream {
	atomic.AddInt32(&s.refCount, 1)
	return s
}

// Release decrements the refcount, closing the backing resource once it
// reaches zero.
func (s *Stream) Release() error {
	if atomic.AddInt32(&s.refCount, -1) > 0 {
		return nil
	}
	if s.out != nil {
		if err := s.out.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil && s.closeF {
		return s.file.Close()
	}
	return nil
}

// RefCount returns the current reference count.
func (s *Stream) RefCount() int32 { return atomic.LoadInt32(&s.refCount) }

// Size returns the stream's total byte length; for file streams this stats
// the underlying file, for memory streams it is the written length.
func (s *Stream) Size() uint32 {
	if s.isMemory() {
		return uint32(len(s.mem))
	}
	if fi, err := s.file.Stat(); err == nil {
		return uint32(fi.Size())
	}
	return 0
}

// Pos returns the stream's current read/write offset.
func (s *Stream) Pos() uint32 {
	if s.isMemory() {
		return uint32(s.memPos)
	}
	off, _ := s.file.Seek(0, io.SeekCurrent)
	if s.hasPeeked && off > 0 {
		off--
	}
	return uint32(off)
}

// SetPos seeks to the given offset; only memory streams are guaranteed
// seekable. File streams support at minimum sequential read or write per
// mode.
func (s *Stream) SetPos(pos uint32) {
	if s.isMemory() {
		if int(pos) > len(s.mem) {
			pos = uint32(len(s.mem))
		}
		s.memPos = int(pos)
		return
	}
	s.file.Seek(int64(pos), io.SeekStart)
}

// IsEOS reports whether the stream has no more bytes to read. A file-backed
// stream is not guaranteed seekable (a pipe, FIFO, TTY, or socket is not), so
// this cannot peek via Seek-forward-then-back: it reads one byte ahead and
// holds it in peeked for the next ReadChar to return instead of re-reading.
func (s *Stream) IsEOS() bool {
	if s.isMemory() {
		return s.memPos >= len(s.mem)
	}
	if s.hasPeeked {
		return false
	}
	var b [1]byte
	n, err := s.file.Read(b[:])
	if n == 0 || err != nil {
		return true
	}
	s.peeked = b[0]
	s.hasPeeked = true
	return false
}

// ReadChar reads a single byte, returning 0 if the stream is write-only or
// at EOS. The violation sets no flag; it simply yields a sentinel read of
// 0.
func (s *Stream) ReadChar() byte {
	if s.Mode == ModeWO {
		return 0
	}
	if s.isMemory() {
		if s.memPos >= len(s.mem) {
			return 0
		}
		b := s.mem[s.memPos]
		s.memPos++
		return b
	}
	if s.hasPeeked {
		s.hasPeeked = false
		return s.peeked
	}
	var b [1]byte
	if n, _ := s.file.Read(b[:]); n == 0 {
		return 0
	}
	return b[0]
}

// WriteChar writes a single byte, a no-op if the stream is read-only or (for
// a fixed-capacity memory stream) already full.
func (s *Stream) WriteChar(c byte) {
	if s.Mode == ModeRO {
		return
	}
	if s.isMemory() {
		if len(s.mem) >= s.memCap {
			return
		}
		s.mem = append(s.mem, c)
		s.memPos = len(s.mem)
		return
	}
	if s.out != nil {
		s.out.Write([]byte{c})
	}
}

// Location reports the file-diagnostic position the stream has scanned to
// so far (line tracking only; not advanced by raw ReadChar, only by the
// tokenizer's line-aware reads).
func (s *Stream) Location() fileinput.Location { return s.loc }

func (s *Stream) advanceLine() { s.loc.Line++ }
