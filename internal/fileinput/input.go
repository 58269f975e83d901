// Package fileinput tracks source positions for diagnostics.
//
// The VM's own stream stack (see package corevm) owns stream chaining and
// EOS-driven advancement; this package only keeps the book-keeping a
// file-backed stream needs to report "name:line" in a compilation-error
// message.
package fileinput

import (
	"bytes"
	"fmt"
)

// Location names a line in an input file.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer of its in-progress content.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il Line) String() string      { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Advance rolls Scan over to Last on a line feed, bumping the line number.
func Advance(last, scan *Line) {
	last.Reset()
	last.Name = scan.Name
	last.Line = scan.Line
	last.Write(scan.Bytes())
	scan.Reset()
	scan.Line++
}
