package corevm

import (
	"fmt"

	"github.com/combforth/corevm/internal/fileinput"
)

// DiagnosticError renders the VM's latched Flags together with an input
// position and a token, in a "name:line: message" style. Loc is the
// position recorded the last time FlagCompileError was latched (the zero
// Location if it never was). Token is empty once Interpret has returned,
// since Interpret pops each token after resolving it. It carries no
// behavior of its own; hosts format or wrap it as they see fit.
type DiagnosticError struct {
	Loc   fileinput.Location
	Flags Flag
	Token string
}

func (e *DiagnosticError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%v: %v", e.Loc, e.Flags)
	}
	return fmt.Sprintf("%v: %v: %q", e.Loc, e.Flags, e.Token)
}

// ErrorLocation reports the input position recorded the last time
// FlagCompileError was latched.
func (vm *VM) ErrorLocation() fileinput.Location { return vm.errLoc }

// Diagnose returns nil if no exception flag is latched, or a
// *DiagnosticError describing the latched flags, the position recorded by
// the last compile error (see ErrorLocation), and the token on top of the
// string stack at the time of the call: the token being resolved when
// Diagnose runs inside a word, and "" after Interpret has returned.
func (vm *VM) Diagnose() error {
	if !vm.flags.Any() {
		return nil
	}
	return &DiagnosticError{Loc: vm.errLoc, Flags: vm.flags.bits, Token: vm.CurrentToken()}
}
