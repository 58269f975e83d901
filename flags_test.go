package corevm

import "testing"

func TestFlagsLatchAndClear(t *testing.T) {
	var fl Flags
	if fl.Any() {
		t.Fatalf("fresh Flags should report Any() == false")
	}
	fl.Set(FlagValueStackOverflow)
	if !fl.Any() || !fl.Has(FlagValueStackOverflow) {
		t.Fatalf("expected FlagValueStackOverflow to be latched")
	}
	fl.Set(FlagValueStackOverflow)
	if got := fl.String(); got != "value-stack overflow" {
		t.Fatalf("String() = %q, want %q", got, "value-stack overflow")
	}
	fl.ClearAll()
	if fl.Any() {
		t.Fatalf("expected ClearAll to unlatch every bit")
	}
}

func TestFlagsStringJoinsMultiple(t *testing.T) {
	var fl Flags
	fl.Set(FlagValueStackOverflow)
	fl.Set(FlagReturnStackUnderflow)
	got := fl.String()
	want := "value-stack overflow|return-stack underflow"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFlagsBool(t *testing.T) {
	var fl Flags
	if fl.Bool() {
		t.Fatalf("fresh Flags.Bool() should be false")
	}
	fl.SetBool(true)
	if !fl.Bool() {
		t.Fatalf("expected Bool() true after SetBool(true)")
	}
	fl.ClearAll()
	if !fl.Bool() {
		t.Fatalf("ClearAll must not touch the bf flag")
	}
}
