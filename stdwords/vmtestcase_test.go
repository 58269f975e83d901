package stdwords_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/combforth/corevm"
	"github.com/combforth/corevm/stdwords"
)

//go:generate go run ../scripts/gen_vmtest_expects.go -- vmtestcase_test.go vmtestcase_generated_test.go

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

// vmTestCase is a fluent builder for one end-to-end program run: compile
// input against a freshly registered stdwords VM, interpret it to
// completion, and check the resulting output and/or error state.
type vmTestCase struct {
	name    string
	input   string
	wantOut string
	wantErr bool
}

func (vmt vmTestCase) withInput(source string) vmTestCase {
	vmt.input = source
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	vmt.wantOut = output
	return vmt
}

func (vmt vmTestCase) expectAnError(want bool) vmTestCase {
	vmt.wantErr = want
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	vm, err := corevm.New(corevm.Config{
		MaxFunctionCount:    256,
		MaxInstructionCount: 1 << 14,
		MaxCharSegmentSize:  1 << 14,
		MaxValuesCount:      128,
		MaxReturnCount:      64,
		MaxFileCount:        8,
		MaxSSCharCount:      2048,
		MaxSSStringCount:    32,
		MaxCFCount:          16,
		MaxCISCount:         2048,
	})
	require.NoError(t, err)

	out := corevm.Memory(256)
	vm.SetOutput(out)
	require.NoError(t, stdwords.Register(vm))

	require.True(t, vm.CompileString(vmt.name, vmt.input), "no room to push input stream")
	vm.Interpret()

	if vmt.wantErr {
		assert.Error(t, vm.Diagnose())
		return
	}
	require.NoError(t, vm.Diagnose())

	out.SetPos(0)
	var buf []byte
	for !out.IsEOS() {
		buf = append(buf, out.ReadChar())
	}
	assert.Equal(t, vmt.wantOut, string(buf))
}

func Test_stdwords(t *testing.T) {
	var testCases vmTestCases

	testCases = append(testCases,
		vmTest("add").withInput("2 3 + .").expectOutput("5 "),
		vmTest("sub").withInput("9 4 - .").expectOutput("5 "),
		vmTest("mul").withInput("6 7 * .").expectOutput("42 "),
		vmTest("div").withInput("20 4 / .").expectOutput("5 "),
		vmTest("mod").withInput("20 6 mod .").expectOutput("2 "),

		vmTest("comparisons").withInput("3 4 < . 4 3 < . 3 3 = .").expectOutput("1 0 1 "),

		vmTest("dup duplicates the top of stack").
			withInput("1 2 3 dup . . . .").
			expectOutput("3 3 2 1 "),

		vmTest("swap exchanges the top two").withInput("1 2 swap . .").expectOutput("1 2 "),
		vmTest("over copies the second to top").withInput("1 2 over . . .").expectOutput("1 2 1 "),
		vmTest("drop discards the top").withInput("1 2 drop .").expectOutput("1 "),

		vmTest("colon definition").withInput(": sq dup * ; 7 sq .").expectOutput("49 "),

		vmTest("redefinition shadows").
			withInput(": greet 1 ; : greet 2 ; greet .").
			expectOutput("2 "),

		vmTest("if-else-then true branch").
			withInput(": pick1 if 11 else 22 then ; 1 pick1 .").
			expectOutput("11 "),
		vmTest("if-else-then false branch").
			withInput(": pick1 if 11 else 22 then ; 0 pick1 .").
			expectOutput("22 "),

		vmTest("do-loop with i").
			withInput(": count 5 0 do i . loop ; count").
			expectOutput("0 1 2 3 4 "),

		vmTest("nested do-loop with i and j").
			withInput(": pairs 2 0 do 2 0 do j . i . loop loop ; pairs").
			expectOutput("0 0 0 1 1 0 1 1 "),

		vmTest("comment is skipped").
			withInput("2 ( this is ignored ) 3 + .").
			expectOutput("5 "),

		vmTest("bootstrap words").
			withInput("-3 abs . 3 9 min . 3 9 max . 4 square .").
			expectOutput("3 3 9 16 "),

		vmTest("unknown word latches an error").
			withInput("not-a-real-word").
			expectAnError(true),
	)

	testCases.run(t)
}
