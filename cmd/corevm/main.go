// Command corevm runs a corevm.VM loaded with the stdwords word set against
// stdin, or files named on the command line.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/combforth/corevm"
	"github.com/combforth/corevm/internal/logio"
	"github.com/combforth/corevm/internal/panicerr"
	"github.com/combforth/corevm/stdwords"
)

func main() {
	var (
		timeout    time.Duration
		trace      bool
		dump       bool
		maxValues  uint
		maxReturns uint
		maxCode    uint
	)
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable step trace logging")
	flag.BoolVar(&dump, "dump", false, "print a VM dump after execution")
	flag.UintVar(&maxValues, "max-values", 1024, "value stack capacity")
	flag.UintVar(&maxReturns, "max-returns", 256, "return stack capacity")
	flag.UintVar(&maxCode, "max-code", 1<<16, "instruction tape capacity")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	vm, err := corevm.New(corevm.Config{
		MaxFunctionCount:    1024,
		MaxInstructionCount: uint32(maxCode),
		MaxCharSegmentSize:  1 << 16,
		MaxValuesCount:      uint32(maxValues),
		MaxReturnCount:      uint32(maxReturns),
		MaxFileCount:        32,
		MaxSSCharCount:      4096,
		MaxSSStringCount:    64,
		MaxCFCount:          32,
		MaxCISCount:         4096,
	})
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	if trace {
		vm.SetLogFunc(log.Leveledf("TRACE"))
	}

	out := corevm.FromFile(os.Stdout, corevm.ModeWO)
	defer out.Release()
	vm.SetOutput(out)

	if err := stdwords.Register(vm); err != nil {
		log.Errorf("%v", err)
		return
	}

	if dump {
		lw := &logio.Writer{Logf: log.Leveledf("DUMP")}
		defer lw.Close()
		defer vm.Dump(lw)
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := flag.Args()
	if len(args) == 0 {
		runStream(ctx, &log, vm, corevm.FromFile(os.Stdin, corevm.ModeRO))
		return
	}
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		if !runStream(ctx, &log, vm, corevm.FromFile(f, corevm.ModeRO)) {
			return
		}
	}
}

// runStream pushes s onto the VM's stream stack and interprets it to
// completion or until ctx is done. Run itself executes under
// panicerr.Recover, the outer safety net for a native word's programming
// bug; the VM's own Flags register is the primary, non-panicking error
// channel for everything else.
func runStream(ctx context.Context, log *logio.Logger, vm *corevm.VM, s *corevm.Stream) bool {
	if !vm.PushStream(s) {
		log.Errorf("corevm: stream stack full")
		return false
	}
	done := make(chan error, 1)
	go func() { done <- panicerr.Recover("corevm", func() error { vm.Run(); return nil }) }()
	select {
	case err := <-done:
		if err != nil {
			log.Errorf("%v", err)
			return false
		}
	case <-ctx.Done():
		log.Errorf("corevm: %v", ctx.Err())
		return false
	}
	if err := vm.Diagnose(); err != nil {
		log.Errorf("%v", err)
		return false
	}
	return true
}
