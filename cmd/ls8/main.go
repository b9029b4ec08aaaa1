// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/ezrec/ls8/asm"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/program"
)

const (
	EXIT_OK        = 0 // Program halted.
	EXIT_USAGE     = 1 // Wrong arguments.
	EXIT_NOT_FOUND = 2 // Program file does not exist.
	EXIT_ERROR     = 3 // Load, assemble or runtime error.
)

// load reads a program image, or assembles source when assemble is set.
func load(path string, assemble bool, emu *emulator.Emulator) (prog *program.Program, err error) {
	if !assemble {
		prog, err = program.Open(path)
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(program.ErrProgramNotFound, err)
		}
		return
	}
	defer inf.Close()

	assembler := &asm.Assembler{Verbose: emu.Verbose, Logger: emu.Logger}
	for name, value := range emu.Defines() {
		assembler.Predefine(name, value)
	}

	prog, err = assembler.Parse(inf)
	return
}

// run executes the command line, and returns the exit status.
// Deferred cleanup has finished by the time it returns.
func run(args []string, stdout io.Writer, stderr io.Writer) (status int) {
	var verbose bool
	var assemble bool
	var output string
	var maxTicks int

	flags := flag.NewFlagSet("ls8", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&verbose, "v", false, "Verbose mode")
	flags.BoolVar(&assemble, "a", false, "Assemble mnemonic source")
	flags.StringVar(&output, "o", "", "Write the program image to this file, do not execute")
	flags.IntVar(&maxTicks, "m", emulator.DEFAULT_MAX_TICKS, "Tick budget, 0 for unlimited")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: %v [-v] [-a] [-o out] [-m ticks] program\n", flags.Name())
		flags.PrintDefaults()
	}

	logf := log.New(stderr, "ls8: ", 0)

	err := flags.Parse(args)
	if err != nil {
		status = EXIT_USAGE
		return
	}

	if flags.NArg() != 1 {
		flags.Usage()
		status = EXIT_USAGE
		return
	}
	path := flags.Arg(0)

	logger, err := internal.NewLogger(verbose)
	if err != nil {
		logf.Print(err)
		status = EXIT_ERROR
		return
	}
	defer logger.Sync()

	emu := emulator.NewEmulator(
		emulator.LoggerOpt(logger),
		emulator.TapeOpt(stdout),
		emulator.MaxTicksOpt(maxTicks),
	)
	emu.Verbose = verbose

	prog, err := load(path, assemble, emu)
	if err != nil {
		logf.Printf("%v: %v", path, err)
		status = EXIT_ERROR
		if errors.Is(err, program.ErrProgramNotFound) {
			status = EXIT_NOT_FOUND
		}
		return
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			logf.Printf("%v: %v", output, err)
			status = EXIT_ERROR
			return
		}
		_, err = prog.WriteTo(ouf)
		if err == nil {
			err = ouf.Close()
		} else {
			ouf.Close()
		}
		if err != nil {
			logf.Printf("%v: %v", output, err)
			status = EXIT_ERROR
		}
		return
	}

	err = emu.Load(prog)
	if err == nil {
		_, err = emu.Run(context.Background())
	}
	if err != nil {
		logf.Printf("%v: %v", path, err)
		status = EXIT_ERROR
		return
	}

	status = EXIT_OK
	return
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
