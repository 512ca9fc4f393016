package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aryanA101a/lulu/vm"
)

const (
	exitHalted      = 0
	exitFault       = 1
	exitLoadFailed  = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var trace bool
	var logPath string
	var entry string

	flags := flag.NewFlagSet("lc3", flag.ContinueOnError)
	flags.BoolVar(&trace, "trace", false, "Log every executed instruction")
	flags.StringVar(&logPath, "log", "", "Write logs to this file instead of stderr")
	flags.StringVar(&entry, "entry", "", "Start address in hex, overrides the first image origin")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "lc3 [image-file1] ...")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return exitUsage
	}

	logger, closeLog, err := newLogger(logPath, trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}
	defer closeLog()
	log.SetOutput(logger.Writer())

	console := vm.NewConsole(os.Stdin, os.Stdout)
	machine := vm.NewVM(console)
	if trace {
		machine.SetTrace(logger)
	}

	for _, path := range flags.Args() {
		if _, err := machine.LoadImageFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load image: %v\n", err)
			return exitLoadFailed
		}
	}

	if entry != "" {
		pc, err := strconv.ParseUint(entry, 16, 16)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad entry address %q: %v\n", entry, err)
			return exitUsage
		}
		machine.SetPC(vm.Word(pc))
	}

	if err := console.EnableRawMode(); err != nil {
		log.Printf("raw mode: %v", err)
	}
	defer console.Restore()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)
	go func() {
		<-interrupt
		console.Restore()
		fmt.Println()
		closeLog()
		os.Exit(exitInterrupted)
	}()

	if err := machine.Run(); err != nil {
		console.Restore()
		fmt.Fprintf(os.Stderr, "\n%v: %v\n", machine.State(), err)
		return exitFault
	}
	return exitHalted
}

// newLogger opens the log sink. Without -log or -trace, logs are dropped so
// they do not interleave with program output.
func newLogger(path string, trace bool) (*log.Logger, func(), error) {
	if path == "" {
		out := io.Discard
		if trace {
			out = os.Stderr
		}
		return log.New(out, "", log.Ltime|log.Lmicroseconds), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds), func() { f.Close() }, nil
}
