// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command argcheck parses argument lists against option tables kept in
// argparse.toml or argparse.yaml files, and runs the cases recorded there.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/yeetrun/argparse/pkg/argparse"
	"github.com/yeetrun/argparse/pkg/cli"
	"github.com/yeetrun/argparse/pkg/tablefile"
	"github.com/yeetrun/argparse/pkg/tui"
	"golang.org/x/term"
	"tailscale.com/types/logger"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks errors caused by the invocation itself rather than by
// the arguments being checked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// errReported is returned by commands that already wrote their failure.
var errReported = errors.New("failure reported")

type app struct {
	stdout io.Writer
	stderr io.Writer
	color  tui.Colorizer
	logf   logger.Logf
	// interactive enables the progress line on stderr.
	interactive bool
}

func main() {
	log.SetFlags(0)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	globalArgs, cmd, rest := cli.SplitCommand(args)
	globals, err := cli.ParseGlobal(globalArgs)
	if err != nil {
		printCLIError(stderr, tui.Colorizer{}, "argcheck", globalArgs, err)
		return exitUsage
	}
	a := &app{
		stdout:      stdout,
		stderr:      stderr,
		color:       tui.NewColorizer(stderr, !globals.NoColor),
		logf:        logger.Discard,
		interactive: isTerminal(stderr),
	}
	if globals.Verbose {
		a.logf = log.New(stderr, "", 0).Printf
	}

	if cmd == "" {
		help, _ := cli.Help("")
		if globals.Help {
			fmt.Fprint(stdout, help)
			return exitOK
		}
		fmt.Fprint(stderr, help)
		return exitUsage
	}
	info, ok := cli.LookupCommand(cmd)
	if !ok {
		fmt.Fprintf(stderr, "%s unknown command %q\n", a.color.Error("error:"), cmd)
		return exitUsage
	}

	switch info.Name {
	case cli.CommandParse:
		err = a.parse(rest)
	case cli.CommandTokens:
		err = a.tokens(rest)
	case cli.CommandTable:
		err = a.table(rest)
	case cli.CommandCheck:
		err = a.check(ctx, rest)
	}
	if err != nil && !errors.Is(err, errReported) {
		printCLIError(stderr, a.color, "argcheck "+info.Name, rest, err)
	}
	return exitCode(err)
}

// printCLIError renders err, underlining the offending argument when err
// carries argparse diagnostics.
func printCLIError(w io.Writer, c tui.Colorizer, program string, args []string, err error) {
	if err == nil {
		return
	}
	var ue usageError
	if errors.As(err, &ue) {
		err = ue.err
	}
	tui.RenderDiagnostics(w, c, program, args, err)
}

// showHelp writes the help of cmd when requested.
func (a *app) showHelp(cmd string, requested bool) bool {
	if !requested {
		return false
	}
	help, err := cli.Help(cmd)
	if err != nil {
		log.Printf("help for %s: %v", cmd, err)
		return true
	}
	fmt.Fprint(a.stdout, help)
	return true
}

// loadTable loads path, or the nearest table file above the working
// directory when path is empty.
func (a *app) loadTable(path string) (*tablefile.File, *argparse.Table, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, usageError{err}
		}
		path, err = tablefile.Find(wd)
		if err != nil {
			return nil, nil, usageError{fmt.Errorf("%w (use --table)", err)}
		}
	}
	f, err := tablefile.Load(path)
	if err != nil {
		return nil, nil, usageError{err}
	}
	t, err := f.Table()
	if err != nil {
		return f, nil, usageError{fmt.Errorf("%s: %w", path, err)}
	}
	a.logf("loaded %d options from %s", t.Len(), path)
	return f, t, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.As(err, new(usageError)) {
		return exitUsage
	}
	return exitFailure
}
