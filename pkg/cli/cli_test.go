// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yeetrun/argparse/pkg/argparse"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		args        []string
		wantGlobals []string
		wantCmd     string
		wantRest    []string
	}{
		{[]string{"--no-color", "-v", "parse", "--", "-x"}, []string{"--no-color", "-v"}, "parse", []string{"--", "-x"}},
		{[]string{"check"}, []string{}, "check", []string{}},
		{[]string{"-h"}, []string{"-h"}, "", nil},
		{[]string{"--", "parse"}, []string{}, "", []string{"parse"}},
	}
	for _, tt := range tests {
		globals, cmd, rest := SplitCommand(tt.args)
		if !reflect.DeepEqual(globals, tt.wantGlobals) || cmd != tt.wantCmd || !reflect.DeepEqual(rest, tt.wantRest) {
			t.Errorf("SplitCommand(%q) = %q, %q, %q; want %q, %q, %q", tt.args, globals, cmd, rest, tt.wantGlobals, tt.wantCmd, tt.wantRest)
		}
	}
}

func TestParseGlobal(t *testing.T) {
	flags, err := ParseGlobal([]string{"--no-color", "-v"})
	if err != nil {
		t.Fatalf("ParseGlobal failed: %v", err)
	}
	if !flags.NoColor || !flags.Verbose || flags.Help {
		t.Errorf("flags = %+v", flags)
	}
	if _, err := ParseGlobal([]string{"--colour"}); !errors.Is(err, argparse.UnknownOption) {
		t.Errorf("ParseGlobal(--colour) error = %v, want UnknownOption", err)
	}
}

func TestParseParseFlagsAndArgs(t *testing.T) {
	args := []string{
		"--table", "cli.yaml",
		"-f", "json",
		"--collect-all",
		"--allow-unknown",
		"--", "-c", "abc", "--", "x",
	}

	flags, outArgs, err := ParseParse(args)
	if err != nil {
		t.Fatalf("ParseParse failed: %v", err)
	}
	if flags.Table != "cli.yaml" {
		t.Errorf("Table = %q, want %q", flags.Table, "cli.yaml")
	}
	if flags.Format != "json" {
		t.Errorf("Format = %q, want %q", flags.Format, "json")
	}
	if !flags.CollectAll || !flags.AllowUnknown {
		t.Errorf("CollectAll, AllowUnknown = %v, %v; want true, true", flags.CollectAll, flags.AllowUnknown)
	}
	if got := strings.Join(outArgs, " "); got != "-c abc -- x" {
		t.Errorf("args = %q, want %q", got, "-c abc -- x")
	}
}

func TestParseParseDefaults(t *testing.T) {
	flags, outArgs, err := ParseParse(nil)
	if err != nil {
		t.Fatalf("ParseParse failed: %v", err)
	}
	want := ParseFlags{Format: "text"}
	if flags != want {
		t.Errorf("flags = %+v, want %+v", flags, want)
	}
	if outArgs == nil || len(outArgs) != 0 {
		t.Errorf("args = %#v, want empty", outArgs)
	}
}

func TestParseParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad format", []string{"--format", "xml"}, argparse.InvalidValue},
		{"empty table", []string{"--table="}, argparse.InvalidValue},
		{"unknown flag", []string{"-c", "abc"}, argparse.UnknownOption},
		{"missing value", []string{"--table"}, argparse.MissingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseParse(tt.args)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseParse(%q) error = %v, want %v", tt.args, err, tt.want)
			}
		})
	}

	_, _, err := ParseParse([]string{"stray", "--", "-v"})
	if err == nil || !strings.Contains(err.Error(), "takes no arguments") {
		t.Errorf("ParseParse(stray) error = %v, want takes no arguments", err)
	}
}

func TestParseTokens(t *testing.T) {
	flags, outArgs, err := ParseTokens([]string{"-t", "a.toml", "--", "--x=1"})
	if err != nil {
		t.Fatalf("ParseTokens failed: %v", err)
	}
	if flags.Table != "a.toml" {
		t.Errorf("Table = %q, want a.toml", flags.Table)
	}
	if !reflect.DeepEqual(outArgs, []string{"--x=1"}) {
		t.Errorf("args = %q, want [--x=1]", outArgs)
	}
}

func TestParseTableAndCheck(t *testing.T) {
	tf, err := ParseTable([]string{"--format=toml"})
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	if tf.Format != "toml" || tf.Table != "" {
		t.Errorf("table flags = %+v", tf)
	}

	cf, err := ParseCheck([]string{"-j", "4", "--table", "x.yml"})
	if err != nil {
		t.Fatalf("ParseCheck failed: %v", err)
	}
	if cf.Jobs != 4 || cf.Table != "x.yml" || cf.Format != "text" {
		t.Errorf("check flags = %+v", cf)
	}
	if _, err := ParseCheck([]string{"--jobs=-1"}); err == nil {
		t.Error("ParseCheck(--jobs=-1) succeeded")
	}
	if _, err := ParseCheck([]string{"--jobs=many"}); !errors.Is(err, argparse.InvalidValue) {
		t.Errorf("ParseCheck(--jobs=many) error = %v, want InvalidValue", err)
	}
	if _, err := ParseCheck([]string{"extra"}); err == nil {
		t.Error("ParseCheck(extra) succeeded")
	}
}

func TestLookupCommand(t *testing.T) {
	for _, name := range []string{"parse", "p", "tokens", "tok", "table", "check"} {
		if _, ok := LookupCommand(name); !ok {
			t.Errorf("LookupCommand(%q) not found", name)
		}
	}
	if _, ok := LookupCommand("nope"); ok {
		t.Error("LookupCommand(nope) found")
	}
	want := []string{"check", "parse", "table", "tokens"}
	if got := CommandNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("CommandNames() = %v, want %v", got, want)
	}
}

func TestFlagTables(t *testing.T) {
	for _, name := range append([]string{""}, CommandNames()...) {
		if _, err := FlagTable(name); err != nil {
			t.Errorf("FlagTable(%q) error = %v", name, err)
		}
	}
	if _, err := FlagTable("nope"); err == nil {
		t.Error("FlagTable(nope) succeeded")
	}
}

func TestHelp(t *testing.T) {
	top, err := Help("")
	if err != nil {
		t.Fatalf("Help() error = %v", err)
	}
	for _, want := range []string{"Usage: argcheck [options] <command> [flags]", "  check", "-v/--verbose", "--no-color"} {
		if !strings.Contains(top, want) {
			t.Errorf("Help() missing %q:\n%s", want, top)
		}
	}

	parse, err := Help("p")
	if err != nil {
		t.Fatalf("Help(p) error = %v", err)
	}
	for _, want := range []string{
		"Usage: argcheck parse [--table=FILE]",
		"Aliases: p",
		"-t/--table=PATH",
		"-f/--format=CHOICE",
		"(text|json|yaml)",
		"argcheck parse --collect-all -- -c abc --nope",
	} {
		if !strings.Contains(parse, want) {
			t.Errorf("Help(p) missing %q:\n%s", want, parse)
		}
	}
}
