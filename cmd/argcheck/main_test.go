// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argparse/pkg/tablefile"
)

const testTable = `
[[option]]
name = "count"
aliases = ["c"]
kind = "integer"
default = 1
help = "How many"

[[option]]
name = "verbose"
aliases = ["v"]
repeatable = true

[[option]]
name = "mode"
choices = ["fast", "slow"]

[[option]]
name = "tag"
arity = "many"

[[case]]
name = "count"
args = ["-c", "5", "x"]
positionals = ["x"]
values = { count = ["5"] }

[[case]]
name = "bad count"
args = ["--count", "abc"]
error = "invalid-value"
`

func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runArgs(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = run(context.Background(), args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestParseText(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, out, errOut := runArgs(t, "--no-color", "parse", "--table", table, "--", "-vv", "--mode", "fast", "file.txt")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{"count", "(default)", "verbose", "(x2)", `"fast"`, `"file.txt"`} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "tag") {
		t.Errorf("stdout lists absent option tag:\n%s", out)
	}
}

func TestParseJSON(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, out, errOut := runArgs(t, "parse", "-t", table, "-f", "json", "--", "-c", "3", "--tag", "a", "b", "--", "-x")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	var got parseReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	want := parseReport{
		OK: true,
		Options: map[string]any{
			"count":   float64(3),
			"verbose": false,
			"tag":     []any{"a", "b"},
		},
		Present:     []string{"count", "tag"},
		Positionals: []string{"-x"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFailure(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, _, errOut := runArgs(t, "--no-color", "parse", "-t", table, "--", "-c", "abc")
	if code != exitFailure {
		t.Fatalf("exit = %d, want %d", code, exitFailure)
	}
	for _, want := range []string{"error: invalid-value at token 1", "  $ -c abc", "^^^"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}

	code, out, errOut := runArgs(t, "--no-color", "parse", "-t", table, "-f", "yaml", "--collect-all", "--", "--nope", "--mode", "medium")
	if code != exitFailure {
		t.Fatalf("collect-all exit = %d, want %d", code, exitFailure)
	}
	if got := strings.Count(errOut, "error:"); got != 2 {
		t.Errorf("stderr has %d diagnostics, want 2:\n%s", got, errOut)
	}
	for _, want := range []string{"ok: false", "kind: unknown-option", "kind: invalid-value"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestParseAllowUnknown(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, out, errOut := runArgs(t, "parse", "-t", table, "--allow-unknown", "--format=json", "--", "--nope", "-c", "2")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	var got parseReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"--nope"}, got.Positionals); diff != "" {
		t.Errorf("positionals mismatch (-want +got):\n%s", diff)
	}
}

func TestUsageErrors(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"--no-color", "frobnicate"}, `unknown command "frobnicate"`},
		{"unknown global", []string{"--bogus"}, "unknown-option"},
		{"bad format", []string{"--no-color", "parse", "-t", table, "-f", "xml"}, "invalid-value"},
		{"stray argument", []string{"--no-color", "table", "-t", table, "extra"}, "takes no arguments"},
		{"missing file", []string{"--no-color", "table", "-t", filepath.Join(t.TempDir(), "nope.toml")}, "no such file"},
		{"conflicting table", []string{"--no-color", "table", "-t", writeTable(t, "argparse.yaml", "options:\n  - name: a\n  - name: a\n")}, "table-conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runArgs(t, tt.args...)
			if code != exitUsage {
				t.Errorf("exit = %d, want %d", code, exitUsage)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, errOut)
			}
		})
	}
}

func TestTableDiscovery(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "argparse.yaml"), []byte("options:\n  - name: verbose\n    aliases: [v]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	code, out, errOut := runArgs(t, "--no-color", "parse", "--", "-v")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "verbose") {
		t.Errorf("stdout = %q, want verbose", out)
	}

	t.Chdir(t.TempDir())
	code, _, errOut = runArgs(t, "--no-color", "parse", "--", "-v")
	if code != exitUsage || !strings.Contains(errOut, "use --table") {
		t.Errorf("exit = %d, stderr = %q; want %d and a hint", code, errOut, exitUsage)
	}
}

func TestTokens(t *testing.T) {
	code, out, _ := runArgs(t, "tokens", "--", "-vc=5", "--name", "value", "-5", "--", "-x")
	if code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	for i, want := range []string{"short", "long", "positional", "positional", "terminator", "positional"} {
		if f := strings.Fields(lines[i]); len(f) < 2 || f[1] != want {
			t.Errorf("line %d = %q, want type %s", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[0], `-v -c ="5"`) {
		t.Errorf("line 0 = %q, want aliases and inline value", lines[0])
	}

	table := writeTable(t, "argparse.toml", "[[option]]\nname = \"five\"\naliases = [\"5\"]\n")
	code, out, _ = runArgs(t, "tokens", "-t", table, "--", "-5")
	if code != exitOK || !strings.Contains(out, "short") {
		t.Errorf("with digit alias: exit = %d, stdout = %q; want a short token", code, out)
	}
}

func TestTableCommand(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, out, errOut := runArgs(t, "table", "-t", table)
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{"Usage: prog [options]", "OPTION", "-c/--count", "choice(fast|slow)", "How many"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}

	code, out, errOut = runArgs(t, "table", "-t", table, "--format", "yaml")
	if code != exitOK {
		t.Fatalf("yaml exit = %d, stderr:\n%s", code, errOut)
	}
	f, err := tablefile.Decode(strings.NewReader(out), tablefile.FormatYAML)
	if err != nil {
		t.Fatalf("re-decoding yaml output: %v\n%s", err, out)
	}
	if len(f.Options) != 4 {
		t.Errorf("re-decoded %d options, want 4", len(f.Options))
	}
	if _, err := f.Table(); err != nil {
		t.Errorf("re-decoded table: %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, out, errOut := runArgs(t, "--no-color", "check", "-t", table, "-j", "2")
	if code != exitOK {
		t.Fatalf("exit = %d, stdout:\n%s\nstderr:\n%s", code, out, errOut)
	}
	for _, want := range []string{"PASS count", "PASS bad count", "2 passed, 0 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}

	failing := writeTable(t, "argparse.toml", testTable+`
[[case]]
name = "wrong"
args = ["--mode", "fast"]
error = "unknown-option"
`)
	code, out, _ = runArgs(t, "check", "-t", failing, "-f", "json")
	if code != exitFailure {
		t.Fatalf("exit = %d, want %d", code, exitFailure)
	}
	var rep checkReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Passed != 2 || rep.Failed != 1 || rep.Cases[2].Name != "wrong" || rep.Cases[2].Passed {
		t.Errorf("report = %+v", rep)
	}

	empty := writeTable(t, "argparse.toml", "[[option]]\nname = \"v\"\n")
	if code, _, errOut := runArgs(t, "--no-color", "check", "-t", empty); code != exitOK || !strings.Contains(errOut, "no cases") {
		t.Errorf("empty: exit = %d, stderr = %q", code, errOut)
	}
}

func TestHelp(t *testing.T) {
	code, out, _ := runArgs(t, "-h")
	if code != exitOK || !strings.Contains(out, "Usage: argcheck") {
		t.Errorf("-h: exit = %d, stdout = %q", code, out)
	}
	code, _, errOut := runArgs(t)
	if code != exitUsage || !strings.Contains(errOut, "Commands:") {
		t.Errorf("no args: exit = %d, stderr = %q", code, errOut)
	}
	code, out, _ = runArgs(t, "p", "--help")
	if code != exitOK || !strings.Contains(out, "Usage: argcheck parse") {
		t.Errorf("p --help: exit = %d, stdout = %q", code, out)
	}
}

func TestVerbose(t *testing.T) {
	table := writeTable(t, "argparse.toml", testTable)
	code, _, errOut := runArgs(t, "--no-color", "-v", "parse", "-t", table, "--", "-c", "2")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, "loaded 4 options") {
		t.Errorf("stderr missing load trace:\n%s", errOut)
	}
}
