// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yeetrun/argparse/pkg/argparse"
)

func TestNewColorizer(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "")
	if c := NewColorizer(nil, false); c.Enabled {
		t.Error("NewColorizer(false) enabled")
	}
	if c := NewColorizer(nil, true); !c.Enabled {
		t.Error("NewColorizer(true) disabled on a color terminal")
	}
	if c := NewColorizer(&bytes.Buffer{}, true); !c.Enabled {
		t.Error("NewColorizer(buffer) disabled; only *os.File is checked")
	}

	t.Setenv("NO_COLOR", "1")
	if c := NewColorizer(nil, true); c.Enabled {
		t.Error("NewColorizer enabled with NO_COLOR set")
	}
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if c := NewColorizer(nil, true); c.Enabled {
		t.Error("NewColorizer enabled with TERM=dumb")
	}
}

func TestColorizerPaint(t *testing.T) {
	if got := (Colorizer{}).Error("x"); got != "x" {
		t.Errorf("disabled Error() = %q, want x", got)
	}
	got := Colorizer{Enabled: true}.OK("ok")
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "ok") {
		t.Errorf("enabled OK() = %q, want escape codes", got)
	}
}

func TestRenderDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  *argparse.Error
		want string
	}{
		{
			name: "points at value",
			args: []string{"-c", "abc"},
			err:  &argparse.Error{Kind: argparse.InvalidValue, Index: 1, Raw: "abc", Alias: "-c", ValueKind: argparse.KindInt, Value: "abc"},
			want: "error: invalid-value at token 1 (\"abc\"): invalid integer value \"abc\" for -c\n" +
				"  $ prog -c abc\n" +
				"            ^^^\n",
		},
		{
			name: "quoted argument",
			args: []string{"a b", "--nope"},
			err:  &argparse.Error{Kind: argparse.UnknownOption, Index: 1, Raw: "--nope", Alias: "--nope"},
			want: "error: unknown-option at token 1 (\"--nope\"): unknown option --nope\n" +
				"  $ prog \"a b\" --nope\n" +
				"               ^^^^^^\n",
		},
		{
			name: "empty argument",
			args: []string{"--name", ""},
			err:  &argparse.Error{Kind: argparse.InvalidValue, Index: 1, Alias: "--name", ValueKind: argparse.KindString, Msg: "empty"},
			want: "error: invalid-value at token 1 (\"\"): empty\n" +
				"  $ prog --name \"\"\n" +
				"                ^^\n",
		},
		{
			name: "no position",
			args: []string{"-v"},
			err:  &argparse.Error{Kind: argparse.MissingRequiredOption, Index: argparse.NoIndex, Option: "mode"},
			want: "error: missing-required-option: required option mode missing\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderDiagnostic(&buf, Colorizer{}, "prog", tt.args, tt.err)
			if got := buf.String(); got != tt.want {
				t.Errorf("RenderDiagnostic() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	errs := argparse.Errors{
		{Kind: argparse.UnknownOption, Index: 0, Raw: "-x", Alias: "-x"},
		{Kind: argparse.MissingRequiredOption, Index: argparse.NoIndex, Option: "mode"},
	}
	RenderDiagnostics(&buf, Colorizer{}, "prog", []string{"-x"}, errs)
	if got := strings.Count(buf.String(), "error:"); got != 2 {
		t.Errorf("rendered %d diagnostics, want 2:\n%s", got, buf.String())
	}

	buf.Reset()
	RenderDiagnostics(&buf, Colorizer{}, "prog", nil, errors.New("boom"))
	if got := buf.String(); got != "error: boom\n" {
		t.Errorf("RenderDiagnostics(plain) = %q", got)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgress(t *testing.T) {
	var out syncBuffer
	p := NewProgress(&out, "checking", WithInterval(time.Millisecond), WithFrames([]string{"-", "+"}))
	p.Start(3)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Done()
		}()
	}
	wg.Wait()
	time.Sleep(5 * time.Millisecond)
	p.Stop()
	p.Stop()

	if done, total := p.Count(); done != 3 || total != 3 {
		t.Errorf("Count() = %d, %d; want 3, 3", done, total)
	}
	got := out.String()
	if !strings.Contains(got, "checking 0/3") {
		t.Errorf("output %q missing initial frame", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("output %q does not end by clearing the line", got)
	}
}

func TestProgressRestartWhileStopping(t *testing.T) {
	var out syncBuffer
	p := NewProgress(&out, "x", WithInterval(time.Microsecond))
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for range 200 {
			p.Start(1)
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				p.Stop()
			}()
			go func() {
				defer wg.Done()
				p.Start(1)
			}()
			wg.Wait()
			p.Stop()
		}
	}()
	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("Start and Stop deadlocked")
	}
}
