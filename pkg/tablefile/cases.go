// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tablefile

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/yeetrun/argparse/pkg/argparse"
	"golang.org/x/sync/errgroup"
	"tailscale.com/types/logger"
)

// Case is an argument list together with the outcome expected when parsing
// it against the file's table.
//
// Error names the kind of the first diagnostic ("invalid-value"); Errors
// lists every kind in order and implies CollectAll. With neither set the
// parse must succeed. Positionals and Values are only compared when set.
type Case struct {
	Name         string              `toml:"name,omitempty" yaml:"name,omitempty"`
	Args         []string            `toml:"args" yaml:"args"`
	Error        string              `toml:"error,omitempty" yaml:"error,omitempty"`
	Errors       []string            `toml:"errors,omitempty" yaml:"errors,omitempty"`
	CollectAll   bool                `toml:"collect_all,omitempty" yaml:"collect_all,omitempty"`
	AllowUnknown bool                `toml:"allow_unknown,omitempty" yaml:"allow_unknown,omitempty"`
	Positionals  []string            `toml:"positionals,omitempty" yaml:"positionals,omitempty"`
	Values       map[string][]string `toml:"values,omitempty" yaml:"values,omitempty"`
}

// Label is the case name, or its arguments when unnamed.
func (c Case) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%q", c.Args)
}

// Run parses the case against t and reports the first mismatch with the
// expectation, or nil.
func (c Case) Run(t *argparse.Table, logf logger.Logf) error {
	var wantKinds []argparse.ErrorKind
	for _, s := range c.expectedErrors() {
		k, err := argparse.ParseErrorKind(s)
		if err != nil {
			return fmt.Errorf("case %s: %w", c.Label(), err)
		}
		wantKinds = append(wantKinds, k)
	}

	p := &argparse.Parser{
		Table:        t,
		CollectAll:   c.CollectAll || len(c.Errors) > 0,
		AllowUnknown: c.AllowUnknown,
		Logf:         logf,
	}
	res, err := p.Parse(c.Args)
	diags := argparse.Diagnostics(err)

	switch {
	case len(wantKinds) == 0:
		if err != nil {
			return fmt.Errorf("unexpected error: %w", err)
		}
	case len(diags) == 0:
		return fmt.Errorf("parse succeeded, want %s", wantKinds[0])
	case len(c.Errors) > 0:
		got := argparse.Errors(diags).Kinds()
		if !slices.Equal(got, wantKinds) {
			return fmt.Errorf("got errors %v, want %v: %w", got, wantKinds, err)
		}
	case diags[0].Kind != wantKinds[0]:
		return fmt.Errorf("got %s, want %s: %w", diags[0].Kind, wantKinds[0], err)
	}
	if res == nil {
		return nil
	}

	if c.Positionals != nil {
		if got := res.Positionals(); !slices.Equal(got, c.Positionals) {
			return fmt.Errorf("positionals = %q, want %q", got, c.Positionals)
		}
	}
	names := make([]string, 0, len(c.Values))
	for name := range c.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := c.Values[name]
		if got := res.Strings(name); !slices.Equal(got, want) {
			return fmt.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	return nil
}

func (c Case) expectedErrors() []string {
	if len(c.Errors) > 0 {
		return c.Errors
	}
	if c.Error != "" {
		return []string{c.Error}
	}
	return nil
}

// Outcome is the result of running one Case.
type Outcome struct {
	Case Case
	Err  error
}

// Passed reports whether the case met its expectation.
func (o Outcome) Passed() bool { return o.Err == nil }

// Check runs cases against t on up to jobs goroutines (unlimited when jobs
// is not positive). Outcomes are returned in case order. The error is
// non-nil only when ctx is done before every case ran.
func Check(ctx context.Context, t *argparse.Table, cases []Case, jobs int, logf logger.Logf) ([]Outcome, error) {
	return CheckEach(ctx, t, cases, jobs, logf, nil)
}

// CheckEach is Check with a callback invoked as each case finishes. done may
// be called concurrently.
func CheckEach(ctx context.Context, t *argparse.Table, cases []Case, jobs int, logf logger.Logf, done func(Outcome)) ([]Outcome, error) {
	outcomes := make([]Outcome, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = Outcome{Case: c, Err: c.Run(t, logf)}
			if done != nil {
				done(outcomes[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
