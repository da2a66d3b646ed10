// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yeetrun/argparse/pkg/argparse"
	"github.com/yeetrun/argparse/pkg/cli"
	"github.com/yeetrun/argparse/pkg/tablefile"
	"github.com/yeetrun/argparse/pkg/tui"
	"gopkg.in/yaml.v3"
)

type parseReport struct {
	OK          bool           `json:"ok" yaml:"ok"`
	Options     map[string]any `json:"options" yaml:"options"`
	Present     []string       `json:"present" yaml:"present"`
	Positionals []string       `json:"positionals" yaml:"positionals"`
	Errors      []diagnostic   `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type diagnostic struct {
	Kind    string `json:"kind" yaml:"kind"`
	Index   int    `json:"index" yaml:"index"`
	Raw     string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Option  string `json:"option,omitempty" yaml:"option,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func diagnosticsOf(err error) []diagnostic {
	var out []diagnostic
	for _, e := range argparse.Diagnostics(err) {
		out = append(out, diagnostic{
			Kind:    e.Kind.String(),
			Index:   e.Index,
			Raw:     e.Raw,
			Option:  e.Option,
			Message: e.Error(),
		})
	}
	return out
}

func (a *app) parse(args []string) error {
	flags, parseArgs, err := cli.ParseParse(args)
	if err != nil {
		return usageError{err}
	}
	if a.showHelp(cli.CommandParse, flags.Help) {
		return nil
	}
	_, t, err := a.loadTable(flags.Table)
	if err != nil {
		return err
	}

	p := &argparse.Parser{
		Table:        t,
		CollectAll:   flags.CollectAll,
		AllowUnknown: flags.AllowUnknown,
		Logf:         a.logf,
	}
	res, perr := p.Parse(parseArgs)

	switch flags.Format {
	case "json", "yaml":
		rep := parseReport{
			OK:          perr == nil,
			Options:     map[string]any{},
			Present:     []string{},
			Positionals: []string{},
			Errors:      diagnosticsOf(perr),
		}
		if res != nil {
			for name, v := range res.Map() {
				rep.Options[name] = plainValue(v)
			}
			for _, d := range t.Descriptors() {
				if res.Has(d.Name) {
					rep.Present = append(rep.Present, d.Name)
				}
			}
			rep.Positionals = res.Positionals()
		}
		if err := encode(a.stdout, flags.Format, rep); err != nil {
			return err
		}
	default:
		if res != nil {
			writeResultText(a.stdout, t, res)
		}
	}

	if perr != nil {
		tui.RenderDiagnostics(a.stderr, a.color, "", parseArgs, perr)
		return errReported
	}
	return nil
}

func writeResultText(w io.Writer, t *argparse.Table, res *argparse.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	m := res.Map()
	for _, d := range t.Descriptors() {
		v, ok := m[d.Name]
		if !ok {
			continue
		}
		note := ""
		switch {
		case !res.Has(d.Name):
			note = "\t(default)"
		case res.Count(d.Name) > 1:
			note = fmt.Sprintf("\t(x%d)", res.Count(d.Name))
		}
		fmt.Fprintf(tw, "%s\t%s%s\n", d.Name, formatValue(v), note)
	}
	if pos := res.Positionals(); len(pos) > 0 {
		fmt.Fprintf(tw, "--\t%s\n", strings.Join(quoteAll(pos), " "))
	}
	tw.Flush()
}

// plainValue converts parsed values to types that encode as text in JSON
// and YAML.
func plainValue(v any) any {
	switch v := v.(type) {
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plainValue(e)
		}
		return out
	case fmt.Stringer:
		return v.String()
	}
	return v
}

func formatValue(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

func quoteAll(args []string) []string {
	out := make([]string, len(args))
	for i, s := range args {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

func (a *app) tokens(args []string) error {
	flags, tokArgs, err := cli.ParseTokens(args)
	if err != nil {
		return usageError{err}
	}
	if a.showHelp(cli.CommandTokens, flags.Help) {
		return nil
	}
	tz := argparse.NewTokenizer(tokArgs)
	if flags.Table != "" {
		_, t, err := a.loadTable(flags.Table)
		if err != nil {
			return err
		}
		tz = t.Tokenizer(tokArgs)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for tok := range tz.All() {
		detail := ""
		switch tok.Type {
		case argparse.TokenLongOption, argparse.TokenShortCluster:
			detail = strings.Join(tok.Aliases(), " ")
			if tok.HasInline {
				detail += fmt.Sprintf(" =%q", tok.Inline)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%q\t%s\n", tok.Index, tok.Type, tok.Raw, detail)
	}
	return tw.Flush()
}

func (a *app) table(args []string) error {
	flags, err := cli.ParseTable(args)
	if err != nil {
		return usageError{err}
	}
	if a.showHelp(cli.CommandTable, flags.Help) {
		return nil
	}
	_, t, err := a.loadTable(flags.Table)
	if err != nil {
		return err
	}
	switch flags.Format {
	case "toml":
		return tablefile.FromTable(t).Encode(a.stdout, tablefile.FormatTOML)
	case "yaml":
		return tablefile.FromTable(t).Encode(a.stdout, tablefile.FormatYAML)
	}

	fmt.Fprintln(a.stdout, t.Usage("prog"))
	fmt.Fprintln(a.stdout)
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPTION\tARITY\tKIND\tGROUP\tDEFAULT\tHELP")
	for _, d := range t.Descriptors() {
		opt := d.Display()
		if d.Required {
			opt += " (required)"
		}
		kind := d.Kind.String()
		if d.Kind == argparse.KindChoice {
			kind += "(" + strings.Join(d.Choices, "|") + ")"
		}
		def := "-"
		if d.Default != nil {
			def = formatValue(d.Default)
		}
		group := d.Group
		if rule, ok := t.GroupRule(group); ok && rule.Required {
			group += "!"
		}
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", opt, d.Arity, kind, group, def, d.Help)
	}
	return tw.Flush()
}

type checkReport struct {
	Passed int           `json:"passed" yaml:"passed"`
	Failed int           `json:"failed" yaml:"failed"`
	Cases  []checkResult `json:"cases" yaml:"cases"`
}

type checkResult struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (a *app) check(ctx context.Context, args []string) error {
	flags, err := cli.ParseCheck(args)
	if err != nil {
		return usageError{err}
	}
	if a.showHelp(cli.CommandCheck, flags.Help) {
		return nil
	}
	f, t, err := a.loadTable(flags.Table)
	if err != nil {
		return err
	}
	if len(f.Cases) == 0 {
		fmt.Fprintln(a.stderr, a.color.Warn("no cases to check"))
		return nil
	}

	var done func(tablefile.Outcome)
	var progress *tui.Progress
	if a.interactive && flags.Format == "text" {
		progress = tui.NewProgress(a.stderr, "checking", tui.WithColor(a.color))
		progress.Start(len(f.Cases))
		done = func(tablefile.Outcome) { progress.Done() }
	}
	outcomes, err := tablefile.CheckEach(ctx, t, f.Cases, flags.Jobs, a.logf, done)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return err
	}

	rep := checkReport{Cases: make([]checkResult, 0, len(outcomes))}
	for _, o := range outcomes {
		r := checkResult{Name: o.Case.Label(), Passed: o.Passed()}
		if o.Passed() {
			rep.Passed++
		} else {
			rep.Failed++
			r.Error = o.Err.Error()
		}
		rep.Cases = append(rep.Cases, r)
	}

	if flags.Format == "text" {
		a.writeCheckText(rep)
	} else if err := encode(a.stdout, flags.Format, rep); err != nil {
		return err
	}
	if rep.Failed > 0 {
		return errReported
	}
	return nil
}

func (a *app) writeCheckText(rep checkReport) {
	for _, r := range rep.Cases {
		if r.Passed {
			fmt.Fprintf(a.stdout, "%s %s\n", a.color.OK("PASS"), r.Name)
			continue
		}
		fmt.Fprintf(a.stdout, "%s %s: %s\n", a.color.Error("FAIL"), r.Name, r.Error)
	}
	summary := fmt.Sprintf("%d passed, %d failed", rep.Passed, rep.Failed)
	if rep.Failed > 0 {
		summary = a.color.Error(summary)
	} else {
		summary = a.color.OK(summary)
	}
	fmt.Fprintln(a.stdout, summary)
}
