// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// Table is an immutable, validated collection of option descriptors. It is
// safe for concurrent use by multiple parses.
type Table struct {
	opts    []*Descriptor
	byAlias map[string]int // dashed alias -> index into opts
	byName  map[string]int
	groups  map[string][]int
	rules   map[string]GroupRule
	// defaults holds normalized defaults, indexed like opts.
	defaults []any

	numericShorts bool
}

// NewTable validates opts and groups and builds a Table. All conflicts are
// reported at once as Errors of kind TableConflict.
func NewTable(opts []Descriptor, groups ...GroupRule) (*Table, error) {
	t := &Table{
		byAlias: make(map[string]int),
		byName:  make(map[string]int),
	}
	var errs Errors

	for i := range opts {
		d := opts[i].Clone()
		if d.Arity != ArityZero && d.Kind == KindNone {
			d.Kind = KindString
		}
		idx := len(t.opts)
		t.opts = append(t.opts, d)
		derrs := t.validate(d)
		errs = append(errs, derrs...)

		if d.Name != "" {
			if _, dup := t.byName[d.Name]; dup {
				errs = append(errs, conflictf(d.Name, "duplicate option name %q", d.Name))
			} else {
				t.byName[d.Name] = idx
			}
		}
		aliases := d.Aliases
		if d.Name != "" {
			aliases = append([]string{d.Name}, aliases...)
		}
		for _, a := range aliases {
			if err := checkAlias(a); err != nil {
				errs = append(errs, conflictf(d.Name, "option %q: %v", d.Name, err))
				continue
			}
			key := dashed(a)
			if prev, ok := t.byAlias[key]; ok {
				if prev == idx {
					continue
				}
				errs = append(errs, conflictf(d.Name, "alias %s of %q already used by %q", key, d.Name, t.opts[prev].Name))
				continue
			}
			t.byAlias[key] = idx
			if isShortDigit(key) {
				t.numericShorts = true
			}
		}

		var def any
		if len(derrs) == 0 {
			var err error
			def, err = normalizeDefault(d)
			if err != nil {
				errs = append(errs, conflictf(d.Name, "option %q: invalid default: %v", d.Name, err))
			}
		}
		t.defaults = append(t.defaults, def)

		if d.Group != "" {
			mak.Set(&t.groups, d.Group, append(t.groups[d.Group], idx))
		}
	}

	seenRules := set.Set[string]{}
	for _, g := range groups {
		if g.Name == "" {
			errs = append(errs, conflictf("", "group rule with empty name"))
			continue
		}
		if seenRules.Contains(g.Name) {
			errs = append(errs, conflictf("", "group %q declared twice", g.Name))
			continue
		}
		seenRules.Add(g.Name)
		if len(t.groups[g.Name]) == 0 {
			errs = append(errs, conflictf("", "group %q has no members", g.Name))
			continue
		}
		mak.Set(&t.rules, g.Name, g)
	}
	for _, name := range t.Groups() {
		if members := t.groups[name]; len(members) < 2 {
			errs = append(errs, conflictf(t.opts[members[0]].Name, "group %q has a single member %q", name, t.opts[members[0]].Name))
		}
	}

	if len(errs) > 0 {
		sortConflicts(errs)
		return nil, errs
	}
	return t, nil
}

// MustTable is like NewTable but panics on conflicts. It is intended for
// tables declared at program start.
func MustTable(opts []Descriptor, groups ...GroupRule) *Table {
	t, err := NewTable(opts, groups...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) validate(d *Descriptor) Errors {
	var errs Errors
	add := func(format string, args ...any) {
		errs = append(errs, conflictf(d.Name, "option %q: "+format, append([]any{d.Name}, args...)...))
	}
	if d.Name == "" {
		errs = append(errs, conflictf("", "option with aliases %v has no name", d.Aliases))
		return errs
	}
	if strings.HasPrefix(d.Name, "-") {
		add("name must not start with a dash")
	}
	if _, ok := arityNames[d.Arity]; !ok {
		add("unknown arity %d", int(d.Arity))
	}
	if _, ok := kindNames[d.Kind]; !ok {
		add("unknown kind %d", int(d.Kind))
	}
	if d.Arity == ArityZero && d.Kind != KindNone {
		add("flag cannot have value kind %v", d.Kind)
	}
	if d.Kind == KindChoice && len(d.Choices) == 0 {
		add("choice kind without choices")
	}
	if d.Kind != KindChoice && len(d.Choices) > 0 {
		add("choices declared for kind %v", d.Kind)
	}
	if d.Required && d.Default != nil {
		add("required option cannot have a default")
	}
	if d.Required && d.Group != "" {
		add("required option cannot be in exclusive group %q", d.Group)
	}
	if d.MinValues < 0 || d.MaxValues < 0 {
		add("negative value bounds")
	}
	if (d.MinValues != 0 || d.MaxValues != 0) && d.Arity != ArityMany {
		add("value bounds require arity many")
	}
	if d.MaxValues > 0 && d.minValues() > d.MaxValues {
		add("min values %d exceeds max values %d", d.minValues(), d.MaxValues)
	}
	return errs
}

func checkAlias(a string) error {
	bare := strings.TrimLeft(a, "-")
	dashes := len(a) - len(bare)
	if bare == "" {
		return fmt.Errorf("empty alias %q", a)
	}
	if strings.ContainsFunc(bare, func(r rune) bool { return unicode.IsSpace(r) || r == '=' }) {
		return fmt.Errorf("malformed alias %q", a)
	}
	n := len([]rune(bare))
	switch {
	case dashes > 2:
		return fmt.Errorf("malformed alias %q", a)
	case dashes == 1 && n > 1:
		return fmt.Errorf("alias %q: long aliases use two dashes", a)
	case dashes == 2 && n == 1:
		return fmt.Errorf("alias %q: short aliases use one dash", a)
	}
	return nil
}

func isShortDigit(alias string) bool {
	return len(alias) == 2 && alias[0] == '-' && alias[1] >= '0' && alias[1] <= '9'
}

func sortConflicts(errs Errors) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Option < errs[j].Option })
}

// Resolve returns the descriptor invoked by alias. The alias may be written
// as typed ("-v", "--verbose") or bare ("v", "verbose").
func (t *Table) Resolve(alias string) (Descriptor, error) {
	idx, ok := t.resolve(alias)
	if !ok {
		return Descriptor{}, &Error{Kind: UnknownOption, Index: NoIndex, Raw: alias, Alias: alias}
	}
	return *t.opts[idx].Clone(), nil
}

func (t *Table) resolve(alias string) (int, bool) {
	if strings.HasPrefix(alias, "-") {
		idx, ok := t.byAlias[alias]
		return idx, ok
	}
	idx, ok := t.byAlias[dashed(alias)]
	return idx, ok
}

// Lookup returns the descriptor with the canonical name.
func (t *Table) Lookup(name string) (Descriptor, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return *t.opts[idx].Clone(), true
}

// Required returns the names of the required options in declaration order.
func (t *Table) Required() []string {
	var out []string
	for _, d := range t.opts {
		if d.Required {
			out = append(out, d.Name)
		}
	}
	return out
}

// MembersOf returns the descriptors of an exclusivity group in declaration
// order, or nil if no option names the group.
func (t *Table) MembersOf(group string) []Descriptor {
	var out []Descriptor
	for _, idx := range t.groups[group] {
		out = append(out, *t.opts[idx].Clone())
	}
	return out
}

// Groups returns the names of all exclusivity groups, sorted.
func (t *Table) Groups() []string {
	names := make([]string, 0, len(t.groups))
	for name := range t.groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GroupRule returns the rule declared for group, if any.
func (t *Table) GroupRule(group string) (GroupRule, bool) {
	r, ok := t.rules[group]
	return r, ok
}

// Descriptors returns every descriptor in declaration order.
func (t *Table) Descriptors() []Descriptor {
	out := make([]Descriptor, len(t.opts))
	for i, d := range t.opts {
		out[i] = *d.Clone()
	}
	return out
}

// Len returns the number of options in the table.
func (t *Table) Len() int { return len(t.opts) }

// Tokenizer returns a tokenizer over args configured for this table.
func (t *Table) Tokenizer(args []string) *Tokenizer {
	return NewTokenizer(args, WithNumericShorts(t.numericShorts))
}

// Usage renders a one-line usage summary such as
// "Usage: prog [options] --mode <choice>". Required options are listed
// explicitly.
func (t *Table) Usage(program string) string {
	var b strings.Builder
	b.WriteString("Usage: ")
	b.WriteString(program)
	if len(t.opts) > 0 {
		b.WriteString(" [options]")
	}
	for _, d := range t.opts {
		if !d.Required {
			continue
		}
		forms := d.forms()
		b.WriteString(" ")
		b.WriteString(forms[len(forms)-1])
		if d.TakesValue() {
			fmt.Fprintf(&b, " <%v>", d.Kind)
		}
	}
	for _, g := range t.Groups() {
		if r, ok := t.rules[g]; !ok || !r.Required {
			continue
		}
		var forms []string
		for _, idx := range t.groups[g] {
			f := t.opts[idx].forms()
			forms = append(forms, f[len(f)-1])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(forms, " | "))
	}
	return b.String()
}
