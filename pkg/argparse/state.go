// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"slices"

	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// state is the per-invocation parse state. Descriptors are identified by
// their index in the table.
type state struct {
	t          *Table
	collectAll bool

	values map[int][]any
	counts map[int]int
	// seen holds descriptors with at least one valid occurrence; mentioned
	// also includes occurrences that failed.
	seen      set.Set[int]
	mentioned set.Set[int]
	// groupFirst maps a group to the first member seen.
	groupFirst  map[string]int
	positionals []string

	errs Errors
}

func newState(t *Table, collectAll bool) *state {
	return &state{
		t:          t,
		collectAll: collectAll,
		seen:       set.Set[int]{},
		mentioned:  set.Set[int]{},
	}
}

// fail records a diagnostic and reports whether parsing must stop.
func (s *state) fail(e *Error) bool {
	s.errs = append(s.errs, e)
	return !s.collectAll
}

func (s *state) record(idx int, vals []any) {
	d := s.t.opts[idx]
	s.seen.Add(idx)
	mak.Set(&s.counts, idx, s.counts[idx]+1)
	mak.Set(&s.values, idx, append(s.values[idx], vals...))
	if d.Group != "" {
		if _, ok := s.groupFirst[d.Group]; !ok {
			mak.Set(&s.groupFirst, d.Group, idx)
		}
	}
}

// finish enforces the end-of-stream rules: required options and required
// groups. It reports whether parsing must stop.
func (s *state) finish() bool {
	for idx, d := range s.t.opts {
		if !d.Required || s.mentioned.Contains(idx) {
			continue
		}
		forms := d.forms()
		e := &Error{
			Kind:   MissingRequiredOption,
			Index:  NoIndex,
			Option: d.Name,
			Alias:  forms[len(forms)-1],
		}
		if s.fail(e) {
			return true
		}
	}
	for _, g := range s.t.Groups() {
		rule, ok := s.t.rules[g]
		if !ok || !rule.Required {
			continue
		}
		if slices.ContainsFunc(s.t.groups[g], s.mentioned.Contains) {
			continue
		}
		if s.fail(&Error{Kind: MissingRequiredOption, Index: NoIndex, Group: g}) {
			return true
		}
	}
	return false
}

func (s *state) result() *Result {
	r := &Result{
		table:       s.t,
		positionals: slices.Clone(s.positionals),
	}
	if r.positionals == nil {
		r.positionals = []string{}
	}
	for idx := range s.seen {
		name := s.t.opts[idx].Name
		mak.Set(&r.values, name, slices.Clone(s.values[idx]))
		mak.Set(&r.counts, name, s.counts[idx])
	}
	return r
}
