// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"slices"
	"time"
)

// Result is the outcome of a successful parse: typed values keyed by
// canonical option name and the ordered positional arguments.
//
// Flags have the value true. Options of arity one hold one value per
// occurrence (more than one only when Repeatable); options of arity many
// hold every value of every occurrence.
type Result struct {
	table       *Table
	values      map[string][]any
	counts      map[string]int
	positionals []string
}

// Has reports whether the option appeared in the input.
func (r *Result) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Count returns the number of occurrences of the option.
func (r *Result) Count(name string) int {
	return r.counts[name]
}

// Get returns the last value given for the option, or its default. The
// boolean is false when the option is absent and has no default. For
// options of arity many the value is the []any of Values.
func (r *Result) Get(name string) (any, bool) {
	if vals, ok := r.values[name]; ok {
		if r.arity(name) == ArityMany {
			return slices.Clone(vals), true
		}
		return vals[len(vals)-1], true
	}
	return r.Default(name)
}

// Values returns every value given for the option, or its default as a
// one-element (or, for arity many, the default's) slice.
func (r *Result) Values(name string) []any {
	if vals, ok := r.values[name]; ok {
		return slices.Clone(vals)
	}
	def, ok := r.Default(name)
	if !ok {
		return nil
	}
	if list, ok := def.([]any); ok {
		return slices.Clone(list)
	}
	return []any{def}
}

// Default returns the normalized default of the option. Flags without a
// declared default default to false.
func (r *Result) Default(name string) (any, bool) {
	if r.table == nil {
		return nil, false
	}
	idx, ok := r.table.byName[name]
	if !ok {
		return nil, false
	}
	if def := r.table.defaults[idx]; def != nil {
		if list, ok := def.([]any); ok {
			return slices.Clone(list), true
		}
		return def, true
	}
	if r.table.opts[idx].Arity == ArityZero {
		return false, true
	}
	return nil, false
}

func (r *Result) arity(name string) Arity {
	if r.table == nil {
		return ArityOne
	}
	if idx, ok := r.table.byName[name]; ok {
		return r.table.opts[idx].Arity
	}
	return ArityOne
}

// Positionals returns the positional arguments in input order.
func (r *Result) Positionals() []string {
	return slices.Clone(r.positionals)
}

// String returns the option's value as a string. Non-string values are
// formatted with fmt.
func (r *Result) String(name string) string {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the option's value as an int64, or 0.
func (r *Result) Int(name string) int64 {
	v, _ := r.Get(name)
	i, _ := v.(int64)
	return i
}

// Float returns the option's value as a float64, or 0.
func (r *Result) Float(name string) float64 {
	v, _ := r.Get(name)
	f, _ := v.(float64)
	return f
}

// Bool returns the option's value as a bool. A flag is true when present.
func (r *Result) Bool(name string) bool {
	v, _ := r.Get(name)
	b, _ := v.(bool)
	return b
}

// Duration returns the option's value as a time.Duration, or 0.
func (r *Result) Duration(name string) time.Duration {
	v, _ := r.Get(name)
	d, _ := v.(time.Duration)
	return d
}

// Strings returns every value of the option formatted as strings.
func (r *Result) Strings(name string) []string {
	vals := r.Values(name)
	if vals == nil {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// Map returns the parsed options keyed by canonical name, with defaults
// filled in for absent options. Options of arity many and repeated options
// map to []any; everything else maps to its single value.
func (r *Result) Map() map[string]any {
	out := make(map[string]any)
	if r.table == nil {
		return out
	}
	for _, d := range r.table.opts {
		vals, ok := r.values[d.Name]
		if !ok {
			if def, ok := r.Default(d.Name); ok {
				out[d.Name] = def
			}
			continue
		}
		if d.Arity == ArityMany || len(vals) > 1 {
			out[d.Name] = slices.Clone(vals)
			continue
		}
		out[d.Name] = vals[0]
	}
	return out
}
