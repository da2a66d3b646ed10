// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"slices"
	"strings"
)

// Descriptor is the static definition of one accepted option.
//
// The canonical Name is always an alias of the option: a one-character name
// is invoked as "-n", a longer one as "--name". Additional Aliases may be
// written with or without their leading dashes; a single character is a short
// alias and anything longer is a long alias.
type Descriptor struct {
	Name    string
	Aliases []string
	Arity   Arity
	// Kind defaults to KindString for options that take values. It must be
	// KindNone for ArityZero.
	Kind    Kind
	Choices []string

	// Default is returned by Result lookups when the option is absent. A
	// string default is converted using Kind when the table is built.
	Default    any
	Required   bool
	Group      string
	Repeatable bool
	// NonEmpty rejects the empty string as a value.
	NonEmpty bool

	// MinValues and MaxValues bound the values taken by one occurrence of
	// an ArityMany option. Zero means 1 and unbounded respectively.
	MinValues int
	MaxValues int

	Help string
}

// GroupRule adds cardinality rules to a mutual-exclusion group.
type GroupRule struct {
	Name string
	// Required demands that exactly one member of the group is present.
	Required bool
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	dst := new(Descriptor)
	*dst = *d
	dst.Aliases = slices.Clone(d.Aliases)
	dst.Choices = slices.Clone(d.Choices)
	if s, ok := d.Default.([]string); ok {
		dst.Default = slices.Clone(s)
	}
	if s, ok := d.Default.([]any); ok {
		dst.Default = slices.Clone(s)
	}
	return dst
}

// TakesValue reports whether the option consumes values.
func (d *Descriptor) TakesValue() bool {
	return d.Arity != ArityZero
}

// Display renders the option's invocation forms, e.g. "-c/--count".
func (d *Descriptor) Display() string {
	forms := d.forms()
	return strings.Join(forms, "/")
}

// forms returns the dashed aliases of d, shorts first, without duplicates.
func (d *Descriptor) forms() []string {
	var shorts, longs []string
	for _, a := range append([]string{d.Name}, d.Aliases...) {
		f := dashed(a)
		if f == "" {
			continue
		}
		if strings.HasPrefix(f, "--") {
			if !slices.Contains(longs, f) {
				longs = append(longs, f)
			}
		} else if !slices.Contains(shorts, f) {
			shorts = append(shorts, f)
		}
	}
	return append(shorts, longs...)
}

func (d *Descriptor) minValues() int {
	if d.MinValues > 0 {
		return d.MinValues
	}
	return 1
}

// dashed normalizes an alias as declared ("v", "-v", "verbose", "--verbose")
// into the form it is invoked with.
func dashed(alias string) string {
	bare := strings.TrimLeft(alias, "-")
	switch {
	case bare == "":
		return ""
	case len([]rune(bare)) == 1:
		return "-" + bare
	default:
		return "--" + bare
	}
}
