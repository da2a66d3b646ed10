// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a diagnostic. ErrorKind values are themselves errors
// so callers can match with errors.Is:
//
//	if errors.Is(err, argparse.MissingRequiredOption) { ... }
type ErrorKind int

const (
	TableConflict ErrorKind = iota + 1
	UnknownOption
	UnexpectedValue
	MissingValue
	InvalidValue
	DuplicateOption
	MutuallyExclusive
	MissingRequiredOption
)

var errorKindNames = map[ErrorKind]string{
	TableConflict:         "table-conflict",
	UnknownOption:         "unknown-option",
	UnexpectedValue:       "unexpected-value",
	MissingValue:          "missing-value",
	InvalidValue:          "invalid-value",
	DuplicateOption:       "duplicate-option",
	MutuallyExclusive:     "mutually-exclusive",
	MissingRequiredOption: "missing-required-option",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) Error() string { return k.String() }

// ParseErrorKind parses the kebab-case rendering of an ErrorKind. CamelCase
// names ("UnknownOption") are accepted as well.
func ParseErrorKind(s string) (ErrorKind, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for k, name := range errorKindNames {
		if strings.ReplaceAll(name, "-", "") == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", s)
}

// NoIndex is the Index of diagnostics that are not tied to a token, such as
// missing required options.
const NoIndex = -1

// Error is a single diagnostic. Index is the 0-based position of the
// offending token in the argument list and Raw its text.
type Error struct {
	Kind  ErrorKind
	Index int
	Raw   string

	Option string // canonical name of the descriptor involved
	Alias  string // alias as written by the user
	Other  string // MutuallyExclusive: the member seen first
	Group  string

	ValueKind Kind   // InvalidValue
	Value     string // InvalidValue: the raw value
	Choices   []string

	// Msg overrides the detail part of the rendering. TableConflict uses it.
	Msg string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Index >= 0 {
		fmt.Fprintf(&b, " at token %d (%q)", e.Index, e.Raw)
	}
	b.WriteString(": ")
	b.WriteString(e.detail())
	return b.String()
}

func (e *Error) detail() string {
	if e.Msg != "" {
		return e.Msg
	}
	name := e.Alias
	if name == "" && e.Option != "" {
		name = e.Option
	}
	switch e.Kind {
	case UnknownOption:
		return fmt.Sprintf("unknown option %s", name)
	case UnexpectedValue:
		return fmt.Sprintf("option %s does not take a value (got %q)", name, e.Value)
	case MissingValue:
		return fmt.Sprintf("option %s requires a value", name)
	case InvalidValue:
		if e.ValueKind == KindChoice && len(e.Choices) > 0 {
			return fmt.Sprintf("invalid value %q for %s: must be one of %s", e.Value, name, strings.Join(e.Choices, ", "))
		}
		if e.Err != nil {
			return fmt.Sprintf("invalid %s value %q for %s: %v", e.ValueKind, e.Value, name, e.Err)
		}
		return fmt.Sprintf("invalid %s value %q for %s", e.ValueKind, e.Value, name)
	case DuplicateOption:
		return fmt.Sprintf("option %s given more than once", name)
	case MutuallyExclusive:
		return fmt.Sprintf("option %s cannot be used with %s (group %s)", name, e.Other, e.Group)
	case MissingRequiredOption:
		if e.Option == "" && e.Group != "" {
			return fmt.Sprintf("one of the options in group %s is required", e.Group)
		}
		return fmt.Sprintf("required option %s missing", name)
	case TableConflict:
		return fmt.Sprintf("conflicting declaration of %s", name)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "parse error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an ErrorKind target against e.Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// Errors is the list of diagnostics returned in collect-all mode and by
// table construction.
type Errors []*Error

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no errors"
	case 1:
		return es[0].Error()
	}
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("%d errors:\n\t%s", len(es), strings.Join(lines, "\n\t"))
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Kinds returns the kind of every diagnostic, in order.
func (es Errors) Kinds() []ErrorKind {
	out := make([]ErrorKind, len(es))
	for i, e := range es {
		out[i] = e.Kind
	}
	return out
}

// Diagnostics flattens err into its individual diagnostics. It returns nil
// if err carries none.
func Diagnostics(err error) []*Error {
	var es Errors
	if errors.As(err, &es) {
		return es
	}
	var e *Error
	if errors.As(err, &e) {
		return []*Error{e}
	}
	return nil
}

func conflictf(option, format string, args ...any) *Error {
	return &Error{
		Kind:   TableConflict,
		Index:  NoIndex,
		Option: option,
		Msg:    fmt.Sprintf(format, args...),
	}
}
