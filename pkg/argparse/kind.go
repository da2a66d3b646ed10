// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"strings"
)

// Arity is the number of values an option consumes per occurrence.
type Arity int

const (
	ArityZero Arity = iota // flag, no value
	ArityOne               // exactly one value
	ArityMany              // one or more values
)

var arityNames = map[Arity]string{
	ArityZero: "zero",
	ArityOne:  "one",
	ArityMany: "many",
}

func (a Arity) String() string {
	if s, ok := arityNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Arity(%d)", int(a))
}

func (a Arity) MarshalText() ([]byte, error) {
	if _, ok := arityNames[a]; !ok {
		return nil, fmt.Errorf("unknown arity %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText accepts "zero", "one" or "many" as well as the aliases
// "flag", "single" and "list".
func (a *Arity) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "zero", "flag", "0":
		*a = ArityZero
	case "one", "single", "1":
		*a = ArityOne
	case "many", "list", "n":
		*a = ArityMany
	default:
		return fmt.Errorf("unknown arity %q (expected zero, one or many)", string(b))
	}
	return nil
}

// Kind is the value type of an option. The set is closed; every kind has
// exactly one converter.
type Kind int

const (
	KindNone Kind = iota // flags only
	KindString
	KindInt
	KindFloat
	KindBool
	KindChoice
	KindPath
	KindDuration
	KindURL
	KindVersion
)

var kindNames = map[Kind]string{
	KindNone:     "none",
	KindString:   "string",
	KindInt:      "integer",
	KindFloat:    "float",
	KindBool:     "boolean",
	KindChoice:   "choice",
	KindPath:     "path",
	KindDuration: "duration",
	KindURL:      "url",
	KindVersion:  "version",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	switch s {
	case "", "none":
		*k = KindNone
		return nil
	case "int", "int64":
		*k = KindInt
		return nil
	case "bool":
		*k = KindBool
		return nil
	case "enum":
		*k = KindChoice
		return nil
	case "semver":
		*k = KindVersion
		return nil
	}
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown value kind %q", string(b))
}
