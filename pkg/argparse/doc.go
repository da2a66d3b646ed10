// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argparse matches command-line arguments against a declared table
// of options and produces either typed values or precise diagnostics.
//
// # Declaring a table
//
// A Table is built once from Descriptors and is then immutable and safe for
// concurrent parses:
//
//	t, err := argparse.NewTable([]argparse.Descriptor{
//	    {Name: "verbose", Aliases: []string{"v"}, Arity: argparse.ArityZero},
//	    {Name: "count", Aliases: []string{"c"}, Arity: argparse.ArityOne, Kind: argparse.KindInt, Default: "1"},
//	    {Name: "mode", Arity: argparse.ArityOne, Kind: argparse.KindChoice, Choices: []string{"fast", "slow"}, Required: true},
//	    {Name: "json", Arity: argparse.ArityZero, Group: "format"},
//	    {Name: "yaml", Arity: argparse.ArityZero, Group: "format"},
//	})
//
// Conflicting declarations (duplicate aliases, a flag with a value kind, a
// default that does not convert) are all reported at once as Errors of kind
// TableConflict.
//
// # Parsing
//
//	res, err := argparse.Parse(t, os.Args[1:])
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n := res.Int("count")
//
// Options are accepted as "--name value", "--name=value", "-c value" and
// "-c=value". Short flags cluster ("-vq") and only the last option of a
// cluster may take a value, so "-vc 5" and "-vc=5" work. Everything after
// a bare "--" is positional.
//
// Parse stops at the first problem; a Parser with CollectAll set reports
// every problem as Errors together with the partial Result.
//
// # Struct tags
//
// DescriptorsFromStruct and ParseInto declare a table from struct tags,
// following the same conventions as flag structs elsewhere in this module:
//
//	type Flags struct {
//	    Verbose int    `flag:"verbose" short:"v" count:"true"`
//	    Output  string `flag:"output" short:"o" kind:"path"`
//	}
//
//	res, err := argparse.ParseInto[Flags](os.Args[1:])
package argparse
