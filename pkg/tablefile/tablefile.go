// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tablefile loads declarative option tables, and the test cases that
// go with them, from TOML or YAML files.
package tablefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/argparse/pkg/argparse"
	"gopkg.in/yaml.v3"
)

// Names are the file names Find looks for, in order of preference.
var Names = []string{"argparse.toml", "argparse.yaml", "argparse.yml"}

// Format is the encoding of a table file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported table file %q (want .toml, .yaml or .yml)", path)
}

// File is the decoded form of a table file.
type File struct {
	Options []Option `toml:"option" yaml:"options"`
	Groups  []Group  `toml:"group,omitempty" yaml:"groups,omitempty"`
	Cases   []Case   `toml:"case,omitempty" yaml:"cases,omitempty"`
}

// Option declares one descriptor. Arity and Kind use the names accepted by
// argparse.Arity and argparse.Kind; an empty arity means "one" when a kind
// is given and "zero" otherwise.
type Option struct {
	Name       string   `toml:"name" yaml:"name"`
	Aliases    []string `toml:"aliases,omitempty" yaml:"aliases,omitempty"`
	Arity      string   `toml:"arity,omitempty" yaml:"arity,omitempty"`
	Kind       string   `toml:"kind,omitempty" yaml:"kind,omitempty"`
	Choices    []string `toml:"choices,omitempty" yaml:"choices,omitempty"`
	Required   bool     `toml:"required,omitempty" yaml:"required,omitempty"`
	Default    any      `toml:"default,omitempty" yaml:"default,omitempty"`
	Group      string   `toml:"group,omitempty" yaml:"group,omitempty"`
	Repeatable bool     `toml:"repeatable,omitempty" yaml:"repeatable,omitempty"`
	NonEmpty   bool     `toml:"non_empty,omitempty" yaml:"non_empty,omitempty"`
	MinValues  int      `toml:"min_values,omitempty" yaml:"min_values,omitempty"`
	MaxValues  int      `toml:"max_values,omitempty" yaml:"max_values,omitempty"`
	Help       string   `toml:"help,omitempty" yaml:"help,omitempty"`
}

// Group declares the rule of an exclusivity group.
type Group struct {
	Name     string `toml:"name" yaml:"name"`
	Required bool   `toml:"required,omitempty" yaml:"required,omitempty"`
}

// Load reads and decodes the table file at path.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

// Decode decodes a table file. Keys the File type does not know about are
// an error.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return &f, nil
}

// Encode writes f in the given format.
func (f *File) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

// Descriptor converts the declaration into an argparse.Descriptor.
func (o Option) Descriptor() (argparse.Descriptor, error) {
	d := argparse.Descriptor{
		Name:       o.Name,
		Aliases:    slices.Clone(o.Aliases),
		Choices:    slices.Clone(o.Choices),
		Required:   o.Required,
		Default:    o.Default,
		Group:      o.Group,
		Repeatable: o.Repeatable,
		NonEmpty:   o.NonEmpty,
		MinValues:  o.MinValues,
		MaxValues:  o.MaxValues,
		Help:       o.Help,
	}
	if err := d.Kind.UnmarshalText([]byte(o.Kind)); err != nil {
		return d, fmt.Errorf("option %q: %w", o.Name, err)
	}
	switch {
	case o.Arity != "":
		if err := d.Arity.UnmarshalText([]byte(o.Arity)); err != nil {
			return d, fmt.Errorf("option %q: %w", o.Name, err)
		}
	case d.Kind != argparse.KindNone || len(o.Choices) > 0:
		d.Arity = argparse.ArityOne
	default:
		d.Arity = argparse.ArityZero
	}
	if d.Kind == argparse.KindNone && len(o.Choices) > 0 {
		d.Kind = argparse.KindChoice
	}
	return d, nil
}

// Table builds the option table. Declaration errors and table conflicts are
// returned together.
func (f *File) Table() (*argparse.Table, error) {
	var errs []error
	descs := make([]argparse.Descriptor, 0, len(f.Options))
	for _, o := range f.Options {
		d, err := o.Descriptor()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descs = append(descs, d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	rules := make([]argparse.GroupRule, len(f.Groups))
	for i, g := range f.Groups {
		rules[i] = argparse.GroupRule{Name: g.Name, Required: g.Required}
	}
	return argparse.NewTable(descs, rules...)
}

// FromTable returns the declaration of t, without cases.
func FromTable(t *argparse.Table) *File {
	f := &File{}
	for _, d := range t.Descriptors() {
		o := Option{
			Name:       d.Name,
			Aliases:    d.Aliases,
			Arity:      d.Arity.String(),
			Choices:    d.Choices,
			Required:   d.Required,
			Default:    d.Default,
			Group:      d.Group,
			Repeatable: d.Repeatable,
			NonEmpty:   d.NonEmpty,
			MinValues:  d.MinValues,
			MaxValues:  d.MaxValues,
			Help:       d.Help,
		}
		if d.Kind != argparse.KindNone {
			o.Kind = d.Kind.String()
		}
		f.Options = append(f.Options, o)
	}
	for _, g := range t.Groups() {
		if r, ok := t.GroupRule(g); ok {
			f.Groups = append(f.Groups, Group{Name: r.Name, Required: r.Required})
		}
	}
	return f
}

// Find looks for a table file in startDir and its parents and returns the
// first one found. It returns an error wrapping os.ErrNotExist when there
// is none.
func Find(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		for _, name := range Names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s found in %s or its parents: %w", strings.Join(Names, ", "), startDir, os.ErrNotExist)
}
