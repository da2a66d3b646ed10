// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Struct tags understood by DescriptorsFromStruct and Result.Decode:
//
//	type Flags struct {
//	    Verbose int      `flag:"verbose" short:"v" count:"true" help:"More output"`
//	    Mode    string   `flag:"mode" choices:"fast,slow" required:"true"`
//	    Out     string   `flag:"output" short:"o" kind:"path" default:"-"`
//	    Tags    []string `flag:"tag" max:"3"`
//	    JSON    bool     `flag:"json" group:"format"`
//	    YAML    bool     `flag:"yaml" group:"format"`
//	    Files   []string `pos:"*"`
//	}
//
// The flag name defaults to the lowercased field name; `flag:"-"` skips a
// field. Bool fields are flags, slices have arity many and are repeatable,
// everything else has arity one. Fields tagged `pos:"N"` receive the Nth
// positional and `pos:"*"` the positionals not claimed by index.

var (
	durationType = reflect.TypeOf(time.Duration(0))
	urlType      = reflect.TypeOf(url.URL{})
	urlPtrType   = reflect.TypeOf((*url.URL)(nil))
	versionType  = reflect.TypeOf((*semver.Version)(nil))
)

// DescriptorsFromStruct derives option descriptors from the tagged fields
// of v, a struct or pointer to struct.
func DescriptorsFromStruct(v any) ([]Descriptor, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("argparse: %T is not a struct", v)
	}
	var out []Descriptor
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if _, ok := field.Tag.Lookup("pos"); ok {
			continue
		}
		d, ok, err := descriptorFromField(field)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func flagName(field reflect.StructField) string {
	if name := field.Tag.Get("flag"); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

func descriptorFromField(field reflect.StructField) (Descriptor, bool, error) {
	tag := field.Tag
	if tag.Get("flag") == "-" {
		return Descriptor{}, false, nil
	}
	d := Descriptor{
		Name: flagName(field),
		Help: tag.Get("help"),
	}
	if short := tag.Get("short"); short != "" {
		d.Aliases = append(d.Aliases, short)
	}
	if aliases := tag.Get("aliases"); aliases != "" {
		d.Aliases = append(d.Aliases, splitList(aliases)...)
	}
	d.Group = tag.Get("group")
	var err error
	if d.Required, err = boolTag(tag, "required"); err != nil {
		return d, false, err
	}
	if d.NonEmpty, err = boolTag(tag, "nonempty"); err != nil {
		return d, false, err
	}
	counted, err := boolTag(tag, "count")
	if err != nil {
		return d, false, err
	}

	ft := field.Type
	if ft.Kind() == reflect.Slice {
		d.Arity = ArityMany
		d.Repeatable = true
		ft = ft.Elem()
	} else {
		d.Arity = ArityOne
	}
	switch {
	case counted:
		if !isIntType(ft) {
			return d, false, fmt.Errorf("count tag requires an integer field, got %s", field.Type)
		}
		d.Arity = ArityZero
		d.Repeatable = true
	case ft.Kind() == reflect.Bool && d.Arity == ArityOne && tag.Get("kind") == "":
		d.Arity = ArityZero
	default:
		kind, err := kindOf(ft)
		if err != nil {
			return d, false, err
		}
		d.Kind = kind
	}

	if k := tag.Get("kind"); k != "" {
		if err := d.Kind.UnmarshalText([]byte(k)); err != nil {
			return d, false, err
		}
	}
	if choices := tag.Get("choices"); choices != "" {
		d.Choices = splitList(choices)
		d.Kind = KindChoice
	}
	if def, ok := tag.Lookup("default"); ok && d.Arity != ArityZero {
		if d.Arity == ArityMany {
			d.Default = splitList(def)
		} else {
			d.Default = def
		}
	} else if ok {
		b, err := strconv.ParseBool(def)
		if err != nil {
			return d, false, fmt.Errorf("invalid flag default %q: %w", def, err)
		}
		d.Default = b
	}
	for _, bound := range []struct {
		key string
		dst *int
	}{{"min", &d.MinValues}, {"max", &d.MaxValues}} {
		if s := tag.Get(bound.key); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return d, false, fmt.Errorf("invalid %s tag %q: %w", bound.key, s, err)
			}
			*bound.dst = n
		}
	}
	if counted && d.Default != nil {
		return d, false, fmt.Errorf("count fields cannot have a default")
	}
	return d, true, nil
}

func kindOf(t reflect.Type) (Kind, error) {
	switch {
	case t == durationType:
		return KindDuration, nil
	case t == urlType || t == urlPtrType:
		return KindURL, nil
	case t == versionType:
		return KindVersion, nil
	case t.Kind() == reflect.Ptr:
		return kindOf(t.Elem())
	case t.Kind() == reflect.String:
		return KindString, nil
	case t.Kind() == reflect.Bool:
		return KindBool, nil
	case isIntType(t):
		return KindInt, nil
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return KindFloat, nil
	}
	return KindNone, fmt.Errorf("unsupported field type %s", t)
}

func isIntType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func boolTag(tag reflect.StructTag, key string) (bool, error) {
	s, ok := tag.Lookup(key)
	if !ok || s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s tag %q: %w", key, s, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Decode populates the tagged struct pointed to by dst from the result.
// Absent options leave their field untouched unless they have a default.
func (r *Result) Decode(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("argparse: Decode needs a non-nil struct pointer, got %T", dst)
	}
	v = v.Elem()
	t := v.Type()

	claimed := map[int]bool{}
	var rest []reflect.Value
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if pos, ok := field.Tag.Lookup("pos"); ok {
			if pos == "*" {
				rest = append(rest, fv)
				continue
			}
			n, err := strconv.Atoi(pos)
			if err != nil {
				return fmt.Errorf("field %s: invalid pos tag %q", field.Name, pos)
			}
			claimed[n] = true
			if n >= len(r.positionals) {
				continue
			}
			if err := setPositional(fv, field, r.positionals[n]); err != nil {
				return err
			}
			continue
		}
		if field.Tag.Get("flag") == "-" {
			continue
		}
		name := flagName(field)
		if counted, _ := boolTag(field.Tag, "count"); counted {
			if isIntType(fv.Type()) {
				fv.SetInt(int64(r.Count(name)))
			}
			continue
		}
		var vals []any
		if fv.Kind() == reflect.Slice {
			vals = r.Values(name)
		} else if val, ok := r.Get(name); ok {
			vals = []any{val}
		}
		if len(vals) == 0 {
			continue
		}
		if err := setField(fv, vals); err != nil {
			return &Error{
				Kind:   InvalidValue,
				Index:  NoIndex,
				Option: name,
				Value:  fmt.Sprint(vals),
				Msg:    fmt.Sprintf("cannot store %s in field %s: %v", name, field.Name, err),
				Err:    err,
			}
		}
	}

	var unclaimed []string
	for i, p := range r.positionals {
		if !claimed[i] {
			unclaimed = append(unclaimed, p)
		}
	}
	for _, fv := range rest {
		if fv.Kind() != reflect.Slice || fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("argparse: pos:\"*\" field must be []string, got %s", fv.Type())
		}
		fv.Set(reflect.ValueOf(append([]string{}, unclaimed...)).Convert(fv.Type()))
	}
	return nil
}

func setPositional(fv reflect.Value, field reflect.StructField, raw string) error {
	kind, err := kindOf(fv.Type())
	if err != nil {
		return fmt.Errorf("field %s: %w", field.Name, err)
	}
	d := Descriptor{Name: field.Name, Arity: ArityOne, Kind: kind}
	if choices := field.Tag.Get("choices"); choices != "" {
		d.Kind = KindChoice
		d.Choices = splitList(choices)
	}
	val, err := Convert(d, raw)
	if err != nil {
		return err
	}
	return setField(fv, []any{val})
}

// setField stores converted values into fv. Slices receive every value,
// scalars the last one.
func setField(fv reflect.Value, vals []any) error {
	if fv.Kind() == reflect.Slice {
		slice := reflect.MakeSlice(fv.Type(), 0, len(vals))
		for _, val := range vals {
			elem := reflect.New(fv.Type().Elem()).Elem()
			if err := setScalar(elem, val); err != nil {
				return err
			}
			slice = reflect.Append(slice, elem)
		}
		fv.Set(slice)
		return nil
	}
	return setScalar(fv, vals[len(vals)-1])
}

func setScalar(fv reflect.Value, val any) error {
	switch x := val.(type) {
	case *url.URL:
		switch fv.Type() {
		case urlPtrType:
			fv.Set(reflect.ValueOf(x))
			return nil
		case urlType:
			fv.Set(reflect.ValueOf(*x))
			return nil
		}
	case *semver.Version:
		if fv.Type() == versionType {
			fv.Set(reflect.ValueOf(x))
			return nil
		}
	case time.Duration:
		if fv.Type() == durationType {
			fv.SetInt(int64(x))
			return nil
		}
	}

	if fv.Kind() == reflect.Ptr {
		elem := reflect.New(fv.Type().Elem())
		if err := setScalar(elem.Elem(), val); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		s, ok := val.(string)
		if !ok {
			break
		}
		fv.SetString(s)
		return nil
	case reflect.Bool:
		b, ok := val.(bool)
		if !ok {
			break
		}
		fv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := val.(int64)
		if !ok {
			break
		}
		if fv.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %s", i, fv.Type())
		}
		fv.SetInt(i)
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := val.(float64)
		if !ok {
			break
		}
		fv.SetFloat(f)
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", val, fv.Type())
}

// ParseResult is the typed outcome of ParseInto.
type ParseResult[T any] struct {
	Flags  T
	Args   []string
	Result *Result
}

// ParseInto declares a table from the tags of T, parses args against it and
// decodes the result into a T.
func ParseInto[T any](args []string) (*ParseResult[T], error) {
	var flags T
	descs, err := DescriptorsFromStruct(flags)
	if err != nil {
		return nil, err
	}
	t, err := NewTable(descs, groupRulesFromStruct(flags)...)
	if err != nil {
		return nil, err
	}
	res, err := Parse(t, args)
	if err != nil {
		return nil, err
	}
	if err := res.Decode(&flags); err != nil {
		return nil, err
	}
	return &ParseResult[T]{Flags: flags, Args: res.Positionals(), Result: res}, nil
}

// groupRulesFromStruct returns a required GroupRule for every group named in
// a `groupRequired:"true"` tag.
func groupRulesFromStruct(v any) []GroupRule {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var rules []GroupRule
	seen := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		g := field.Tag.Get("group")
		if g == "" || seen[g] {
			continue
		}
		if req, _ := boolTag(field.Tag, "groupRequired"); req {
			seen[g] = true
			rules = append(rules, GroupRule{Name: g, Required: true})
		}
	}
	return rules
}
