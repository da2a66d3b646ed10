// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"tailscale.com/util/set"
)

// converter turns a raw token into a typed value. Conversion errors are
// plain errors; the engine wraps them into an InvalidValue diagnostic.
type converter func(d *Descriptor, raw string) (any, error)

var errEmpty = errors.New("value must not be empty")

var converters = map[Kind]converter{
	KindString:   convertString,
	KindInt:      convertInt,
	KindFloat:    convertFloat,
	KindBool:     convertBool,
	KindChoice:   convertChoice,
	KindPath:     convertString,
	KindDuration: convertDuration,
	KindURL:      convertURL,
	KindVersion:  convertVersion,
}

// converter returns the conversion function for k, or nil for KindNone.
func (k Kind) converter() converter {
	return converters[k]
}

// Convert converts raw according to d's kind. Callers use it to convert
// positional arguments with the same rules the engine applies to option
// values. The returned error is an *Error of kind InvalidValue with no
// token position.
func Convert(d Descriptor, raw string) (any, error) {
	if d.Kind == KindNone {
		d.Kind = KindString
	}
	conv := d.Kind.converter()
	if conv == nil {
		return nil, fmt.Errorf("no converter for kind %v", d.Kind)
	}
	v, err := conv(&d, raw)
	if err != nil {
		return nil, invalidValue(&d, "", NoIndex, raw, err)
	}
	return v, nil
}

func invalidValue(d *Descriptor, alias string, index int, raw string, err error) *Error {
	e := &Error{
		Kind:      InvalidValue,
		Index:     index,
		Raw:       raw,
		Option:    d.Name,
		Alias:     alias,
		ValueKind: d.Kind,
		Value:     raw,
		Err:       err,
	}
	if d.Kind == KindChoice {
		e.Choices = d.Choices
	}
	return e
}

func convertString(d *Descriptor, raw string) (any, error) {
	if raw == "" && d.NonEmpty {
		return nil, errEmpty
	}
	return raw, nil
}

func convertInt(_ *Descriptor, raw string) (any, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return nil, fmt.Errorf("integer out of range: %w", numErr.Err)
		}
		return nil, fmt.Errorf("not an integer: %w", err)
	}
	return i, nil
}

// convertFloat accepts decimal notation only: NaN, Inf and hex floats are
// rejected even though strconv parses them.
func convertFloat(_ *Descriptor, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if !isNumeric(s) {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("float out of range: %w", strconv.ErrRange)
		}
		return nil, fmt.Errorf("not a number: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a finite number: %q", s)
	}
	return f, nil
}

func convertBool(_ *Descriptor, raw string) (any, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return nil, errors.New("expected true, false, 1, 0, yes or no")
}

func convertChoice(d *Descriptor, raw string) (any, error) {
	if set.Of(d.Choices...).Contains(raw) {
		return raw, nil
	}
	return nil, fmt.Errorf("must be one of %s", strings.Join(d.Choices, ", "))
}

func convertDuration(_ *Descriptor, raw string) (any, error) {
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return nil, err
	}
	return dur, nil
}

func convertURL(_ *Descriptor, raw string) (any, error) {
	if raw == "" {
		return nil, errEmpty
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func convertVersion(_ *Descriptor, raw string) (any, error) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// normalizeDefault converts a declared default into the typed value the
// converter would produce. Numeric defaults decoded from TOML or YAML arrive
// as int, int64 or float64 and are accepted for the matching kinds.
func normalizeDefault(d *Descriptor) (any, error) {
	if d.Default == nil {
		return nil, nil
	}
	if d.Arity == ArityZero {
		b, ok := d.Default.(bool)
		if !ok {
			return nil, fmt.Errorf("flag default must be a bool, got %T", d.Default)
		}
		return b, nil
	}
	if d.Arity == ArityMany {
		var raws []any
		switch v := d.Default.(type) {
		case []string:
			for _, s := range v {
				raws = append(raws, s)
			}
		case []any:
			raws = v
		default:
			raws = []any{v}
		}
		out := make([]any, 0, len(raws))
		for _, r := range raws {
			v, err := normalizeScalar(d, r)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return normalizeScalar(d, d.Default)
}

func normalizeScalar(d *Descriptor, v any) (any, error) {
	if s, ok := v.(string); ok {
		return d.Kind.converter()(d, s)
	}
	switch d.Kind {
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case int32:
			return int64(n), nil
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindDuration:
		if dur, ok := v.(time.Duration); ok {
			return dur, nil
		}
	case KindURL:
		if u, ok := v.(*url.URL); ok {
			return u, nil
		}
	case KindVersion:
		if sv, ok := v.(*semver.Version); ok {
			return sv, nil
		}
	}
	return nil, fmt.Errorf("default %v (%T) does not match kind %v", v, v, d.Kind)
}
