// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"tailscale.com/types/logger"
)

// Parser matches command-line arguments against a Table.
//
// The zero configuration fails fast: Parse returns the first diagnostic and
// a nil Result. With CollectAll set, Parse walks the whole input and returns
// every diagnostic as Errors together with a Result holding all valid
// occurrences.
//
// Arguments that start with a dash but match no alias are UnknownOption
// errors unless AllowUnknown is set, in which case they are passed through
// as positionals. Negative numbers such as "-5" are positionals whenever
// the table has no digit alias, and are always accepted as the value of a
// pending option.
type Parser struct {
	Table        *Table
	CollectAll   bool
	AllowUnknown bool
	// Logf, if non-nil, receives a trace of matching decisions.
	Logf logger.Logf
}

// Parse parses args against t with the default fail-fast configuration.
func Parse(t *Table, args []string) (*Result, error) {
	p := &Parser{Table: t}
	return p.Parse(args)
}

// Parse parses args. Args should not include the program name.
func (p *Parser) Parse(args []string) (*Result, error) {
	return p.ParseTokens(p.Table.Tokenizer(args))
}

// ParseTokens consumes tz to the end.
func (p *Parser) ParseTokens(tz *Tokenizer) (*Result, error) {
	s := newState(p.Table, p.CollectAll)
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		var stop bool
		switch tok.Type {
		case TokenTerminator:
			p.logf("argparse: token %d: terminator", tok.Index)
		case TokenLongOption:
			stop = p.matchLong(s, tz, tok)
		case TokenShortCluster:
			stop = p.matchShort(s, tz, tok)
		default:
			s.positionals = append(s.positionals, tok.Raw)
		}
		if stop {
			return nil, s.errs[0]
		}
	}
	if s.finish() {
		return nil, s.errs[0]
	}
	if len(s.errs) == 0 {
		return s.result(), nil
	}
	if !p.CollectAll {
		return nil, s.errs[0]
	}
	return s.result(), s.errs
}

func (p *Parser) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

func (p *Parser) matchLong(s *state, tz *Tokenizer, tok Token) bool {
	alias := "--" + tok.Name
	idx, ok := s.t.resolve(alias)
	if !ok {
		return p.unknown(s, tok, alias)
	}
	return p.occurrence(s, tz, tok, idx, alias, tok.Inline, tok.HasInline)
}

func (p *Parser) matchShort(s *state, tz *Tokenizer, tok Token) bool {
	aliases := tok.Aliases()
	if p.AllowUnknown {
		for _, a := range aliases {
			if _, ok := s.t.resolve(a); !ok {
				return p.unknown(s, tok, a)
			}
		}
	}
	for i, alias := range aliases {
		idx, ok := s.t.resolve(alias)
		if !ok {
			// The rest of the cluster is not interpreted.
			return p.unknown(s, tok, alias)
		}
		if i == len(aliases)-1 {
			return p.occurrence(s, tz, tok, idx, alias, tok.Inline, tok.HasInline)
		}
		d := s.t.opts[idx]
		if d.TakesValue() {
			// Only the last option of a cluster may take a value.
			s.mentioned.Add(idx)
			e := &Error{Kind: MissingValue, Index: tok.Index, Raw: tok.Raw, Option: d.Name, Alias: alias}
			if s.fail(e) {
				return true
			}
			continue
		}
		if p.occurrence(s, tz, tok, idx, alias, "", false) {
			return true
		}
	}
	return false
}

func (p *Parser) unknown(s *state, tok Token, alias string) bool {
	if p.AllowUnknown {
		p.logf("argparse: token %d: passing unknown %q through", tok.Index, tok.Raw)
		s.positionals = append(s.positionals, tok.Raw)
		return false
	}
	return s.fail(&Error{Kind: UnknownOption, Index: tok.Index, Raw: tok.Raw, Alias: alias})
}

// rawValue is a value taken from the input, before conversion.
type rawValue struct {
	index int
	text  string
}

// occurrence handles one invocation of the descriptor at idx: it gathers
// the values demanded by its arity, converts them, and applies the
// per-occurrence rules. It reports whether parsing must stop.
func (p *Parser) occurrence(s *state, tz *Tokenizer, tok Token, idx int, alias, inline string, hasInline bool) bool {
	d := s.t.opts[idx]
	s.mentioned.Add(idx)
	p.logf("argparse: token %d: %s -> %s (%v)", tok.Index, alias, d.Name, d.Arity)

	var raws []rawValue
	switch d.Arity {
	case ArityZero:
		if hasInline {
			return s.fail(&Error{
				Kind:   UnexpectedValue,
				Index:  tok.Index,
				Raw:    tok.Raw,
				Option: d.Name,
				Alias:  alias,
				Value:  inline,
			})
		}
	case ArityOne:
		if hasInline {
			raws = append(raws, rawValue{tok.Index, inline})
			break
		}
		v, ok := p.takeOne(s, tz)
		if !ok {
			return s.fail(missingValue(d, tok, alias))
		}
		raws = append(raws, v)
	case ArityMany:
		if hasInline {
			raws = append(raws, rawValue{tok.Index, inline})
		} else {
			for d.MaxValues == 0 || len(raws) < d.MaxValues {
				vt, ok := tz.NextValue()
				if !ok {
					break
				}
				raws = append(raws, rawValue{vt.Index, vt.Raw})
			}
		}
		if len(raws) < d.minValues() {
			return s.fail(missingValue(d, tok, alias))
		}
	}

	vals := make([]any, 0, max(len(raws), 1))
	if d.Arity == ArityZero {
		vals = append(vals, true)
	}
	conv := d.Kind.converter()
	bad := false
	for _, rv := range raws {
		v, err := conv(d, rv.text)
		if err != nil {
			bad = true
			if s.fail(invalidValue(d, alias, rv.index, rv.text, err)) {
				return true
			}
			continue
		}
		vals = append(vals, v)
	}
	if bad {
		return false
	}

	if s.seen.Contains(idx) && !d.Repeatable {
		return s.fail(&Error{
			Kind:   DuplicateOption,
			Index:  tok.Index,
			Raw:    tok.Raw,
			Option: d.Name,
			Alias:  alias,
		})
	}
	if d.Group != "" {
		if first, ok := s.groupFirst[d.Group]; ok && first != idx {
			return s.fail(&Error{
				Kind:   MutuallyExclusive,
				Index:  tok.Index,
				Raw:    tok.Raw,
				Option: d.Name,
				Alias:  alias,
				Other:  s.t.opts[first].Name,
				Group:  d.Group,
			})
		}
	}
	s.record(idx, vals)
	return false
}

// takeOne takes the single value of an ArityOne option. The next argument
// is refused when it is the terminator or an option the table recognizes;
// negative numbers and unrecognized dash arguments are accepted.
func (p *Parser) takeOne(s *state, tz *Tokenizer) (rawValue, bool) {
	next, ok := tz.Peek()
	if !ok || next.Type == TokenTerminator {
		return rawValue{}, false
	}
	if next.IsOption() && !isNegativeNumber(next.Raw) && s.recognizes(next) {
		return rawValue{}, false
	}
	vt := tz.TakeValue()
	return rawValue{vt.Index, vt.Raw}, true
}

// recognizes reports whether an option token names a known alias. For a
// short cluster only the first character is considered.
func (s *state) recognizes(tok Token) bool {
	aliases := tok.Aliases()
	if len(aliases) == 0 {
		return false
	}
	_, ok := s.t.resolve(aliases[0])
	return ok
}

func missingValue(d *Descriptor, tok Token, alias string) *Error {
	return &Error{
		Kind:   MissingValue,
		Index:  tok.Index,
		Raw:    tok.Raw,
		Option: d.Name,
		Alias:  alias,
	}
}
