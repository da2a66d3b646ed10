// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType is the lexical category of a command-line token.
type TokenType int

const (
	TokenPositional TokenType = iota
	TokenLongOption
	TokenShortCluster
	TokenTerminator
	TokenValue
)

func (t TokenType) String() string {
	switch t {
	case TokenPositional:
		return "positional"
	case TokenLongOption:
		return "long"
	case TokenShortCluster:
		return "short"
	case TokenTerminator:
		return "terminator"
	case TokenValue:
		return "value"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a classified command-line argument.
type Token struct {
	Type  TokenType
	Index int    // position in the argument list
	Raw   string // the argument as given

	// Name is the long option name without dashes, or the characters of a
	// short cluster without the dash.
	Name string
	// Inline is the text after the first "=" when HasInline is set.
	Inline    string
	HasInline bool
}

// IsOption reports whether the token is a long option or a short cluster.
func (t Token) IsOption() bool {
	return t.Type == TokenLongOption || t.Type == TokenShortCluster
}

// Aliases returns the dashed aliases the token invokes, in order: one for a
// long option, one per character for a short cluster. Bytes that are not
// valid UTF-8 become one alias each, unchanged.
func (t Token) Aliases() []string {
	switch t.Type {
	case TokenLongOption:
		return []string{"--" + t.Name}
	case TokenShortCluster:
		var out []string
		for rest := t.Name; rest != ""; {
			_, size := utf8.DecodeRuneInString(rest)
			out = append(out, "-"+rest[:size])
			rest = rest[size:]
		}
		return out
	}
	return nil
}

func (t Token) String() string {
	switch {
	case t.IsOption() && t.HasInline:
		return fmt.Sprintf("%v(%s=%s)", t.Type, t.Name, t.Inline)
	case t.IsOption():
		return fmt.Sprintf("%v(%s)", t.Type, t.Name)
	case t.Type == TokenTerminator:
		return "terminator"
	}
	return fmt.Sprintf("%v(%s)", t.Type, t.Raw)
}

// Tokenizer classifies arguments lazily, one at a time. It never consults
// an option table; whether a plain argument is an option value is decided by
// the caller through NextValue. A Tokenizer is not safe for concurrent use.
type Tokenizer struct {
	args          []string
	pos           int
	terminated    bool
	numericShorts bool
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithNumericShorts declares that some short alias is a digit. When false
// (the default) arguments such as "-5" or "-1.5" are positional rather than
// short clusters.
func WithNumericShorts(v bool) TokenizerOption {
	return func(t *Tokenizer) { t.numericShorts = v }
}

// NewTokenizer returns a tokenizer over args. Args should not include the
// program name (os.Args[1:]).
func NewTokenizer(args []string, opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{args: args}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Tokenize classifies every argument without value coordination.
func Tokenize(args []string, opts ...TokenizerOption) []Token {
	return collect(NewTokenizer(args, opts...).All())
}

func collect(seq iter.Seq[Token]) []Token {
	var out []Token
	for tok := range seq {
		out = append(out, tok)
	}
	return out
}

// Reset rewinds the tokenizer to the first argument.
func (t *Tokenizer) Reset() {
	t.pos = 0
	t.terminated = false
}

// Done reports whether every argument was consumed.
func (t *Tokenizer) Done() bool {
	return t.pos >= len(t.args)
}

// Peek classifies the next argument without consuming it.
func (t *Tokenizer) Peek() (Token, bool) {
	if t.Done() {
		return Token{}, false
	}
	return t.classify(t.pos), true
}

// Next consumes and returns the next token.
func (t *Tokenizer) Next() (Token, bool) {
	tok, ok := t.Peek()
	if !ok {
		return Token{}, false
	}
	t.pos++
	if tok.Type == TokenTerminator {
		t.terminated = true
	}
	return tok, true
}

// NextValue consumes the next argument as an option value, provided it can
// be one: a positional, or a negative number even where short clusters are
// expected. Option-looking arguments and the terminator are left in place.
func (t *Tokenizer) NextValue() (Token, bool) {
	tok, ok := t.Peek()
	if !ok || !t.valueCandidate(tok) {
		return Token{}, false
	}
	return t.TakeValue(), true
}

// TakeValue consumes the next argument as a value unconditionally. It
// panics when no arguments remain.
func (t *Tokenizer) TakeValue() Token {
	if t.Done() {
		panic("argparse: TakeValue past end of input")
	}
	tok := Token{Type: TokenValue, Index: t.pos, Raw: t.args[t.pos]}
	t.pos++
	return tok
}

func (t *Tokenizer) valueCandidate(tok Token) bool {
	switch tok.Type {
	case TokenPositional:
		return !t.terminated
	case TokenShortCluster:
		return isNegativeNumber(tok.Raw)
	}
	return false
}

// All returns the remaining tokens as a sequence, consuming them.
func (t *Tokenizer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := t.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

func (t *Tokenizer) classify(i int) Token {
	arg := t.args[i]
	tok := Token{Type: TokenPositional, Index: i, Raw: arg}
	if t.terminated {
		return tok
	}
	switch {
	case arg == "--":
		tok.Type = TokenTerminator
	case strings.HasPrefix(arg, "--"):
		name, inline, has := strings.Cut(arg[2:], "=")
		if name == "" {
			return tok
		}
		tok.Type = TokenLongOption
		tok.Name, tok.Inline, tok.HasInline = name, inline, has
	case strings.HasPrefix(arg, "-") && len(arg) > 1:
		if !t.numericShorts && isNegativeNumber(arg) {
			return tok
		}
		name, inline, has := strings.Cut(arg[1:], "=")
		if name == "" {
			return tok
		}
		tok.Type = TokenShortCluster
		tok.Name, tok.Inline, tok.HasInline = name, inline, has
	}
	return tok
}

// isNumeric reports whether s is a decimal number such as "10", "-3.14" or
// "-1e5". Hex forms, digit separators and the NaN and Inf spellings are not
// numbers.
func isNumeric(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(".eE+-", r):
		default:
			return false
		}
	}
	if !hasDigit {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

// isNegativeNumber reports whether s is a number with a leading minus.
func isNegativeNumber(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	return isNumeric(s)
}
