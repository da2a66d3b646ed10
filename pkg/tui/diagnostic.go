// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yeetrun/argparse/pkg/argparse"
)

// RenderDiagnostics writes every diagnostic carried by err. Errors that are
// not argparse diagnostics are written as a single line.
func RenderDiagnostics(w io.Writer, c Colorizer, program string, args []string, err error) {
	diags := argparse.Diagnostics(err)
	if len(diags) == 0 {
		fmt.Fprintf(w, "%s %v\n", c.Error("error:"), err)
		return
	}
	for _, e := range diags {
		RenderDiagnostic(w, c, program, args, e)
	}
}

// RenderDiagnostic writes e and, when it points at a token, the command line
// with the token underlined:
//
//	error: invalid-value at token 1 ("abc"): invalid integer value "abc" for -c
//	  $ prog -c abc
//	            ^^^
func RenderDiagnostic(w io.Writer, c Colorizer, program string, args []string, e *argparse.Error) {
	fmt.Fprintf(w, "%s %s\n", c.Error("error:"), e.Error())
	if e.Index < 0 || e.Index >= len(args) {
		return
	}
	const prompt = "  $ "
	words := make([]string, 0, len(args)+1)
	if program != "" {
		words = append(words, program)
	}
	col := utf8.RuneCountInString(prompt)
	for i, a := range args {
		q := quoteArg(a)
		if i == e.Index {
			col += width(strings.Join(words, " "))
			if len(words) > 0 {
				col++
			}
		}
		words = append(words, q)
	}
	marker := strings.Repeat("^", max(width(quoteArg(args[e.Index])), 1))
	fmt.Fprintf(w, "%s%s\n", prompt, strings.Join(words, " "))
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", col), c.Warn(marker))
}

// quoteArg quotes arguments that would not survive a shell round trip as
// written.
func quoteArg(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`"'\$`+"`", r) || !unicode.IsPrint(r)
	}) {
		return strconv.Quote(s)
	}
	return s
}

func width(s string) int { return utf8.RuneCountInString(s) }
