// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Colorizer colors terminal output. The zero value writes plain text.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns an enabled Colorizer when enabled is set, NO_COLOR is
// unset, TERM is not dumb and out is a terminal. A nil out skips the
// terminal check.
func NewColorizer(out io.Writer, enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return Colorizer{}
	}
	if f, ok := out.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

func (c Colorizer) paint(text string, attrs ...color.Attribute) string {
	if !c.Enabled {
		return text
	}
	p := color.New(attrs...)
	p.EnableColor()
	return p.Sprint(text)
}

func (c Colorizer) Error(text string) string { return c.paint(text, color.FgRed, color.Bold) }
func (c Colorizer) Warn(text string) string  { return c.paint(text, color.FgYellow) }
func (c Colorizer) OK(text string) string    { return c.paint(text, color.FgGreen) }
func (c Colorizer) Dim(text string) string   { return c.paint(text, color.FgHiBlack) }
func (c Colorizer) Bold(text string) string  { return c.paint(text, color.Bold) }
