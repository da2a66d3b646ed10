// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var DefaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Progress is a single-line "label done/total" counter with a spinner frame,
// redrawn in place. Done may be called from many goroutines.
type Progress struct {
	out      io.Writer
	frames   []string
	interval time.Duration
	color    Colorizer
	label    string

	mu      sync.Mutex
	done    int
	total   int
	idx     int
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type ProgressOption func(*Progress)

func WithFrames(frames []string) ProgressOption {
	return func(p *Progress) {
		if len(frames) > 0 {
			p.frames = frames
		}
	}
}

func WithInterval(d time.Duration) ProgressOption {
	return func(p *Progress) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithColor(c Colorizer) ProgressOption {
	return func(p *Progress) { p.color = c }
}

func NewProgress(out io.Writer, label string, opts ...ProgressOption) *Progress {
	p := &Progress{
		out:      out,
		label:    label,
		frames:   DefaultFrames,
		interval: 120 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins redrawing with total expected steps.
func (p *Progress) Start(total int) {
	p.mu.Lock()
	p.total = total
	p.done = 0
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	p.stopCh, p.doneCh = stopCh, doneCh
	p.mu.Unlock()

	p.render()
	go p.loop(stopCh, doneCh)
}

// Done records one finished step.
func (p *Progress) Done() {
	p.mu.Lock()
	p.done++
	p.mu.Unlock()
}

// Count returns the finished and total steps.
func (p *Progress) Count() (done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.total
}

// Stop halts redrawing and clears the line.
func (p *Progress) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	<-doneCh
	fmt.Fprint(p.out, "\r\033[K")
}

// loop redraws until stopCh is closed, then closes doneCh.
func (p *Progress) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			p.idx = (p.idx + 1) % len(p.frames)
			p.mu.Unlock()
			p.render()
		case <-stopCh:
			return
		}
	}
}

func (p *Progress) render() {
	p.mu.Lock()
	frame := p.frames[p.idx%len(p.frames)]
	line := fmt.Sprintf("%s %s %d/%d", p.color.Warn(frame), p.label, p.done, p.total)
	p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K%s", line)
}
