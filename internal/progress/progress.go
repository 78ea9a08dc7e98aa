// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress renders comparison progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/schollz/progressbar/v2"
)

// steps is the resolution of the bar
const steps = 1000

// Bar reports fractions on a progress bar
type Bar struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	writer   io.Writer
	last     int
	finished bool
}

// NewBar creates a bar that writes to w
func NewBar(w io.Writer, description string) *Bar {
	return &Bar{
		writer: w,
		bar: progressbar.NewOptions(steps,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(40),
		),
	}
}

// Report moves the bar to fraction, clamped to [0, 1]. The bar never moves
// backwards.
func (b *Bar) Report(fraction float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	n := int(math.Round(clamp(fraction) * steps))
	if n <= b.last {
		return
	}
	b.last = n
	_ = b.bar.Set(n)
}

// Finish completes the bar and ends its line
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true
	_ = b.bar.Finish()
	fmt.Fprintln(b.writer)
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Nop discards progress
type Nop struct{}

func (Nop) Report(float64) {}
func (Nop) Finish()        {}
