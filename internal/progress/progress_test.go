// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{1.5, 1},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := clamp(tc.in); got != tc.want {
			t.Errorf("clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBar_ReportAndFinish(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "comparing")

	bar.Report(0.5)
	if bar.last != 500 {
		t.Errorf("last = %d, want 500", bar.last)
	}

	// Going backwards is ignored
	bar.Report(0.25)
	if bar.last != 500 {
		t.Errorf("last = %d after backwards report, want 500", bar.last)
	}

	bar.Report(1.0)
	bar.Finish()
	bar.Finish()
	bar.Report(0.9)

	if bar.last != steps {
		t.Errorf("last = %d, want %d", bar.last, steps)
	}
	if !strings.Contains(buf.String(), "comparing") {
		t.Errorf("expected description in output, got %q", buf.String())
	}
}
