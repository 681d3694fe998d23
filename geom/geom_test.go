// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package geom

import (
	"math"
	"testing"
)

func TestNormalizeRatiosSumsToOne(t *testing.T) {
	cases := [][]float64{
		{100, 150, 250},
		{1, 1, 1, 1},
		{0, 0, 0},
		{-5, 10, 20},
		{640},
	}
	for _, c := range cases {
		ratios := NormalizeRatios(c)
		if len(ratios) != len(c) {
			t.Fatalf("expected %d ratios, got %d", len(c), len(ratios))
		}
		sum := 0.0
		for _, r := range ratios {
			if r <= 0 {
				t.Fatalf("ratio %v not positive for input %v", r, c)
			}
			sum += r
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("ratios for %v sum to %v, want 1", c, sum)
		}
	}
}

func TestNormalizeRatiosRoundTrip(t *testing.T) {
	widths := []float64{120, 80, 200, 55}
	total := 0.0
	for _, w := range widths {
		total += w
	}
	ratios := NormalizeRatios(widths)
	for i, r := range ratios {
		back := math.Round(r * total)
		if math.Abs(back-widths[i]) > 1 {
			t.Errorf("column %d: round-trip %v, want %v ±1", i, back, widths[i])
		}
	}
}

func TestNormalizeRatiosEmpty(t *testing.T) {
	if got := NormalizeRatios(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestRoundToStep(t *testing.T) {
	if got := RoundToStep(37, 8); got != 40 {
		t.Errorf("RoundToStep(37,8) = %v, want 40", got)
	}
	if got := RoundToStep(36, 8); got != 40 {
		t.Errorf("RoundToStep(36,8) = %v, want 40", got)
	}
	if got := RoundToStep(35, 8); got != 32 {
		t.Errorf("RoundToStep(35,8) = %v, want 32", got)
	}
	if got := RoundToStep(123.4, 0); got != 123.4 {
		t.Errorf("RoundToStep with step 0 should be identity, got %v", got)
	}
	if got := RoundToStep(123.4, -2); got != 123.4 {
		t.Errorf("RoundToStep with negative step should be identity, got %v", got)
	}
}

func TestRedistributeSnapScenario(t *testing.T) {
	// Two adjacent 200px columns, drag +37 with min 60 and snap step 8.
	left, right := Redistribute(200, 200, 400, 37, 60, 8, false)
	if left != 240 {
		t.Errorf("newLeft = %v, want 240", left)
	}
	if right != 160 {
		t.Errorf("newRight = %v, want 160", right)
	}
}

func TestRedistributeBypassSnap(t *testing.T) {
	left, right := Redistribute(200, 200, 400, 37, 60, 8, true)
	if left != 237 || right != 163 {
		t.Errorf("bypass snap: got %v/%v, want 237/163", left, right)
	}
}

func TestRedistributeInvariants(t *testing.T) {
	cases := []struct {
		left, total, delta, min, step float64
		bypass                        bool
	}{
		{200, 400, 37, 60, 8, false},
		{200, 400, -500, 60, 8, false},
		{200, 400, 500, 60, 0, false},
		{100, 300, 150, 40, 10, true},
		{60, 120, -1, 60, 8, false},
	}
	for _, c := range cases {
		l, r := Redistribute(c.left, c.total-c.left, c.total, c.delta, c.min, c.step, c.bypass)
		if l < c.min {
			t.Errorf("newLeft %v below min %v (case %+v)", l, c.min, c)
		}
		if r < c.min {
			t.Errorf("newRight %v below min %v (case %+v)", r, c.min, c)
		}
		if math.Abs(l+r-c.total) > 1e-9 {
			t.Errorf("extents sum %v, want %v (case %+v)", l+r, c.total, c)
		}
	}
}

func TestRedistributeClampThenSnapOrder(t *testing.T) {
	// A raw clamp to 340 followed by snapping must not escape the bound:
	// 400-60=340 is not a multiple of 8; snapping 340 yields 336 inside
	// bounds, not 344 outside.
	left, right := Redistribute(200, 200, 400, 500, 60, 8, false)
	if left > 340 {
		t.Fatalf("snap pushed newLeft out of bounds: %v", left)
	}
	if left != 336 {
		t.Errorf("newLeft = %v, want 336", left)
	}
	if right != 64 {
		t.Errorf("newRight = %v, want 64", right)
	}
}
