// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: geom/geom.go
// Summary: Pure numeric helpers for ratio-based sizing.

// Package geom provides the arithmetic used by the layout engine: ratio
// normalization, step rounding, and delta redistribution between two
// adjacent extents. All functions are pure and total.
package geom

import "math"

// NormalizeRatios converts a slice of extents into ratios that sum to 1.
// Each extent is floored at 1 before normalization so zero or negative
// inputs cannot produce division artifacts. An empty slice returns nil;
// a non-positive total yields a uniform 1/n split.
func NormalizeRatios(extents []float64) []float64 {
	n := len(extents)
	if n == 0 {
		return nil
	}

	floored := make([]float64, n)
	total := 0.0
	for i, e := range extents {
		if e < 1 {
			e = 1
		}
		floored[i] = e
		total += e
	}

	ratios := make([]float64, n)
	if total <= 0 {
		equal := 1.0 / float64(n)
		for i := range ratios {
			ratios[i] = equal
		}
		return ratios
	}

	for i, e := range floored {
		ratios[i] = e / total
	}
	return ratios
}

// RoundToStep rounds v to the nearest multiple of step. It is the identity
// when step is not positive.
func RoundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// Redistribute moves delta pixels from the right extent to the left one
// (negative delta moves the other way) while keeping their sum equal to
// total. The new left extent is clamped to [minExtent, total-minExtent],
// then snapped to the nearest multiple of snapStep (unless bypassSnap is
// set or snapStep is not positive), then clamped again. Snapping before
// clamping could push a value back out of bounds, so the order matters.
//
// Callers must guarantee minExtent*2 <= total. If that is violated the
// result favors minExtent and the extents will not sum exactly to total.
func Redistribute(left, right, total, delta, minExtent, snapStep float64, bypassSnap bool) (newLeft, newRight float64) {
	_ = right // right is implied by total-left; kept for call-site clarity

	newLeft = clamp(left+delta, minExtent, total-minExtent)
	if !bypassSnap && snapStep > 0 {
		newLeft = clamp(RoundToStep(newLeft, snapStep), minExtent, total-minExtent)
	}
	newRight = total - newLeft
	if newRight < minExtent {
		newRight = minExtent
	}
	return newLeft, newRight
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
