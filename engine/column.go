// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/column.go
// Summary: Column-boundary resize: pointer drag, keyboard, and the
// configured double-action.

package engine

import (
	"math"

	"github.com/framegrace/tabulon/geom"
)

// ColumnDrag tracks one column-boundary drag interaction. The two adjacent
// widths are sampled at interaction start; every move redistributes the
// cursor delta against those start values, so raw pointer jitter never
// accumulates.
type ColumnDrag struct {
	e          *Engine
	b          *binding
	boundary   int
	startX     float64
	startLeft  float64
	startRight float64
	finished   bool
}

// StartColumnDrag begins a drag on the boundary between columns boundary
// and boundary+1. Returns nil when the element is not bound or the boundary
// is out of range.
func (e *Engine) StartColumnDrag(t Table, boundary int, startX float64) *ColumnDrag {
	b := e.bound(t)
	if b == nil {
		return nil
	}
	if boundary < 0 || boundary >= columnCount(t)-1 {
		return nil
	}
	return &ColumnDrag{
		e:          e,
		b:          b,
		boundary:   boundary,
		startX:     startX,
		startLeft:  t.ColumnWidth(boundary),
		startRight: t.ColumnWidth(boundary + 1),
	}
}

// Move applies the current cursor position live. bypassSnap is set while
// the snap-bypass modifier is held.
func (d *ColumnDrag) Move(x float64, bypassSnap bool) {
	if d == nil || d.finished {
		return
	}
	s := d.e.settings
	total := d.startLeft + d.startRight
	left, right := geom.Redistribute(
		d.startLeft, d.startRight, total,
		x-d.startX,
		s.MinColumnWidth, s.SnapStep, bypassSnap,
	)
	t := d.b.table
	t.SetColumnWidth(d.boundary, left)
	t.SetColumnWidth(d.boundary+1, right)
}

// Finish reads back all current column widths, normalizes them to ratios,
// and commits a new record.
func (d *ColumnDrag) Finish() {
	if d == nil || d.finished {
		return
	}
	d.finished = true
	d.e.commitColumns(d.b)
}

// ResizeColumnKey is the keyboard equivalent of a column drag: dir is -1 or
// +1, fine reduces the step to one pixel. Each keypress commits.
func (e *Engine) ResizeColumnKey(t Table, boundary, dir int, fine bool) {
	b := e.bound(t)
	if b == nil || boundary < 0 || boundary >= columnCount(t)-1 {
		return
	}
	step := e.settings.KeyboardStep
	if fine {
		step = 1
	}
	left := t.ColumnWidth(boundary)
	right := t.ColumnWidth(boundary + 1)
	total := left + right
	// Keyboard steps are deliberate; snapping would fight them.
	newLeft, newRight := geom.Redistribute(
		left, right, total,
		float64(dir)*step,
		e.settings.MinColumnWidth, 0, true,
	)
	t.SetColumnWidth(boundary, newLeft)
	t.SetColumnWidth(boundary+1, newRight)
	e.commitColumns(b)
}

// ColumnDoubleAction runs the configured double-click / Enter / Space action
// for the boundary's handle.
func (e *Engine) ColumnDoubleAction(t Table, boundary int) {
	b := e.bound(t)
	if b == nil || boundary < 0 || boundary >= columnCount(t)-1 {
		return
	}
	left := t.ColumnWidth(boundary)
	right := t.ColumnWidth(boundary + 1)
	total := left + right

	var newLeft, newRight float64
	switch e.settings.DoubleAction {
	case DoubleActionAutofit:
		target := e.autofitTarget(t, boundary)
		newLeft, newRight = geom.Redistribute(
			left, right, total,
			target-left,
			e.settings.MinColumnWidth, 0, true,
		)
	case DoubleActionReset:
		// Even split; the larger half favors the left column on odd
		// totals.
		newLeft = math.Ceil(total / 2)
		newRight = total - newLeft
		if newLeft < e.settings.MinColumnWidth || newRight < e.settings.MinColumnWidth {
			return
		}
	default:
		return
	}

	t.SetColumnWidth(boundary, newLeft)
	t.SetColumnWidth(boundary+1, newRight)
	e.commitColumns(b)
}

// autofitTarget is the widest cell content in the column left of the
// handle, over all rows, plus padding buffer.
func (e *Engine) autofitTarget(t Table, col int) float64 {
	widest := 0.0
	for r := 0; r < t.Rows(); r++ {
		if col >= t.CellCount(r) {
			continue
		}
		if w := t.CellContentWidth(r, col); w > widest {
			widest = w
		}
	}
	target := widest + e.settings.AutofitBuffer
	if target < e.settings.MinColumnWidth {
		target = e.settings.MinColumnWidth
	}
	return target
}
