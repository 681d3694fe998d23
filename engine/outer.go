// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/outer.go
// Summary: Whole-table (outer handle) resize in edge and scale modes, with
// pointer moves coalesced to one apply per display frame.

package engine

import (
	"math"

	"github.com/framegrace/tabulon/geom"
	"github.com/framegrace/tabulon/sizing"
)

// OuterDrag tracks a whole-table-width drag. Raw pointer moves only update
// the pending target; the actual geometry write happens at most once per
// display frame, and the pending frame is flushed synchronously on release
// before the final width is persisted.
type OuterDrag struct {
	e           *Engine
	b           *binding
	startX      float64
	startWidths []float64
	startTotal  float64

	pendingTarget float64
	framePending  bool
	finished      bool
}

// StartOuterDrag begins an outer-handle drag.
func (e *Engine) StartOuterDrag(t Table, startX float64) *OuterDrag {
	b := e.bound(t)
	if b == nil {
		return nil
	}
	cols := columnCount(t)
	widths := make([]float64, cols)
	total := 0.0
	for i := range widths {
		widths[i] = t.ColumnWidth(i)
		total += widths[i]
	}
	return &OuterDrag{
		e:           e,
		b:           b,
		startX:      startX,
		startWidths: widths,
		startTotal:  total,
	}
}

// Move records the new cursor position. Multiple raw events between frames
// collapse to the latest target.
func (d *OuterDrag) Move(x float64) {
	if d == nil || d.finished {
		return
	}
	d.pendingTarget = d.startTotal + (x - d.startX)
	if d.framePending {
		return
	}
	d.framePending = true
	d.e.sched.Frame(func() {
		if d.finished || !d.framePending {
			return
		}
		d.framePending = false
		d.apply(d.pendingTarget)
		d.e.recenterDuringDrag(d.b)
	})
}

// Finish flushes any pending frame synchronously, persists the final total
// as both tablePxWidth and lastPxWidth, and triggers a full breakout
// recompute.
func (d *OuterDrag) Finish() {
	if d == nil || d.finished {
		return
	}
	if d.framePending {
		d.framePending = false
		d.apply(d.pendingTarget)
	}
	d.finished = true

	t := d.b.table
	cols := columnCount(t)
	widths := make([]float64, cols)
	total := 0.0
	for i := range widths {
		widths[i] = t.ColumnWidth(i)
		total += widths[i]
	}
	prev, _ := d.e.store.Get(d.b.key)
	d.e.store.Put(d.b.key, sizingRecordForOuter(widths, total, prev.RowHeights))
	d.e.evaluateBreakout(d.b)
}

// apply materializes a target total width from the drag-start widths, so
// repeated moves never accumulate rounding drift.
func (d *OuterDrag) apply(target float64) {
	d.e.applyOuterWidth(d.b.table, d.startWidths, d.startTotal, target)
}

// ResizeOuterKey is the keyboard equivalent of the outer drag.
func (e *Engine) ResizeOuterKey(t Table, dir int, fine bool) {
	b := e.bound(t)
	if b == nil {
		return
	}
	step := e.settings.KeyboardStep
	if fine {
		step = 1
	}
	cols := columnCount(t)
	widths := make([]float64, cols)
	total := 0.0
	for i := range widths {
		widths[i] = t.ColumnWidth(i)
		total += widths[i]
	}
	e.applyOuterWidth(t, widths, total, total+float64(dir)*step)

	newTotal := 0.0
	newWidths := make([]float64, cols)
	for i := range newWidths {
		newWidths[i] = t.ColumnWidth(i)
		newTotal += newWidths[i]
	}
	prev, _ := e.store.Get(b.key)
	e.store.Put(b.key, sizingRecordForOuter(newWidths, newTotal, prev.RowHeights))
	e.evaluateBreakout(b)
}

// applyOuterWidth resizes the table to the clamped target total using the
// configured mode.
func (e *Engine) applyOuterWidth(t Table, startWidths []float64, startTotal, target float64) {
	cols := len(startWidths)
	if cols == 0 || startTotal <= 0 {
		return
	}

	minTotal := float64(cols) * e.settings.MinColumnWidth
	if target < minTotal {
		target = minTotal
	}
	if e.settings.MaxTableWidth > 0 && target > e.settings.MaxTableWidth {
		target = e.settings.MaxTableWidth
	}

	switch e.settings.OuterMode {
	case OuterModeEdge:
		// All delta goes to the first and last columns: integer half to
		// the first, remainder to the last.
		delta := target - startTotal
		half := math.Trunc(delta / 2)
		first := math.Max(e.settings.MinColumnWidth, startWidths[0]+half)
		last := math.Max(e.settings.MinColumnWidth, startWidths[cols-1]+(delta-half))
		t.SetColumnWidth(0, first)
		if cols > 1 {
			t.SetColumnWidth(cols-1, last)
		}
	default: // OuterModeScale
		factor := target / startTotal
		sum := 0.0
		scaled := make([]float64, cols)
		for i, w := range startWidths {
			scaled[i] = math.Max(e.settings.MinColumnWidth, math.Floor(w*factor))
			sum += scaled[i]
		}
		// Rounding remainder is absorbed by the last column.
		scaled[cols-1] = math.Max(e.settings.MinColumnWidth, scaled[cols-1]+(target-sum))
		for i, w := range scaled {
			t.SetColumnWidth(i, w)
		}
	}
	t.SetTableWidth(target)
}

// sizingRecordForOuter builds the committed record after an outer resize:
// ratios from the final widths, with the final total stored as both the
// explicit table width and the last seen width.
func sizingRecordForOuter(widths []float64, total float64, rowHeights map[int]float64) (rec sizing.Record) {
	rec.Ratios = geom.NormalizeRatios(widths)
	rec.TablePxWidth = total
	rec.LastPxWidth = total
	rec.RowHeights = rowHeights
	return rec
}
