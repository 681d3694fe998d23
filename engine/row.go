// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/row.go
// Summary: Row-height resize: drag, keyboard, and clear-to-automatic.

package engine

import "math"

// RowDrag tracks one row-bottom-handle drag.
type RowDrag struct {
	e           *Engine
	b           *binding
	row         int
	startY      float64
	startHeight float64
	finished    bool
}

// StartRowDrag begins a drag on the bottom handle of row.
func (e *Engine) StartRowDrag(t Table, row int, startY float64) *RowDrag {
	b := e.bound(t)
	if b == nil || row < 0 || row >= t.Rows() {
		return nil
	}
	return &RowDrag{
		e:           e,
		b:           b,
		row:         row,
		startY:      startY,
		startHeight: t.RowHeight(row),
	}
}

// Move adjusts the row height live.
func (d *RowDrag) Move(y float64) {
	if d == nil || d.finished {
		return
	}
	h := math.Max(d.e.settings.MinRowHeight, d.startHeight+(y-d.startY))
	d.b.table.SetRowHeight(d.row, h)
}

// Finish commits the row's height into the record, leaving every other
// row's stored height untouched.
func (d *RowDrag) Finish() {
	if d == nil || d.finished {
		return
	}
	d.finished = true
	d.e.commitRowHeight(d.b, d.row, d.b.table.RowHeight(d.row))
}

// ResizeRowKey is the keyboard equivalent: dir is -1 (Up) or +1 (Down),
// fine reduces the step to one pixel. Commits per keypress.
func (e *Engine) ResizeRowKey(t Table, row, dir int, fine bool) {
	b := e.bound(t)
	if b == nil || row < 0 || row >= t.Rows() {
		return
	}
	step := e.settings.KeyboardStep
	if fine {
		step = 1
	}
	h := math.Max(e.settings.MinRowHeight, t.RowHeight(row)+float64(dir)*step)
	t.SetRowHeight(row, h)
	e.commitRowHeight(b, row, h)
}

// ClearRowHeight drops a row's explicit height back to automatic sizing and
// removes its stored entry.
func (e *Engine) ClearRowHeight(t Table, row int) {
	b := e.bound(t)
	if b == nil || row < 0 || row >= t.Rows() {
		return
	}
	t.ClearRowHeight(row)

	rec, ok := e.store.Get(b.key)
	if !ok || rec.RowHeights == nil {
		return
	}
	if _, present := rec.RowHeights[row]; !present {
		return
	}
	delete(rec.RowHeights, row)
	e.store.Put(b.key, rec)
}

// commitRowHeight updates a single row index inside the table's record. A
// table with no record yet gets one derived from its current column widths
// first.
func (e *Engine) commitRowHeight(b *binding, row int, h float64) {
	rec, ok := e.store.Get(b.key)
	if !ok {
		rec = e.deriveInitial(b.table, columnCount(b.table))
	}
	if rec.RowHeights == nil {
		rec.RowHeights = make(map[int]float64)
	}
	rec.RowHeights[row] = h
	e.store.Put(b.key, rec)
}
