// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"testing"

	"github.com/framegrace/tabulon/sizing"
)

func newEngineWith(s Settings, measure MeasureFunc) (*Engine, *sizing.Store, *fakeSched) {
	store := sizing.NewStore(nil)
	sched := &fakeSched{}
	return New(store, s, sched, measure), store, sched
}

func bindPair(t *testing.T, e *Engine) (*fakeTable, sizing.Identity) {
	t.Helper()
	tbl := newFakeTable(1, 400, [][]string{
		{"A", "B"},
		{"longvalue", "x"},
	})
	id := testIdentity("doc.md", tbl, e)
	e.BindTable(tbl, id)
	if tbl.colWidths[0] != 200 || tbl.colWidths[1] != 200 {
		t.Fatalf("setup widths = %v, want [200 200]", tbl.colWidths)
	}
	return tbl, id
}

func TestColumnDragSnaps(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	tbl, _ := bindPair(t, e)

	drag := e.StartColumnDrag(tbl, 0, 0)
	drag.Move(37, false)

	if tbl.colWidths[0] != 240 || tbl.colWidths[1] != 160 {
		t.Errorf("snapped widths = %v, want [240 160]", tbl.colWidths)
	}
}

func TestColumnDragBypassSnap(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	tbl, _ := bindPair(t, e)

	drag := e.StartColumnDrag(tbl, 0, 0)
	drag.Move(37, true)

	if tbl.colWidths[0] != 237 || tbl.colWidths[1] != 163 {
		t.Errorf("widths = %v, want [237 163]", tbl.colWidths)
	}
}

func TestColumnDragDoesNotAccumulate(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	tbl, _ := bindPair(t, e)

	drag := e.StartColumnDrag(tbl, 0, 0)
	drag.Move(10, true)
	drag.Move(20, true)
	drag.Move(30, true)

	// Same result as a single move to x=30.
	if tbl.colWidths[0] != 230 || tbl.colWidths[1] != 170 {
		t.Errorf("widths = %v, want [230 170]", tbl.colWidths)
	}
}

func TestColumnDragFinishCommitsRatios(t *testing.T) {
	e, store, _ := newTestEngine(nil)
	tbl, id := bindPair(t, e)

	drag := e.StartColumnDrag(tbl, 0, 0)
	drag.Move(40, true)
	drag.Finish()

	rec, ok := store.Get(id.Key())
	if !ok {
		t.Fatalf("no record after commit")
	}
	if rec.Ratios[0] != 0.6 || rec.Ratios[1] != 0.4 {
		t.Errorf("ratios = %v, want [0.6 0.4]", rec.Ratios)
	}
	if rec.LastPxWidth != 400 {
		t.Errorf("lastPxWidth = %v, want 400", rec.LastPxWidth)
	}

	// Moves after release must be ignored.
	drag.Move(100, true)
	if tbl.colWidths[0] != 240 {
		t.Errorf("width changed after finish: %v", tbl.colWidths)
	}
}

func TestColumnDragUnboundReturnsNil(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	tbl := newFakeTable(9, 400, [][]string{{"A", "B"}, {"1", "2"}})
	if d := e.StartColumnDrag(tbl, 0, 0); d != nil {
		t.Fatalf("drag on unbound table must be nil")
	}
	// Nil drags are inert.
	var d *ColumnDrag
	d.Move(10, false)
	d.Finish()
}

func TestResizeColumnKey(t *testing.T) {
	e, store, _ := newTestEngine(nil)
	tbl, id := bindPair(t, e)

	e.ResizeColumnKey(tbl, 0, 1, false)
	if tbl.colWidths[0] != 210 || tbl.colWidths[1] != 190 {
		t.Errorf("after coarse step: %v, want [210 190]", tbl.colWidths)
	}

	e.ResizeColumnKey(tbl, 0, -1, true)
	if tbl.colWidths[0] != 209 || tbl.colWidths[1] != 191 {
		t.Errorf("after fine step: %v, want [209 191]", tbl.colWidths)
	}

	// Each keypress commits.
	rec, ok := store.Get(id.Key())
	if !ok {
		t.Fatalf("no record after key resize")
	}
	if rec.Ratios[0] != 209.0/400.0 {
		t.Errorf("ratio = %v, want %v", rec.Ratios[0], 209.0/400.0)
	}
}

func TestColumnDoubleActionAutofit(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	tbl, _ := bindPair(t, e)

	// Widest cell in column 0 is "longvalue": 9 chars * 8px + 8 buffer.
	e.ColumnDoubleAction(tbl, 0)
	if tbl.colWidths[0] != 80 || tbl.colWidths[1] != 320 {
		t.Errorf("autofit widths = %v, want [80 320]", tbl.colWidths)
	}
}

func TestColumnDoubleActionReset(t *testing.T) {
	s := DefaultSettings()
	s.DoubleAction = DoubleActionReset
	e, _, _ := newEngineWith(s, nil)
	tbl, _ := bindPair(t, e)
	tbl.colWidths = []float64{141, 60}

	e.ColumnDoubleAction(tbl, 0)

	// Odd total: the larger half goes left.
	if tbl.colWidths[0] != 101 || tbl.colWidths[1] != 100 {
		t.Errorf("reset widths = %v, want [101 100]", tbl.colWidths)
	}
}

func TestColumnDoubleActionResetGuardsMinimum(t *testing.T) {
	s := DefaultSettings()
	s.DoubleAction = DoubleActionReset
	e, _, _ := newEngineWith(s, nil)
	tbl, _ := bindPair(t, e)
	tbl.colWidths = []float64{70, 40}

	e.ColumnDoubleAction(tbl, 0)

	if tbl.colWidths[0] != 70 || tbl.colWidths[1] != 40 {
		t.Errorf("reset below minimum must be a no-op, got %v", tbl.colWidths)
	}
}

func TestColumnDoubleActionNone(t *testing.T) {
	s := DefaultSettings()
	s.DoubleAction = DoubleActionNone
	e, _, _ := newEngineWith(s, nil)
	tbl, _ := bindPair(t, e)

	e.ColumnDoubleAction(tbl, 0)
	if tbl.colWidths[0] != 200 || tbl.colWidths[1] != 200 {
		t.Errorf("none action changed widths: %v", tbl.colWidths)
	}
}

func threeCol(t *testing.T, e *Engine) (*fakeTable, sizing.Identity) {
	t.Helper()
	tbl := newFakeTable(1, 300, [][]string{
		{"A", "B", "C"},
		{"1", "2", "3"},
	})
	id := testIdentity("doc.md", tbl, e)
	e.BindTable(tbl, id)
	if tbl.colWidths[0] != 100 || tbl.colWidths[1] != 100 || tbl.colWidths[2] != 100 {
		t.Fatalf("setup widths = %v, want [100 100 100]", tbl.colWidths)
	}
	return tbl, id
}

func TestOuterDragScaleMode(t *testing.T) {
	e, _, sched := newTestEngine(nil)
	tbl, _ := threeCol(t, e)

	drag := e.StartOuterDrag(tbl, 0)
	drag.Move(150)

	// Nothing applied until the frame fires.
	if tbl.colWidths[0] != 100 {
		t.Fatalf("width changed before frame: %v", tbl.colWidths)
	}
	sched.runFrames()

	for i := 0; i < 3; i++ {
		if tbl.colWidths[i] != 150 {
			t.Errorf("column %d = %v, want 150", i, tbl.colWidths[i])
		}
	}
	if tbl.tableWidth != 450 {
		t.Errorf("table width = %v, want 450", tbl.tableWidth)
	}
}

func TestOuterDragCoalescesMoves(t *testing.T) {
	e, _, sched := newTestEngine(nil)
	tbl, _ := threeCol(t, e)

	drag := e.StartOuterDrag(tbl, 0)
	drag.Move(30)
	drag.Move(90)
	drag.Move(150)

	if len(sched.frames) != 1 {
		t.Fatalf("frames queued = %d, want 1", len(sched.frames))
	}
	sched.runFrames()

	// Only the latest target is applied.
	if tbl.tableWidth != 450 {
		t.Errorf("table width = %v, want 450", tbl.tableWidth)
	}
}

func TestOuterDragFinishFlushesPendingFrame(t *testing.T) {
	e, store, sched := newTestEngine(nil)
	tbl, id := threeCol(t, e)

	drag := e.StartOuterDrag(tbl, 0)
	drag.Move(150)
	drag.Finish()

	// Flushed synchronously, without waiting for the frame.
	if tbl.tableWidth != 450 {
		t.Fatalf("table width = %v, want 450 on release", tbl.tableWidth)
	}
	rec, ok := store.Get(id.Key())
	if !ok {
		t.Fatalf("no record after outer commit")
	}
	if rec.TablePxWidth != 450 || rec.LastPxWidth != 450 {
		t.Errorf("stored widths = %v/%v, want 450/450", rec.TablePxWidth, rec.LastPxWidth)
	}

	// The stale queued frame must be a no-op.
	tbl.setWidthCalls = 0
	sched.runFrames()
	if tbl.setWidthCalls != 0 {
		t.Errorf("stale frame re-applied geometry")
	}
}

func TestOuterEdgeMode(t *testing.T) {
	s := DefaultSettings()
	s.OuterMode = OuterModeEdge
	e, _, sched := newEngineWith(s, nil)
	tbl := newFakeTable(1, 400, [][]string{
		{"A", "B", "C"},
		{"1", "2", "3"},
	})
	tbl.colWidths = []float64{100, 200, 100}
	e.BindTable(tbl, testIdentity("doc.md", tbl, e))

	drag := e.StartOuterDrag(tbl, 0)
	drag.Move(37)
	sched.runFrames()

	// Integer half to the first column, remainder to the last; middle
	// columns untouched.
	if tbl.colWidths[0] != 118 || tbl.colWidths[1] != 200 || tbl.colWidths[2] != 119 {
		t.Errorf("edge widths = %v, want [118 200 119]", tbl.colWidths)
	}
	if tbl.tableWidth != 437 {
		t.Errorf("table width = %v, want 437", tbl.tableWidth)
	}
}

func TestOuterClampsToMinimumTotal(t *testing.T) {
	e, _, sched := newTestEngine(nil)
	tbl, _ := threeCol(t, e)

	drag := e.StartOuterDrag(tbl, 0)
	drag.Move(-500)
	sched.runFrames()

	// 3 columns * 60 min.
	if tbl.tableWidth != 180 {
		t.Errorf("table width = %v, want 180", tbl.tableWidth)
	}
	for i := 0; i < 3; i++ {
		if tbl.colWidths[i] != 60 {
			t.Errorf("column %d = %v, want 60", i, tbl.colWidths[i])
		}
	}
}

func TestOuterClampsToMaxTableWidth(t *testing.T) {
	s := DefaultSettings()
	s.MaxTableWidth = 360
	e, _, sched := newEngineWith(s, nil)
	tbl := newFakeTable(1, 300, [][]string{
		{"A", "B", "C"},
		{"1", "2", "3"},
	})
	e.BindTable(tbl, testIdentity("doc.md", tbl, e))

	drag := e.StartOuterDrag(tbl, 0)
	drag.Move(500)
	sched.runFrames()

	if tbl.tableWidth != 360 {
		t.Errorf("table width = %v, want 360", tbl.tableWidth)
	}
}

func TestResizeOuterKeyPersists(t *testing.T) {
	e, store, _ := newTestEngine(nil)
	tbl, id := threeCol(t, e)

	e.ResizeOuterKey(tbl, 1, false)

	if tbl.tableWidth != 310 {
		t.Errorf("table width = %v, want 310", tbl.tableWidth)
	}
	rec, ok := store.Get(id.Key())
	if !ok {
		t.Fatalf("no record after outer key resize")
	}
	if rec.TablePxWidth != 310 {
		t.Errorf("stored table width = %v, want 310", rec.TablePxWidth)
	}
}

func TestRowDragCommitsSingleIndex(t *testing.T) {
	e, store, _ := newTestEngine(nil)
	tbl, id := bindPair(t, e)

	drag := e.StartRowDrag(tbl, 1, 0)
	drag.Move(15)
	if tbl.rowHeights[1] != 35 {
		t.Fatalf("live height = %v, want 35", tbl.rowHeights[1])
	}
	drag.Finish()

	rec, _ := store.Get(id.Key())
	if len(rec.RowHeights) != 1 {
		t.Fatalf("rowHeights = %v, want one entry", rec.RowHeights)
	}
	if rec.RowHeights[1] != 35 {
		t.Errorf("stored height = %v, want 35", rec.RowHeights[1])
	}
}

func TestRowDragClampsToMinimum(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	tbl, _ := bindPair(t, e)

	drag := e.StartRowDrag(tbl, 0, 0)
	drag.Move(-100)
	if tbl.rowHeights[0] != 22 {
		t.Errorf("height = %v, want min 22", tbl.rowHeights[0])
	}
}

func TestResizeRowKey(t *testing.T) {
	e, store, _ := newTestEngine(nil)
	tbl, id := bindPair(t, e)

	e.ResizeRowKey(tbl, 0, 1, false)
	if tbl.rowHeights[0] != 30 {
		t.Errorf("height = %v, want 30", tbl.rowHeights[0])
	}
	rec, _ := store.Get(id.Key())
	if rec.RowHeights[0] != 30 {
		t.Errorf("stored height = %v, want 30", rec.RowHeights[0])
	}
}

func TestClearRowHeight(t *testing.T) {
	e, store, _ := newTestEngine(nil)
	tbl, id := bindPair(t, e)

	e.ResizeRowKey(tbl, 1, 1, false)
	e.ClearRowHeight(tbl, 1)

	if _, ok := tbl.rowHeights[1]; ok {
		t.Errorf("live height not cleared")
	}
	rec, _ := store.Get(id.Key())
	if _, ok := rec.RowHeights[1]; ok {
		t.Errorf("stored height not removed")
	}

	// Clearing a row with no explicit height is a no-op.
	e.ClearRowHeight(tbl, 0)
}

func TestRowHeightsAppliedOnBind(t *testing.T) {
	tbl := newFakeTable(1, 400, [][]string{
		{"A", "B"},
		{"1", "2"},
	})
	e, store, _ := newTestEngine(nil)
	id := testIdentity("doc.md", tbl, e)
	store.Put(store.ResolveKey(id), sizing.Record{
		Ratios:     []float64{0.5, 0.5},
		RowHeights: map[int]float64{1: 50, 9: 99, 0: 5},
	})

	e.BindTable(tbl, id)

	if tbl.rowHeights[1] != 50 {
		t.Errorf("row 1 = %v, want 50", tbl.rowHeights[1])
	}
	// Below the floor and out of range are handled.
	if tbl.rowHeights[0] != 22 {
		t.Errorf("row 0 = %v, want min 22", tbl.rowHeights[0])
	}
	if _, ok := tbl.rowHeights[9]; ok {
		t.Errorf("out-of-range row height applied")
	}
}
