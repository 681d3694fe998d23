// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/engine.go
// Summary: Binding state machine and layout materialization.

package engine

import (
	"log"
	"math"
	"time"

	"github.com/framegrace/tabulon/geom"
	"github.com/framegrace/tabulon/sizing"
)

// bindState is the per-table lifecycle. Unbound tables have no handles;
// the Unbound -> Bound transition happens once per element.
type bindState int

const (
	stateUnbound bindState = iota
	stateBound
)

// HandleKind distinguishes the interactive handles attached to a table.
type HandleKind int

const (
	// HandleColumn sits on the boundary between column Index and Index+1.
	HandleColumn HandleKind = iota
	// HandleOuter resizes the whole table width.
	HandleOuter
	// HandleRow sits on the bottom edge of row Index.
	HandleRow
)

// Handle describes one interactive handle. Hosts draw them and route
// pointer/keyboard events back to the engine.
type Handle struct {
	Kind  HandleKind
	Index int
}

// binding is the engine-owned state for one bound table element.
type binding struct {
	table    Table
	identity sizing.Identity
	key      string
	state    bindState
	handles  []Handle

	// awaitingWidth is armed when ratios were applied as percentages
	// because the container width was unmeasurable; the next observable
	// nonzero width converts them to pixels and disarms.
	awaitingWidth bool
	// relayoutPending coalesces visibility/size notifications: while a
	// re-layout is scheduled, further notifications are no-ops.
	relayoutPending bool

	breakout breakoutState
}

// Engine owns bindings, materializes layouts from the sizing store, and
// runs the resize algorithms. It is single-threaded: all methods must be
// called from the host's event loop.
type Engine struct {
	store    *sizing.Store
	settings Settings
	sched    Scheduler
	measure  MeasureFunc

	bindings map[int64]*binding

	// clock is split out for throttle tests.
	clock func() time.Time
}

// New creates an engine. The measure func may be nil when the host never
// evaluates breakout (tests of pure resize paths).
func New(store *sizing.Store, settings Settings, sched Scheduler, measure MeasureFunc) *Engine {
	return &Engine{
		store:    store,
		settings: settings,
		sched:    sched,
		measure:  measure,
		bindings: make(map[int64]*binding),
		clock:    time.Now,
	}
}

// Settings returns the engine's current settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// ComputeFingerprint derives the structural fingerprint of a table element:
// "{columnCount}:{label1}|{label2}|...", labels from the header row or the
// first row when no header exists.
func (e *Engine) ComputeFingerprint(t Table) string {
	return sizing.Fingerprint(columnCount(t), t.HeaderLabels())
}

// columnCount is the cell count of the widest row.
func columnCount(t Table) int {
	cols := 0
	for r := 0; r < t.Rows(); r++ {
		if c := t.CellCount(r); c > cols {
			cols = c
		}
	}
	return cols
}

// BindTable transitions a table element to Bound: resolves its identity,
// materializes a layout, attaches handles, and schedules the first breakout
// evaluation. Binding is idempotent: a second notification for an already
// bound element only re-applies stored ratios and re-evaluates overflow,
// without re-creating handles.
func (e *Engine) BindTable(t Table, identity sizing.Identity) {
	if b, ok := e.bindings[t.ID()]; ok && b.state == stateBound {
		b.table = t
		e.scheduleRelayout(b)
		return
	}

	cols := columnCount(t)
	if cols < 2 {
		// Nothing to resize.
		return
	}

	key := e.store.ResolveKey(identity)
	b := &binding{
		table:    t,
		identity: identity.Canonical(),
		key:      key,
	}
	e.bindings[t.ID()] = b

	e.materialize(b)

	b.handles = make([]Handle, 0, cols+t.Rows())
	for i := 0; i < cols-1; i++ {
		b.handles = append(b.handles, Handle{Kind: HandleColumn, Index: i})
	}
	if e.settings.EnableOuterHandle {
		b.handles = append(b.handles, Handle{Kind: HandleOuter})
	}
	if e.settings.EnableRowHandles {
		for r := 0; r < t.Rows(); r++ {
			b.handles = append(b.handles, Handle{Kind: HandleRow, Index: r})
		}
	}
	b.state = stateBound
	log.Printf("Engine: bound table %d (%s, %d columns)", t.ID(), identity.Path, cols)

	// Host layout may not have settled right after a bind; coalesce the
	// first overflow evaluation across a short delay.
	if e.measure != nil {
		e.sched.After(e.settings.BindSettleDelay, func() {
			if bb, ok := e.bindings[t.ID()]; ok {
				e.evaluateBreakout(bb)
			}
		})
	}
}

// Handles returns the interactive handles attached to a bound table, or nil
// when the element is not bound.
func (e *Engine) Handles(t Table) []Handle {
	b, ok := e.bindings[t.ID()]
	if !ok || b.state != stateBound {
		return nil
	}
	return b.handles
}

// ApplyStoredLayout re-applies persisted geometry to a table without
// rebinding. For bound elements the work is coalesced so only one re-layout
// is pending at a time; for unbound elements the stored ratios are applied
// directly when a usable record exists.
func (e *Engine) ApplyStoredLayout(t Table, identity sizing.Identity) {
	if b, ok := e.bindings[t.ID()]; ok {
		b.table = t
		e.scheduleRelayout(b)
		return
	}
	key := e.store.ResolveKey(identity)
	rec, ok := e.store.Get(key)
	if !ok || len(rec.Ratios) != columnCount(t) {
		return
	}
	e.applyRecord(t, rec, nil)
}

// OnDocumentRenamed rewrites stored keys and live bindings for a renamed
// document.
func (e *Engine) OnDocumentRenamed(oldPath, newPath string) {
	e.store.RekeyPath(oldPath, newPath)
	for _, b := range e.bindings {
		if b.identity.Path != oldPath {
			continue
		}
		b.identity.Path = newPath
		b.key = b.identity.Key()
	}
}

// Unbind drops all engine state for a table element, cancelling any pending
// breakout retries. Hosts call it when the element leaves the document.
func (e *Engine) Unbind(id int64) {
	b, ok := e.bindings[id]
	if !ok {
		return
	}
	b.breakout.disarmRetry()
	delete(e.bindings, id)
}

// scheduleRelayout coalesces re-layout requests: a new notification while
// one is pending is a no-op.
func (e *Engine) scheduleRelayout(b *binding) {
	if b.relayoutPending {
		return
	}
	b.relayoutPending = true
	e.sched.Frame(func() {
		b.relayoutPending = false
		e.materialize(b)
		e.evaluateBreakout(b)
	})
}

// materialize turns the stored record (or a derived/adapted one) into
// concrete geometry on the table element.
func (e *Engine) materialize(b *binding) {
	t := b.table
	cols := columnCount(t)
	if cols < 2 {
		return
	}

	rec, ok := e.store.Get(b.key)
	if ok && len(rec.Ratios) == cols {
		e.applyRecord(t, rec, b)
		return
	}

	// No directly applicable record: adapt widths from the most recent
	// record for this path, falling back to a fresh derivation. Either
	// way a usable layout comes out; a structural mismatch is never an
	// error state.
	adapted, ok := e.adaptColumns(b, cols)
	if ok {
		e.applyRecord(t, adapted, b)
		return
	}

	fresh := e.deriveInitial(t, cols)
	e.store.Put(b.key, fresh)
	e.applyRecord(t, fresh, b)
}

// applyRecord materializes ratios as pixel widths against the record's base
// width. While the container width is unmeasurable the ratios are applied
// as percentages instead, and a one-shot conversion is armed on b.
func (e *Engine) applyRecord(t Table, rec sizing.Record, b *binding) {
	live := t.ContainerWidth()
	if live <= 0 {
		for i, r := range rec.Ratios {
			t.SetColumnPercent(i, r*100)
		}
		if b != nil && !b.awaitingWidth {
			b.awaitingWidth = true
			log.Printf("Engine: container width unmeasurable for table %d, applied percentages", t.ID())
		}
	} else {
		if b != nil && b.awaitingWidth {
			b.awaitingWidth = false
		}
		// The explicit table width wins over the live container width;
		// the last-seen width is only a base for adaptation, not here.
		base := live
		if rec.TablePxWidth > 0 {
			base = rec.TablePxWidth
		}
		for i, r := range rec.Ratios {
			t.SetColumnWidth(i, math.Max(e.settings.MinColumnWidth, math.Round(r*base)))
		}
		if rec.TablePxWidth > 0 {
			t.SetTableWidth(rec.TablePxWidth)
		}
	}

	rows := t.Rows()
	for idx, h := range rec.RowHeights {
		if idx >= 0 && idx < rows {
			t.SetRowHeight(idx, math.Max(e.settings.MinRowHeight, h))
		}
	}
}

// deriveInitial builds a first record for a table with no usable history:
// header cell widths when the header covers every column, else an equal
// split of the available width.
func (e *Engine) deriveInitial(t Table, cols int) sizing.Record {
	widths := make([]float64, cols)
	headers := t.HeaderLabels()
	if t.HasHeader() && len(headers) == cols {
		for i := 0; i < cols; i++ {
			widths[i] = t.ColumnWidth(i)
		}
	} else {
		avail := t.ContainerWidth()
		if avail <= 0 {
			avail = float64(cols) * e.settings.MinColumnWidth
		}
		share := avail / float64(cols)
		for i := range widths {
			widths[i] = share
		}
	}
	return sizing.Record{
		Ratios:      geom.NormalizeRatios(widths),
		LastPxWidth: t.ContainerWidth(),
	}
}

// commitColumns reads back the table's current column widths, normalizes
// them to ratios, and stores a new record with the live container width as
// base. Explicit table width and row heights are carried over from the
// previous record.
func (e *Engine) commitColumns(b *binding) {
	t := b.table
	cols := columnCount(t)
	widths := make([]float64, cols)
	for i := range widths {
		widths[i] = t.ColumnWidth(i)
	}

	prev, _ := e.store.Get(b.key)
	rec := sizing.Record{
		Ratios:       geom.NormalizeRatios(widths),
		LastPxWidth:  t.ContainerWidth(),
		TablePxWidth: prev.TablePxWidth,
		RowHeights:   prev.RowHeights,
	}
	e.store.Put(b.key, rec)
}

// bound looks up the binding for a table, returning nil when the element is
// not bound. All interaction entry points go through it.
func (e *Engine) bound(t Table) *binding {
	b, ok := e.bindings[t.ID()]
	if !ok || b.state != stateBound {
		return nil
	}
	b.table = t
	return b
}
