// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/breakout.go
// Summary: Overflow (breakout) evaluation: decides whether a table escapes
// the reading column, with bounded-backoff retries while the host layout is
// unmeasurable.

package engine

import (
	"log"
	"time"
)

// breakoutState is the per-binding overflow bookkeeping.
type breakoutState struct {
	// active records whether breakout styling is currently applied.
	active bool
	// attempts counts consecutive unmeasurable-layout retries.
	attempts int
	// retryCancel disarms a scheduled retry; set while one is pending.
	retryCancel func()
	// centered marks that the scroll position was centered for the
	// current overflow episode. It keeps re-centering from running on
	// every layout pass and resets when the episode ends.
	centered bool
	// lastCenter throttles scroll re-centering during an outer drag.
	lastCenter time.Time
}

func (s *breakoutState) disarmRetry() {
	if s.retryCancel != nil {
		s.retryCancel()
		s.retryCancel = nil
	}
}

// evaluateBreakout starts a fresh evaluation, superseding any pending retry.
func (e *Engine) evaluateBreakout(b *binding) {
	if e.measure == nil || b == nil {
		return
	}
	b.breakout.disarmRetry()
	b.breakout.attempts = 0
	e.breakoutAttempt(b)
}

// breakoutAttempt measures the hosting context and applies or clears
// breakout styling. An unmeasurable layout (pane or line width not
// positive) schedules a bounded exponential-backoff retry without touching
// any existing styling; after exhausting attempts it gives up silently
// until the next externally triggered evaluation.
func (e *Engine) breakoutAttempt(b *binding) {
	t := b.table
	m := e.measure(t)

	if m.PaneWidth <= 0 || m.LineWidth <= 0 {
		if b.breakout.attempts >= e.settings.RetryAttempts {
			log.Printf("Engine: breakout evaluation gave up after %d attempts for table %d",
				b.breakout.attempts, t.ID())
			b.breakout.attempts = 0
			return
		}
		delay := e.settings.RetryBaseDelay << uint(b.breakout.attempts)
		if delay > e.settings.RetryMaxDelay {
			delay = e.settings.RetryMaxDelay
		}
		b.breakout.attempts++
		b.breakout.retryCancel = e.sched.After(delay, func() {
			b.breakout.retryCancel = nil
			e.breakoutAttempt(b)
		})
		return
	}
	b.breakout.attempts = 0

	// desiredWidth = max(intrinsic content width, explicit table width).
	desired := t.IntrinsicWidth()
	if rec, ok := e.store.Get(b.key); ok && rec.TablePxWidth > desired {
		desired = rec.TablePxWidth
	}

	// The 1px tolerance keeps borderline rounding from flapping.
	if desired > m.LineWidth+1 {
		e.applyBreakout(b, m, desired)
		return
	}

	if b.breakout.active {
		t.ClearBreakout()
		b.breakout.active = false
		b.breakout.centered = false
	}
}

// applyBreakout computes and applies the escape styling for an overflowing
// table.
func (e *Engine) applyBreakout(b *binding, m Measurement, desired float64) {
	t := b.table
	bleed := e.settings.BreakoutBleed
	avail := m.PaneWidth - 2*bleed
	if avail <= 0 {
		return
	}

	style := BreakoutStyle{
		Variant:        BreakoutInlineExpand,
		ContainerWidth: avail,
		// Shift left by the gutter-adjusted offset so the container
		// aligns with the pane edge without a page-level scrollbar.
		OffsetX: -(m.LeftOffset - bleed),
	}
	if m.Surface == SurfaceReading {
		style.Variant = BreakoutWrap
	}

	if desired > avail {
		// Wider than even the pane allows: scroll, centered exactly
		// once per overflow episode.
		style.Scrollable = true
		t.ApplyBreakout(style)
		if !b.breakout.centered {
			t.ScrollTo((desired - avail) / 2)
			b.breakout.centered = true
		}
	} else {
		// Fits inside the widened container: pad symmetrically so the
		// table stays visually centered without scrolling.
		style.PadX = (avail - desired) / 2
		t.ApplyBreakout(style)
		b.breakout.centered = false
	}
	b.breakout.active = true
}

// recenterDuringDrag keeps an overflowing table's scroll position centered
// while the outer handle is being dragged. It is throttled and deliberately
// touches only the scroll position: it never reapplies or clears the
// breakout styling mid-drag. The full recompute happens once on release.
func (e *Engine) recenterDuringDrag(b *binding) {
	if e.measure == nil || !b.breakout.active {
		return
	}
	now := e.clock()
	if now.Sub(b.breakout.lastCenter) < e.settings.CenterThrottle {
		return
	}
	b.breakout.lastCenter = now

	m := e.measure(b.table)
	if m.PaneWidth <= 0 {
		return
	}
	avail := m.PaneWidth - 2*e.settings.BreakoutBleed
	desired := b.table.TableWidth()
	if desired > avail && avail > 0 {
		b.table.ScrollTo((desired - avail) / 2)
	}
}
