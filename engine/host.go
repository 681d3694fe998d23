// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/host.go
// Summary: Host-facing interfaces: the table element view, surface markers,
// and pane measurement.

// Package engine implements the table layout and resize engine: ratio-based
// width/height materialization, interactive column/row/outer resize, column
// adaptation across structural changes, and the overflow (breakout)
// evaluation that lets over-wide tables escape the reading column.
//
// The engine never touches a concrete rendering layer. Hosts implement
// Table for each rendered table element and hand it to the engine together
// with a sizing.Identity.
package engine

import "time"

// Surface identifies which rendering surface hosts a table. The breakout
// engine picks its application variant from it.
type Surface int

const (
	// SurfaceReading is a static document flow; breakout adjusts the
	// table element directly (wrap variant).
	SurfaceReading Surface = iota
	// SurfaceEditing is a reflowing editor-like surface; breakout widens
	// and shifts the table's container (inline-expand variant).
	SurfaceEditing
)

func (s Surface) String() string {
	switch s {
	case SurfaceReading:
		return "reading"
	case SurfaceEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// BreakoutVariant selects how breakout styling is applied.
type BreakoutVariant int

const (
	// BreakoutInlineExpand widens the container and shifts it with a
	// positional offset (editing surface).
	BreakoutInlineExpand BreakoutVariant = iota
	// BreakoutWrap adjusts the table element's own margins/width/scroll
	// so it paints over the centered column (reading surface).
	BreakoutWrap
)

// BreakoutStyle is the computed visual escape for an overflowing table.
// Hosts apply it however their surface requires; the engine only computes.
type BreakoutStyle struct {
	Variant BreakoutVariant
	// ContainerWidth is the widened container width (pane minus bleed).
	ContainerWidth float64
	// OffsetX shifts the container left (negative) so it aligns with the
	// pane edge without forcing a page-level horizontal scrollbar.
	OffsetX float64
	// PadX pads both sides so a table narrower than the widened container
	// stays visually centered without scrolling.
	PadX float64
	// Scrollable is set when the desired width exceeds even the widened
	// container, making the container horizontally scrollable.
	Scrollable bool
}

// Table is the engine's view of one rendered table element. Implementations
// answer live geometry queries and apply geometry the engine computes.
// A Table's ID must be unique per element and stable across re-renders of
// that element; the engine keys its binding side table on it.
type Table interface {
	ID() int64
	Surface() Surface

	// Structure.
	Rows() int
	CellCount(row int) int
	// HeaderLabels returns the header cells' text, or the first row's
	// text when the table has no header row.
	HeaderLabels() []string
	HasHeader() bool

	// Live geometry. ContainerWidth reports <= 0 while the host has not
	// laid the table out yet.
	ContainerWidth() float64
	TableWidth() float64
	IntrinsicWidth() float64
	ColumnWidth(col int) float64
	// CellContentWidth is the cell's content box plus padding, used for
	// autofit targets.
	CellContentWidth(row, col int) float64
	RowHeight(row int) float64

	// Geometry application.
	SetColumnWidth(col int, px float64)
	// SetColumnPercent applies a ratio as a percentage width while the
	// container width is unmeasurable.
	SetColumnPercent(col int, pct float64)
	SetRowHeight(row int, px float64)
	ClearRowHeight(row int)
	SetTableWidth(px float64)

	// Breakout application.
	ApplyBreakout(BreakoutStyle)
	ClearBreakout()
	ScrollTo(x float64)
}

// Measurement is a read-only snapshot of the viewport/column context hosting
// a table. It is recomputed on demand and never cached across renders.
type Measurement struct {
	Surface Surface
	// PaneWidth is the usable width of the hosting pane.
	PaneWidth float64
	// LineWidth is the readable column width.
	LineWidth float64
	// LeftOffset and RightOffset are the exact gaps between the readable
	// column and the pane edges.
	LeftOffset  float64
	RightOffset float64
}

// MeasureFunc produces the context measurement for a table. It is injected
// so overflow evaluation is testable without a real layout engine.
type MeasureFunc func(Table) Measurement

// Scheduler abstracts frame timing and delayed execution. The production
// implementation is driven by the host's render loop; tests run tasks
// synchronously.
type Scheduler interface {
	// Frame runs fn at the next display frame. Each call schedules one
	// execution; callers coalesce their own pending work.
	Frame(fn func())
	// After runs fn once the delay elapses and returns a cancel func.
	After(d time.Duration, fn func()) (cancel func())
}
