// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: view/table.go
// Summary: TableView renders one pipe table and implements engine.Table.
// All geometry is in terminal cells, carried as float64 for the engine.

package view

import (
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/tabulon/engine"
)

const cellPadding = 2 // one space each side of the content

// Compile-time interface verification.
var _ engine.Table = (*TableView)(nil)

// TableView is the rendered form of a table block. The engine drives its
// geometry; the viewer draws it.
type TableView struct {
	id        int64
	surface   engine.Surface
	header    []string
	rows      [][]string
	hasHeader bool

	// containerWidth is the reading-column width the viewer laid the
	// table out into; 0 before the first layout pass.
	containerWidth float64

	colWidths  []float64
	rowHeights map[int]float64
	tableWidth float64

	breakout *engine.BreakoutStyle
	scrollX  float64
}

// NewTableView builds a TableView from a parsed table block. IDs must be
// unique per rendered element and stable across re-renders.
func NewTableView(id int64, b Block, surface engine.Surface) *TableView {
	rows := b.Cells
	if b.HasHeader {
		rows = append([][]string{b.Header}, b.Cells...)
	}
	return &TableView{
		id:         id,
		surface:    surface,
		header:     b.Header,
		rows:       rows,
		hasHeader:  b.HasHeader,
		rowHeights: make(map[int]float64),
	}
}

// SetContainerWidth is called by the viewer on every layout pass, before
// the engine materializes or re-evaluates.
func (tv *TableView) SetContainerWidth(w float64) { tv.containerWidth = w }

func (tv *TableView) ID() int64               { return tv.id }
func (tv *TableView) Surface() engine.Surface { return tv.surface }
func (tv *TableView) Rows() int               { return len(tv.rows) }
func (tv *TableView) CellCount(row int) int {
	if row < 0 || row >= len(tv.rows) {
		return 0
	}
	return len(tv.rows[row])
}
func (tv *TableView) HeaderLabels() []string { return tv.header }
func (tv *TableView) HasHeader() bool        { return tv.hasHeader }

func (tv *TableView) ContainerWidth() float64 { return tv.containerWidth }

func (tv *TableView) TableWidth() float64 {
	if tv.tableWidth > 0 {
		return tv.tableWidth
	}
	sum := 0.0
	for _, w := range tv.colWidths {
		sum += w
	}
	return sum
}

// IntrinsicWidth is the width the table wants: the widest content of each
// column plus padding, plus the column separators.
func (tv *TableView) IntrinsicWidth() float64 {
	cols := tv.columnCount()
	total := 0.0
	for c := 0; c < cols; c++ {
		widest := 0.0
		for r := range tv.rows {
			if w := tv.CellContentWidth(r, c); w > widest {
				widest = w
			}
		}
		total += widest
	}
	return total + float64(cols+1) // border columns
}

func (tv *TableView) ColumnWidth(col int) float64 {
	if col < 0 || col >= len(tv.colWidths) {
		return 0
	}
	return tv.colWidths[col]
}

// CellContentWidth measures the cell text with runewidth so wide runes
// (CJK, emoji) count their real terminal footprint.
func (tv *TableView) CellContentWidth(row, col int) float64 {
	if row < 0 || row >= len(tv.rows) || col >= len(tv.rows[row]) {
		return 0
	}
	return float64(runewidth.StringWidth(tv.rows[row][col]) + cellPadding)
}

func (tv *TableView) RowHeight(row int) float64 {
	if h, ok := tv.rowHeights[row]; ok {
		return h
	}
	return 1
}

func (tv *TableView) SetColumnWidth(col int, px float64) {
	tv.ensureColumns(col + 1)
	tv.colWidths[col] = px
}

// SetColumnPercent stores a ratio against whatever container width shows
// up later. The viewer resolves it at draw time while unmeasured.
func (tv *TableView) SetColumnPercent(col int, pct float64) {
	tv.ensureColumns(col + 1)
	tv.colWidths[col] = -pct // negative marks "percent pending"
}

func (tv *TableView) SetRowHeight(row int, px float64) { tv.rowHeights[row] = px }
func (tv *TableView) ClearRowHeight(row int)           { delete(tv.rowHeights, row) }
func (tv *TableView) SetTableWidth(px float64)         { tv.tableWidth = px }

func (tv *TableView) ApplyBreakout(s engine.BreakoutStyle) { tv.breakout = &s }
func (tv *TableView) ClearBreakout() {
	tv.breakout = nil
	tv.scrollX = 0
}
func (tv *TableView) ScrollTo(x float64) { tv.scrollX = x }

// Breakout returns the active escape styling, or nil.
func (tv *TableView) Breakout() *engine.BreakoutStyle { return tv.breakout }

// ScrollX is the current horizontal scroll inside a scrollable breakout.
func (tv *TableView) ScrollX() float64 { return tv.scrollX }

func (tv *TableView) columnCount() int {
	cols := 0
	for _, row := range tv.rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

func (tv *TableView) ensureColumns(n int) {
	for len(tv.colWidths) < n {
		tv.colWidths = append(tv.colWidths, 0)
	}
}

// ResolvedColumnWidths returns draw-ready integer widths: percent-pending
// entries resolve against the given width, zeros fall back to content.
func (tv *TableView) ResolvedColumnWidths(avail int) []int {
	cols := tv.columnCount()
	out := make([]int, cols)
	for c := 0; c < cols; c++ {
		w := 0.0
		if c < len(tv.colWidths) {
			w = tv.colWidths[c]
		}
		switch {
		case w < 0: // percent pending
			out[c] = int(-w / 100 * float64(avail))
		case w > 0:
			out[c] = int(w)
		default:
			widest := 0
			for r := range tv.rows {
				if cw := int(tv.CellContentWidth(r, c)); cw > widest {
					widest = cw
				}
			}
			out[c] = widest
		}
	}
	return out
}

// Cell returns the text of one cell, "" when out of range.
func (tv *TableView) Cell(row, col int) string {
	if row < 0 || row >= len(tv.rows) || col < 0 || col >= len(tv.rows[row]) {
		return ""
	}
	return tv.rows[row][col]
}
