// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: view/viewer.go
// Summary: Interactive tcell viewer: lays out blocks into a centered
// reading column, draws tables, and routes pointer/keyboard events to the
// resize engine.

package view

import (
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/tabulon/engine"
	"github.com/framegrace/tabulon/sizing"
)

const (
	readingColumnWidth = 80
	doubleClickWindow  = 350 * time.Millisecond
)

// tableSlot is the laid-out position of one table, kept for hit testing.
type tableSlot struct {
	view *TableView
	// x, y, w, h is the drawn rect in screen cells.
	x, y, w, h int
	// boundaries are the screen x positions of the inner column borders,
	// index i sitting between columns i and i+1.
	boundaries []int
	// rowBottoms are the screen y positions of each row's bottom border.
	rowBottoms []int
}

// Viewer renders one document and owns the interaction state.
type Viewer struct {
	screen  tcell.Screen
	eng     *engine.Engine
	path    string
	surface engine.Surface
	blocks  []Block

	slots   []*tableSlot
	scrollY int

	colDrag   *engine.ColumnDrag
	rowDrag   *engine.RowDrag
	outerDrag *engine.OuterDrag
	dragSlot  *tableSlot

	lastClickAt time.Time
	lastClickX  int
	lastClickY  int

	// focus addresses one handle for keyboard resizing: focusSlot is an
	// index into slots, focusHandle one of that table's handles. A
	// negative slot means nothing focused.
	focusSlot   int
	focusHandle int

	dirty bool
	tasks chan func()
	quit  chan struct{}
}

// NewViewer parses source and binds every table block. The store and
// settings come from the caller so persisters are swappable; surface
// selects the breakout variant the engine applies.
func NewViewer(screen tcell.Screen, store *sizing.Store, settings engine.Settings, surface engine.Surface, path, source string) *Viewer {
	v := &Viewer{
		screen:    screen,
		path:      path,
		surface:   surface,
		blocks:    ParseDocument(source),
		tasks:     make(chan func(), 64),
		quit:      make(chan struct{}),
		dirty:     true,
		focusSlot: -1,
	}

	sched := &engine.LoopScheduler{Post: v.post}
	v.eng = engine.New(store, settings, sched, v.measure)

	id := int64(1)
	for i := range v.blocks {
		if v.blocks[i].Kind != BlockTable {
			continue
		}
		tv := NewTableView(id, v.blocks[i], surface)
		id++
		v.slots = append(v.slots, &tableSlot{view: tv})
	}
	return v
}

// post hands a scheduler task to the event loop. Dropping on shutdown is
// fine: a closed viewer has no layout left to update.
func (v *Viewer) post(fn func()) {
	select {
	case v.tasks <- fn:
	case <-v.quit:
	}
}

// measure implements engine.MeasureFunc against the current screen size.
func (v *Viewer) measure(t engine.Table) engine.Measurement {
	w, _ := v.screen.Size()
	line := readingColumnWidth
	if line > w {
		line = w
	}
	left := (w - line) / 2
	return engine.Measurement{
		Surface:     v.surface,
		PaneWidth:   float64(w),
		LineWidth:   float64(line),
		LeftOffset:  float64(left),
		RightOffset: float64(w - line - left),
	}
}

// Run drives the event loop until quit. Must be called from the main
// goroutine after screen.Init.
func (v *Viewer) Run() error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-v.quit:
				return
			}
		}
	}()

	v.bindTables()
	v.draw()

	for {
		select {
		case <-v.quit:
			return nil
		case fn := <-v.tasks:
			fn()
			v.dirty = true
		case ev := <-events:
			v.handleEvent(ev)
		}
		if v.dirty {
			v.draw()
			v.dirty = false
		}
	}
}

// Close stops the loop.
func (v *Viewer) Close() {
	select {
	case <-v.quit:
	default:
		close(v.quit)
	}
}

// bindTables lays out once so container widths are known, then hands every
// table to the engine.
func (v *Viewer) bindTables() {
	m := v.measure(nil)
	for _, slot := range v.slots {
		slot.view.SetContainerWidth(m.LineWidth)
		id := sizing.Identity{
			Path:        v.path,
			Fingerprint: v.eng.ComputeFingerprint(slot.view),
		}
		v.eng.BindTable(slot.view, id)
	}
}

func (v *Viewer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		m := v.measure(nil)
		for _, slot := range v.slots {
			slot.view.SetContainerWidth(m.LineWidth)
			id := sizing.Identity{
				Path:        v.path,
				Fingerprint: v.eng.ComputeFingerprint(slot.view),
			}
			v.eng.ApplyStoredLayout(slot.view, id)
		}
		v.dirty = true

	case *tcell.EventKey:
		v.handleKey(ev)

	case *tcell.EventMouse:
		v.handleMouse(ev)
	}
}

// handleKey routes keys: Tab cycles resize handles, arrows resize the
// focused handle (Shift for 1-cell fine steps), Enter fires the double
// action, Escape drops focus.
func (v *Viewer) handleKey(ev *tcell.EventKey) {
	fine := ev.Modifiers()&tcell.ModShift != 0

	switch {
	case ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
		v.Close()
		return
	case ev.Key() == tcell.KeyEscape:
		if v.focusSlot >= 0 {
			v.focusSlot = -1
			v.dirty = true
			return
		}
		v.Close()
		return
	case ev.Key() == tcell.KeyTab:
		v.cycleFocus()
		v.dirty = true
		return
	case ev.Rune() == 'd':
		v.DumpLayout()
		return
	}

	if v.focusSlot < 0 || v.focusSlot >= len(v.slots) {
		switch ev.Key() {
		case tcell.KeyUp:
			if v.scrollY > 0 {
				v.scrollY--
				v.dirty = true
			}
		case tcell.KeyDown:
			v.scrollY++
			v.dirty = true
		}
		return
	}

	slot := v.slots[v.focusSlot]
	handles := v.eng.Handles(slot.view)
	if v.focusHandle >= len(handles) {
		v.focusSlot = -1
		return
	}
	h := handles[v.focusHandle]

	switch h.Kind {
	case engine.HandleColumn:
		switch ev.Key() {
		case tcell.KeyLeft:
			v.eng.ResizeColumnKey(slot.view, h.Index, -1, fine)
		case tcell.KeyRight:
			v.eng.ResizeColumnKey(slot.view, h.Index, 1, fine)
		case tcell.KeyEnter:
			v.eng.ColumnDoubleAction(slot.view, h.Index)
		}
	case engine.HandleOuter:
		switch ev.Key() {
		case tcell.KeyLeft:
			v.eng.ResizeOuterKey(slot.view, -1, fine)
		case tcell.KeyRight:
			v.eng.ResizeOuterKey(slot.view, 1, fine)
		}
	case engine.HandleRow:
		switch ev.Key() {
		case tcell.KeyUp:
			v.eng.ResizeRowKey(slot.view, h.Index, -1, fine)
		case tcell.KeyDown:
			v.eng.ResizeRowKey(slot.view, h.Index, 1, fine)
		case tcell.KeyDelete, tcell.KeyBackspace2:
			v.eng.ClearRowHeight(slot.view, h.Index)
		}
	}
	v.dirty = true
}

// cycleFocus advances to the next handle across all tables, wrapping to
// unfocused after the last one.
func (v *Viewer) cycleFocus() {
	if len(v.slots) == 0 {
		return
	}
	slot, handle := v.focusSlot, v.focusHandle
	if slot < 0 {
		slot, handle = 0, 0
	} else {
		handle++
	}
	for slot < len(v.slots) {
		if handle < len(v.eng.Handles(v.slots[slot].view)) {
			v.focusSlot, v.focusHandle = slot, handle
			return
		}
		slot++
		handle = 0
	}
	v.focusSlot = -1
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	btn := ev.Buttons()

	switch {
	case btn&tcell.Button1 != 0 && v.noDrag():
		v.beginDrag(x, y, ev.Modifiers())
	case btn&tcell.Button1 != 0:
		v.moveDrag(x, y, ev.Modifiers())
	default:
		v.endDrag()
	}
}

func (v *Viewer) noDrag() bool {
	return v.colDrag == nil && v.rowDrag == nil && v.outerDrag == nil
}

// beginDrag hit-tests the press against table handles. A second press on
// the same boundary within the double-click window fires the configured
// double action instead of a drag.
func (v *Viewer) beginDrag(x, y int, mods tcell.ModMask) {
	for _, slot := range v.slots {
		if y < slot.y || y >= slot.y+slot.h {
			continue
		}
		// Outer handle: the table's right border column.
		if x == slot.x+slot.w-1 {
			v.outerDrag = v.eng.StartOuterDrag(slot.view, float64(x))
			v.dragSlot = slot
			return
		}
		for i, bx := range slot.boundaries {
			if x != bx {
				continue
			}
			now := time.Now()
			if now.Sub(v.lastClickAt) < doubleClickWindow && v.lastClickX == x && v.lastClickY == y {
				v.eng.ColumnDoubleAction(slot.view, i)
				v.lastClickAt = time.Time{}
				v.dirty = true
				return
			}
			v.lastClickAt, v.lastClickX, v.lastClickY = now, x, y
			v.colDrag = v.eng.StartColumnDrag(slot.view, i, float64(x))
			v.dragSlot = slot
			return
		}
		for r, by := range slot.rowBottoms {
			if y == by {
				v.rowDrag = v.eng.StartRowDrag(slot.view, r, float64(y))
				v.dragSlot = slot
				return
			}
		}
	}
}

func (v *Viewer) moveDrag(x, y int, mods tcell.ModMask) {
	bypassSnap := mods&tcell.ModAlt != 0
	switch {
	case v.colDrag != nil:
		v.colDrag.Move(float64(x), bypassSnap)
		v.dirty = true
	case v.outerDrag != nil:
		v.outerDrag.Move(float64(x))
	case v.rowDrag != nil:
		v.rowDrag.Move(float64(y))
		v.dirty = true
	}
}

func (v *Viewer) endDrag() {
	switch {
	case v.colDrag != nil:
		v.colDrag.Finish()
		v.colDrag = nil
	case v.outerDrag != nil:
		v.outerDrag.Finish()
		v.outerDrag = nil
	case v.rowDrag != nil:
		v.rowDrag.Finish()
		v.rowDrag = nil
	}
	if v.dragSlot != nil {
		v.dragSlot = nil
		v.dirty = true
	}
}

// draw renders the whole document. Cheap enough for interactive use; the
// documents this viewer targets are small.
func (v *Viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	m := v.measure(nil)
	left := int(m.LeftOffset)
	line := int(m.LineWidth)

	y := -v.scrollY
	tableIdx := 0
	for _, b := range v.blocks {
		switch b.Kind {
		case BlockBlank:
			y++
		case BlockHeading:
			style := tcell.StyleDefault.Bold(true)
			if b.Level == 1 {
				style = style.Underline(true)
			}
			drawText(v.screen, left, y, line, b.Text, style)
			y += 2
		case BlockParagraph:
			y += drawWrapped(v.screen, left, y, line, b.Text)
		case BlockCode:
			for _, styled := range HighlightBlock(b, "") {
				x := left + 2
				for _, sr := range styled {
					if y >= 0 && y < h && x < w {
						v.screen.SetContent(x, y, sr.R, nil, sr.Style)
					}
					x += runewidth.RuneWidth(sr.R)
				}
				y++
			}
			y++
		case BlockTable:
			if tableIdx < len(v.slots) {
				y = v.drawTable(v.slots[tableIdx], left, y, h) + 1
				tableIdx++
			}
		}
	}
	v.screen.Show()
}

// drawTable paints one table with box borders and records its hit-test
// geometry. Returns the y below the table.
func (v *Viewer) drawTable(slot *tableSlot, left, y, screenH int) int {
	tv := slot.view
	m := v.measure(tv)
	avail := int(m.LineWidth)

	originX := left
	if bo := tv.Breakout(); bo != nil {
		originX = left + int(bo.OffsetX) + int(bo.PadX)
		avail = int(bo.ContainerWidth)
	}

	widths := tv.ResolvedColumnWidths(avail)
	slot.x = originX
	slot.y = y
	slot.boundaries = slot.boundaries[:0]
	slot.rowBottoms = slot.rowBottoms[:0]

	totalW := 1
	for _, cw := range widths {
		totalW += cw + 1
	}
	slot.w = totalW

	scroll := 0
	if bo := tv.Breakout(); bo != nil && bo.Scrollable {
		scroll = int(tv.ScrollX())
	}

	// Which of this table's handles has keyboard focus, if any.
	hlCol, hlRow, hlOuter := -1, -1, false
	if v.focusSlot >= 0 && v.focusSlot < len(v.slots) && v.slots[v.focusSlot] == slot {
		handles := v.eng.Handles(tv)
		if v.focusHandle < len(handles) {
			switch h := handles[v.focusHandle]; h.Kind {
			case engine.HandleColumn:
				hlCol = h.Index
			case engine.HandleRow:
				hlRow = h.Index
			case engine.HandleOuter:
				hlOuter = true
			}
		}
	}

	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	focusStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	drawBorderRow(v.screen, originX-scroll, y, widths, '┌', '┬', '┐', borderStyle)
	y++

	for r := 0; r < tv.Rows(); r++ {
		height := int(tv.RowHeight(r))
		if height < 1 {
			height = 1
		}
		for hline := 0; hline < height; hline++ {
			x := originX - scroll
			v.screen.SetContent(x, y, '│', nil, borderStyle)
			x++
			for c, cw := range widths {
				text := ""
				if hline == 0 {
					text = tv.Cell(r, c)
				}
				style := tcell.StyleDefault
				if r == 0 && tv.HasHeader() {
					style = style.Bold(true)
				}
				drawText(v.screen, x, y, cw, " "+text, style)
				x += cw
				bst := borderStyle
				if c == hlCol || (hlOuter && c == len(widths)-1) {
					bst = focusStyle
				}
				v.screen.SetContent(x, y, '│', nil, bst)
				if hline == 0 && r == 0 && c < len(widths)-1 {
					slot.boundaries = append(slot.boundaries, x)
				}
				x++
			}
			y++
		}
		slot.rowBottoms = append(slot.rowBottoms, y)
		if r < tv.Rows()-1 {
			st := borderStyle
			if r == hlRow {
				st = focusStyle
			}
			drawBorderRow(v.screen, originX-scroll, y, widths, '├', '┼', '┤', st)
			y++
		}
	}
	bottom := borderStyle
	if hlRow == tv.Rows()-1 {
		bottom = focusStyle
	}
	drawBorderRow(v.screen, originX-scroll, y, widths, '└', '┴', '┘', bottom)
	y++
	slot.h = y - slot.y
	return y
}

func drawBorderRow(s tcell.Screen, x, y int, widths []int, l, m, r rune, style tcell.Style) {
	s.SetContent(x, y, l, nil, style)
	x++
	for c, cw := range widths {
		for i := 0; i < cw; i++ {
			s.SetContent(x, y, '─', nil, style)
			x++
		}
		edge := m
		if c == len(widths)-1 {
			edge = r
		}
		s.SetContent(x, y, edge, nil, style)
		x++
	}
}

// drawText writes text clipped to width, runewidth-aware.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if col+rw > width {
			break
		}
		s.SetContent(x+col, y, r, nil, style)
		col += rw
	}
}

// drawWrapped writes a paragraph word-wrapped to width, returning the
// number of lines used (plus the trailing blank).
func drawWrapped(s tcell.Screen, x, y, width int, text string) int {
	if text == "" {
		return 1
	}
	lines := 0
	for len(text) > 0 {
		n := len(text)
		if runewidth.StringWidth(text) > width {
			// Break at the last space fitting the width.
			cut := 0
			col := 0
			for i, r := range text {
				col += runewidth.RuneWidth(r)
				if col > width {
					break
				}
				if r == ' ' {
					cut = i
				}
			}
			if cut == 0 {
				cut = width
				if cut > n {
					cut = n
				}
			}
			n = cut
		}
		drawText(s, x, y+lines, width, text[:n], tcell.StyleDefault)
		text = trimLeadingSpace(text[n:])
		lines++
	}
	return lines + 1
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}

// DumpLayout logs the resolved layout, used by the demo's debug key.
func (v *Viewer) DumpLayout() {
	for i, slot := range v.slots {
		log.Printf("Viewer: table %d at (%d,%d) %dx%d widths=%v",
			i, slot.x, slot.y, slot.w, slot.h,
			slot.view.ResolvedColumnWidths(readingColumnWidth))
	}
}
