// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/adapt.go
// Summary: Column adaptation: reusing stored widths after a table's column
// set changes, via header-label subsequence alignment.

package engine

import (
	"log"

	"github.com/framegrace/tabulon/geom"
	"github.com/framegrace/tabulon/sizing"
)

// adaptColumns aligns the most recent record for the table's document path
// to the live column set. It carries widths over by position when the
// counts match (pure header-text edits), otherwise by matching header
// labels left to right as a subsequence: recognized columns keep their
// historical width, inserted columns get the minimum width. Information is
// never deleted, only reused. On success the adapted record is persisted
// under the live key and returned; the caller falls back to a fresh
// derivation on failure.
func (e *Engine) adaptColumns(b *binding, cols int) (sizing.Record, bool) {
	t := b.table
	match, ok := e.store.MostRecentForPath(b.identity.Path)
	if !ok {
		return sizing.Record{}, false
	}

	// Reconstruct the donor's historical pixel widths from its base.
	base := match.Record.BaseWidth(t.ContainerWidth())
	if base <= 0 || len(match.Record.Ratios) == 0 {
		return sizing.Record{}, false
	}
	hist := make([]float64, len(match.Record.Ratios))
	for i, r := range match.Record.Ratios {
		hist[i] = r * base
	}

	var widths []float64
	if len(hist) == cols {
		// Stable column count; carry over by position.
		widths = hist
	} else {
		histLabels, ok := sizing.HeaderLabels(sizing.CanonicalFingerprint(match.Identity.Fingerprint))
		if !ok || len(histLabels) != len(hist) {
			return sizing.Record{}, false
		}
		live := t.HeaderLabels()
		if len(live) != cols {
			return sizing.Record{}, false
		}
		widths = alignWidths(live, histLabels, hist, e.settings.MinColumnWidth)
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total <= 0 {
		return sizing.Record{}, false
	}

	rec := sizing.Record{
		Ratios:      geom.NormalizeRatios(widths),
		LastPxWidth: t.ContainerWidth(),
	}
	e.store.Put(b.key, rec)
	log.Printf("Engine: adapted %d historical columns to %d live columns for %s",
		len(hist), cols, b.identity.Path)
	return rec, true
}

// alignWidths walks the live headers in order; each one consumes the next
// matching historical header (scanning forward so removed columns don't
// derail the rest). Unmatched live headers are insertions and get minWidth.
func alignWidths(live, hist []string, histWidths []float64, minWidth float64) []float64 {
	widths := make([]float64, len(live))
	next := 0
	for li, label := range live {
		found := -1
		for j := next; j < len(hist); j++ {
			if hist[j] == label {
				found = j
				break
			}
		}
		if found >= 0 {
			widths[li] = histWidths[found]
			next = found + 1
		} else {
			widths[li] = minWidth
		}
	}
	return widths
}
