// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizing/record.go
// Summary: Persisted size record and the on-disk payload shape.

package sizing

import "encoding/json"

// Record is the persisted sizing state for one logical table. Ratios are
// fractions of the table width that sum to 1; a record only applies directly
// when len(Ratios) equals the live column count. A mismatch signals a
// structural change handled by column adaptation, never an error.
type Record struct {
	// Ratios holds one positive fraction per column.
	Ratios []float64 `json:"ratios"`
	// LastPxWidth is the container width observed at the last commit.
	LastPxWidth float64 `json:"lastPxWidth,omitempty"`
	// TablePxWidth is the explicit table width set via the outer handle.
	// When present and positive it takes precedence over the live
	// container width as the ratio base.
	TablePxWidth float64 `json:"tablePxWidth,omitempty"`
	// RowHeights maps row index to an explicit pixel height. Rows without
	// an entry size automatically.
	RowHeights map[int]float64 `json:"rowHeights,omitempty"`
	// UpdatedAt is a unix-millisecond timestamp. It breaks ties during
	// legacy-key promotion and selects the donor record for adaptation.
	UpdatedAt int64 `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate without aliasing stored
// state.
func (r Record) Clone() Record {
	out := r
	out.Ratios = append([]float64(nil), r.Ratios...)
	if r.RowHeights != nil {
		out.RowHeights = make(map[int]float64, len(r.RowHeights))
		for k, v := range r.RowHeights {
			out.RowHeights[k] = v
		}
	}
	return out
}

// BaseWidth picks the width to multiply ratios against: the explicit table
// width when present and positive, else the last seen container width, else
// the provided live width.
func (r Record) BaseWidth(liveWidth float64) float64 {
	if r.TablePxWidth > 0 {
		return r.TablePxWidth
	}
	if r.LastPxWidth > 0 {
		return r.LastPxWidth
	}
	return liveWidth
}

// PluginData is the complete persisted payload. Settings ride along as raw
// JSON so unknown fields written by newer versions survive a load/save
// round-trip.
type PluginData struct {
	Tables   map[string]Record `json:"tables"`
	Version  int               `json:"version"`
	Settings json.RawMessage   `json:"settings,omitempty"`
}

// StoreVersion is written into every saved payload.
const StoreVersion = 1

// Persister is the host persistence substrate. Load returns nil data when
// nothing has been stored yet. Save failures are logged by the store and
// otherwise swallowed; in-memory state stays authoritative until the next
// successful flush.
type Persister interface {
	Load() (*PluginData, error)
	Save(*PluginData) error
}
