// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package sizing

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestSQLStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "layouts.db")
	st, err := NewSQLStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	if data, err := st.Load(); err != nil || data != nil {
		t.Fatalf("fresh load should be (nil, nil), got %v, %v", data, err)
	}

	a := Identity{Path: "doc.md", Fingerprint: "2:A|B"}
	b := Identity{Path: "doc.md", Fingerprint: "3:A|B|C"}
	payload := &PluginData{
		Tables: map[string]Record{
			a.Key(): {Ratios: []float64{0.5, 0.5}, UpdatedAt: 10},
			b.Key(): {Ratios: []float64{0.2, 0.3, 0.5}, RowHeights: map[int]float64{1: 33}, UpdatedAt: 20},
		},
		Version:  StoreVersion,
		Settings: json.RawMessage(`{"minColumnWidth":60}`),
	}
	if err := st.Save(payload); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Tables) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded.Tables))
	}
	rec := loaded.Tables[b.Key()]
	if rec.RowHeights[1] != 33 || rec.UpdatedAt != 20 {
		t.Errorf("record fields lost: %+v", rec)
	}
	if string(loaded.Settings) != `{"minColumnWidth":60}` {
		t.Errorf("settings lost: %s", loaded.Settings)
	}
}

func TestSQLStoreSaveReplacesStaleRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "layouts.db")
	st, err := NewSQLStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	old := Identity{Path: "old.md", Fingerprint: "2:A|B"}
	if err := st.Save(&PluginData{
		Tables:  map[string]Record{old.Key(): {Ratios: []float64{0.5, 0.5}, UpdatedAt: 1}},
		Version: StoreVersion,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Simulate a rename: the payload now only holds the new key.
	renamed := Identity{Path: "new.md", Fingerprint: "2:A|B"}
	if err := st.Save(&PluginData{
		Tables:  map[string]Record{renamed.Key(): {Ratios: []float64{0.5, 0.5}, UpdatedAt: 2}},
		Version: StoreVersion,
	}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := loaded.Tables[old.Key()]; ok {
		t.Errorf("stale row survived a save")
	}
	if _, ok := loaded.Tables[renamed.Key()]; !ok {
		t.Errorf("renamed row missing")
	}
}
