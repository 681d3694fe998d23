// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizing/store.go
// Summary: In-memory table-size store with canonical-key resolution,
// legacy-key promotion, and fire-and-forget persistence.

package sizing

import (
	"log"
	"time"
)

// Store maps canonical identity keys to size records. It is the single
// writer of persisted sizing state: the layout engine proposes completed
// records and the store commits them.
//
// Concurrent commits to the same key from two bound surfaces resolve as
// last-writer-wins with no merge. That is an accepted limitation of the
// model, not a consistency guarantee.
type Store struct {
	persister Persister
	tables    map[string]Record
	settings  []byte // opaque settings payload, preserved across saves

	// now is split out for tests.
	now func() time.Time
}

// NewStore creates a store backed by the given persister and loads any
// existing payload. A load failure starts the store empty; the error is
// logged, not returned, because an empty store is always usable.
func NewStore(p Persister) *Store {
	s := &Store{
		persister: p,
		tables:    make(map[string]Record),
		now:       time.Now,
	}
	if p == nil {
		return s
	}
	data, err := p.Load()
	if err != nil {
		log.Printf("Store: load failed, starting empty: %v", err)
		return s
	}
	if data != nil {
		if data.Tables != nil {
			s.tables = data.Tables
		}
		s.settings = data.Settings
		log.Printf("Store: loaded %d table records (version %d)", len(s.tables), data.Version)
	}
	return s
}

// ResolveKey canonicalizes the identity and returns its store key. When no
// record exists under the canonical key, it scans for records stored under
// older pre-canonicalization keys with the same path and canonical
// fingerprint and promotes the most recently updated one to the canonical
// key. The old record stays in place. The promotion re-runs lazily on every
// miss, so it happens at most once per canonical key: after a hit the scan
// is skipped entirely.
func (s *Store) ResolveKey(id Identity) string {
	canonical := id.Canonical()
	key := canonical.Key()
	if _, ok := s.tables[key]; ok {
		return key
	}

	var best Record
	found := false
	for k, rec := range s.tables {
		legacy, err := ParseKey(k)
		if err != nil {
			// Malformed entries never abort the scan.
			continue
		}
		if legacy.Path != canonical.Path {
			continue
		}
		if CanonicalFingerprint(legacy.Fingerprint) != canonical.Fingerprint {
			continue
		}
		if !found || rec.UpdatedAt > best.UpdatedAt {
			best = rec
			found = true
		}
	}
	if found {
		s.tables[key] = best.Clone()
		log.Printf("Store: promoted legacy record to canonical key for %s", canonical.Path)
		s.flush()
	}
	return key
}

// Get returns the record stored under key.
func (s *Store) Get(key string) (Record, bool) {
	rec, ok := s.tables[key]
	if !ok {
		return Record{}, false
	}
	return rec.Clone(), true
}

// Put overwrites the record under key, stamps UpdatedAt, and schedules
// persistence.
func (s *Store) Put(key string, rec Record) {
	rec = rec.Clone()
	rec.UpdatedAt = s.now().UnixMilli()
	s.tables[key] = rec
	s.flush()
}

// PathMatch is the result of MostRecentForPath.
type PathMatch struct {
	Identity Identity
	Key      string
	Record   Record
}

// MostRecentForPath scans every record and returns the one with the greatest
// UpdatedAt whose identity path equals path, regardless of fingerprint. The
// column-adaptation resolver uses it to find a donor record after a
// structural change.
func (s *Store) MostRecentForPath(path string) (PathMatch, bool) {
	var match PathMatch
	found := false
	for k, rec := range s.tables {
		id, err := ParseKey(k)
		if err != nil {
			continue
		}
		if id.Path != path {
			continue
		}
		if !found || rec.UpdatedAt > match.Record.UpdatedAt {
			match = PathMatch{Identity: id, Key: k, Record: rec.Clone()}
			found = true
		}
	}
	return match, found
}

// RekeyPath rewrites the path component of every identity currently equal to
// oldPath. Triggered once per host rename notification.
func (s *Store) RekeyPath(oldPath, newPath string) {
	if oldPath == newPath {
		return
	}
	moved := 0
	for k, rec := range s.tables {
		id, err := ParseKey(k)
		if err != nil || id.Path != oldPath {
			continue
		}
		id.Path = newPath
		delete(s.tables, k)
		s.tables[id.Key()] = rec
		moved++
	}
	if moved > 0 {
		log.Printf("Store: rekeyed %d records from %s to %s", moved, oldPath, newPath)
		s.flush()
	}
}

// Settings returns the opaque settings payload loaded with the store.
func (s *Store) Settings() []byte {
	return s.settings
}

// SetSettings replaces the settings payload and schedules persistence.
func (s *Store) SetSettings(raw []byte) {
	s.settings = raw
	s.flush()
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	return len(s.tables)
}

// flush hands the current payload to the persister. Failures are logged and
// dropped: the store never retries, and in-memory state stays authoritative
// for the session.
func (s *Store) flush() {
	if s.persister == nil {
		return
	}
	data := &PluginData{
		Tables:   s.tables,
		Version:  StoreVersion,
		Settings: s.settings,
	}
	if err := s.persister.Save(data); err != nil {
		log.Printf("Store: save failed: %v", err)
	}
}
