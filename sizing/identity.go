// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizing/identity.go
// Summary: Table identity, fingerprint canonicalization, and key serialization.

// Package sizing holds the persistent sizing data model: table identities,
// size records, the store that maps one to the other, and the persistence
// substrates that back it.
package sizing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Identity names a logical table: the document that contains it plus a
// structural fingerprint of the table itself. Two identities with equal
// path and equal canonical fingerprint denote the same logical table no
// matter which rendering surface produced them.
type Identity struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint formats a column count and header labels into the structural
// signature "{count}:{label1}|{label2}|...". Labels come from header cells,
// or first-row cells when the table has no header.
func Fingerprint(columnCount int, labels []string) string {
	return fmt.Sprintf("%d:%s", columnCount, strings.Join(labels, "|"))
}

// CanonicalFingerprint strips the disambiguating "#n" suffix a rendering
// surface may append when a document holds several structurally identical
// tables. Line-range hints are advisory and never part of the canonical form.
func CanonicalFingerprint(raw string) string {
	if i := strings.LastIndex(raw, "#"); i > 0 {
		suffix := raw[i+1:]
		if suffix != "" && isDigits(suffix) {
			return raw[:i]
		}
	}
	return raw
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Canonical returns the identity with its fingerprint canonicalized.
func (id Identity) Canonical() Identity {
	return Identity{Path: id.Path, Fingerprint: CanonicalFingerprint(id.Fingerprint)}
}

// Key serializes the identity deterministically for use as a store key.
// Field order is fixed by the struct definition, so equal identities always
// produce byte-identical keys.
func (id Identity) Key() string {
	data, err := json.Marshal(id)
	if err != nil {
		// Marshalling a two-string struct cannot fail; keep a readable
		// fallback rather than panicking inside the engine.
		return id.Path + "\x00" + id.Fingerprint
	}
	return string(data)
}

// ParseKey recovers an identity from a serialized key. Unknown fields (old
// versions stored line ranges alongside the identity) are ignored. An error
// marks the key as malformed; scans skip such entries silently.
func ParseKey(key string) (Identity, error) {
	var id Identity
	if err := json.Unmarshal([]byte(key), &id); err != nil {
		return Identity{}, fmt.Errorf("malformed table key %q: %w", key, err)
	}
	if id.Path == "" || id.Fingerprint == "" {
		return Identity{}, fmt.Errorf("malformed table key %q: missing fields", key)
	}
	return id, nil
}

// HeaderLabels parses the label portion of a fingerprint. The second return
// is false when the fingerprint does not carry the expected "count:labels"
// shape.
func HeaderLabels(fingerprint string) ([]string, bool) {
	i := strings.Index(fingerprint, ":")
	if i <= 0 {
		return nil, false
	}
	if !isDigits(fingerprint[:i]) {
		return nil, false
	}
	rest := fingerprint[i+1:]
	if rest == "" {
		return nil, true
	}
	return strings.Split(rest, "|"), true
}
