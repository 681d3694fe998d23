// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/tabulon/main.go
// Summary: Demo viewer binary: opens a document, restores table layouts,
// and lets the user resize interactively.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/tabulon/engine"
	"github.com/framegrace/tabulon/sizing"
	"github.com/framegrace/tabulon/view"
)

const demoDocument = `# Tabulon

Drag a column border to resize. Hold Alt to bypass snapping. Drag the
right table border to resize the whole table. Double-click a border to
autofit. Press q to quit.

| Package  | Files | Lines |
|----------|-------|-------|
| engine   | 9     | 1400  |
| sizing   | 4     | 700   |
| view     | 5     | 900   |

Code fences are highlighted:

` + "```go\npackage main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n```\n"

func main() {
	var (
		storeKind   = flag.String("store", "file", "layout persister: file or sqlite")
		statePath   = flag.String("state", "", "state directory (default ~/.tabulon)")
		logPath     = flag.String("log", "", "append logs to this file instead of stderr")
		surfaceName = flag.String("surface", "reading", "hosting surface: reading or editing")
	)
	flag.Parse()

	surface := engine.SurfaceReading
	if *surfaceName == "editing" {
		surface = engine.SurfaceEditing
	}

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	dir := *statePath
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "home dir: %v\n", err)
			os.Exit(1)
		}
		dir = filepath.Join(home, ".tabulon")
	}

	var (
		persister sizing.Persister
		err       error
	)
	switch *storeKind {
	case "sqlite":
		var sq *sizing.SQLStore
		sq, err = sizing.NewSQLStore(filepath.Join(dir, "layouts.db"))
		if err == nil {
			defer sq.Close()
			persister = sq
		}
	case "file":
		persister = sizing.NewFileStore(filepath.Join(dir, "layouts.json"))
	default:
		err = fmt.Errorf("unknown store kind %q", *storeKind)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: %v\n", err)
		os.Exit(1)
	}

	store := sizing.NewStore(persister)
	settings := loadSettings(store)

	docPath := "demo.md"
	source := demoDocument
	if flag.NArg() > 0 {
		docPath = flag.Arg(0)
		data, err := os.ReadFile(docPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read document: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen init: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	v := view.NewViewer(screen, store, settings, surface, docPath, source)
	if err := v.Run(); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings merges persisted settings over the defaults. Unknown fields
// in the stored blob survive the round trip untouched.
func loadSettings(store *sizing.Store) engine.Settings {
	s := engine.DefaultSettings()
	if raw := store.Settings(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &s); err != nil {
			log.Printf("Main: ignoring bad stored settings: %v", err)
		}
	}
	return s
}
