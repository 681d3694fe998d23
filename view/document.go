// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package view is the terminal host for the layout engine: it parses a
// lightweight Markdown subset into blocks, renders them into a centered
// reading column with tcell, and exposes every pipe table as an
// engine.Table so the engine can size and persist it.
package view

import (
	"strings"
)

// BlockKind discriminates parsed document blocks.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockCode
	BlockTable
	BlockBlank
)

// Block is one parsed element of the document.
type Block struct {
	Kind BlockKind

	// Paragraph / heading text. Level is set for headings.
	Text  string
	Level int

	// Fenced code: the info string and raw lines.
	Lang  string
	Lines []string

	// Pipe table: header plus body rows, cells trimmed.
	Header []string
	Cells  [][]string
	// HasHeader is false when the table had no separator row; the first
	// body row then doubles as the label source.
	HasHeader bool
}

// ParseDocument splits source into blocks. The grammar is deliberately
// small: ATX headings, ``` fences, pipe tables, everything else a
// paragraph line.
func ParseDocument(source string) []Block {
	lines := strings.Split(source, "\n")
	var blocks []Block

	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			blocks = append(blocks, Block{Kind: BlockBlank})
			i++

		case strings.HasPrefix(trimmed, "```"):
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var body []string
			i++
			for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
				body = append(body, lines[i])
				i++
			}
			if i < len(lines) {
				i++ // closing fence
			}
			blocks = append(blocks, Block{Kind: BlockCode, Lang: lang, Lines: body})

		case strings.HasPrefix(trimmed, "#"):
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			blocks = append(blocks, Block{
				Kind:  BlockHeading,
				Level: level,
				Text:  strings.TrimSpace(trimmed[level:]),
			})
			i++

		case isPipeRow(trimmed):
			tbl, consumed := parseTable(lines[i:])
			blocks = append(blocks, tbl)
			i += consumed

		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: trimmed})
			i++
		}
	}
	return blocks
}

// isPipeRow reports whether a line looks like a pipe-table row.
func isPipeRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.Count(line, "|") >= 2
}

// isSeparatorRow matches the |---|:---| style header separator.
func isSeparatorRow(line string) bool {
	if !isPipeRow(line) {
		return false
	}
	for _, cell := range splitPipeRow(line) {
		c := strings.TrimSpace(cell)
		if c == "" {
			return false
		}
		for _, r := range c {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}

// splitPipeRow splits a pipe row into trimmed cells, dropping the empty
// leading/trailing fields around the outer pipes.
func splitPipeRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// parseTable consumes consecutive pipe rows starting at lines[0] and
// returns the table block plus the number of lines consumed.
func parseTable(lines []string) (Block, int) {
	var rows [][]string
	consumed := 0
	sepAt := -1
	for consumed < len(lines) {
		trimmed := strings.TrimSpace(lines[consumed])
		if !isPipeRow(trimmed) {
			break
		}
		if isSeparatorRow(trimmed) && sepAt < 0 && consumed == 1 {
			sepAt = consumed
			consumed++
			continue
		}
		rows = append(rows, splitPipeRow(trimmed))
		consumed++
	}

	b := Block{Kind: BlockTable}
	if sepAt == 1 && len(rows) > 0 {
		b.HasHeader = true
		b.Header = rows[0]
		b.Cells = rows[1:]
	} else if len(rows) > 0 {
		b.Header = rows[0]
		b.Cells = rows
	}
	return b, consumed
}
