// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import "testing"

func TestParseDocumentMixedBlocks(t *testing.T) {
	src := "# Title\n" +
		"\n" +
		"Some intro text.\n" +
		"\n" +
		"```go\n" +
		"package main\n" +
		"```\n" +
		"\n" +
		"| Name | Qty |\n" +
		"|------|-----|\n" +
		"| a    | 1   |\n" +
		"| b    | 2   |\n"

	blocks := ParseDocument(src)

	var kinds []BlockKind
	for _, b := range blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []BlockKind{
		BlockHeading, BlockBlank, BlockParagraph, BlockBlank,
		BlockCode, BlockBlank, BlockTable, BlockBlank,
	}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("block %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseHeading(t *testing.T) {
	blocks := ParseDocument("## Section Two")
	if blocks[0].Level != 2 || blocks[0].Text != "Section Two" {
		t.Fatalf("heading = level %d %q", blocks[0].Level, blocks[0].Text)
	}
}

func TestParseCodeFenceLanguage(t *testing.T) {
	blocks := ParseDocument("```python\nprint(1)\nprint(2)\n```")
	b := blocks[0]
	if b.Kind != BlockCode || b.Lang != "python" {
		t.Fatalf("code block = %+v", b)
	}
	if len(b.Lines) != 2 {
		t.Fatalf("lines = %v", b.Lines)
	}
}

func TestParseTableWithHeader(t *testing.T) {
	blocks := ParseDocument("| A | B |\n|---|---|\n| 1 | 2 |\n| 3 | 4 |")
	b := blocks[0]
	if !b.HasHeader {
		t.Fatalf("separator row not recognized")
	}
	if len(b.Header) != 2 || b.Header[0] != "A" || b.Header[1] != "B" {
		t.Errorf("header = %v", b.Header)
	}
	if len(b.Cells) != 2 || b.Cells[1][1] != "4" {
		t.Errorf("cells = %v", b.Cells)
	}
}

func TestParseTableWithoutHeader(t *testing.T) {
	blocks := ParseDocument("| x | y |\n| 1 | 2 |")
	b := blocks[0]
	if b.HasHeader {
		t.Fatalf("header claimed without separator row")
	}
	// The first row doubles as the label source.
	if b.Header[0] != "x" {
		t.Errorf("labels = %v", b.Header)
	}
	if len(b.Cells) != 2 {
		t.Errorf("cells = %v", b.Cells)
	}
}

func TestSeparatorRowAlignmentColons(t *testing.T) {
	if !isSeparatorRow("|:---|---:|:--:|") {
		t.Errorf("aligned separator not recognized")
	}
	if isSeparatorRow("| a | b |") {
		t.Errorf("content row treated as separator")
	}
}
