// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: view/highlight.go
// Summary: Code-fence highlighting: language inference and chroma token
// colors mapped onto tcell styles.

package view

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"
)

const defaultStyleName = "catppuccin-mocha"

// chromaStyle resolves a style name, falling back to the default.
func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = defaultStyleName
	}
	return styles.Get(name)
}

// inferLanguage guesses the language of a code fence with no info string.
// Shebangs win, then chroma's content analysis, then enry's classifier.
// Returns "" when nothing is confident enough.
func inferLanguage(code string) string {
	if code == "" {
		return ""
	}

	if strings.HasPrefix(code, "#!") {
		if lang, ok := enry.GetLanguageByShebang([]byte(code)); ok {
			return lang
		}
	}

	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}

	if lang := enry.GetLanguage("snippet", []byte(code)); lang != "" {
		return lang
	}
	return ""
}

// StyledRune is one highlighted cell of a code line.
type StyledRune struct {
	R     rune
	Style tcell.Style
}

// HighlightBlock tokenizes a code block and returns per-line styled runes.
// Lines come back 1:1 with the input; tokenization runs over the whole
// block so the lexer sees full context.
func HighlightBlock(b Block, styleName string) [][]StyledRune {
	lang := b.Lang
	source := strings.Join(b.Lines, "\n")
	if lang == "" {
		lang = inferLanguage(source)
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := chromaStyle(styleName)

	out := make([][]StyledRune, len(b.Lines))
	tokens, err := chroma.Tokenise(lexer, nil, source)
	if err != nil {
		for i, line := range b.Lines {
			out[i] = plainRunes(line)
		}
		return out
	}

	row := 0
	for _, tok := range tokens {
		st := tokenStyle(style, tok.Type)
		for _, r := range tok.Value {
			if r == '\n' {
				row++
				continue
			}
			if row < len(out) {
				out[row] = append(out[row], StyledRune{R: r, Style: st})
			}
		}
	}
	return out
}

// tokenStyle maps a chroma token entry onto a tcell style.
func tokenStyle(style *chroma.Style, t chroma.TokenType) tcell.Style {
	entry := style.Get(t)
	st := tcell.StyleDefault
	if entry.Colour.IsSet() {
		st = st.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}

func plainRunes(line string) []StyledRune {
	out := make([]StyledRune, 0, len(line))
	for _, r := range line {
		out = append(out, StyledRune{R: r, Style: tcell.StyleDefault})
	}
	return out
}
