// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended by the truncation helpers.
const Ellipsis = "…"

// StringWidth returns the number of terminal cells s occupies. Hangul and
// other wide scripts count as two cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth shortens s to at most maxWidth cells, ending in an ellipsis
// when anything was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// Ellipsize fits s into width cells and always ends it with an ellipsis.
// Used when text was already cut elsewhere, such as a wrapped paragraph
// with lines left over.
func Ellipsize(s string, width int) string {
	tail := runewidth.StringWidth(Ellipsis)
	if width <= tail {
		return Ellipsis
	}
	return runewidth.Truncate(s, width-tail, "") + Ellipsis
}

// TruncateRunes shortens s to at most maxRunes runes, ending in an ellipsis
// when anything was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return Ellipsis
	}
	return string(runes[:maxRunes-1]) + Ellipsis
}

// WrapWidth breaks s into lines no wider than width cells. Existing line
// breaks are kept; words longer than width are split.
func WrapWidth(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var line strings.Builder
		lineWidth := 0
		paraStart := len(lines)
		for _, word := range strings.Fields(para) {
			ww := runewidth.StringWidth(word)
			if lineWidth > 0 && lineWidth+1+ww > width {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			for ww > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// a single rune wider than the line
					_, size := utf8.DecodeRuneInString(word)
					head = word[:size]
				}
				if lineWidth > 0 {
					lines = append(lines, line.String())
					line.Reset()
					lineWidth = 0
				}
				lines = append(lines, head)
				word = word[len(head):]
				ww = runewidth.StringWidth(word)
			}
			if word == "" {
				continue
			}
			if lineWidth > 0 {
				line.WriteByte(' ')
				lineWidth++
			}
			line.WriteString(word)
			lineWidth += ww
		}
		if lineWidth > 0 || len(lines) == paraStart {
			lines = append(lines, line.String())
		}
	}
	return lines
}
