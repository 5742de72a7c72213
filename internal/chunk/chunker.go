package chunk

import (
	"strings"
	"unicode"

	"docqa/internal/util"
)

// Split slices text into overlapping windows of at most size runes with
// overlap runes shared between consecutive chunks. Within a window it prefers
// to break after a paragraph, then a sentence, then a word, and hard-cuts only
// when no such boundary exists. Each chunk starts exactly overlap runes before
// the previous chunk's end, so the input can be reconstructed by concatenating
// the first chunk with every later chunk minus its overlap prefix.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrNoExtractableText
	}

	runes := []rune(text)
	out := make([]string, 0, len(runes)/(size-overlap)+1)
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		cut := breakPoint(runes, start+overlap+1, end)
		out = append(out, string(runes[start:cut]))
		start = cut - overlap
	}
	return out, nil
}

// breakPoint finds the latest natural boundary in (floor, end]. The floor
// keeps every cut past the previous chunk's overlap region so the window
// always advances.
func breakPoint(runes []rune, floor, end int) int {
	if floor < 1 {
		floor = 1
	}
	// Paragraph break.
	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by whitespace.
	for i := end - 1; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	// Word boundary.
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
