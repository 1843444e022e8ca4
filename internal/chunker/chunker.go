package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// breakLookback bounds how far back from a chunk boundary the splitter
// searches for a natural break.
const breakLookback = 100

// Chunker splits text into overlapping character-based chunks, preferring to
// cut at sentence endings, newlines or spaces near the boundary.
type Chunker struct {
	maxSize int
	overlap int
}

// New returns a Chunker. Overlap must be smaller than maxSize or every step
// would re-cover ground already emitted.
func New(maxSize, overlap int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("overlap (%d) must be smaller than chunk size (%d)", overlap, maxSize)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// Chunk splits text into chunks of at most maxSize characters with overlap
// characters shared between consecutive chunks. Whitespace is trimmed from
// each chunk; empty chunks are dropped. Text that fits in a single chunk is
// returned as-is.
func (c *Chunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.maxSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.maxSize
		if end >= len(text) {
			if tail := strings.TrimSpace(text[start:]); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		end = c.findBreak(text, start, end)
		if span := strings.TrimSpace(text[start:end]); span != "" {
			chunks = append(chunks, span)
		}

		next := end - c.overlap
		if next <= start {
			next = end
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
	return chunks
}

// findBreak searches backward from end for a natural break point, looking at
// most breakLookback characters. Sentence endings win over newlines, which
// win over spaces. When no break is found the split is mid-word, at the
// nearest rune boundary at or before end.
func (c *Chunker) findBreak(text string, start, end int) int {
	floor := end - breakLookback
	if floor < start+1 {
		floor = start + 1
	}

	sentence, newline, space := -1, -1, -1
	for i := end - 1; i >= floor; i-- {
		switch text[i] {
		case '.', '!', '?':
			if sentence == -1 {
				sentence = i + 1
			}
		case '\n':
			if newline == -1 {
				newline = i + 1
			}
		case ' ':
			if space == -1 {
				space = i + 1
			}
		}
		if sentence != -1 {
			break
		}
	}

	switch {
	case sentence != -1:
		return sentence
	case newline != -1:
		return newline
	case space != -1:
		return space
	}

	// Hard cut: back up so a multi-byte rune is never split.
	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
