// Package chunker splits normalized document text into a bounded number of
// ordered, non-overlapping segments sized for the provider's context window.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Chunk is one ordered slice of the normalized text. Start and End are byte
// offsets into the input; concatenating chunks in index order reconstructs
// the document (minus inter-chunk separators).
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Config controls chunking behavior.
type Config struct {
	CharBudget int // target characters (runes) per chunk
	MaxChunks  int // hard cap on chunk count
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CharBudget: 8000,
		MaxChunks:  20,
	}
}

// segment is a splittable unit (paragraph or sentence) with its offsets.
type segment struct {
	start int
	end   int
}

// Split chunks text greedily on paragraph and sentence boundaries up to the
// character budget, then merges adjacent chunks smallest-first until the
// count cap holds. Content is never truncated. Identical input always
// produces identical boundaries.
func Split(text string, cfg Config) []Chunk {
	if cfg.CharBudget <= 0 {
		cfg.CharBudget = 8000
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = 20
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segs := splitSegments(text, cfg.CharBudget)
	chunks := packSegments(text, segs, cfg.CharBudget)
	chunks = mergeToLimit(text, chunks, cfg.MaxChunks)

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// splitSegments finds paragraph boundaries (blank lines); paragraphs over
// the budget are further split on sentence boundaries, and a single
// oversized sentence is hard-split at the budget.
func splitSegments(text string, budget int) []segment {
	var segs []segment
	for _, p := range paragraphs(text) {
		if span(text, p.start, p.end) <= budget {
			segs = append(segs, p)
			continue
		}
		for _, s := range sentences(text, p) {
			if span(text, s.start, s.end) <= budget {
				segs = append(segs, s)
				continue
			}
			segs = append(segs, hardSplit(text, s, budget)...)
		}
	}
	return segs
}

// span measures a text range in runes. The budget is a character count, so
// multi-byte text must not be measured in bytes.
func span(text string, start, end int) int {
	return utf8.RuneCountInString(text[start:end])
}

func paragraphs(text string) []segment {
	var segs []segment
	start := -1
	lineStart := 0
	blank := func(line string) bool { return strings.TrimSpace(line) == "" }

	flush := func(end int) {
		if start >= 0 {
			segs = append(segs, segment{start: start, end: end})
			start = -1
		}
	}

	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		line := text[lineStart:i]
		if blank(line) {
			flush(lineStart)
		} else if start < 0 {
			start = lineStart + leadingSpace(line)
		}
		lineStart = i + 1
	}
	flush(len(text))

	// Trim trailing whitespace off each paragraph.
	for i := range segs {
		for segs[i].end > segs[i].start && isSpace(text[segs[i].end-1]) {
			segs[i].end--
		}
	}
	return segs
}

// sentences splits a paragraph on terminal punctuation followed by a space.
func sentences(text string, p segment) []segment {
	var segs []segment
	start := p.start
	for i := p.start; i < p.end; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < p.end && text[i+1] == ' ' {
			segs = append(segs, segment{start: start, end: i + 1})
			start = i + 2
			for start < p.end && text[start] == ' ' {
				start++
			}
			i = start - 1
		}
	}
	if start < p.end {
		segs = append(segs, segment{start: start, end: p.end})
	}
	return segs
}

// hardSplit cuts a segment every budget runes.
func hardSplit(text string, s segment, budget int) []segment {
	var segs []segment
	start := s.start
	count := 0
	for i := s.start; i < s.end; {
		_, size := utf8.DecodeRuneInString(text[i:s.end])
		i += size
		count++
		if count == budget {
			segs = append(segs, segment{start: start, end: i})
			start = i
			count = 0
		}
	}
	if start < s.end {
		segs = append(segs, segment{start: start, end: s.end})
	}
	return segs
}

// packSegments greedily accumulates segments into chunks up to the budget,
// measured as the span over the original text.
func packSegments(text string, segs []segment, budget int) []Chunk {
	var chunks []Chunk
	var cur *segment

	flush := func() {
		if cur != nil {
			chunks = append(chunks, Chunk{
				Text:  text[cur.start:cur.end],
				Start: cur.start,
				End:   cur.end,
			})
			cur = nil
		}
	}

	for _, s := range segs {
		if cur != nil && span(text, cur.start, s.end) > budget {
			flush()
		}
		if cur == nil {
			c := s
			cur = &c
		} else {
			cur.end = s.end
		}
	}
	flush()
	return chunks
}

// mergeToLimit merges adjacent chunk pairs, smallest combined span first
// (ties resolved toward the lower index), until the count cap holds.
func mergeToLimit(text string, chunks []Chunk, max int) []Chunk {
	for len(chunks) > max {
		best := 0
		bestSize := -1
		for i := 0; i < len(chunks)-1; i++ {
			size := span(text, chunks[i].Start, chunks[i].End) + span(text, chunks[i+1].Start, chunks[i+1].End)
			if bestSize < 0 || size < bestSize {
				best = i
				bestSize = size
			}
		}
		merged := Chunk{
			Start: chunks[best].Start,
			End:   chunks[best+1].End,
		}
		merged.Text = text[merged.Start:merged.End]
		chunks = append(chunks[:best], append([]Chunk{merged}, chunks[best+2:]...)...)
	}
	return chunks
}

func leadingSpace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
