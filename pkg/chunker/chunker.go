package chunker

import (
	"strings"

	"github.com/ctangarife/legalbot/internal/models"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 200
)

// Splitter converts raw text into overlapping chunks. Chunk size is a
// soft target: a single paragraph or sentence longer than the limit is
// kept whole rather than truncated mid-clause.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split segments text into ordered chunks with overlap injected between
// neighbors. Empty or whitespace-only input yields nil. Split has no
// side effects; identical inputs produce identical chunk boundaries.
func (s *Splitter) Split(text, filename, fileType string) []models.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	parts := s.segment(text)
	if len(parts) == 0 {
		return nil
	}
	parts = s.injectOverlap(parts)

	chunks := make([]models.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = models.Chunk{
			Text:     part,
			Filename: filename,
			FileType: fileType,
			Index:    i,
		}
	}
	return chunks
}

// segment is the primary pass: paragraphs are accumulated greedily into
// a running buffer, and paragraphs longer than the chunk size are broken
// further on sentence boundaries. The buffer is flushed whenever the
// next unit would overflow, and once more at end of input.
func (s *Splitter) segment(text string) []string {
	var chunks []string
	var current string

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if runeLen(paragraph) > s.chunkSize {
			// Splitting on a literal ". " means abbreviations and
			// decimal numbers can produce spurious sentence breaks.
			// Known limitation, kept for stable chunk boundaries.
			for _, sentence := range strings.Split(paragraph, ". ") {
				sentence = strings.TrimSpace(sentence)
				if sentence == "" {
					continue
				}
				if runeLen(current)+runeLen(sentence)+2 <= s.chunkSize {
					current += sentence + ". "
				} else {
					flush()
					current = sentence + ". "
				}
			}
		} else {
			if runeLen(current)+runeLen(paragraph)+2 > s.chunkSize {
				flush()
				current = paragraph + "\n\n"
			} else {
				current += paragraph + "\n\n"
			}
		}
	}

	flush()
	return chunks
}

// injectOverlap rewrites each chunk with the tail of its predecessor and
// the head of its successor. It reads only the pre-overlap texts, so
// overlap regions are never themselves re-overlapped.
func (s *Splitter) injectOverlap(chunks []string) []string {
	if s.chunkOverlap <= 0 || len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	for i, text := range chunks {
		if i > 0 {
			text = lastRunes(chunks[i-1], s.chunkOverlap) + "\n\n" + text
		}
		if i < len(chunks)-1 {
			text = text + "\n\n" + firstRunes(chunks[i+1], s.chunkOverlap)
		}
		out[i] = strings.TrimSpace(text)
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
