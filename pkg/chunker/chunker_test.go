package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctangarife/legalbot/internal/models"
	"github.com/ctangarife/legalbot/pkg/chunker"
)

func TestSplit_EmptyInput(t *testing.T) {
	s := chunker.New(800, 200)

	assert.Nil(t, s.Split("", "a.txt", ".txt"))
	assert.Nil(t, s.Split("   \n\n\t  ", "a.txt", ".txt"))
}

func TestSplit_SmallTextSingleChunk(t *testing.T) {
	s := chunker.New(800, 200)

	chunks := s.Split("A short clause.", "contract.txt", ".txt")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short clause.", chunks[0].Text)
	assert.Equal(t, "contract.txt", chunks[0].Filename)
	assert.Equal(t, ".txt", chunks[0].FileType)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestSplit_ParagraphBoundaries(t *testing.T) {
	// Two 100-char paragraphs with chunk size 150: the second paragraph
	// does not fit behind the first, so each gets its own chunk.
	s := chunker.New(150, 0)

	text := strings.Repeat("A", 100) + "\n\n" + strings.Repeat("B", 100)
	chunks := s.Split(text, "doc.txt", ".txt")

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("A", 100), chunks[0].Text)
	assert.Equal(t, strings.Repeat("B", 100), chunks[1].Text)
}

func TestSplit_OversizedParagraphSplitsOnSentences(t *testing.T) {
	s := chunker.New(100, 0)

	sentences := make([]string, 6)
	for i := range sentences {
		sentences[i] = strings.Repeat(string(rune('a'+i)), 40)
	}
	text := strings.Join(sentences, ". ")
	chunks := s.Split(text, "doc.txt", ".txt")

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 100)
	}
	// Every sentence survives somewhere.
	joined := strings.Join(chunkTexts(chunks), " ")
	for _, sent := range sentences {
		assert.Contains(t, joined, sent)
	}
}

func TestSplit_OversizedSentenceKeptWhole(t *testing.T) {
	// A single sentence longer than the chunk size is never truncated.
	s := chunker.New(50, 0)

	long := strings.Repeat("x", 120)
	chunks := s.Split(long, "doc.txt", ".txt")

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, long)
}

func TestSplit_OverlapAdjacency(t *testing.T) {
	overlap := 20
	s := chunker.New(100, overlap)
	noOverlap := chunker.New(100, 0)

	var paragraphs []string
	for i := 0; i < 5; i++ {
		paragraphs = append(paragraphs, strings.Repeat(string(rune('a'+i)), 80))
	}
	text := strings.Join(paragraphs, "\n\n")

	base := noOverlap.Split(text, "doc.txt", ".txt")
	chunks := s.Split(text, "doc.txt", ".txt")
	require.Equal(t, len(base), len(chunks))
	require.Greater(t, len(chunks), 2)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(base[i-1].Text)
		tail := string(prev[len(prev)-overlap:])
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
			"chunk %d should start with the tail of its predecessor", i)
	}
	for i := 0; i < len(chunks)-1; i++ {
		next := []rune(base[i+1].Text)
		head := string(next[:overlap])
		assert.True(t, strings.HasSuffix(chunks[i].Text, head),
			"chunk %d should end with the head of its successor", i)
	}
}

func TestSplit_ZeroOverlapNoDuplication(t *testing.T) {
	s := chunker.New(100, 0)

	text := strings.Repeat("a", 80) + "\n\n" + strings.Repeat("b", 80)
	chunks := s.Split(text, "doc.txt", ".txt")

	require.Len(t, chunks, 2)
	assert.NotContains(t, chunks[0].Text, "b")
	assert.NotContains(t, chunks[1].Text, "a")
}

func TestSplit_Deterministic(t *testing.T) {
	s := chunker.New(120, 30)
	text := "First clause of the agreement.\n\nSecond clause with more detail about obligations.\n\nThird clause on termination and notice periods for both parties."

	first := chunkTexts(s.Split(text, "doc.txt", ".txt"))
	second := chunkTexts(s.Split(text, "doc.txt", ".txt"))
	assert.Equal(t, first, second)
}

func TestSplit_IndexesAreSequential(t *testing.T) {
	s := chunker.New(60, 10)

	text := strings.Repeat("a", 50) + "\n\n" + strings.Repeat("b", 50) + "\n\n" + strings.Repeat("c", 50)
	chunks := s.Split(text, "doc.txt", ".txt")

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSplit_UnicodeOverlapBoundaries(t *testing.T) {
	// Overlap lengths are measured in runes, so multi-byte text must not
	// be cut mid-character.
	overlap := 10
	s := chunker.New(60, overlap)

	text := strings.Repeat("ñ", 50) + "\n\n" + strings.Repeat("é", 50)
	chunks := s.Split(text, "doc.txt", ".txt")

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, strings.ContainsAny(c.Text, "ñé"))
		assert.Equal(t, c.Text, strings.ToValidUTF8(c.Text, "?"))
	}
	assert.True(t, strings.HasPrefix(chunks[1].Text, strings.Repeat("ñ", overlap)))
	assert.True(t, strings.HasSuffix(chunks[0].Text, strings.Repeat("é", overlap)))
}

func TestNew_Defaults(t *testing.T) {
	s := chunker.New(0, -5)

	// Defaults take over for out-of-range settings: a ~1600-rune text
	// must split rather than land in a single chunk.
	text := strings.Repeat("a", 790) + "\n\n" + strings.Repeat("b", 790)
	chunks := s.Split(text, "doc.txt", ".txt")
	assert.Len(t, chunks, 2)
}

func chunkTexts(chunks []models.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
