package services

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// sentenceSearchWindow bounds how far back from a window end we look for a
// sentence terminator.
const sentenceSearchWindow = 100

// Span is a [Start, End) range of rune offsets into the chunked text. End may
// exceed the text length for the final window; it is clamped when slicing.
type Span struct {
	Start int
	End   int
}

// SentenceSplitter cuts text into overlapping windows aligned to sentence ends.
// It satisfies langchaingo's textsplitter.TextSplitter.
type SentenceSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

var _ textsplitter.TextSplitter = SentenceSplitter{}

// SplitText implements textsplitter.TextSplitter.
func (s SentenceSplitter) SplitText(text string) ([]string, error) {
	return SplitSentenceWindows(text, s.ChunkSize, s.ChunkOverlap), nil
}

// NewTextSplitter returns the splitter for the configured strategy. "recursive"
// uses langchaingo's recursive character splitter; anything else the sentence
// window splitter.
func NewTextSplitter(strategy string, chunkSize, overlap int) textsplitter.TextSplitter {
	if strategy == "recursive" {
		return textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
		)
	}
	return SentenceSplitter{ChunkSize: chunkSize, ChunkOverlap: overlap}
}

// SplitSentenceWindows splits text into chunks of at most chunkSize runes (plus
// one rune when a cut lands right after a terminator at the window edge).
// Consecutive chunks share overlap runes. Whitespace-only chunks are dropped.
func SplitSentenceWindows(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	for _, sp := range SplitSpans(runes, chunkSize, overlap) {
		end := min(sp.End, len(runes))
		chunk := strings.TrimSpace(string(runes[sp.Start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// SplitSpans returns the raw windows used by SplitSentenceWindows for text
// longer than chunkSize.
func SplitSpans(runes []rune, chunkSize, overlap int) []Span {
	if chunkSize <= 0 {
		return []Span{{Start: 0, End: len(runes)}}
	}
	if overlap < 0 {
		overlap = 0
	}

	var spans []Span
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end < len(runes) {
			lower := max(start+chunkSize/2, end-sentenceSearchWindow)
			for i := end; i > lower; i-- {
				if isSentenceEnd(runes[i]) {
					end = i + 1
					break
				}
			}
		}
		spans = append(spans, Span{Start: start, End: end})

		next := end - overlap
		if next <= start {
			// overlap too large for this window; continue from the cut
			next = end
		}
		start = next
	}
	return spans
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
