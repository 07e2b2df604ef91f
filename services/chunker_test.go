package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/textsplitter"
)

func TestSplitSentenceWindows_ShortText(t *testing.T) {
	chunks := SplitSentenceWindows("Short case study.", 1000, 200)
	assert.Equal(t, []string{"Short case study."}, chunks)
}

func TestSplitSentenceWindows_Blank(t *testing.T) {
	assert.Empty(t, SplitSentenceWindows("", 1000, 200))
	assert.Empty(t, SplitSentenceWindows("   \n\t ", 1000, 200))
}

func TestSplitSentenceWindows_NoTerminators(t *testing.T) {
	text := strings.Repeat("a", 2500)

	chunks := SplitSentenceWindows(text, 1000, 200)

	require.Len(t, chunks, 4)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 900)
	assert.Len(t, chunks[3], 100)
}

func TestSplitSentenceWindows_SentenceText(t *testing.T) {
	sentence := "Our team delivered a computer vision system for a retail chain. "
	text := strings.Repeat(sentence, 40)[:2500]

	chunks := SplitSentenceWindows(text, 1000, 200)
	require.Len(t, chunks, 4)
	assert.True(t, strings.HasSuffix(chunks[0], "retail chain."), chunks[0][len(chunks[0])-20:])
	assert.True(t, strings.HasSuffix(chunks[1], "retail chain."), chunks[1][len(chunks[1])-20:])

	spans := SplitSpans([]rune(text), 1000, 200)
	require.Len(t, spans, 4)
	assert.Equal(t, Span{Start: 0, End: 959}, spans[0])
	assert.Equal(t, Span{Start: 759, End: 1727}, spans[1])
	assert.Equal(t, '.', []rune(text)[spans[0].End-1])
	assert.Equal(t, '.', []rune(text)[spans[1].End-1])
}

func TestSplitSentenceWindows_CutsAfterTerminator(t *testing.T) {
	text := strings.Repeat("a", 950) + "." + strings.Repeat("b", 549)

	chunks := SplitSentenceWindows(text, 1000, 200)

	require.NotEmpty(t, chunks)
	assert.Equal(t, strings.Repeat("a", 950)+".", chunks[0])
}

func TestSplitSentenceWindows_IgnoresTerminatorOutsideSearchWindow(t *testing.T) {
	// the search stops 100 runes before the window end
	text := strings.Repeat("a", 850) + "!" + strings.Repeat("b", 649)

	spans := SplitSpans([]rune(text), 1000, 200)

	require.NotEmpty(t, spans)
	assert.Equal(t, Span{Start: 0, End: 1000}, spans[0])
}

func TestSplitSentenceWindows_CountsRunes(t *testing.T) {
	text := strings.Repeat("проект. ", 300)

	chunks := SplitSentenceWindows(text, 500, 100)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 501)
	}
}

func TestSplitSpans_CoversEveryRune(t *testing.T) {
	text := []rune(strings.Repeat("Short sentence. A much longer sentence follows here! Why? ", 80))

	for _, tc := range []struct{ size, overlap int }{
		{1000, 200}, {300, 50}, {120, 0}, {64, 63}, {50, 80},
	} {
		spans := SplitSpans(text, tc.size, tc.overlap)
		covered := make([]bool, len(text))
		for _, sp := range spans {
			for i := sp.Start; i < min(sp.End, len(text)); i++ {
				covered[i] = true
			}
		}
		for i, ok := range covered {
			if !ok {
				t.Fatalf("size=%d overlap=%d: rune %d not covered", tc.size, tc.overlap, i)
			}
		}
	}
}

func TestSplitSpans_Terminates(t *testing.T) {
	text := []rune(strings.Repeat("x", 100))

	t.Run("overlap one less than size", func(t *testing.T) {
		spans := SplitSpans(text, 10, 9)
		assert.Len(t, spans, 100)
		for i := 1; i < len(spans); i++ {
			assert.Greater(t, spans[i].Start, spans[i-1].Start)
		}
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		spans := SplitSpans(text, 10, 15)
		assert.Len(t, spans, 10)
		assert.Equal(t, Span{Start: 90, End: 100}, spans[9])
	})
}

func TestNewTextSplitter(t *testing.T) {
	sentence := NewTextSplitter("sentence", 100, 20)
	assert.IsType(t, SentenceSplitter{}, sentence)

	recursive := NewTextSplitter("recursive", 100, 20)
	assert.IsType(t, textsplitter.RecursiveCharacter{}, recursive)

	chunks, err := recursive.SplitText("A short paragraph about a project.")
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}
