package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentenceBoundaries(t *testing.T) {
	segs, err := Split("A. B. C.", Policy{TokenBudget: 1, Slack: 0.2})
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "A.", segs[0].Text)
	assert.Equal(t, "B.", segs[1].Text)
	assert.Equal(t, "C.", segs[2].Text)
	for i, s := range segs {
		assert.Equal(t, i, s.Seq)
	}
}

func TestSplitEmptyContent(t *testing.T) {
	segs, err := Split("", Policy{TokenBudget: 100})
	require.NoError(t, err)
	assert.Empty(t, segs)

	segs, err = Split("   \n\n  ", Policy{TokenBudget: 100})
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestSplitDeterministic(t *testing.T) {
	content := "One sentence here. Another follows it! A third?\n\nA new paragraph with more words in it. Final line."
	p := Policy{TokenBudget: 6, Slack: 0.2}
	first, err := Split(content, p)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Split(content, p)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestSplitLossless(t *testing.T) {
	content := "The quick brown fox jumps. Over the lazy dog it went. Then it stopped to rest near the river bank."
	segs, err := Split(content, Policy{TokenBudget: 8, Slack: 0.2})
	require.NoError(t, err)
	require.NotEmpty(t, segs)

	var parts []string
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	joined := strings.Join(parts, " ")
	// Reassembly reproduces the original modulo boundary whitespace.
	assert.Equal(t, strings.Join(strings.Fields(content), " "), strings.Join(strings.Fields(joined), " "))
}

func TestSplitHardCutOversizedSentence(t *testing.T) {
	// 13 tokens, no sentence boundary: over budget+slack (10*1.2=12), so it
	// must be hard-cut into 10 + 3 token runs.
	content := "w1 w2 w3 w4 w5 w6 w7 w8 w9 w10 w11 w12 w13"
	segs, err := Split(content, Policy{TokenBudget: 10, Slack: 0.2})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 10, len(strings.Fields(segs[0].Text)))
	assert.Equal(t, 3, len(strings.Fields(segs[1].Text)))
}

func TestSplitSlackKeepsSentenceWhole(t *testing.T) {
	// 11 tokens with no boundary: within budget+slack (12), kept whole.
	content := "w1 w2 w3 w4 w5 w6 w7 w8 w9 w10 w11"
	segs, err := Split(content, Policy{TokenBudget: 10, Slack: 0.2})
	require.NoError(t, err)
	require.Len(t, segs, 1)
}

func TestSplitParagraphBreakPreserved(t *testing.T) {
	segs, err := Split("First paragraph.\n\nSecond paragraph.", Policy{TokenBudget: 100})
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Contains(t, segs[0].Text, "\n\n")
}

func TestSplitInvalidUTF8(t *testing.T) {
	_, err := Split(string([]byte{0xff, 0xfe, 0xfd}), Policy{TokenBudget: 10})
	require.Error(t, err)
}
