package retrieval

import (
	"math"
	"regexp"
	"strings"
)

const tokensPerWord = 1.3

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// EstimateTokens approximates the token count of text as ceil(words * 1.3).
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * tokensPerWord))
}

// Chunker splits text into sentence-bounded chunks of roughly maxTokens each.
// The last overlapWords words of a chunk are carried into the next one.
type Chunker struct {
	maxTokens    int
	overlapWords int
}

// NewChunker creates a Chunker. Non-positive arguments fall back to 512 and 50.
func NewChunker(maxTokens, overlapWords int) Chunker {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	if overlapWords < 0 {
		overlapWords = 50
	}
	return Chunker{maxTokens: maxTokens, overlapWords: overlapWords}
}

// Split returns the chunks of text in document order. Text without any
// sentence content yields no chunks.
func (c Chunker) Split(text string) []string {
	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	for _, raw := range sentenceBoundary.Split(text, -1) {
		sentence := strings.Join(strings.Fields(raw), " ")
		if sentence == "" {
			continue
		}
		sentenceSize := EstimateTokens(sentence)

		if size+sentenceSize > c.maxTokens && current.Len() > 0 {
			prev := strings.TrimSpace(current.String())
			chunks = append(chunks, prev)

			current.Reset()
			if tail := lastWords(prev, c.overlapWords); tail != "" {
				current.WriteString(tail)
				current.WriteByte(' ')
			}
			current.WriteString(sentence)
			current.WriteString(". ")
			size = EstimateTokens(current.String())
			continue
		}

		current.WriteString(sentence)
		current.WriteString(". ")
		size += sentenceSize
	}

	if last := strings.TrimSpace(current.String()); last != "" {
		chunks = append(chunks, last)
	}
	return chunks
}

func lastWords(s string, n int) string {
	if n == 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
