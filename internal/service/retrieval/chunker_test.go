package retrieval

import (
	"slices"
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{text: "", want: 0},
		{text: "   ", want: 0},
		{text: "one", want: 2},
		{text: "one two three", want: 4},
		{text: "a b c d e f g h i j", want: 13},
		{text: "spread\tacross\nlines", want: 4},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestChunker_Split(t *testing.T) {
	t.Parallel()

	text := "one two three four five. six seven eight nine ten! eleven twelve?"

	tests := []struct {
		name    string
		chunker Chunker
		text    string
		want    []string
	}{
		{
			name:    "fits in one chunk",
			chunker: NewChunker(512, 50),
			text:    "Hello world.   How are you?",
			want:    []string{"Hello world. How are you."},
		},
		{
			name:    "overlap carries tail words",
			chunker: NewChunker(10, 2),
			text:    text,
			want: []string{
				"one two three four five.",
				"four five. six seven eight nine ten.",
				"nine ten. eleven twelve.",
			},
		},
		{
			name:    "no overlap",
			chunker: NewChunker(10, 0),
			text:    text,
			want: []string{
				"one two three four five.",
				"six seven eight nine ten. eleven twelve.",
			},
		},
		{
			name:    "oversized sentence stays whole",
			chunker: NewChunker(3, 1),
			text:    "this sentence is far longer than the budget",
			want:    []string{"this sentence is far longer than the budget."},
		},
		{
			name:    "punctuation only",
			chunker: NewChunker(512, 50),
			text:    "...!?!",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.chunker.Split(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestChunker_Split_EveryFactKept(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 200 {
		b.WriteString("Fact number ")
		b.WriteString(strings.Repeat("x", i%7+1))
		b.WriteString(" holds. ")
	}

	chunks := NewChunker(64, 10).Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	joined := strings.Join(chunks, " ")
	if got := strings.Count(joined, "holds"); got < 200 {
		t.Errorf("sentences lost: found %d of 200", got)
	}
}
