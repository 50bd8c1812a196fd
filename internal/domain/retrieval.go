package domain

import "time"

// Default chunk metadata values.
const (
	DefaultChunkType   = "syllabus"
	DefaultChunkSource = "user_upload"
)

// ChunkMetadata describes where a chunk came from.
type ChunkMetadata struct {
	Type       string
	Source     string
	UploadedAt time.Time
}

// Document is an uploaded piece of learner material before chunking.
type Document struct {
	Content  string
	Metadata ChunkMetadata
}

// Chunk is an immutable, learner-owned slice of a document with its embedding.
type Chunk struct {
	ID         string
	LearnerID  string
	Index      int
	Content    string
	Embedding  []float64
	TokenCount int
	Metadata   ChunkMetadata
	CreatedAt  time.Time
}

// ChunkFilter restricts a similarity query by metadata. Empty fields match all.
type ChunkFilter struct {
	Type   string
	Source string
}

// SearchResult is a chunk with its similarity to the query.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// ContextSource is the provenance of one chunk included in assembled context.
type ContextSource struct {
	ChunkID string
	Type    string
	Source  string
	Score   float64
}

// RetrievedContext is ranked learner material packed into a token budget.
type RetrievedContext struct {
	Context    string
	Sources    []ContextSource
	TokenCount int
}

// IsEmpty reports whether no material was retrieved.
func (c RetrievedContext) IsEmpty() bool { return c.Context == "" }
