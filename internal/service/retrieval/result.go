package retrieval

import "github.com/heartmarshall/tutor-backend/internal/domain"

// IngestResult describes a completed ingestion.
type IngestResult struct {
	LearnerID     string
	ChunksCreated int
	ChunkIDs      []string
}

// SearchOutput is the ranked result of a similarity search. TotalFound counts
// every chunk at or above the threshold before the top-K cut.
type SearchOutput struct {
	Results    []domain.SearchResult
	TotalFound int
}

// CollectionStats summarizes a learner's collection.
type CollectionStats struct {
	LearnerID   string
	ChunkCount  int
	TotalTokens int
	ByType      map[string]int
}
