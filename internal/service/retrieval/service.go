package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/pkg/keylock"
)

const (
	maxDocumentBytes = 1 << 20
	embedParallelism = 4

	queryEmbedTimeout = 30 * time.Second
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type chunkRepo interface {
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error
	ListChunks(ctx context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error)
	DeleteChunks(ctx context.Context, learnerID string) (int, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Options are the retrieval tunables.
type Options struct {
	ChunkTokens   int
	OverlapWords  int
	TopK          int
	Threshold     float64
	ContextTopK   int
	ContextTokens int
}

// DefaultOptions returns the stock retrieval tunables.
func DefaultOptions() Options {
	return Options{
		ChunkTokens:   512,
		OverlapWords:  50,
		TopK:          5,
		Threshold:     0.7,
		ContextTopK:   10,
		ContextTokens: 2000,
	}
}

// Service implements the semantic retrieval store over a learner-scoped
// chunk repository and a pluggable Embedder.
type Service struct {
	chunks   chunkRepo
	embedder Embedder
	chunker  Chunker
	opts     Options
	locks    keylock.Map
	queries  singleflight.Group
	stamp    atomic.Int64
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new retrieval Service.
func NewService(log *slog.Logger, chunks chunkRepo, embedder Embedder, opts Options) *Service {
	return &Service{
		chunks:   chunks,
		embedder: embedder,
		chunker:  NewChunker(opts.ChunkTokens, opts.OverlapWords),
		opts:     opts,
		log:      log.With("service", "retrieval"),
		now:      time.Now,
	}
}

// Ingest chunks and embeds a document and appends it to the learner's
// collection. Any embedding or persistence failure fails the whole call and
// nothing is stored.
func (s *Service) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pieces := s.chunker.Split(input.Content)
	if len(pieces) == 0 {
		return nil, domain.NewValidationError("content", "no sentences found")
	}

	embeddings, err := s.embedAll(ctx, pieces)
	if err != nil {
		return nil, err
	}

	meta := domain.ChunkMetadata{
		Type:   orDefault(input.Type, domain.DefaultChunkType),
		Source: orDefault(input.Source, domain.DefaultChunkSource),
	}

	unlock := s.locks.Lock(input.LearnerID)
	defer unlock()

	now := s.now()
	meta.UploadedAt = now
	stamp := s.nextStamp(now)

	chunks := make([]domain.Chunk, len(pieces))
	ids := make([]string, len(pieces))
	for i, content := range pieces {
		ids[i] = fmt.Sprintf("%s_%d_%d", input.LearnerID, stamp, i)
		chunks[i] = domain.Chunk{
			ID:         ids[i],
			LearnerID:  input.LearnerID,
			Index:      i,
			Content:    content,
			Embedding:  embeddings[i],
			TokenCount: EstimateTokens(content),
			Metadata:   meta,
			CreatedAt:  now,
		}
	}

	if err := s.chunks.InsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	s.log.InfoContext(ctx, "document ingested",
		slog.String("learner_id", input.LearnerID),
		slog.Int("chunks", len(chunks)),
		slog.String("type", meta.Type),
	)

	return &IngestResult{
		LearnerID:     input.LearnerID,
		ChunksCreated: len(chunks),
		ChunkIDs:      ids,
	}, nil
}

// Search ranks the learner's chunks by cosine similarity to the query.
// Results are sorted by descending score and every score is at or above the
// threshold. A learner without documents gets an empty result.
func (s *Service) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	topK := input.TopK
	if topK == 0 {
		topK = s.opts.TopK
	}
	threshold := s.opts.Threshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	chunks, err := s.chunks.ListChunks(ctx, input.LearnerID, input.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list chunks: %w", domain.ErrRetrieval, err)
	}
	if len(chunks) == 0 {
		return &SearchOutput{Results: []domain.SearchResult{}}, nil
	}

	query, err := s.embedQuery(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	results := rank(chunks, query, threshold)
	total := len(results)
	if len(results) > topK {
		results = results[:topK]
	}

	return &SearchOutput{Results: results, TotalFound: total}, nil
}

// Context packs the best-ranked chunks into maxTokens. A non-positive budget
// uses the configured default. Sources list only the chunks that were packed.
func (s *Service) Context(ctx context.Context, learnerID, query string, maxTokens int) (domain.RetrievedContext, error) {
	if maxTokens <= 0 {
		maxTokens = s.opts.ContextTokens
	}

	out, err := s.Search(ctx, SearchInput{
		LearnerID: learnerID,
		Query:     query,
		TopK:      s.opts.ContextTopK,
	})
	if err != nil {
		return domain.RetrievedContext{}, err
	}

	return assemble(out.Results, maxTokens), nil
}

// Stats summarizes the learner's collection.
func (s *Service) Stats(ctx context.Context, learnerID string) (CollectionStats, error) {
	if learnerID == "" {
		return CollectionStats{}, domain.NewValidationError("learner_id", "required")
	}

	chunks, err := s.chunks.ListChunks(ctx, learnerID, domain.ChunkFilter{})
	if err != nil {
		return CollectionStats{}, fmt.Errorf("list chunks: %w", err)
	}

	stats := CollectionStats{
		LearnerID: learnerID,
		ByType:    make(map[string]int),
	}
	for _, c := range chunks {
		stats.ChunkCount++
		stats.TotalTokens += c.TokenCount
		stats.ByType[c.Metadata.Type]++
	}
	return stats, nil
}

// Clear removes every chunk of the learner and returns how many were removed.
func (s *Service) Clear(ctx context.Context, learnerID string) (int, error) {
	if learnerID == "" {
		return 0, domain.NewValidationError("learner_id", "required")
	}

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	n, err := s.chunks.DeleteChunks(ctx, learnerID)
	if err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}

	s.log.InfoContext(ctx, "collection cleared",
		slog.String("learner_id", learnerID),
		slog.Int("chunks", n),
	)
	return n, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedParallelism)
	for i, text := range texts {
		g.Go(func() error {
			v, err := s.embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// embedQuery coalesces concurrent embeddings of the same query text. The
// shared call is detached from every caller's cancellation; each caller still
// stops waiting when its own ctx ends.
func (s *Service) embedQuery(ctx context.Context, text string) ([]float64, error) {
	ch := s.queries.DoChan(text, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queryEmbedTimeout)
		defer cancel()
		return s.embed(fctx, text)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("embed query: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("embed query: %w", res.Err)
		}
		return slices.Clone(res.Val.([]float64)), nil
	}
}

func (s *Service) embed(ctx context.Context, text string) ([]float64, error) {
	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if want := s.embedder.Dimension(); len(v) != want {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, want %d", domain.ErrRetrieval, len(v), want)
	}
	out := make([]float64, len(v))
	copy(out, v)
	return Normalize(out), nil
}

// nextStamp returns a millisecond stamp strictly greater than any previous
// one, so chunk ids stay unique across ingestions within the same millisecond.
func (s *Service) nextStamp(now time.Time) int64 {
	for {
		last := s.stamp.Load()
		next := max(now.UnixMilli(), last+1)
		if s.stamp.CompareAndSwap(last, next) {
			return next
		}
	}
}

// rank scores every chunk, drops those below threshold and sorts the rest by
// descending score.
func rank(chunks []domain.Chunk, query []float64, threshold float64) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		score := CosineSimilarity(query, c.Embedding)
		if score < threshold {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: c, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

func assemble(results []domain.SearchResult, maxTokens int) domain.RetrievedContext {
	var (
		b       strings.Builder
		tokens  int
		sources = []domain.ContextSource{}
	)

	for _, r := range results {
		n := EstimateTokens(r.Chunk.Content)
		if tokens+n > maxTokens {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Chunk.Content)
		tokens += n
		sources = append(sources, domain.ContextSource{
			ChunkID: r.Chunk.ID,
			Type:    r.Chunk.Metadata.Type,
			Source:  r.Chunk.Metadata.Source,
			Score:   r.Score,
		})
	}

	return domain.RetrievedContext{
		Context:    b.String(),
		Sources:    sources,
		TokenCount: tokens,
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
