// Package chunk implements the retrieval chunk store using PostgreSQL.
// Chunks are append-only; a learner's collection is removed as a whole.
package chunk

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/tutor-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

var columns = []string{
	"id", "learner_id", "idx", "content", "embedding", "token_count",
	"doc_type", "source", "uploaded_at", "created_at",
}

// Repo provides chunk persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new chunk repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// InsertChunks stores all chunks in one statement; either all land or none.
func (r *Repo) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ins := postgres.Builder().Insert("chunks").Columns(columns...)
	for _, c := range chunks {
		ins = ins.Values(
			c.ID, c.LearnerID, c.Index, c.Content, c.Embedding, c.TokenCount,
			c.Metadata.Type, c.Metadata.Source, c.Metadata.UploadedAt, c.CreatedAt,
		)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert chunks: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "chunk", chunks[0].LearnerID)
	}
	return nil
}

// ListChunks returns the learner's chunks matching filter in insertion order.
// An empty collection yields an empty slice.
func (r *Repo) ListChunks(ctx context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	where := sq.Eq{"learner_id": learnerID}
	if filter.Type != "" {
		where["doc_type"] = filter.Type
	}
	if filter.Source != "" {
		where["source"] = filter.Source
	}

	sql, args, err := postgres.Builder().
		Select(columns...).
		From("chunks").
		Where(where).
		OrderBy("created_at", "idx").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list chunks: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "chunk", learnerID)
	}

	chunks, err := pgx.CollectRows(rows, scanChunk)
	if err != nil {
		return nil, postgres.MapError(err, "chunk", learnerID)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return chunks, nil
}

// DeleteChunks removes the learner's whole collection and reports how many
// chunks were removed.
func (r *Repo) DeleteChunks(ctx context.Context, learnerID string) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM chunks WHERE learner_id = $1`, learnerID)
	if err != nil {
		return 0, postgres.MapError(err, "chunk", learnerID)
	}
	return int(tag.RowsAffected()), nil
}

func scanChunk(row pgx.CollectableRow) (domain.Chunk, error) {
	var c domain.Chunk
	err := row.Scan(
		&c.ID, &c.LearnerID, &c.Index, &c.Content, &c.Embedding, &c.TokenCount,
		&c.Metadata.Type, &c.Metadata.Source, &c.Metadata.UploadedAt, &c.CreatedAt,
	)
	return c, err
}
