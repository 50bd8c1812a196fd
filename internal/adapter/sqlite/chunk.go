package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/pkg/floatvec"
)

var chunkColumns = []string{
	"id", "learner_id", "idx", "content", "embedding", "token_count",
	"doc_type", "source", "uploaded_at", "created_at",
}

// ChunkRepo stores embedded chunks. Rows are never updated.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertChunks writes the batch with a single statement.
func (r *ChunkRepo) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ins := builder.Insert("chunks").Columns(chunkColumns...)
	for _, c := range chunks {
		ins = ins.Values(
			c.ID, c.LearnerID, c.Index, c.Content, floatvec.Encode(c.Embedding), c.TokenCount,
			c.Metadata.Type, c.Metadata.Source, toMicros(c.Metadata.UploadedAt), toMicros(c.CreatedAt),
		)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert chunks: %w", err)
	}

	if _, err := connFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "chunk", chunks[0].LearnerID)
	}
	return nil
}

func (r *ChunkRepo) ListChunks(ctx context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	where := sq.Eq{"learner_id": learnerID}
	if filter.Type != "" {
		where["doc_type"] = filter.Type
	}
	if filter.Source != "" {
		where["source"] = filter.Source
	}

	query, args, err := builder.
		Select(chunkColumns...).
		From("chunks").
		Where(where).
		OrderBy("created_at", "idx").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list chunks: %w", err)
	}

	rows, err := connFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "chunk", learnerID)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var (
			c                 domain.Chunk
			blob              []byte
			uploaded, created int64
		)
		if err := rows.Scan(&c.ID, &c.LearnerID, &c.Index, &c.Content, &blob, &c.TokenCount,
			&c.Metadata.Type, &c.Metadata.Source, &uploaded, &created); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if c.Embedding, err = floatvec.Decode(blob); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		c.Metadata.UploadedAt = fromMicros(uploaded)
		c.CreatedAt = fromMicros(created)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "chunk", learnerID)
	}
	return chunks, nil
}

// DeleteChunks drops the learner's collection and returns the removed count.
func (r *ChunkRepo) DeleteChunks(ctx context.Context, learnerID string) (int, error) {
	res, err := connFromCtx(ctx, r.db).ExecContext(ctx, `DELETE FROM chunks WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, mapError(err, "chunk", learnerID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("chunk %s: rows affected: %w", learnerID, err)
	}
	return int(n), nil
}
