package chunk_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/chunk"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/tutor-backend/internal/domain"
)

func makeChunks(learnerID, docType string, n int, now time.Time) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s_%s_%d", learnerID, docType, i),
			LearnerID:  learnerID,
			Index:      i,
			Content:    fmt.Sprintf("chunk %d of %s", i, docType),
			Embedding:  []float64{0.6, 0.8, float64(i)},
			TokenCount: 4,
			Metadata:   domain.ChunkMetadata{Type: docType, Source: domain.DefaultChunkSource, UploadedAt: now},
			CreatedAt:  now,
		}
	}
	return out
}

func TestRepo_InsertAndList(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := chunk.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	learnerID := testhelper.UniqueLearner("chunks")

	if err := repo.InsertChunks(ctx, makeChunks(learnerID, "syllabus", 3, now)); err != nil {
		t.Fatalf("InsertChunks syllabus: %v", err)
	}
	if err := repo.InsertChunks(ctx, makeChunks(learnerID, "notes", 2, now.Add(time.Second))); err != nil {
		t.Fatalf("InsertChunks notes: %v", err)
	}

	all, err := repo.ListChunks(ctx, learnerID, domain.ChunkFilter{})
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d chunks, want 5", len(all))
	}
	if all[0].Index != 0 || all[2].Index != 2 || all[3].Metadata.Type != "notes" {
		t.Errorf("unexpected order: %+v", all)
	}
	if got := all[1].Embedding; len(got) != 3 || got[0] != 0.6 || got[2] != 1 {
		t.Errorf("embedding round trip: got %v", got)
	}

	notes, err := repo.ListChunks(ctx, learnerID, domain.ChunkFilter{Type: "notes"})
	if err != nil {
		t.Fatalf("ListChunks filtered: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("filtered: got %d, want 2", len(notes))
	}

	none, err := repo.ListChunks(ctx, learnerID, domain.ChunkFilter{Source: "lecture"})
	if err != nil {
		t.Fatalf("ListChunks by source: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestRepo_ListIsLearnerScoped(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := chunk.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	owner := testhelper.UniqueLearner("owner")
	other := testhelper.UniqueLearner("other")

	if err := repo.InsertChunks(ctx, makeChunks(owner, "syllabus", 2, now)); err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}

	got, err := repo.ListChunks(ctx, other, domain.ChunkFilter{})
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("other learner sees %d chunks", len(got))
	}
}

func TestRepo_InsertDuplicateIsAtomic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := chunk.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	learnerID := testhelper.UniqueLearner("dup")
	batch := makeChunks(learnerID, "syllabus", 2, now)

	if err := repo.InsertChunks(ctx, batch[:1]); err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}

	err := repo.InsertChunks(ctx, batch)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.ListChunks(ctx, learnerID, domain.ChunkFilter{})
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("partial insert leaked: got %d chunks", len(got))
	}
}

func TestRepo_DeleteChunks(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := chunk.New(pool)
	ctx := context.Background()

	learnerID := testhelper.UniqueLearner("clear")
	if err := repo.InsertChunks(ctx, makeChunks(learnerID, "syllabus", 4, time.Now().UTC())); err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}

	n, err := repo.DeleteChunks(ctx, learnerID)
	if err != nil {
		t.Fatalf("DeleteChunks: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted: got %d, want 4", n)
	}

	n, err = repo.DeleteChunks(ctx, learnerID)
	if err != nil || n != 0 {
		t.Errorf("second delete: got %d, %v", n, err)
	}
}
