package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/retrieval"
)

type retrievalService interface {
	Ingest(ctx context.Context, input retrieval.IngestInput) (*retrieval.IngestResult, error)
	Search(ctx context.Context, input retrieval.SearchInput) (*retrieval.SearchOutput, error)
	Context(ctx context.Context, learnerID, query string, maxTokens int) (domain.RetrievedContext, error)
	Stats(ctx context.Context, learnerID string) (retrieval.CollectionStats, error)
}

// DocumentHandler exposes the learner's retrieval collection.
type DocumentHandler struct {
	svc retrievalService
	log *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(svc retrievalService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, log: logger.With("handler", "documents")}
}

type ingestRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
	Source  string `json:"source"`
}

type ingestResponse struct {
	ChunksCreated int      `json:"chunksCreated"`
	ChunkIDs      []string `json:"chunkIds"`
}

// Ingest handles POST /api/v1/documents.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.svc.Ingest(r.Context(), retrieval.IngestInput{
		LearnerID: learner,
		Content:   req.Content,
		Type:      req.Type,
		Source:    req.Source,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{ChunksCreated: res.ChunksCreated, ChunkIDs: nonNil(res.ChunkIDs)})
}

// Search handles GET /api/v1/documents/search?q=&topK=&threshold=&type=&source=.
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	topK, err := queryInt(r, "topK", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input := retrieval.SearchInput{
		LearnerID: learner,
		Query:     q.Get("q"),
		TopK:      topK,
		Filter:    domain.ChunkFilter{Type: q.Get("type"), Source: q.Get("source")},
	}
	if v := q.Get("threshold"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("threshold", "must be a number"))
			return
		}
		input.Threshold = &threshold
	}

	out, err := h.svc.Search(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(out))
}

// Context handles GET /api/v1/documents/context?q=&maxTokens=.
func (h *DocumentHandler) Context(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	maxTokens, err := queryInt(r, "maxTokens", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		handleError(h.log, w, r, domain.NewValidationError("q", "required"))
		return
	}

	c, err := h.svc.Context(r.Context(), learner, query, maxTokens)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContextResponse(c))
}

type collectionStatsResponse struct {
	ChunkCount  int            `json:"chunkCount"`
	TotalTokens int            `json:"totalTokens"`
	ByType      map[string]int `json:"byType"`
}

// Stats handles GET /api/v1/documents/stats.
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	learner, ok := learnerID(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(r.Context(), learner)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	byType := stats.ByType
	if byType == nil {
		byType = map[string]int{}
	}
	writeJSON(w, http.StatusOK, collectionStatsResponse{
		ChunkCount:  stats.ChunkCount,
		TotalTokens: stats.TotalTokens,
		ByType:      byType,
	})
}
