package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/retrieval"
)

// IngestTool handles the documents_ingest MCP tool.
type IngestTool struct {
	svc     retrievalService
	learner string
}

func (t *IngestTool) Definition() mcp.Tool {
	return mcp.NewTool("documents_ingest",
		mcp.WithDescription("Add course material to the learner's collection so later answers can cite it."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Full document text"),
		),
		mcp.WithString("type",
			mcp.Description("Document type, e.g. notes, slides or assignment"),
		),
		mcp.WithString("source",
			mcp.Description("Where the document came from, e.g. a file name"),
		),
	)
}

func (t *IngestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	res, err := t.svc.Ingest(ctx, retrieval.IngestInput{
		LearnerID: t.learner,
		Content:   content,
		Type:      req.GetString("type", ""),
		Source:    req.GetString("source", ""),
	})
	if err != nil {
		return errorResult("ingest", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored %d chunks.", res.ChunksCreated)), nil
}

// SearchTool handles the documents_search MCP tool.
type SearchTool struct {
	svc     retrievalService
	learner string
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("documents_search",
		mcp.WithDescription("Find the chunks of uploaded material most similar to a query."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum results (default 5)"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum cosine similarity between 0 and 1"),
		),
		mcp.WithString("type",
			mcp.Description("Only search documents of this type"),
		),
		mcp.WithString("source",
			mcp.Description("Only search documents from this source"),
		),
	)
}

func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	input := retrieval.SearchInput{
		LearnerID: t.learner,
		Query:     query,
		TopK:      intArg(req, "top_k", 0),
		Filter: domain.ChunkFilter{
			Type:   req.GetString("type", ""),
			Source: req.GetString("source", ""),
		},
	}
	if th, ok := floatArg(req, "threshold"); ok {
		input.Threshold = &th
	}

	out, err := t.svc.Search(ctx, input)
	if err != nil {
		return errorResult("search", err), nil
	}
	if len(out.Results) == 0 {
		return mcp.NewToolResultText("No matching material found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches, showing %d:\n\n", out.TotalFound, len(out.Results))
	for i, r := range out.Results {
		fmt.Fprintf(&b, "[%d] %.3f %s (%s)\n    %s\n\n", i+1, r.Score, r.Chunk.Metadata.Source, r.Chunk.Metadata.Type, snippet(r.Chunk.Content, 300))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ContextTool handles the documents_context MCP tool.
type ContextTool struct {
	svc     retrievalService
	learner string
}

func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("documents_context",
		mcp.WithDescription("Assemble the most relevant material for a query into one block that fits a token budget."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What the context is needed for"),
		),
		mcp.WithNumber("max_tokens",
			mcp.Description("Token budget for the assembled context"),
		),
	)
}

func (t *ContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	rc, err := t.svc.Context(ctx, t.learner, query, intArg(req, "max_tokens", 0))
	if err != nil {
		return errorResult("context", err), nil
	}
	if rc.IsEmpty() {
		return mcp.NewToolResultText("No relevant material found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nSources (%d tokens):\n", rc.Context, rc.TokenCount)
	for _, s := range rc.Sources {
		fmt.Fprintf(&b, "- %s %s (%.3f)\n", s.ChunkID, s.Source, s.Score)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
