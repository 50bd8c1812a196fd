// Package mcptools exposes the tutoring services as MCP tools. A server is
// bound to one learner, which suits a stdio process launched per user by an
// editor or assistant.
package mcptools

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
	"github.com/heartmarshall/tutor-backend/internal/service/retrieval"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
)

type routerService interface {
	Route(ctx context.Context, req domain.TutorRequest) (*domain.RouteResult, error)
}

type readinessService interface {
	RecordInteraction(ctx context.Context, input readiness.RecordInteractionInput) (*domain.ConceptRecord, error)
	GetDailyQueue(ctx context.Context, learnerID string) (domain.ReviewQueue, error)
	GetStats(ctx context.Context, learnerID string) (domain.LearnerStats, error)
}

type retrievalService interface {
	Ingest(ctx context.Context, input retrieval.IngestInput) (*retrieval.IngestResult, error)
	Search(ctx context.Context, input retrieval.SearchInput) (*retrieval.SearchOutput, error)
	Context(ctx context.Context, learnerID, query string, maxTokens int) (domain.RetrievedContext, error)
}

type vivaService interface {
	Start(ctx context.Context, input viva.StartInput) (*domain.ValidationSession, error)
	SubmitAnswer(ctx context.Context, input viva.SubmitAnswerInput) (*viva.AnswerOutcome, error)
	Finalize(ctx context.Context, sessionID uuid.UUID, learnerID string) (*domain.ValidationSession, error)
}

// Services are the dependencies of the tool set.
type Services struct {
	Router    routerService
	Readiness readinessService
	Retrieval retrievalService
	Viva      vivaService
}

// Tool is one registered MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every tool acting on behalf of learnerID.
func Tools(learnerID string, svcs Services) []Tool {
	return []Tool{
		&InteractTool{router: svcs.Router, learner: learnerID},
		&RecordTool{svc: svcs.Readiness, learner: learnerID},
		&QueueTool{svc: svcs.Readiness, learner: learnerID},
		&StatsTool{svc: svcs.Readiness, learner: learnerID},
		&IngestTool{svc: svcs.Retrieval, learner: learnerID},
		&SearchTool{svc: svcs.Retrieval, learner: learnerID},
		&ContextTool{svc: svcs.Retrieval, learner: learnerID},
		&VivaStartTool{svc: svcs.Viva, learner: learnerID},
		&VivaAnswerTool{svc: svcs.Viva, learner: learnerID},
		&VivaFinalizeTool{svc: svcs.Viva, learner: learnerID},
	}
}

// NewServer creates the MCP server with every tool registered.
func NewServer(version, learnerID string, svcs Services) *server.MCPServer {
	s := server.NewMCPServer(
		"tutor",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range Tools(learnerID, svcs) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

const instructions = `Tutoring tools for one learner.
Use tutor_interact for questions, explanations, rubric feedback and translations.
Record every practice result with review_record so review_queue stays accurate.
Upload course material with documents_ingest; tutor_interact grounds answers in it.
To check that the learner understands their own work, call viva_start, ask each
question in order through viva_answer, then call viva_finalize.`
