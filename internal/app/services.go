package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/tutor-backend/internal/adapter/cache"
	"github.com/heartmarshall/tutor-backend/internal/adapter/provider/llm"
	"github.com/heartmarshall/tutor-backend/internal/adapter/provider/stub"
	"github.com/heartmarshall/tutor-backend/internal/config"
	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/service/coach"
	"github.com/heartmarshall/tutor-backend/internal/service/readiness"
	"github.com/heartmarshall/tutor-backend/internal/service/retrieval"
	"github.com/heartmarshall/tutor-backend/internal/service/router"
	"github.com/heartmarshall/tutor-backend/internal/service/viva"
	"github.com/heartmarshall/tutor-backend/internal/transport/rest"
)

type generator interface {
	Complete(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
	CompleteStructured(ctx context.Context, prompt, schema string, opts domain.GenerateOptions, out any) error
}

type judge interface {
	Evaluate(ctx context.Context, q domain.ValidationQuestion, answer, submission string) (domain.Evaluation, error)
}

// Services holds the domain services wired over a Storage.
type Services struct {
	Readiness *readiness.Service
	Retrieval *retrieval.Service
	Viva      *viva.Service
	Coach     *coach.Service
	Router    *router.Service

	// Checks lists the dependencies probed by /ready in addition to storage.
	Checks []rest.HealthCheck
}

// NewServices builds the generation provider, the embedder and every domain
// service. The returned cleanup closes the embedding cache connection.
func NewServices(ctx context.Context, cfg *config.Config, log *slog.Logger, st *Storage) (*Services, func(), error) {
	gen, j := newGeneration(cfg.LLM, log)

	var (
		embedder retrieval.Embedder = retrieval.NewHashEmbedder(cfg.Retrieval.Dimension)
		checks   []rest.HealthCheck
		cleanup  = func() {}
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		ec := cache.NewEmbeddingCache(log, rdb, embedder, cfg.Redis.EmbeddingTTL, cfg.Redis.KeyPrefix)
		embedder = ec
		checks = append(checks, rest.HealthCheck{Name: "redis", Pinger: ec})
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				log.Warn("close redis", slog.String("error", err.Error()))
			}
		}
		log.Info("embedding cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	readinessSvc := readiness.NewService(log, st.Profiles, st.Tx, readiness.Policy{
		WeakThreshold:        cfg.Readiness.WeakThreshold,
		WeakAreaLimit:        cfg.Readiness.WeakAreaLimit,
		ResearchCount:        cfg.Readiness.ResearchCount,
		ForgettingWindowDays: cfg.Readiness.ForgettingWindowDays,
		AdvancedThreshold:    cfg.Readiness.AdvancedThreshold,
	}, cfg.Readiness.DailyBudgetMinutes)

	retrievalSvc := retrieval.NewService(log, st.Chunks, embedder, retrieval.Options{
		ChunkTokens:   cfg.Retrieval.ChunkTokens,
		OverlapWords:  cfg.Retrieval.OverlapWords,
		TopK:          cfg.Retrieval.TopK,
		Threshold:     cfg.Retrieval.Threshold,
		ContextTopK:   cfg.Retrieval.ContextTopK,
		ContextTokens: cfg.Retrieval.ContextTokens,
	})

	vivaSvc := viva.NewService(log, st.Sessions, gen, j, viva.Options{
		MinQuestions: cfg.Viva.MinQuestions,
		MaxQuestions: cfg.Viva.MaxQuestions,
		Thresholds: viva.Thresholds{
			PassRate:     cfg.Viva.PassRateThreshold,
			AverageScore: cfg.Viva.AverageScoreThreshold,
		},
		JudgeTimeout: cfg.Viva.JudgeTimeout,
	})

	coachSvc := coach.NewService(log, gen)

	routerSvc := router.NewService(log, coachSvc, vivaSvc, readinessSvc, retrievalSvc, gen, router.Options{
		HistorySize:     cfg.Router.HistorySize,
		DefaultLanguage: cfg.Router.DefaultLanguage,
		Aliases:         cfg.Router.RouteAliases,
		ContextTokens:   cfg.Retrieval.RouterContextTokens,
	})

	return &Services{
		Readiness: readinessSvc,
		Retrieval: retrievalSvc,
		Viva:      vivaSvc,
		Coach:     coachSvc,
		Router:    routerSvc,
		Checks:    checks,
	}, cleanup, nil
}

func newGeneration(cfg config.LLMConfig, log *slog.Logger) (generator, judge) {
	if cfg.Provider == config.LLMProviderAnthropic {
		client := llm.NewClient(log, llm.Options{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		})
		log.Info("generation provider ready", slog.String("provider", cfg.Provider), slog.String("model", cfg.Model))
		return client, llm.NewJudge(client)
	}

	log.Warn("using offline stub generation provider")
	return stub.NewGenerator(), stub.Judge{}
}
