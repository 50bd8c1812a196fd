package config

import (
	"fmt"
	"strings"
)

var handlerNames = map[string]bool{
	"socratic":    true,
	"viva":        true,
	"evaluation":  true,
	"translation": true,
	"schedule":    true,
}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for storage driver %q", c.Storage.Driver)
		}
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("sqlite.path is required for storage driver %q", c.Storage.Driver)
		}
		if c.SQLite.BusyTimeout < 0 {
			return fmt.Errorf("sqlite.busy_timeout must not be negative (got %s)", c.SQLite.BusyTimeout)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of %q, %q, %q (got %q)",
			StorageDriverPostgres, StorageDriverSQLite, StorageDriverMemory, c.Storage.Driver)
	}

	switch c.LLM.Provider {
	case LLMProviderAnthropic:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider)
		}
	case LLMProviderStub:
	default:
		return fmt.Errorf("llm.provider must be %q or %q (got %q)", LLMProviderAnthropic, LLMProviderStub, c.LLM.Provider)
	}

	if err := c.Readiness.validate(); err != nil {
		return fmt.Errorf("readiness: %w", err)
	}
	if err := c.Retrieval.validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if err := c.Viva.validate(); err != nil {
		return fmt.Errorf("viva: %w", err)
	}
	if err := c.Router.validate(); err != nil {
		return fmt.Errorf("router: %w", err)
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive (got %d)", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be positive (got %s)", c.RateLimit.CleanupInterval)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0, 1] (got %v)", c.Telemetry.SampleRatio)
	}

	return nil
}

func (r *ReadinessConfig) validate() error {
	if r.DailyBudgetMinutes <= 0 {
		return fmt.Errorf("daily_budget_minutes must be > 0 (got %d)", r.DailyBudgetMinutes)
	}
	if r.WeakThreshold < 0 || r.WeakThreshold > 100 {
		return fmt.Errorf("weak_threshold must be within [0, 100] (got %d)", r.WeakThreshold)
	}
	if r.WeakAreaLimit <= 0 {
		return fmt.Errorf("weak_area_limit must be > 0 (got %d)", r.WeakAreaLimit)
	}
	if r.ResearchCount <= 0 {
		return fmt.Errorf("research_count must be > 0 (got %d)", r.ResearchCount)
	}
	return nil
}

func (r *RetrievalConfig) validate() error {
	if r.ChunkTokens <= 0 {
		return fmt.Errorf("chunk_tokens must be > 0 (got %d)", r.ChunkTokens)
	}
	if r.OverlapWords < 0 {
		return fmt.Errorf("overlap_words must be >= 0 (got %d)", r.OverlapWords)
	}
	if r.Dimension <= 0 {
		return fmt.Errorf("dimension must be > 0 (got %d)", r.Dimension)
	}
	if r.TopK <= 0 || r.ContextTopK <= 0 {
		return fmt.Errorf("top_k and context_top_k must be > 0 (got %d, %d)", r.TopK, r.ContextTopK)
	}
	if r.Threshold < -1 || r.Threshold > 1 {
		return fmt.Errorf("threshold must be within [-1, 1] (got %v)", r.Threshold)
	}
	if r.ContextTokens <= 0 || r.RouterContextTokens <= 0 {
		return fmt.Errorf("context token budgets must be > 0 (got %d, %d)", r.ContextTokens, r.RouterContextTokens)
	}
	return nil
}

func (v *VivaConfig) validate() error {
	if v.MinQuestions <= 0 || v.MaxQuestions < v.MinQuestions {
		return fmt.Errorf("question bounds invalid (min %d, max %d)", v.MinQuestions, v.MaxQuestions)
	}
	if v.PassRateThreshold < 0 || v.PassRateThreshold > 1 {
		return fmt.Errorf("pass_rate_threshold must be within [0, 1] (got %v)", v.PassRateThreshold)
	}
	if v.AverageScoreThreshold < 0 || v.AverageScoreThreshold > 100 {
		return fmt.Errorf("average_score_threshold must be within [0, 100] (got %v)", v.AverageScoreThreshold)
	}
	return nil
}

func (r *RouterConfig) validate() error {
	if r.HistorySize < 0 {
		return fmt.Errorf("history_size must be >= 0 (got %d)", r.HistorySize)
	}

	aliases, err := ParseRouteAliases(r.RouteAliasesRaw)
	if err != nil {
		return fmt.Errorf("route_aliases: %w", err)
	}
	r.RouteAliases = aliases

	return nil
}

// ParseRouteAliases parses a comma-separated list of kind=handler pairs
// (e.g. "quiz=evaluation,homework=viva") into a map keyed by lowercased kind.
// An empty string returns a nil map.
func ParseRouteAliases(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	aliases := make(map[string]string)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kind, handler, ok := strings.Cut(p, "=")
		kind = strings.ToLower(strings.TrimSpace(kind))
		handler = strings.ToLower(strings.TrimSpace(handler))
		if !ok || kind == "" {
			return nil, fmt.Errorf("invalid alias %q: want kind=handler", p)
		}
		if !handlerNames[handler] {
			return nil, fmt.Errorf("invalid alias %q: unknown handler %q", p, handler)
		}
		aliases[kind] = handler
	}

	return aliases, nil
}
