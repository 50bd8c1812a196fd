package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("AUTH_JWT_SECRET", "this-is-a-very-long-jwt-secret-for-testing-32+")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

storage:
  driver: "postgres"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

auth:
  jwt_secret: "this-is-a-very-long-jwt-secret-for-testing-32+"

log:
  level: "debug"
  format: "text"

readiness:
  daily_budget_minutes: 45
  weak_threshold: 65

retrieval:
  chunk_tokens: 256
  threshold: 0.5

viva:
  min_questions: 3
  max_questions: 5

router:
  history_size: 20
  route_aliases: "quiz=evaluation, homework=viva"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}
	if !cfg.Database.MigrateOnStart {
		t.Error("database.migrate_on_start should default to true")
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}

	// Readiness
	if cfg.Readiness.DailyBudgetMinutes != 45 {
		t.Errorf("readiness.daily_budget_minutes = %d, want 45", cfg.Readiness.DailyBudgetMinutes)
	}
	if cfg.Readiness.WeakAreaLimit != 10 {
		t.Errorf("readiness.weak_area_limit = %d, want 10 (default)", cfg.Readiness.WeakAreaLimit)
	}

	// Retrieval
	if cfg.Retrieval.ChunkTokens != 256 {
		t.Errorf("retrieval.chunk_tokens = %d, want 256", cfg.Retrieval.ChunkTokens)
	}
	if cfg.Retrieval.Threshold != 0.5 {
		t.Errorf("retrieval.threshold = %v, want 0.5", cfg.Retrieval.Threshold)
	}
	if cfg.Retrieval.Dimension != 384 {
		t.Errorf("retrieval.dimension = %d, want 384 (default)", cfg.Retrieval.Dimension)
	}

	// Viva
	if cfg.Viva.MaxQuestions != 5 {
		t.Errorf("viva.max_questions = %d, want 5", cfg.Viva.MaxQuestions)
	}
	if cfg.Viva.PassRateThreshold != 0.7 {
		t.Errorf("viva.pass_rate_threshold = %v, want 0.7 (default)", cfg.Viva.PassRateThreshold)
	}

	// Router
	if cfg.Router.RouteAliases["quiz"] != "evaluation" {
		t.Errorf("router.route_aliases[quiz] = %q, want evaluation", cfg.Router.RouteAliases["quiz"])
	}
	if cfg.Router.RouteAliases["homework"] != "viva" {
		t.Errorf("router.route_aliases[homework] = %q, want viva", cfg.Router.RouteAliases["homework"])
	}

	// LLM defaults
	if cfg.LLM.Provider != LLMProviderStub {
		t.Errorf("llm.provider = %q, want stub (default)", cfg.LLM.Provider)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("READINESS_DAILY_BUDGET", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
	if cfg.Readiness.DailyBudgetMinutes != 60 {
		t.Errorf("readiness.daily_budget_minutes = %d, want 60 (ENV override)", cfg.Readiness.DailyBudgetMinutes)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)

	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Retrieval.RouterContextTokens != 1500 {
		t.Errorf("retrieval.router_context_tokens = %d, want 1500 (default)", cfg.Retrieval.RouterContextTokens)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	dir := t.TempDir()
	_ = os.Chdir(dir)

	env := "AUTH_JWT_SECRET=dotenv-secret-that-is-long-enough-32+\nSTORAGE_DRIVER=memory\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv does not override variables that are already set, even empty ones.
	os.Unsetenv("AUTH_JWT_SECRET")
	os.Unsetenv("STORAGE_DRIVER")
	t.Cleanup(func() {
		os.Unsetenv("AUTH_JWT_SECRET")
		os.Unsetenv("STORAGE_DRIVER")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Driver != StorageDriverMemory {
		t.Errorf("storage.driver = %q, want memory (.env)", cfg.Storage.Driver)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "jwt secret too short", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "jwt secret empty", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.DSN = "" }, wantErr: true},
		{name: "memory without dsn", mutate: func(c *Config) {
			c.Storage.Driver = StorageDriverMemory
			c.Database.DSN = ""
		}},
		{name: "unknown storage driver", mutate: func(c *Config) { c.Storage.Driver = "mysql" }, wantErr: true},
		{name: "sqlite with path", mutate: func(c *Config) {
			c.Storage.Driver = StorageDriverSQLite
			c.Database.DSN = ""
			c.SQLite.Path = "/var/lib/tutor/tutor.db"
		}},
		{name: "sqlite without path", mutate: func(c *Config) {
			c.Storage.Driver = StorageDriverSQLite
			c.SQLite.Path = " "
		}, wantErr: true},
		{name: "anthropic without key", mutate: func(c *Config) { c.LLM.Provider = LLMProviderAnthropic }, wantErr: true},
		{name: "anthropic with key", mutate: func(c *Config) {
			c.LLM.Provider = LLMProviderAnthropic
			c.LLM.APIKey = "sk-test"
		}},
		{name: "unknown llm provider", mutate: func(c *Config) { c.LLM.Provider = "openai" }, wantErr: true},
		{name: "zero daily budget", mutate: func(c *Config) { c.Readiness.DailyBudgetMinutes = 0 }, wantErr: true},
		{name: "weak threshold above 100", mutate: func(c *Config) { c.Readiness.WeakThreshold = 101 }, wantErr: true},
		{name: "zero chunk tokens", mutate: func(c *Config) { c.Retrieval.ChunkTokens = 0 }, wantErr: true},
		{name: "negative overlap", mutate: func(c *Config) { c.Retrieval.OverlapWords = -1 }, wantErr: true},
		{name: "threshold above 1", mutate: func(c *Config) { c.Retrieval.Threshold = 1.5 }, wantErr: true},
		{name: "max questions below min", mutate: func(c *Config) { c.Viva.MaxQuestions = 2 }, wantErr: true},
		{name: "pass rate above 1", mutate: func(c *Config) { c.Viva.PassRateThreshold = 1.2 }, wantErr: true},
		{name: "bad route alias", mutate: func(c *Config) { c.Router.RouteAliasesRaw = "quiz=grader" }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, wantErr: true},
		{name: "zero cleanup interval", mutate: func(c *Config) { c.RateLimit.CleanupInterval = 0 }, wantErr: true},
		{name: "sample ratio above 1", mutate: func(c *Config) { c.Telemetry.SampleRatio = 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRouteAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "quiz=evaluation", want: map[string]string{"quiz": "evaluation"}},
		{name: "spaces and case", raw: " Quiz = Evaluation , homework=viva ", want: map[string]string{"quiz": "evaluation", "homework": "viva"}},
		{name: "trailing comma", raw: "quiz=evaluation,", want: map[string]string{"quiz": "evaluation"}},
		{name: "missing separator", raw: "quiz", wantErr: true},
		{name: "empty kind", raw: "=viva", wantErr: true},
		{name: "unknown handler", raw: "quiz=grader", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRouteAliases(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		Storage:  StorageConfig{Driver: StorageDriverPostgres},
		Database: DatabaseConfig{DSN: "postgres://u:p@localhost:5432/testdb"},
		Auth: AuthConfig{
			JWTSecret: "this-is-a-very-long-jwt-secret-for-testing-32+",
		},
		LLM: LLMConfig{Provider: LLMProviderStub},
		Readiness: ReadinessConfig{
			DailyBudgetMinutes:   30,
			WeakThreshold:        70,
			WeakAreaLimit:        10,
			ResearchCount:        5,
			ForgettingWindowDays: 2,
			AdvancedThreshold:    80,
		},
		Retrieval: RetrievalConfig{
			ChunkTokens:         512,
			OverlapWords:        50,
			Dimension:           384,
			TopK:                5,
			Threshold:           0.7,
			ContextTopK:         10,
			ContextTokens:       2000,
			RouterContextTokens: 1500,
		},
		Viva: VivaConfig{
			MinQuestions:          4,
			MaxQuestions:          6,
			PassRateThreshold:     0.7,
			AverageScoreThreshold: 60,
		},
		Router:    RouterConfig{HistorySize: 100, DefaultLanguage: "en"},
		RateLimit: RateLimitConfig{RequestsPerMinute: 120, CleanupInterval: 5 * time.Minute},
		Telemetry: TelemetryConfig{SampleRatio: 0.1},
	}
}

func TestLoad_ExplicitEnvFileNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}
