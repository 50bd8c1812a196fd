package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Viva      VivaConfig      `yaml:"viva"`
	Router    RouterConfig    `yaml:"router"`
	LLM       LLMConfig       `yaml:"llm"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"              env-default:"120"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Storage drivers.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"
)

// StorageConfig selects where profiles, chunks and sessions live.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`

	ApplicationName  string        `yaml:"application_name"  env:"DATABASE_APPLICATION_NAME"  env-default:"tutor-backend"`
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s"`
}

// SQLiteConfig holds the embedded single-file store settings.
type SQLiteConfig struct {
	Path        string        `yaml:"path"         env:"SQLITE_PATH"         env-default:"./data/tutor.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"SQLITE_BUSY_TIMEOUT" env-default:"5s"`
}

// AuthConfig holds access token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"tutor"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"24h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ReadinessConfig holds spaced-repetition readiness parameters.
type ReadinessConfig struct {
	DailyBudgetMinutes   int `yaml:"daily_budget_minutes"   env:"READINESS_DAILY_BUDGET"      env-default:"30"`
	WeakThreshold        int `yaml:"weak_threshold"         env:"READINESS_WEAK_THRESHOLD"    env-default:"70"`
	WeakAreaLimit        int `yaml:"weak_area_limit"        env:"READINESS_WEAK_AREA_LIMIT"   env-default:"10"`
	ResearchCount        int `yaml:"research_count"         env:"READINESS_RESEARCH_COUNT"    env-default:"5"`
	ForgettingWindowDays int `yaml:"forgetting_window_days" env:"READINESS_FORGETTING_WINDOW" env-default:"2"`
	AdvancedThreshold    int `yaml:"advanced_threshold"     env:"READINESS_ADVANCED_THRESHOLD" env-default:"80"`
}

// RetrievalConfig holds chunking, ranking and context budget parameters.
type RetrievalConfig struct {
	ChunkTokens         int     `yaml:"chunk_tokens"          env:"RETRIEVAL_CHUNK_TOKENS"          env-default:"512"`
	OverlapWords        int     `yaml:"overlap_words"         env:"RETRIEVAL_OVERLAP_WORDS"         env-default:"50"`
	Dimension           int     `yaml:"dimension"             env:"RETRIEVAL_DIMENSION"             env-default:"384"`
	TopK                int     `yaml:"top_k"                 env:"RETRIEVAL_TOP_K"                 env-default:"5"`
	Threshold           float64 `yaml:"threshold"             env:"RETRIEVAL_THRESHOLD"             env-default:"0.7"`
	ContextTopK         int     `yaml:"context_top_k"         env:"RETRIEVAL_CONTEXT_TOP_K"         env-default:"10"`
	ContextTokens       int     `yaml:"context_tokens"        env:"RETRIEVAL_CONTEXT_TOKENS"        env-default:"2000"`
	RouterContextTokens int     `yaml:"router_context_tokens" env:"RETRIEVAL_ROUTER_CONTEXT_TOKENS" env-default:"1500"`
}

// VivaConfig holds validation session parameters.
type VivaConfig struct {
	MinQuestions          int           `yaml:"min_questions"           env:"VIVA_MIN_QUESTIONS"     env-default:"4"`
	MaxQuestions          int           `yaml:"max_questions"           env:"VIVA_MAX_QUESTIONS"     env-default:"6"`
	PassRateThreshold     float64       `yaml:"pass_rate_threshold"     env:"VIVA_PASS_RATE"         env-default:"0.7"`
	AverageScoreThreshold float64       `yaml:"average_score_threshold" env:"VIVA_AVERAGE_SCORE"     env-default:"60"`
	JudgeTimeout          time.Duration `yaml:"judge_timeout"           env:"VIVA_JUDGE_TIMEOUT"     env-default:"30s"`
}

// RouterConfig holds request routing parameters.
type RouterConfig struct {
	HistorySize     int    `yaml:"history_size"     env:"ROUTER_HISTORY_SIZE"     env-default:"100"`
	DefaultLanguage string `yaml:"default_language" env:"ROUTER_DEFAULT_LANGUAGE" env-default:"en"`
	RouteAliasesRaw string `yaml:"route_aliases"    env:"ROUTER_ROUTE_ALIASES"    env-default:""`

	// RouteAliases is parsed from RouteAliasesRaw during validation.
	RouteAliases map[string]string `yaml:"-" env:"-"`
}

// LLM providers.
const (
	LLMProviderAnthropic = "anthropic"
	LLMProviderStub      = "stub"
)

// LLMConfig holds generation service settings.
type LLMConfig struct {
	Provider  string        `yaml:"provider"   env:"LLM_PROVIDER"   env-default:"stub"`
	APIKey    string        `yaml:"api_key"    env:"ANTHROPIC_API_KEY"`
	Model     string        `yaml:"model"      env:"LLM_MODEL"      env-default:"claude-sonnet-4-5"`
	MaxTokens int64         `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"2048"`
	Timeout   time.Duration `yaml:"timeout"    env:"LLM_TIMEOUT"    env-default:"60s"`
}

// RedisConfig holds embedding cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr         string        `yaml:"addr"          env:"REDIS_ADDR"`
	Password     string        `yaml:"password"      env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db"            env:"REDIS_DB"            env-default:"0"`
	EmbeddingTTL time.Duration `yaml:"embedding_ttl" env:"REDIS_EMBEDDING_TTL" env-default:"24h"`
	KeyPrefix    string        `yaml:"key_prefix"    env:"REDIS_KEY_PREFIX"    env-default:"tutor:emb:"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"       env:"OTEL_ENABLED"                env-default:"false"`
	ServiceName string  `yaml:"service_name"  env:"OTEL_SERVICE_NAME"           env-default:"tutor-backend"`
	Environment string  `yaml:"environment"   env:"OTEL_ENVIRONMENT"            env-default:"development"`
	Endpoint    string  `yaml:"endpoint"      env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `yaml:"insecure"      env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"false"`
	SampleRatio float64 `yaml:"sample_ratio"  env:"OTEL_SAMPLER_RATIO"          env-default:"0.1"`
}
