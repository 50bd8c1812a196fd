package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/tutor-backend/internal/auth"
	"github.com/heartmarshall/tutor-backend/internal/config"
	"github.com/heartmarshall/tutor-backend/internal/transport/middleware"
	"github.com/heartmarshall/tutor-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, opens storage,
// wires the services and serves the HTTP API until ctx is canceled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("llm_provider", cfg.LLM.Provider),
	)

	shutdownTracing, err := InitTelemetry(ctx, logger, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("otel shutdown", slog.String("error", err.Error()))
		}
	}()

	st, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	svcs, closeServices, err := NewServices(ctx, cfg, logger, st)
	if err != nil {
		return err
	}
	defer closeServices()

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	handler, stopHandler := NewHandler(cfg, logger, st, svcs, tokens)
	defer stopHandler()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, logger, srv, cfg.Server.ShutdownTimeout)
}

// NewHandler builds the full HTTP handler: routes, middleware and tracing.
// The returned stop func releases the rate limiter.
func NewHandler(cfg *config.Config, log *slog.Logger, st *Storage, svcs *Services, tokens *auth.JWTManager) (http.Handler, func()) {
	checks := append(append([]rest.HealthCheck{}, st.Checks...), svcs.Checks...)

	mux := http.NewServeMux()
	rest.Register(mux, rest.Handlers{
		Health:    rest.NewHealthHandler(BuildVersion(), checks...),
		Tutor:     rest.NewTutorHandler(svcs.Router, log),
		Review:    rest.NewReviewHandler(svcs.Readiness, log),
		Documents: rest.NewDocumentHandler(svcs.Retrieval, log),
		Viva:      rest.NewVivaHandler(svcs.Viva, log),
		Learner:   rest.NewLearnerHandler(svcs.Readiness, svcs.Retrieval, svcs.Viva, log),
	}, middleware.RequireLearner)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORS),
		middleware.Auth(tokens),
		middleware.Except(limiter.Limit(cfg.RateLimit.RequestsPerMinute), "/live", "/ready", "/health"),
	)

	return otelhttp.NewHandler(chain(mux), "tutor-api"), limiter.Stop
}

// serve runs srv until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, log *slog.Logger, srv *http.Server, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
