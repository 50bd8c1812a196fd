package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/adapter/memory"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/chunk"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/profile"
	"github.com/heartmarshall/tutor-backend/internal/adapter/postgres/session"
	"github.com/heartmarshall/tutor-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/tutor-backend/internal/config"
	"github.com/heartmarshall/tutor-backend/internal/domain"
	"github.com/heartmarshall/tutor-backend/internal/transport/rest"
)

// ProfileStore persists learner profiles.
type ProfileStore interface {
	Get(ctx context.Context, learnerID string) (*domain.LearnerProfile, error)
	Save(ctx context.Context, p *domain.LearnerProfile) error
	SaveConcept(ctx context.Context, learnerID string, rec *domain.ConceptRecord) error
	Delete(ctx context.Context, learnerID string) error
}

// ChunkStore persists embedded document chunks.
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error
	ListChunks(ctx context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error)
	DeleteChunks(ctx context.Context, learnerID string) (int, error)
}

// SessionStore persists validation sessions.
type SessionStore interface {
	Create(ctx context.Context, s *domain.ValidationSession) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ValidationSession, error)
	Update(ctx context.Context, s *domain.ValidationSession) error
	ListByLearner(ctx context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error)
	DeleteByLearner(ctx context.Context, learnerID string) (int, error)
}

// TxRunner runs fn inside a transaction when the store supports one.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage bundles the repositories selected by the storage driver.
type Storage struct {
	Profiles ProfileStore
	Chunks   ChunkStore
	Sessions SessionStore
	Tx       TxRunner
	Checks   []rest.HealthCheck

	closers []func()
}

// Close releases every connection opened by OpenStorage.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStorage connects the configured storage driver. The postgres driver
// applies pending migrations when MigrateOnStart is set; the sqlite driver
// always migrates its file.
func OpenStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return &Storage{
			Profiles: memory.NewProfileRepo(),
			Chunks:   memory.NewChunkRepo(),
			Sessions: memory.NewSessionRepo(),
			Tx:       memory.TxManager{},
		}, nil

	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		log.Info("connected to database",
			slog.Int("max_conns", int(cfg.Database.MaxConns)),
		)
		return &Storage{
			Profiles: profile.New(pool),
			Chunks:   chunk.New(pool),
			Sessions: session.New(pool),
			Tx:       postgres.NewTxManager(pool),
			Checks:   []rest.HealthCheck{{Name: "postgres", Pinger: pool}},
			closers:  []func(){pool.Close},
		}, nil

	case config.StorageDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}

		log.Info("opened sqlite database", slog.String("path", cfg.SQLite.Path))
		return &Storage{
			Profiles: sqlite.NewProfileRepo(db),
			Chunks:   sqlite.NewChunkRepo(db),
			Sessions: sqlite.NewSessionRepo(db),
			Tx:       sqlite.NewTxManager(db),
			Checks:   []rest.HealthCheck{{Name: "sqlite", Pinger: sqlite.Health{DB: db}}},
			closers:  []func(){func() { _ = db.Close() }},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
