package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UniqueLearner returns a learner id that does not collide across tests
// sharing the container.
func UniqueLearner(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// SeedProfile inserts a bare learner profile row and returns its id.
func SeedProfile(t *testing.T, pool *pgxpool.Pool, budgetMinutes int) string {
	t.Helper()

	learnerID := UniqueLearner("seed")
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(context.Background(),
		`INSERT INTO learner_profiles (learner_id, daily_budget_minutes, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		learnerID, budgetMinutes, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProfile: %v", err)
	}
	return learnerID
}
