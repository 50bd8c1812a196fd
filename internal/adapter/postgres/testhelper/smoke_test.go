package testhelper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_MigratedSchema(t *testing.T) {
	pool := SetupTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"learner_profiles", "chunks", "validation_sessions"} {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestSeedProfile(t *testing.T) {
	pool := SetupTestDB(t)

	learnerID := SeedProfile(t, pool, 45)

	var budget int
	err := pool.QueryRow(context.Background(),
		`SELECT daily_budget_minutes FROM learner_profiles WHERE learner_id = $1`, learnerID,
	).Scan(&budget)
	require.NoError(t, err)
	assert.Equal(t, 45, budget)
}
