package repository

import (
	"context"
	"testing"

	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBRequiresDSN(t *testing.T) {
	db, err := NewDB(context.Background(), config.DatabaseConfig{MaxOpenConns: 5})
	assert.ErrorIs(t, err, ErrNoDSN)
	assert.Nil(t, db)
}

func TestApplyPoolUsesConfig(t *testing.T) {
	// sqlx.Open does not dial, so the pool can be inspected offline.
	db, err := sqlx.Open("pgx", "postgres://econgate@127.0.0.1:1/econgate")
	require.NoError(t, err)
	defer db.Close()

	applyPool(db, config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetimeMinutes: 10})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)

	applyPool(db, config.DatabaseConfig{})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections, "zero values keep the current setting")
}
