package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioskin/inventory/internal/db"
)

func TestJWTSecretIsGeneratedOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	assert.Len(t, first, 64, "32 random bytes, hex encoded")

	again, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, err = GetJWTSecret(ctx, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}
