package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAPIKey(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, db.SaveAPIKey("nexusmods", "test-api-key-123"))

	key, err := db.GetAPIKey("nexusmods")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, "nexusmods", key.SourceID)
	assert.Equal(t, "test-api-key-123", key.APIKey)
	assert.False(t, key.UpdatedAt.IsZero())
}

func TestSaveAPIKey_Update(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, db.SaveAPIKey("modio", "old-key"))
	require.NoError(t, db.SaveAPIKey("modio", "new-key"))

	key, err := db.GetAPIKey("modio")
	require.NoError(t, err)
	assert.Equal(t, "new-key", key.APIKey)
}

func TestGetAPIKey_NotFound(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	key, err := db.GetAPIKey("nonexistent")
	assert.NoError(t, err)
	assert.Nil(t, key)
}

func TestDeleteAPIKey(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, db.SaveAPIKey("nexusmods", "test-key"))
	require.NoError(t, db.DeleteAPIKey("nexusmods"))

	key, err := db.GetAPIKey("nexusmods")
	assert.NoError(t, err)
	assert.Nil(t, key)

	// Deleting a missing key is not an error
	assert.NoError(t, db.DeleteAPIKey("nonexistent"))
}

func TestListAPIKeySources(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	sources, err := db.ListAPIKeySources()
	require.NoError(t, err)
	assert.Empty(t, sources)

	require.NoError(t, db.SaveAPIKey("nexusmods", "a"))
	require.NoError(t, db.SaveAPIKey("modio", "b"))

	sources, err = db.ListAPIKeySources()
	require.NoError(t, err)
	assert.Equal(t, []string{"modio", "nexusmods"}, sources)
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	return db
}
