package db

import (
	"testing"
	"time"

	"modman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation_AndList(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ops := []*domain.Operation{
		{RunID: "run-1", Kind: domain.OpInstall, Profile: "Default", ModName: "a.pak", Status: domain.StatusOK, Bytes: 100, CreatedAt: base},
		{RunID: "run-2", Kind: domain.OpUpdate, Profile: "Default", ModName: "a.pak", Status: domain.StatusOK, Bytes: 150, CreatedAt: base.Add(time.Minute)},
		{RunID: "run-2", Kind: domain.OpUpdate, Profile: "Default", ModName: "b.pak", Status: domain.StatusFailed, ErrorKind: "UnresolvableSource", Detail: "no resolver", CreatedAt: base.Add(2 * time.Minute)},
		{RunID: "run-3", Kind: domain.OpDisable, Profile: "Other", ModName: "c.pak", Status: domain.StatusOK, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, op := range ops {
		require.NoError(t, db.RecordOperation(op))
		assert.NotZero(t, op.ID)
	}

	all, err := db.ListOperations(OperationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "c.pak", all[0].ModName, "newest first")
	assert.Equal(t, domain.OpDisable, all[0].Kind)
	assert.True(t, base.Add(3*time.Minute).Equal(all[0].CreatedAt))

	run, err := db.ListOperations(OperationFilter{RunID: "run-2"})
	require.NoError(t, err)
	require.Len(t, run, 2)
	assert.Equal(t, domain.StatusFailed, run[0].Status)
	assert.Equal(t, "UnresolvableSource", run[0].ErrorKind)

	limited, err := db.ListOperations(OperationFilter{Profile: "Default", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b.pak", limited[0].ModName)
}

func TestRecordOperation_DefaultsTimestamp(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	op := &domain.Operation{RunID: "r", Kind: domain.OpDelete, Profile: "Default", Status: domain.StatusOK}
	require.NoError(t, db.RecordOperation(op))
	assert.False(t, op.CreatedAt.IsZero())
}

func TestOperationStats(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	empty, err := db.OperationStats("")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationStats{}, *empty)

	last := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	for _, op := range []*domain.Operation{
		{RunID: "1", Kind: domain.OpInstall, Profile: "Default", Status: domain.StatusOK, Bytes: 1000},
		{RunID: "2", Kind: domain.OpInstall, Profile: "Default", Status: domain.StatusFailed, Bytes: 0},
		{RunID: "3", Kind: domain.OpUpdate, Profile: "Default", Status: domain.StatusOK, Bytes: 500},
		{RunID: "4", Kind: domain.OpUpdate, Profile: "Other", Status: domain.StatusOK, Bytes: 7, CreatedAt: last},
	} {
		require.NoError(t, db.RecordOperation(op))
	}

	stats, err := db.OperationStats("")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Downloads)
	assert.Equal(t, 2, stats.Updates)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, int64(1507), stats.TotalBytes)
	assert.True(t, last.Equal(stats.LastActivity))

	perProfile, err := db.OperationStats("Default")
	require.NoError(t, err)
	assert.Equal(t, 1, perProfile.Updates)
	assert.Equal(t, int64(1500), perProfile.TotalBytes)
}
