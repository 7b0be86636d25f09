package database

import (
	"context"
	"testing"
	"time"

	"meepleden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncQueue_CreateAndFetch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: "booking_upsert",
		EntityID: 42,
		Payload:  `{"booking_id":42}`,
		Status:   "pending",
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.NotZero(t, task.ID)

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "booking_upsert", tasks[0].TaskType)
	assert.Equal(t, int64(42), tasks[0].EntityID)
}

func TestSyncQueue_RetryScheduling(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "member_upsert", EntityID: 1, Payload: "{}", Status: "pending"}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	// Future retry is not picked up.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets 500", &future))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Past retry is due again, with the attempt counted.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets 500", &past))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].RetryCount)
}

func TestSyncQueue_CompletedAndFailed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	done := &models.SyncTask{TaskType: "booking_upsert", EntityID: 1, Payload: "{}", Status: "pending"}
	require.NoError(t, db.CreateSyncTask(ctx, done))
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, done.ID, "completed", "", nil))

	dead := &models.SyncTask{TaskType: "booking_upsert", EntityID: 2, Payload: "{}", Status: "pending"}
	require.NoError(t, db.CreateSyncTask(ctx, dead))
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, dead.ID, "failed", "quota exhausted", nil))

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, int64(2), failed[0].EntityID)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "quota exhausted", *failed[0].LastError)
	assert.NotNil(t, failed[0].ProcessedAt)
}
