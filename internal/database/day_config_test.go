package database

import (
	"context"
	"testing"

	"meepleden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayConfig_NilWhenAbsent(t *testing.T) {
	db := setupTestDB(t)

	cfg, err := db.DayConfig(context.Background(), mustDate(t, "2025-10-01"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestUpsertDayConfig(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-10-02")

	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: date, TableLimit: 6}))

	cfg, err := db.DayConfig(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 6, cfg.TableLimit)
	assert.False(t, cfg.Disabled)

	// Upsert replaces the existing row.
	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: date, TableLimit: 2, Disabled: true}))

	cfg, err = db.DayConfig(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.TableLimit)
	assert.True(t, cfg.Disabled)
}

func TestGetDayConfigs_Range(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: mustDate(t, "2025-10-03"), TableLimit: 5}))
	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: mustDate(t, "2025-10-05"), Disabled: true}))
	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: mustDate(t, "2025-11-01"), TableLimit: 9}))

	configs, err := db.GetDayConfigs(ctx, mustDate(t, "2025-10-01"), mustDate(t, "2025-10-31"))
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, 5, configs[0].TableLimit)
	assert.True(t, configs[1].Disabled)
}
