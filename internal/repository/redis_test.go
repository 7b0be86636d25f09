package repository

import (
	"context"
	"testing"
	"time"

	"meepleden/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		session := &models.Session{
			LineUserID:  "U1234",
			MemberID:    7,
			CurrentStep: "choosing_date",
			TempData:    map[string]interface{}{"party_size": 6},
		}

		err := repo.SetSession(ctx, session)
		require.NoError(t, err)

		got, err := repo.GetSession(ctx, "U1234")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.LineUserID, got.LineUserID)
		assert.Equal(t, session.MemberID, got.MemberID)
		assert.Equal(t, session.CurrentStep, got.CurrentStep)
		assert.Equal(t, 6, got.GetInt("party_size"))
	})

	t.Run("GetNonExistentSession", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "Unobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearSession", func(t *testing.T) {
		session := &models.Session{LineUserID: "U456", CurrentStep: "test"}
		repo.SetSession(ctx, session)

		err := repo.ClearSession(ctx, "U456")
		require.NoError(t, err)

		got, _ := repo.GetSession(ctx, "U456")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "U789"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Third request exceeds the limit
		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisSessionRepository(nil, time.Hour)
		_, err := repo.GetSession(ctx, "U123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		err := Close(client)
		assert.NoError(t, err)
	})
}
