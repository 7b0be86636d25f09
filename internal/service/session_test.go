package service

import (
	"context"
	"io"
	"testing"
	"time"

	"meepleden/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService(t *testing.T) {
	logger := zerolog.New(io.Discard)
	repo := repository.NewMemorySessionRepository(time.Hour)
	svc := NewSessionService(repo, &logger)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, svc.SetSession(ctx, "U1", "choosing_date", map[string]interface{}{"party_size": 4}))

		session, err := svc.GetSession(ctx, "U1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "choosing_date", session.CurrentStep)
		assert.Equal(t, 4, session.GetInt("party_size"))
	})

	t.Run("UpdateDataCreatesSession", func(t *testing.T) {
		require.NoError(t, svc.UpdateSessionData(ctx, "U2", "date", "2025-12-01"))

		session, err := svc.GetSession(ctx, "U2")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "2025-12-01", session.GetString("date"))
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, svc.SetSession(ctx, "U3", "step", nil))
		require.NoError(t, svc.ClearSession(ctx, "U3"))

		session, err := svc.GetSession(ctx, "U3")
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}
