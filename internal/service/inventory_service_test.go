package service

import (
	"context"
	"io"
	"testing"

	"meepleden/internal/database"
	"meepleden/internal/events"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOutGame(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewInventoryService(repo, events.NewEventBus(), &logger)
	ctx := context.Background()

	rental := &models.Rental{GameID: 1, MemberID: 2}
	repo.On("CreateRentalWithStockCheck", ctx, rental).Return(nil).Once()

	require.NoError(t, svc.CheckOutGame(ctx, rental))
	repo.AssertExpectations(t)
}

func TestCheckOutGame_OutOfStock(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewInventoryService(repo, events.NewEventBus(), &logger)
	ctx := context.Background()

	rental := &models.Rental{GameID: 1, MemberID: 2}
	repo.On("CreateRentalWithStockCheck", ctx, rental).Return(database.ErrOutOfStock).Once()

	assert.ErrorIs(t, svc.CheckOutGame(ctx, rental), database.ErrOutOfStock)
}

func TestReturnRental(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewInventoryService(repo, events.NewEventBus(), &logger)
	ctx := context.Background()

	returned := &models.Rental{ID: 9, GameID: 1, MemberID: 2, Status: models.RentalStatusReturned}
	repo.On("ReturnRental", ctx, int64(9)).Return(nil).Once()
	repo.On("GetRental", ctx, int64(9)).Return(returned, nil).Once()

	require.NoError(t, svc.ReturnRental(ctx, 9))
	repo.AssertExpectations(t)
}
