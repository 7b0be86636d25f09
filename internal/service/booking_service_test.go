package service

import (
	"context"
	"io"
	"testing"
	"time"

	"meepleden/internal/capacity"
	"meepleden/internal/database"
	"meepleden/internal/events"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingService(repo *mockRepo, worker *mockSyncWorker) *BookingService {
	logger := zerolog.New(io.Discard)
	engine := capacity.NewEngine(repo, &logger)
	return NewBookingService(repo, engine, events.NewEventBus(), worker, 60, 20, []string{"afternoon", "evening", "late"}, &logger)
}

func TestCreateBooking_Success(t *testing.T) {
	repo := new(mockRepo)
	worker := new(mockSyncWorker)
	svc := newBookingService(repo, worker)
	ctx := context.Background()

	booking := &models.Booking{
		Date:        time.Now().AddDate(0, 0, 3),
		TimeSlot:    "evening",
		PartySize:   6,
		ContactName: "Nok",
	}

	repo.On("CreateBookingWithCapacityCheck", ctx, booking).Return(nil).Once()
	worker.On("EnqueueBookingUpsert", ctx, booking).Return(nil).Once()

	err := svc.CreateBooking(ctx, booking)
	require.NoError(t, err)

	// 6 people occupy 2 tables of 4
	assert.Equal(t, 2, booking.TablesOccupied)
	assert.NotEmpty(t, booking.Reference)
	assert.Equal(t, models.StatusConfirmed, booking.Status)
	repo.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestCreateBooking_DateValidation(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()

	past := &models.Booking{Date: time.Now().AddDate(0, 0, -2), TimeSlot: "evening", PartySize: 2}
	assert.ErrorIs(t, svc.CreateBooking(ctx, past), database.ErrPastDate)

	far := &models.Booking{Date: time.Now().AddDate(0, 0, 90), TimeSlot: "evening", PartySize: 2}
	assert.ErrorIs(t, svc.CreateBooking(ctx, far), database.ErrDateTooFar)

	repo.AssertNotCalled(t, "CreateBookingWithCapacityCheck", mock.Anything, mock.Anything)
}

func TestCreateBooking_PartySizeValidation(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()
	date := time.Now().AddDate(0, 0, 1)

	zero := &models.Booking{Date: date, TimeSlot: "evening", PartySize: 0}
	assert.ErrorIs(t, svc.CreateBooking(ctx, zero), database.ErrInvalidPartySize)

	huge := &models.Booking{Date: date, TimeSlot: "evening", PartySize: 21}
	assert.ErrorIs(t, svc.CreateBooking(ctx, huge), database.ErrInvalidPartySize)
}

func TestCreateBooking_UnknownTimeSlot(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))

	booking := &models.Booking{Date: time.Now().AddDate(0, 0, 1), TimeSlot: "midnight", PartySize: 2}
	assert.ErrorIs(t, svc.CreateBooking(context.Background(), booking), database.ErrInvalidTimeSlot)
}

func TestCreateBooking_CapacityConflictPropagates(t *testing.T) {
	repo := new(mockRepo)
	worker := new(mockSyncWorker)
	svc := newBookingService(repo, worker)
	ctx := context.Background()

	booking := &models.Booking{Date: time.Now().AddDate(0, 0, 1), TimeSlot: "evening", PartySize: 4}
	repo.On("CreateBookingWithCapacityCheck", ctx, booking).Return(database.ErrCapacityExceeded).Once()

	assert.ErrorIs(t, svc.CreateBooking(ctx, booking), database.ErrCapacityExceeded)
	worker.AssertNotCalled(t, "EnqueueBookingUpsert", mock.Anything, mock.Anything)
}

func TestCheckInBooking(t *testing.T) {
	repo := new(mockRepo)
	worker := new(mockSyncWorker)
	svc := newBookingService(repo, worker)
	ctx := context.Background()

	confirmed := &models.Booking{ID: 1, Status: models.StatusConfirmed, Version: 1}
	checkedIn := &models.Booking{ID: 1, Status: models.StatusCheckedIn, Version: 2}

	repo.On("GetBooking", ctx, int64(1)).Return(confirmed, nil).Once()
	repo.On("UpdateBookingStatusWithVersion", ctx, int64(1), int64(1), models.StatusCheckedIn).Return(nil).Once()
	repo.On("GetBooking", ctx, int64(1)).Return(checkedIn, nil).Once()
	worker.On("EnqueueBookingStatus", ctx, int64(1), models.StatusCheckedIn).Return(nil).Once()

	require.NoError(t, svc.CheckInBooking(ctx, 1, 1))
	repo.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestCheckInBooking_OnlyFromConfirmed(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()

	cancelled := &models.Booking{ID: 2, Status: models.StatusCancelled, Version: 3}
	repo.On("GetBooking", ctx, int64(2)).Return(cancelled, nil).Once()

	assert.ErrorIs(t, svc.CheckInBooking(ctx, 2, 3), database.ErrInvalidStatusChange)
	repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_FromCheckedIn(t *testing.T) {
	repo := new(mockRepo)
	worker := new(mockSyncWorker)
	svc := newBookingService(repo, worker)
	ctx := context.Background()

	checkedIn := &models.Booking{ID: 3, Status: models.StatusCheckedIn, Version: 2}
	cancelled := &models.Booking{ID: 3, Status: models.StatusCancelled, Version: 3}

	repo.On("GetBooking", ctx, int64(3)).Return(checkedIn, nil).Once()
	repo.On("UpdateBookingStatusWithVersion", ctx, int64(3), int64(2), models.StatusCancelled).Return(nil).Once()
	repo.On("GetBooking", ctx, int64(3)).Return(cancelled, nil).Once()
	worker.On("EnqueueBookingStatus", ctx, int64(3), models.StatusCancelled).Return(nil).Once()

	require.NoError(t, svc.CancelBooking(ctx, 3, 2))
	repo.AssertExpectations(t)
}

func TestCancelBooking_CancelledIsTerminal(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()

	cancelled := &models.Booking{ID: 4, Status: models.StatusCancelled, Version: 5}
	repo.On("GetBooking", ctx, int64(4)).Return(cancelled, nil).Once()

	assert.ErrorIs(t, svc.CancelBooking(ctx, 4, 5), database.ErrInvalidStatusChange)
}

func TestCancelBooking_VersionConflict(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()

	confirmed := &models.Booking{ID: 5, Status: models.StatusConfirmed, Version: 2}
	repo.On("GetBooking", ctx, int64(5)).Return(confirmed, nil).Once()
	repo.On("UpdateBookingStatusWithVersion", ctx, int64(5), int64(1), models.StatusCancelled).
		Return(database.ErrConcurrentModification).Once()

	assert.ErrorIs(t, svc.CancelBooking(ctx, 5, 1), database.ErrConcurrentModification)
}

func TestGetAvailability(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()
	date := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

	repo.On("DayConfig", ctx, date).Return(nil, nil).Once()
	repo.On("BookedTables", ctx, date).Return(3, nil).Once()

	availability, err := svc.GetAvailability(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, capacity.DefaultDailyTables, availability.Limit)
	assert.Equal(t, 3, availability.Booked)
	assert.Equal(t, 1, availability.Available)
}

func TestGetAvailabilityRange(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()
	start := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d := start.AddDate(0, 0, i)
		repo.On("DayConfig", ctx, d).Return(nil, nil).Once()
		repo.On("BookedTables", ctx, d).Return(i, nil).Once()
	}

	got, err := svc.GetAvailabilityRange(ctx, start, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 4, got[0].Available)
	assert.Equal(t, 2, got[2].Booked)
}

func TestSetDayConfig(t *testing.T) {
	repo := new(mockRepo)
	svc := newBookingService(repo, new(mockSyncWorker))
	ctx := context.Background()

	cfg := &models.DayConfig{Date: time.Now(), TableLimit: 8}
	repo.On("UpsertDayConfig", ctx, cfg).Return(nil).Once()

	require.NoError(t, svc.SetDayConfig(ctx, cfg))
	repo.AssertExpectations(t)
}
