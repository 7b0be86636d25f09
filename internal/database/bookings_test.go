package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"meepleden/internal/capacity"
	"meepleden/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking(date time.Time, partySize int) *models.Booking {
	return &models.Booking{
		Reference:      uuid.NewString(),
		Date:           date,
		TimeSlot:       "evening",
		PartySize:      partySize,
		TablesOccupied: capacity.TablesFor(partySize),
		Status:         models.StatusConfirmed,
		ContactName:    "Mana",
		ContactPhone:   "090-0000-0000",
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestCreateBooking_WithinDefaultLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-07-01")

	b := testBooking(date, 4)
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, b))
	assert.NotZero(t, b.ID)
	assert.Equal(t, int64(1), b.Version)

	booked, err := db.BookedTables(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
}

func TestCreateBooking_CapacityExceeded(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-07-02")

	// Default limit is 4 tables; fill it with 16 people.
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, testBooking(date, 16)))

	err := db.CreateBookingWithCapacityCheck(ctx, testBooking(date, 1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestCreateBooking_RespectsOverride(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-07-03")

	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: date, TableLimit: 1}))

	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, testBooking(date, 2)))
	err := db.CreateBookingWithCapacityCheck(ctx, testBooking(date, 2))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestCreateBooking_DisabledDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-07-04")

	require.NoError(t, db.UpsertDayConfig(ctx, &models.DayConfig{Date: date, Disabled: true}))

	err := db.CreateBookingWithCapacityCheck(ctx, testBooking(date, 2))
	assert.ErrorIs(t, err, ErrDateDisabled)
}

func TestBookedTables_IgnoresCancelled(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-07-05")

	kept := testBooking(date, 8) // 2 tables
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, kept))

	cancelled := testBooking(date, 8) // 2 tables, then cancelled
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, cancelled))
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, cancelled.ID, cancelled.Version, models.StatusCancelled))

	booked, err := db.BookedTables(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 2, booked)
}

func TestBookedTables_CountsCheckedIn(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := mustDate(t, "2025-07-06")

	b := testBooking(date, 4)
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, b))
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusCheckedIn))

	booked, err := db.BookedTables(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
}

func TestUpdateBookingStatusWithVersion_Conflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := testBooking(mustDate(t, "2025-07-07"), 2)
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, b))

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusCheckedIn))

	// Stale version loses.
	err := db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	fresh, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedIn, fresh.Status)
	assert.Equal(t, int64(2), fresh.Version)
}

func TestGetBookingByReference(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := testBooking(mustDate(t, "2025-07-08"), 5)
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, b))

	found, err := db.GetBookingByReference(ctx, b.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
	assert.Equal(t, 2, found.TablesOccupied)

	_, err = db.GetBookingByReference(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBookingsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		date := mustDate(t, fmt.Sprintf("2025-08-0%d", i))
		require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, testBooking(date, 2)))
	}

	bookings, err := db.GetBookingsByDateRange(ctx, mustDate(t, "2025-08-01"), mustDate(t, "2025-08-02"))
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	daily, err := db.GetDailyBookings(ctx, mustDate(t, "2025-08-01"), mustDate(t, "2025-08-03"))
	require.NoError(t, err)
	assert.Len(t, daily, 3)
	assert.Len(t, daily["2025-08-01"], 1)
}

func TestGetMemberBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m, err := db.GetOrCreateMember(ctx, "Ubook", "B")
	require.NoError(t, err)

	b := testBooking(time.Now().AddDate(0, 0, 3), 4)
	b.MemberID = m.ID
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, b))

	// Anonymous booking on the same day must not leak in.
	require.NoError(t, db.CreateBookingWithCapacityCheck(ctx, testBooking(time.Now().AddDate(0, 0, 3), 4)))

	bookings, err := db.GetMemberBookings(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, b.ID, bookings[0].ID)
}
