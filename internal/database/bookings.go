package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"meepleden/internal/capacity"
	"meepleden/internal/models"
)

// BookedTables returns the tables committed for a date across
// capacity-consuming statuses. Cancelled bookings never count.
func (db *DB) BookedTables(ctx context.Context, date time.Time) (int, error) {
	query := `SELECT COALESCE(SUM(tables_occupied), 0) FROM bookings
              WHERE date = ? AND status IN (?, ?)`
	var booked int
	err := db.QueryRowContext(ctx, query,
		date.Format("2006-01-02"), models.StatusConfirmed, models.StatusCheckedIn).Scan(&booked)
	if err != nil {
		return 0, fmt.Errorf("failed to get booked tables: %w", err)
	}
	return booked, nil
}

// CreateBookingWithCapacityCheck inserts a booking only if the date is
// not disabled and the day's committed tables leave room for the new
// party. The guard and the insert are one SQL statement, so two racing
// requests cannot jointly exceed the limit: SQLite serializes the
// writes and the second one re-evaluates the running total.
func (db *DB) CreateBookingWithCapacityCheck(ctx context.Context, booking *models.Booking) error {
	dateStr := booking.Date.Format("2006-01-02")
	now := time.Now()

	result, err := db.ExecContext(ctx,
		`INSERT INTO bookings (
            reference, date, time_slot, party_size, tables_occupied,
            status, contact_name, contact_phone, member_id, note,
            created_at, updated_at, version
        )
        SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1
        WHERE NOT EXISTS (SELECT 1 FROM day_configs WHERE date = ? AND disabled = 1)
          AND (SELECT COALESCE(SUM(tables_occupied), 0) FROM bookings
               WHERE date = ? AND status IN (?, ?)) + ?
              <= COALESCE((SELECT table_limit FROM day_configs WHERE date = ? AND table_limit > 0), ?)`,
		booking.Reference,
		dateStr,
		booking.TimeSlot,
		booking.PartySize,
		booking.TablesOccupied,
		booking.Status,
		booking.ContactName,
		booking.ContactPhone,
		nullableID(booking.MemberID),
		booking.Note,
		now,
		now,
		dateStr,
		dateStr,
		models.StatusConfirmed,
		models.StatusCheckedIn,
		booking.TablesOccupied,
		dateStr,
		capacity.DefaultDailyTables,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Guard refused; re-read outside the guard only to classify.
		cfg, cfgErr := db.DayConfig(ctx, booking.Date)
		if cfgErr == nil && cfg != nil && cfg.Disabled {
			return ErrDateDisabled
		}
		return ErrCapacityExceeded
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := bookingSelect + ` WHERE id = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := bookingSelect + ` WHERE reference = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, reference))
}

const bookingSelect = `SELECT id, reference, date, time_slot, party_size, tables_occupied,
                 status, contact_name, contact_phone, member_id, note,
                 created_at, updated_at, version
          FROM bookings`

func (db *DB) scanBooking(row *sql.Row) (*models.Booking, error) {
	var b models.Booking
	var dateStr string
	var memberID sql.NullInt64
	var note sql.NullString
	err := row.Scan(
		&b.ID, &b.Reference, &dateStr, &b.TimeSlot, &b.PartySize, &b.TablesOccupied,
		&b.Status, &b.ContactName, &b.ContactPhone, &memberID, &note,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	b.MemberID = memberID.Int64
	b.Note = note.String
	return &b, nil
}

// UpdateBookingStatusWithVersion performs an optimistic status change.
// Transition legality is validated in the service layer.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetBookingsByDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE date = ? ORDER BY time_slot, created_at`,
		date.Format("2006-01-02"))
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE date >= ? AND date <= ? ORDER BY date, time_slot, created_at`,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
}

func (db *DB) GetMemberBookings(ctx context.Context, memberID int64) ([]*models.Booking, error) {
	// Last two weeks and everything upcoming.
	twoWeeksAgo := time.Now().AddDate(0, 0, -14).Format("2006-01-02")
	return db.queryBookings(ctx, bookingSelect+` WHERE member_id = ? AND date >= ? ORDER BY date DESC`,
		memberID, twoWeeksAgo)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var dateStr string
		var memberID sql.NullInt64
		var note sql.NullString
		err := rows.Scan(
			&b.ID, &b.Reference, &dateStr, &b.TimeSlot, &b.PartySize, &b.TablesOccupied,
			&b.Status, &b.ContactName, &b.ContactPhone, &memberID, &note,
			&b.CreatedAt, &b.UpdatedAt, &b.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
		}
		b.MemberID = memberID.Int64
		b.Note = note.String
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetDailyBookings groups bookings by date key for a period.
func (db *DB) GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		dateKey := b.Date.Format("2006-01-02")
		daily[dateKey] = append(daily[dateKey], b)
	}
	return daily, nil
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
