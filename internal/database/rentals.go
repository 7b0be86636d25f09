package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"meepleden/internal/models"
)

// CreateRentalWithStockCheck checks out one copy of a game. The count
// of copies currently out is re-read inside the transaction so stock
// cannot be oversubscribed by concurrent checkouts.
func (db *DB) CreateRentalWithStockCheck(ctx context.Context, rental *models.Rental) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var stock int
	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT rental_stock, name FROM games WHERE id = ? AND is_active = 1`, rental.GameID,
	).Scan(&stock, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get game in tx: %w", err)
	}

	var out int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE game_id = ? AND status IN (?, ?)`,
		rental.GameID, models.RentalStatusOut, models.RentalStatusOverdue,
	).Scan(&out)
	if err != nil {
		return fmt.Errorf("failed to count active rentals in tx: %w", err)
	}
	if out >= stock {
		return ErrOutOfStock
	}

	if rental.RentedAt.IsZero() {
		rental.RentedAt = time.Now()
	}
	if rental.DueAt.IsZero() {
		rental.DueAt = rental.RentedAt.AddDate(0, 0, models.DefaultRentalDays)
	}
	rental.GameName = name
	rental.Status = models.RentalStatusOut

	result, err := tx.ExecContext(ctx,
		`INSERT INTO rentals (game_id, game_name, member_id, status, deposit_cents, rented_at, due_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rental.GameID,
		rental.GameName,
		rental.MemberID,
		rental.Status,
		rental.DepositCents,
		rental.RentedAt,
		rental.DueAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rental in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rental: %w", err)
	}

	rental.ID = id
	return nil
}

func (db *DB) ReturnRental(ctx context.Context, id int64) error {
	now := time.Now()
	query := `UPDATE rentals SET status = ?, returned_at = ? WHERE id = ? AND status IN (?, ?)`
	result, err := db.ExecContext(ctx, query,
		models.RentalStatusReturned, now, id,
		models.RentalStatusOut, models.RentalStatusOverdue,
	)
	if err != nil {
		return fmt.Errorf("failed to return rental: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetRental(ctx context.Context, id int64) (*models.Rental, error) {
	query := `SELECT id, game_id, game_name, member_id, status, deposit_cents, rented_at, due_at, returned_at
              FROM rentals WHERE id = ?`
	var r models.Rental
	var returnedAt sql.NullTime
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.GameID, &r.GameName, &r.MemberID, &r.Status,
		&r.DepositCents, &r.RentedAt, &r.DueAt, &returnedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rental: %w", err)
	}
	if returnedAt.Valid {
		r.ReturnedAt = &returnedAt.Time
	}
	return &r, nil
}

func (db *DB) GetMemberRentals(ctx context.Context, memberID int64) ([]*models.Rental, error) {
	return db.queryRentals(ctx,
		`SELECT id, game_id, game_name, member_id, status, deposit_cents, rented_at, due_at, returned_at
         FROM rentals WHERE member_id = ? ORDER BY rented_at DESC`, memberID)
}

func (db *DB) GetActiveRentals(ctx context.Context) ([]*models.Rental, error) {
	return db.queryRentals(ctx,
		`SELECT id, game_id, game_name, member_id, status, deposit_cents, rented_at, due_at, returned_at
         FROM rentals WHERE status IN (?, ?) ORDER BY due_at`,
		models.RentalStatusOut, models.RentalStatusOverdue)
}

// MarkOverdueRentals flags rentals past due; returns the number flagged.
func (db *DB) MarkOverdueRentals(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE rentals SET status = ? WHERE status = ? AND due_at < ?`,
		models.RentalStatusOverdue, models.RentalStatusOut, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue rentals: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (db *DB) queryRentals(ctx context.Context, query string, args ...interface{}) ([]*models.Rental, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rentals: %w", err)
	}
	defer rows.Close()

	var rentals []*models.Rental
	for rows.Next() {
		r := &models.Rental{}
		var returnedAt sql.NullTime
		err := rows.Scan(
			&r.ID, &r.GameID, &r.GameName, &r.MemberID, &r.Status,
			&r.DepositCents, &r.RentedAt, &r.DueAt, &returnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		if returnedAt.Valid {
			r.ReturnedAt = &returnedAt.Time
		}
		rentals = append(rentals, r)
	}
	return rentals, rows.Err()
}
