package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"meepleden/internal/leveling"
	"meepleden/internal/models"
)

// GetOrCreateMember returns the member for a LINE user ID, creating a
// fresh level-1 record the first time the identity is seen.
func (db *DB) GetOrCreateMember(ctx context.Context, lineUserID, displayName string) (*models.Member, error) {
	member, err := db.GetMemberByLineID(ctx, lineUserID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	query := `INSERT INTO members (line_user_id, display_name, level, current_exp, created_at, updated_at)
              VALUES (?, ?, 1, 0, ?, ?)`
	result, err := db.ExecContext(ctx, query, lineUserID, displayName, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &models.Member{
		ID:          id,
		LineUserID:  lineUserID,
		DisplayName: displayName,
		Level:       1,
		CurrentExp:  0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (db *DB) GetMemberByLineID(ctx context.Context, lineUserID string) (*models.Member, error) {
	query := `SELECT id, line_user_id, display_name, phone, level, current_exp, created_at, updated_at
              FROM members WHERE line_user_id = ?`
	return db.scanMember(db.QueryRowContext(ctx, query, lineUserID))
}

func (db *DB) GetMemberByID(ctx context.Context, id int64) (*models.Member, error) {
	query := `SELECT id, line_user_id, display_name, phone, level, current_exp, created_at, updated_at
              FROM members WHERE id = ?`
	return db.scanMember(db.QueryRowContext(ctx, query, id))
}

func (db *DB) scanMember(row *sql.Row) (*models.Member, error) {
	var m models.Member
	var displayName, phone sql.NullString
	err := row.Scan(&m.ID, &m.LineUserID, &displayName, &phone, &m.Level, &m.CurrentExp, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	m.DisplayName = displayName.String
	m.Phone = phone.String
	return &m, nil
}

func (db *DB) UpdateMemberProfile(ctx context.Context, id int64, displayName, phone string) error {
	query := `UPDATE members SET display_name = ?, phone = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, displayName, phone, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update member profile: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetAllMembers(ctx context.Context) ([]*models.Member, error) {
	query := `SELECT id, line_user_id, display_name, phone, level, current_exp, created_at, updated_at
              FROM members ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		var m models.Member
		var displayName, phone sql.NullString
		err := rows.Scan(&m.ID, &m.LineUserID, &displayName, &phone, &m.Level, &m.CurrentExp, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.DisplayName = displayName.String
		m.Phone = phone.String
		members = append(members, &m)
	}
	return members, rows.Err()
}

// AwardExperience applies an award to a member inside one transaction:
// the member row is re-read under the transaction, the new (level, exp)
// pair is computed with the flat-threshold rule, and the member update
// plus the append-only event insert commit together or not at all.
func (db *DB) AwardExperience(ctx context.Context, memberID int64, amount int, reason string) (*models.Member, error) {
	if amount <= 0 {
		return nil, ErrInvalidAward
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var m models.Member
	var displayName, phone sql.NullString
	query := `SELECT id, line_user_id, display_name, phone, level, current_exp, created_at, updated_at
              FROM members WHERE id = ?`
	err = tx.QueryRowContext(ctx, query, memberID).Scan(
		&m.ID, &m.LineUserID, &displayName, &phone, &m.Level, &m.CurrentExp, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member in tx: %w", err)
	}
	m.DisplayName = displayName.String
	m.Phone = phone.String

	progress := leveling.ApplyAward(m.Level, m.CurrentExp, amount)

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE members SET level = ?, current_exp = ?, updated_at = ? WHERE id = ?`,
		progress.Level, progress.Exp, now, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update member exp: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exp_events (member_id, amount, reason, created_at) VALUES (?, ?, ?, ?)`,
		memberID, amount, reason, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert exp event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit award: %w", err)
	}

	m.Level = progress.Level
	m.CurrentExp = progress.Exp
	m.UpdatedAt = now
	return &m, nil
}

func (db *DB) GetExpEvents(ctx context.Context, memberID int64, limit int) ([]models.ExpEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, member_id, amount, reason, created_at
              FROM exp_events WHERE member_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get exp events: %w", err)
	}
	defer rows.Close()

	var eventsList []models.ExpEvent
	for rows.Next() {
		var e models.ExpEvent
		var reason sql.NullString
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Amount, &reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exp event: %w", err)
		}
		e.Reason = reason.String
		eventsList = append(eventsList, e)
	}
	return eventsList, rows.Err()
}
