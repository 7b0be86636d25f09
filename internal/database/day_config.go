package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"meepleden/internal/models"
)

// DayConfig returns the override row for a date, or nil when the date
// has no override and defaults apply.
func (db *DB) DayConfig(ctx context.Context, date time.Time) (*models.DayConfig, error) {
	query := `SELECT date, table_limit, disabled, updated_at FROM day_configs WHERE date = ?`

	var cfg models.DayConfig
	var dateStr string
	err := db.QueryRowContext(ctx, query, date.Format("2006-01-02")).Scan(
		&dateStr, &cfg.TableLimit, &cfg.Disabled, &cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day config: %w", err)
	}

	cfg.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse day config date %s: %w", dateStr, err)
	}
	return &cfg, nil
}

// UpsertDayConfig sets the per-date limit override and disabled flag.
// A zero table limit means "use the default".
func (db *DB) UpsertDayConfig(ctx context.Context, cfg *models.DayConfig) error {
	query := `INSERT INTO day_configs (date, table_limit, disabled, updated_at)
              VALUES (?, ?, ?, ?)
              ON CONFLICT(date) DO UPDATE SET
                table_limit = excluded.table_limit,
                disabled = excluded.disabled,
                updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.ExecContext(ctx, query, cfg.Date.Format("2006-01-02"), cfg.TableLimit, cfg.Disabled, now)
	if err != nil {
		return fmt.Errorf("failed to upsert day config: %w", err)
	}
	cfg.UpdatedAt = now
	return nil
}

func (db *DB) GetDayConfigs(ctx context.Context, startDate, endDate time.Time) ([]*models.DayConfig, error) {
	query := `SELECT date, table_limit, disabled, updated_at FROM day_configs
              WHERE date >= ? AND date <= ? ORDER BY date`
	rows, err := db.QueryContext(ctx, query,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get day configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.DayConfig
	for rows.Next() {
		cfg := &models.DayConfig{}
		var dateStr string
		if err := rows.Scan(&dateStr, &cfg.TableLimit, &cfg.Disabled, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan day config: %w", err)
		}
		cfg.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day config date %s: %w", dateStr, err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}
