package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"meepleden/internal/models"
)

func (db *DB) CreateGame(ctx context.Context, game *models.Game) error {
	query := `INSERT INTO games (name, category, min_players, max_players, price_cents, rental_stock, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		game.Name,
		game.Category,
		game.MinPlayers,
		game.MaxPlayers,
		game.PriceCents,
		game.RentalStock,
		game.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	game.ID = id
	game.CreatedAt = now
	game.UpdatedAt = now
	return nil
}

func (db *DB) UpdateGame(ctx context.Context, game *models.Game) error {
	query := `UPDATE games SET name = ?, category = ?, min_players = ?, max_players = ?,
              price_cents = ?, rental_stock = ?, is_active = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		game.Name,
		game.Category,
		game.MinPlayers,
		game.MaxPlayers,
		game.PriceCents,
		game.RentalStock,
		game.IsActive,
		time.Now(),
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetGameByID(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT id, name, category, min_players, max_players, price_cents, rental_stock, is_active, created_at, updated_at
              FROM games WHERE id = ?`
	var g models.Game
	var category sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &category, &g.MinPlayers, &g.MaxPlayers,
		&g.PriceCents, &g.RentalStock, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	g.Category = category.String
	return &g, nil
}

func (db *DB) GetActiveGames(ctx context.Context) ([]*models.Game, error) {
	return db.queryGames(ctx, `SELECT id, name, category, min_players, max_players, price_cents, rental_stock, is_active, created_at, updated_at
              FROM games WHERE is_active = 1 ORDER BY name`)
}

func (db *DB) GetAllGames(ctx context.Context) ([]*models.Game, error) {
	return db.queryGames(ctx, `SELECT id, name, category, min_players, max_players, price_cents, rental_stock, is_active, created_at, updated_at
              FROM games ORDER BY name`)
}

func (db *DB) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		var category sql.NullString
		err := rows.Scan(
			&g.ID, &g.Name, &category, &g.MinPlayers, &g.MaxPlayers,
			&g.PriceCents, &g.RentalStock, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g.Category = category.String
		games = append(games, g)
	}
	return games, rows.Err()
}

func (db *DB) DeactivateGame(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `UPDATE games SET is_active = 0, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate game: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
