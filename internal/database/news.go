package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"meepleden/internal/models"
)

func (db *DB) CreateNewsPost(ctx context.Context, post *models.NewsPost) error {
	query := `INSERT INTO news_posts (title, body, image_url, published, published_at, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if post.Published && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	result, err := db.ExecContext(ctx, query,
		post.Title,
		post.Body,
		post.ImageURL,
		post.Published,
		post.PublishedAt,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create news post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	post.ID = id
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (db *DB) UpdateNewsPost(ctx context.Context, post *models.NewsPost) error {
	now := time.Now()
	if post.Published && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	query := `UPDATE news_posts SET title = ?, body = ?, image_url = ?, published = ?, published_at = ?, updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		post.Title,
		post.Body,
		post.ImageURL,
		post.Published,
		post.PublishedAt,
		now,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update news post: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetNewsPost(ctx context.Context, id int64) (*models.NewsPost, error) {
	query := `SELECT id, title, body, image_url, published, published_at, created_at, updated_at
              FROM news_posts WHERE id = ?`
	var p models.NewsPost
	var imageURL sql.NullString
	var publishedAt sql.NullTime
	err := db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Body, &imageURL, &p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get news post: %w", err)
	}
	p.ImageURL = imageURL.String
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	return &p, nil
}

func (db *DB) GetPublishedNews(ctx context.Context, limit int) ([]*models.NewsPost, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryNews(ctx,
		`SELECT id, title, body, image_url, published, published_at, created_at, updated_at
         FROM news_posts WHERE published = 1 ORDER BY published_at DESC LIMIT ?`, limit)
}

func (db *DB) GetAllNews(ctx context.Context) ([]*models.NewsPost, error) {
	return db.queryNews(ctx,
		`SELECT id, title, body, image_url, published, published_at, created_at, updated_at
         FROM news_posts ORDER BY created_at DESC`)
}

func (db *DB) DeleteNewsPost(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM news_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete news post: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) queryNews(ctx context.Context, query string, args ...interface{}) ([]*models.NewsPost, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.NewsPost
	for rows.Next() {
		p := &models.NewsPost{}
		var imageURL sql.NullString
		var publishedAt sql.NullTime
		err := rows.Scan(
			&p.ID, &p.Title, &p.Body, &imageURL, &p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news post: %w", err)
		}
		p.ImageURL = imageURL.String
		if publishedAt.Valid {
			p.PublishedAt = &publishedAt.Time
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
