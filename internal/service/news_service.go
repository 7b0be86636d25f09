package service

import (
	"context"

	"meepleden/internal/domain"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
)

type NewsService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewNewsService(repo domain.Repository, logger *zerolog.Logger) *NewsService {
	return &NewsService{
		repo:   repo,
		logger: logger,
	}
}

func (s *NewsService) GetFeed(ctx context.Context, limit int) ([]*models.NewsPost, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.GetPublishedNews(ctx, limit)
}

func (s *NewsService) GetAllPosts(ctx context.Context) ([]*models.NewsPost, error) {
	return s.repo.GetAllNews(ctx)
}

func (s *NewsService) GetPost(ctx context.Context, id int64) (*models.NewsPost, error) {
	return s.repo.GetNewsPost(ctx, id)
}

func (s *NewsService) CreatePost(ctx context.Context, post *models.NewsPost) error {
	return s.repo.CreateNewsPost(ctx, post)
}

func (s *NewsService) UpdatePost(ctx context.Context, post *models.NewsPost) error {
	return s.repo.UpdateNewsPost(ctx, post)
}

func (s *NewsService) DeletePost(ctx context.Context, id int64) error {
	return s.repo.DeleteNewsPost(ctx, id)
}
