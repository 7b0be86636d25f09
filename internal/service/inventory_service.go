package service

import (
	"context"

	"meepleden/internal/domain"
	"meepleden/internal/events"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
)

type InventoryService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewInventoryService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *InventoryService {
	return &InventoryService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *InventoryService) GetActiveGames(ctx context.Context) ([]*models.Game, error) {
	return s.repo.GetActiveGames(ctx)
}

func (s *InventoryService) GetAllGames(ctx context.Context) ([]*models.Game, error) {
	return s.repo.GetAllGames(ctx)
}

func (s *InventoryService) GetGameByID(ctx context.Context, id int64) (*models.Game, error) {
	return s.repo.GetGameByID(ctx, id)
}

func (s *InventoryService) CreateGame(ctx context.Context, game *models.Game) error {
	return s.repo.CreateGame(ctx, game)
}

func (s *InventoryService) UpdateGame(ctx context.Context, game *models.Game) error {
	return s.repo.UpdateGame(ctx, game)
}

func (s *InventoryService) DeactivateGame(ctx context.Context, id int64) error {
	return s.repo.DeactivateGame(ctx, id)
}

// CheckOutGame lends one copy to a member; the stock check and insert
// run in one transaction in the repository.
func (s *InventoryService) CheckOutGame(ctx context.Context, rental *models.Rental) error {
	if err := s.repo.CreateRentalWithStockCheck(ctx, rental); err != nil {
		return err
	}

	s.publishRentalEvent(events.EventRentalCheckedOut, rental)
	return nil
}

func (s *InventoryService) ReturnRental(ctx context.Context, rentalID int64) error {
	if err := s.repo.ReturnRental(ctx, rentalID); err != nil {
		return err
	}

	rental, err := s.repo.GetRental(ctx, rentalID)
	if err == nil {
		s.publishRentalEvent(events.EventRentalReturned, rental)
	}
	return nil
}

func (s *InventoryService) GetMemberRentals(ctx context.Context, memberID int64) ([]*models.Rental, error) {
	return s.repo.GetMemberRentals(ctx, memberID)
}

func (s *InventoryService) GetActiveRentals(ctx context.Context) ([]*models.Rental, error) {
	return s.repo.GetActiveRentals(ctx)
}

func (s *InventoryService) publishRentalEvent(eventType string, rental *models.Rental) {
	if s.eventBus == nil {
		return
	}
	payload := map[string]interface{}{
		"rental_id": rental.ID,
		"game_id":   rental.GameID,
		"member_id": rental.MemberID,
		"status":    rental.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("rental_id", rental.ID).Msg("publish event error")
	}
}
