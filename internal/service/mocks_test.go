package service

import (
	"context"
	"time"

	"meepleden/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetOrCreateMember(ctx context.Context, lineUserID, displayName string) (*models.Member, error) {
	args := m.Called(ctx, lineUserID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}
func (m *mockRepo) GetMemberByLineID(ctx context.Context, lineUserID string) (*models.Member, error) {
	args := m.Called(ctx, lineUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}
func (m *mockRepo) GetMemberByID(ctx context.Context, id int64) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}
func (m *mockRepo) UpdateMemberProfile(ctx context.Context, id int64, displayName, phone string) error {
	return m.Called(ctx, id, displayName, phone).Error(0)
}
func (m *mockRepo) GetAllMembers(ctx context.Context) ([]*models.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}
func (m *mockRepo) AwardExperience(ctx context.Context, memberID int64, amount int, reason string) (*models.Member, error) {
	args := m.Called(ctx, memberID, amount, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}
func (m *mockRepo) GetExpEvents(ctx context.Context, memberID int64, limit int) ([]models.ExpEvent, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExpEvent), args.Error(1)
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateBookingWithCapacityCheck(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id, v int64, s string) error {
	return m.Called(ctx, id, v, s).Error(0)
}
func (m *mockRepo) BookedTables(ctx context.Context, date time.Time) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) GetBookingsByDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, s, e time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetMemberBookings(ctx context.Context, memberID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetDailyBookings(ctx context.Context, s, e time.Time) (map[string][]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*models.Booking), args.Error(1)
}

func (m *mockRepo) DayConfig(ctx context.Context, date time.Time) (*models.DayConfig, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DayConfig), args.Error(1)
}
func (m *mockRepo) UpsertDayConfig(ctx context.Context, cfg *models.DayConfig) error {
	return m.Called(ctx, cfg).Error(0)
}
func (m *mockRepo) GetDayConfigs(ctx context.Context, s, e time.Time) ([]*models.DayConfig, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DayConfig), args.Error(1)
}

func (m *mockRepo) CreateGame(ctx context.Context, g *models.Game) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockRepo) UpdateGame(ctx context.Context, g *models.Game) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockRepo) GetGameByID(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}
func (m *mockRepo) GetActiveGames(ctx context.Context) ([]*models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}
func (m *mockRepo) GetAllGames(ctx context.Context) ([]*models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}
func (m *mockRepo) DeactivateGame(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CreateRentalWithStockCheck(ctx context.Context, r *models.Rental) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) ReturnRental(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetRental(ctx context.Context, id int64) (*models.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}
func (m *mockRepo) GetMemberRentals(ctx context.Context, memberID int64) ([]*models.Rental, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rental), args.Error(1)
}
func (m *mockRepo) GetActiveRentals(ctx context.Context) ([]*models.Rental, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rental), args.Error(1)
}
func (m *mockRepo) MarkOverdueRentals(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CreateNewsPost(ctx context.Context, p *models.NewsPost) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) UpdateNewsPost(ctx context.Context, p *models.NewsPost) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetNewsPost(ctx context.Context, id int64) (*models.NewsPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewsPost), args.Error(1)
}
func (m *mockRepo) GetPublishedNews(ctx context.Context, limit int) ([]*models.NewsPost, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.NewsPost), args.Error(1)
}
func (m *mockRepo) GetAllNews(ctx context.Context) ([]*models.NewsPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.NewsPost), args.Error(1)
}
func (m *mockRepo) DeleteNewsPost(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncTask), args.Error(1)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueBookingUpsert(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockSyncWorker) EnqueueBookingStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockSyncWorker) EnqueueMemberUpsert(ctx context.Context, member *models.Member) error {
	return m.Called(ctx, member).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PushText(ctx context.Context, lineUserID, text string) error {
	return m.Called(ctx, lineUserID, text).Error(0)
}
