package domain

import (
	"context"
	"time"

	"meepleden/internal/models"
)

type Repository interface {
	GetOrCreateMember(ctx context.Context, lineUserID, displayName string) (*models.Member, error)
	GetMemberByLineID(ctx context.Context, lineUserID string) (*models.Member, error)
	GetMemberByID(ctx context.Context, id int64) (*models.Member, error)
	UpdateMemberProfile(ctx context.Context, id int64, displayName, phone string) error
	GetAllMembers(ctx context.Context) ([]*models.Member, error)
	AwardExperience(ctx context.Context, memberID int64, amount int, reason string) (*models.Member, error)
	GetExpEvents(ctx context.Context, memberID int64, limit int) ([]models.ExpEvent, error)

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	CreateBookingWithCapacityCheck(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	BookedTables(ctx context.Context, date time.Time) (int, error)
	GetBookingsByDate(ctx context.Context, date time.Time) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error)
	GetMemberBookings(ctx context.Context, memberID int64) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error)

	DayConfig(ctx context.Context, date time.Time) (*models.DayConfig, error)
	UpsertDayConfig(ctx context.Context, cfg *models.DayConfig) error
	GetDayConfigs(ctx context.Context, startDate, endDate time.Time) ([]*models.DayConfig, error)

	CreateGame(ctx context.Context, game *models.Game) error
	UpdateGame(ctx context.Context, game *models.Game) error
	GetGameByID(ctx context.Context, id int64) (*models.Game, error)
	GetActiveGames(ctx context.Context) ([]*models.Game, error)
	GetAllGames(ctx context.Context) ([]*models.Game, error)
	DeactivateGame(ctx context.Context, id int64) error

	CreateRentalWithStockCheck(ctx context.Context, rental *models.Rental) error
	ReturnRental(ctx context.Context, id int64) error
	GetRental(ctx context.Context, id int64) (*models.Rental, error)
	GetMemberRentals(ctx context.Context, memberID int64) ([]*models.Rental, error)
	GetActiveRentals(ctx context.Context) ([]*models.Rental, error)
	MarkOverdueRentals(ctx context.Context) (int64, error)

	CreateNewsPost(ctx context.Context, post *models.NewsPost) error
	UpdateNewsPost(ctx context.Context, post *models.NewsPost) error
	GetNewsPost(ctx context.Context, id int64) (*models.NewsPost, error)
	GetPublishedNews(ctx context.Context, limit int) ([]*models.NewsPost, error)
	GetAllNews(ctx context.Context) ([]*models.NewsPost, error)
	DeleteNewsPost(ctx context.Context, id int64) error

	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
}

type SessionRepository interface {
	GetSession(ctx context.Context, lineUserID string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, lineUserID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SessionStore is the service-level view of LIFF sessions used by the
// HTTP layer.
type SessionStore interface {
	GetSession(ctx context.Context, lineUserID string) (*models.Session, error)
	SetSession(ctx context.Context, lineUserID, step string, data map[string]interface{}) error
	ClearSession(ctx context.Context, lineUserID string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier pushes messages to a LINE user.
type Notifier interface {
	PushText(ctx context.Context, lineUserID, text string) error
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
	UpsertMember(ctx context.Context, member *models.Member) error
	ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error
	ReplaceMembersSheet(ctx context.Context, members []*models.Member) error
}

type SyncWorker interface {
	EnqueueBookingUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueBookingStatus(ctx context.Context, bookingID int64, status string) error
	EnqueueMemberUpsert(ctx context.Context, member *models.Member) error
}

type MemberService interface {
	Identify(ctx context.Context, lineUserID, displayName string) (*models.Member, error)
	GetByLineID(ctx context.Context, lineUserID string) (*models.Member, error)
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	UpdateProfile(ctx context.Context, id int64, displayName, phone string) error
	AwardExperience(ctx context.Context, memberID int64, amount int, reason string) (*models.Member, error)
	GetExpHistory(ctx context.Context, memberID int64, limit int) ([]models.ExpEvent, error)
	GetAllMembers(ctx context.Context) ([]*models.Member, error)
}

type BookingService interface {
	ValidateBookingDate(date time.Time) error
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CheckInBooking(ctx context.Context, id, version int64) error
	CancelBooking(ctx context.Context, id, version int64) error
	GetAvailability(ctx context.Context, date time.Time) (*models.Availability, error)
	GetAvailabilityRange(ctx context.Context, startDate time.Time, days int) ([]*models.Availability, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetMemberBookings(ctx context.Context, memberID int64) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
	SetDayConfig(ctx context.Context, cfg *models.DayConfig) error
	GetDayConfigs(ctx context.Context, start, end time.Time) ([]*models.DayConfig, error)
}

type InventoryService interface {
	GetActiveGames(ctx context.Context) ([]*models.Game, error)
	GetAllGames(ctx context.Context) ([]*models.Game, error)
	GetGameByID(ctx context.Context, id int64) (*models.Game, error)
	CreateGame(ctx context.Context, game *models.Game) error
	UpdateGame(ctx context.Context, game *models.Game) error
	DeactivateGame(ctx context.Context, id int64) error
	CheckOutGame(ctx context.Context, rental *models.Rental) error
	ReturnRental(ctx context.Context, rentalID int64) error
	GetMemberRentals(ctx context.Context, memberID int64) ([]*models.Rental, error)
	GetActiveRentals(ctx context.Context) ([]*models.Rental, error)
}

type NewsService interface {
	GetFeed(ctx context.Context, limit int) ([]*models.NewsPost, error)
	GetAllPosts(ctx context.Context) ([]*models.NewsPost, error)
	GetPost(ctx context.Context, id int64) (*models.NewsPost, error)
	CreatePost(ctx context.Context, post *models.NewsPost) error
	UpdatePost(ctx context.Context, post *models.NewsPost) error
	DeletePost(ctx context.Context, id int64) error
}
