package service

import (
	"context"
	"strings"
	"time"

	"meepleden/internal/capacity"
	"meepleden/internal/database"
	"meepleden/internal/domain"
	"meepleden/internal/events"
	"meepleden/internal/metrics"
	"meepleden/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	engine         *capacity.Engine
	eventBus       domain.EventPublisher
	sheetsWorker   domain.SyncWorker
	maxBookingDays int
	maxPartySize   int
	timeSlots      []string
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, engine *capacity.Engine, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, maxBookingDays, maxPartySize int, timeSlots []string, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = 60
	}
	if maxPartySize <= 0 {
		maxPartySize = 20
	}
	return &BookingService{
		repo:           repo,
		engine:         engine,
		eventBus:       eventBus,
		sheetsWorker:   sheetsWorker,
		maxBookingDays: maxBookingDays,
		maxPartySize:   maxPartySize,
		timeSlots:      timeSlots,
		logger:         logger,
	}
}

func (s *BookingService) ValidateBookingDate(date time.Time) error {
	// Прошедшие даты не бронируются
	if date.Before(time.Now().AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}

	maxDate := time.Now().AddDate(0, 0, s.maxBookingDays)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

func (s *BookingService) validTimeSlot(slot string) bool {
	if len(s.timeSlots) == 0 {
		return true
	}
	for _, known := range s.timeSlots {
		if strings.EqualFold(known, slot) {
			return true
		}
	}
	return false
}

// CreateBooking derives tables from the party size and inserts the
// booking under the atomic capacity guard. A full or disabled date
// surfaces as ErrCapacityExceeded / ErrDateDisabled for the handler to
// map to 409.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.ValidateBookingDate(booking.Date); err != nil {
		metrics.IncBookingRejected("invalid_date")
		return err
	}
	if booking.PartySize <= 0 || booking.PartySize > s.maxPartySize {
		metrics.IncBookingRejected("invalid_party_size")
		return database.ErrInvalidPartySize
	}
	if !s.validTimeSlot(booking.TimeSlot) {
		metrics.IncBookingRejected("invalid_time_slot")
		return database.ErrInvalidTimeSlot
	}

	booking.TablesOccupied = capacity.TablesFor(booking.PartySize)
	if booking.Reference == "" {
		booking.Reference = uuid.NewString()
	}
	booking.Status = models.StatusConfirmed

	if err := s.repo.CreateBookingWithCapacityCheck(ctx, booking); err != nil {
		switch err {
		case database.ErrCapacityExceeded:
			metrics.IncBookingRejected("capacity")
		case database.ErrDateDisabled:
			metrics.IncBookingRejected("date_disabled")
		}
		return err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, "member")
	s.enqueueSync(ctx, booking)

	return nil
}

func (s *BookingService) CheckInBooking(ctx context.Context, id, version int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusConfirmed {
		return database.ErrInvalidStatusChange
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, id, version, models.StatusCheckedIn); err != nil {
		return err
	}

	s.afterStatusChange(ctx, id, events.EventBookingCheckedIn)
	return nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id, version int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	// cancelled is terminal
	if booking.Status == models.StatusCancelled {
		return database.ErrInvalidStatusChange
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, id, version, models.StatusCancelled); err != nil {
		return err
	}

	s.afterStatusChange(ctx, id, events.EventBookingCancelled)
	return nil
}

func (s *BookingService) GetAvailability(ctx context.Context, date time.Time) (*models.Availability, error) {
	return s.engine.Availability(ctx, date)
}

func (s *BookingService) GetAvailabilityRange(ctx context.Context, startDate time.Time, days int) ([]*models.Availability, error) {
	if days <= 0 {
		days = 1
	}
	result := make([]*models.Availability, 0, days)
	for i := 0; i < days; i++ {
		availability, err := s.engine.Availability(ctx, startDate.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		result = append(result, availability)
	}
	return result, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return s.repo.GetBookingByReference(ctx, reference)
}

func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, start, end)
}

func (s *BookingService) GetMemberBookings(ctx context.Context, memberID int64) ([]*models.Booking, error) {
	return s.repo.GetMemberBookings(ctx, memberID)
}

func (s *BookingService) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	return s.repo.GetDailyBookings(ctx, start, end)
}

func (s *BookingService) SetDayConfig(ctx context.Context, cfg *models.DayConfig) error {
	return s.repo.UpsertDayConfig(ctx, cfg)
}

func (s *BookingService) GetDayConfigs(ctx context.Context, start, end time.Time) ([]*models.DayConfig, error) {
	return s.repo.GetDayConfigs(ctx, start, end)
}

func (s *BookingService) afterStatusChange(ctx context.Context, id int64, eventType string) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("reload after status change failed")
		return
	}

	s.publishEvent(eventType, booking, "staff")
	s.enqueueStatusSync(ctx, booking)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		Reference:      booking.Reference,
		Date:           booking.Date,
		TimeSlot:       booking.TimeSlot,
		PartySize:      booking.PartySize,
		TablesOccupied: booking.TablesOccupied,
		Status:         booking.Status,
		ContactName:    booking.ContactName,
		MemberID:       booking.MemberID,
		ChangedBy:      changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueBookingUpsert(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}

func (s *BookingService) enqueueStatusSync(ctx context.Context, booking *models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueBookingStatus(ctx, booking.ID, booking.Status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}
