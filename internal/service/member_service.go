package service

import (
	"context"
	"fmt"

	"meepleden/internal/database"
	"meepleden/internal/domain"
	"meepleden/internal/events"
	"meepleden/internal/metrics"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
)

type MemberService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	notifier     domain.Notifier
	logger       *zerolog.Logger
}

func NewMemberService(repo domain.Repository, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, notifier domain.Notifier, logger *zerolog.Logger) *MemberService {
	return &MemberService{
		repo:         repo,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		notifier:     notifier,
		logger:       logger,
	}
}

// Identify resolves a LINE user to a member row, creating it on first
// sighting at level 1 with zero experience.
func (s *MemberService) Identify(ctx context.Context, lineUserID, displayName string) (*models.Member, error) {
	member, err := s.repo.GetOrCreateMember(ctx, lineUserID, displayName)
	if err != nil {
		return nil, err
	}

	s.enqueueMemberSync(ctx, member)
	return member, nil
}

func (s *MemberService) GetByLineID(ctx context.Context, lineUserID string) (*models.Member, error) {
	return s.repo.GetMemberByLineID(ctx, lineUserID)
}

func (s *MemberService) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	return s.repo.GetMemberByID(ctx, id)
}

func (s *MemberService) UpdateProfile(ctx context.Context, id int64, displayName, phone string) error {
	if err := s.repo.UpdateMemberProfile(ctx, id, displayName, phone); err != nil {
		return err
	}

	member, err := s.repo.GetMemberByID(ctx, id)
	if err == nil {
		s.enqueueMemberSync(ctx, member)
	}
	return nil
}

// AwardExperience grants experience and applies level rollover. The
// member update and the audit event are committed atomically by the
// repository; everything after commit is best-effort.
func (s *MemberService) AwardExperience(ctx context.Context, memberID int64, amount int, reason string) (*models.Member, error) {
	if amount <= 0 {
		return nil, database.ErrInvalidAward
	}

	before, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.AwardExperience(ctx, memberID, amount, reason)
	if err != nil {
		return nil, err
	}

	metrics.AddExpAwarded(amount)

	payload := events.MemberEventPayload{
		MemberID:   member.ID,
		LineUserID: member.LineUserID,
		Amount:     amount,
		Reason:     reason,
		OldLevel:   before.Level,
		NewLevel:   member.Level,
		NewExp:     member.CurrentExp,
	}
	s.publishEvent(events.EventExpAwarded, payload)

	if member.Level > before.Level {
		metrics.AddLevelUps(member.Level - before.Level)
		s.publishEvent(events.EventLevelUp, payload)
		s.notifyLevelUp(ctx, member)
	}

	s.enqueueMemberSync(ctx, member)

	return member, nil
}

func (s *MemberService) GetExpHistory(ctx context.Context, memberID int64, limit int) ([]models.ExpEvent, error) {
	return s.repo.GetExpEvents(ctx, memberID, limit)
}

func (s *MemberService) GetAllMembers(ctx context.Context) ([]*models.Member, error) {
	return s.repo.GetAllMembers(ctx)
}

func (s *MemberService) publishEvent(eventType string, payload events.MemberEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("member_id", payload.MemberID).Msg("publish event error")
	}
}

func (s *MemberService) notifyLevelUp(ctx context.Context, member *models.Member) {
	if s.notifier == nil {
		return
	}
	text := fmt.Sprintf("🎉 Congratulations! You reached level %d.", member.Level)
	if err := s.notifier.PushText(ctx, member.LineUserID, text); err != nil {
		s.logger.Warn().Err(err).Int64("member_id", member.ID).Msg("level-up push failed")
	}
}

func (s *MemberService) enqueueMemberSync(ctx context.Context, member *models.Member) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueMemberUpsert(ctx, member); err != nil {
		s.logger.Error().Err(err).Int64("member_id", member.ID).Msg("sheets enqueue error")
	}
}
