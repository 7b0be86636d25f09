package service

import (
	"context"

	"meepleden/internal/domain"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
)

// SessionService wraps the session repository for the LIFF flow: one
// session per LINE user, holding the in-progress booking draft.
type SessionService struct {
	sessionRepo domain.SessionRepository
	logger      *zerolog.Logger
}

func NewSessionService(sessionRepo domain.SessionRepository, logger *zerolog.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (s *SessionService) GetSession(ctx context.Context, lineUserID string) (*models.Session, error) {
	session, err := s.sessionRepo.GetSession(ctx, lineUserID)
	if err != nil {
		s.logger.Error().Err(err).Str("line_user_id", lineUserID).Msg("failed to get session")
		return nil, err
	}
	return session, nil
}

func (s *SessionService) SetSession(ctx context.Context, lineUserID, step string, data map[string]interface{}) error {
	return s.sessionRepo.SetSession(ctx, &models.Session{
		LineUserID:  lineUserID,
		CurrentStep: step,
		TempData:    data,
	})
}

func (s *SessionService) ClearSession(ctx context.Context, lineUserID string) error {
	return s.sessionRepo.ClearSession(ctx, lineUserID)
}

func (s *SessionService) UpdateSessionData(ctx context.Context, lineUserID, key string, value interface{}) error {
	session, err := s.sessionRepo.GetSession(ctx, lineUserID)
	if err != nil {
		return err
	}
	if session == nil {
		session = &models.Session{
			LineUserID: lineUserID,
			TempData:   make(map[string]interface{}),
		}
	}
	if session.TempData == nil {
		session.TempData = make(map[string]interface{})
	}
	session.TempData[key] = value

	return s.sessionRepo.SetSession(ctx, session)
}
