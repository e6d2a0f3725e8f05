package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service records and queries audit entries. Recording is best-effort:
// a failed write is logged but never fails the calling operation.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an audit entry. Errors are swallowed after logging so
// audit failures cannot break clinical workflows.
func (s *Service) Record(ctx context.Context, e *Entry) {
	if e.Action == "" {
		s.logger.Warn().Msg("audit entry dropped: missing action")
		return
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("action", e.Action).Msg("audit write failed")
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByEntity(ctx, entity, entityID, limit, offset)
}
