package notification

import (
	"context"
	"log/slog"
)

// Service exposes the read side of notifications. Writes happen inside the
// account and lending transactions, not here.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error) {
	return s.repo.ListForUser(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		s.logger.Error("failed to mark notification read", "error", err, "notification_id", id, "user_id", userID)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		s.logger.Error("failed to delete notification", "error", err, "notification_id", id, "user_id", userID)
		return err
	}
	return nil
}

func (s *Service) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
