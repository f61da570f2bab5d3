package catalog

import (
	"context"
	"log/slog"
)

// Service manages the book catalog. Lending owns the available-copies
// transitions; this service only adjusts copies when a librarian edits the
// inventory itself.
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

func (s *Service) AddBook(ctx context.Context, dto CreateBookDTO) (*Book, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("book validation failed", "error", err, "title", dto.Title)
		return nil, err
	}

	book := &Book{
		Title:           dto.Title,
		Author:          dto.Author,
		TotalCopies:     dto.TotalCopies,
		AvailableCopies: dto.TotalCopies,
		IsActive:        true,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		s.logger.Error("failed to create book", "error", err, "title", dto.Title)
		return nil, err
	}

	s.logger.Info("book added to catalog",
		"book_id", book.ID,
		"title", book.Title,
		"copies", book.TotalCopies)

	return book, nil
}

// UpdateBook edits metadata and adjusts the copy counts. The repository keeps
// available_copies consistent with the copies out on loan inside its own
// transaction; the lending counter transitions are never read here.
func (s *Service) UpdateBook(ctx context.Context, id int64, dto UpdateBookDTO) (*Book, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.Update(ctx, id, dto.Title, dto.Author, dto.TotalCopies)
	if err != nil {
		s.logger.Error("failed to update book", "error", err, "book_id", id)
		return nil, err
	}

	return book, nil
}

// Deactivate soft-disables a title; existing loans still return normally.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		s.logger.Error("failed to deactivate book", "error", err, "book_id", id)
		return err
	}
	s.logger.Info("book deactivated", "book_id", id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, limit, offset int) ([]*Book, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SearchBooks(ctx context.Context, query string, limit, offset int) ([]*Book, error) {
	if query == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, query, limit, offset)
}

func (s *Service) CountActiveBooks(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}
