package lending

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fathurrohman/library-management/internal"
)

// Service runs the lending lifecycle: issue, return with lazy fine
// computation, active-loan reporting and soft book requests. Loan period and
// fine rate come from configuration, never from call sites.
type Service struct {
	repo   Repository
	cfg    internal.LibraryConfig
	logger *slog.Logger
}

func NewService(repo Repository, cfg internal.LibraryConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// IssueBook lends one copy of a book to an approved student. The repository
// rejects inactive students, exhausted inventory and double borrows inside
// the same transaction that decrements the counter.
func (s *Service) IssueBook(ctx context.Context, librarianID, studentID, bookID int64) (*Borrowing, error) {
	now := time.Now()
	borrowing := &Borrowing{
		Reference:  uuid.NewString(),
		UserID:     studentID,
		BookID:     bookID,
		Status:     StatusBorrowed,
		BorrowedAt: now,
		DueAt:      now.Add(s.cfg.LoanPeriod()),
	}

	if err := s.repo.Issue(ctx, borrowing); err != nil {
		s.logger.Error("failed to issue book",
			"error", err,
			"librarian_id", librarianID,
			"student_id", studentID,
			"book_id", bookID)
		return nil, err
	}

	s.logger.Info("book issued",
		"borrowing_id", borrowing.ID,
		"reference", borrowing.Reference,
		"librarian_id", librarianID,
		"student_id", studentID,
		"book_id", bookID,
		"due_at", borrowing.DueAt)

	return borrowing, nil
}

// ReturnBook closes a loan, restores the inventory counter and computes the
// overdue fine from the gap between due date and now. The fine notification
// is inserted in the same transaction that flips the status.
func (s *Service) ReturnBook(ctx context.Context, borrowingID int64) (*Borrowing, error) {
	borrowing, err := s.repo.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	if borrowing.IsReturned() {
		return nil, internal.ErrLoanNotFound
	}

	returnedAt := time.Now()
	fine := ComputeFine(borrowing.DueAt, returnedAt, s.cfg.FinePerDayIDR)

	var fineMessage string
	if fine > 0 {
		fineMessage = fmt.Sprintf("Overdue fine of Rp%d for borrowing %s (%d day(s) late)",
			fine, borrowing.Reference, OverdueDays(borrowing.DueAt, returnedAt))
	}

	returned, err := s.repo.CompleteReturn(ctx, borrowingID, returnedAt, fine, fineMessage)
	if err != nil {
		s.logger.Error("failed to return book", "error", err, "borrowing_id", borrowingID)
		return nil, err
	}

	s.logger.Info("book returned",
		"borrowing_id", returned.ID,
		"student_id", returned.UserID,
		"book_id", returned.BookID,
		"fine_amount_idr", returned.FineAmountIDR)

	return returned, nil
}

// ListActiveLoans returns BORROWED records, optionally scoped to one user.
func (s *Service) ListActiveLoans(ctx context.Context, userID *int64) ([]*Borrowing, error) {
	return s.repo.ListActive(ctx, userID)
}

func (s *Service) CountActiveLoans(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}

// ListFines returns closed loans that carried a fine, for the admin panel.
func (s *Service) ListFines(ctx context.Context, limit, offset int) ([]*Borrowing, error) {
	return s.repo.ListFines(ctx, limit, offset)
}

// RequestBook records a student's interest in a book whose copies are out.
// Advisory only: librarians act on it manually.
func (s *Service) RequestBook(ctx context.Context, studentID, bookID int64) (*BookRequest, error) {
	req := &BookRequest{
		UserID: studentID,
		BookID: bookID,
	}

	notifyMessage := fmt.Sprintf("Book request from user %d for book %d", studentID, bookID)
	if err := s.repo.CreateRequest(ctx, req, notifyMessage); err != nil {
		s.logger.Error("failed to record book request",
			"error", err,
			"student_id", studentID,
			"book_id", bookID)
		return nil, err
	}

	s.logger.Info("book request recorded",
		"request_id", req.ID,
		"student_id", studentID,
		"book_id", bookID)

	return req, nil
}
