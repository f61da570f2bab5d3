package lending_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/lending"
)

func TestLending(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lending Suite")
}

// Mock repository for testing
type mockLendingRepository struct {
	borrowings   map[int64]*lending.Borrowing
	requests     []*lending.BookRequest
	issueError   error
	returnError  error
	requestError error
	nextID       int64
}

func newMockLendingRepository() *mockLendingRepository {
	return &mockLendingRepository{
		borrowings: make(map[int64]*lending.Borrowing),
		nextID:     1,
	}
}

func (m *mockLendingRepository) Issue(ctx context.Context, b *lending.Borrowing) error {
	if m.issueError != nil {
		return m.issueError
	}
	b.ID = m.nextID
	m.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	copied := *b
	m.borrowings[b.ID] = &copied
	return nil
}

func (m *mockLendingRepository) GetByID(ctx context.Context, id int64) (*lending.Borrowing, error) {
	b, ok := m.borrowings[id]
	if !ok {
		return nil, internal.ErrLoanNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockLendingRepository) CompleteReturn(ctx context.Context, id int64, returnedAt time.Time, fineAmount int64, fineMessage string) (*lending.Borrowing, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	b, ok := m.borrowings[id]
	if !ok || b.Status != lending.StatusBorrowed {
		return nil, internal.ErrLoanNotFound
	}
	b.Status = lending.StatusReturned
	b.ReturnedAt = &returnedAt
	b.FineAmountIDR = fineAmount
	copied := *b
	return &copied, nil
}

func (m *mockLendingRepository) ListActive(ctx context.Context, userID *int64) ([]*lending.Borrowing, error) {
	var out []*lending.Borrowing
	for _, b := range m.borrowings {
		if b.Status != lending.StatusBorrowed {
			continue
		}
		if userID != nil && b.UserID != *userID {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockLendingRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, b := range m.borrowings {
		if b.Status == lending.StatusBorrowed {
			count++
		}
	}
	return count, nil
}

func (m *mockLendingRepository) ListFines(ctx context.Context, limit, offset int) ([]*lending.Borrowing, error) {
	var out []*lending.Borrowing
	for _, b := range m.borrowings {
		if b.Status == lending.StatusReturned && b.FineAmountIDR > 0 {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockLendingRepository) CreateRequest(ctx context.Context, req *lending.BookRequest, notifyMessage string) error {
	if m.requestError != nil {
		return m.requestError
	}
	req.ID = int64(len(m.requests) + 1)
	m.requests = append(m.requests, req)
	return nil
}

var _ = Describe("Overdue fines", func() {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	It("charges nothing for an on-time return", func() {
		Expect(lending.OverdueDays(due, due)).To(BeZero())
		Expect(lending.OverdueDays(due, due.Add(-time.Hour))).To(BeZero())
		Expect(lending.ComputeFine(due, due, 5000)).To(BeZero())
	})

	It("rounds a partial day up to a full day", func() {
		Expect(lending.OverdueDays(due, due.Add(time.Minute))).To(Equal(int64(1)))
		Expect(lending.OverdueDays(due, due.Add(23*time.Hour))).To(Equal(int64(1)))
	})

	It("counts whole days plus the started one", func() {
		Expect(lending.OverdueDays(due, due.Add(24*time.Hour))).To(Equal(int64(1)))
		Expect(lending.OverdueDays(due, due.Add(24*time.Hour+time.Second))).To(Equal(int64(2)))
		Expect(lending.OverdueDays(due, due.Add(71*time.Hour))).To(Equal(int64(3)))
	})

	It("multiplies days by the configured daily rate", func() {
		Expect(lending.ComputeFine(due, due.Add(71*time.Hour), 5000)).To(Equal(int64(15000)))
	})

	It("never decreases as the return gets later", func() {
		prev := int64(0)
		for h := 0; h < 96; h += 7 {
			fine := lending.ComputeFine(due, due.Add(time.Duration(h)*time.Hour), 5000)
			Expect(fine).To(BeNumerically(">=", prev))
			prev = fine
		}
	})
})

var _ = Describe("Lending Service", func() {
	var (
		repo    *mockLendingRepository
		service *lending.Service
		cfg     internal.LibraryConfig
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockLendingRepository()
		cfg = internal.LibraryConfig{LoanPeriodDays: 14, FinePerDayIDR: 5000}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = lending.NewService(repo, cfg, logger)
		ctx = context.Background()
	})

	Describe("IssueBook", func() {
		It("creates a BORROWED loan with the configured due date", func() {
			before := time.Now()
			borrowing, err := service.IssueBook(ctx, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())

			Expect(borrowing.ID).To(BeNumerically(">", 0))
			Expect(borrowing.Reference).NotTo(BeEmpty())
			Expect(borrowing.UserID).To(Equal(int64(2)))
			Expect(borrowing.BookID).To(Equal(int64(3)))
			Expect(borrowing.Status).To(Equal(lending.StatusBorrowed))
			Expect(borrowing.DueAt).To(BeTemporally("~", before.Add(14*24*time.Hour), time.Minute))
		})

		It("propagates repository rejections", func() {
			repo.issueError = internal.ErrNoCopiesAvailable

			_, err := service.IssueBook(ctx, 1, 2, 3)
			Expect(err).To(MatchError(internal.ErrNoCopiesAvailable))
		})
	})

	Describe("ReturnBook", func() {
		It("closes the loan without a fine when returned on time", func() {
			borrowing, err := service.IssueBook(ctx, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())

			returned, err := service.ReturnBook(ctx, borrowing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(returned.Status).To(Equal(lending.StatusReturned))
			Expect(returned.FineAmountIDR).To(BeZero())
			Expect(returned.ReturnedAt).NotTo(BeNil())
		})

		It("charges the fine for an overdue return", func() {
			borrowing, err := service.IssueBook(ctx, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())

			// Pull the due date back so the loan is between 2 and 3 days late.
			stored := repo.borrowings[borrowing.ID]
			stored.DueAt = time.Now().Add(-71 * time.Hour)

			returned, err := service.ReturnBook(ctx, borrowing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(returned.FineAmountIDR).To(Equal(int64(15000)))
		})

		It("fails for an unknown borrowing", func() {
			_, err := service.ReturnBook(ctx, 999)
			Expect(err).To(MatchError(internal.ErrLoanNotFound))
		})

		It("fails for an already returned borrowing", func() {
			borrowing, err := service.IssueBook(ctx, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReturnBook(ctx, borrowing.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReturnBook(ctx, borrowing.ID)
			Expect(err).To(MatchError(internal.ErrLoanNotFound))
		})
	})

	Describe("ListActiveLoans", func() {
		It("scopes to one user when asked", func() {
			_, err := service.IssueBook(ctx, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.IssueBook(ctx, 1, 5, 4)
			Expect(err).NotTo(HaveOccurred())

			userID := int64(2)
			loans, err := service.ListActiveLoans(ctx, &userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loans).To(HaveLen(1))
			Expect(loans[0].UserID).To(Equal(userID))

			all, err := service.ListActiveLoans(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})

	Describe("RequestBook", func() {
		It("records the request", func() {
			req, err := service.RequestBook(ctx, 2, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.ID).To(BeNumerically(">", 0))
			Expect(req.UserID).To(Equal(int64(2)))
			Expect(req.BookID).To(Equal(int64(3)))
		})

		It("propagates a fully-available rejection", func() {
			repo.requestError = internal.ErrBookFullyAvailable

			_, err := service.RequestBook(ctx, 2, 3)
			Expect(err).To(MatchError(internal.ErrBookFullyAvailable))
		})
	})
})
