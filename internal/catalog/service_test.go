package catalog_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/catalog"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

// Mock repository for testing
type mockCatalogRepository struct {
	books  map[int64]*catalog.Book
	nextID int64
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		books:  make(map[int64]*catalog.Book),
		nextID: 1,
	}
}

func (m *mockCatalogRepository) Create(ctx context.Context, book *catalog.Book) error {
	book.ID = m.nextID
	m.nextID++
	copied := *book
	m.books[book.ID] = &copied
	return nil
}

func (m *mockCatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, internal.ErrBookNotFound
	}
	copied := *book
	return &copied, nil
}

func (m *mockCatalogRepository) Update(ctx context.Context, id int64, title, author string, totalCopies int) (*catalog.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, internal.ErrBookNotFound
	}
	onLoan := book.TotalCopies - book.AvailableCopies
	if totalCopies < onLoan {
		return nil, internal.ErrCopiesBelowOnLoan
	}
	book.Title = title
	book.Author = author
	book.TotalCopies = totalCopies
	book.AvailableCopies = totalCopies - onLoan
	copied := *book
	return &copied, nil
}

func (m *mockCatalogRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if book, ok := m.books[id]; ok {
		book.IsActive = active
	}
	return nil
}

func (m *mockCatalogRepository) List(ctx context.Context, limit, offset int) ([]*catalog.Book, error) {
	var out []*catalog.Book
	for _, b := range m.books {
		if b.IsActive {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockCatalogRepository) Search(ctx context.Context, query string, limit, offset int) ([]*catalog.Book, error) {
	return m.List(ctx, limit, offset)
}

func (m *mockCatalogRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, b := range m.books {
		if b.IsActive {
			count++
		}
	}
	return count, nil
}

var _ = Describe("Catalog Service", func() {
	var (
		repo    *mockCatalogRepository
		service *catalog.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockCatalogRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(repo, logger)
		ctx = context.Background()
	})

	Describe("AddBook", func() {
		It("starts with every copy available", func() {
			book, err := service.AddBook(ctx, catalog.CreateBookDTO{
				Title:       "Laskar Pelangi",
				Author:      "Andrea Hirata",
				TotalCopies: 3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(book.AvailableCopies).To(Equal(3))
			Expect(book.IsActive).To(BeTrue())
			Expect(book.FullyAvailable()).To(BeTrue())
		})

		It("rejects zero copies", func() {
			_, err := service.AddBook(ctx, catalog.CreateBookDTO{
				Title:       "Empty",
				TotalCopies: 0,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateBook", func() {
		var book *catalog.Book

		BeforeEach(func() {
			var err error
			book, err = service.AddBook(ctx, catalog.CreateBookDTO{
				Title:       "Bumi Manusia",
				Author:      "Pramoedya Ananta Toer",
				TotalCopies: 4,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the on-loan count when copies change", func() {
			// Two copies out on loan.
			repo.books[book.ID].AvailableCopies = 2

			updated, err := service.UpdateBook(ctx, book.ID, catalog.UpdateBookDTO{
				Title:       "Bumi Manusia",
				Author:      "Pramoedya Ananta Toer",
				TotalCopies: 6,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.TotalCopies).To(Equal(6))
			Expect(updated.AvailableCopies).To(Equal(4))
		})

		It("refuses to shrink below the copies on loan", func() {
			repo.books[book.ID].AvailableCopies = 1 // three on loan

			_, err := service.UpdateBook(ctx, book.ID, catalog.UpdateBookDTO{
				Title:       "Bumi Manusia",
				Author:      "Pramoedya Ananta Toer",
				TotalCopies: 2,
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("fails for an unknown book", func() {
			_, err := service.UpdateBook(ctx, 999, catalog.UpdateBookDTO{
				Title:       "X",
				TotalCopies: 1,
			})
			Expect(err).To(MatchError(internal.ErrBookNotFound))
		})
	})

	Describe("Deactivate", func() {
		It("soft-disables the title", func() {
			book, err := service.AddBook(ctx, catalog.CreateBookDTO{
				Title:       "Negeri 5 Menara",
				TotalCopies: 2,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Deactivate(ctx, book.ID)).To(Succeed())
			Expect(repo.books[book.ID].IsActive).To(BeFalse())
		})
	})
})
