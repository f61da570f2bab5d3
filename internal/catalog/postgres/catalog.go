package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/catalog"
	"github.com/fathurrohman/library-management/internal/storage"
)

// CatalogRepository implements catalog.Repository using GORM.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.Repository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Create(ctx context.Context, book *catalog.Book) error {
	return storage.MapError(r.db.WithContext(ctx).Create(book).Error)
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Book, error) {
	var book catalog.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookNotFound
		}
		return nil, storage.MapError(err)
	}
	return &book, nil
}

// Update edits metadata and moves the copy counters in a single guarded
// statement. The counter expression reads the stored row, so a lending
// decrement or increment that lands while a librarian edits the book is
// carried into the result instead of being overwritten. The guard refuses to
// shrink total_copies below the number of copies currently out on loan.
func (r *CatalogRepository) Update(ctx context.Context, id int64, title, author string, totalCopies int) (*catalog.Book, error) {
	var updated catalog.Book

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book catalog.Book
		if err := tx.Where("id = ?", id).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrBookNotFound
			}
			return err
		}

		res := tx.Model(&catalog.Book{}).
			Where("id = ? AND available_copies + ? - total_copies >= 0", id, totalCopies).
			Updates(map[string]interface{}{
				"title":            title,
				"author":           author,
				"total_copies":     totalCopies,
				"available_copies": gorm.Expr("available_copies + ? - total_copies", totalCopies),
				"updated_at":       time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrCopiesBelowOnLoan
		}

		return tx.Where("id = ?", id).First(&updated).Error
	})

	if err != nil {
		return nil, storage.MapError(err)
	}
	return &updated, nil
}

func (r *CatalogRepository) SetActive(ctx context.Context, id int64, active bool) error {
	err := r.db.WithContext(ctx).Model(&catalog.Book{}).
		Where("id = ?", id).
		Update("is_active", active).Error
	return storage.MapError(err)
}

func (r *CatalogRepository) List(ctx context.Context, limit, offset int) ([]*catalog.Book, error) {
	var books []*catalog.Book
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("title ASC").
		Limit(limit).
		Offset(offset).
		Find(&books).Error
	if err != nil {
		return nil, storage.MapError(err)
	}
	return books, nil
}

func (r *CatalogRepository) Search(ctx context.Context, query string, limit, offset int) ([]*catalog.Book, error) {
	var books []*catalog.Book
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (title LIKE ? OR author LIKE ?)", true, pattern, pattern).
		Order("title ASC").
		Limit(limit).
		Offset(offset).
		Find(&books).Error
	if err != nil {
		return nil, storage.MapError(err)
	}
	return books, nil
}

func (r *CatalogRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Book{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, storage.MapError(err)
}
