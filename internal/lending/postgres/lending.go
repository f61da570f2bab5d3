package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/account"
	"github.com/fathurrohman/library-management/internal/catalog"
	"github.com/fathurrohman/library-management/internal/lending"
	"github.com/fathurrohman/library-management/internal/notification"
	"github.com/fathurrohman/library-management/internal/storage"
)

// LendingRepository implements lending.Repository using GORM. The inventory
// counter moves through guarded updates (available_copies > 0) so two
// concurrent issues of the last copy cannot both succeed, whatever isolation
// level the store runs at.
type LendingRepository struct {
	db *gorm.DB
}

func NewLendingRepository(db *gorm.DB) lending.Repository {
	return &LendingRepository{db: db}
}

func (r *LendingRepository) Issue(ctx context.Context, b *lending.Borrowing) error {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student account.User
		if err := tx.Where("id = ?", b.UserID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return err
		}
		if !student.IsActive {
			return internal.ErrNotApproved
		}
		// Loans are for students only, whoever the librarian types in.
		if student.Role != account.RoleStudent {
			return internal.ErrBorrowerNotStudent
		}

		var book catalog.Book
		if err := tx.Where("id = ? AND is_active = ?", b.BookID, true).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrBookNotFound
			}
			return err
		}
		if book.AvailableCopies <= 0 {
			return internal.ErrNoCopiesAvailable
		}

		var existing int64
		if err := tx.Model(&lending.Borrowing{}).
			Where("user_id = ? AND book_id = ? AND status = ?", b.UserID, b.BookID, lending.StatusBorrowed).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return internal.ErrAlreadyBorrowed
		}

		// Guarded decrement: the WHERE clause is the backstop against a
		// concurrent issue racing past the check above.
		res := tx.Model(&catalog.Book{}).
			Where("id = ? AND available_copies > 0", b.BookID).
			Updates(map[string]interface{}{
				"available_copies": gorm.Expr("available_copies - 1"),
				"updated_at":       time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrNoCopiesAvailable
		}

		return tx.Create(b).Error
	})

	return storage.MapError(err)
}

func (r *LendingRepository) GetByID(ctx context.Context, id int64) (*lending.Borrowing, error) {
	var b lending.Borrowing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLoanNotFound
		}
		return nil, storage.MapError(err)
	}
	return &b, nil
}

// CompleteReturn flips the loan to RETURNED, restores the inventory counter
// and inserts the fine notification, all in one transaction. The status
// predicate on the update makes a second return of the same loan fail with
// ErrLoanNotFound instead of double-incrementing the counter.
func (r *LendingRepository) CompleteReturn(ctx context.Context, id int64, returnedAt time.Time, fineAmount int64, fineMessage string) (*lending.Borrowing, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var returned lending.Borrowing

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&lending.Borrowing{}).
			Where("id = ? AND status = ?", id, lending.StatusBorrowed).
			Updates(map[string]interface{}{
				"status":          lending.StatusReturned,
				"returned_at":     returnedAt,
				"fine_amount_idr": fineAmount,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrLoanNotFound
		}

		if err := tx.Where("id = ?", id).First(&returned).Error; err != nil {
			return err
		}

		if err := tx.Model(&catalog.Book{}).
			Where("id = ?", returned.BookID).
			Updates(map[string]interface{}{
				"available_copies": gorm.Expr("available_copies + 1"),
				"updated_at":       time.Now(),
			}).Error; err != nil {
			return err
		}

		if fineAmount > 0 {
			n := &notification.Notification{
				UserID:  returned.UserID,
				Message: fineMessage,
				Type:    notification.TypeOverdue,
			}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, storage.MapError(err)
	}
	return &returned, nil
}

func (r *LendingRepository) ListActive(ctx context.Context, userID *int64) ([]*lending.Borrowing, error) {
	var loans []*lending.Borrowing
	q := r.db.WithContext(ctx).Where("status = ?", lending.StatusBorrowed)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.Order("due_at ASC").Find(&loans).Error
	if err != nil {
		return nil, storage.MapError(err)
	}
	return loans, nil
}

func (r *LendingRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&lending.Borrowing{}).
		Where("status = ?", lending.StatusBorrowed).
		Count(&count).Error
	return count, storage.MapError(err)
}

func (r *LendingRepository) ListFines(ctx context.Context, limit, offset int) ([]*lending.Borrowing, error) {
	var loans []*lending.Borrowing
	err := r.db.WithContext(ctx).
		Where("status = ? AND fine_amount_idr > 0", lending.StatusReturned).
		Order("returned_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&loans).Error
	if err != nil {
		return nil, storage.MapError(err)
	}
	return loans, nil
}

// CreateRequest records the interest row and notifies every librarian. A
// request for a fully available book is rejected: the student should just
// borrow it.
func (r *LendingRepository) CreateRequest(ctx context.Context, req *lending.BookRequest, notifyMessage string) error {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book catalog.Book
		if err := tx.Where("id = ? AND is_active = ?", req.BookID, true).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrBookNotFound
			}
			return err
		}
		if book.FullyAvailable() {
			return internal.ErrBookFullyAvailable
		}

		if err := tx.Create(req).Error; err != nil {
			return err
		}

		var librarianIDs []int64
		if err := tx.Model(&account.User{}).
			Where("role = ? AND is_active = ?", account.RoleLibrarian, true).
			Pluck("id", &librarianIDs).Error; err != nil {
			return err
		}

		for _, librarianID := range librarianIDs {
			n := &notification.Notification{
				UserID:  librarianID,
				Message: notifyMessage,
				Type:    notification.TypeGeneral,
			}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}

		return nil
	})

	return storage.MapError(err)
}
