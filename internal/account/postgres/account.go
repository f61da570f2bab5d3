package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/account"
	"github.com/fathurrohman/library-management/internal/notification"
	"github.com/fathurrohman/library-management/internal/storage"
)

// AccountRepository implements account.Repository using GORM.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) account.Repository {
	return &AccountRepository{db: db}
}

// Register inserts the new inactive user and one approval notification per
// admin in a single transaction. The unique indexes on username and email are
// the backstop for registrations racing past the explicit check.
func (r *AccountRepository) Register(ctx context.Context, user *account.User, notifyMessage string) error {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&account.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.ErrDuplicateUser
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		var adminIDs []int64
		if err := tx.Model(&account.User{}).
			Where("role = ?", account.RoleAdmin).
			Pluck("id", &adminIDs).Error; err != nil {
			return err
		}

		for _, adminID := range adminIDs {
			n := &notification.Notification{
				UserID:  adminID,
				Message: notifyMessage,
				Type:    notification.TypeApproval,
			}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}

		return nil
	})

	return storage.MapError(err)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.User, error) {
	var user account.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, storage.MapError(err)
	}
	return &user, nil
}

// SetActive is idempotent: writing the current value is not an error.
func (r *AccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	err := r.db.WithContext(ctx).Model(&account.User{}).
		Where("id = ?", id).
		Update("is_active", active).Error
	return storage.MapError(err)
}

func (r *AccountRepository) ListPending(ctx context.Context) ([]*account.User, error) {
	var users []*account.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", false).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, storage.MapError(err)
	}
	return users, nil
}

func (r *AccountRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&account.User{}).
		Where("is_active = ?", false).
		Count(&count).Error
	return count, storage.MapError(err)
}

func (r *AccountRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&account.User{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, storage.MapError(err)
}
