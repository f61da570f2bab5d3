package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/auth"
	"github.com/fathurrohman/library-management/internal/storage"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetCredential returns the password hash for an active user with the given
// username and role. A missing row covers unknown user, wrong role and
// inactive account alike.
func (r *Repository) GetCredential(ctx context.Context, username, role string) (int64, string, error) {
	var userID int64
	var passwordHash string
	query := `SELECT id, password_hash FROM users WHERE username = ? AND role = ? AND is_active = true`

	row := r.db.WithContext(ctx).Raw(query, username, role).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", internal.ErrUserNotFound
		}
		return 0, "", storage.MapError(err)
	}
	return userID, passwordHash, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, username, full_name, role FROM users WHERE id = ? AND is_active = true`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, storage.MapError(err)
	}
	return &user, nil
}
