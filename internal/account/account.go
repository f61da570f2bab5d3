package account

import (
	"context"
	"time"
)

// Role values are stored uppercase, matching the users.role column.
const (
	RoleAdmin     = "ADMIN"
	RoleLibrarian = "LIBRARIAN"
	RoleStudent   = "STUDENT"
)

// User is the account entity. A freshly registered user is always inactive
// until an admin activates it; the role never changes after creation.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"column:full_name;not null"`
	Role         string    `json:"role" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsLibrarian() bool {
	return u.Role == RoleLibrarian
}

// Repository is the data access boundary for accounts. Register must perform
// its duplicate check, the insert and the admin notifications in a single
// store transaction so concurrent registrations cannot race past the check.
type Repository interface {
	Register(ctx context.Context, user *User, notifyMessage string) error
	GetByID(ctx context.Context, id int64) (*User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	ListPending(ctx context.Context) ([]*User, error)
	CountPending(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}
