package catalog

import (
	"context"
	"time"
)

// Book is a catalog entry with an explicit available-copies counter. The
// counter is maintained transactionally by the lending repository; it is
// never recomputed by counting borrowings.
type Book struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	Author          string    `json:"author"`
	TotalCopies     int       `json:"total_copies" gorm:"column:total_copies;not null"`
	AvailableCopies int       `json:"available_copies" gorm:"column:available_copies;not null"`
	IsActive        bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// FullyAvailable reports whether every copy is on the shelf.
func (b *Book) FullyAvailable() bool {
	return b.AvailableCopies >= b.TotalCopies
}

// Repository is the catalog store boundary. Update adjusts total_copies and
// the available counter in one guarded statement so a lending decrement
// landing mid-edit is never overwritten.
type Repository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	Update(ctx context.Context, id int64, title, author string, totalCopies int) (*Book, error)
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, limit, offset int) ([]*Book, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Book, error)
	CountActive(ctx context.Context) (int64, error)
}
