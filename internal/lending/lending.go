package lending

import (
	"context"
	"time"
)

const (
	StatusBorrowed = "BORROWED"
	StatusReturned = "RETURNED"
)

// Borrowing tracks one copy of one book out to one user. It is created
// BORROWED and moves to RETURNED exactly once; rows are never deleted.
type Borrowing struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	Reference     string     `json:"reference" gorm:"not null"`
	UserID        int64      `json:"user_id" gorm:"column:user_id;not null"`
	BookID        int64      `json:"book_id" gorm:"column:book_id;not null"`
	Status        string     `json:"status" gorm:"not null"`
	BorrowedAt    time.Time  `json:"borrowed_at" gorm:"column:borrowed_at;not null"`
	DueAt         time.Time  `json:"due_at" gorm:"column:due_at;not null"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty" gorm:"column:returned_at"`
	FineAmountIDR int64      `json:"fine_amount_idr" gorm:"column:fine_amount_idr"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Borrowing) TableName() string {
	return "book_borrowings"
}

func (b *Borrowing) IsReturned() bool {
	return b.Status == StatusReturned
}

func (b *Borrowing) Overdue(at time.Time) bool {
	return at.After(b.DueAt)
}

// BookRequest is a soft interest marker: a student asking to be considered
// for a book whose copies are all out. It never touches inventory.
type BookRequest struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null"`
	BookID    int64     `json:"book_id" gorm:"column:book_id;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (BookRequest) TableName() string {
	return "book_requests"
}

// OverdueDays counts whole days late, rounding a partial day up: an hour past
// due owes one full day. Never negative.
func OverdueDays(dueAt, returnedAt time.Time) int64 {
	late := returnedAt.Sub(dueAt)
	if late <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	days := int64(late / day)
	if late%day > 0 {
		days++
	}
	return days
}

// ComputeFine is integer arithmetic end to end; no floats touch money.
func ComputeFine(dueAt, returnedAt time.Time, finePerDay int64) int64 {
	return OverdueDays(dueAt, returnedAt) * finePerDay
}

// Repository is the transactional boundary for the lending lifecycle. Issue
// performs the availability and ownership checks and the inventory decrement
// in one store transaction; CompleteReturn does the same for the way back.
type Repository interface {
	Issue(ctx context.Context, b *Borrowing) error
	GetByID(ctx context.Context, id int64) (*Borrowing, error)
	CompleteReturn(ctx context.Context, id int64, returnedAt time.Time, fineAmount int64, fineMessage string) (*Borrowing, error)
	ListActive(ctx context.Context, userID *int64) ([]*Borrowing, error)
	CountActive(ctx context.Context) (int64, error)
	ListFines(ctx context.Context, limit, offset int) ([]*Borrowing, error)
	CreateRequest(ctx context.Context, req *BookRequest, notifyMessage string) error
}
