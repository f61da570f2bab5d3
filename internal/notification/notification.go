package notification

import (
	"context"
	"time"
)

const (
	TypeApproval = "APPROVAL"
	TypeOverdue  = "OVERDUE"
	TypeGeneral  = "GENERAL"
)

// Notification is a one-way message from the workflow engine to a user.
// The engine only ever inserts; reading and clearing is left to whatever
// presentation sits in front of the API.
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null"`
	Message   string    `json:"message" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null"`
	IsRead    bool      `json:"is_read" gorm:"column:is_read;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type Repository interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}
