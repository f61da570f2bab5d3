package lending

import (
	"github.com/fathurrohman/library-management/internal"
)

type IssueBookDTO struct {
	StudentID int64 `json:"student_id"`
	BookID    int64 `json:"book_id"`
}

func (d IssueBookDTO) Validate() error {
	if d.StudentID <= 0 {
		return internal.NewValidationError("student_id is required", internal.ErrCodeValidationFailed)
	}
	if d.BookID <= 0 {
		return internal.NewValidationError("book_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RequestBookDTO struct {
	BookID int64 `json:"book_id"`
}

func (d RequestBookDTO) Validate() error {
	if d.BookID <= 0 {
		return internal.NewValidationError("book_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
