package catalog

import (
	"github.com/fathurrohman/library-management/internal"
)

// CreateBookDTO is the librarian-facing payload for adding a title.
type CreateBookDTO struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	TotalCopies int    `json:"total_copies"`
}

func (d CreateBookDTO) Validate() error {
	if d.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	if d.TotalCopies <= 0 {
		return internal.NewValidationError("total_copies must be positive", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateBookDTO changes metadata and the copy count. Shrinking total copies
// below the number currently out on loan is rejected by the service.
type UpdateBookDTO struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	TotalCopies int    `json:"total_copies"`
}

func (d UpdateBookDTO) Validate() error {
	if d.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	if d.TotalCopies <= 0 {
		return internal.NewValidationError("total_copies must be positive", internal.ErrCodeValidationFailed)
	}
	return nil
}
