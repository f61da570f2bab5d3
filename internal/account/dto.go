package account

import (
	"regexp"

	"github.com/fathurrohman/library-management/internal"
)

// RegisterDTO is the self-service registration payload. Only students and
// librarians may register themselves; admin accounts are provisioned by the
// seeder. The password confirmation is checked here and never stored.
type RegisterDTO struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Role            string `json:"role"`
}

// basic local@domain shape, nothing stricter
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

func (d RegisterDTO) Validate() error {
	if d.Username == "" || d.Password == "" || d.Email == "" || d.FullName == "" {
		return internal.NewValidationError("all fields are required", internal.ErrCodeValidationFailed)
	}
	if d.Password != d.ConfirmPassword {
		return internal.NewValidationError("passwords do not match", internal.ErrCodePasswordMismatch)
	}
	if !emailPattern.MatchString(d.Email) {
		return internal.NewValidationError("invalid email address", internal.ErrCodeInvalidEmail)
	}
	if d.Role != RoleStudent && d.Role != RoleLibrarian {
		return internal.NewValidationError("role must be STUDENT or LIBRARIAN", internal.ErrCodeInvalidRole)
	}
	return nil
}

// SetActiveDTO flips the activation flag on a target account.
type SetActiveDTO struct {
	Active bool `json:"active"`
}
