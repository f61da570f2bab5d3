package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fathurrohman/library-management/internal"
)

// Service governs the account lifecycle: registration, activation and the
// dashboard aggregates. Authentication lives in the auth package.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a new inactive account and notifies every admin that an
// approval is waiting. The duplicate check and the inserts run in one store
// transaction inside the repository.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	// Login accepts any casing, so registration must as well.
	dto.Role = strings.ToUpper(dto.Role)
	if err := dto.Validate(); err != nil {
		s.logger.Warn("registration validation failed", "error", err, "username", dto.Username)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewStoreError("failed to hash password", err)
	}

	user := &User{
		Username:     dto.Username,
		PasswordHash: string(hash),
		Email:        dto.Email,
		FullName:     dto.FullName,
		Role:         dto.Role,
		IsActive:     false,
	}

	notifyMessage := fmt.Sprintf("New %s account registration: %s", dto.Role, dto.Username)
	if err := s.repo.Register(ctx, user, notifyMessage); err != nil {
		s.logger.Error("registration failed", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("account registered, awaiting approval",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role)

	return user, nil
}

// SetActive flips the activation flag on the target account. The caller's
// admin role is re-verified here; the claim in the request is never trusted.
// Setting the same value twice is a no-op.
func (s *Service) SetActive(ctx context.Context, adminID, targetUserID int64, active bool) error {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin() {
		s.logger.Warn("set active denied: caller is not an admin",
			"caller_id", adminID,
			"target_user_id", targetUserID)
		return internal.ErrAdminRequired
	}

	if _, err := s.repo.GetByID(ctx, targetUserID); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, targetUserID, active); err != nil {
		s.logger.Error("failed to set account active flag", "error", err, "target_user_id", targetUserID)
		return err
	}

	s.logger.Info("account activation changed",
		"admin_id", adminID,
		"target_user_id", targetUserID,
		"active", active)

	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPending returns the accounts awaiting admin approval.
func (s *Service) ListPending(ctx context.Context) ([]*User, error) {
	return s.repo.ListPending(ctx)
}

func (s *Service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}

func (s *Service) CountActiveUsers(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}
