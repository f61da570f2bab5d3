package account_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/account"
)

func TestAccount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Account Suite")
}

// Mock repository for testing
type mockAccountRepository struct {
	users          map[int64]*account.User
	byUsername     map[string]*account.User
	notifyMessages []string
	registerError  error
	setActiveError error
	nextID         int64
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		users:      make(map[int64]*account.User),
		byUsername: make(map[string]*account.User),
		nextID:     1,
	}
}

func (m *mockAccountRepository) Register(ctx context.Context, user *account.User, notifyMessage string) error {
	if m.registerError != nil {
		return m.registerError
	}
	if _, exists := m.byUsername[user.Username]; exists {
		return internal.ErrDuplicateUser
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	m.byUsername[user.Username] = user
	m.notifyMessages = append(m.notifyMessages, notifyMessage)
	return nil
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id int64) (*account.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if m.setActiveError != nil {
		return m.setActiveError
	}
	if user, ok := m.users[id]; ok {
		user.IsActive = active
	}
	return nil
}

func (m *mockAccountRepository) ListPending(ctx context.Context) ([]*account.User, error) {
	var out []*account.User
	for _, u := range m.users {
		if !u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockAccountRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	for _, u := range m.users {
		if !u.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *mockAccountRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *mockAccountRepository) addUser(user *account.User) *account.User {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	m.byUsername[user.Username] = user
	return user
}

var _ = Describe("Account Service", func() {
	var (
		repo    *mockAccountRepository
		service *account.Service
		ctx     context.Context
	)

	validDTO := func() account.RegisterDTO {
		return account.RegisterDTO{
			Username:        "budi",
			Password:        "secret123",
			ConfirmPassword: "secret123",
			Email:           "budi@mail.com",
			FullName:        "Budi Santoso",
			Role:            account.RoleStudent,
		}
	}

	BeforeEach(func() {
		repo = newMockAccountRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = account.NewService(repo, bcrypt.MinCost, logger)
		ctx = context.Background()
	})

	Describe("Register", func() {
		It("creates an inactive account with a hashed password", func() {
			user, err := service.Register(ctx, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(user.ID).To(BeNumerically(">", 0))
			Expect(user.IsActive).To(BeFalse())
			Expect(user.PasswordHash).NotTo(Equal("secret123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123"))).To(Succeed())
		})

		It("accepts a lowercase role and stores it uppercased", func() {
			dto := validDTO()
			dto.Role = "student"

			user, err := service.Register(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(account.RoleStudent))
		})

		It("sends the approval message naming role and username", func() {
			_, err := service.Register(ctx, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.notifyMessages).To(HaveLen(1))
			Expect(repo.notifyMessages[0]).To(ContainSubstring("STUDENT"))
			Expect(repo.notifyMessages[0]).To(ContainSubstring("budi"))
		})

		It("rejects mismatched passwords", func() {
			dto := validDTO()
			dto.ConfirmPassword = "different"

			_, err := service.Register(ctx, dto)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePasswordMismatch))
		})

		It("rejects an admin role", func() {
			dto := validDTO()
			dto.Role = account.RoleAdmin

			_, err := service.Register(ctx, dto)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRole))
		})

		It("rejects a malformed email", func() {
			dto := validDTO()
			dto.Email = "not-an-email"

			_, err := service.Register(ctx, dto)
			Expect(err).To(HaveOccurred())
		})

		It("surfaces a duplicate username", func() {
			_, err := service.Register(ctx, validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Register(ctx, validDTO())
			Expect(err).To(MatchError(internal.ErrDuplicateUser))
		})
	})

	Describe("SetActive", func() {
		var admin, student *account.User

		BeforeEach(func() {
			admin = repo.addUser(&account.User{Username: "admin", Role: account.RoleAdmin, IsActive: true})
			student = repo.addUser(&account.User{Username: "siti", Role: account.RoleStudent, IsActive: false})
		})

		It("activates the target account", func() {
			err := service.SetActive(ctx, admin.ID, student.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.users[student.ID].IsActive).To(BeTrue())
		})

		It("deactivates an active account", func() {
			repo.users[student.ID].IsActive = true

			err := service.SetActive(ctx, admin.ID, student.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.users[student.ID].IsActive).To(BeFalse())
		})

		It("is idempotent", func() {
			Expect(service.SetActive(ctx, admin.ID, student.ID, true)).To(Succeed())
			Expect(service.SetActive(ctx, admin.ID, student.ID, true)).To(Succeed())
			Expect(repo.users[student.ID].IsActive).To(BeTrue())
		})

		It("denies a non-admin caller", func() {
			librarian := repo.addUser(&account.User{Username: "lib", Role: account.RoleLibrarian, IsActive: true})

			err := service.SetActive(ctx, librarian.ID, student.ID, true)
			Expect(err).To(MatchError(internal.ErrAdminRequired))
			Expect(repo.users[student.ID].IsActive).To(BeFalse())
		})

		It("fails when the target does not exist", func() {
			err := service.SetActive(ctx, admin.ID, 999, true)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})
})
