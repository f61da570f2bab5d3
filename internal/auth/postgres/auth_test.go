package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fathurrohman/library-management/internal"
	"github.com/fathurrohman/library-management/internal/account"
	authPostgres "github.com/fathurrohman/library-management/internal/auth/postgres"
)

func TestAuthPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Postgres Suite")
}

var _ = Describe("Auth Repository", func() {
	var (
		db   *gorm.DB
		repo *authPostgres.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&account.User{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&account.User{
			Username:     "budi",
			PasswordHash: "hashed-password",
			Email:        "budi@mail.com",
			FullName:     "Budi Santoso",
			Role:         account.RoleStudent,
			IsActive:     true,
		}).Error).NotTo(HaveOccurred())

		Expect(db.Create(&account.User{
			Username:     "siti",
			PasswordHash: "hashed-password",
			Email:        "siti@mail.com",
			FullName:     "Siti Rahma",
			Role:         account.RoleStudent,
			IsActive:     false,
		}).Error).NotTo(HaveOccurred())

		repo = authPostgres.NewRepository(db)
		ctx = context.Background()
	})

	Describe("GetCredential", func() {
		It("returns the hash for an active user with the matching role", func() {
			userID, hash, err := repo.GetCredential(ctx, "budi", account.RoleStudent)
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).To(BeNumerically(">", 0))
			Expect(hash).To(Equal("hashed-password"))
		})

		It("misses on a role mismatch", func() {
			_, _, err := repo.GetCredential(ctx, "budi", account.RoleLibrarian)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("misses on an inactive account", func() {
			_, _, err := repo.GetCredential(ctx, "siti", account.RoleStudent)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("misses on an unknown username", func() {
			_, _, err := repo.GetCredential(ctx, "nobody", account.RoleStudent)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("GetUserByID", func() {
		It("loads the identity of an active user", func() {
			userID, _, err := repo.GetCredential(ctx, "budi", account.RoleStudent)
			Expect(err).NotTo(HaveOccurred())

			user, err := repo.GetUserByID(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Username).To(Equal("budi"))
			Expect(user.Role).To(Equal(account.RoleStudent))
		})

		It("misses once the account is deactivated", func() {
			userID, _, err := repo.GetCredential(ctx, "budi", account.RoleStudent)
			Expect(err).NotTo(HaveOccurred())

			Expect(db.Model(&account.User{}).Where("id = ?", userID).Update("is_active", false).Error).NotTo(HaveOccurred())

			_, err = repo.GetUserByID(ctx, userID)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})
})
