package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "book_requests", "book_borrowings", "books", "users"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser(db, "admin", "admin@library.local", "System Administrator", "ADMIN", string(hash))
		seedUser(db, "librarian", "librarian@library.local", "Head Librarian", "LIBRARIAN", string(hash))

		books := []struct {
			Title  string
			Author string
			Copies int
		}{
			{"Laskar Pelangi", "Andrea Hirata", 3},
			{"Bumi Manusia", "Pramoedya Ananta Toer", 2},
			{"Negeri 5 Menara", "Ahmad Fuadi", 4},
		}

		for _, b := range books {
			var exists int
			if err := db.Raw("SELECT 1 FROM books WHERE title = ? AND author = ?", b.Title, b.Author).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO books (title, author, total_copies, available_copies, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				b.Title, b.Author, b.Copies, b.Copies,
			).Error; err != nil {
				log.Fatalf("failed to insert book %s: %v", b.Title, err)
			}
			fmt.Println("Seeded book:", b.Title)
		}
	},
}

func seedUser(db *gorm.DB, username, email, fullName, role, hash string) {
	var exists int
	if err := db.Raw("SELECT 1 FROM users WHERE username = ?", username).Row().Scan(&exists); err == nil {
		fmt.Printf("%s user already exists\n", username)
		return
	}

	if err := db.Exec(
		"INSERT INTO users (username, email, full_name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
		username, email, fullName, hash, role,
	).Error; err != nil {
		log.Fatalf("failed to insert %s user: %v", username, err)
	}
	fmt.Printf("Seeded %s user: %s\n", role, username)
}
