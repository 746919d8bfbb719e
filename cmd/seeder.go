package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"expenses", "advances", "collections", "transport_payments", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		seedUsers := []struct {
			Email string
			Name  string
			Role  string
		}{
			{"owner@mail.com", "Owner Admin", "admin"},
			{"ravi@mail.com", "Ravi", "staff"},
			{"meena@mail.com", "Meena", "staff"},
		}

		for _, u := range seedUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				u.Email, u.Name, string(hash), u.Role,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email, "role:", u.Role)
		}
	},
}
