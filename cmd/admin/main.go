// Package main provides admin management utilities for Ladle.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"ladle/internal/config"
	"ladle/internal/database"
	"ladle/internal/models"
	"ladle/internal/repository"
	"ladle/internal/service"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin createsuperuser <email> <password>  - Create a superuser account")
		fmt.Println("  go run ./cmd/admin list-staff                          - List all staff accounts")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "createsuperuser":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin createsuperuser <email> <password>")
			os.Exit(1)
		}
		createSuperuser(db, os.Args[2], os.Args[3])

	case "list-staff":
		listStaff(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func createSuperuser(db *gorm.DB, email, password string) {
	svc := service.NewUserService(repository.NewUserRepository(db))
	user, err := svc.CreateSuperuser(context.Background(), email, password)
	if err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}
	fmt.Printf("✅ Superuser %s created (ID: %d)\n", user.Email, user.ID)
}

func listStaff(db *gorm.DB) {
	var staff []models.User
	if err := db.Where("is_staff = ?", true).Order("id").Find(&staff).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}

	if len(staff) == 0 {
		fmt.Println("No staff accounts found")
		return
	}

	fmt.Println("Staff accounts:")
	for _, u := range staff {
		role := "staff"
		if u.IsSuperuser {
			role = "superuser"
		}
		fmt.Printf("  - %s (ID: %d, %s)\n", u.Email, u.ID, role)
	}
}
