// Command main runs the database seeder for Ladle.
package main

import (
	"flag"
	"log"

	"ladle/internal/config"
	"ladle/internal/database"
	"ladle/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of users to create")
	numRecipes := flag.Int("recipes", 20, "Number of recipes per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d recipes each, clean=%v\n", *numUsers, *numRecipes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if err := s.SeedKitchen(*numUsers, *numRecipes); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Seeding complete")
}
