package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/database"

	"github.com/joho/godotenv"
)

// Standalone migration runner for environments where the server should not
// touch the schema on boot
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if os.Getenv("SKIP_SEED") == "" {
		if err := database.SeedUsers(db); err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if err := database.SeedDrivers(db); err != nil {
			log.Fatalf("Driver seeding failed: %v", err)
		}
		if err := database.SeedContainers(db); err != nil {
			log.Fatalf("Container seeding failed: %v", err)
		}
	}

	// Summary counts
	var counts struct {
		Users      int `db:"users"`
		Drivers    int `db:"drivers"`
		Containers int `db:"containers"`
		Pickups    int `db:"pickups"`
	}
	err = db.Get(&counts, `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM drivers) AS drivers,
			(SELECT COUNT(*) FROM containers) AS containers,
			(SELECT COUNT(*) FROM pickups) AS pickups
	`)
	if err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:       %d\n", counts.Users)
	fmt.Printf("Drivers:     %d\n", counts.Drivers)
	fmt.Printf("Containers:  %d\n", counts.Containers)
	fmt.Printf("Pickups:     %d\n", counts.Pickups)
	fmt.Println("============================================================")
}
