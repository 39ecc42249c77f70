package database

import (
	"log"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	driverPassword, err := bcrypt.GenerateFromPassword([]byte("driver123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "admin@smartwastebin.sl",
			"password": string(adminPassword),
			"name":     "Dispatch Admin",
			"role":     "admin",
		},
		{
			"id":       uuid.New().String(),
			"email":    "mohamed.kamara@smartwastebin.sl",
			"password": string(driverPassword),
			"name":     "Mohamed Kamara",
			"role":     "driver",
		},
		{
			"id":       uuid.New().String(),
			"email":    "fatmata.sesay@smartwastebin.sl",
			"password": string(driverPassword),
			"name":     "Fatmata Sesay",
			"role":     "driver",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	return nil
}

func SeedDrivers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM drivers"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Drivers already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding drivers...")

	var driverUserIDs []string
	if err := db.Select(&driverUserIDs, "SELECT id FROM users WHERE role = 'driver' ORDER BY email"); err != nil {
		return err
	}

	licenses := []string{"SL-DRV-04417", "SL-DRV-09823"}
	for i, userID := range driverUserIDs {
		license := "SL-DRV-00000"
		if i < len(licenses) {
			license = licenses[i]
		}
		_, err := db.Exec(`
			INSERT INTO drivers (id, user_id, license_number, status, is_available, is_active)
			VALUES ($1, $2, $3, $4, FALSE, TRUE)
		`, uuid.New().String(), userID, license, models.DriverStatusOffline)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d drivers", len(driverUserIDs))
	return nil
}

func SeedContainers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM containers"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Containers already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding containers...")

	// Central Freetown locations
	containers := []map[string]interface{}{
		{"bin_code": "FT-001", "address": "Siaka Stevens St, Freetown", "fill_level": 45, "latitude": 8.4847, "longitude": -13.2343},
		{"bin_code": "FT-002", "address": "Wilberforce St, Freetown", "fill_level": 67, "latitude": 8.4871, "longitude": -13.2368},
		{"bin_code": "FT-003", "address": "Kissy Rd, Freetown", "fill_level": 23, "latitude": 8.4792, "longitude": -13.2146},
		{"bin_code": "FT-004", "address": "Circular Rd, Freetown", "fill_level": 89, "latitude": 8.4781, "longitude": -13.2301},
		{"bin_code": "FT-005", "address": "Pademba Rd, Freetown", "fill_level": 12, "latitude": 8.4756, "longitude": -13.2352},
		{"bin_code": "FT-006", "address": "Fourah Bay Rd, Freetown", "fill_level": 78, "latitude": 8.4839, "longitude": -13.2097},
		{"bin_code": "FT-007", "address": "Aberdeen Rd, Freetown", "fill_level": 96, "latitude": 8.4866, "longitude": -13.2803},
		{"bin_code": "FT-008", "address": "Lumley Beach Rd, Freetown", "fill_level": 34, "latitude": 8.4494, "longitude": -13.2818},
		{"bin_code": "FT-009", "address": "Spur Rd, Wilberforce", "fill_level": 86, "latitude": 8.4668, "longitude": -13.2579},
		{"bin_code": "FT-010", "address": "Bai Bureh Rd, Kissy", "fill_level": 52, "latitude": 8.4705, "longitude": -13.1912},
		{"bin_code": "FT-011", "address": "Main Motor Rd, Congo Cross", "fill_level": 71, "latitude": 8.4777, "longitude": -13.2601},
		{"bin_code": "FT-012", "address": "Jomo Kenyatta Rd, New England", "fill_level": 18, "latitude": 8.4692, "longitude": -13.2440},
	}

	for _, c := range containers {
		level := c["fill_level"].(int)
		_, err := db.Exec(`
			INSERT INTO containers (id, bin_code, address, latitude, longitude, capacity_liters, fill_level, status, is_active)
			VALUES ($1, $2, $3, $4, $5, 240, $6, $7, TRUE)
		`, uuid.New().String(), c["bin_code"], c["address"], c["latitude"], c["longitude"], level, models.StatusForFillLevel(level))
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d containers", len(containers))
	return nil
}
