package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔄 Connecting to database...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin', 'driver', 'resident')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create containers table
		`CREATE TABLE IF NOT EXISTS containers (
			id TEXT PRIMARY KEY,
			bin_code TEXT NOT NULL UNIQUE,
			address TEXT NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			capacity_liters INT NOT NULL DEFAULT 240,
			fill_level INT NOT NULL DEFAULT 0 CHECK(fill_level BETWEEN 0 AND 100),
			status TEXT NOT NULL DEFAULT 'EMPTY' CHECK(status IN ('EMPTY', 'LOW', 'MEDIUM', 'HIGH', 'FULL', 'MAINTENANCE', 'OUT_OF_SERVICE')),
			last_emptied_at BIGINT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			owner_user_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (owner_user_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create drivers table (live dispatch state, one row per driver user)
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			license_number TEXT NOT NULL,
			vehicle_id TEXT,
			status TEXT NOT NULL DEFAULT 'OFFLINE' CHECK(status IN ('OFFLINE', 'ONLINE', 'BUSY', 'ON_BREAK')),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			is_available BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create pickups table
		`CREATE TABLE IF NOT EXISTS pickups (
			id TEXT PRIMARY KEY,
			container_id TEXT NOT NULL,
			driver_id TEXT,
			requested_by TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'SCHEDULED' CHECK(status IN ('SCHEDULED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
			priority TEXT NOT NULL DEFAULT 'MEDIUM' CHECK(priority IN ('LOW', 'MEDIUM', 'HIGH', 'URGENT')),
			scheduled_at BIGINT NOT NULL,
			started_at BIGINT,
			completed_at BIGINT,
			notes TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (container_id) REFERENCES containers(id) ON DELETE CASCADE,
			FOREIGN KEY (driver_id) REFERENCES drivers(id) ON DELETE SET NULL,
			FOREIGN KEY (requested_by) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// One active pickup per container. The scheduler's "none active" query
		// is check-then-act; this index is the backstop under concurrent runs.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_pickups_one_active_per_container
			ON pickups(container_id) WHERE status IN ('SCHEDULED', 'IN_PROGRESS')`,

		// Create routes table (one row per optimization run)
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT PRIMARY KEY,
			driver_id TEXT NOT NULL,
			total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			estimated_duration_minutes INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'PLANNED' CHECK(status IN ('PLANNED', 'IN_PROGRESS', 'COMPLETED')),
			optimization_source TEXT NOT NULL DEFAULT 'nearest_neighbor',
			completed_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (driver_id) REFERENCES drivers(id) ON DELETE CASCADE
		)`,

		// Create route_stops table
		`CREATE TABLE IF NOT EXISTS route_stops (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			pickup_id TEXT NOT NULL,
			container_id TEXT NOT NULL,
			stop_order INT NOT NULL,
			estimated_arrival BIGINT,
			actual_arrival BIGINT,
			status TEXT NOT NULL DEFAULT 'PENDING' CHECK(status IN ('PENDING', 'COMPLETED', 'SKIPPED')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
			FOREIGN KEY (pickup_id) REFERENCES pickups(id) ON DELETE CASCADE,
			FOREIGN KEY (container_id) REFERENCES containers(id) ON DELETE CASCADE,
			UNIQUE (route_id, stop_order)
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_containers_fill_level ON containers(fill_level)`,
		`CREATE INDEX IF NOT EXISTS idx_containers_status ON containers(status)`,
		`CREATE INDEX IF NOT EXISTS idx_containers_owner ON containers(owner_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status, is_available, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_drivers_location ON drivers(latitude, longitude)`,
		`CREATE INDEX IF NOT EXISTS idx_pickups_container_id ON pickups(container_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pickups_driver_id ON pickups(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pickups_status ON pickups(status)`,
		`CREATE INDEX IF NOT EXISTS idx_pickups_scheduled_at ON pickups(scheduled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_driver_id ON routes(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes(status)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stops_route_id ON route_stops(route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stops_route_seq ON route_stops(route_id, stop_order)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
