package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/database"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/handlers"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/middleware"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/scheduler"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/services"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// Default scheduler intervals, each overridable via environment
const (
	defaultAutoCreateInterval = 30 * time.Minute
	defaultReminderInterval   = 5 * time.Minute
	defaultOverdueInterval    = 10 * time.Minute
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 SMART WASTE BIN DISPATCH SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("❌ FATAL ERROR: DATABASE_URL environment variable is required")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Println("   This is usually caused by:")
		log.Println("   1. Wrong DATABASE_URL format")
		log.Println("   2. PostgreSQL service is down")
		log.Println("   3. Network connectivity issue")
		log.Fatal(err)
	}
	defer db.Close()

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Database migrations failed: %v", err)
	}

	// Seed database
	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: User seeding failed: %v", err)
	}
	if err := database.SeedDrivers(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Driver seeding failed: %v", err)
	}
	if err := database.SeedContainers(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: Container seeding failed: %v", err)
	}

	// Initialize Firebase Cloud Messaging.
	// Supports both file path and base64-encoded credentials (for Railway/cloud deployments)
	var fcmService *services.FCMService
	fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64")

	if fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}

		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	// A nil *FCMService must stay a nil interface for the services' checks
	var push services.PushSender
	if fcmService != nil {
		push = fcmService
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// External directions collaborator. Without an API key the route
	// optimizer runs on the local nearest-neighbor heuristic alone.
	var directions services.DirectionsProvider
	if apiKey := os.Getenv("GOOGLE_MAPS_API_KEY"); apiKey != "" {
		directions = services.NewDirectionsService(apiKey)
		log.Println("✅ Directions API enabled for route optimization")
	} else {
		log.Println("⚠️  GOOGLE_MAPS_API_KEY not set, using local route optimization only")
	}

	// Wire up services
	locator := services.NewDriverLocator(db)
	pickupService := services.NewPickupService(db, locator, push, wsHub)
	routeService := services.NewRouteService(db, directions, services.NewRouteOptimizer(), wsHub)

	// Start the dispatch scheduler
	systemUserID, err := resolveSystemUser(db)
	if err != nil {
		log.Fatalf("❌ FATAL ERROR: Could not resolve system user for scheduler: %v", err)
	}

	sched := scheduler.New()
	jobs := scheduler.NewDispatchJobs(db, pickupService, push, wsHub, systemUserID)
	jobs.Register(sched,
		intervalFromEnv("DISPATCH_AUTO_CREATE_INTERVAL", defaultAutoCreateInterval),
		intervalFromEnv("DISPATCH_REMINDER_INTERVAL", defaultReminderInterval),
		intervalFromEnv("DISPATCH_OVERDUE_INTERVAL", defaultOverdueInterval),
	)
	sched.Start(context.Background())

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Authentication routes (no auth required)
	r.Post("/api/auth/login", handlers.Login(db))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub, db))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Everything below requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			// Containers
			r.Get("/containers", handlers.GetContainers(db))
			r.Get("/containers/{id}", handlers.GetContainer(db))
			r.Patch("/containers/{id}/fill-level", handlers.UpdateFillLevel(db))

			// Pickups
			r.Post("/pickups", handlers.CreatePickup(pickupService))
			r.Get("/pickups/{id}", handlers.GetPickup(pickupService))
			r.Patch("/pickups/{id}/status", handlers.TransitionPickup(pickupService))
			r.Post("/pickups/{id}/cancel", handlers.CancelPickup(pickupService))

			// Routes
			r.Get("/routes/{id}", handlers.GetRoute(routeService))

			// FCM token registration
			r.Post("/fcm-token", handlers.RegisterFCMToken(db))

			// Driver self-service
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleDriver))

				r.Patch("/drivers/me/status", handlers.UpdateMyStatus(db))
				r.Post("/drivers/me/location", handlers.UpdateMyLocation(db))
				r.Get("/drivers/me/pickups", handlers.GetMyPickups(db, pickupService))
				r.Patch("/routes/{id}/stops/{stopId}", handlers.AdvanceStop(routeService))
			})

			// Admin dispatch console
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Post("/containers", handlers.CreateContainer(db))
				r.Get("/pickups", handlers.GetPickups(db))
				r.Get("/drivers", handlers.GetDrivers(db))
				r.Get("/drivers/nearest", handlers.GetNearestDriver(locator))
				r.Get("/drivers/within-radius", handlers.GetDriversWithinRadius(locator))
				r.Get("/connections", handlers.GetConnectionStatus(wsHub))
				r.Get("/routes", handlers.GetRoutes(db))
				r.Post("/routes/optimize", handlers.OptimizeRoute(routeService))
				r.Post("/users", handlers.CreateUser(db))
				r.Get("/users", handlers.GetUsers(db))
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ FATAL ERROR: Server failed to start: %v", err)
	}
}

// resolveSystemUser returns the admin user recorded as requester on
// scheduler-created pickups
func resolveSystemUser(db *sqlx.DB) (string, error) {
	var id string
	err := db.Get(&id, "SELECT id FROM users WHERE role = 'admin' ORDER BY created_at ASC LIMIT 1")
	return id, err
}

func intervalFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, raw, fallback)
		return fallback
	}
	return d
}
