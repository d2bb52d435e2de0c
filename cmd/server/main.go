package main

import (
	"log"
	"net/http"
	"os"

	"smartwaste-backend/internal/database"
	"smartwaste-backend/internal/handlers"
	"smartwaste-backend/internal/metrics"
	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 SMARTWASTE BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Get database URL
	log.Println("🔍 Checking DATABASE_URL environment variable...")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: DATABASE_URL environment variable is required")
		log.Println("   Please set DATABASE_URL in your deployment variables or .env file")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal("DATABASE_URL environment variable is required")
	}
	log.Println("✅ DATABASE_URL found")

	// Connect to database
	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Printf("   Error: %v", err)
		log.Println("   This is usually caused by:")
		log.Println("   1. Wrong DATABASE_URL format")
		log.Println("   2. PostgreSQL service is down")
		log.Println("   3. Network connectivity issue")
		log.Println("   4. Invalid credentials")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer db.Close()
	log.Println("✅ Database connection established")

	// Run migrations
	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database migrations failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	log.Println("✅ Database migrations completed")

	// Seed database
	log.Println("🌱 Seeding database with initial data...")
	if err := database.SeedUsers(db); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: User seeding failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	log.Println("✅ Users seeded successfully")

	if err := database.SeedBins(db); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Bins seeding failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	log.Println("✅ Bins seeded successfully")

	if err := database.SeedVehicles(db); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Vehicle seeding failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	log.Println("✅ Vehicles seeded successfully")

	// Initialize Firebase Cloud Messaging
	// Supports both file path and base64-encoded credentials (for cloud deployments)
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

	// Initialize geocoding (optional, needs GOOGLE_MAPS_API_KEY)
	geocoder, err := services.NewGeocodingService()
	if err != nil {
		log.Printf("⚠️  Geocoding disabled: %v", err)
		geocoder = nil
	} else {
		log.Println("✅ Geocoding service initialized")
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health and metrics
	r.Get("/health", handlers.GetHealth(db, wsHub, geocoder))
	r.Method("GET", "/metrics", metrics.Handler())

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Authentication (no auth required)
		r.Post("/auth/login", handlers.Login(db))
		r.Post("/auth/register", handlers.Register(db))

		// Sensor ingest (device-facing, no auth; readings are validated and clamped)
		r.Post("/bins/{id}/readings", handlers.RecordReading(db, wsHub, fcmService))

		// Geocoding endpoints (no auth required)
		r.Post("/geocoding/reverse", handlers.ReverseGeocode(geocoder))
		r.Post("/geocoding/reverse/batch", handlers.BatchReverseGeocode(geocoder))
		r.Post("/geocoding/forward", handlers.Geocode(geocoder))
		r.Post("/geocoding/forward/batch", handlers.BatchGeocode(geocoder))

		// Diagnostic logging endpoint (no auth required for easier debugging)
		r.Post("/logs/diagnostic", handlers.ReceiveDiagnosticLog())

		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Get("/auth/me", handlers.Me(db))
			r.Get("/bins", handlers.GetBins(db))
			r.Get("/bins/{id}", handlers.GetBin(db))
			r.Get("/bins/{id}/readings", handlers.GetBinReadings(db))
			r.Get("/schedules", handlers.GetSchedules(db))
			r.Post("/reports", handlers.CreateWasteReport(db, wsHub, fcmService))
			r.Get("/reports", handlers.GetWasteReports(db))
			r.Post("/users/fcm-token", handlers.RegisterFCMToken(db))
			r.Patch("/users/{id}", handlers.UpdateUser(db))
		})

		// Operations staff and admins
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole("staff", "admin"))

			r.Get("/sensors/latest", handlers.GetLatestReadings(db))

			r.Get("/bins/{id}/predict", handlers.GetBinPrediction(db))
			r.Get("/predictions", handlers.GetPredictions(db))

			r.Get("/alerts", handlers.GetAlerts(db))
			r.Patch("/alerts/{id}/resolve", handlers.ResolveAlert(db, wsHub))

			r.Post("/routes/optimize", handlers.OptimizeRoute(db, wsHub, fcmService))
			r.Get("/routes", handlers.GetRoutes(db))
			r.Get("/routes/{id}", handlers.GetRoute(db))
			r.Patch("/routes/{id}/status", handlers.UpdateRouteStatus(db))

			r.Post("/bins/{id}/collections", handlers.RecordCollection(db, wsHub))
			r.Get("/bins/{id}/collections", handlers.GetBinCollections(db))
			r.Get("/collections", handlers.GetCollections(db))

			r.Get("/vehicles", handlers.GetVehicles(db))
			r.Patch("/vehicles/{id}/status", handlers.UpdateVehicleStatus(db))

			r.Patch("/reports/{id}/status", handlers.UpdateReportStatus(db))

			r.Get("/analytics/dashboard", handlers.GetDashboard(db))
			r.Get("/analytics/zones", handlers.GetZoneAnalytics(db))
			r.Get("/analytics/trends", handlers.GetTrends(db))
			r.Get("/analytics/efficiency", handlers.GetEfficiency(db))
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole("admin"))

			r.Post("/bins", handlers.CreateBin(db))
			r.Patch("/bins/{id}", handlers.UpdateBin(db))
			r.Delete("/bins/{id}", handlers.DeleteBin(db))

			r.Post("/routes/daily", handlers.CreateDailyRoutes(db, wsHub, fcmService))
			r.Post("/routes/{id}/assign", handlers.AssignRoute(db, wsHub, fcmService))

			r.Post("/vehicles", handlers.CreateVehicle(db))
			r.Delete("/vehicles/{id}", handlers.DeleteVehicle(db))

			r.Post("/schedules", handlers.CreateSchedule(db))
			r.Patch("/schedules/{id}", handlers.UpdateSchedule(db))
			r.Delete("/schedules/{id}", handlers.DeleteSchedule(db))

			r.Get("/users", handlers.GetUsers(db))
			r.Post("/users", handlers.CreateUser(db))
			r.Delete("/users/{id}", handlers.DeleteUser(db))
		})
	})

	// Get port
	log.Println("🔍 Checking PORT environment variable...")
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	} else {
		log.Printf("✅ PORT found: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Start server
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Printf("   Error: %v", err)
		log.Printf("   Port: %s", port)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
}
