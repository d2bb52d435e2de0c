package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"smartwaste-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	seed := flag.Bool("seed", false, "seed demo users, bins, and vehicles after migrating")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if *seed {
		if err := database.SeedUsers(db); err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if err := database.SeedBins(db); err != nil {
			log.Fatalf("Bin seeding failed: %v", err)
		}
		if err := database.SeedVehicles(db); err != nil {
			log.Fatalf("Vehicle seeding failed: %v", err)
		}
		log.Println("Seeding completed successfully!")
	}

	// Query and display summary
	var result struct {
		Users      int `db:"users"`
		Bins       int `db:"bins"`
		ActiveBins int `db:"active_bins"`
		Vehicles   int `db:"vehicles"`
		Readings   int `db:"readings"`
		Routes     int `db:"routes"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM bins) AS bins,
			(SELECT COUNT(*) FROM bins WHERE status = 'active') AS active_bins,
			(SELECT COUNT(*) FROM vehicles) AS vehicles,
			(SELECT COUNT(*) FROM sensor_logs) AS readings,
			(SELECT COUNT(*) FROM collection_routes) AS routes
	`

	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	// Display results
	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:            %d\n", result.Users)
	fmt.Printf("Bins:             %d (%d active)\n", result.Bins, result.ActiveBins)
	fmt.Printf("Vehicles:         %d\n", result.Vehicles)
	fmt.Printf("Sensor readings:  %d\n", result.Readings)
	fmt.Printf("Routes:           %d\n", result.Routes)
	fmt.Println("============================================================")
}
