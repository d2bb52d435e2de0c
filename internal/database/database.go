package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Printf("   📍 URL prefix: %s...", dbURL[:min(30, len(dbURL))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	log.Println("🔄 Step 1: Attempting sqlx.Connect()...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("✅ Step 1 Complete: sqlx.Connect() succeeded")

	log.Println("🔄 Step 2: Testing connection with Ping()...")
	if err := db.Ping(); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("✅ Step 2 Complete: Ping() succeeded")

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	return db, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin', 'staff', 'citizen')),
			phone TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create bins table
		`CREATE TABLE IF NOT EXISTS bins (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			zone TEXT NOT NULL,
			bin_type TEXT NOT NULL CHECK(bin_type IN ('general', 'recyclable', 'organic', 'hazardous')),
			capacity_liters DOUBLE PRECISION NOT NULL DEFAULT 240,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			address TEXT,
			current_waste_level DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'maintenance', 'retired')),
			last_collected_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create sensor_logs table
		`CREATE TABLE IF NOT EXISTS sensor_logs (
			id TEXT PRIMARY KEY,
			bin_id TEXT NOT NULL,
			waste_level DOUBLE PRECISION NOT NULL,
			temperature DOUBLE PRECISION NOT NULL DEFAULT 0,
			humidity DOUBLE PRECISION NOT NULL DEFAULT 0,
			recorded_at BIGINT NOT NULL,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE
		)`,

		// Create alerts table
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			bin_id TEXT NOT NULL,
			alert_type TEXT NOT NULL CHECK(alert_type IN ('bin_full', 'bin_almost_full', 'fire_risk')),
			severity TEXT NOT NULL CHECK(severity IN ('critical', 'warning')),
			message TEXT NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_by TEXT,
			resolved_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			FOREIGN KEY (resolved_by) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create vehicles table
		`CREATE TABLE IF NOT EXISTS vehicles (
			id TEXT PRIMARY KEY,
			plate_number TEXT NOT NULL UNIQUE,
			vehicle_type TEXT NOT NULL CHECK(vehicle_type IN ('compactor', 'mini_truck', 'van')),
			capacity_kg DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL DEFAULT 'available' CHECK(status IN ('available', 'on_route', 'maintenance')),
			assigned_zone TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create collection_routes table
		`CREATE TABLE IF NOT EXISTS collection_routes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			zone TEXT,
			vehicle_id TEXT,
			assigned_to TEXT,
			route_date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'in_progress', 'completed')),
			total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_bins INT NOT NULL DEFAULT 0,
			start_latitude DOUBLE PRECISION,
			start_longitude DOUBLE PRECISION,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL,
			FOREIGN KEY (assigned_to) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create route_stops table
		`CREATE TABLE IF NOT EXISTS route_stops (
			id SERIAL PRIMARY KEY,
			route_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			sequence_index INT NOT NULL,
			distance_from_previous_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			collected BOOLEAN NOT NULL DEFAULT FALSE,
			collected_at BIGINT,
			FOREIGN KEY (route_id) REFERENCES collection_routes(id) ON DELETE CASCADE,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			UNIQUE (route_id, sequence_index)
		)`,

		// Create collection_logs table
		`CREATE TABLE IF NOT EXISTS collection_logs (
			id TEXT PRIMARY KEY,
			bin_id TEXT NOT NULL,
			route_id TEXT,
			collected_by TEXT,
			level_before DOUBLE PRECISION NOT NULL,
			level_after DOUBLE PRECISION NOT NULL,
			waste_amount_kg DOUBLE PRECISION NOT NULL,
			collected_at BIGINT NOT NULL,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			FOREIGN KEY (route_id) REFERENCES collection_routes(id) ON DELETE SET NULL,
			FOREIGN KEY (collected_by) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create waste_reports table
		`CREATE TABLE IF NOT EXISTS waste_reports (
			id TEXT PRIMARY KEY,
			reporter_id TEXT,
			bin_id TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			report_type TEXT NOT NULL CHECK(report_type IN ('overflow', 'damage', 'missed_pickup', 'illegal_dumping')),
			description TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'in_progress', 'resolved', 'dismissed')),
			resolved_by TEXT,
			resolved_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (reporter_id) REFERENCES users(id) ON DELETE SET NULL,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE SET NULL,
			FOREIGN KEY (resolved_by) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create collection_schedules table
		`CREATE TABLE IF NOT EXISTS collection_schedules (
			id TEXT PRIMARY KEY,
			zone TEXT NOT NULL,
			day_of_week INT NOT NULL CHECK(day_of_week BETWEEN 0 AND 6),
			start_time TEXT NOT NULL,
			vehicle_id TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL
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
		`CREATE INDEX IF NOT EXISTS idx_bins_zone ON bins(zone)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_status ON bins(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_waste_level ON bins(current_waste_level)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_logs_bin_id ON sensor_logs(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_logs_bin_recorded ON sensor_logs(bin_id, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_bin_id ON alerts(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON alerts(resolved)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_date ON collection_routes(route_date)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_status ON collection_routes(status)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stops_route_id ON route_stops(route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stops_route_seq ON route_stops(route_id, sequence_index)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_logs_bin_id ON collection_logs(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_logs_collected_at ON collection_logs(collected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_waste_reports_status ON waste_reports(status)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,

		// Migration: battery level reporting added after initial sensor rollout
		`ALTER TABLE sensor_logs ADD COLUMN IF NOT EXISTS battery_level DOUBLE PRECISION NOT NULL DEFAULT 100`,

		// Migration: per-route weight override for the sequencer
		`ALTER TABLE collection_routes ADD COLUMN IF NOT EXISTS distance_weight DOUBLE PRECISION NOT NULL DEFAULT 2.0`,

		// Migration: allow cancelling routes
		`ALTER TABLE collection_routes DROP CONSTRAINT IF EXISTS collection_routes_status_check`,
		`ALTER TABLE collection_routes ADD CONSTRAINT collection_routes_status_check CHECK(status IN ('pending', 'in_progress', 'completed', 'cancelled'))`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
