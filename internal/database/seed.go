package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedBins(db *sqlx.DB) error {
	// Check if bins already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Bins already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding 20 bins...")

	bins := []map[string]interface{}{
		{"code": "DT-001", "zone": "downtown", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5190, "longitude": -122.6795, "address": "701 SW 6th Ave, Portland, OR 97204", "current_waste_level": 45.0},
		{"code": "DT-002", "zone": "downtown", "bin_type": "recyclable", "capacity_liters": 360.0, "latitude": 45.5152, "longitude": -122.6784, "address": "1120 SW 5th Ave, Portland, OR 97204", "current_waste_level": 67.0},
		{"code": "DT-003", "zone": "downtown", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5202, "longitude": -122.6742, "address": "121 SW Salmon St, Portland, OR 97204", "current_waste_level": 23.0},
		{"code": "DT-004", "zone": "downtown", "bin_type": "organic", "capacity_liters": 120.0, "latitude": 45.5169, "longitude": -122.6730, "address": "1037 SW Broadway, Portland, OR 97205", "current_waste_level": 88.0},
		{"code": "NW-001", "zone": "northwest", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5266, "longitude": -122.6819, "address": "937 NW Glisan St, Portland, OR 97209", "current_waste_level": 52.0},
		{"code": "NW-002", "zone": "northwest", "bin_type": "recyclable", "capacity_liters": 360.0, "latitude": 45.5298, "longitude": -122.6835, "address": "1420 NW Lovejoy St, Portland, OR 97209", "current_waste_level": 74.0},
		{"code": "NW-003", "zone": "northwest", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5312, "longitude": -122.6858, "address": "2035 NW Northrup St, Portland, OR 97210", "current_waste_level": 31.0},
		{"code": "NW-004", "zone": "northwest", "bin_type": "hazardous", "capacity_liters": 120.0, "latitude": 45.5351, "longitude": -122.6871, "address": "1631 NW Thurman St, Portland, OR 97209", "current_waste_level": 12.0},
		{"code": "N-001", "zone": "north", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5512, "longitude": -122.6757, "address": "3939 N Mississippi Ave, Portland, OR 97227", "current_waste_level": 63.0},
		{"code": "N-002", "zone": "north", "bin_type": "organic", "capacity_liters": 120.0, "latitude": 45.5496, "longitude": -122.6665, "address": "3552 N Williams Ave, Portland, OR 97227", "current_waste_level": 29.0},
		{"code": "N-003", "zone": "north", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5623, "longitude": -122.6806, "address": "6526 N Interstate Ave, Portland, OR 97217", "current_waste_level": 81.0},
		{"code": "N-004", "zone": "north", "bin_type": "recyclable", "capacity_liters": 360.0, "latitude": 45.5770, "longitude": -122.7306, "address": "8233 N Lombard St, Portland, OR 97203", "current_waste_level": 47.0},
		{"code": "NE-001", "zone": "northeast", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5349, "longitude": -122.6370, "address": "2811 NE Broadway, Portland, OR 97232", "current_waste_level": 58.0},
		{"code": "NE-002", "zone": "northeast", "bin_type": "organic", "capacity_liters": 120.0, "latitude": 45.5483, "longitude": -122.6133, "address": "4835 NE Fremont St, Portland, OR 97213", "current_waste_level": 92.0},
		{"code": "NE-003", "zone": "northeast", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5590, "longitude": -122.6508, "address": "1526 NE Alberta St, Portland, OR 97211", "current_waste_level": 16.0},
		{"code": "NE-004", "zone": "northeast", "bin_type": "recyclable", "capacity_liters": 360.0, "latitude": 45.5627, "longitude": -122.6347, "address": "3000 NE Killingsworth St, Portland, OR 97211", "current_waste_level": 70.0},
		{"code": "SE-001", "zone": "southeast", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.5121, "longitude": -122.6278, "address": "3535 SE Hawthorne Blvd, Portland, OR 97214", "current_waste_level": 85.0},
		{"code": "SE-002", "zone": "southeast", "bin_type": "organic", "capacity_liters": 120.0, "latitude": 45.5047, "longitude": -122.6174, "address": "4235 SE Division St, Portland, OR 97206", "current_waste_level": 38.0},
		{"code": "SE-003", "zone": "southeast", "bin_type": "general", "capacity_liters": 240.0, "latitude": 45.4955, "longitude": -122.5890, "address": "7201 SE Foster Rd, Portland, OR 97206", "current_waste_level": 95.0},
		{"code": "SE-004", "zone": "southeast", "bin_type": "hazardous", "capacity_liters": 120.0, "latitude": 45.4975, "longitude": -122.6119, "address": "4811 SE Powell Blvd, Portland, OR 97206", "current_waste_level": 8.0},
	}

	for _, bin := range bins {
		id := uuid.New().String()
		_, err := db.Exec(`
			INSERT INTO bins (id, code, zone, bin_type, capacity_liters, latitude, longitude, address, current_waste_level, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'active')
		`, id, bin["code"], bin["zone"], bin["bin_type"], bin["capacity_liters"], bin["latitude"], bin["longitude"], bin["address"], bin["current_waste_level"])

		if err != nil {
			return err
		}
	}

	log.Println("✓ Successfully seeded 20 bins")
	return nil
}

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	// Hash passwords
	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staffPassword, err := bcrypt.GenerateFromPassword([]byte("staff123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	citizenPassword, err := bcrypt.GenerateFromPassword([]byte("citizen123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "admin@smartwaste.city",
			"password": string(adminPassword),
			"name":     "City Administrator",
			"role":     "admin",
		},
		{
			"id":       uuid.New().String(),
			"email":    "staff@smartwaste.city",
			"password": string(staffPassword),
			"name":     "Marcus Webb",
			"role":     "staff",
		},
		{
			"id":       uuid.New().String(),
			"email":    "citizen@smartwaste.city",
			"password": string(citizenPassword),
			"name":     "Dana Ortiz",
			"role":     "citizen",
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
	log.Println("  📧 Admin:   admin@smartwaste.city / admin123")
	log.Println("  📧 Staff:   staff@smartwaste.city / staff123")
	log.Println("  📧 Citizen: citizen@smartwaste.city / citizen123")
	return nil
}

func SeedVehicles(db *sqlx.DB) error {
	// Check if vehicles already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM vehicles"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Vehicles already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding vehicles...")

	vehicles := []map[string]interface{}{
		{"plate_number": "ORE-4821", "vehicle_type": "compactor", "capacity_kg": 9000.0, "assigned_zone": "north"},
		{"plate_number": "ORE-2374", "vehicle_type": "mini_truck", "capacity_kg": 3500.0, "assigned_zone": "downtown"},
		{"plate_number": "ORE-1065", "vehicle_type": "van", "capacity_kg": 1200.0, "assigned_zone": nil},
	}

	for _, vehicle := range vehicles {
		id := uuid.New().String()
		_, err := db.Exec(`
			INSERT INTO vehicles (id, plate_number, vehicle_type, capacity_kg, status, assigned_zone)
			VALUES ($1, $2, $3, $4, 'available', $5)
		`, id, vehicle["plate_number"], vehicle["vehicle_type"], vehicle["capacity_kg"], vehicle["assigned_zone"])

		if err != nil {
			return err
		}
	}

	log.Println("✓ Successfully seeded 3 vehicles")
	return nil
}
