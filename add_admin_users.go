package main

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// Ops script: provisions the admin and staff accounts on a fresh deployment.
// Safe to run repeatedly; existing emails are skipped.
func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("🔌 Connected to database")

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	staffPassword, err := bcrypt.GenerateFromPassword([]byte("staff123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash staff password: %v", err)
	}

	now := time.Now().Unix()
	users := []map[string]interface{}{
		{
			"id":         uuid.New().String(),
			"email":      "admin@smartwaste.city",
			"password":   string(adminPassword),
			"name":       "Operations Admin",
			"role":       "admin",
			"created_at": now,
			"updated_at": now,
		},
		{
			"id":         uuid.New().String(),
			"email":      "dispatch@smartwaste.city",
			"password":   string(staffPassword),
			"name":       "Dispatch Desk",
			"role":       "staff",
			"created_at": now,
			"updated_at": now,
		},
		{
			"id":         uuid.New().String(),
			"email":      "crew1@smartwaste.city",
			"password":   string(staffPassword),
			"name":       "Collection Crew 1",
			"role":       "staff",
			"created_at": now,
			"updated_at": now,
		},
	}

	for _, user := range users {
		var exists bool
		err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", user["email"])
		if err != nil {
			log.Printf("❌ Error checking for user %s: %v", user["email"], err)
			continue
		}

		if exists {
			log.Printf("⚠️  User already exists: %s", user["email"])
			continue
		}

		query := `
			INSERT INTO users (id, email, password, name, role, created_at, updated_at)
			VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			log.Printf("❌ Failed to create user %s: %v", user["email"], err)
			continue
		}

		log.Printf("✅ Created %s user: %s", user["role"], user["email"])
	}

	log.Println("\n📧 Login credentials:")
	log.Println("  admin@smartwaste.city / admin123 (admin)")
	log.Println("  dispatch@smartwaste.city / staff123 (staff)")
	log.Println("  crew1@smartwaste.city / staff123 (staff)")
}
