package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Role     string  `json:"role"` // "admin", "staff", or "citizen"
	Phone    *string `json:"phone,omitempty"`
}

// GetUsers lists all accounts, optionally by role
// GET /api/users (admin)
func GetUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM users`
		var args []interface{}

		if role := r.URL.Query().Get("role"); role != "" {
			if role != "admin" && role != "staff" && role != "citizen" {
				utils.RespondError(w, http.StatusBadRequest, "Invalid role")
				return
			}
			args = append(args, role)
			query += " WHERE role = $1"
		}
		query += " ORDER BY created_at ASC"

		var users []models.User
		if err := db.Select(&users, query, args...); err != nil {
			log.Printf("❌ Error fetching users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}

		responses := make([]models.UserResponse, len(users))
		for i, user := range users {
			responses[i] = user.ToUserResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// CreateUser creates an account with any role
// POST /api/users (admin)
func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("📥 REQUEST: POST /api/users - Create new user")

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("❌ Invalid request body: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
			log.Println("❌ Missing required fields")
			utils.RespondError(w, http.StatusBadRequest, "Email, password, name, and role are required")
			return
		}

		validRoles := map[string]bool{"admin": true, "staff": true, "citizen": true}
		if !validRoles[req.Role] {
			log.Printf("❌ Invalid role: %s", req.Role)
			utils.RespondError(w, http.StatusBadRequest, "Role must be 'admin', 'staff', or 'citizen'")
			return
		}
		if len(req.Password) < 8 {
			utils.RespondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}

		log.Printf("   📧 Email: %s", req.Email)
		log.Printf("   👤 Name: %s", req.Name)
		log.Printf("   🔑 Role: %s", req.Role)

		var count int
		if err := db.Get(&count, "SELECT COUNT(*) FROM users WHERE email = $1", req.Email); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if count > 0 {
			log.Printf("❌ User already exists: %s", req.Email)
			utils.RespondError(w, http.StatusConflict, "User with this email already exists")
			return
		}

		log.Println("🔒 Hashing password...")
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		now := time.Now().Unix()
		user := models.User{
			ID:        uuid.New().String(),
			Email:     req.Email,
			Password:  string(hashedPassword),
			Name:      req.Name,
			Role:      req.Role,
			Phone:     req.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		}

		log.Println("💾 Inserting user into database...")
		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, user.ID, user.Email, user.Password, user.Name, user.Role, user.Phone, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			log.Printf("❌ Database error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Printf("✅ USER CREATED SUCCESSFULLY")
		log.Printf("   📧 Email: %s", user.Email)
		log.Printf("   🔑 Role: %s", user.Role)
		log.Printf("   🆔 ID: %s", user.ID)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		utils.RespondJSON(w, http.StatusCreated, user.ToUserResponse())
	}
}

// UpdateUser edits an account. Admins can edit anyone; everyone else can
// only edit themselves, and nobody changes roles through this endpoint.
// PATCH /api/users/{id}
func UpdateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if userClaims.Role != "admin" && userClaims.UserID != id {
			utils.RespondError(w, http.StatusForbidden, "You can only edit your own account")
			return
		}

		var req struct {
			Name     *string `json:"name,omitempty"`
			Phone    *string `json:"phone,omitempty"`
			Password *string `json:"password,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var user models.User
		err := db.Get(&user, "SELECT * FROM users WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		var setClauses []string
		var args []interface{}
		addSet := func(column string, value interface{}) {
			args = append(args, value)
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				utils.RespondError(w, http.StatusBadRequest, "name cannot be empty")
				return
			}
			addSet("name", strings.TrimSpace(*req.Name))
		}
		if req.Phone != nil {
			addSet("phone", *req.Phone)
		}
		if req.Password != nil {
			if len(*req.Password) < 8 {
				utils.RespondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
				return
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
				return
			}
			addSet("password", string(hashed))
		}

		if len(setClauses) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No fields to update")
			return
		}
		addSet("updated_at", time.Now().Unix())

		query := "UPDATE users SET "
		for i, clause := range setClauses {
			if i > 0 {
				query += ", "
			}
			query += clause
		}
		args = append(args, id)
		query += fmt.Sprintf(" WHERE id = $%d", len(args))

		if _, err := db.Exec(query, args...); err != nil {
			log.Printf("❌ Error updating user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}

		if err := db.Get(&user, "SELECT * FROM users WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch user")
			return
		}

		utils.RespondJSON(w, http.StatusOK, user.ToUserResponse())
	}
}

// DeleteUser removes an account
// DELETE /api/users/{id} (admin)
func DeleteUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if userClaims.UserID == id {
			utils.RespondError(w, http.StatusConflict, "You cannot delete your own account")
			return
		}

		result, err := db.Exec("DELETE FROM users WHERE id = $1", id)
		if err != nil {
			log.Printf("❌ Error deleting user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete user")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("🗑️ User %s deleted", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// RegisterFCMToken stores a device push token for the caller. Tokens are
// unique per device, so re-registering moves the token to the new user.
// POST /api/users/fcm-token
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			Token      string `json:"token"`
			DeviceType string `json:"device_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "device_type must be 'ios' or 'android'")
			return
		}

		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT(token) DO UPDATE SET user_id = $1, device_type = $3, updated_at = $5
		`, userClaims.UserID, req.Token, req.DeviceType, now, now)
		if err != nil {
			log.Printf("❌ Error registering FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		log.Printf("📱 FCM token registered for %s (%s)", userClaims.Email, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Token registered",
		})
	}
}
