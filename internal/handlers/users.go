package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/middleware"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // "admin", "driver" or "resident"
}

type CreateUserResponse struct {
	Success bool                 `json:"success"`
	User    *models.UserResponse `json:"user,omitempty"`
	Message string               `json:"message,omitempty"`
}

// CreateUser creates a new user. Requires admin authentication.
func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
			utils.RespondError(w, http.StatusBadRequest, "Email, password, name, and role are required")
			return
		}

		validRoles := map[string]bool{
			models.RoleAdmin:    true,
			models.RoleDriver:   true,
			models.RoleResident: true,
		}
		if !validRoles[req.Role] {
			utils.RespondError(w, http.StatusBadRequest, "Role must be 'admin', 'driver', or 'resident'")
			return
		}

		// Check if user already exists
		var existingID string
		if err := db.Get(&existingID, "SELECT id FROM users WHERE email = $1", req.Email); err == nil {
			utils.RespondError(w, http.StatusConflict, "User with this email already exists")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
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
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, user.ID, user.Email, user.Password, user.Name, user.Role, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			log.Printf("❌ Failed to create user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Printf("✅ User created: %s (%s)", user.Email, user.Role)

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusCreated, CreateUserResponse{
			Success: true,
			User:    &userResponse,
			Message: "User created successfully",
		})
	}
}

// GetUsers lists all users. Requires admin authentication.
func GetUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		if err := db.Select(&users, "SELECT * FROM users ORDER BY created_at DESC"); err != nil {
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

// RegisterFCMToken stores or refreshes a device push token for the
// authenticated user
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
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
			utils.RespondError(w, http.StatusBadRequest, "Token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "Invalid device_type (must be 'ios' or 'android')")
			return
		}

		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT(token) DO UPDATE SET
				user_id = EXCLUDED.user_id,
				device_type = EXCLUDED.device_type,
				updated_at = EXCLUDED.updated_at
		`, userClaims.UserID, req.Token, req.DeviceType, now, now)
		if err != nil {
			log.Printf("❌ Failed to register FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Token registered"})
	}
}
