package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/models"
)

type userRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserResource handles account administration. It is mounted behind the admin
// middleware, so every caller is already an authenticated admin.
func UserResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/users")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listUsers(w, r)
		case http.MethodPost:
			createUserRecord(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid user identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	userID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showUser(w, r, userID)
	case http.MethodPut:
		updateUser(w, r, userID)
	case http.MethodDelete:
		deleteUser(w, r, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var users []models.User
	if err := database.WithContext(ctx).Order("email asc").Find(&users).Error; err != nil {
		applog.Error(ctx, "failed to list users", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load users")
		return
	}

	responses := make([]userResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, projectUser(user))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showUser(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	var user models.User
	if err := database.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load user", "error", err, "id", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	writeJSON(w, http.StatusOK, projectUser(user))
}

func createUserRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid user payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		writeJSONError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(payload.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters long")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		applog.Error(ctx, "failed to hash password", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create user")
		return
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(payload.Name),
		PasswordHash: string(hashed),
		Role:         models.NormalizeRole(payload.Role),
		Theme:        models.DefaultTheme,
	}

	if err := database.WithContext(ctx).Create(&user).Error; err != nil {
		applog.Error(ctx, "failed to create user", "error", err, "email", email)
		writeJSONError(w, http.StatusConflict, "unable to create user")
		return
	}

	writeJSON(w, http.StatusCreated, projectUser(user))
}

func updateUser(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	var user models.User
	if err := database.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load user for update", "error", err, "id", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load user")
		return
	}

	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid user update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if email := strings.ToLower(strings.TrimSpace(payload.Email)); email != "" {
		if !strings.Contains(email, "@") {
			writeJSONError(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		updates["email"] = email
	}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if role := strings.TrimSpace(payload.Role); role != "" {
		if !models.ValidRole(strings.ToLower(role)) {
			writeJSONError(w, http.StatusBadRequest, "unknown role")
			return
		}
		updates["role"] = strings.ToLower(role)
	}
	if payload.Password != "" {
		if len(payload.Password) < 8 {
			writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters long")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			applog.Error(ctx, "failed to hash password", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to update user")
			return
		}
		updates["password_hash"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := database.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			applog.Error(ctx, "failed to update user", "error", err, "id", userID)
			writeJSONError(w, http.StatusConflict, "unable to update user")
			return
		}
	}

	if err := database.WithContext(ctx).First(&user, userID).Error; err != nil {
		applog.Error(ctx, "failed to reload user after update", "error", err, "id", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectUser(user))
}

func deleteUser(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()

	if current, ok := currentUserID(r); ok && current == userID {
		writeJSONError(w, http.StatusBadRequest, "cannot delete the signed-in account")
		return
	}

	var user models.User
	if err := database.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load user for delete", "error", err, "id", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load user")
		return
	}

	if err := database.WithContext(ctx).Delete(&user).Error; err != nil {
		applog.Error(ctx, "failed to delete user", "error", err, "id", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectUser(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Theme:     user.Theme,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
