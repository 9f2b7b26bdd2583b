package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/isdelr/ender-admin-auth/internal/auth"
	"github.com/isdelr/ender-admin-auth/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for admin authentication.
type AuthHandler struct {
	service services.AuthServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	PasswordCheck string `json:"passwordCheck"`
	Name          string `json:"name,omitempty"`
	Surname       string `json:"surname,omitempty"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Success bool                     `json:"success"`
	Admin   services.RegisteredAdmin `json:"admin"`
}

// MsgResponse is the body of a rejected registration.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// RememberMe accepts any JSON value; see truthy.
	RememberMe json.RawMessage `json:"rememberMe,omitempty"`
}

// LoginResult is the result section of a successful login.
type LoginResult struct {
	Admin    services.LoginAdmin `json:"admin"`
	UserRole string              `json:"userRole"`
}

// Envelope is the {success, result, message} body shared by login, errors and profile.
type Envelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result"`
	Message string `json:"message,omitempty"`
}

// LogoutResponse is the body of a successful logout.
type LogoutResponse struct {
	IsLoggedIn bool `json:"isLoggedIn"`
}

// ProfileResponse is the public profile of the authenticated admin.
type ProfileResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Photo      string    `json:"photo,omitempty"`
	IsLoggedIn bool      `json:"isLoggedIn"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Register handles new admin registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, MsgResponse{Msg: "Invalid request body"})
		return
	}

	admin, err := h.service.Register(r.Context(), services.RegisterInput{
		Email:         payload.Email,
		Password:      payload.Password,
		PasswordCheck: payload.PasswordCheck,
		Name:          payload.Name,
		Surname:       payload.Surname,
	})
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			log.Info().Str("email", payload.Email).Str("reason", vErr.Message).Msg("Registration rejected")
			writeJSON(w, http.StatusBadRequest, MsgResponse{Msg: vErr.Message})
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register admin")
		writeJSON(w, http.StatusInternalServerError, Envelope{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RegisterResponse{Success: true, Admin: admin})
}

// Login handles credential verification and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Message: "Invalid request body"})
		return
	}

	res, err := h.service.Login(r.Context(), services.LoginInput{
		Email:      payload.Email,
		Password:   payload.Password,
		RememberMe: truthy(payload.RememberMe),
	})
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			log.Warn().Str("email", payload.Email).Str("reason", vErr.Message).Msg("Failed authentication attempt")
			writeJSON(w, http.StatusBadRequest, Envelope{Message: vErr.Message})
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to log in admin")
		writeJSON(w, http.StatusInternalServerError, Envelope{Message: err.Error()})
		return
	}

	log.Info().Str("admin_id", res.Admin.ID).Time("expires_at", res.ExpiresAt).Msg("Admin logged in")
	w.Header().Set(auth.TokenHeader, res.Token)
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Result:  LoginResult{Admin: res.Admin, UserRole: res.Role},
		Message: "Successfully login admin",
	})
}

// Logout clears the session flag of the admin attached by the gate.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.AdminFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve admin from context")
		writeJSON(w, http.StatusInternalServerError, Envelope{Message: "Could not retrieve admin from token"})
		return
	}

	loggedIn, err := h.service.Logout(r.Context(), admin.ID)
	if err != nil {
		log.Error().Err(err).Str("admin_id", admin.ID).Msg("Failed to log out admin")
		writeJSON(w, http.StatusInternalServerError, Envelope{Message: err.Error()})
		return
	}

	log.Info().Str("admin_id", admin.ID).Msg("Admin logged out")
	writeJSON(w, http.StatusOK, LogoutResponse{IsLoggedIn: loggedIn})
}

// GetMe returns the profile of the authenticated admin.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.AdminFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve admin from context")
		writeJSON(w, http.StatusInternalServerError, Envelope{Message: "Could not retrieve admin from token"})
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Result: ProfileResponse{
			ID:         admin.ID,
			Email:      admin.Email,
			Name:       admin.Name,
			Surname:    admin.Surname,
			Photo:      admin.Photo,
			IsLoggedIn: admin.LoggedIn(),
			CreatedAt:  admin.CreatedAt,
		},
	})
}

// truthy applies JavaScript truthiness to a raw JSON value: null, false, 0,
// "" and an absent value are false, anything else is true.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
