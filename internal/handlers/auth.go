package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/middleware"
	"github.com/DevangRnd/fota-backend/internal/utils"
)

// Credentials is the body of register and login requests
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *Router) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	}
}

// register handles operator registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var body Credentials
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Username == "" || body.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hashed, err := utils.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	if _, err := r.store.CreateUser(req.Context(), body.Username, hashed); err != nil {
		if errors.Is(err, fota.ErrConflict) {
			respondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		respondDomainError(w, err, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// login verifies credentials and issues the session cookie
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body Credentials
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := r.store.UserByUsername(req.Context(), body.Username)
	if err != nil || !utils.CheckPasswordHash(body.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateSessionToken(user, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	_ = r.store.RecordLogin(req.Context(), user.ID, time.Now())

	http.SetCookie(w, r.sessionCookie(token, int(utils.SessionTTL.Seconds())))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// logout clears the session cookie
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	http.SetCookie(w, r.sessionCookie("", -1))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// checkAuth reports the identity behind the current session
func (r *Router) checkAuth(w http.ResponseWriter, req *http.Request) {
	claims, _ := middleware.ClaimsFrom(req.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": map[string]interface{}{
			"id":       claims["userId"],
			"username": claims["username"],
		},
	})
}
