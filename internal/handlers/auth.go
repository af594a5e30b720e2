package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/services/users"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body LoginRequest
	if !decodeJSON(w, req, &body) {
		return
	}

	session, err := r.users.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		respondFailure(w, err, "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Login successful",
		"access_token": session.AccessToken,
		"user":         session.User,
	})
}

// register handles self-service registration. New accounts are inspectors.
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var body users.RegisterInput
	if !decodeJSON(w, req, &body) {
		return
	}

	u, err := r.users.Register(req.Context(), body)
	if err != nil {
		respondFailure(w, err, "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Registration successful",
		"user_id": u.UserID,
		"role":    "inspector",
	})
}

func (r *Router) getProfile(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	u, err := r.users.Profile(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// updateProfile changes the caller's own account; admins may change anyone's
func (r *Router) updateProfile(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok || !allowSelf(w, req, id) {
		return
	}
	var body users.ProfileUpdate
	if !decodeJSON(w, req, &body) {
		return
	}

	if _, err := r.users.UpdateProfile(req.Context(), id, body); err != nil {
		respondFailure(w, err, "User not found")
		return
	}
	respondMessage(w, http.StatusOK, "Profile updated successfully.")
}
