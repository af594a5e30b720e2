package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/symmetrixs/edaago/internal/models"
)

// NotificationRequest is the body of a manual notification
type NotificationRequest struct {
	UserID  string                  `json:"UserID"`
	Message string                  `json:"Message"`
	Type    models.NotificationType `json:"Type"`
}

// listNotifications returns the notifications of an AuthUUID, newest first.
// Users only read their own.
func (r *Router) listNotifications(w http.ResponseWriter, req *http.Request) {
	uuid := mux.Vars(req)["uuid"]
	if p := caller(req); !p.IsAdmin() && (p == nil || p.AuthUUID != uuid) {
		respondError(w, http.StatusForbidden, "Not allowed for this user")
		return
	}
	list, err := r.notifications.List(req.Context(), uuid)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) createNotification(w http.ResponseWriter, req *http.Request) {
	var body NotificationRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if body.UserID == "" || body.Message == "" {
		respondError(w, http.StatusBadRequest, "UserID and Message are required")
		return
	}
	n, err := r.notifications.Create(req.Context(), body.UserID, body.Message, body.Type)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, n)
}

func (r *Router) markNotificationRead(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	n, err := r.notifications.MarkRead(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Notification not found")
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (r *Router) deleteNotification(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.notifications.Delete(req.Context(), id); err != nil {
		respondFailure(w, err, "Notification not found")
		return
	}
	respondMessage(w, http.StatusOK, "Notification deleted")
}
