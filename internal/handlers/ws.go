package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/middleware"
	"github.com/symmetrixs/edaago/internal/websocket"
)

// serveWs registers a notification socket for the user behind ?token=
func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	p, err := middleware.ParseToken(req.URL.Query().Get("token"), r.deps.JWTSecret)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}
	websocket.ServeWs(r.hub, w, req, p.AuthUUID)
}
