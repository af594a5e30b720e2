package handlers

import (
	"net/http"
	"strings"

	"github.com/symmetrixs/edaago/internal/models"
)

// NarrativeRequest is the body of finding and recommendation writes
type NarrativeRequest struct {
	Description string `json:"Description"`
}

func (r *Router) createFinding(w http.ResponseWriter, req *http.Request) {
	var body NarrativeRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	f := &models.Finding{Description: body.Description}
	if err := r.store.CreateFinding(req.Context(), f); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

func (r *Router) listFindings(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListFindings(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getFinding(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	f, err := r.store.GetFinding(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Finding not found")
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (r *Router) updateFinding(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var body NarrativeRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if err := r.store.UpdateFinding(req.Context(), id, body.Description); err != nil {
		respondFailure(w, err, "Finding not found")
		return
	}
	respondJSON(w, http.StatusOK, models.Finding{FindingID: id, Description: body.Description})
}

func (r *Router) deleteFinding(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.store.DeleteFinding(req.Context(), id); err != nil {
		respondFailure(w, err, "Finding not found")
		return
	}
	respondMessage(w, http.StatusOK, "Finding deleted successfully")
}

// isNil reports the placeholder description clients send for "no recommendation"
func isNil(description string) bool {
	d := strings.ToLower(strings.TrimSpace(description))
	return d == "nil" || d == "nil."
}
