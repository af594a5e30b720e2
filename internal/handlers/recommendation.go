package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/models"
)

// createRecommendation stores a recommendation. "nil" maps to the shared
// placeholder row instead of a new one.
func (r *Router) createRecommendation(w http.ResponseWriter, req *http.Request) {
	var body NarrativeRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if isNil(body.Description) {
		respondJSON(w, http.StatusCreated, models.NilRecommendation)
		return
	}
	rec := &models.Recommendation{Description: body.Description}
	if err := r.store.CreateRecommendation(req.Context(), rec); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (r *Router) listRecommendations(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListRecommendations(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getRecommendation(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	rec, err := r.store.GetRecommendation(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Recommendation not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (r *Router) updateRecommendation(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var body NarrativeRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if err := r.store.UpdateRecommendation(req.Context(), id, body.Description); err != nil {
		respondFailure(w, err, "Recommendation not found")
		return
	}
	respondJSON(w, http.StatusOK, models.Recommendation{RecommendID: id, Description: body.Description})
}

func (r *Router) deleteRecommendation(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.store.DeleteRecommendation(req.Context(), id); err != nil {
		respondFailure(w, err, "Recommendation not found")
		return
	}
	respondMessage(w, http.StatusOK, "Recommendation deleted successfully")
}
