package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/models"
)

func (r *Router) listInspectors(w http.ResponseWriter, req *http.Request) {
	list, err := r.users.ListInspectors(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getInspector(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	i, err := r.users.GetInspector(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Inspector not found")
		return
	}
	respondJSON(w, http.StatusOK, i)
}

func (r *Router) createInspector(w http.ResponseWriter, req *http.Request) {
	var i models.Inspector
	if !decodeJSON(w, req, &i) {
		return
	}
	if err := r.users.CreateInspector(req.Context(), &i); err != nil {
		respondFailure(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Inspector created successfully",
		"data":    i,
	})
}

func (r *Router) updateInspector(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok || !allowSelf(w, req, id) {
		return
	}
	var patch models.ProfilePatch
	if !decodeJSON(w, req, &patch) {
		return
	}
	i, err := r.users.UpdateInspector(req.Context(), id, patch)
	if err != nil {
		respondFailure(w, err, "Inspector not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Inspector updated successfully",
		"data":    i,
	})
}

func (r *Router) inspectorStats(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	st, err := r.stats.Inspector(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, st)
}
