package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/models"
)

// Equipment is exposed as "vessel" to the frontend

func (r *Router) listVessels(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListEquipment(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getVessel(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	e, err := r.store.GetEquipment(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Vessel not found")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (r *Router) createVessel(w http.ResponseWriter, req *http.Request) {
	var e models.Equipment
	if !decodeJSON(w, req, &e) {
		return
	}
	if e.EquipDescription == "" {
		respondError(w, http.StatusBadRequest, "EquipDescription is required")
		return
	}
	e.EquipID = 0
	if err := r.store.CreateEquipment(req.Context(), &e); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Vessel added successfully",
		"data":    e,
	})
}

func (r *Router) updateVessel(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var patch models.EquipmentPatch
	if !decodeJSON(w, req, &patch) {
		return
	}
	e, err := r.store.GetEquipment(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Vessel not found")
		return
	}
	patch.Apply(e)
	if err := r.store.SaveEquipment(req.Context(), e); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Vessel updated successfully",
		"data":    e,
	})
}

func (r *Router) deleteVessel(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.store.DeleteEquipment(req.Context(), id); err != nil {
		respondFailure(w, err, "Vessel not found")
		return
	}
	respondMessage(w, http.StatusOK, "Vessel deleted successfully")
}
