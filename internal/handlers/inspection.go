package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
)

func (r *Router) listInspections(w http.ResponseWriter, req *http.Request) {
	list, err := r.inspections.List(req.Context(), store.InspectionFilter{})
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) listInspectionsByUser(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	list, err := r.inspections.List(req.Context(), store.InspectionFilter{InspectorID: &id})
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getInspection(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	i, err := r.inspections.Get(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondJSON(w, http.StatusOK, i)
}

func (r *Router) createInspection(w http.ResponseWriter, req *http.Request) {
	var i models.Inspection
	if !decodeJSON(w, req, &i) {
		return
	}
	i.InspectionID = 0
	if i.UserIDInspector == 0 {
		if p := caller(req); p != nil {
			i.UserIDInspector = p.UserID
		}
	}
	if err := r.inspections.Create(req.Context(), &i); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, i)
}

// updateInspection is the generic field-mask write. It does not guard status
// changes; use the complete action for a checked transition.
func (r *Router) updateInspection(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var patch models.InspectionPatch
	if !decodeJSON(w, req, &patch) {
		return
	}
	i, err := r.inspections.Update(req.Context(), id, patch)
	if err != nil {
		respondFailure(w, err, "Inspection not found or update failed")
		return
	}
	respondJSON(w, http.StatusOK, i)
}

func (r *Router) completeInspection(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	i, err := r.inspections.Complete(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondJSON(w, http.StatusOK, i)
}

func (r *Router) deleteInspection(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.inspections.Delete(req.Context(), id); err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondMessage(w, http.StatusOK, "Inspection and all associated data (Teams, Reports, Photos, Findings, Recommendations) deleted successfully")
}

// draftSummary asks the language model for narrative findings. Nothing is saved;
// the inspector edits the draft and submits it through the normal update.
func (r *Router) draftSummary(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if !r.summarizer.Available() {
		respondError(w, http.StatusServiceUnavailable, "AI summary is not configured")
		return
	}

	list, err := r.store.ListInspections(req.Context(), store.InspectionFilter{IDs: []uint{id}, WithRelations: true})
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	if len(list) == 0 {
		respondError(w, http.StatusNotFound, "Inspection not found")
		return
	}
	photos, err := r.store.ListPhotos(req.Context(), id, "")
	if err != nil {
		respondFailure(w, err, "")
		return
	}

	summary, err := r.summarizer.Draft(req.Context(), &list[0], photos)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
