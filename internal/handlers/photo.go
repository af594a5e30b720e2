package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/models"
)

func (r *Router) createPhoto(w http.ResponseWriter, req *http.Request) {
	var p models.PhotoReport
	if !decodeJSON(w, req, &p) {
		return
	}
	if p.InspectionID == 0 || p.PhotoURL == "" {
		respondError(w, http.StatusBadRequest, "InspectionID and PhotoURL are required")
		return
	}
	if _, err := r.store.GetInspection(req.Context(), p.InspectionID); err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	p.PhotoID = 0
	if err := r.store.CreatePhoto(req.Context(), &p); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// listPhotos returns an inspection's photos, optionally filtered by ?category
func (r *Router) listPhotos(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	list, err := r.store.ListPhotos(req.Context(), id, req.URL.Query().Get("category"))
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getPhoto(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	p, err := r.store.GetPhoto(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) updatePhoto(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var patch models.PhotoPatch
	if !decodeJSON(w, req, &patch) {
		return
	}
	if err := r.store.UpdatePhoto(req.Context(), id, patch.Columns()); err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	p, err := r.store.GetPhoto(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) deletePhoto(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.store.DeletePhoto(req.Context(), id); err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	respondMessage(w, http.StatusOK, "Photo deleted successfully")
}

func (r *Router) deleteAllPhotos(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	n, err := r.store.DeletePhotosByInspection(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All photos deleted successfully",
		"deleted": n,
	})
}

// uploadPhoto stores a multipart "file" and returns its public URL
func (r *Router) uploadPhoto(w http.ResponseWriter, req *http.Request) {
	up, ok := readUpload(w, req, "file")
	if !ok {
		return
	}
	url, err := r.photos.UploadImage(req.Context(), up.Name, up.Data, up.ContentType)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// batchDetect runs detection over the inspection's photos, optionally for one ?category
func (r *Router) batchDetect(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	res, err := r.photos.Run(req.Context(), id, req.URL.Query().Get("category"))
	if err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"processed": res.Processed,
		"results":   res.Results,
	})
}

func (r *Router) redetect(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	res, err := r.photos.Redetect(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":                res.Error == "",
		"photo_id":               res.PhotoID,
		"finding":                res.Finding,
		"recommendation":         res.Recommendation,
		"annotated_image_base64": res.AnnotatedImageBase64,
		"annotated_photo_url":    res.AnnotatedPhotoURL,
		"detection_count":        res.DetectionCount,
		"confidence":             res.Confidence,
		"placeholder":            res.Placeholder,
	})
}

// CanvasRequest links one drawn annotation to a group of photos
type CanvasRequest struct {
	InspectionID      uint   `json:"inspection_id"`
	GroupPhotoIDs     []uint `json:"group_photo_ids"`
	CanvasImageBase64 string `json:"canvas_image_base64"`
}

func (r *Router) saveCanvas(w http.ResponseWriter, req *http.Request) {
	var body CanvasRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if body.InspectionID == 0 {
		respondError(w, http.StatusBadRequest, "inspection_id is required")
		return
	}
	res, err := r.photos.SaveCanvas(req.Context(), body.InspectionID, body.GroupPhotoIDs, body.CanvasImageBase64)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"message":        "Canvas saved successfully",
		"canvas_url":     res.CanvasURL,
		"updated_photos": res.UpdatedPhotos,
		"photo_ids":      res.PhotoIDs,
	})
}

func (r *Router) removeAI(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.photos.Clear(req.Context(), id); err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "AI findings removed successfully",
		"photo_id": id,
	})
}

func (r *Router) removeCanvas(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.photos.RemoveCanvas(req.Context(), id); err != nil {
		respondFailure(w, err, "Photo not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Canvas removed successfully",
		"photo_id": id,
	})
}
