package handlers

import (
	"net/http"
	"strings"

	"github.com/symmetrixs/edaago/internal/detection"
)

func (r *Router) detectorHealth(w http.ResponseWriter, req *http.Request) {
	status, err := r.detector.Health(req.Context())
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":       "unhealthy",
			"hf_space_url": r.detector.BaseURL(),
			"error":        err.Error(),
			"connection":   "failed",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"hf_space_url":    r.detector.BaseURL(),
		"hf_space_status": status,
		"connection":      "ok",
	})
}

// detectorTestConnection reports reachability as a plain success flag
func (r *Router) detectorTestConnection(w http.ResponseWriter, req *http.Request) {
	if _, err := r.detector.Health(req.Context()); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Cannot reach detection service",
			"error":   err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Detection service reachable",
		"url":     r.detector.BaseURL(),
	})
}

func (r *Router) defectTypes(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"defect_types": detection.DefectTypes(),
		"mappings":     detection.Catalog,
	})
}

// detectSingle forwards a multipart "file" to the detector without storing anything
func (r *Router) detectSingle(w http.ResponseWriter, req *http.Request) {
	up, ok := readUpload(w, req, "file")
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, r.detector.DetectFile(req.Context(), up.Name, up.Data))
}

// detectByURL accepts photo_url as query parameter or form field
func (r *Router) detectByURL(w http.ResponseWriter, req *http.Request) {
	url := strings.TrimSpace(req.URL.Query().Get("photo_url"))
	if url == "" {
		url = strings.TrimSpace(req.FormValue("photo_url"))
	}
	if url == "" {
		respondError(w, http.StatusBadRequest, "photo_url is required")
		return
	}
	respondJSON(w, http.StatusOK, r.detector.Detect(req.Context(), detection.PhotoRef{URL: url}))
}

// BatchDetectRequest pairs photo IDs with their URLs by position
type BatchDetectRequest struct {
	PhotoIDs  []uint   `json:"photo_ids"`
	PhotoURLs []string `json:"photo_urls"`
	Category  string   `json:"category"`
}

func (r *Router) detectBatch(w http.ResponseWriter, req *http.Request) {
	var body BatchDetectRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if len(body.PhotoURLs) == 0 {
		respondError(w, http.StatusBadRequest, "photo_urls is required")
		return
	}
	if len(body.PhotoIDs) != 0 && len(body.PhotoIDs) != len(body.PhotoURLs) {
		respondError(w, http.StatusBadRequest, "photo_ids and photo_urls must have the same length")
		return
	}

	refs := make([]detection.PhotoRef, len(body.PhotoURLs))
	for i, u := range body.PhotoURLs {
		refs[i] = detection.PhotoRef{URL: u}
		if len(body.PhotoIDs) > 0 {
			refs[i].ID = body.PhotoIDs[i]
		}
	}
	results := r.detector.DetectBatch(req.Context(), refs, body.Category)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"processed": len(results),
		"results":   results,
	})
}
