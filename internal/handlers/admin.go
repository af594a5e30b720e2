package handlers

import (
	"net/http"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/report"
	"github.com/symmetrixs/edaago/internal/services/users"
)

func (r *Router) dashboardStats(w http.ResponseWriter, req *http.Request) {
	st, err := r.stats.Dashboard(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// equipmentStats counts findings per equipment, optionally for ?year=YYYY
func (r *Router) equipmentStats(w http.ResponseWriter, req *http.Request) {
	rows, err := r.stats.EquipmentDefects(req.Context(), req.URL.Query().Get("year"))
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// QuickApproveRequest approves a completed inspection without a signed document
type QuickApproveRequest struct {
	InspectionID uint   `json:"inspection_id"`
	AdminName    string `json:"admin_name"`
}

func (r *Router) quickApprove(w http.ResponseWriter, req *http.Request) {
	var body QuickApproveRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if body.InspectionID == 0 {
		respondError(w, http.StatusBadRequest, "inspection_id is required")
		return
	}

	in := report.ApproveInput{InspectionID: body.InspectionID, AdminName: body.AdminName}
	if p := caller(req); p != nil {
		in.AdminUserID = &p.UserID
	}
	if _, err := r.reports.Approve(req.Context(), in); err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondMessage(w, http.StatusOK, "Report approved and inspector notified")
}

func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	list, err := r.users.ListUsers(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	var body users.CreateUserInput
	if !decodeJSON(w, req, &body) {
		return
	}
	u, err := r.users.CreateUser(req.Context(), body)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User created successfully",
		"userId":  u.UserID,
	})
}

// deleteUser removes the account rows. Inspections and reports stay.
func (r *Router) deleteUser(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.users.DeleteUser(req.Context(), id); err != nil {
		respondFailure(w, err, "User not found")
		return
	}
	respondMessage(w, http.StatusOK, "User deleted")
}

func (r *Router) listAdmins(w http.ResponseWriter, req *http.Request) {
	list, err := r.users.ListAdmins(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getAdmin(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	a, err := r.users.GetAdmin(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Admin not found")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (r *Router) createAdmin(w http.ResponseWriter, req *http.Request) {
	var a models.Admin
	if !decodeJSON(w, req, &a) {
		return
	}
	if err := r.users.CreateAdmin(req.Context(), &a); err != nil {
		respondFailure(w, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Admin created successfully",
		"data":    a,
	})
}

func (r *Router) updateAdmin(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var patch models.ProfilePatch
	if !decodeJSON(w, req, &patch) {
		return
	}
	a, err := r.users.UpdateAdmin(req.Context(), id, patch)
	if err != nil {
		respondFailure(w, err, "Admin not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Admin updated successfully",
		"data":    a,
	})
}
