package handlers

import (
	"net/http"
)

// TeamRequest creates the team of an inspection
type TeamRequest struct {
	InspectionID uint `json:"InspectionID"`
}

// MemberRequest adds a user to a team
type MemberRequest struct {
	TeamID uint `json:"TeamID"`
	UserID uint `json:"UserID"`
}

// createTeam is idempotent: an inspection's existing team is returned as is
func (r *Router) createTeam(w http.ResponseWriter, req *http.Request) {
	var body TeamRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	t, created, err := r.teams.Create(req.Context(), body.InspectionID)
	if err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, t)
}

func (r *Router) addTeamMember(w http.ResponseWriter, req *http.Request) {
	var body MemberRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	m, err := r.teams.AddMember(req.Context(), body.TeamID, body.UserID)
	if err != nil {
		respondFailure(w, err, "Team or user not found")
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (r *Router) removeTeamMember(w http.ResponseWriter, req *http.Request) {
	teamID, ok := pathID(w, req, "team")
	if !ok {
		return
	}
	userID, ok := pathID(w, req, "user")
	if !ok {
		return
	}
	if err := r.teams.RemoveMember(req.Context(), teamID, userID); err != nil {
		respondFailure(w, err, "")
		return
	}
	respondMessage(w, http.StatusOK, "Member removed successfully")
}

func (r *Router) teamByInspection(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	t, err := r.teams.ByInspection(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Team not found for this inspection")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) teamMembers(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	list, err := r.teams.Members(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// sharedInspections lists the inspections of every team the user is in
func (r *Router) sharedInspections(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	list, err := r.teams.Shared(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}
