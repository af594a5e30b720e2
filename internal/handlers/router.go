package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/symmetrixs/edaago/internal/ai"
	"github.com/symmetrixs/edaago/internal/buildinfo"
	"github.com/symmetrixs/edaago/internal/convert"
	"github.com/symmetrixs/edaago/internal/detection"
	"github.com/symmetrixs/edaago/internal/middleware"
	"github.com/symmetrixs/edaago/internal/services/inspection"
	"github.com/symmetrixs/edaago/internal/services/notify"
	"github.com/symmetrixs/edaago/internal/services/photo"
	"github.com/symmetrixs/edaago/internal/services/report"
	"github.com/symmetrixs/edaago/internal/services/stats"
	"github.com/symmetrixs/edaago/internal/services/team"
	"github.com/symmetrixs/edaago/internal/services/users"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/websocket"
)

// maxUpload bounds multipart bodies (photos, DOCX reports)
const maxUpload = 32 << 20

// DetectionProxy is the detector surface exposed under /ai-detection
type DetectionProxy interface {
	detection.Detector
	DetectFile(ctx context.Context, filename string, data []byte) detection.Outcome
	Health(ctx context.Context) (map[string]interface{}, error)
	BaseURL() string
}

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Store         store.Store
	Users         *users.Service
	Inspections   *inspection.Service
	Reports       *report.Service
	Photos        *photo.Service
	Teams         *team.Service
	Notifications *notify.Service
	Stats         *stats.Service
	Summarizer    *ai.Summarizer
	Detector      DetectionProxy
	Hub           *websocket.Hub
	// Files serves locally stored blobs under /files/. Nil when blobs live in S3.
	Files          http.Handler
	JWTSecret      string
	AllowedOrigins []string
	// PublicBaseURL is the frontend root used for links printed on documents
	PublicBaseURL string
}

// Router wraps the mux router and the services behind it
type Router struct {
	*mux.Router
	deps Deps

	store         store.Store
	users         *users.Service
	inspections   *inspection.Service
	reports       *report.Service
	photos        *photo.Service
	teams         *team.Service
	notifications *notify.Service
	stats         *stats.Service
	summarizer    *ai.Summarizer
	detector      DetectionProxy
	hub           *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	r := &Router{
		Router:        mux.NewRouter(),
		deps:          deps,
		store:         deps.Store,
		users:         deps.Users,
		inspections:   deps.Inspections,
		reports:       deps.Reports,
		photos:        deps.Photos,
		teams:         deps.Teams,
		notifications: deps.Notifications,
		stats:         deps.Stats,
		summarizer:    deps.Summarizer,
		detector:      deps.Detector,
		hub:           deps.Hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.HandleFunc("/api/status", r.getStatus).Methods("GET")

	// Public auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// The websocket authenticates with ?token= since browsers cannot set headers on upgrade
	r.HandleFunc("/ws", r.serveWs).Methods("GET")

	if deps.Files != nil {
		r.PathPrefix("/files/").Handler(http.StripPrefix("/files", deps.Files))
	}

	requireAuth := middleware.Auth(deps.JWTSecret)
	protected := func(prefix string) *mux.Router {
		sub := r.PathPrefix(prefix).Subrouter()
		sub.Use(requireAuth)
		return sub
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	profile := protected("/auth/profile")
	profile.HandleFunc("/{id:[0-9]+}", r.getProfile).Methods("GET")
	profile.HandleFunc("/{id:[0-9]+}", r.updateProfile).Methods("PUT")

	vessel := protected("/vessel")
	vessel.HandleFunc("", r.listVessels).Methods("GET")
	vessel.HandleFunc("", r.createVessel).Methods("POST")
	vessel.HandleFunc("/{id:[0-9]+}", r.getVessel).Methods("GET")
	vessel.HandleFunc("/{id:[0-9]+}", r.updateVessel).Methods("PUT")
	vessel.HandleFunc("/{id:[0-9]+}", r.deleteVessel).Methods("DELETE")

	inspector := protected("/inspector")
	inspector.HandleFunc("", r.listInspectors).Methods("GET")
	inspector.HandleFunc("", r.createInspector).Methods("POST")
	inspector.HandleFunc("/{id:[0-9]+}", r.getInspector).Methods("GET")
	inspector.HandleFunc("/{id:[0-9]+}", r.updateInspector).Methods("PUT")
	inspector.HandleFunc("/{id:[0-9]+}/stats", r.inspectorStats).Methods("GET")

	admin := protected("/admin")
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/stats", r.dashboardStats).Methods("GET")
	admin.HandleFunc("/stats/equipment", r.equipmentStats).Methods("GET")
	admin.HandleFunc("/approve_report", r.quickApprove).Methods("POST")
	admin.HandleFunc("/users/all", r.listUsers).Methods("GET")
	admin.HandleFunc("/users", r.createUser).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}", r.deleteUser).Methods("DELETE")
	admin.HandleFunc("", r.listAdmins).Methods("GET")
	admin.HandleFunc("", r.createAdmin).Methods("POST")
	admin.HandleFunc("/{id:[0-9]+}", r.getAdmin).Methods("GET")
	admin.HandleFunc("/{id:[0-9]+}", r.updateAdmin).Methods("PUT")

	insp := protected("/inspection")
	insp.HandleFunc("", r.listInspections).Methods("GET")
	insp.HandleFunc("", r.createInspection).Methods("POST")
	insp.HandleFunc("/user/{id:[0-9]+}", r.listInspectionsByUser).Methods("GET")
	insp.HandleFunc("/{id:[0-9]+}", r.getInspection).Methods("GET")
	insp.HandleFunc("/{id:[0-9]+}", r.updateInspection).Methods("PUT")
	insp.HandleFunc("/{id:[0-9]+}", r.deleteInspection).Methods("DELETE")
	insp.HandleFunc("/{id:[0-9]+}/complete", r.completeInspection).Methods("POST")
	insp.HandleFunc("/{id:[0-9]+}/ai-summary", r.draftSummary).Methods("POST")

	ph := protected("/photo")
	ph.HandleFunc("", r.createPhoto).Methods("POST")
	ph.HandleFunc("/upload", r.uploadPhoto).Methods("POST")
	ph.HandleFunc("/save-canvas-annotation", r.saveCanvas).Methods("POST")
	ph.HandleFunc("/inspection/{id:[0-9]+}", r.listPhotos).Methods("GET")
	ph.HandleFunc("/all/{id:[0-9]+}", r.deleteAllPhotos).Methods("DELETE")
	ph.HandleFunc("/batch-detect/{id:[0-9]+}", r.batchDetect).Methods("POST")
	ph.HandleFunc("/redetect/{id:[0-9]+}", r.redetect).Methods("POST")
	ph.HandleFunc("/remove-ai/{id:[0-9]+}", r.removeAI).Methods("DELETE")
	ph.HandleFunc("/remove-canvas/{id:[0-9]+}", r.removeCanvas).Methods("DELETE")
	ph.HandleFunc("/{id:[0-9]+}", r.getPhoto).Methods("GET")
	ph.HandleFunc("/{id:[0-9]+}", r.updatePhoto).Methods("PUT")
	ph.HandleFunc("/{id:[0-9]+}", r.deletePhoto).Methods("DELETE")

	finding := protected("/finding")
	finding.HandleFunc("", r.createFinding).Methods("POST")
	finding.HandleFunc("", r.listFindings).Methods("GET")
	finding.HandleFunc("/{id:[0-9]+}", r.getFinding).Methods("GET")
	finding.HandleFunc("/{id:[0-9]+}", r.updateFinding).Methods("PUT")
	finding.HandleFunc("/{id:[0-9]+}", r.deleteFinding).Methods("DELETE")

	rec := protected("/recommendation")
	rec.HandleFunc("", r.createRecommendation).Methods("POST")
	rec.HandleFunc("", r.listRecommendations).Methods("GET")
	rec.HandleFunc("/{id:[0-9]+}", r.getRecommendation).Methods("GET")
	rec.HandleFunc("/{id:[0-9]+}", r.updateRecommendation).Methods("PUT")
	rec.HandleFunc("/{id:[0-9]+}", r.deleteRecommendation).Methods("DELETE")

	rep := protected("/report")
	rep.HandleFunc("", r.createReport).Methods("POST")
	rep.HandleFunc("", r.listReports).Methods("GET")
	rep.HandleFunc("/upload", r.uploadReportFile).Methods("POST")
	rep.HandleFunc("/convert", r.convertReport).Methods("POST")
	rep.HandleFunc("/inspector/{id:[0-9]+}", r.listReportsByInspector).Methods("GET")
	rep.HandleFunc("/{id:[0-9]+}", r.getReport).Methods("GET")
	rep.HandleFunc("/{id:[0-9]+}", r.updateReport).Methods("PUT")
	rep.HandleFunc("/{id:[0-9]+}", r.deleteReport).Methods("DELETE")
	rep.Handle("/{id:[0-9]+}/approve-upload", adminOnly(r.approveUpload)).Methods("POST")
	rep.Handle("/{id:[0-9]+}/revert-approval", adminOnly(r.revertApproval)).Methods("PUT")
	rep.HandleFunc("/{id:[0-9]+}/summary.pdf", r.summaryPDF).Methods("GET")

	tm := protected("/team")
	tm.HandleFunc("", r.createTeam).Methods("POST")
	tm.HandleFunc("/member", r.addTeamMember).Methods("POST")
	tm.HandleFunc("/member/{team:[0-9]+}/{user:[0-9]+}", r.removeTeamMember).Methods("DELETE")
	tm.HandleFunc("/inspection/{id:[0-9]+}", r.teamByInspection).Methods("GET")
	tm.HandleFunc("/shared/{id:[0-9]+}", r.sharedInspections).Methods("GET")
	tm.HandleFunc("/{id:[0-9]+}/members", r.teamMembers).Methods("GET")

	notif := protected("/notification")
	notif.HandleFunc("", r.createNotification).Methods("POST")
	notif.HandleFunc("/{id:[0-9]+}/read", r.markNotificationRead).Methods("PUT")
	notif.HandleFunc("/{id:[0-9]+}", r.deleteNotification).Methods("DELETE")
	notif.HandleFunc("/{uuid}", r.listNotifications).Methods("GET")

	det := protected("/ai-detection")
	det.HandleFunc("/health", r.detectorHealth).Methods("GET")
	det.HandleFunc("/test-connection", r.detectorTestConnection).Methods("GET")
	det.HandleFunc("/defect-types", r.defectTypes).Methods("GET")
	det.HandleFunc("/detect-single", r.detectSingle).Methods("POST")
	det.HandleFunc("/detect-by-url", r.detectByURL).Methods("POST")
	det.HandleFunc("/detect-batch", r.detectBatch).Methods("POST")

	return r
}

// Handler returns the router wrapped with CORS and path normalisation
func (r *Router) Handler() http.Handler {
	c := cors.Handler(cors.Options{
		AllowedOrigins:   r.deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !slices.Contains(r.deps.AllowedOrigins, "*"),
		MaxAge:           300,
	})
	return c(middleware.TrimTrailingSlash(r))
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns build information of the running binary
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "running",
		"build_time":  buildinfo.BuildTime,
		"commit_time": buildinfo.CommitTime,
		"commit":      buildinfo.CommitHash,
		"started_at":  buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"detail": message,
	})
}

// respondMessage sends {"message": msg}
func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inspection.ErrInvalidTransition),
		errors.Is(err, photo.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, team.ErrAlreadyMember),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, inspection.ErrInvalidInput),
		errors.Is(err, notify.ErrInvalidType),
		errors.Is(err, photo.ErrInvalidImage),
		errors.Is(err, photo.ErrNoPhotos),
		errors.Is(err, report.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ai.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, convert.ErrConversion):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// respondFailure reports err with its mapped status. notFound replaces the
// message of a 404 so clients see which resource was missing.
func respondFailure(w http.ResponseWriter, err error, notFound string) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusNotFound && notFound != "" {
		detail = notFound
	}
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %v", err)
	}
	respondError(w, status, detail)
}

// decodeJSON reads the request body into v
func decodeJSON(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// pathID parses a numeric route variable
func pathID(w http.ResponseWriter, req *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(mux.Vars(req)[name], 10, 64)
	if err != nil || n == 0 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return uint(n), true
}

// upload is one file from a multipart form
type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// readUpload reads the multipart file field
func readUpload(w http.ResponseWriter, req *http.Request, field string) (*upload, bool) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUpload)
	file, header, err := req.FormFile(field)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Missing file field %q", field))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload")
		return nil, false
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "Uploaded file is empty")
		return nil, false
	}
	return &upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// caller returns the authenticated principal of the request
func caller(req *http.Request) *middleware.Principal {
	return middleware.FromContext(req.Context())
}

// allowSelf lets admins through and otherwise requires the caller to be userID
func allowSelf(w http.ResponseWriter, req *http.Request, userID uint) bool {
	p := caller(req)
	if p.IsAdmin() || (p != nil && p.UserID == userID) {
		return true
	}
	respondError(w, http.StatusForbidden, "Not allowed for this user")
	return false
}
