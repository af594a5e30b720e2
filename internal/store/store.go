// Package store is the relational data access layer. Services depend on the
// Store interface; GormStore is the production implementation.
package store

import (
	"context"
	"errors"

	"github.com/symmetrixs/edaago/internal/models"
)

var (
	// ErrNotFound is returned when the addressed row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique row already exists
	ErrAlreadyExists = errors.New("record already exists")
)

// InspectionFilter narrows inspection listings and counts. Zero fields do not filter.
type InspectionFilter struct {
	InspectorID *uint
	IDs         []uint
	Statuses    []models.InspectionStatus
	DateFrom    string
	DateTo      string
	// WithRelations preloads Equipment, Inspector and Report
	WithRelations bool
}

// Store is the data access contract used by the services and handlers
type Store interface {
	// Transaction runs fn against a transactional Store. fn's error rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByAuthUUID(ctx context.Context, authUUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uint) error

	CreateAdmin(ctx context.Context, a *models.Admin) error
	GetAdmin(ctx context.Context, userID uint) (*models.Admin, error)
	ListAdmins(ctx context.Context) ([]models.Admin, error)
	SaveAdmin(ctx context.Context, a *models.Admin) error

	CreateInspector(ctx context.Context, i *models.Inspector) error
	GetInspector(ctx context.Context, userID uint) (*models.Inspector, error)
	ListInspectors(ctx context.Context) ([]models.Inspector, error)
	SaveInspector(ctx context.Context, i *models.Inspector) error
	CountInspectors(ctx context.Context) (int64, error)

	CreateEquipment(ctx context.Context, e *models.Equipment) error
	GetEquipment(ctx context.Context, id uint) (*models.Equipment, error)
	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	SaveEquipment(ctx context.Context, e *models.Equipment) error
	DeleteEquipment(ctx context.Context, id uint) error
	SetEquipmentDates(ctx context.Context, id uint, last, next string) error

	CreateInspection(ctx context.Context, i *models.Inspection) error
	GetInspection(ctx context.Context, id uint) (*models.Inspection, error)
	ListInspections(ctx context.Context, f InspectionFilter) ([]models.Inspection, error)
	CountInspections(ctx context.Context, f InspectionFilter) (int64, error)
	// UpdateInspection writes only the given columns
	UpdateInspection(ctx context.Context, id uint, columns map[string]interface{}) error
	SetInspectionStatus(ctx context.Context, id uint, status models.InspectionStatus) error
	// SwapInspectionStatus moves the inspection from one status to another and
	// reports false when it was no longer in the from status
	SwapInspectionStatus(ctx context.Context, id uint, from, to models.InspectionStatus) (bool, error)
	// DeleteInspectionCascade removes the inspection with its team memberships,
	// teams, report, photos, findings and recommendations
	DeleteInspectionCascade(ctx context.Context, id uint) error

	CreatePhoto(ctx context.Context, p *models.PhotoReport) error
	GetPhoto(ctx context.Context, id uint) (*models.PhotoReport, error)
	// ListPhotos returns photos ordered by PhotoNumbering. An empty category lists all.
	ListPhotos(ctx context.Context, inspectionID uint, category string) ([]models.PhotoReport, error)
	// ListPhotosWithFindings returns photos of the given inspections that reference a Finding
	ListPhotosWithFindings(ctx context.Context, inspectionIDs []uint) ([]models.PhotoReport, error)
	SavePhoto(ctx context.Context, p *models.PhotoReport) error
	// UpdatePhoto writes only the given columns
	UpdatePhoto(ctx context.Context, id uint, columns map[string]interface{}) error
	DeletePhoto(ctx context.Context, id uint) error
	DeletePhotosByInspection(ctx context.Context, inspectionID uint) (int64, error)
	SetCanvasURL(ctx context.Context, photoID uint, url *string) error
	// ClearPhotoAI resets every AI-derived field of the photo
	ClearPhotoAI(ctx context.Context, photoID uint) error

	CreateFinding(ctx context.Context, f *models.Finding) error
	GetFinding(ctx context.Context, id uint) (*models.Finding, error)
	ListFindings(ctx context.Context) ([]models.Finding, error)
	UpdateFinding(ctx context.Context, id uint, description string) error
	DeleteFinding(ctx context.Context, id uint) error

	CreateRecommendation(ctx context.Context, r *models.Recommendation) error
	GetRecommendation(ctx context.Context, id uint) (*models.Recommendation, error)
	ListRecommendations(ctx context.Context) ([]models.Recommendation, error)
	UpdateRecommendation(ctx context.Context, id uint, description string) error
	DeleteRecommendation(ctx context.Context, id uint) error

	CreateReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, inspectionID uint) (*models.Report, error)
	// FirstOrCreateReport returns the report of the inspection, creating an empty one if missing
	FirstOrCreateReport(ctx context.Context, inspectionID uint) (*models.Report, error)
	// ListReports lists reports of the given inspections, all reports when ids is nil
	ListReports(ctx context.Context, inspectionIDs []uint, withRelations bool) ([]models.Report, error)
	// UpdateReport writes only the given columns of the inspection's report
	UpdateReport(ctx context.Context, inspectionID uint, columns map[string]interface{}) error
	DeleteReport(ctx context.Context, inspectionID uint) error

	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id uint) (*models.Team, error)
	GetTeamByInspection(ctx context.Context, inspectionID uint) (*models.Team, error)
	AddTeamMember(ctx context.Context, m *models.InspectorTeam) error
	GetTeamMember(ctx context.Context, teamID, userID uint) (*models.InspectorTeam, error)
	RemoveTeamMember(ctx context.Context, teamID, userID uint) error
	ListTeamMembers(ctx context.Context, teamID uint) ([]models.InspectorTeam, error)
	// SharedInspectionIDs returns inspections of every team the user belongs to
	SharedInspectionIDs(ctx context.Context, userID uint) ([]uint, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	// ListNotifications returns the user's notifications, newest first
	ListNotifications(ctx context.Context, authUUID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) (*models.Notification, error)
	DeleteNotification(ctx context.Context, id uint) error
}
