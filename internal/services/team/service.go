// Package team manages inspector teams that share an inspection.
package team

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
)

// ErrAlreadyMember is returned when the user is already in the team
var ErrAlreadyMember = errors.New("user is already in this team")

// Notifier delivers best-effort notifications to a user
type Notifier interface {
	NotifyUser(ctx context.Context, userID uint, message string, typ models.NotificationType)
}

// Service manages teams and memberships
type Service struct {
	store    store.Store
	notifier Notifier
}

// NewService creates a team service
func NewService(s store.Store, n Notifier) *Service {
	return &Service{store: s, notifier: n}
}

// Create returns the team of the inspection, creating it when missing.
// created reports whether a new team was made.
func (s *Service) Create(ctx context.Context, inspectionID uint) (t *models.Team, created bool, err error) {
	if _, err := s.store.GetInspection(ctx, inspectionID); err != nil {
		return nil, false, err
	}
	existing, err := s.store.GetTeamByInspection(ctx, inspectionID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	t = &models.Team{InspectionID: inspectionID}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return nil, false, fmt.Errorf("failed to create team: %w", err)
	}
	return t, true, nil
}

// AddMember puts a user into a team and tells them about it
func (s *Service) AddMember(ctx context.Context, teamID, userID uint) (*models.InspectorTeam, error) {
	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetTeamMember(ctx, teamID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	m := &models.InspectorTeam{TeamID: teamID, UserID: userID}
	if err := s.store.AddTeamMember(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	reportNo := "Unknown"
	if insp, err := s.store.GetInspection(ctx, t.InspectionID); err == nil {
		reportNo = insp.ReportNo
	}
	s.notifier.NotifyUser(ctx, userID,
		fmt.Sprintf("You have been added to the team for Inspection %s.", reportNo),
		models.NotificationSuccess)

	log.Printf("👥 User %d added to team %d", userID, teamID)
	return m, nil
}

// RemoveMember takes a user out of a team. Removing a non-member succeeds.
func (s *Service) RemoveMember(ctx context.Context, teamID, userID uint) error {
	return s.store.RemoveTeamMember(ctx, teamID, userID)
}

// ByInspection returns the team of an inspection
func (s *Service) ByInspection(ctx context.Context, inspectionID uint) (*models.Team, error) {
	return s.store.GetTeamByInspection(ctx, inspectionID)
}

// Members lists the team's memberships with inspector details
func (s *Service) Members(ctx context.Context, teamID uint) ([]models.InspectorTeam, error) {
	return s.store.ListTeamMembers(ctx, teamID)
}

// Shared returns the inspections of every team the user belongs to, with their reports
func (s *Service) Shared(ctx context.Context, userID uint) ([]models.Inspection, error) {
	ids, err := s.store.SharedInspectionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Inspection{}, nil
	}
	return s.store.ListInspections(ctx, store.InspectionFilter{IDs: ids, WithRelations: true})
}
