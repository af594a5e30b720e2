// Package inspection implements the inspection lifecycle: creation, field updates,
// completion with the equipment date projection, and cascading deletion.
package inspection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
)

var (
	// ErrInvalidTransition is returned when a dedicated action does not apply to the current status
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidInput is returned for malformed inspection data
	ErrInvalidInput = errors.New("invalid inspection data")
)

// inspectionInterval is the gap between an inspection and the next one due
const inspectionInterval = 365 * 24 * time.Hour

// Service manages inspections
type Service struct {
	store store.Store
}

// NewService creates an inspection service
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

func validStatus(s models.InspectionStatus) bool {
	switch s {
	case models.StatusPending, models.StatusCompleted, models.StatusApproved:
		return true
	}
	return false
}

func validDate(d string) bool {
	_, err := time.Parse(models.DateLayout, d)
	return err == nil
}

// NextInspectionDate returns the date the next inspection is due after reportDate
func NextInspectionDate(reportDate string) (string, error) {
	d, err := time.Parse(models.DateLayout, reportDate)
	if err != nil {
		return "", fmt.Errorf("%w: report date %q", ErrInvalidInput, reportDate)
	}
	return d.Add(inspectionInterval).Format(models.DateLayout), nil
}

// Create validates and stores a new inspection. Status defaults to Pending.
func (s *Service) Create(ctx context.Context, i *models.Inspection) error {
	if i.EquipID == 0 || i.UserIDInspector == 0 || i.ReportNo == "" {
		return fmt.Errorf("%w: EquipID, UserID_Inspector and ReportNo are required", ErrInvalidInput)
	}
	if !validDate(i.ReportDate) {
		return fmt.Errorf("%w: ReportDate must be YYYY-MM-DD", ErrInvalidInput)
	}
	if i.Status == "" {
		i.Status = models.StatusPending
	}
	if !validStatus(i.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, i.Status)
	}
	if err := s.store.CreateInspection(ctx, i); err != nil {
		return fmt.Errorf("failed to create inspection: %w", err)
	}
	return nil
}

// Get returns one inspection
func (s *Service) Get(ctx context.Context, id uint) (*models.Inspection, error) {
	return s.store.GetInspection(ctx, id)
}

// List returns inspections with their equipment, newest first
func (s *Service) List(ctx context.Context, f store.InspectionFilter) ([]models.Inspection, error) {
	f.WithRelations = true
	return s.store.ListInspections(ctx, f)
}

// Update writes the set fields of the patch. It does not guard status
// transitions; a Status of exactly Completed also projects the equipment's
// inspection dates, best-effort.
func (s *Service) Update(ctx context.Context, id uint, patch models.InspectionPatch) (*models.Inspection, error) {
	if patch.ReportDate != nil && !validDate(*patch.ReportDate) {
		return nil, fmt.Errorf("%w: ReportDate must be YYYY-MM-DD", ErrInvalidInput)
	}
	if patch.Status != nil && !validStatus(models.InspectionStatus(*patch.Status)) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}

	if err := s.store.UpdateInspection(ctx, id, patch.Columns()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update inspection %d: %w", id, err)
	}
	i, err := s.store.GetInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Inspection %d updated", id)

	if patch.Status != nil && models.InspectionStatus(*patch.Status) == models.StatusCompleted {
		s.projectEquipmentDates(ctx, i)
	}
	return i, nil
}

// Complete moves a Pending inspection to Completed and projects the equipment dates
func (s *Service) Complete(ctx context.Context, id uint) (*models.Inspection, error) {
	i, err := s.store.GetInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	if i.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: inspection %d is %s", ErrInvalidTransition, id, i.Status)
	}
	swapped, err := s.store.SwapInspectionStatus(ctx, id, models.StatusPending, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete inspection %d: %w", id, err)
	}
	if !swapped {
		return nil, fmt.Errorf("%w: inspection %d is no longer %s", ErrInvalidTransition, id, models.StatusPending)
	}
	i.Status = models.StatusCompleted
	s.projectEquipmentDates(ctx, i)
	return i, nil
}

// projectEquipmentDates sets the equipment's last inspection to the report date
// and the next one a year later. Failures are logged only.
func (s *Service) projectEquipmentDates(ctx context.Context, i *models.Inspection) {
	if i.EquipID == 0 || i.ReportDate == "" {
		return
	}
	next, err := NextInspectionDate(i.ReportDate)
	if err != nil {
		log.Printf("⚠️ Failed to update equipment dates: %v", err)
		return
	}
	if err := s.store.SetEquipmentDates(ctx, i.EquipID, i.ReportDate, next); err != nil {
		log.Printf("⚠️ Failed to update equipment dates: %v", err)
		return
	}
	log.Printf("📅 Updated Equipment %d: Last=%s, Next=%s", i.EquipID, i.ReportDate, next)
}

// Delete removes an inspection with everything that hangs off it
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.GetInspection(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteInspectionCascade(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inspection %d: %w", id, err)
	}
	log.Printf("🗑️ Inspection %d deleted", id)
	return nil
}
