// Package stats computes the dashboard figures for admins and inspectors.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/symmetrixs/edaago/internal/detection"
	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
)

var doneStatuses = []models.InspectionStatus{models.StatusCompleted, models.StatusApproved}

// Service computes statistics from the store
type Service struct {
	store store.Store
}

// NewService creates a statistics service
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) counts(ctx context.Context, base store.InspectionFilter) (*models.InspectionStats, error) {
	total, err := s.store.CountInspections(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("count inspections: %w", err)
	}

	pendingFilter := base
	pendingFilter.Statuses = []models.InspectionStatus{models.StatusPending}
	pending, err := s.store.CountInspections(ctx, pendingFilter)
	if err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}

	doneFilter := base
	doneFilter.Statuses = doneStatuses
	done, err := s.store.CountInspections(ctx, doneFilter)
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	return &models.InspectionStats{
		TotalInspections: total,
		PendingReports:   pending,
		CompletedReports: done,
	}, nil
}

// Dashboard returns the admin dashboard counts. Approved reports count as completed.
func (s *Service) Dashboard(ctx context.Context) (*models.InspectionStats, error) {
	st, err := s.counts(ctx, store.InspectionFilter{})
	if err != nil {
		return nil, err
	}
	inspectors, err := s.store.CountInspectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("count inspectors: %w", err)
	}
	st.ActiveInspectors = &inspectors
	return st, nil
}

// Inspector returns the counts of one inspector's own inspections
func (s *Service) Inspector(ctx context.Context, userID uint) (*models.InspectionStats, error) {
	return s.counts(ctx, store.InspectionFilter{InspectorID: &userID})
}

// EquipmentDefects counts photo findings per equipment, split by defect class.
// year restricts to inspections reported in that calendar year; a non-numeric
// year is ignored. Rows are ordered by total, highest first.
func (s *Service) EquipmentDefects(ctx context.Context, year string) ([]models.DefectStats, error) {
	equipment, err := s.store.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	if len(equipment) == 0 {
		return []models.DefectStats{}, nil
	}

	rows := make([]models.DefectStats, len(equipment))
	index := make(map[uint]int, len(equipment))
	for i, e := range equipment {
		rows[i] = models.DefectStats{Name: e.EquipDescription}
		index[e.EquipID] = i
	}

	filter := store.InspectionFilter{}
	if isYear(year) {
		filter.DateFrom = year + "-01-01"
		filter.DateTo = year + "-12-31"
	}
	inspections, err := s.store.ListInspections(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(inspections) == 0 {
		return rows, nil
	}

	equipOf := make(map[uint]uint, len(inspections))
	ids := make([]uint, 0, len(inspections))
	for _, i := range inspections {
		equipOf[i.InspectionID] = i.EquipID
		ids = append(ids, i.InspectionID)
	}

	photos, err := s.store.ListPhotosWithFindings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range photos {
		if p.Finding == nil || p.Finding.Description == "" {
			continue
		}
		idx, ok := index[equipOf[p.InspectionID]]
		if !ok {
			continue
		}
		row := &rows[idx]
		row.Total++
		switch detection.Classify(p.Finding.Description) {
		case detection.DefectCorrosion:
			row.Corrosion++
		case detection.DefectDents:
			row.Dents++
		case detection.DefectScratchMark:
			row.ScratchMark++
		case detection.DefectWeldingDefects:
			row.WeldingDefects++
		}
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Total > rows[b].Total })
	return rows, nil
}

func isYear(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
