package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/symmetrixs/edaago/internal/models"
)

func (s *GormStore) CreateInspection(ctx context.Context, i *models.Inspection) error {
	if i.Status == "" {
		i.Status = models.StatusPending
	}
	return s.db.WithContext(ctx).Create(i).Error
}

func (s *GormStore) GetInspection(ctx context.Context, id uint) (*models.Inspection, error) {
	var i models.Inspection
	if err := s.first(ctx, &i, eq("InspectionID", id)); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *GormStore) filtered(ctx context.Context, f InspectionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Inspection{})
	if f.InspectorID != nil {
		q = q.Where(eq("UserID_Inspector", *f.InspectorID))
	}
	if f.IDs != nil {
		q = q.Where(in("InspectionID", f.IDs))
	}
	if len(f.Statuses) > 0 {
		q = q.Where(in("Status", f.Statuses))
	}
	if f.DateFrom != "" {
		q = q.Where(clause.Gte{Column: clause.Column{Name: "ReportDate"}, Value: f.DateFrom})
	}
	if f.DateTo != "" {
		q = q.Where(clause.Lte{Column: clause.Column{Name: "ReportDate"}, Value: f.DateTo})
	}
	return q
}

// ListInspections returns matching inspections, newest first
func (s *GormStore) ListInspections(ctx context.Context, f InspectionFilter) ([]models.Inspection, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []models.Inspection{}, nil
	}
	q := s.filtered(ctx, f)
	if f.WithRelations {
		q = q.Preload("Equipment").Preload("Inspector").Preload("Report")
	}
	var list []models.Inspection
	err := q.Order(orderBy("InspectionID", true)).Find(&list).Error
	return list, err
}

func (s *GormStore) CountInspections(ctx context.Context, f InspectionFilter) (int64, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return 0, nil
	}
	var n int64
	err := s.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (s *GormStore) UpdateInspection(ctx context.Context, id uint, columns map[string]interface{}) error {
	if len(columns) == 0 {
		_, err := s.GetInspection(ctx, id)
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Inspection{}).Where(eq("InspectionID", id)).Updates(columns)
	return affected(res)
}

func (s *GormStore) SetInspectionStatus(ctx context.Context, id uint, status models.InspectionStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Inspection{}).Where(eq("InspectionID", id)).
		Update("Status", string(status))
	return affected(res)
}

func (s *GormStore) SwapInspectionStatus(ctx context.Context, id uint, from, to models.InspectionStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Inspection{}).
		Where(eq("InspectionID", id)).Where(eq("Status", string(from))).
		Update("Status", string(to))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteInspectionCascade deletes dependants first so that no row is left
// pointing at a removed inspection
func (s *GormStore) DeleteInspectionCascade(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teamIDs []uint
		if err := tx.Model(&models.Team{}).Where(eq("InspectionID", id)).Pluck("TeamID", &teamIDs).Error; err != nil {
			return fmt.Errorf("load teams: %w", err)
		}
		if len(teamIDs) > 0 {
			if err := tx.Where(in("TeamID", teamIDs)).Delete(&models.InspectorTeam{}).Error; err != nil {
				return fmt.Errorf("delete team members: %w", err)
			}
			if err := tx.Where(in("TeamID", teamIDs)).Delete(&models.Team{}).Error; err != nil {
				return fmt.Errorf("delete teams: %w", err)
			}
		}

		var photos []models.PhotoReport
		if err := tx.Select("FindingID", "RecommendID").Where(eq("InspectionID", id)).Find(&photos).Error; err != nil {
			return fmt.Errorf("load photos: %w", err)
		}
		var findingIDs, recommendIDs []uint
		for _, p := range photos {
			if p.FindingID != nil {
				findingIDs = append(findingIDs, *p.FindingID)
			}
			if p.RecommendID != nil {
				recommendIDs = append(recommendIDs, *p.RecommendID)
			}
		}

		if err := tx.Where(eq("InspectionID", id)).Delete(&models.Report{}).Error; err != nil {
			return fmt.Errorf("delete report: %w", err)
		}
		if err := tx.Where(eq("InspectionID", id)).Delete(&models.PhotoReport{}).Error; err != nil {
			return fmt.Errorf("delete photos: %w", err)
		}
		if len(findingIDs) > 0 {
			if err := tx.Where(in("FindingID", findingIDs)).Delete(&models.Finding{}).Error; err != nil {
				return fmt.Errorf("delete findings: %w", err)
			}
		}
		if len(recommendIDs) > 0 {
			if err := tx.Where(in("RecommendID", recommendIDs)).Delete(&models.Recommendation{}).Error; err != nil {
				return fmt.Errorf("delete recommendations: %w", err)
			}
		}

		return affected(tx.Where(eq("InspectionID", id)).Delete(&models.Inspection{}))
	})
}
