package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/symmetrixs/edaago/internal/models"
)

// CreateReport inserts a report. Only one report may exist per inspection.
func (s *GormStore) CreateReport(ctx context.Context, r *models.Report) error {
	if _, err := s.GetReport(ctx, r.InspectionID); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error
}

func (s *GormStore) GetReport(ctx context.Context, inspectionID uint) (*models.Report, error) {
	var r models.Report
	if err := s.first(ctx, &r, eq("InspectionID", inspectionID)); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) FirstOrCreateReport(ctx context.Context, inspectionID uint) (*models.Report, error) {
	r := models.Report{InspectionID: inspectionID}
	err := s.db.WithContext(ctx).Omit(clause.Associations).
		Where(eq("InspectionID", inspectionID)).
		FirstOrCreate(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) ListReports(ctx context.Context, inspectionIDs []uint, withRelations bool) ([]models.Report, error) {
	if inspectionIDs != nil && len(inspectionIDs) == 0 {
		return []models.Report{}, nil
	}
	q := s.db.WithContext(ctx)
	if inspectionIDs != nil {
		q = q.Where(in("InspectionID", inspectionIDs))
	}
	if withRelations {
		q = q.Preload("Inspection").Preload("Inspection.Equipment").Preload("Inspection.Inspector")
	}
	var list []models.Report
	err := q.Order(orderBy("InspectionID", true)).Find(&list).Error
	return list, err
}

func (s *GormStore) UpdateReport(ctx context.Context, inspectionID uint, columns map[string]interface{}) error {
	if len(columns) == 0 {
		_, err := s.GetReport(ctx, inspectionID)
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Report{}).Where(eq("InspectionID", inspectionID)).Updates(columns)
	return affected(res)
}

func (s *GormStore) DeleteReport(ctx context.Context, inspectionID uint) error {
	return affected(s.db.WithContext(ctx).Where(eq("InspectionID", inspectionID)).Delete(&models.Report{}))
}

// --- Teams ---

func (s *GormStore) CreateTeam(ctx context.Context, t *models.Team) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *GormStore) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	var t models.Team
	if err := s.first(ctx, &t, eq("TeamID", id)); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) GetTeamByInspection(ctx context.Context, inspectionID uint) (*models.Team, error) {
	var t models.Team
	err := s.db.WithContext(ctx).Where(eq("InspectionID", inspectionID)).
		Order(orderBy("TeamID", false)).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) AddTeamMember(ctx context.Context, m *models.InspectorTeam) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (s *GormStore) GetTeamMember(ctx context.Context, teamID, userID uint) (*models.InspectorTeam, error) {
	var m models.InspectorTeam
	if err := s.first(ctx, &m, eq("TeamID", teamID), eq("UserID", userID)); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) RemoveTeamMember(ctx context.Context, teamID, userID uint) error {
	return s.db.WithContext(ctx).Where(eq("TeamID", teamID)).Where(eq("UserID", userID)).
		Delete(&models.InspectorTeam{}).Error
}

func (s *GormStore) ListTeamMembers(ctx context.Context, teamID uint) ([]models.InspectorTeam, error) {
	var members []models.InspectorTeam
	err := s.db.WithContext(ctx).Preload("Inspector").Where(eq("TeamID", teamID)).Find(&members).Error
	return members, err
}

func (s *GormStore) SharedInspectionIDs(ctx context.Context, userID uint) ([]uint, error) {
	var teamIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.InspectorTeam{}).Where(eq("UserID", userID)).
		Pluck("TeamID", &teamIDs).Error; err != nil {
		return nil, err
	}
	if len(teamIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Team{}).Where(in("TeamID", teamIDs)).
		Distinct().Pluck("InspectionID", &ids).Error
	return ids, err
}

// --- Notifications ---

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormStore) ListNotifications(ctx context.Context, authUUID string) ([]models.Notification, error) {
	var list []models.Notification
	err := s.db.WithContext(ctx).Where(eq("UserID", authUUID)).
		Order(orderBy("CreatedAt", true)).Order(orderBy("NotificationID", true)).
		Find(&list).Error
	return list, err
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id uint) (*models.Notification, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).Where(eq("NotificationID", id)).
		Update("IsRead", true)
	if err := affected(res); err != nil {
		return nil, err
	}
	var n models.Notification
	if err := s.first(ctx, &n, eq("NotificationID", id)); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *GormStore) DeleteNotification(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Where(eq("NotificationID", id)).Delete(&models.Notification{}).Error
}
