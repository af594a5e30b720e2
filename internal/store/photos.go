package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/symmetrixs/edaago/internal/models"
)

func (s *GormStore) CreatePhoto(ctx context.Context, p *models.PhotoReport) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (s *GormStore) GetPhoto(ctx context.Context, id uint) (*models.PhotoReport, error) {
	var p models.PhotoReport
	if err := s.first(ctx, &p, eq("PhotoID", id)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) ListPhotos(ctx context.Context, inspectionID uint, category string) ([]models.PhotoReport, error) {
	q := s.db.WithContext(ctx).
		Preload("Finding").
		Preload("Recommendation").
		Where(eq("InspectionID", inspectionID))
	if category != "" {
		q = q.Where(eq("Category", category))
	}
	var photos []models.PhotoReport
	err := q.Order(orderBy("PhotoNumbering", false)).Order(orderBy("PhotoID", false)).Find(&photos).Error
	return photos, err
}

func (s *GormStore) ListPhotosWithFindings(ctx context.Context, inspectionIDs []uint) ([]models.PhotoReport, error) {
	if len(inspectionIDs) == 0 {
		return []models.PhotoReport{}, nil
	}
	var photos []models.PhotoReport
	err := s.db.WithContext(ctx).
		Preload("Finding").
		Where(in("InspectionID", inspectionIDs)).
		Where(clause.Neq{Column: clause.Column{Name: "FindingID"}, Value: nil}).
		Find(&photos).Error
	return photos, err
}

func (s *GormStore) SavePhoto(ctx context.Context, p *models.PhotoReport) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (s *GormStore) UpdatePhoto(ctx context.Context, id uint, columns map[string]interface{}) error {
	if len(columns) == 0 {
		_, err := s.GetPhoto(ctx, id)
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.PhotoReport{}).Where(eq("PhotoID", id)).Updates(columns)
	return affected(res)
}

func (s *GormStore) DeletePhoto(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Where(eq("PhotoID", id)).Delete(&models.PhotoReport{}))
}

func (s *GormStore) DeletePhotosByInspection(ctx context.Context, inspectionID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where(eq("InspectionID", inspectionID)).Delete(&models.PhotoReport{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) SetCanvasURL(ctx context.Context, photoID uint, url *string) error {
	res := s.db.WithContext(ctx).Model(&models.PhotoReport{}).Where(eq("PhotoID", photoID)).
		Update("CanvasPhotoURL", url)
	return affected(res)
}

func (s *GormStore) ClearPhotoAI(ctx context.Context, photoID uint) error {
	res := s.db.WithContext(ctx).Model(&models.PhotoReport{}).Where(eq("PhotoID", photoID)).
		Updates(map[string]interface{}{
			"FindingID":           nil,
			"RecommendID":         nil,
			"AnnotatedPhotoURL":   nil,
			"AIDetectionDate":     nil,
			"DetectionConfidence": nil,
			"Detections":          nil,
		})
	return affected(res)
}

// --- Findings and recommendations ---

func (s *GormStore) CreateFinding(ctx context.Context, f *models.Finding) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *GormStore) GetFinding(ctx context.Context, id uint) (*models.Finding, error) {
	var f models.Finding
	if err := s.first(ctx, &f, eq("FindingID", id)); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *GormStore) ListFindings(ctx context.Context) ([]models.Finding, error) {
	var list []models.Finding
	err := s.db.WithContext(ctx).Order(orderBy("FindingID", false)).Find(&list).Error
	return list, err
}

func (s *GormStore) UpdateFinding(ctx context.Context, id uint, description string) error {
	res := s.db.WithContext(ctx).Model(&models.Finding{}).Where(eq("FindingID", id)).
		Update("Description", description)
	return affected(res)
}

func (s *GormStore) DeleteFinding(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Where(eq("FindingID", id)).Delete(&models.Finding{}))
}

func (s *GormStore) CreateRecommendation(ctx context.Context, r *models.Recommendation) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) GetRecommendation(ctx context.Context, id uint) (*models.Recommendation, error) {
	var r models.Recommendation
	if err := s.first(ctx, &r, eq("RecommendID", id)); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) ListRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	var list []models.Recommendation
	err := s.db.WithContext(ctx).Order(orderBy("RecommendID", false)).Find(&list).Error
	return list, err
}

func (s *GormStore) UpdateRecommendation(ctx context.Context, id uint, description string) error {
	res := s.db.WithContext(ctx).Model(&models.Recommendation{}).Where(eq("RecommendID", id)).
		Update("Description", description)
	return affected(res)
}

func (s *GormStore) DeleteRecommendation(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Where(eq("RecommendID", id)).Delete(&models.Recommendation{}))
}
