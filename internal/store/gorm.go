package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/symmetrixs/edaago/internal/models"
)

// GormStore implements Store on top of gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// eq builds a quoted equality condition on a table column
func eq(column string, value interface{}) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

func in(column string, values interface{}) clause.Expression {
	return clause.IN{Column: clause.Column{Name: column}, Values: toInterfaces(values)}
}

func toInterfaces(values interface{}) []interface{} {
	switch v := values.(type) {
	case []uint:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []models.InspectionStatus:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = string(v[i])
		}
		return out
	}
	return nil
}

func orderBy(column string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

// first loads a single row and maps gorm's not-found error
func (s *GormStore) first(ctx context.Context, dest interface{}, conds ...clause.Expression) error {
	q := s.db.WithContext(ctx)
	for _, c := range conds {
		q = q.Where(c)
	}
	if err := q.Take(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// affected maps a write result with zero affected rows to ErrNotFound
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Users ---

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.first(ctx, &u, eq("UserID", id)); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.first(ctx, &u, eq("Email", email)); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) GetUserByAuthUUID(ctx context.Context, authUUID string) (*models.User, error) {
	var u models.User
	if err := s.first(ctx, &u, eq("AuthUUID", authUUID)); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order(orderBy("UserID", false)).Find(&users).Error
	return users, err
}

func (s *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

// DeleteUser removes the account and both role profiles
func (s *GormStore) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(eq("UserID", id)).Delete(&models.Admin{}).Error; err != nil {
			return fmt.Errorf("delete admin profile: %w", err)
		}
		if err := tx.Where(eq("UserID", id)).Delete(&models.Inspector{}).Error; err != nil {
			return fmt.Errorf("delete inspector profile: %w", err)
		}
		return affected(tx.Where(eq("UserID", id)).Delete(&models.User{}))
	})
}

// --- Profiles ---

func (s *GormStore) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) GetAdmin(ctx context.Context, userID uint) (*models.Admin, error) {
	var a models.Admin
	if err := s.first(ctx, &a, eq("UserID", userID)); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	err := s.db.WithContext(ctx).Order(orderBy("UserID", false)).Find(&admins).Error
	return admins, err
}

func (s *GormStore) SaveAdmin(ctx context.Context, a *models.Admin) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *GormStore) CreateInspector(ctx context.Context, i *models.Inspector) error {
	return s.db.WithContext(ctx).Create(i).Error
}

func (s *GormStore) GetInspector(ctx context.Context, userID uint) (*models.Inspector, error) {
	var i models.Inspector
	if err := s.first(ctx, &i, eq("UserID", userID)); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *GormStore) ListInspectors(ctx context.Context) ([]models.Inspector, error) {
	var inspectors []models.Inspector
	err := s.db.WithContext(ctx).Order(orderBy("UserID", false)).Find(&inspectors).Error
	return inspectors, err
}

func (s *GormStore) SaveInspector(ctx context.Context, i *models.Inspector) error {
	return s.db.WithContext(ctx).Save(i).Error
}

func (s *GormStore) CountInspectors(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Inspector{}).Count(&n).Error
	return n, err
}

// --- Equipment ---

func (s *GormStore) CreateEquipment(ctx context.Context, e *models.Equipment) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) GetEquipment(ctx context.Context, id uint) (*models.Equipment, error) {
	var e models.Equipment
	if err := s.first(ctx, &e, eq("EquipID", id)); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var list []models.Equipment
	err := s.db.WithContext(ctx).Order(orderBy("EquipID", false)).Find(&list).Error
	return list, err
}

func (s *GormStore) SaveEquipment(ctx context.Context, e *models.Equipment) error {
	return s.db.WithContext(ctx).Save(e).Error
}

func (s *GormStore) DeleteEquipment(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Where(eq("EquipID", id)).Delete(&models.Equipment{}))
}

func (s *GormStore) SetEquipmentDates(ctx context.Context, id uint, last, next string) error {
	res := s.db.WithContext(ctx).Model(&models.Equipment{}).Where(eq("EquipID", id)).
		Updates(map[string]interface{}{
			"Last_Inspection_Date": last,
			"Next_Inspection_Date": next,
		})
	return affected(res)
}
