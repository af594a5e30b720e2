// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
)

// NewDB returns a migrated in-memory SQLite database.
// The pool is pinned to one connection so every query sees the same database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// New returns a GormStore over a fresh in-memory database
func New(t *testing.T) *store.GormStore {
	t.Helper()
	return store.NewGormStore(NewDB(t))
}

// Seed creates an equipment, an inspector user and a pending inspection
func Seed(t *testing.T, s store.Store, reportNo, reportDate string) (*models.Inspection, *models.User) {
	t.Helper()
	ctx := t.Context()

	equip := &models.Equipment{EquipDescription: "Air Receiver " + reportNo, EquipType: "Pressure Vessel", TagNo: "V-" + reportNo}
	require.NoError(t, s.CreateEquipment(ctx, equip))

	user := &models.User{UserName: "inspector-" + reportNo, Email: reportNo + "@example.com", AuthUUID: "uuid-" + reportNo, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.CreateInspector(ctx, &models.Inspector{UserID: user.UserID, FullName: user.UserName}))

	insp := &models.Inspection{
		EquipID:         equip.EquipID,
		UserIDInspector: user.UserID,
		ReportNo:        reportNo,
		ReportDate:      reportDate,
	}
	require.NoError(t, s.CreateInspection(ctx, insp))
	return insp, user
}
