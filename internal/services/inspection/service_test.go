package inspection_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/inspection"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/store/storetest"
)

func ptr[T any](v T) *T { return &v }

// racingStore runs beforeUpdate ahead of the first write, as a concurrent
// request landing between the client's read and its edit
type racingStore struct {
	store.Store
	beforeUpdate func()
}

func (r *racingStore) UpdateInspection(ctx context.Context, id uint, columns map[string]interface{}) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
		r.beforeUpdate = nil
	}
	return r.Store.UpdateInspection(ctx, id, columns)
}

// staleStore reports a fixed status on reads, as a request that loaded the
// inspection before another one changed it
type staleStore struct {
	store.Store
	status models.InspectionStatus
}

func (s *staleStore) GetInspection(ctx context.Context, id uint) (*models.Inspection, error) {
	i, err := s.Store.GetInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	i.Status = s.status
	return i, nil
}

func TestNextInspectionDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-10": "2025-03-10",
		"2024-02-29": "2025-02-28",
		"2023-03-10": "2024-03-09",
	}
	for in, want := range cases {
		got, err := inspection.NextInspectionDate(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := inspection.NextInspectionDate("10/03/2024")
	assert.ErrorIs(t, err, inspection.ErrInvalidInput)
}

func TestUpdateToCompletedProjectsEquipmentDates(t *testing.T) {
	s := storetest.New(t)
	insp, _ := storetest.Seed(t, s, "RPT-1", "2024-03-10")
	svc := inspection.NewService(s)

	got, err := svc.Update(t.Context(), insp.InspectionID, models.InspectionPatch{Status: ptr("Completed")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	equip, err := s.GetEquipment(t.Context(), insp.EquipID)
	require.NoError(t, err)
	require.NotNil(t, equip.LastInspectionDate)
	require.NotNil(t, equip.NextInspectionDate)
	assert.Equal(t, "2024-03-10", *equip.LastInspectionDate)
	assert.Equal(t, "2025-03-10", *equip.NextInspectionDate)
}

func TestUpdateWithoutStatusLeavesEquipmentAlone(t *testing.T) {
	s := storetest.New(t)
	insp, _ := storetest.Seed(t, s, "RPT-2", "2024-03-10")
	svc := inspection.NewService(s)

	got, err := svc.Update(t.Context(), insp.InspectionID, models.InspectionPatch{Findings: models.NewNullString("Minor pitting on shell")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	require.NotNil(t, got.Findings)

	stored, err := s.GetInspection(t.Context(), insp.InspectionID)
	require.NoError(t, err)
	assert.Equal(t, "Minor pitting on shell", *stored.Findings)
	assert.Equal(t, "RPT-2", stored.ReportNo, "unset fields are kept")

	equip, err := s.GetEquipment(t.Context(), insp.EquipID)
	require.NoError(t, err)
	assert.Nil(t, equip.LastInspectionDate)
}

func TestUpdateIsUnguarded(t *testing.T) {
	s := storetest.New(t)
	insp, _ := storetest.Seed(t, s, "RPT-3", "2024-03-10")
	require.NoError(t, s.SetInspectionStatus(t.Context(), insp.InspectionID, models.StatusApproved))
	svc := inspection.NewService(s)

	got, err := svc.Update(t.Context(), insp.InspectionID, models.InspectionPatch{Status: ptr("Pending")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = svc.Update(t.Context(), insp.InspectionID, models.InspectionPatch{Status: ptr("Done")})
	assert.ErrorIs(t, err, inspection.ErrInvalidInput)

	_, err = svc.Update(t.Context(), 999, models.InspectionPatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProjectionFailureDoesNotFailUpdate(t *testing.T) {
	s := storetest.New(t)
	insp, _ := storetest.Seed(t, s, "RPT-4", "2024-03-10")
	require.NoError(t, s.DeleteEquipment(t.Context(), insp.EquipID))
	svc := inspection.NewService(s)

	got, err := svc.Update(t.Context(), insp.InspectionID, models.InspectionPatch{Status: ptr("Completed")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestCompleteIsGuarded(t *testing.T) {
	s := storetest.New(t)
	insp, _ := storetest.Seed(t, s, "RPT-5", "2024-03-10")
	svc := inspection.NewService(s)

	got, err := svc.Complete(t.Context(), insp.InspectionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	equip, err := s.GetEquipment(t.Context(), insp.EquipID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", *equip.NextInspectionDate)

	_, err = svc.Complete(t.Context(), insp.InspectionID)
	assert.ErrorIs(t, err, inspection.ErrInvalidTransition)
}

func TestCreateValidates(t *testing.T) {
	s := storetest.New(t)
	seeded, _ := storetest.Seed(t, s, "RPT-6", "2024-03-10")
	svc := inspection.NewService(s)

	i := &models.Inspection{EquipID: seeded.EquipID, UserIDInspector: seeded.UserIDInspector, ReportNo: "RPT-7", ReportDate: "2024-04-01"}
	require.NoError(t, svc.Create(t.Context(), i))
	assert.NotZero(t, i.InspectionID)
	assert.Equal(t, models.StatusPending, i.Status)

	bad := &models.Inspection{EquipID: seeded.EquipID, UserIDInspector: seeded.UserIDInspector, ReportNo: "RPT-8", ReportDate: "April 1st"}
	assert.ErrorIs(t, svc.Create(t.Context(), bad), inspection.ErrInvalidInput)

	assert.ErrorIs(t, svc.Create(t.Context(), &models.Inspection{ReportDate: "2024-04-01"}), inspection.ErrInvalidInput)
}

func TestDeleteCascades(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	insp, user := storetest.Seed(t, s, "RPT-9", "2024-03-10")
	svc := inspection.NewService(s)

	team := &models.Team{InspectionID: insp.InspectionID}
	require.NoError(t, s.CreateTeam(ctx, team))
	require.NoError(t, s.AddTeamMember(ctx, &models.InspectorTeam{TeamID: team.TeamID, UserID: user.UserID}))
	require.NoError(t, s.CreateReport(ctx, &models.Report{InspectionID: insp.InspectionID}))

	require.NoError(t, svc.Delete(ctx, insp.InspectionID))

	_, err := s.GetInspection(ctx, insp.InspectionID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetReport(ctx, insp.InspectionID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetTeam(ctx, team.TeamID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, insp.InspectionID), store.ErrNotFound)
}

func TestUpdateKeepsConcurrentStatusChange(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	insp, _ := storetest.Seed(t, s, "RPT-6", "2024-03-10")
	require.NoError(t, s.SetInspectionStatus(ctx, insp.InspectionID, models.StatusCompleted))

	racing := &racingStore{Store: s, beforeUpdate: func() {
		require.NoError(t, s.SetInspectionStatus(ctx, insp.InspectionID, models.StatusApproved))
	}}
	svc := inspection.NewService(racing)

	got, err := svc.Update(ctx, insp.InspectionID, models.InspectionPatch{Findings: models.NewNullString("edited text")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	stored, err := s.GetInspection(ctx, insp.InspectionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	require.NotNil(t, stored.Findings)
	assert.Equal(t, "edited text", *stored.Findings)
}

func TestUpdateExplicitNullClearsField(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	insp, _ := storetest.Seed(t, s, "RPT-7", "2024-03-10")
	svc := inspection.NewService(s)

	_, err := svc.Update(ctx, insp.InspectionID, models.InspectionPatch{
		Findings:        models.NewNullString("Minor pitting on shell"),
		Recommendations: models.NewNullString("Monitor"),
	})
	require.NoError(t, err)

	var patch models.InspectionPatch
	require.NoError(t, json.Unmarshal([]byte(`{"Findings": null, "NDTs": "UT thickness within limits"}`), &patch))
	got, err := svc.Update(ctx, insp.InspectionID, patch)
	require.NoError(t, err)

	assert.Nil(t, got.Findings)
	require.NotNil(t, got.NDTs)
	assert.Equal(t, "UT thickness within limits", *got.NDTs)
	require.NotNil(t, got.Recommendations, "absent fields are kept")
	assert.Equal(t, "Monitor", *got.Recommendations)
	assert.Equal(t, "RPT-7", got.ReportNo)
}

func TestCompleteRechecksStatusOnWrite(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	insp, _ := storetest.Seed(t, s, "RPT-8", "2024-03-10")
	require.NoError(t, s.SetInspectionStatus(ctx, insp.InspectionID, models.StatusApproved))

	svc := inspection.NewService(&staleStore{Store: s, status: models.StatusPending})
	_, err := svc.Complete(ctx, insp.InspectionID)
	assert.ErrorIs(t, err, inspection.ErrInvalidTransition)

	stored, err := s.GetInspection(ctx, insp.InspectionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}
