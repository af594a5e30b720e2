package team_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/notify"
	"github.com/symmetrixs/edaago/internal/services/team"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/store/storetest"
)

func TestTeamMembership(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	svc := team.NewService(s, notify.New(s, nil))

	insp, _ := storetest.Seed(t, s, "RPT-300", "2024-05-01")
	_, colleague := storetest.Seed(t, s, "RPT-301", "2024-05-02")

	tm, created, err := svc.Create(ctx, insp.InspectionID)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.Create(ctx, insp.InspectionID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tm.TeamID, again.TeamID)

	_, err = svc.AddMember(ctx, tm.TeamID, colleague.UserID)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, tm.TeamID, colleague.UserID)
	assert.ErrorIs(t, err, team.ErrAlreadyMember)
	_, err = svc.AddMember(ctx, 999, colleague.UserID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	notes, err := s.ListNotifications(ctx, colleague.AuthUUID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "You have been added to the team for Inspection RPT-300.", notes[0].Message)
	assert.Equal(t, models.NotificationSuccess, notes[0].Type)

	members, err := svc.Members(ctx, tm.TeamID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.NotNil(t, members[0].Inspector)
	assert.Equal(t, "inspector-RPT-301", members[0].Inspector.FullName)

	shared, err := svc.Shared(ctx, colleague.UserID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, insp.InspectionID, shared[0].InspectionID)

	require.NoError(t, svc.RemoveMember(ctx, tm.TeamID, colleague.UserID))
	require.NoError(t, svc.RemoveMember(ctx, tm.TeamID, colleague.UserID))
	shared, err = svc.Shared(ctx, colleague.UserID)
	require.NoError(t, err)
	assert.Empty(t, shared)

	_, _, err = svc.Create(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
