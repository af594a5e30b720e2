package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symmetrixs/edaago/internal/middleware"
	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/users"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/store/storetest"
)

const secret = "users-secret"

func ptr[T any](v T) *T { return &v }

func TestRegisterAndLogin(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	svc := users.NewService(s, secret)

	u, err := svc.Register(ctx, users.RegisterInput{Email: "nur@edaa.my", Password: "hunter22", Username: "Nur"})
	require.NoError(t, err)
	assert.Len(t, u.AuthUUID, 36)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	insp, err := s.GetInspector(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Nur", insp.FullName)

	_, err = svc.Register(ctx, users.RegisterInput{Email: "nur@edaa.my", Password: "x", Username: "Other"})
	assert.ErrorIs(t, err, users.ErrEmailTaken)
	_, err = svc.Register(ctx, users.RegisterInput{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, users.ErrInvalidInput)

	session, err := svc.Login(ctx, "nur@edaa.my", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, users.SessionUser{ID: u.UserID, UUID: u.AuthUUID, Email: "nur@edaa.my", Role: models.RoleInspector, Name: "Nur"}, session.User)

	p, err := middleware.ParseToken(session.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, u.AuthUUID, p.AuthUUID)
	assert.Equal(t, u.UserID, p.UserID)
	assert.Equal(t, models.RoleInspector, p.Role)

	_, err = svc.Login(ctx, "nur@edaa.my", "wrong")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@edaa.my", "hunter22")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestAdminCreatedUsers(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	svc := users.NewService(s, secret)

	admin, err := svc.CreateUser(ctx, users.CreateUserInput{Name: "Aisyah", Email: "aisyah@edaa.my", Password: "pw", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, users.CreateUserInput{Name: "Ravi", Email: "ravi@edaa.my", Password: "pw", Role: models.RoleInspector})
	require.NoError(t, err)
	bare := &models.User{UserName: "ghost", Email: "ghost@edaa.my", AuthUUID: "uuid-ghost", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, bare))

	session, err := svc.Login(ctx, "aisyah@edaa.my", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.User.Role)
	assert.Equal(t, "Aisyah", session.User.Name)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, models.RoleAdmin, list[0].Role)
	assert.Equal(t, models.RoleInspector, list[1].Role)
	assert.Equal(t, models.UserSummary{ID: bare.UserID, Name: "ghost", Email: "ghost@edaa.my", Role: models.RoleUnknown}, list[2])

	require.NoError(t, svc.DeleteUser(ctx, admin.UserID))
	_, err = s.GetAdmin(ctx, admin.UserID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.UserID), store.ErrNotFound)
}

func TestUpdateProfileSyncsInspectorName(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	svc := users.NewService(s, secret)

	u, err := svc.Register(ctx, users.RegisterInput{Email: "lee@edaa.my", Password: "old", Username: "Lee"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, users.RegisterInput{Email: "taken@edaa.my", Password: "pw", Username: "Taken"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, u.UserID, users.ProfileUpdate{Username: ptr("Lee Wei"), Password: ptr("new")})
	require.NoError(t, err)
	assert.Equal(t, "Lee Wei", updated.UserName)

	insp, err := s.GetInspector(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Lee Wei", insp.FullName)

	_, err = svc.Login(ctx, "lee@edaa.my", "new")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, u.UserID, users.ProfileUpdate{Email: ptr("taken@edaa.my")})
	assert.ErrorIs(t, err, users.ErrEmailTaken)
	_, err = svc.UpdateProfile(ctx, 999, users.ProfileUpdate{Username: ptr("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfiles(t *testing.T) {
	s := storetest.New(t)
	ctx := t.Context()
	svc := users.NewService(s, secret)

	u, err := svc.Register(ctx, users.RegisterInput{Email: "tan@edaa.my", Password: "pw", Username: "Tan"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CreateInspector(ctx, &models.Inspector{UserID: u.UserID}), store.ErrAlreadyExists)
	assert.ErrorIs(t, svc.CreateAdmin(ctx, &models.Admin{UserID: 999}), store.ErrNotFound)
	require.NoError(t, svc.CreateAdmin(ctx, &models.Admin{UserID: u.UserID, FullName: "Tan (admin)"}))

	a, err := svc.UpdateAdmin(ctx, u.UserID, models.ProfilePatch{PhoneNo: ptr("012-3456789")})
	require.NoError(t, err)
	assert.Equal(t, "Tan (admin)", a.FullName)
	assert.Equal(t, "012-3456789", a.PhoneNo)

	i, err := svc.UpdateInspector(ctx, u.UserID, models.ProfilePatch{Address: ptr("Kuantan")})
	require.NoError(t, err)
	assert.Equal(t, "Tan", i.FullName)
	assert.Equal(t, "Kuantan", i.Address)

	_, err = svc.UpdateInspector(ctx, 999, models.ProfilePatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
