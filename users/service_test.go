package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/flavourbook-go/apperror"
	"github.com/user/flavourbook-go/auth"
)

// fakeRepo is an in-memory auth.Repository covering just what the profile
// service touches.
type fakeRepo struct {
	nextID int64
	users  map[int64]*auth.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, users: make(map[int64]*auth.User)}
}

func (r *fakeRepo) CreateUser(_ context.Context, user *auth.User) (*auth.User, error) {
	u := *user
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = &u
	copied := u
	return &copied, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*auth.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (r *fakeRepo) UpdateUser(_ context.Context, user *auth.User) (*auth.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	u := *user
	r.users[u.ID] = &u
	copied := u
	return &copied, nil
}

func (r *fakeRepo) UpsertToken(_ context.Context, _ int64, _ string) error { return nil }

func (r *fakeRepo) GetUserByToken(_ context.Context, _ string) (*auth.User, error) {
	return nil, apperror.NewNotFoundError("token not found", nil)
}

var _ auth.Repository = (*fakeRepo)(nil)

func newTestService(t *testing.T) (*Service, *auth.Service, *auth.User) {
	t.Helper()
	repo := newFakeRepo()
	authService := auth.NewService(repo, bcrypt.MinCost)
	svc := NewService(repo, authService)

	user, err := authService.CreateUser(context.Background(), "test@example.com", "testpass123", "Test Name")
	require.NoError(t, err)
	return svc, authService, user
}

func strp(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	svc, _, user := newTestService(t)

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "test@example.com", profile.Email)
	assert.Equal(t, "Test Name", profile.Name)
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _, user := newTestService(t)

	profile, err := svc.UpdateProfile(context.Background(), user.ID,
		&UpdateProfileRequest{Name: strp("Renamed")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", profile.Name)
	// Untouched fields survive a partial update.
	assert.Equal(t, "test@example.com", profile.Email)
}

func TestUpdateProfileFullRequiresEmail(t *testing.T) {
	svc, _, user := newTestService(t)

	_, err := svc.UpdateProfile(context.Background(), user.ID,
		&UpdateProfileRequest{Name: strp("Renamed")}, false)
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "email")
}

func TestUpdateProfileNormalizesEmail(t *testing.T) {
	svc, _, user := newTestService(t)

	profile, err := svc.UpdateProfile(context.Background(), user.ID,
		&UpdateProfileRequest{Email: strp("New@EXAMPLE.ORG")}, true)
	require.NoError(t, err)
	assert.Equal(t, "New@example.org", profile.Email)
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	svc, authService, user := newTestService(t)

	_, err := svc.UpdateProfile(context.Background(), user.ID,
		&UpdateProfileRequest{Password: strp("newpass456")}, true)
	require.NoError(t, err)

	_, err = authService.IssueToken(context.Background(), "test@example.com", "testpass123")
	require.Error(t, err)

	_, err = authService.IssueToken(context.Background(), "test@example.com", "newpass456")
	require.NoError(t, err)
}
