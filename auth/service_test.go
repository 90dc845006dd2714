package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/flavourbook-go/apperror"
)

// fakeRepo is an in-memory Repository used to exercise the service rules
// without a database.
type fakeRepo struct {
	nextID  int64
	users   map[int64]*User
	byEmail map[string]int64
	tokens  map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:  1,
		users:   make(map[int64]*User),
		byEmail: make(map[string]int64),
		tokens:  make(map[int64]string),
	}
}

func (r *fakeRepo) CreateUser(_ context.Context, user *User) (*User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, apperror.NewConflictError("a user with this email already exists", nil)
	}
	u := *user
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = &u
	r.byEmail[u.Email] = u.ID
	copied := u
	return &copied, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return r.GetUserByID(context.Background(), id)
}

func (r *fakeRepo) UpdateUser(_ context.Context, user *User) (*User, error) {
	old, ok := r.users[user.ID]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	if old.Email != user.Email {
		if _, exists := r.byEmail[user.Email]; exists {
			return nil, apperror.NewConflictError("a user with this email already exists", nil)
		}
		delete(r.byEmail, old.Email)
		r.byEmail[user.Email] = user.ID
	}
	u := *user
	r.users[u.ID] = &u
	copied := u
	return &copied, nil
}

func (r *fakeRepo) UpsertToken(_ context.Context, userID int64, token string) error {
	r.tokens[userID] = token
	return nil
}

func (r *fakeRepo) GetUserByToken(_ context.Context, token string) (*User, error) {
	for userID, t := range r.tokens {
		if t == token {
			return r.GetUserByID(context.Background(), userID)
		}
	}
	return nil, apperror.NewNotFoundError("token not found", nil)
}

var _ Repository = (*fakeRepo)(nil)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, bcrypt.MinCost), repo
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123", "Test Name")
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "Test Name", user.Name)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "testpass123", user.HashedPassword)
	assert.True(t, svc.CheckPassword(user, "testpass123"))
	assert.False(t, svc.CheckPassword(user, "wrong"))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		in   string
		want string
	}{
		{"test1@EXAMPLE.com", "test1@example.com"},
		{"Test2@Example.com", "Test2@example.com"},
		{"TEST3@EXAMPLE.COM", "TEST3@example.com"},
		{"test4@example.COM", "test4@example.com"},
	}
	for _, tc := range cases {
		user, err := svc.CreateUser(context.Background(), tc.in, "testpass123", "")
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, user.Email)
	}
}

func TestCreateUserEmptyEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "", "testpass123", "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "email")
}

func TestCreateUserShortPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "test@example.com", "pw", "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "password")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "dup@example.com", "testpass123", "")
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), "dup@example.com", "otherpass", "")
	require.Error(t, err)
	assert.True(t, apperror.IsConflictError(err))
}

func TestCreateSuperuserSetsFlags(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.CreateSuperuser(context.Background(), "admin@example.com", "testpass123", "")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func TestIssueToken(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123", "")
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), "test@example.com", "testpass123")
	require.NoError(t, err)
	assert.Len(t, token, 40)

	user, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
}

func TestIssueTokenNormalizesEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "test@EXAMPLE.com", "testpass123", "")
	require.NoError(t, err)

	_, err = svc.IssueToken(context.Background(), "test@example.COM", "testpass123")
	require.NoError(t, err)
}

func TestIssueTokenInvalidCredentials(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123", "")
	require.NoError(t, err)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "test@example.com", "wrongpass"},
		{"unknown email", "nobody@example.com", "testpass123"},
		{"empty password", "test@example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.IssueToken(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			// Credential failures on the token endpoint are bad requests,
			// not auth errors: there is no token to be unauthorized with.
			assert.True(t, apperror.IsBadRequestError(err))
		})
	}
}

func TestIssueTokenInactiveUser(t *testing.T) {
	svc, repo := newTestService()

	user, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123", "")
	require.NoError(t, err)

	user.IsActive = false
	_, err = repo.UpdateUser(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.IssueToken(context.Background(), "test@example.com", "testpass123")
	require.Error(t, err)
	assert.True(t, apperror.IsBadRequestError(err))
}

func TestReissueInvalidatesOldToken(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123", "")
	require.NoError(t, err)

	first, err := svc.IssueToken(context.Background(), "test@example.com", "testpass123")
	require.NoError(t, err)
	second, err := svc.IssueToken(context.Background(), "test@example.com", "testpass123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = svc.Authenticate(context.Background(), second)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), first)
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

func TestAuthenticateUnknownToken(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, repo := newTestService()

	user, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123", "")
	require.NoError(t, err)
	token, err := svc.IssueToken(context.Background(), "test@example.com", "testpass123")
	require.NoError(t, err)

	user.IsActive = false
	_, err = repo.UpdateUser(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  padded@example.com  ", "padded@example.com"},
		{"noatsign", "noatsign"},
		{"Local@DOMAIN.COM", "Local@domain.com"},
		{"a@b@C.COM", "a@b@c.com"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeEmail(tc.in), tc.in)
	}

	// Normalization is idempotent.
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeEmail(NormalizeEmail(tc.in)))
	}
}
