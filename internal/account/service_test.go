package account_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/apperrors"
	"attendance-monitor/internal/auth"
	"attendance-monitor/internal/logger"
	"attendance-monitor/internal/storetest"
)

func newService(t *testing.T) (*account.Service, account.Account) {
	t.Helper()
	db := storetest.Open(t, &account.Account{})
	svc := account.NewService(account.NewRepository(db.Gorm), auth.NewBcrypt(bcrypt.MinCost), logger.Nop())

	created, err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin1234")
	require.NoError(t, err)
	require.True(t, created)

	admin, err := svc.Authenticate(context.Background(), "admin", "admin1234")
	require.NoError(t, err)
	return svc, admin
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, admin := newService(t)

	alice, err := svc.Register(ctx, admin, "alice", "pw", "student")
	require.NoError(t, err)
	assert.Equal(t, account.RoleStudent, alice.Role)
	assert.NotEqual(t, "pw", alice.PasswordHash)

	tests := []struct {
		name      string
		requester account.Account
		username  string
		password  string
		role      string
		kind      error
	}{
		{"non admin", alice, "bob", "pw", "student", apperrors.ErrForbidden},
		{"admin role", admin, "bob", "pw", "admin", apperrors.ErrValidation},
		{"unknown role", admin, "bob", "pw", "professor", apperrors.ErrValidation},
		{"empty role", admin, "bob", "pw", "", apperrors.ErrValidation},
		{"empty username", admin, "  ", "pw", "student", apperrors.ErrValidation},
		{"empty password", admin, "bob", "", "student", apperrors.ErrValidation},
		{"long password", admin, "bob", string(make([]byte, 73)), "student", apperrors.ErrValidation},
		{"duplicate", admin, "alice", "other", "instructor", apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.requester, tt.username, tt.password, tt.role)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
}

func TestRegister_RoleIsCaseInsensitive(t *testing.T) {
	svc, admin := newService(t)
	a, err := svc.Register(context.Background(), admin, "carol", "pw", "Instructor")
	require.NoError(t, err)
	assert.Equal(t, account.RoleInstructor, a.Role)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, admin := newService(t)
	_, err := svc.Register(ctx, admin, "alice", "correct", "student")
	require.NoError(t, err)

	a, err := svc.Authenticate(ctx, "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, "/attendance", account.LandingPath(a))
	assert.Equal(t, "/dashboard", account.LandingPath(admin))

	_, wrongPassword := svc.Authenticate(ctx, "alice", "nope")
	_, unknownUser := svc.Authenticate(ctx, "mallory", "correct")
	require.ErrorIs(t, wrongPassword, apperrors.ErrUnauthenticated)
	require.ErrorIs(t, unknownUser, apperrors.ErrUnauthenticated)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestEnsureDefaultAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, admin := newService(t)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.EnsureDefaultAdmin(ctx, "admin", "different")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	// the first password still works
	again, err := svc.Authenticate(ctx, "admin", "admin1234")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.True(t, account.IsAdmin(again))
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, admin := newService(t)

	got, err := svc.Get(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = svc.Get(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseMemberRole(t *testing.T) {
	tests := []struct {
		in   string
		want account.Role
		ok   bool
	}{
		{"student", account.RoleStudent, true},
		{" INSTRUCTOR ", account.RoleInstructor, true},
		{"admin", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := account.ParseMemberRole(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
