package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflexsms/eduflex/core/account"
	testutil "github.com/eduflexsms/eduflex/tests"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewAccountRepository(db)

	now := time.Now()
	admin := testutil.CreateAccount(t, repo, "Admin", "admin", "admin@edu.test", "pwd", []string{account.RoleAdminOwner}, true, now.Add(-time.Hour))
	nirmala := testutil.CreateAccount(t, repo, "Nirmala Perera", "nirmala", "nirmala@edu.test", "", []string{account.RoleTeacher}, true, now.Add(-time.Minute))
	kamal := testutil.CreateAccount(t, repo, "Kamal Silva", "kamal", "", "", []string{account.RoleTeacher}, false, now)

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, account.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "nirmala", "other@edu.test"))
		assert.Equal(t, account.ErrEmailExists, repo.CheckUsernameUniqueness(ctx, "other", "admin@edu.test"))
		assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "other", ""))
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetAccountByUsernameOrEmail(ctx, "nirmala@edu.test")
		require.NoError(t, err)
		assert.Equal(t, nirmala.ID, got.ID)
		got, err = repo.GetAccountByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "admin", got.Username)
		_, err = repo.GetAccountByID(ctx, "nope")
		assert.Equal(t, account.ErrNotFound, err)
	})

	t.Run("filter", func(t *testing.T) {
		active := true
		tests := []struct {
			name   string
			filter account.QueryFilter
			want   []string
		}{
			{name: "all", want: []string{admin.ID, nirmala.ID, kamal.ID}},
			{name: "teachers", filter: account.QueryFilter{Roles: account.TeacherRoles}, want: []string{nirmala.ID, kamal.ID}},
			{name: "active teachers", filter: account.QueryFilter{Roles: account.TeacherRoles, IsActive: &active}, want: []string{nirmala.ID}},
			{name: "search", filter: account.QueryFilter{Search: "SILVA"}, want: []string{kamal.ID}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				accounts, err := repo.FilterAccounts(ctx, tt.filter)
				require.NoError(t, err)
				var ids []string
				for _, acc := range accounts {
					ids = append(ids, acc.ID)
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	})

	t.Run("last login", func(t *testing.T) {
		require.NoError(t, repo.SetLastLogin(ctx, nirmala.ID, now))
		got, _ := repo.GetAccountByID(ctx, nirmala.ID)
		assert.True(t, now.Equal(got.LastLogin))
		assert.Equal(t, account.ErrNotFound, repo.SetLastLogin(ctx, "nope", now))
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, account.ErrNotFound, repo.DeleteAccountsByID(ctx, kamal.ID, "nope"))
		require.NoError(t, repo.DeleteAccountsByID(ctx, kamal.ID))
		_, err := repo.GetAccountByID(ctx, kamal.ID)
		assert.Equal(t, account.ErrNotFound, err)
	})
}

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	svc := account.NewService(NewAccountRepository(db))

	acc, err := svc.Create(ctx, account.NewAccount{Name: "Nirmala", Username: "nirmala", Password: "Str0ng-Passphrase"})
	require.NoError(t, err)
	assert.Equal(t, []string{account.RoleTeacher}, acc.Roles, "teacher by default")
	assert.True(t, acc.IsActive)
	assert.NoError(t, acc.CheckPassword("Str0ng-Passphrase"))

	got, err := svc.GetByUsernameOrEmail(ctx, "  NIRMALA ")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	teachers, err := svc.Teachers(ctx, "nir")
	require.NoError(t, err)
	assert.Len(t, teachers, 1)

	assert.Error(t, svc.CheckUniqueness("nirmala", ""))
}
