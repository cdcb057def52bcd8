package session

import (
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflexsms/eduflex/core/account"
)

func signedToken(t *testing.T, claims *account.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return tok
}

func TestSession_Lifecycle(t *testing.T) {
	acc := account.Account{ID: "acc-1", Name: "Nirmala", Username: "nirmala", Roles: []string{account.RoleTeacher}}
	token := signedToken(t, account.GetAccountClaims(acc, "EduFlex", time.Hour))

	sess := New()
	assert.False(t, sess.Active())
	assert.Empty(t, sess.Authorization())
	_, err := sess.Identity()
	assert.Equal(t, ErrNoSession, err)

	id, err := sess.Begin(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", id.AccountID)
	assert.Equal(t, "nirmala", id.Username)
	assert.True(t, id.IsTeacher)
	assert.False(t, id.IsAdmin)
	assert.Equal(t, []string{account.RoleTeacher}, id.Roles)

	assert.True(t, sess.Active())
	assert.Equal(t, token, sess.Token())
	assert.Equal(t, "Bearer "+token, sess.Authorization())
	got, err := sess.Identity()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	sess.End()
	assert.False(t, sess.Active())
	assert.Empty(t, sess.Token())
	_, err = sess.Identity()
	assert.Equal(t, ErrNoSession, err)
}

func TestSession_Begin_Rejects(t *testing.T) {
	acc := account.Account{ID: "acc-1", Username: "nirmala"}

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{name: "garbage", token: "not-a-jwt", err: ErrInvalidToken},
		{name: "empty", token: "", err: ErrInvalidToken},
		{name: "no subject", token: signedToken(t, &account.Claims{Username: "x"}), err: ErrInvalidToken},
		{name: "expired", token: signedToken(t, account.GetAccountClaims(acc, "EduFlex", -time.Minute)), err: ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := New()
			_, err := sess.Begin(tt.token)
			assert.Equal(t, tt.err, err)
			assert.False(t, sess.Active())
			assert.Empty(t, sess.Token())
		})
	}
}

func TestSession_ExpiresWhileActive(t *testing.T) {
	acc := account.Account{ID: "acc-1", Username: "nirmala"}
	sess := New()
	_, err := sess.Begin(signedToken(t, account.GetAccountClaims(acc, "EduFlex", time.Hour)))
	require.NoError(t, err)

	defer func(orig func() time.Time) { nowFunc = orig }(nowFunc)
	nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }

	assert.False(t, sess.Active())
	_, err = sess.Identity()
	assert.Equal(t, ErrExpired, err)
}

func TestSession_Concurrent(t *testing.T) {
	acc := account.Account{ID: "acc-1", Username: "nirmala"}
	token := signedToken(t, account.GetAccountClaims(acc, "EduFlex", time.Hour))
	sess := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = sess.Begin(token)
		}()
		go func() {
			defer wg.Done()
			_ = sess.Authorization()
			_, _ = sess.Identity()
		}()
	}
	wg.Wait()
	assert.True(t, sess.Active())
}
