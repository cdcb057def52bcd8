package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/eduflexsms/eduflex/apps/api/echo"
	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/tests"
)

func Test_accountApi_login(t *testing.T) {
	app := setup(t)

	pwd := "Zt6-pwd-12"
	teacher := testutil.CreateAccount(t, app.accRepo, "Teacher", "teacher", "teacher@test.lk", pwd, []string{account.RoleTeacher}, true)
	testutil.CreateAccount(t, app.accRepo, "Gone", "gone", "gone@test.lk", pwd, []string{account.RoleTeacher}, false)

	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})
	login := func(uname, pwd string) []byte {
		return marchallObj(t, LoginRequest{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{name: "unknown account", body: login("nobody", pwd), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "wrong password", body: login("teacher", "wrong"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{
			name: "deactivated", body: login("gone", pwd), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "username", body: login("teacher", pwd), wantCode: http.StatusOK},
		{name: "email (any case)", body: login(" Teacher@TEST.lk ", pwd), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/api/auth/login"
			rec := app.do(tt)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp TokenResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

				claims := new(account.Claims)
				_, _, err := new(jwt.Parser).ParseUnverified(resp.Token, claims)
				require.NoError(t, err)
				assert.Equal(t, teacher.ID, claims.Subject)
				assert.Equal(t, "teacher", claims.Username)
				assert.True(t, claims.IsTeacher)
				assert.False(t, claims.IsAdmin)
				assert.Equal(t, account.Audience, claims.Audience)
			}
		})
	}

	acc, err := app.accRepo.GetAccountByID(context.Background(), teacher.ID)
	require.NoError(t, err)
	assert.False(t, acc.LastLogin.IsZero(), "last login is recorded")
}

func Test_accountApi_refreshToken(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, app.accRepo, "Teacher", "teacher", "", "", []string{account.RoleTeacher}, true)
	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid token", token: "not-a-token", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{name: "ok", token: getToken(t, app, teacher), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/api/auth/token-refresh"
			rec := app.do(tt)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("deleted account", func(t *testing.T) {
		token := getToken(t, app, teacher)
		require.NoError(t, app.accRepo.DeleteAccountsByID(context.Background(), teacher.ID))

		tt := httpTest{
			method: http.MethodPost, path: "/api/auth/token-refresh", token: token,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "account not authenticated"}),
		}
		checkCodeAndData(t, tt, app.do(tt))
	})
}

func Test_accountApi_me(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.lk", "", []string{account.RoleAdmin}, true)
	tt := httpTest{path: "/api/auth/me", token: getToken(t, app, admin), wantCode: http.StatusOK, wantData: marchallObj(t, admin)}
	checkCodeAndData(t, tt, app.do(tt))
}

func Test_accountApi_teachers(t *testing.T) {
	app := setup(t)

	now := time.Now()
	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.lk", "", []string{account.RoleAdmin}, true, now)
	kamal := testutil.CreateAccount(t, app.accRepo, "Kamal Perera", "kamal", "kamal@test.lk", "", []string{account.RoleTeacher}, true, now.Add(time.Minute))
	nimali := testutil.CreateAccount(t, app.accRepo, "Nimali Silva", "nimali", "nimali@test.lk", "", []string{account.RoleTeacher}, true, now.Add(2*time.Minute))

	adminToken := getToken(t, app, admin)
	teacherToken := getToken(t, app, kamal)
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "auth required", path: "/api/teachers", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", path: "/api/teachers", token: teacherToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "all", path: "/api/teachers", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, kamal, nimali)},
		{name: "search", path: "/api/teachers?search=SILVA", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, nimali)},
		{name: "search (unknown)", path: "/api/teachers?search=lol", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}

func Test_accountApi_createTeacher(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.lk", "", []string{account.RoleAdmin}, true)
	kamal := testutil.CreateAccount(t, app.accRepo, "Kamal", "kamal", "kamal@test.lk", "", []string{account.RoleTeacher}, true)
	adminToken := getToken(t, app, admin)

	newTeacher := func(name, uname, email, pwd, confirm string, roles ...string) []byte {
		return marchallObj(t, account.NewAccount{
			Name: name, Username: uname, Email: email, Password: pwd, PasswordConfirm: confirm, Roles: roles,
		})
	}

	tests := []httpTest{
		{
			name: "admin required", body: newTeacher("X", "xxxx", "", "Zt6-pwd-12", "Zt6-pwd-12"),
			token: getToken(t, app, kamal), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "username taken", body: newTeacher("Other Kamal", "kamal", "", "Zt6-pwd-12", "Zt6-pwd-12"),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": account.ErrUsernameExists.Error()}),
		},
		{
			name: "password mismatch", body: newTeacher("Sunil", "sunil", "", "Zt6-pwd-12", "Zt6-pwd-13"),
			token: adminToken, wantCode: http.StatusBadRequest,
		},
		{
			name: "ok (roles are forced)", body: newTeacher("Sunil Fernando", "Sunil", "SUNIL@test.lk", "Zt6-pwd-12", "Zt6-pwd-12", account.RoleAdminOwner),
			token: adminToken, wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/api/teachers"
			rec := app.do(tt)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var acc account.Account
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
				assert.NotEmpty(t, acc.ID)
				assert.Equal(t, "sunil", acc.Username)
				assert.Equal(t, "sunil@test.lk", acc.Email)
				assert.Equal(t, []string{account.RoleTeacher}, acc.Roles)
				assert.True(t, acc.IsActive)
				assert.NotContains(t, rec.Body.String(), "password")

				sent := app.mailer.SentMessages()
				require.Len(t, sent, 1)
				assert.Equal(t, "sunil@test.lk", sent[0].To[0].Address)
				assert.Contains(t, sent[0].TextContent, "Username: sunil")
			}
		})
	}
}

func Test_accountApi_createTeacher_withoutEmail(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.lk", "", []string{account.RoleAdmin}, true)

	rec := app.do(httpTest{
		method: http.MethodPost,
		path:   "/api/teachers",
		body: marchallObj(t, account.NewAccount{
			Name: "Ruwan", Username: "ruwan", Password: "Zt6-pwd-12", PasswordConfirm: "Zt6-pwd-12",
		}),
		token: getToken(t, app, admin),
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, app.mailer.SentMessages())
}

func Test_accountApi_destroyTeacher(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.lk", "", []string{account.RoleAdmin}, true)
	kamal := testutil.CreateAccount(t, app.accRepo, "Kamal", "kamal", "kamal@test.lk", "", []string{account.RoleTeacher}, true)
	adminToken := getToken(t, app, admin)
	notFound := marchallObj(t, httpErr{Error: account.ErrNotFound.Error()})

	tests := []httpTest{
		{name: "unknown", path: "/api/teachers/nope", token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "admins are not teachers", path: "/api/teachers/" + admin.ID, token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "ok", path: "/api/teachers/" + kamal.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "already deleted", path: "/api/teachers/" + kamal.ID, token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodDelete
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}
