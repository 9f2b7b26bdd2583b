package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/isdelr/ender-admin-auth/internal/auth"
	"github.com/isdelr/ender-admin-auth/internal/models"
	"github.com/isdelr/ender-admin-auth/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	registerOut services.RegisteredAdmin
	registerErr error
	registerIn  services.RegisterInput

	loginOut services.LoginResult
	loginErr error
	loginIn  services.LoginInput

	logoutErr error
	logoutID  string
}

func (f *fakeAuthService) Register(_ context.Context, in services.RegisterInput) (services.RegisteredAdmin, error) {
	f.registerIn = in
	return f.registerOut, f.registerErr
}

func (f *fakeAuthService) Login(_ context.Context, in services.LoginInput) (services.LoginResult, error) {
	f.loginIn = in
	return f.loginOut, f.loginErr
}

func (f *fakeAuthService) Logout(_ context.Context, id string) (bool, error) {
	f.logoutID = id
	return false, f.logoutErr
}

func (f *fakeAuthService) VerifySession(context.Context, string) (models.Admin, error) {
	return models.Admin{}, auth.NewAuthError(auth.ReasonMissingToken)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegister_PassesFields(t *testing.T) {
	svc := &fakeAuthService{registerOut: services.RegisteredAdmin{ID: "1", Name: "Ann", Surname: "Lee"}}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"email":"a@x.com","password":"pass1","passwordCheck":"pass1","name":"Ann","surname":"Lee"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.RegisterInput{Email: "a@x.com", Password: "pass1", PasswordCheck: "pass1", Name: "Ann", Surname: "Lee"}, svc.registerIn)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Ann", body["admin"].(map[string]any)["name"])
}

func TestRegister_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		key    string
		want   string
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, "msg", "Invalid request body"},
		{"validation", `{}`, services.ErrPasswordMismatch, http.StatusBadRequest, "msg", services.ErrPasswordMismatch.Message},
		{"unexpected", `{}`, errors.New("database is closed"), http.StatusInternalServerError, "message", "database is closed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthService{registerErr: tc.err})
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(tc.body)))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.want, decode(t, rec)[tc.key])
		})
	}
}

func TestLogin_SetsTokenHeader(t *testing.T) {
	svc := &fakeAuthService{loginOut: services.LoginResult{
		Token: "signed",
		Admin: services.LoginAdmin{ID: "1", Name: "Ann", IsLoggedIn: true},
		Role:  models.RoleAdmin,
	}}
	h := NewAuthHandler(svc)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"a@x.com","password":"pass1","rememberMe":true}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed", rec.Header().Get(auth.TokenHeader))
	assert.True(t, svc.loginIn.RememberMe)

	body := decode(t, rec)
	result := body["result"].(map[string]any)
	assert.Equal(t, "admin", result["userRole"])
	assert.Equal(t, "1", result["admin"].(map[string]any)["id"])
}

func TestLogin_Errors(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{loginErr: services.ErrInvalidCredentials})
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@x.com","password":"nope"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Nil(t, body["result"])
	assert.Equal(t, "Invalid credentials.", body["message"])
	assert.Empty(t, rec.Header().Get(auth.TokenHeader))

	h = NewAuthHandler(&fakeAuthService{loginErr: errors.New("boom")})
	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@x.com","password":"pass1"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decode(t, rec)["message"])
}

func TestLogout_UsesGatedAdmin(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.AdminKey, models.Admin{ID: "a1"}))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", svc.logoutID)
	assert.Equal(t, false, decode(t, rec)["isLoggedIn"])
}

func TestLogout_WithoutGate(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{})
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetMe(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{})
	loggedIn := true
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.AdminKey, models.Admin{
		ID: "a1", Email: "a@x.com", Name: "Ann", PasswordHash: "secret-hash", IsLoggedIn: &loggedIn,
	}))
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	result := decode(t, rec)["result"].(map[string]any)
	assert.Equal(t, "a@x.com", result["email"])
	assert.Equal(t, true, result["isLoggedIn"])
}

func TestLogin_RememberMeTruthiness(t *testing.T) {
	cases := map[string]bool{
		``:                      false,
		`,"rememberMe":null`:    false,
		`,"rememberMe":false`:   false,
		`,"rememberMe":0`:       false,
		`,"rememberMe":""`:      false,
		`,"rememberMe":true`:    true,
		`,"rememberMe":1`:       true,
		`,"rememberMe":"true"`:  true,
		`,"rememberMe":"false"`: true,
		`,"rememberMe":{}`:      true,
		`,"rememberMe":[]`:      true,
	}
	for extra, want := range cases {
		t.Run(extra, func(t *testing.T) {
			svc := &fakeAuthService{loginOut: services.LoginResult{Token: "signed", Role: models.RoleAdmin}}
			h := NewAuthHandler(svc)

			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
				strings.NewReader(`{"email":"a@x.com","password":"pass1"`+extra+`}`)))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, want, svc.loginIn.RememberMe)
		})
	}
}
