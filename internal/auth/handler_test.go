// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type authBody struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Tier  string `json:"tier"`
	} `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

func newTestRouter(t *testing.T) (http.Handler, *testEnv) {
	t.Helper()

	env := newTestEnv(t)
	h := NewHandler(env.svc)

	r := chi.NewRouter()
	h.RegisterRoutes(r, h.Authenticator())
	return r, env
}

func doRequest(
	t *testing.T,
	h http.Handler,
	method, path, body, token string,
) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHandlerRegisterLoginFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	var registered authBody
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.Equal(t, "free", registered.User.Tier)
	assert.Equal(t, "Bearer", registered.Tokens.TokenType)
	assert.Equal(t, 24*60*60, registered.Tokens.ExpiresIn)
	assert.NotContains(t, rec.Body.String(), "password")

	rec, env = doRequest(t, r, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var loggedIn authBody
	require.NoError(t, json.Unmarshal(env.Data, &loggedIn))
	token := loggedIn.Tokens.AccessToken
	require.NotEmpty(t, token)

	rec, env = doRequest(t, r, http.MethodGet, "/auth/verify", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), registered.User.ID)

	rec, env = doRequest(t, r, http.MethodGet, "/auth/sessions", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions SessionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	require.Len(t, sessions.Sessions, 2)

	current := 0
	for _, s := range sessions.Sessions {
		if s.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)

	rec, _ = doRequest(t, r, http.MethodPost, "/auth/logout", "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = doRequest(t, r, http.MethodGet, "/auth/verify", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestHandlerErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	_, _ = doRequest(t, r, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"hunter22"}`, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		status int
		code   string
	}{
		{"malformed body", http.MethodPost, "/auth/login", `{`, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{
			"short password", http.MethodPost, "/auth/register",
			`{"email":"bob@example.com","password":"short"}`, "",
			http.StatusBadRequest, "VALIDATION_ERROR",
		},
		{
			"duplicate", http.MethodPost, "/auth/register",
			`{"email":"alice@example.com","password":"hunter22"}`, "",
			http.StatusConflict, "CONFLICT",
		},
		{
			"wrong password", http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"nope-nope"}`, "",
			http.StatusUnauthorized, "UNAUTHORIZED",
		},
		{"missing token", http.MethodGet, "/auth/verify", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", http.MethodGet, "/auth/sessions", "", "abc", http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, r, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestHandlerLogoutAll(t *testing.T) {
	r, _ := newTestRouter(t)

	_, env := doRequest(t, r, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"hunter22"}`, "")
	var first authBody
	require.NoError(t, json.Unmarshal(env.Data, &first))

	_, _ = doRequest(t, r, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"hunter22"}`, "")

	rec, env := doRequest(t, r, http.MethodPost, "/auth/logout-all", "", first.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revoked":2}`, string(env.Data))
}
