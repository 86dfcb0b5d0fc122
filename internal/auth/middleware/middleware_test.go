package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
)

func seeded(t *testing.T) quiz.Store {
	t.Helper()
	st := quiz.NewMemoryStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = st.CreateUser(context.Background(), quiz.User{Username: "hanako", Role: rbac.RoleLearner, PasswordHash: string(hash)})
	require.NoError(t, err)
	return st
}

var sess = Session{Cookie: "session", TTL: 24 * time.Hour}

func TestLogin_SetsHttpOnlyCookie(t *testing.T) {
	a := NewAuthService("k", time.Hour)
	h := LoginHandler(a, seeded(t), sess)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"hanako","password":"pw"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 86400, cookies[0].MaxAge)

	c, err := a.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "hanako", c.Username)
	assert.Equal(t, rbac.RoleLearner, c.Role)
}

func TestLogin_Rejects(t *testing.T) {
	h := LoginHandler(NewAuthService("k", time.Hour), seeded(t), sess)
	for _, body := range []string{`{"username":"hanako","password":"nope"}`, `{"username":"taro","password":"pw"}`} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	a := NewAuthService("k", time.Hour)
	me := MeHandler(a, sess)

	rec := httptest.NewRecorder()
	me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"logged_in":false}`, rec.Body.String())

	tok, err := a.IssueJWT("u1", "hanako", rbac.RoleLearner)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: tok})
	rec = httptest.NewRecorder()
	me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, true, out["logged_in"])
	assert.Equal(t, "hanako", out["username"])
}

func TestLogout_ClearsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	LogoutHandler(sess)(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("k", time.Hour)
	var gotSub, gotRole string
	h := JWTMiddleware(a, sess)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, _ := NewAuthService("other", time.Hour).IssueJWT("u1", "x", rbac.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _ := a.IssueJWT("u1", "hanako", rbac.RoleLearner)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotSub)
	assert.Equal(t, rbac.RoleLearner, gotRole)
}

func TestAttachRoleFromStore(t *testing.T) {
	st := seeded(t)
	h := AttachRoleFromStore(st, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rbac.RoleFromContext(r.Context())))
	}))

	// claimed admin, stored learner
	ctx := rbac.WithRole(WithSubject(context.Background(), "hanako"), rbac.RoleAdmin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, rbac.RoleLearner, rec.Body.String())

	ctx = rbac.WithRole(WithSubject(context.Background(), "ghost"), rbac.RoleAdmin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEnsureAdmin(t *testing.T) {
	st := quiz.NewMemoryStore()
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	require.NoError(t, EnsureAdmin(context.Background(), st, "admin", hash))
	u, err := st.FindUser(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
}
