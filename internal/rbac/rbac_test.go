package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker(t *testing.T) {
	c := NewChecker(map[string][]string{
		"learner": {"test:take", "result:*"},
		"admin":   {"*"},
	})
	assert.True(t, c.Has("learner", "test:take"))
	assert.True(t, c.Has("learner", "result:view-own"))
	assert.False(t, c.Has("learner", "set:create"))
	assert.True(t, c.Has("admin", "set:create"))
	assert.False(t, c.Has("guest", "test:take"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("set:create")(ok)

	cases := map[string]int{"": http.StatusForbidden, RoleLearner: http.StatusForbidden, RoleAdmin: http.StatusNoContent}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/question-sets", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequireOwnerOr(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	owner := false
	h := RequireOwnerOr("result:view-all", func(*http.Request) bool { return owner })(ok)

	req := httptest.NewRequest(http.MethodGet, "/reports/x", nil).WithContext(WithRole(context.Background(), RoleLearner))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	owner = true
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
