package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func staffClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": "user-1",
		"email":   "dispatch@smartwaste.city",
		"role":    "staff",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	var got UserClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		got = claims
	})

	req := httptest.NewRequest(http.MethodGet, "/api/bins", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, staffClaims()))
	rr := httptest.NewRecorder()
	Auth(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "dispatch@smartwaste.city", got.Email)
	assert.Equal(t, "staff", got.Role)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	rr := httptest.NewRecorder()
	Auth(failIfCalled(t)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bins", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	req := httptest.NewRequest(http.MethodGet, "/api/bins", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	Auth(failIfCalled(t)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	req := httptest.NewRequest(http.MethodGet, "/api/bins", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "other-secret", staffClaims()))
	rr := httptest.NewRecorder()
	Auth(failIfCalled(t)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	claims := staffClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	req := httptest.NewRequest(http.MethodGet, "/api/bins", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, claims))
	rr := httptest.NewRecorder()
	Auth(failIfCalled(t)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRejectsTokenMissingClaims(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", testSecret)

	claims := staffClaims()
	delete(claims, "role")

	req := httptest.NewRequest(http.MethodGet, "/api/bins", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, claims))
	rr := httptest.NewRecorder()
	Auth(failIfCalled(t)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		role    string
		allowed []string
		want    int
	}{
		{"admin", []string{"admin"}, http.StatusOK},
		{"staff", []string{"staff", "admin"}, http.StatusOK},
		{"citizen", []string{"staff", "admin"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		handler := RequireRole(tc.allowed...)(next)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		ctx := context.WithValue(req.Context(), UserContextKey, UserClaims{
			UserID: "user-1", Email: "x@smartwaste.city", Role: tc.role,
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))
		assert.Equal(t, tc.want, rr.Code, "role %s against %v", tc.role, tc.allowed)
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	handler := RequireRole("admin")(failIfCalled(t))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func failIfCalled(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})
}
