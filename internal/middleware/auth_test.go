package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protectedHandler() (http.Handler, *string, *string) {
	var gotID, gotEmail string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
		gotEmail = UserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return NewAuth(testSecret).Middleware(h), &gotID, &gotEmail
}

func TestAuthSetsIdentity(t *testing.T) {
	handler, gotID, gotEmail := protectedHandler()

	token := signedToken(t, jwt.MapClaims{
		"sub":   "user-a",
		"email": "a@corp.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/campaigns", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-a", *gotID)
	assert.Equal(t, "a@corp.com", *gotEmail)
}

func TestAuthRejectsUniformly(t *testing.T) {
	handler, _, _ := protectedHandler()

	expired := signedToken(t, jwt.MapClaims{
		"sub": "user-a",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	missingSubject := signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	headers := []string{
		"",
		"Bearer garbage",
		"Basic dXNlcjpwYXNz",
		"Bearer " + expired,
		"Bearer " + missingSubject,
	}

	var bodies []string
	for _, header := range headers {
		req := httptest.NewRequest("GET", "/campaigns", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		bodies = append(bodies, w.Body.String())
	}

	// Every rejection looks the same.
	for _, body := range bodies {
		assert.Equal(t, bodies[0], body)
	}
}

func TestAuthRejectsWrongSigningKey(t *testing.T) {
	handler, _, _ := protectedHandler()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-a",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/campaigns", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
