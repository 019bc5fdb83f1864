package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestBearerTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tickets", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	token, err := BearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestBearerTokenFromQuery(t *testing.T) {
	// EventSource clients cannot set headers.
	r := httptest.NewRequest("GET", "/api/attendance/stream?access_token=abc123", nil)

	token, err := BearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestBearerTokenMissing(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tickets", nil)
	_, err := BearerToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Basic abc123")
	_, err = BearerToken(r)
	assert.Error(t, err)
}

func TestSubjectFromToken(t *testing.T) {
	sub, err := SubjectFromToken(signedToken(t, "user123"))
	require.NoError(t, err)
	assert.Equal(t, "user123", sub)
}

func TestSubjectFromTokenRejectsGarbage(t *testing.T) {
	_, err := SubjectFromToken("")
	assert.Error(t, err)

	_, err = SubjectFromToken("not-a-jwt")
	assert.Error(t, err)

	_, err = SubjectFromToken(signedToken(t, ""))
	assert.Error(t, err)
}
