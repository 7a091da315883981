package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jamef-tracker/internal/core/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig(url string) config.JamefConfig {
	return config.JamefConfig{
		AuthURL:  url,
		Username: "user",
		Password: "pass",
	}
}

// signedJWT builds a real HS256 token carrying the given exp claim.
func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// TestJamefAuthAdapter_ExpiresIn verifies the expiry comes from the explicit
// expires_in field when present.
func TestJamefAuthAdapter_ExpiresIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user", body["username"])
		assert.Equal(t, "pass", body["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "opaque-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	adapter := NewJamefAuthAdapter(authConfig(server.URL))
	token, err := adapter.FetchToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)
}

// TestJamefAuthAdapter_JWTExpFallback verifies the expiry is read from the
// JWT exp claim when expires_in is missing.
func TestJamefAuthAdapter_JWTExpFallback(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute).Truncate(time.Second)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": signedJWT(t, exp),
			"token_type":   "Bearer",
		})
	}))
	defer server.Close()

	adapter := NewJamefAuthAdapter(authConfig(server.URL))
	token, err := adapter.FetchToken(context.Background())

	require.NoError(t, err)
	assert.WithinDuration(t, exp, token.ExpiresAt, time.Second)
}

// TestJamefAuthAdapter_NoExpClaim verifies an exp-less JWT still yields a
// token with a short assumed validity instead of an error.
func TestJamefAuthAdapter_NoExpClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": signed})
	}))
	defer server.Close()

	adapter := NewJamefAuthAdapter(authConfig(server.URL))
	fetched, err := adapter.FetchToken(context.Background())

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), fetched.ExpiresAt, 5*time.Second)
}

// TestJamefAuthAdapter_NonOK verifies a rejected login surfaces the status.
func TestJamefAuthAdapter_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewJamefAuthAdapter(authConfig(server.URL))
	token, err := adapter.FetchToken(context.Background())

	assert.Nil(t, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

// TestJamefAuthAdapter_EmptyAccessToken verifies a 200 with no access_token
// is treated as an error.
func TestJamefAuthAdapter_EmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token_type": "Bearer"})
	}))
	defer server.Close()

	adapter := NewJamefAuthAdapter(authConfig(server.URL))
	token, err := adapter.FetchToken(context.Background())

	assert.Nil(t, token)
	assert.Error(t, err)
}
