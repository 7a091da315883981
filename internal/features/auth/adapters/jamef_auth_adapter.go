package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jamef-tracker/internal/core/config"
	"jamef-tracker/internal/core/httpclient"
	"jamef-tracker/internal/core/logger"
	"jamef-tracker/internal/features/auth/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JamefAuthAdapter implements ports.TokenFetcher against the Jamef login
// endpoint (password grant returning a bearer JWT).
type JamefAuthAdapter struct {
	client *http.Client
	config config.JamefConfig
}

// NewJamefAuthAdapter creates a new JamefAuthAdapter.
func NewJamefAuthAdapter(cfg config.JamefConfig) *JamefAuthAdapter {
	return &JamefAuthAdapter{
		client: httpclient.NewClient(15 * time.Second),
		config: cfg,
	}
}

// jamefLoginRequest is the JSON body of the login call.
type jamefLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// jamefLoginResponse is the JSON structure returned by the login endpoint.
type jamefLoginResponse struct {
	// AccessToken is the bearer JWT.
	AccessToken string `json:"access_token"`
	// TokenType is usually "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresIn is the validity in seconds. Some gateway versions omit it,
	// in which case the expiry is read from the JWT exp claim instead.
	ExpiresIn int `json:"expires_in"`
}

// FetchToken authenticates against Jamef and returns the new credential.
func (a *JamefAuthAdapter) FetchToken(ctx context.Context) (*domain.Token, error) {
	body, err := json.Marshal(jamefLoginRequest{
		Username: a.config.Username,
		Password: a.config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.AuthURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jamef auth returned status: %d", resp.StatusCode)
	}

	var login jamefLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	if login.AccessToken == "" {
		return nil, fmt.Errorf("jamef auth response contained no access_token")
	}

	expiresAt, err := a.resolveExpiry(login)
	if err != nil {
		return nil, err
	}

	return &domain.Token{
		Value:     login.AccessToken,
		ExpiresAt: expiresAt,
	}, nil
}

// resolveExpiry prefers the explicit expires_in field and falls back to the
// exp claim inside the JWT. The claim is read without signature verification;
// the token is only used against the issuer itself.
func (a *JamefAuthAdapter) resolveExpiry(login jamefLoginResponse) (time.Time, error) {
	if login.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(login.ExpiresIn) * time.Second), nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(login.AccessToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("auth response had no expires_in and token is not a parseable JWT: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		logger.Get().Warn("Token carries no exp claim, assuming short validity",
			zap.Error(err),
		)
		return time.Now().Add(10 * time.Minute), nil
	}

	return exp.Time, nil
}
