// Package auth implements the GitHub App trust chain: a short-lived signed
// assertion exchanged for an installation-scoped access token.
package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"

	"github.com/zavodil/pr-description-agent/internal/logging"
)

// appTokenTTL is the lifetime of the signed app assertion. GitHub caps it
// at 10 minutes.
const appTokenTTL = 10 * time.Minute

// Issuer exchanges the App identity for installation tokens. Tokens are
// never cached; each workflow run fetches a fresh one.
type Issuer struct {
	appID      string
	privateKey *rsa.PrivateKey

	// apiBaseURL overrides the GitHub API endpoint in tests
	apiBaseURL string
}

// NewIssuer parses the App private key and returns an Issuer
func NewIssuer(appID, privateKeyPEM string) (*Issuer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse github app private key: %w", err)
	}

	return &Issuer{
		appID:      appID,
		privateKey: key,
	}, nil
}

// appJWT builds the RS256-signed assertion identifying the App: issuer is
// the app id, issued now, expiring within GitHub's 10-minute limit.
func (i *Issuer) appJWT() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    i.appID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appTokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign app token: %w", err)
	}

	return token, nil
}

// InstallationToken exchanges the app assertion for a short-lived token
// scoped to one installation.
func (i *Issuer) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	assertion, err := i.appJWT()
	if err != nil {
		return "", err
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: assertion},
	)
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	if i.apiBaseURL != "" {
		base, err := client.BaseURL.Parse(i.apiBaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid api base url: %w", err)
		}
		client.BaseURL = base
	}

	token, _, err := client.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create installation token: %w", err)
	}

	logging.Debug("Issued installation token", "installation_id", installationID)

	return token.GetToken(), nil
}
