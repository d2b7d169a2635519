package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-mcp-oauth/identity"
	"github.com/jrsteele09/go-mcp-oauth/internal/config"
	apperrors "github.com/jrsteele09/go-mcp-oauth/internal/errors"
	"github.com/jrsteele09/go-mcp-oauth/pkce"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	// defaultExpiresIn is assumed when the provider omits expires_in
	defaultExpiresIn = 3600 * time.Second
	// validateTimeout bounds the call to the Graph identity endpoint
	validateTimeout = 10 * time.Second

	// discoveryTimeout bounds the OpenID configuration request
	discoveryTimeout = 10 * time.Second

	// discoveryPath locates the v2.0 OpenID configuration under the authority
	discoveryPath = "/v2.0/.well-known/openid-configuration"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// multiTenantAuthorities issue ID tokens whose iss names the user's home tenant
var multiTenantAuthorities = []string{"common", "organizations", "consumers"}

// TokenInfo is the result of a successful code exchange
type TokenInfo struct {
	AccessToken string
	IDToken     string
	ExpiresAt   time.Time
	UserInfo    identity.Claims
}

// IDTokenVerifier checks the provider's ID token. *oidc.IDTokenVerifier
// satisfies it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// EntraAuthenticator runs the authorization code + PKCE flow against
// Microsoft Entra ID.
type EntraAuthenticator struct {
	oauth2Config *oauth2.Config
	verifier     IDTokenVerifier
	graphMeURL   string
	httpClient   *http.Client
}

// Option configures an EntraAuthenticator
type Option func(*EntraAuthenticator)

// WithEndpoint replaces the Entra authorize and token endpoints
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(a *EntraAuthenticator) {
		a.oauth2Config.Endpoint = endpoint
	}
}

// WithIDTokenVerifier replaces the JWKS backed ID token verifier
func WithIDTokenVerifier(verifier IDTokenVerifier) Option {
	return func(a *EntraAuthenticator) {
		a.verifier = verifier
	}
}

// WithHTTPClient sets the client used for the token and Graph calls
func WithHTTPClient(client *http.Client) Option {
	return func(a *EntraAuthenticator) {
		a.httpClient = client
	}
}

// WithGraphMeURL replaces the identity endpoint used by ValidateAccessToken
func WithGraphMeURL(u string) Option {
	return func(a *EntraAuthenticator) {
		a.graphMeURL = u
	}
}

// NewEntraAuthenticator builds the OAuth2 client for the configured tenant.
// Unless a verifier is supplied, the tenant's OpenID configuration is fetched
// once here; signing keys are fetched lazily on first use.
func NewEntraAuthenticator(ctx context.Context, cfg config.OAuthConfig, opts ...Option) (*EntraAuthenticator, error) {
	if cfg.GetTenantID() == "" || cfg.GetClientID() == "" {
		return nil, errors.New("[auth NewEntraAuthenticator] tenant id and client id are required")
	}

	endpoint := microsoft.AzureADEndpoint(cfg.GetTenantID())
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	a := &EntraAuthenticator{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetRedirectURI(),
			Scopes:       cfg.GetScopes(),
		},
		graphMeURL: cfg.GetGraphMeURL(),
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.verifier == nil {
		verifier, err := a.discoverVerifier(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("[auth NewEntraAuthenticator] %w", err)
		}
		a.verifier = verifier
	}

	return a, nil
}

// discoverVerifier reads the issuer and JWKS location from the authority's
// discovery document. Entra answers for a domain name tenant with the tenant
// GUID as issuer, so the document's issuer is trusted as is instead of being
// compared with the request URL.
func (a *EntraAuthenticator) discoverVerifier(ctx context.Context, cfg config.OAuthConfig) (IDTokenVerifier, error) {
	discoveryURL := strings.TrimSuffix(cfg.GetAuthority(), "/") + discoveryPath
	reqCtx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building discovery request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", discoveryURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", discoveryURL, resp.Status)
	}

	var providerConfig oidc.ProviderConfig
	if err := json.NewDecoder(resp.Body).Decode(&providerConfig); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", discoveryURL, err)
	}
	if providerConfig.IssuerURL == "" || providerConfig.JWKSURL == "" {
		return nil, fmt.Errorf("%s has no issuer or jwks_uri", discoveryURL)
	}

	clientCtx := oidc.ClientContext(ctx, a.httpClient)
	provider := providerConfig.NewProvider(clientCtx)
	return provider.VerifierContext(clientCtx, &oidc.Config{
		ClientID:        cfg.GetClientID(),
		SkipIssuerCheck: slices.Contains(multiTenantAuthorities, cfg.GetTenantID()),
	}), nil
}

// AuthorizationURL builds the provider URL the browser is redirected to
func (a *EntraAuthenticator) AuthorizationURL(state, codeChallenge string) string {
	return a.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.MethodS256),
	)
}

// Exchange swaps an authorization code and its PKCE verifier for provider
// tokens and extracts the user's identity claims. Every failure is an
// *errors.AuthenticationError.
func (a *EntraAuthenticator) Exchange(ctx context.Context, code, codeVerifier string) (*TokenInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	oauth2Token, err := a.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			reason := retrieveErr.ErrorDescription
			if reason == "" {
				reason = retrieveErr.ErrorCode
			}
			return nil, apperrors.NewAuthenticationError(fmt.Errorf("%w: %w", apperrors.ErrTokenExchange, err),
				"Token exchange failed: %s", reason)
		}
		return nil, apperrors.NewAuthenticationError(err, "failed to exchange code for tokens: %v", err)
	}

	claims := map[string]any{}
	rawIDToken, _ := oauth2Token.Extra("id_token").(string)
	if rawIDToken != "" {
		idToken, err := a.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return nil, apperrors.NewAuthenticationError(fmt.Errorf("%w: %w", apperrors.ErrIDToken, err),
				"ID token verification failed: %v", err)
		}
		if err := idToken.Claims(&claims); err != nil {
			return nil, apperrors.NewAuthenticationError(fmt.Errorf("%w: %w", apperrors.ErrIDToken, err),
				"failed to extract ID token claims: %v", err)
		}
	}

	expiresAt := oauth2Token.Expiry
	if expiresAt.IsZero() {
		expiresAt = NowTimeFunc().Add(defaultExpiresIn)
	}

	return &TokenInfo{
		AccessToken: oauth2Token.AccessToken,
		IDToken:     rawIDToken,
		ExpiresAt:   expiresAt.UTC(),
		UserInfo:    identity.FromIDTokenClaims(claims),
	}, nil
}

// ValidateAccessToken asks Microsoft Graph whether the provider access token
// is still good. Any failure, including transport errors, reports false.
func (a *EntraAuthenticator) ValidateAccessToken(ctx context.Context, accessToken string) bool {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.graphMeURL, nil)
	if err != nil {
		log.Err(err).Msg("Failed to build access token validation request")
		return false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Access token validation request failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
